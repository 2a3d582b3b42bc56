// Package query defines the read-request algebra shared by all tables and the
// reference execution pipeline.
//
// A [Query] is one of five variants:
//
//	Lookup         exact key match (the key travels beside the query)
//	Search         one field equals a value
//	PartialSearch  one String field contains a substring
//	MultiSearch    every listed field equals its paired value
//	GetAll         no filter
//
// Every variant except Lookup carries a [Page]: page size, sort field, sort
// direction and a 1-indexed page number.
//
// [Compile] validates a query against a record schema and resolves it into a
// [Plan]. In-memory engines execute plans with [Run]; the relational adapter
// renders the same plan into one backend command. Both follow the same steps:
//
//  1. Filter rows matching the variant.
//  2. Stable sort by the sort field; ties keep insertion order.
//  3. Clamp the page size to the maximum (DefaultMaxPageSize unless
//     configured) and return rows [size*(page-1), size*page).
//
// A page past the end of the results is empty, not an error.
package query
