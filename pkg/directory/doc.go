// Package directory declares the university directory entry types:
// [Department] and [User], with their field enumerations and schemas.
//
// They are the entry types served by the tablestore CLI and REST API and
// used throughout the table conformance tests.
package directory
