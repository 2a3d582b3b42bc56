package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ssargent/tablestore/pkg/metrics"
	"github.com/ssargent/tablestore/pkg/query"
	"github.com/ssargent/tablestore/pkg/record"
	"github.com/ssargent/tablestore/pkg/table"
)

// Resource is a table mounted under /api/v1/{name}.
type Resource interface {
	Name() string
	Routes(prefix string, m *metrics.Metrics) func(chi.Router)
}

type tableResource[E any, F record.Field] struct {
	name   string
	table  table.Table[E, F]
	logger *slog.Logger
}

// NewResource exposes t over HTTP under name.
func NewResource[E any, F record.Field](name string, t table.Table[E, F], logger *slog.Logger) Resource {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &tableResource[E, F]{name: name, table: t, logger: logger.With(slog.String("resource", name))}
}

func (res *tableResource[E, F]) Name() string { return res.name }

func (res *tableResource[E, F]) Routes(prefix string, m *metrics.Metrics) func(chi.Router) {
	base := prefix + "/" + res.name
	return func(r chi.Router) {
		r.Post("/", m.InstrumentHandler("POST", base, res.handleInsert))
		r.Get("/", m.InstrumentHandler("GET", base, res.handleQuery))
		r.Get("/search", m.InstrumentHandler("GET", base+"/search", res.handleSearch))
		r.Get("/{key}", m.InstrumentHandler("GET", base+"/{key}", res.handleLookup))
		r.Get("/{key}/exists", m.InstrumentHandler("GET", base+"/{key}/exists", res.handleContains))
		r.Put("/{key}", m.InstrumentHandler("PUT", base+"/{key}", res.handleUpdate))
		r.Delete("/{key}", m.InstrumentHandler("DELETE", base+"/{key}", res.handleRemove))
	}
}

// handleInsert godoc
//
//	@Summary	Insert an entry
//	@Tags		tables
//	@Accept		json
//	@Produce	json
//	@Success	201	{object}	APIResponse
//	@Router		/{table} [post]
//	@Security	ApiKeyAuth
func (res *tableResource[E, F]) handleInsert(w http.ResponseWriter, r *http.Request) {
	e, ok := res.decodeEntry(w, r)
	if !ok {
		return
	}
	k := res.table.Insert(r.Context(), e)
	if !k.Valid() {
		sendError(w, "Failed to insert entry", http.StatusInternalServerError)
		return
	}
	sendCreated(w, RowResponse[E]{Key: k.String(), Entry: e})
}

// handleLookup godoc
//
//	@Summary	Get an entry by key
//	@Tags		tables
//	@Produce	json
//	@Success	200	{object}	APIResponse
//	@Failure	404	{object}	APIResponse
//	@Router		/{table}/{key} [get]
//	@Security	ApiKeyAuth
func (res *tableResource[E, F]) handleLookup(w http.ResponseWriter, r *http.Request) {
	k, ok := res.key(w, r)
	if !ok {
		return
	}
	e, found, err := res.table.Lookup(r.Context(), k)
	if err != nil {
		sendTableError(w, err)
		return
	}
	if !found {
		sendError(w, "Key not found", http.StatusNotFound)
		return
	}
	sendSuccess(w, RowResponse[E]{Key: k.String(), Entry: e})
}

// handleContains godoc
//
//	@Summary	Check whether a key holds an entry
//	@Tags		tables
//	@Produce	json
//	@Success	200	{object}	APIResponse
//	@Router		/{table}/{key}/exists [get]
//	@Security	ApiKeyAuth
func (res *tableResource[E, F]) handleContains(w http.ResponseWriter, r *http.Request) {
	text := chi.URLParam(r, "key")
	k, err := res.table.ParseKey(text)
	if err != nil {
		sendSuccess(w, ContainsResponse{Key: text})
		return
	}
	found, err := res.table.Contains(r.Context(), k)
	if err != nil {
		sendTableError(w, err)
		return
	}
	sendSuccess(w, ContainsResponse{Key: k.String(), Contains: found})
}

// handleUpdate godoc
//
//	@Summary	Replace the entry stored under a key
//	@Tags		tables
//	@Accept		json
//	@Produce	json
//	@Success	200	{object}	APIResponse
//	@Failure	404	{object}	APIResponse
//	@Router		/{table}/{key} [put]
//	@Security	ApiKeyAuth
func (res *tableResource[E, F]) handleUpdate(w http.ResponseWriter, r *http.Request) {
	k, ok := res.key(w, r)
	if !ok {
		return
	}
	e, ok := res.decodeEntry(w, r)
	if !ok {
		return
	}
	if err := res.table.Update(r.Context(), k, e); err != nil {
		sendWriteError(w, err)
		return
	}
	sendSuccess(w, RowResponse[E]{Key: k.String(), Entry: e})
}

// handleRemove godoc
//
//	@Summary	Delete an entry
//	@Tags		tables
//	@Produce	json
//	@Success	200	{object}	APIResponse
//	@Failure	404	{object}	APIResponse
//	@Router		/{table}/{key} [delete]
//	@Security	ApiKeyAuth
func (res *tableResource[E, F]) handleRemove(w http.ResponseWriter, r *http.Request) {
	k, ok := res.key(w, r)
	if !ok {
		return
	}
	if err := res.table.Remove(r.Context(), k); err != nil {
		sendTableError(w, err)
		return
	}
	sendSuccess(w, map[string]string{"key": k.String(), "status": "deleted"})
}

// handleSearch godoc
//
//	@Summary		Search a table by one field
//	@Description	Returns every entry whose field equals value, in insertion order and without paging.
//	@Tags			tables
//	@Produce		json
//	@Param			field	query	string	true	"Field to match"
//	@Param			value	query	string	true	"Value to match"
//	@Success		200	{object}	APIResponse
//	@Failure		400	{object}	APIResponse
//	@Router			/{table}/search [get]
//	@Security		ApiKeyAuth
func (res *tableResource[E, F]) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	req := query.Request{Type: "search", Fields: []string{params.Get("field")}, Values: []string{params.Get("value")}}
	q, err := query.ParseRequest(res.table.Schema(), req)
	if err != nil {
		sendTableError(w, err)
		return
	}
	s := q.(query.Search[F])

	rows, err := res.table.Search(r.Context(), s.Field, s.Value)
	if err != nil {
		sendTableError(w, err)
		return
	}
	sendSuccess(w, res.response("search", rows))
}

// handleQuery godoc
//
//	@Summary	Query a table
//	@Description	Runs get_all, search, partial_search, multi_search or lookup.
//	@Tags		tables
//	@Produce	json
//	@Param		type		query	string	false	"Query type"
//	@Param		field		query	[]string	false	"Field to match, repeatable"
//	@Param		value		query	[]string	false	"Value to match, repeatable"
//	@Param		sort		query	string	false	"Sort field"
//	@Param		direction	query	string	false	"asc or desc"
//	@Param		size		query	int		false	"Page size"
//	@Param		page		query	int		false	"Page number, from 1"
//	@Param		key			query	string	false	"Key for lookup"
//	@Success	200	{object}	APIResponse
//	@Failure	400	{object}	APIResponse
//	@Router		/{table} [get]
//	@Security	ApiKeyAuth
func (res *tableResource[E, F]) handleQuery(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	req := query.Request{
		Type:      params.Get("type"),
		Fields:    params["field"],
		Values:    params["value"],
		Sort:      params.Get("sort"),
		Direction: params.Get("direction"),
	}
	var err error
	if req.Size, err = intParam(params.Get("size")); err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Number, err = intParam(params.Get("page")); err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	q, err := query.ParseRequest(res.table.Schema(), req)
	if err != nil {
		sendTableError(w, err)
		return
	}

	var key *table.Key[E]
	if text := params.Get("key"); text != "" {
		k, err := res.table.ParseKey(text)
		if err != nil {
			if query.IsLookup[F](q) {
				// An unknown key selects nothing.
				sendSuccess(w, res.response(q.Name(), nil))
				return
			}
			sendTableError(w, err)
			return
		}
		key = &k
	}

	rows, err := res.table.Query(r.Context(), q, key)
	if err != nil {
		sendTableError(w, err)
		return
	}
	sendSuccess(w, res.response(q.Name(), rows))
}

func (res *tableResource[E, F]) key(w http.ResponseWriter, r *http.Request) (table.Key[E], bool) {
	k, err := res.table.ParseKey(chi.URLParam(r, "key"))
	if err != nil {
		sendTableError(w, err)
		return k, false
	}
	return k, true
}

func (res *tableResource[E, F]) decodeEntry(w http.ResponseWriter, r *http.Request) (E, bool) {
	var e E
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&e); err != nil {
		res.logger.Debug("rejected request body", slog.Any("error", err))
		sendError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return e, false
	}
	if _, err := res.table.Schema().Fields(e); err != nil {
		sendWriteError(w, err)
		return e, false
	}
	return e, true
}

func (res *tableResource[E, F]) response(name string, rows []table.Row[E]) QueryResponse[E] {
	out := QueryResponse[E]{Table: res.name, Query: name, Count: len(rows), Rows: make([]RowResponse[E], 0, len(rows))}
	for _, row := range rows {
		out.Rows = append(out.Rows, RowResponse[E]{Key: row.Key.String(), Entry: row.Entry})
	}
	return out
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}
