package api

import (
	"net"
	"strconv"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port   int
	Bind   string
	APIKey string
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

// RowResponse is one keyed entry.
type RowResponse[E any] struct {
	Key   string `json:"key"`
	Entry E      `json:"entry"`
}

// QueryResponse carries the rows selected by a query or search.
type QueryResponse[E any] struct {
	Table string           `json:"table"`
	Query string           `json:"query"`
	Count int              `json:"count"`
	Rows  []RowResponse[E] `json:"rows"`
}

// ContainsResponse answers a membership check.
type ContainsResponse struct {
	Key      string `json:"key"`
	Contains bool   `json:"contains"`
}

// HealthResponse reports server status and the mounted tables.
type HealthResponse struct {
	Status string   `json:"status"`
	Tables []string `json:"tables"`
}
