package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tablestore/pkg/config"
	"github.com/ssargent/tablestore/pkg/directory"
	"github.com/ssargent/tablestore/pkg/query"
	"github.com/ssargent/tablestore/pkg/value"
)

func TestNewContainer_Backends(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, c *config.Config)
	}{
		{"memory", func(t *testing.T, c *config.Config) { c.Backend = config.BackendMemory }},
		{"pebble", func(t *testing.T, c *config.Config) { c.DataDir = t.TempDir() }},
		{"duckdb", func(t *testing.T, c *config.Config) { c.Backend = config.BackendDuckDB }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			cfg := config.DefaultConfig()
			cfg.Query.MaxPageSize = 2
			tt.mutate(t, cfg)

			c, err := NewContainer(ctx, cfg, nil)
			require.NoError(t, err)
			t.Cleanup(func() { assert.NoError(t, c.Close()) })

			k := c.Departments().Insert(ctx, directory.Department{Name: "Computer Science", Abbreviation: "CS"})
			require.True(t, k.Valid())
			c.Departments().Insert(ctx, directory.Department{Name: "Mechanical Engineering", Abbreviation: "ME"})
			c.Departments().Insert(ctx, directory.Department{Name: "Biomedical Engineering", Abbreviation: "BME"})

			rows, err := c.Departments().Query(ctx, query.GetAll[directory.DepartmentField]{Page: query.Page[directory.DepartmentField]{
				Size: 10, SortField: directory.DepartmentAbbreviation, Number: 1,
			}}, nil)
			require.NoError(t, err)
			require.Len(t, rows, 2, "page size clamps to the configured maximum")
			assert.Equal(t, "BME", rows[0].Entry.Abbreviation)

			u := c.Users().Insert(ctx, directory.User{FirstName: "Ada", LastName: "Lovelace", Email: "lovelace@rowan.edu", BannerID: 916000001, GPA: 4, Active: true})
			require.True(t, u.Valid())
			found, err := c.Users().Search(ctx, directory.UserActive, value.Boolean(true))
			require.NoError(t, err)
			assert.Len(t, found, 1)

			// Table operations surface on the container's registry.
			families, err := c.Registry().Gather()
			require.NoError(t, err)
			var names []string
			for _, f := range families {
				names = append(names, f.GetName())
			}
			assert.Contains(t, names, "tablestore_table_operations_total")
			assert.Contains(t, names, "go_goroutines")
		})
	}
}

func TestNewContainer_PebbleReopen(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	c, err := NewContainer(ctx, cfg, nil)
	require.NoError(t, err)
	k := c.Users().Insert(ctx, directory.User{FirstName: "Grace", LastName: "Hopper", Email: "hopper@rowan.edu", BannerID: 3, GPA: 3.5, Active: true})
	require.True(t, k.Valid())
	require.NoError(t, c.Close())

	c, err = NewContainer(ctx, cfg, nil)
	require.NoError(t, err)
	defer c.Close()

	again, err := c.Users().ParseKey(k.String())
	require.NoError(t, err)
	u, ok, err := c.Users().Lookup(ctx, again)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Hopper", u.LastName)
}

func TestNewContainer_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid config", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Backend = "oracle"
		_, err := NewContainer(ctx, cfg, nil)
		assert.ErrorContains(t, err, "unknown backend")
	})

	t.Run("unreachable mysql", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Backend = config.BackendMySQL
		cfg.DSN = "tablestore:secret@tcp(127.0.0.1:1)/directory?timeout=1s"
		_, err := NewContainer(ctx, cfg, nil)
		assert.ErrorContains(t, err, "ping mysql")
	})
}

func TestContainer_Server(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendMemory

	c, err := NewContainer(ctx, cfg, nil)
	require.NoError(t, err)
	defer c.Close()

	ts := httptest.NewServer(c.Server("secret").Router())
	defer ts.Close()

	req, err := http.NewRequest("GET", ts.URL+"/api/v1/users?sort=lastname", nil)
	require.NoError(t, err)
	req.Header.Set("X-API-Key", "secret")
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	names := make([]string, 0, 2)
	for _, r := range c.Resources() {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{"departments", "users"}, names)
}
