package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tablestore/pkg/api"
	"github.com/ssargent/tablestore/pkg/config"
	"github.com/ssargent/tablestore/pkg/directory"
)

type cli struct {
	t    *testing.T
	base []string
}

// newCLI points every invocation at a fresh pebble directory so state
// survives between commands.
func newCLI(t *testing.T) *cli {
	dir := t.TempDir()
	return &cli{t: t, base: []string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"--data-dir", filepath.Join(dir, "data"),
		"--log-level", "error",
	}}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	rootCmd, release := NewRootCommand()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(append([]string{}, c.base...), args...))
	err := rootCmd.Execute()
	require.NoError(c.t, release())
	return out.String(), err
}

func (c *cli) rows(args ...string) []api.RowResponse[directory.User] {
	c.t.Helper()
	out, err := c.run(append([]string{"-o", "json"}, args...)...)
	require.NoError(c.t, err, out)
	var rows []api.RowResponse[directory.User]
	require.NoError(c.t, json.Unmarshal([]byte(out), &rows), out)
	return rows
}

func lastNames(rows []api.RowResponse[directory.User]) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Entry.LastName)
	}
	return out
}

func TestCLI_Departments(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("put", "departments", "name=Mechanical Engineering", "abbreviation=ME")
	require.NoError(t, err)
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "ABBREVIATION")
	assert.Contains(t, out, "Mechanical Engineering")

	out, err = c.run("get", "departments", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "ME")

	out, err = c.run("update", "departments", "1", "abbreviation=MECH")
	require.NoError(t, err)
	assert.Contains(t, out, "MECH")

	out, err = c.run("exists", "departments", "1")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = c.run("delete", "departments", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted departments 1")

	out, err = c.run("exists", "departments", "1")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)

	_, err = c.run("get", "departments", "1")
	assert.ErrorContains(t, err, "key not found")

	_, err = c.run("delete", "departments", "1")
	assert.ErrorContains(t, err, "key not found")
}

func TestCLI_Users(t *testing.T) {
	c := newCLI(t)
	for _, args := range [][]string{
		{"firstname=Nick", "lastname=Kluzynski", "email=kluzynskn6@students.rowan.edu", "bannerID=916181533", "gpa=3.5", "active=true"},
		{"firstname=Ada", "lastname=Lovelace", "email=lovelace@rowan.edu", "bannerID=916000001", "gpa=4", "active=true"},
		{"firstname=Alan", "lastname=Turing", "email=turing@rowan.edu", "bannerID=916000002", "gpa=3.75", "active=false"},
		{"firstname=Grace", "lastname=Hopper", "email=hopper@students.rowan.edu", "bannerID=916000003", "gpa=3.5", "active=true"},
	} {
		_, err := c.run(append([]string{"put", "users"}, args...)...)
		require.NoError(t, err)
	}

	t.Run("get_all sorted and paged", func(t *testing.T) {
		rows := c.rows("query", "users", "--sort", "gpa", "--direction", "desc", "--size", "2", "--page", "2")
		assert.Equal(t, []string{"Kluzynski", "Hopper"}, lastNames(rows))
	})

	t.Run("page size clamps to configured maximum", func(t *testing.T) {
		rows := c.rows("--max-page-size", "3", "query", "users", "--sort", "lastname", "--size", "50")
		assert.Equal(t, []string{"Hopper", "Kluzynski", "Lovelace"}, lastNames(rows))
	})

	t.Run("partial search", func(t *testing.T) {
		rows := c.rows("query", "users", "--type", "partial_search", "--field", "email", "--value", "students", "--sort", "lastname")
		assert.Equal(t, []string{"Hopper", "Kluzynski"}, lastNames(rows))
	})

	t.Run("multi search", func(t *testing.T) {
		rows := c.rows("query", "users", "--type", "multi_search",
			"--field", "active", "--value", "true", "--field", "gpa", "--value", "3.5", "--sort", "bannerID")
		assert.Equal(t, []string{"Hopper", "Kluzynski"}, lastNames(rows))
	})

	t.Run("lookup", func(t *testing.T) {
		rows := c.rows("query", "users", "--type", "lookup", "--key", "3")
		require.Len(t, rows, 1)
		assert.Equal(t, "3", rows[0].Key)
		assert.Equal(t, "Turing", rows[0].Entry.LastName)

		assert.Empty(t, c.rows("query", "users", "--type", "lookup", "--key", "42"))
	})

	t.Run("unpaged search", func(t *testing.T) {
		rows := c.rows("search", "users", "active", "true")
		assert.Equal(t, []string{"Kluzynski", "Lovelace", "Hopper"}, lastNames(rows))
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		_, err := c.run("update", "users", "2", "gpa=3.9")
		require.NoError(t, err)
		rows := c.rows("get", "users", "2")
		require.Len(t, rows, 1)
		assert.Equal(t, float32(3.9), rows[0].Entry.GPA)
		assert.Equal(t, "Lovelace", rows[0].Entry.LastName)
	})
}

func TestCLI_Errors(t *testing.T) {
	c := newCLI(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown table", []string{"get", "courses", "1"}, `unknown table "courses"`},
		{"missing equals", []string{"put", "users", "firstname"}, "expected field=value"},
		{"unknown field", []string{"put", "users", "major=ECE"}, "field not matched"},
		{"wrong kind", []string{"put", "users", "gpa=high"}, "wrong value type"},
		{"bad page", []string{"query", "users", "--page", "-1"}, "invalid query"},
		{"lookup without key", []string{"query", "users", "--type", "lookup"}, "lookup requires a key"},
		{"partial search on boolean", []string{"query", "users", "--type", "partial_search", "--field", "active", "--value", "true"}, "invalid query"},
		{"bad format", []string{"-o", "yaml", "tables"}, "unknown output format"},
		{"bad backend", []string{"--backend", "oracle", "tables"}, "unknown backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.run(tt.args...)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestCLI_Tables(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("tables")
	require.NoError(t, err)
	assert.Contains(t, out, "departments")
	assert.Contains(t, out, "bannerID")

	out, err = c.run("-o", "json", "tables")
	require.NoError(t, err)
	var infos []tableInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "department", infos[0].Entity)
	assert.Equal(t, column{Name: "gpa", Kind: "float"}, infos[1].Columns[4])
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	dataDir := filepath.Join(dir, "data")

	run := func(args ...string) (string, error) {
		rootCmd, release := NewRootCommand()
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs(args)
		err := rootCmd.Execute()
		require.NoError(t, release())
		return out.String(), err
	}

	out, err := run("init", "--config", configPath, "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "API key:")

	cfg, err := config.LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, config.BackendPebble, cfg.Backend)
	assert.Len(t, cfg.Security.APIKey, 64)

	t.Run("existing config is kept", func(t *testing.T) {
		out, err := run("init", "--config", configPath, "--backend", "memory")
		require.NoError(t, err)
		assert.Contains(t, out, "already exists")

		again, err := config.LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, cfg, again)
	})

	t.Run("force overwrites", func(t *testing.T) {
		_, err := run("init", "--config", configPath, "--backend", "memory", "--force")
		require.NoError(t, err)

		again, err := config.LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, config.BackendMemory, again.Backend)
		assert.NotEqual(t, cfg.Security.APIKey, again.Security.APIKey)
	})

	t.Run("commands read the written config", func(t *testing.T) {
		_, err := run("init", "--config", configPath, "--data-dir", dataDir, "--force")
		require.NoError(t, err)

		_, err = run("--config", configPath, "put", "departments", "name=Computer Science", "abbreviation=CS")
		require.NoError(t, err)
		out, err := run("--config", configPath, "get", "departments", "1")
		require.NoError(t, err)
		assert.Contains(t, out, "Computer Science")
	})
}
