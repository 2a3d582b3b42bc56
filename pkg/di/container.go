// Package di provides dependency injection container
package di

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ssargent/tablestore/pkg/api" //nolint:depguard
	"github.com/ssargent/tablestore/pkg/config"
	"github.com/ssargent/tablestore/pkg/directory"
	"github.com/ssargent/tablestore/pkg/metrics"
	"github.com/ssargent/tablestore/pkg/record"
	"github.com/ssargent/tablestore/pkg/relational/sqldb"
	"github.com/ssargent/tablestore/pkg/table"
	"github.com/ssargent/tablestore/pkg/table/kvtable"
	"github.com/ssargent/tablestore/pkg/table/memtable"
	"github.com/ssargent/tablestore/pkg/table/sqltable"
)

type (
	// Departments is the department table as wired by the container.
	Departments = table.Table[directory.Department, directory.DepartmentField]
	// Users is the user table as wired by the container.
	Users = table.Table[directory.User, directory.UserField]
)

// Container holds all the dependencies for the application
type Container struct {
	config   *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	departments Departments
	users       Users

	closers []io.Closer
}

// NewContainer opens the configured backend and builds the instrumented
// tables on top of it. The caller must Close the container.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c := &Container{
		config:   cfg,
		logger:   logger,
		registry: registry,
		metrics:  metrics.New(registry),
	}

	opts := table.Options{MaxPageSize: cfg.Query.MaxPageSize, Logger: logger}
	var err error
	switch cfg.Backend {
	case config.BackendMemory:
		c.departments = memtable.New(directory.Departments, opts)
		c.users = memtable.New(directory.Users, opts)
	case config.BackendPebble:
		err = c.openPebble(opts)
	case config.BackendDuckDB, config.BackendMySQL:
		err = c.openSQL(ctx, opts)
	}
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	c.departments = metrics.Instrument(c.departments, c.metrics)
	c.users = metrics.Instrument(c.users, c.metrics)

	logger.Debug("container ready", slog.String("backend", cfg.Backend))
	return c, nil
}

func (c *Container) openPebble(opts table.Options) error {
	store, err := kvtable.OpenStore(c.config.DataDir)
	if err != nil {
		return fmt.Errorf("open pebble store: %w", err)
	}
	c.closers = append(c.closers, store)

	if c.departments, err = kvtable.New(store, directory.Departments, opts); err != nil {
		return err
	}
	if c.users, err = kvtable.New(store, directory.Users, opts); err != nil {
		return err
	}
	return nil
}

func (c *Container) openSQL(ctx context.Context, opts table.Options) error {
	pool, err := sqldb.Open(ctx, c.config.Backend, c.config.DSN)
	if err != nil {
		return err
	}
	c.closers = append(c.closers, pool)

	if c.departments, err = ensure(ctx, sqltable.New(pool, directory.Departments, opts)); err != nil {
		return err
	}
	if c.users, err = ensure(ctx, sqltable.New(pool, directory.Users, opts)); err != nil {
		return err
	}
	return nil
}

func ensure[E any, F record.Field](ctx context.Context, t *sqltable.Table[E, F]) (*sqltable.Table[E, F], error) {
	if err := t.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("create %s table: %w", t.Schema().Name(), err)
	}
	return t, nil
}

// Config returns the configuration the container was built from.
func (c *Container) Config() *config.Config { return c.config }

// Logger returns the application logger.
func (c *Container) Logger() *slog.Logger { return c.logger }

// Registry returns the Prometheus registry backing /metrics.
func (c *Container) Registry() *prometheus.Registry { return c.registry }

// Departments returns the department table.
func (c *Container) Departments() Departments { return c.departments }

// Users returns the user table.
func (c *Container) Users() Users { return c.users }

// Resources exposes every table over HTTP.
func (c *Container) Resources() []api.Resource {
	return []api.Resource{
		api.NewResource("departments", c.departments, c.logger),
		api.NewResource("users", c.users, c.logger),
	}
}

// Server builds the REST API server for the container's tables.
func (c *Container) Server(apiKey string) *api.Server {
	cfg := api.ServerConfig{Port: c.config.Port, Bind: c.config.Bind, APIKey: apiKey}
	return api.NewServer(cfg, c.metrics, c.registry, c.logger, c.Resources()...)
}

// Close releases the backend.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i].Close())
	}
	c.closers = nil
	return errors.Join(errs...)
}
