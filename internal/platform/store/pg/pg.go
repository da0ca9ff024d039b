// Package pg wraps pgxpool with query tracing hooks
package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config carries pool settings parsed out of the environment
type Config struct {
	URL      string
	MaxConns int32
	SlowMs   int
}

// PG owns a connection pool plus the tracer invoked on every query
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

// Open parses cfg.URL and dials the pool. tracer may be nil
func Open(ctx context.Context, cfg Config, tracer QueryTracer) (*PG, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	return &PG{Pool: pool, Tracer: tracer, SlowMs: cfg.SlowMs}, nil
}

// Close releases the pool. Safe on a nil receiver
func (p *PG) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}
