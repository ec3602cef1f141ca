// Package geocache persists geocoding results keyed by normalized address.
package geocache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-quickstart/config"
	"go-quickstart/internal/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Entry is a cached geocode result.
type Entry struct {
	Lat              float64
	Lng              float64
	FormattedAddress string
	PlaceID          string
}

type Cache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]Entry, error)
	PutMany(ctx context.Context, results map[string]Entry) error
	Close() error
}

// NormalizeAddress lowercases and collapses whitespace so equivalent inputs share a key.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}

// Open selects a backend by cfg.Driver: postgres, sqlite or none.
func Open(ctx context.Context, cfg config.GeocacheConfig, log *zap.Logger) (Cache, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "none":
		return Nop{}, nil
	case "postgres", "pgx":
		db, err := sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("geocache: open postgres: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		return newSQLCache(ctx, db, postgres, log)
	case "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "geocache.db"
		}
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("geocache: open sqlite: %w", err)
		}
		// SQLite serialises writers; one connection also keeps :memory: databases shared.
		db.SetMaxOpenConns(1)
		return newSQLCache(ctx, db, sqlite, log)
	default:
		return nil, fmt.Errorf("geocache: unknown driver %q", cfg.Driver)
	}
}

type dialect struct {
	name        string
	placeholder func(n int) string
}

var (
	postgres = dialect{name: "postgres", placeholder: func(n int) string { return "$" + strconv.Itoa(n) }}
	sqlite   = dialect{name: "sqlite", placeholder: func(int) string { return "?" }}
)

const schema = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	address           TEXT PRIMARY KEY,
	lat               DOUBLE PRECISION NOT NULL,
	lng               DOUBLE PRECISION NOT NULL,
	formatted_address TEXT NOT NULL DEFAULT '',
	place_id          TEXT NOT NULL DEFAULT '',
	updated_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// SQLCache is a database/sql geocode cache shared by the postgres and sqlite backends.
type SQLCache struct {
	DB      *sql.DB
	dialect dialect
	log     *zap.Logger
}

func newSQLCache(ctx context.Context, db *sql.DB, d dialect, log *zap.Logger) (*SQLCache, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("geocache: verify %s connection: %w", d.name, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("geocache: create schema: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SQLCache{DB: db, dialect: d, log: log}, nil
}

// GetMany returns the cached entries for addresses. Misses are absent from the map.
func (s *SQLCache) GetMany(ctx context.Context, addresses []string) (_ map[string]Entry, err error) {
	defer logger.Time(ctx, s.log, "geocode.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	seen := map[string]struct{}{}
	args := make([]any, 0, len(addresses))
	ph := make([]string, 0, len(addresses))
	for _, a := range addresses {
		a = NormalizeAddress(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		args = append(args, a)
		ph = append(ph, s.dialect.placeholder(len(args)))
	}
	if len(args) == 0 {
		return map[string]Entry{}, nil
	}

	// Only the placeholder list is interpolated; values stay parameterized.
	q := fmt.Sprintf(`
	SELECT address, lat, lng, formatted_address, place_id
	FROM geocode_cache
	WHERE address IN (%s);`, strings.Join(ph, ","))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]Entry, len(args))
	for rows.Next() {
		var addr string
		var e Entry
		if err := rows.Scan(&addr, &e.Lat, &e.Lng, &e.FormattedAddress, &e.PlaceID); err != nil {
			return nil, fmt.Errorf("get geocode cache: scan rows: %w", err)
		}
		out[addr] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get geocode cache: row iteration: %w", err)
	}
	return out, nil
}

// PutMany upserts results in a single transaction.
func (s *SQLCache) PutMany(ctx context.Context, results map[string]Entry) (err error) {
	defer logger.Time(ctx, s.log, "geocode.cache.PutMany")(&err)

	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}
	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	p := s.dialect.placeholder
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
	INSERT INTO geocode_cache (address, lat, lng, formatted_address, place_id, updated_at)
	VALUES (%s, %s, %s, %s, %s, CURRENT_TIMESTAMP)
	ON CONFLICT (address) DO UPDATE
	SET lat = excluded.lat,
		lng = excluded.lng,
		formatted_address = excluded.formatted_address,
		place_id = excluded.place_id,
		updated_at = CURRENT_TIMESTAMP;`, p(1), p(2), p(3), p(4), p(5)))
	if err != nil {
		return fmt.Errorf("insert geocode cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for addr, e := range results {
		key := NormalizeAddress(addr)
		if key == "" {
			return fmt.Errorf("insert geocode cache: empty address key")
		}
		if _, err := stmt.ExecContext(ctx, key, e.Lat, e.Lng, e.FormattedAddress, e.PlaceID); err != nil {
			return fmt.Errorf("insert geocode cache address=%q: %w", addr, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert geocode cache commit: %w", err)
	}
	return nil
}

func (s *SQLCache) Close() error {
	return s.DB.Close()
}

// Nop caches nothing.
type Nop struct{}

func (Nop) GetMany(context.Context, []string) (map[string]Entry, error) {
	return map[string]Entry{}, nil
}

func (Nop) PutMany(context.Context, map[string]Entry) error { return nil }

func (Nop) Close() error { return nil }
