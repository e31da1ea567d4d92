package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/poolfinder/pool-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool used by PostgresStore. pgxmock pools
// satisfy it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection.
var preparedStatements = map[string]string{
	"get_facility":        `SELECT ` + selectColumns + ` FROM facilities WHERE id = $1`,
	"find_facility_key":   `SELECT ` + selectColumns + ` FROM facilities WHERE name_key = $1 AND address_key = $2 ORDER BY id LIMIT 1`,
	"mark_enrichment":     `UPDATE facilities SET enrichment_status = $1, last_enriched = $2 WHERE id = $3`,
	"count_by_status":     `SELECT enrichment_status, COUNT(*) FROM facilities GROUP BY enrichment_status`,
	"insert_enrichment_run": `INSERT INTO enrichment_runs (id, mode, total, success, failed, skipped, dry_run, started_at, finished_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS facilities (
	id                   BIGSERIAL PRIMARY KEY,
	name                 TEXT NOT NULL,
	address              TEXT NOT NULL DEFAULT '',
	name_key             TEXT NOT NULL,
	address_key          TEXT NOT NULL,
	lat                  DOUBLE PRECISION,
	lng                  DOUBLE PRECISION,
	phone                TEXT NOT NULL DEFAULT '',
	lanes                INTEGER,
	pool_size            TEXT NOT NULL DEFAULT '',
	water_temp           TEXT NOT NULL DEFAULT '',
	facilities           JSONB,
	parking              BOOLEAN,
	pricing              JSONB,
	free_swim            JSONB,
	operating_hours      JSONB,
	daily_price          JSONB,
	free_swim_price      JSONB,
	monthly_lesson_price JSONB,
	notes                TEXT NOT NULL DEFAULT '',
	description          TEXT NOT NULL DEFAULT '',
	image_url            TEXT NOT NULL DEFAULT '',
	rating               DOUBLE PRECISION,
	review_count         INTEGER NOT NULL DEFAULT 0,
	source               TEXT NOT NULL DEFAULT '',
	url                  TEXT NOT NULL DEFAULT '',
	is_active            BOOLEAN NOT NULL DEFAULT true,
	enrichment_status    TEXT NOT NULL DEFAULT 'pending',
	last_enriched        TIMESTAMPTZ,
	last_updated         TIMESTAMPTZ NOT NULL DEFAULT now(),
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS enrichment_runs (
	id          TEXT PRIMARY KEY,
	mode        TEXT NOT NULL,
	total       INTEGER NOT NULL DEFAULT 0,
	success     INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0,
	skipped     INTEGER NOT NULL DEFAULT 0,
	dry_run     BOOLEAN NOT NULL DEFAULT false,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_facilities_key ON facilities(name_key, address_key);
CREATE INDEX IF NOT EXISTS idx_facilities_status ON facilities(enrichment_status);
CREATE INDEX IF NOT EXISTS idx_facilities_lat_lng ON facilities(lat, lng);
CREATE INDEX IF NOT EXISTS idx_enrichment_runs_started ON enrichment_runs(started_at DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, rec *model.FacilityRecord) error {
	args, err := facilityArgs(rec, jsonAsBytes)
	if err != nil {
		return err
	}
	var id int64
	if err := s.pool.QueryRow(ctx, insertSQL(postgresPlaceholder)+` RETURNING id`, args...).Scan(&id); err != nil {
		return eris.Wrapf(err, "postgres: insert facility %q", rec.Name)
	}
	rec.ID = id
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, rec *model.FacilityRecord) error {
	args, err := facilityArgs(rec, jsonAsBytes)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, updateSQL(postgresPlaceholder), append(args, rec.ID)...)
	if err != nil {
		return eris.Wrapf(err, "postgres: update facility %d", rec.ID)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (*model.FacilityRecord, error) {
	rec, err := scanFacility(s.pool.QueryRow(ctx, preparedStatements["get_facility"], id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get facility %d", id)
	}
	return rec, nil
}

func (s *PostgresStore) FindByKey(ctx context.Context, key model.Key) (*model.FacilityRecord, error) {
	rec, err := scanFacility(s.pool.QueryRow(ctx, preparedStatements["find_facility_key"], key.Name, key.Address))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: find facility %s", key)
	}
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]model.FacilityRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM facilities WHERE ($1 = false OR is_active) ORDER BY id LIMIT $2 OFFSET $3`
	return s.queryFacilities(ctx, "list facilities", query, filter.ActiveOnly, limitOrDefault(filter.Limit), filter.Offset)
}

func (s *PostgresStore) ListInBounds(ctx context.Context, filter BoundsFilter) ([]model.FacilityRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM facilities
		WHERE lat IS NOT NULL AND lng IS NOT NULL
		AND lat BETWEEN $1 AND $2 AND lng BETWEEN $3 AND $4
		AND ($5 = false OR is_active)
		ORDER BY id`
	return s.queryFacilities(ctx, "list facilities in bounds", query,
		filter.MinLat, filter.MaxLat, filter.MinLng, filter.MaxLng, filter.ActiveOnly)
}

func (s *PostgresStore) ListForEnrichment(ctx context.Context, filter EnrichmentFilter) ([]model.FacilityRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM facilities
		WHERE ($1 = '' OR enrichment_status = $1)
		AND ($2 = '' OR enrichment_status != $2)
		ORDER BY id`
	args := []any{string(filter.Status), string(filter.ExcludeStatus)}
	if filter.Limit > 0 {
		query += ` LIMIT $3`
		args = append(args, filter.Limit)
	}
	return s.queryFacilities(ctx, "list for enrichment", query, args...)
}

func (s *PostgresStore) MarkEnrichment(ctx context.Context, id int64, status model.EnrichmentStatus, at time.Time) error {
	tag, err := s.pool.Exec(ctx, preparedStatements["mark_enrichment"], string(status), at.UTC(), id)
	if err != nil {
		return eris.Wrapf(err, "postgres: mark enrichment %d", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountByStatus(ctx context.Context) (map[model.EnrichmentStatus]int, error) {
	rows, err := s.pool.Query(ctx, preparedStatements["count_by_status"])
	if err != nil {
		return nil, eris.Wrap(err, "postgres: count by status")
	}
	defer rows.Close()

	counts := make(map[model.EnrichmentStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, eris.Wrap(err, "postgres: scan status count")
		}
		counts[model.EnrichmentStatus(status)] = n
	}
	return counts, eris.Wrap(rows.Err(), "postgres: count by status iterate")
}

func (s *PostgresStore) SaveRun(ctx context.Context, run *model.EnrichmentRun) error {
	_, err := s.pool.Exec(ctx, preparedStatements["insert_enrichment_run"],
		run.ID, run.Mode, run.Total, run.Success, run.Failed, run.Skipped, run.DryRun,
		run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	return eris.Wrapf(err, "postgres: insert enrichment run %s", run.ID)
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.EnrichmentRun, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, mode, total, success, failed, skipped, dry_run, started_at, finished_at
		FROM enrichment_runs ORDER BY started_at DESC LIMIT $1`,
		limitOrDefault(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.EnrichmentRun
	for rows.Next() {
		var r model.EnrichmentRun
		if err := rows.Scan(&r.ID, &r.Mode, &r.Total, &r.Success, &r.Failed, &r.Skipped, &r.DryRun, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) queryFacilities(ctx context.Context, op, query string, args ...any) ([]model.FacilityRecord, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: %s", op)
	}
	defer rows.Close()

	var out []model.FacilityRecord
	for rows.Next() {
		rec, err := scanFacility(rows)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: %s scan", op)
		}
		out = append(out, *rec)
	}
	return out, eris.Wrapf(rows.Err(), "postgres: %s iterate", op)
}
