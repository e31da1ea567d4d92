package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/poolfinder/pool-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB

	insertFacility string
	updateFacility string
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// A single connection keeps writes serialized and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{
		db:             db,
		insertFacility: insertSQL(sqlitePlaceholder),
		updateFacility: updateSQL(sqlitePlaceholder),
	}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS facilities (
	id                   INTEGER PRIMARY KEY AUTOINCREMENT,
	name                 TEXT NOT NULL,
	address              TEXT NOT NULL DEFAULT '',
	name_key             TEXT NOT NULL,
	address_key          TEXT NOT NULL,
	lat                  REAL,
	lng                  REAL,
	phone                TEXT NOT NULL DEFAULT '',
	lanes                INTEGER,
	pool_size            TEXT NOT NULL DEFAULT '',
	water_temp           TEXT NOT NULL DEFAULT '',
	facilities           TEXT,
	parking              INTEGER,
	pricing              TEXT,
	free_swim            TEXT,
	operating_hours      TEXT,
	daily_price          TEXT,
	free_swim_price      TEXT,
	monthly_lesson_price TEXT,
	notes                TEXT NOT NULL DEFAULT '',
	description          TEXT NOT NULL DEFAULT '',
	image_url            TEXT NOT NULL DEFAULT '',
	rating               REAL,
	review_count         INTEGER NOT NULL DEFAULT 0,
	source               TEXT NOT NULL DEFAULT '',
	url                  TEXT NOT NULL DEFAULT '',
	is_active            INTEGER NOT NULL DEFAULT 1,
	enrichment_status    TEXT NOT NULL DEFAULT 'pending',
	last_enriched        DATETIME,
	last_updated         DATETIME NOT NULL,
	created_at           DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS enrichment_runs (
	id          TEXT PRIMARY KEY,
	mode        TEXT NOT NULL,
	total       INTEGER NOT NULL DEFAULT 0,
	success     INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0,
	skipped     INTEGER NOT NULL DEFAULT 0,
	dry_run     INTEGER NOT NULL DEFAULT 0,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_facilities_key ON facilities(name_key, address_key);
CREATE INDEX IF NOT EXISTS idx_facilities_status ON facilities(enrichment_status);
CREATE INDEX IF NOT EXISTS idx_facilities_lat_lng ON facilities(lat, lng);
CREATE INDEX IF NOT EXISTS idx_enrichment_runs_started ON enrichment_runs(started_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, rec *model.FacilityRecord) error {
	args, err := facilityArgs(rec, jsonAsString)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, s.insertFacility, args...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert facility %q", rec.Name)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return eris.Wrap(err, "sqlite: last insert id")
	}
	rec.ID = id
	return nil
}

func (s *SQLiteStore) Update(ctx context.Context, rec *model.FacilityRecord) error {
	args, err := facilityArgs(rec, jsonAsString)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, s.updateFacility, append(args, rec.ID)...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update facility %d", rec.ID)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (*model.FacilityRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM facilities WHERE id = ?`, id)
	rec, err := scanFacility(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get facility %d", id)
	}
	return rec, nil
}

func (s *SQLiteStore) FindByKey(ctx context.Context, key model.Key) (*model.FacilityRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM facilities WHERE name_key = ? AND address_key = ? ORDER BY id LIMIT 1`,
		key.Name, key.Address,
	)
	rec, err := scanFacility(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: find facility %s", key)
	}
	return rec, nil
}

func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]model.FacilityRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM facilities WHERE 1=1`
	var args []any
	if filter.ActiveOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY id LIMIT ? OFFSET ?`
	args = append(args, limitOrDefault(filter.Limit), filter.Offset)
	return s.queryFacilities(ctx, "list facilities", query, args...)
}

func (s *SQLiteStore) ListInBounds(ctx context.Context, filter BoundsFilter) ([]model.FacilityRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM facilities
		WHERE lat IS NOT NULL AND lng IS NOT NULL
		AND lat BETWEEN ? AND ? AND lng BETWEEN ? AND ?`
	if filter.ActiveOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY id`
	return s.queryFacilities(ctx, "list facilities in bounds", query,
		filter.MinLat, filter.MaxLat, filter.MinLng, filter.MaxLng)
}

func (s *SQLiteStore) ListForEnrichment(ctx context.Context, filter EnrichmentFilter) ([]model.FacilityRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM facilities WHERE 1=1`
	var args []any
	switch {
	case filter.Status != "":
		query += ` AND enrichment_status = ?`
		args = append(args, string(filter.Status))
	case filter.ExcludeStatus != "":
		query += ` AND enrichment_status != ?`
		args = append(args, string(filter.ExcludeStatus))
	}
	query += ` ORDER BY id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	return s.queryFacilities(ctx, "list for enrichment", query, args...)
}

func (s *SQLiteStore) MarkEnrichment(ctx context.Context, id int64, status model.EnrichmentStatus, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE facilities SET enrichment_status = ?, last_enriched = ? WHERE id = ?`,
		string(status), at.UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: mark enrichment %d", id)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) CountByStatus(ctx context.Context) (map[model.EnrichmentStatus]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT enrichment_status, COUNT(*) FROM facilities GROUP BY enrichment_status`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: count by status")
	}
	defer rows.Close() //nolint:errcheck

	counts := make(map[model.EnrichmentStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan status count")
		}
		counts[model.EnrichmentStatus(status)] = n
	}
	return counts, eris.Wrap(rows.Err(), "sqlite: count by status iterate")
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *model.EnrichmentRun) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO enrichment_runs (id, mode, total, success, failed, skipped, dry_run, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Mode, run.Total, run.Success, run.Failed, run.Skipped, run.DryRun,
		run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert enrichment run %s", run.ID)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.EnrichmentRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, mode, total, success, failed, skipped, dry_run, started_at, finished_at
		FROM enrichment_runs ORDER BY started_at DESC LIMIT ?`,
		limitOrDefault(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.EnrichmentRun
	for rows.Next() {
		var r model.EnrichmentRun
		if err := rows.Scan(&r.ID, &r.Mode, &r.Total, &r.Success, &r.Failed, &r.Skipped, &r.DryRun, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) queryFacilities(ctx context.Context, op, query string, args ...any) ([]model.FacilityRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: %s", op)
	}
	defer rows.Close() //nolint:errcheck

	var out []model.FacilityRecord
	for rows.Next() {
		rec, err := scanFacility(rows)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: %s scan", op)
		}
		out = append(out, *rec)
	}
	return out, eris.Wrapf(rows.Err(), "sqlite: %s iterate", op)
}

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return 1000
	}
	return limit
}
