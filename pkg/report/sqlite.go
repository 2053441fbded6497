package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists records in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS reports (
	id                TEXT PRIMARY KEY,
	topic             TEXT NOT NULL,
	strategy_id       INTEGER NOT NULL,
	strategy_name     TEXT NOT NULL,
	report_text       TEXT NOT NULL,
	quality_aggregate REAL NOT NULL,
	iterations_used   INTEGER NOT NULL,
	agent_team        TEXT NOT NULL,
	below_threshold   INTEGER NOT NULL,
	partial_consensus INTEGER NOT NULL,
	created_at        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at DESC);
`

// NewSQLiteStore opens (or creates) the database at path. Parent
// directories are created as needed; WAL mode is enabled for concurrent
// reads.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite store: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	team, err := json.Marshal(rec.AgentTeam)
	if err != nil {
		return fmt.Errorf("marshal agent team: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reports
			(id, topic, strategy_id, strategy_name, report_text,
			 quality_aggregate, iterations_used, agent_team,
			 below_threshold, partial_consensus, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			topic = excluded.topic,
			strategy_id = excluded.strategy_id,
			strategy_name = excluded.strategy_name,
			report_text = excluded.report_text,
			quality_aggregate = excluded.quality_aggregate,
			iterations_used = excluded.iterations_used,
			agent_team = excluded.agent_team,
			below_threshold = excluded.below_threshold,
			partial_consensus = excluded.partial_consensus,
			created_at = excluded.created_at`,
		rec.ID, rec.Topic, rec.StrategyID, rec.StrategyName, rec.ReportText,
		rec.QualityAggregate, rec.IterationsUsed, string(team),
		boolInt(rec.BelowThreshold), boolInt(rec.PartialConsensus),
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, topic, strategy_id, strategy_name, report_text,
		       quality_aggregate, iterations_used, agent_team,
		       below_threshold, partial_consensus, created_at
		FROM reports WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*Record, error) {
	query := `
		SELECT id, topic, strategy_id, strategy_name, report_text,
		       quality_aggregate, iterations_used, agent_team,
		       below_threshold, partial_consensus, created_at
		FROM reports ORDER BY created_at DESC, id DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+" LIMIT ?", limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM reports WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var rec Record
	var team, created string
	var below, partial int
	err := row.Scan(&rec.ID, &rec.Topic, &rec.StrategyID, &rec.StrategyName,
		&rec.ReportText, &rec.QualityAggregate, &rec.IterationsUsed, &team,
		&below, &partial, &created)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(team), &rec.AgentTeam); err != nil {
		return nil, fmt.Errorf("unmarshal agent team: %w", err)
	}
	rec.BelowThreshold = below != 0
	rec.PartialConsensus = partial != 0
	rec.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &rec, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
