package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"visit-model-service/internal/domain"
	"visit-model-service/internal/platform/db"
	"visit-model-service/internal/platform/obs"
	"visit-model-service/internal/ports"

	"github.com/google/uuid"
)

// SQL-backed implementation of the ModelStore port. Queries are written with
// "?" placeholders and rebound for Postgres.
type SQLModelStore struct {
	DB      *sql.DB
	dialect db.Dialect
}

func NewSQLModelStore(conn *sql.DB, dialect db.Dialect) *SQLModelStore {
	return &SQLModelStore{DB: conn, dialect: dialect}
}

// Persist a new run. A missing id gets a fresh UUID and a zero CreatedAt is
// set to now.
func (s *SQLModelStore) SaveRun(ctx context.Context, run *ports.ModelRun) (err error) {
	defer obs.Time(ctx, "store.SaveRun")(&err)

	if s.DB == nil {
		return errors.New("model store: DB is nil")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	modelJSON, err := json.Marshal(run.Model)
	if err != nil {
		return fmt.Errorf("save run: encode model: %w", err)
	}
	var solutionJSON any
	if run.Solution != nil {
		b, err := json.Marshal(run.Solution)
		if err != nil {
			return fmt.Errorf("save run: encode solution: %w", err)
		}
		solutionJSON = string(b)
	}

	query := `
	INSERT INTO model_runs (
		id,
		label,
		created_at,
		model_json,
		solution_json
	)
	VALUES (?, ?, ?, ?, ?);
	`
	if _, err := s.DB.ExecContext(ctx, s.dialect.Rebind(query),
		run.ID, run.Label, run.CreatedAt.UnixMilli(), string(modelJSON), solutionJSON,
	); err != nil {
		return fmt.Errorf("save run id=%s: %w", run.ID, err)
	}
	return nil
}

// Return one run by id.
func (s *SQLModelStore) GetRun(ctx context.Context, id string) (_ *ports.ModelRun, err error) {
	defer obs.Time(ctx, "store.GetRun")(&err)

	if s.DB == nil {
		return nil, errors.New("model store: DB is nil")
	}

	query := `
	SELECT
		id,
		label,
		created_at,
		CAST(model_json AS TEXT),
		CAST(solution_json AS TEXT)
	FROM model_runs
	WHERE id = ?;
	`
	row := s.DB.QueryRowContext(ctx, s.dialect.Rebind(query), id)

	run, err := scanRun(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run id=%s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run id=%s: %w", id, err)
	}
	return run, nil
}

// Return the most recent runs, newest first, without their model bodies.
func (s *SQLModelStore) ListRuns(ctx context.Context, limit int) (_ []*ports.ModelRun, err error) {
	defer obs.Time(ctx, "store.ListRuns")(&err)

	if s.DB == nil {
		return nil, errors.New("model store: DB is nil")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
	SELECT
		id,
		label,
		created_at,
		'' AS model_json,
		CAST(solution_json AS TEXT)
	FROM model_runs
	ORDER BY created_at DESC, id
	LIMIT ?;
	`
	rows, err := s.DB.QueryContext(ctx, s.dialect.Rebind(query), limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: query model_runs table: %w", err)
	}
	defer rows.Close()

	runs := make([]*ports.ModelRun, 0, 16)
	for rows.Next() {
		run, err := scanRun(rows, false)
		if err != nil {
			return nil, fmt.Errorf("list runs: scan row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: row iteration: %w", err)
	}

	return runs, nil
}

// Attach (or replace) the optimizer output of a run.
func (s *SQLModelStore) SaveSolution(ctx context.Context, id string, out domain.SolverOutput) (err error) {
	defer obs.Time(ctx, "store.SaveSolution")(&err)

	b, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("save solution: encode: %w", err)
	}
	return s.updateColumn(ctx, "solution_json", id, string(b))
}

// Replace the model of a run, e.g. after pools were applied.
func (s *SQLModelStore) UpdateModel(ctx context.Context, id string, m domain.Model) (err error) {
	defer obs.Time(ctx, "store.UpdateModel")(&err)

	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("update model: encode: %w", err)
	}
	return s.updateColumn(ctx, "model_json", id, string(b))
}

// column is always a constant from this file.
func (s *SQLModelStore) updateColumn(ctx context.Context, column, id, value string) error {
	if s.DB == nil {
		return errors.New("model store: DB is nil")
	}

	query := "UPDATE model_runs SET " + column + " = ? WHERE id = ?;"
	res, err := s.DB.ExecContext(ctx, s.dialect.Rebind(query), value, id)
	if err != nil {
		return fmt.Errorf("update %s id=%s: %w", column, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s id=%s: rows affected: %w", column, id, err)
	}
	if n == 0 {
		return fmt.Errorf("update %s id=%s: %w", column, id, domain.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner, withModel bool) (*ports.ModelRun, error) {
	var (
		run       ports.ModelRun
		createdMs int64
		modelRaw  sql.NullString
		solRaw    sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Label, &createdMs, &modelRaw, &solRaw); err != nil {
		return nil, err
	}
	run.CreatedAt = time.UnixMilli(createdMs).UTC()

	if withModel && modelRaw.Valid && modelRaw.String != "" {
		if err := json.Unmarshal([]byte(modelRaw.String), &run.Model); err != nil {
			return nil, fmt.Errorf("decode model: %w", err)
		}
	}
	if solRaw.Valid && solRaw.String != "" {
		var out domain.SolverOutput
		if err := json.Unmarshal([]byte(solRaw.String), &out); err != nil {
			return nil, fmt.Errorf("decode solution: %w", err)
		}
		run.Solution = &out
	}
	return &run, nil
}
