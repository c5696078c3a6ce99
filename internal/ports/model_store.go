package ports

import (
	"context"
	"time"
	"visit-model-service/internal/domain"
)

// A persisted model build, optionally with the optimizer's answer attached.
type ModelRun struct {
	ID        string
	Label     string
	CreatedAt time.Time
	Model     domain.Model
	Solution  *domain.SolverOutput
}

// Port: a boundary for persisting built models and solver outputs.
// Lookups of unknown ids return an error wrapping domain.ErrNotFound.
type ModelStore interface {
	SaveRun(ctx context.Context, run *ModelRun) error
	GetRun(ctx context.Context, id string) (*ModelRun, error)
	ListRuns(ctx context.Context, limit int) ([]*ModelRun, error)
	SaveSolution(ctx context.Context, id string, out domain.SolverOutput) error
	UpdateModel(ctx context.Context, id string, m domain.Model) error
}
