package dto

import (
	"time"
	"visit-model-service/internal/domain"
	"visit-model-service/internal/services"
)

// PlanningOverride adjusts the server's planning defaults for one build.
type PlanningOverride struct {
	StartDate string `json:"start_date"`
	Weeks     int    `json:"weeks"`
	PoolCap   int    `json:"pool_cap"`
}

type BuildModelRequest struct {
	Label     string                  `json:"label"`
	Planning  *PlanningOverride       `json:"planning"`
	Visits    []domain.VisitRecord    `json:"visits"`
	Employees []domain.EmployeeRecord `json:"employees"`
	// Pool names a continuity strategy: source, source-all, area or prior.
	Pool string `json:"pool"`
	// PriorRunID feeds the prior strategy; the run must have a solution.
	PriorRunID string `json:"prior_run_id"`
}

type BuildModelResponse struct {
	ID     string                 `json:"id"`
	Report *services.BuildReport  `json:"report"`
	Pools  domain.ContinuityPools `json:"pools,omitempty"`
	Model  domain.Model           `json:"model"`
}

type RunSummary struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	CreatedAt   time.Time `json:"created_at"`
	HasSolution bool      `json:"has_solution"`
}

type ListRunsResponse struct {
	Runs []RunSummary `json:"runs"`
}

type RunResponse struct {
	RunSummary
	Model    domain.Model         `json:"model"`
	Solution *domain.SolverOutput `json:"solution,omitempty"`
}

type PoolRequest struct {
	// PriorRunID is the solved run whose assignments are ranked.
	PriorRunID string `json:"prior_run_id"`
	Cap        int    `json:"cap"`
	// Apply patches the target run's stored model.
	Apply bool `json:"apply"`
}

type PoolResponse struct {
	Pools         domain.ContinuityPools `json:"pools"`
	PatchedVisits int                    `json:"patched_visits"`
}
