package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"visit-model-service/internal/api/dto"
	"visit-model-service/internal/config"
	"visit-model-service/internal/domain"
	"visit-model-service/internal/platform/obs"
	"visit-model-service/internal/ports"
	"visit-model-service/internal/services"

	"github.com/google/uuid"
)

// ModelHandler builds, stores and patches solver models.
type ModelHandler struct {
	Store    ports.ModelStore
	Planning config.Planning
	Geocoder ports.Geocoder
	Caches   ports.GeocodeCacheFactory
}

// Build expands the posted source rows into a model and stores it as a new run.
func (h *ModelHandler) Build(w http.ResponseWriter, r *http.Request) {
	var req dto.BuildModelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Visits) == 0 {
		writeError(w, r, http.StatusBadRequest, "visits are required")
		return
	}
	if err := recordErrors(req.Visits, req.Employees); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	planning := h.Planning
	if o := req.Planning; o != nil {
		if o.StartDate != "" {
			planning.StartDate = o.StartDate
		}
		if o.Weeks != 0 {
			planning.Weeks = o.Weeks
		}
		if o.PoolCap != 0 {
			planning.PoolCap = o.PoolCap
		}
	}
	if err := planning.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	runID := uuid.NewString()
	ctx := obs.WithRunID(r.Context(), runID)

	opts := services.BuildOptions{Geocoder: h.Geocoder}

	if req.Pool != "" {
		strategy, err := services.StrategyByName(req.Pool)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		opts.Pool = strategy

		if _, ok := strategy.(services.PriorRunPoolStrategy); ok {
			prior, err := h.Store.GetRun(ctx, strings.TrimSpace(req.PriorRunID))
			if err != nil {
				h.storeError(w, r, "load prior run", err)
				return
			}
			if prior.Solution == nil {
				writeError(w, r, http.StatusConflict, "prior run has no solution")
				return
			}
			opts.PriorModel = &prior.Model
			opts.PriorSolution = prior.Solution
		}
	}

	cache, release, err := h.Caches.NewRunCache(ctx, runID)
	if err != nil {
		log.Printf("build model: geocode cache failed run_id=%s err=%v", runID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	defer release()
	opts.Cache = cache

	res, err := services.BuildModel(ctx, planning, services.BuildInput{Visits: req.Visits, Employees: req.Employees}, opts)
	if err != nil {
		log.Printf("build model failed run_id=%s err=%v", runID, err)
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := services.ValidateModel(&res.Model); err != nil {
		log.Printf("build model: invalid model run_id=%s err=%v", runID, err)
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	run := &ports.ModelRun{ID: runID, Label: req.Label, Model: res.Model}
	if err := h.Store.SaveRun(ctx, run); err != nil {
		h.storeError(w, r, "save run", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.BuildModelResponse{
		ID:     run.ID,
		Report: res.Report,
		Pools:  res.Pools,
		Model:  res.Model,
	})
}

// recordErrors names every posted row that fails record validation by its
// index in the request.
func recordErrors(visits []domain.VisitRecord, employees []domain.EmployeeRecord) error {
	var errs []error
	for i, v := range visits {
		if err := v.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("visits[%d]: %w", i, err))
		}
	}
	for i, e := range employees {
		if err := e.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("employees[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func (h *ModelHandler) List(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.ListRuns(r.Context(), 100)
	if err != nil {
		h.storeError(w, r, "list runs", err)
		return
	}

	res := dto.ListRunsResponse{Runs: make([]dto.RunSummary, 0, len(runs))}
	for _, run := range runs {
		res.Runs = append(res.Runs, summary(run))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *ModelHandler) Get(w http.ResponseWriter, r *http.Request) {
	run, err := h.Store.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		h.storeError(w, r, "get run", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.RunResponse{
		RunSummary: summary(run),
		Model:      run.Model,
		Solution:   run.Solution,
	})
}

// PutSolution attaches the optimizer's assignments to a run. Every assigned
// visit and vehicle must exist in the run's model.
func (h *ModelHandler) PutSolution(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var out domain.SolverOutput
	if err := decodeJSON(w, r, &out); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	run, err := h.Store.GetRun(r.Context(), id)
	if err != nil {
		h.storeError(w, r, "get run", err)
		return
	}
	if err := services.CheckSolution(&run.Model, out); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Store.SaveSolution(r.Context(), id, out); err != nil {
		h.storeError(w, r, "save solution", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Pools ranks the vehicles of a solved prior run per person and optionally
// restricts the target run's visits to them.
func (h *ModelHandler) Pools(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req dto.PoolRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.PriorRunID) == "" {
		writeError(w, r, http.StatusBadRequest, "prior_run_id is required")
		return
	}
	limit := req.Cap
	if limit == 0 {
		limit = h.Planning.PoolCap
	}
	if limit < 1 {
		writeError(w, r, http.StatusBadRequest, "cap must be positive")
		return
	}

	target, err := h.Store.GetRun(r.Context(), id)
	if err != nil {
		h.storeError(w, r, "get run", err)
		return
	}
	prior, err := h.Store.GetRun(r.Context(), req.PriorRunID)
	if err != nil {
		h.storeError(w, r, "load prior run", err)
		return
	}
	if prior.Solution == nil {
		writeError(w, r, http.StatusConflict, "prior run has no solution")
		return
	}

	pools, err := services.PriorRunPoolStrategy{}.BuildPool(r.Context(), services.PoolContext{
		PriorModel:    &prior.Model,
		PriorSolution: prior.Solution,
		Cap:           limit,
	})
	if err != nil {
		log.Printf("build pools failed run_id=%s err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.PoolResponse{Pools: pools}
	if req.Apply {
		pools = services.FilterPools(pools, target.Model.VehicleIDs())
		res.Pools = pools
		res.PatchedVisits = services.ApplyPools(&target.Model, pools)
		if err := services.ValidateModel(&target.Model); err != nil {
			writeError(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err := h.Store.UpdateModel(r.Context(), id, target.Model); err != nil {
			h.storeError(w, r, "update model", err)
			return
		}
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *ModelHandler) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "run not found")
		return
	}
	log.Printf("%s failed: %v", op, err)
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}

func summary(run *ports.ModelRun) dto.RunSummary {
	return dto.RunSummary{
		ID:          run.ID,
		Label:       run.Label,
		CreatedAt:   run.CreatedAt,
		HasSolution: run.Solution != nil,
	}
}
