package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"visit-model-service/internal/config"
	"visit-model-service/internal/domain"
	"visit-model-service/internal/platform/obs"
	"visit-model-service/internal/ports"
)

// BuildInput is the canonical source data of one run.
type BuildInput struct {
	Visits    []domain.VisitRecord
	Employees []domain.EmployeeRecord
}

// BuildOptions injects the run's collaborators. Cache is required and must
// be owned by this run. Geocoder may be nil when every record carries
// coordinates.
type BuildOptions struct {
	Geocoder ports.Geocoder
	Cache    ports.GeocodeCache
	// Pool, when set, patches the model with its continuity pools.
	Pool PoolStrategy
	// PriorModel and PriorSolution feed the prior-run strategy.
	PriorModel    *domain.Model
	PriorSolution *domain.SolverOutput
}

type BuildResult struct {
	Model       domain.Model
	Report      *BuildReport
	Occurrences []domain.VisitOccurrence
	Vehicles    []domain.Vehicle
	Pools       domain.ContinuityPools
}

// BuildModel runs the whole pipeline: expand, resolve addresses, group,
// generate the shift calendar, convert and optionally patch pools. Every call
// owns its occurrence counter and address cache.
func BuildModel(
	ctx context.Context,
	planning config.Planning,
	in BuildInput,
	opts BuildOptions,
) (_ *BuildResult, err error) {
	defer obs.Time(ctx, "services.BuildModel")(&err)

	planning.Normalize()
	planning.PinStart()
	report := &BuildReport{}

	expander, err := NewExpander(planning)
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}
	occs := expander.Expand(in.Visits, report)

	if opts.Cache == nil {
		return nil, errors.New("build model: geocode cache is required")
	}
	resolver := NewAddressResolver(opts.Geocoder, opts.Cache, planning.GeocodeDelay)
	occs, err = resolver.Resolve(ctx, occs, report)
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}

	standalone, groups := GroupVisits(occs)
	report.StandaloneVisits = len(standalone)
	report.VisitGroups = len(groups)

	vehicles, err := GenerateVehicles(planning, in.Employees, report)
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}

	model := ToModel(standalone, groups, vehicles)

	res := &BuildResult{
		Model:       model,
		Report:      report,
		Occurrences: occs,
		Vehicles:    vehicles,
	}

	if opts.Pool != nil {
		pools, err := opts.Pool.BuildPool(ctx, PoolContext{
			Occurrences:   occs,
			Vehicles:      vehicles,
			PriorModel:    opts.PriorModel,
			PriorSolution: opts.PriorSolution,
			Cap:           planning.PoolCap,
		})
		if err != nil {
			return nil, fmt.Errorf("build model: pool %s: %w", opts.Pool.Name(), err)
		}
		// Pools may name staff without a vehicle (source-all); only ids of
		// this run's vehicles are written into the model.
		res.Pools = pools
		report.PooledPeople = len(pools)
		report.PatchedVisits = ApplyPools(&res.Model, FilterPools(pools, res.Model.VehicleIDs()))
		log.Printf("build: applied pools strategy=%s people=%d visits=%d", opts.Pool.Name(), len(pools), report.PatchedVisits)
	}

	report.log()
	return res, nil
}

// ToModel converts occurrences, groups and vehicles into the solver document.
func ToModel(standalone []domain.VisitOccurrence, groups []domain.VisitGroup, vehicles []domain.Vehicle) domain.Model {
	m := domain.Model{
		Visits:      make([]domain.ModelVisit, 0, len(standalone)),
		VisitGroups: make([]domain.ModelVisitGroup, 0, len(groups)),
		Vehicles:    make([]domain.ModelVehicle, 0, len(vehicles)),
	}

	for _, o := range standalone {
		m.Visits = append(m.Visits, toModelVisit(o))
	}
	for _, g := range groups {
		mg := domain.ModelVisitGroup{ID: g.ID, Visits: make([]domain.ModelVisit, 0, len(g.Visits))}
		for _, o := range g.Visits {
			mg.Visits = append(mg.Visits, toModelVisit(o))
		}
		m.VisitGroups = append(m.VisitGroups, mg)
	}
	for _, v := range vehicles {
		m.Vehicles = append(m.Vehicles, toModelVehicle(v))
	}
	return m
}

func toModelVisit(o domain.VisitOccurrence) domain.ModelVisit {
	return domain.ModelVisit{
		ID:              fmt.Sprintf("V%d", o.ID),
		Name:            o.Client,
		Location:        o.Location.LatLon(),
		ServiceDuration: domain.FormatISODuration(o.Duration),
		MinStartTime:    o.Window.MinStartTime,
		MaxStartTime:    o.Window.MaxStartTime,
		MaxEndTime:      o.Window.MaxEndTime,
	}
}

func toModelVehicle(v domain.Vehicle) domain.ModelVehicle {
	mv := domain.ModelVehicle{ID: v.ID, Shifts: make([]domain.ModelShift, 0, len(v.Shifts))}
	for _, s := range v.Shifts {
		ms := domain.ModelShift{
			ID:            s.ID,
			StartLocation: s.StartLocation.LatLon(),
			MinStartTime:  s.Start,
			MaxEndTime:    s.End,
		}
		if s.Break != nil {
			mb := domain.ModelBreak{
				ID:           s.Break.ID,
				MinStartTime: s.Break.MinStartTime,
				MaxEndTime:   s.Break.MaxEndTime,
				Duration:     domain.FormatISODuration(s.Break.Duration),
			}
			if s.Break.Location != nil {
				loc := s.Break.Location.LatLon()
				mb.Location = &loc
			}
			ms.RequiredBreaks = []domain.ModelBreak{mb}
		}
		mv.Shifts = append(mv.Shifts, ms)
	}
	return mv
}
