package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"visit-model-service/internal/domain"
)

// PoolContext carries everything a PoolStrategy may draw on. Strategies use
// only the fields they need.
type PoolContext struct {
	// Occurrences of the current run, with staff names and areas.
	Occurrences []domain.VisitOccurrence
	// Vehicles of the current run.
	Vehicles []domain.Vehicle
	// PriorModel and PriorSolution describe an earlier solved run.
	PriorModel    *domain.Model
	PriorSolution *domain.SolverOutput
	// Cap bounds every pool list; zero or less means no cap.
	Cap int
}

// PoolStrategy derives continuity pools (person -> vehicle ids).
type PoolStrategy interface {
	Name() string
	BuildPool(ctx context.Context, pc PoolContext) (domain.ContinuityPools, error)
}

// SourcePoolStrategy pools the staff the source data already assigns to each
// person, in first-seen order.
type SourcePoolStrategy struct {
	// FilterToKnown drops staff that do not resolve to a vehicle of the run.
	FilterToKnown bool
}

func (SourcePoolStrategy) Name() string { return "source" }

func (s SourcePoolStrategy) BuildPool(ctx context.Context, pc PoolContext) (domain.ContinuityPools, error) {
	known := vehicleIDsByName(pc.Vehicles)

	lists := newPoolLists(pc.Cap)
	for _, o := range pc.Occurrences {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		staff := strings.TrimSpace(o.StaffName)
		if staff == "" {
			continue
		}

		id := staff
		if vid, ok := known[domain.NormalizeShiftName(staff)]; ok {
			id = vid
		} else if s.FilterToKnown {
			continue
		}
		lists.add(o.Person(), id)
	}
	return lists.pools(), nil
}

// PriorRunPoolStrategy ranks the vehicles that served each person in an
// earlier solved run by how many visits they took. Ties keep first-seen order.
type PriorRunPoolStrategy struct{}

func (PriorRunPoolStrategy) Name() string { return "prior" }

func (PriorRunPoolStrategy) BuildPool(ctx context.Context, pc PoolContext) (domain.ContinuityPools, error) {
	if pc.PriorModel == nil || pc.PriorSolution == nil {
		return nil, errors.New("prior run pool: prior model and solver output are required")
	}

	personByVisit := make(map[string]string)
	pc.PriorModel.EachVisit(func(v *domain.ModelVisit) {
		personByVisit[v.ID] = domain.PersonOf(v.Name)
	})

	type tally struct {
		order  []string
		counts map[string]int
	}
	people := make([]string, 0)
	tallies := make(map[string]*tally)

	for _, a := range pc.PriorSolution.Assignments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		person, ok := personByVisit[a.VisitID]
		if !ok || a.VehicleID == "" {
			continue
		}
		t, ok := tallies[person]
		if !ok {
			t = &tally{counts: make(map[string]int)}
			tallies[person] = t
			people = append(people, person)
		}
		if _, seen := t.counts[a.VehicleID]; !seen {
			t.order = append(t.order, a.VehicleID)
		}
		t.counts[a.VehicleID]++
	}

	lists := newPoolLists(pc.Cap)
	for _, person := range people {
		t := tallies[person]
		ranked := append([]string(nil), t.order...)
		sort.SliceStable(ranked, func(i, j int) bool { return t.counts[ranked[i]] > t.counts[ranked[j]] })
		for _, vid := range ranked {
			lists.add(person, vid)
		}
	}
	return lists.pools(), nil
}

// AreaPoolStrategy partitions the run's vehicles round-robin over the
// distinct service areas and gives each person the list of its area.
type AreaPoolStrategy struct{}

func (AreaPoolStrategy) Name() string { return "area" }

func (AreaPoolStrategy) BuildPool(ctx context.Context, pc PoolContext) (domain.ContinuityPools, error) {
	areaSet := make(map[string]struct{})
	for _, o := range pc.Occurrences {
		if a := strings.TrimSpace(o.Area); a != "" {
			areaSet[a] = struct{}{}
		}
	}
	if len(areaSet) == 0 {
		return domain.ContinuityPools{}, nil
	}

	areas := make([]string, 0, len(areaSet))
	for a := range areaSet {
		areas = append(areas, a)
	}
	sort.Strings(areas)

	ids := make([]string, 0, len(pc.Vehicles))
	for _, v := range pc.Vehicles {
		ids = append(ids, v.ID)
	}
	sort.Strings(ids)

	byArea := make(map[string][]string, len(areas))
	for i, id := range ids {
		a := areas[i%len(areas)]
		byArea[a] = append(byArea[a], id)
	}

	lists := newPoolLists(pc.Cap)
	for _, o := range pc.Occurrences {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, id := range byArea[strings.TrimSpace(o.Area)] {
			lists.add(o.Person(), id)
		}
	}
	return lists.pools(), nil
}

// StrategyByName selects a strategy by its Name.
func StrategyByName(name string) (PoolStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "source":
		return SourcePoolStrategy{FilterToKnown: true}, nil
	case "source-all":
		return SourcePoolStrategy{}, nil
	case "prior":
		return PriorRunPoolStrategy{}, nil
	case "area":
		return AreaPoolStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown pool strategy %q", name)
	}
}

// ApplyPools restricts every visit whose person has a non-empty pool to that
// pool and returns how many visits were patched. Other visits are left
// unconstrained.
func ApplyPools(m *domain.Model, pools domain.ContinuityPools) int {
	patched := 0
	m.EachVisit(func(v *domain.ModelVisit) {
		pool := pools[domain.PersonOf(v.Name)]
		if len(pool) == 0 {
			return
		}
		v.AllowedVehicles = append([]string(nil), pool...)
		patched++
	})
	return patched
}

func vehicleIDsByName(vs []domain.Vehicle) map[string]string {
	out := make(map[string]string, len(vs)*2)
	for _, v := range vs {
		out[domain.NormalizeShiftName(v.Name)] = v.ID
		out[domain.NormalizeShiftName(v.ID)] = v.ID
	}
	return out
}

// poolLists accumulates distinct, capped lists per person.
type poolLists struct {
	limit int
	lists domain.ContinuityPools
	seen  map[string]map[string]struct{}
}

func newPoolLists(limit int) *poolLists {
	return &poolLists{
		limit: limit,
		lists: make(domain.ContinuityPools),
		seen:  make(map[string]map[string]struct{}),
	}
}

func (p *poolLists) add(person, id string) {
	if person == "" || id == "" {
		return
	}
	if p.limit > 0 && len(p.lists[person]) >= p.limit {
		return
	}
	s, ok := p.seen[person]
	if !ok {
		s = make(map[string]struct{})
		p.seen[person] = s
	}
	if _, dup := s[id]; dup {
		return
	}
	s[id] = struct{}{}
	p.lists[person] = append(p.lists[person], id)
}

func (p *poolLists) pools() domain.ContinuityPools { return p.lists }

// FilterPools keeps only vehicle ids present in known, preserving order.
// People left with an empty list are dropped.
func FilterPools(pools domain.ContinuityPools, known []string) domain.ContinuityPools {
	set := make(map[string]struct{}, len(known))
	for _, id := range known {
		set[id] = struct{}{}
	}

	out := make(domain.ContinuityPools, len(pools))
	for person, ids := range pools {
		kept := make([]string, 0, len(ids))
		for _, id := range ids {
			if _, ok := set[id]; ok {
				kept = append(kept, id)
			}
		}
		if len(kept) > 0 {
			out[person] = kept
		}
	}
	return out
}
