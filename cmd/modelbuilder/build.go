package main

import (
	"context"
	"fmt"
	"log"
	"time"
	"visit-model-service/internal/adapters/cache"
	"visit-model-service/internal/adapters/calendar"
	"visit-model-service/internal/adapters/geocode"
	"visit-model-service/internal/config"
	"visit-model-service/internal/domain"
	"visit-model-service/internal/platform/obs"
	"visit-model-service/internal/ports"
	"visit-model-service/internal/services"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

type buildFlags struct {
	visits        string
	employees     string
	out           string
	report        string
	pool          string
	priorModel    string
	priorSolution string
	icsDir        string
	strict        bool
}

func (a *app) buildCmd() *cobra.Command {
	var f buildFlags
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a solver model from visit and employee tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBuild(cmd.Context(), f)
		},
	}
	cmd.Flags().StringVar(&f.visits, "visits", "", "visit table (CSV, comma or semicolon)")
	cmd.Flags().StringVar(&f.employees, "employees", "", "employee/shift table")
	cmd.Flags().StringVarP(&f.out, "out", "o", "model.json", "model output file, - for stdout")
	cmd.Flags().StringVar(&f.report, "report", "", "also write the build report as JSON")
	cmd.Flags().StringVar(&f.pool, "pool", "", "continuity pool strategy: source, source-all, area or prior")
	cmd.Flags().StringVar(&f.priorModel, "prior-model", "", "model of the prior run (prior strategy)")
	cmd.Flags().StringVar(&f.priorSolution, "prior-solution", "", "optimizer output of the prior run (prior strategy)")
	cmd.Flags().StringVar(&f.icsDir, "ics-dir", "", "export one iCalendar file per vehicle into this directory")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail when any source row or occurrence was rejected")
	_ = cmd.MarkFlagRequired("visits")
	return cmd
}

func (a *app) runBuild(ctx context.Context, f buildFlags) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	visits, visitErrs, err := readVisits(f.visits)
	if err != nil {
		return err
	}
	employees, employeeErrs, err := readEmployees(f.employees)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	ctx = obs.WithRunID(ctx, runID)

	opts := services.BuildOptions{}
	if opts.Geocoder, err = newGeocoder(cfg.Geocoder); err != nil {
		return err
	}

	if f.pool != "" {
		if opts.Pool, err = services.StrategyByName(f.pool); err != nil {
			return err
		}
		if _, ok := opts.Pool.(services.PriorRunPoolStrategy); ok {
			if f.priorModel == "" || f.priorSolution == "" {
				return fmt.Errorf("pool %s needs --prior-model and --prior-solution", f.pool)
			}
			var m domain.Model
			var out domain.SolverOutput
			if err := readJSON(f.priorModel, &m); err != nil {
				return err
			}
			if err := readJSON(f.priorSolution, &out); err != nil {
				return err
			}
			opts.PriorModel, opts.PriorSolution = &m, &out
		}
	}

	factory, closeRedis, err := newCacheFactory(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer closeRedis()

	runCache, release, err := factory.NewRunCache(ctx, runID)
	if err != nil {
		return err
	}
	defer release()
	opts.Cache = runCache

	res, err := services.BuildModel(ctx, cfg.Planning, services.BuildInput{Visits: visits, Employees: employees}, opts)
	if err != nil {
		return err
	}
	if err := services.ValidateModel(&res.Model); err != nil {
		return fmt.Errorf("built model is invalid: %w", err)
	}

	if err := writeJSON(a.out, f.out, res.Model); err != nil {
		return err
	}
	if f.report != "" {
		if err := writeJSON(a.out, f.report, res.Report); err != nil {
			return err
		}
	}
	if f.icsDir != "" {
		paths, err := calendar.ExportShiftCalendars(f.icsDir, res.Vehicles, time.Now())
		if err != nil {
			return err
		}
		log.Printf("exported shift calendars dir=%s files=%d", f.icsDir, len(paths))
	}

	if f.out != "-" {
		if a.v.GetBool("json") {
			if err := writeJSON(a.out, "-", res.Report); err != nil {
				return err
			}
		} else {
			printReport(a.out, runID, res.Report, len(visitErrs)+len(employeeErrs))
		}
	}

	if f.strict {
		rejected := len(visitErrs) + len(employeeErrs) + len(res.Report.Fatal())
		if rejected > 0 {
			return fmt.Errorf("strict: %d source rows or occurrences rejected", rejected)
		}
	}
	return nil
}

func newGeocoder(gc config.GeocoderConfig) (ports.Geocoder, error) {
	if gc.Provider != "ors" {
		return nil, nil
	}
	g, err := geocode.NewORSGeocoder(gc.APIKey,
		geocode.WithBaseURL(gc.BaseURL),
		geocode.WithCountry(gc.Country),
	)
	if err != nil {
		return nil, fmt.Errorf("new geocoder: %w", err)
	}
	return g, nil
}

func newCacheFactory(ctx context.Context, rc config.RedisConfig) (cache.Factory, func(), error) {
	f := cache.Factory{TTL: rc.TTL}
	if rc.Addr == "" {
		return f, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{Addr: rc.Addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return f, nil, fmt.Errorf("redis ping %s: %w", rc.Addr, err)
	}
	f.Redis = client
	return f, func() { client.Close() }, nil
}
