package main

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"visit-model-service/internal/domain"
	"visit-model-service/internal/services"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type poolFlags struct {
	priorModel    string
	priorSolution string
	out           string
	apply         string
}

func (a *app) poolCmd() *cobra.Command {
	var f poolFlags
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Rank each person's caregivers from a solved prior run",
		Long: `pool counts, per person, how often each vehicle served them in the prior
run's solution and keeps the most frequent ones up to --pool-cap. With
--apply the pools are written into an existing model file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPool(cmd.Context(), f)
		},
	}
	cmd.Flags().StringVar(&f.priorModel, "prior-model", "", "model of the prior run")
	cmd.Flags().StringVar(&f.priorSolution, "prior-solution", "", "optimizer output of the prior run")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "write the pools as JSON")
	cmd.Flags().StringVar(&f.apply, "apply", "", "model file to restrict to the pools (rewritten in place)")
	_ = cmd.MarkFlagRequired("prior-model")
	_ = cmd.MarkFlagRequired("prior-solution")
	return cmd
}

func (a *app) runPool(ctx context.Context, f poolFlags) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	var prior domain.Model
	var solution domain.SolverOutput
	if err := readJSON(f.priorModel, &prior); err != nil {
		return err
	}
	if err := readJSON(f.priorSolution, &solution); err != nil {
		return err
	}
	if err := services.CheckSolution(&prior, solution); err != nil {
		return fmt.Errorf("prior solution does not match prior model: %w", err)
	}

	pools, err := services.PriorRunPoolStrategy{}.BuildPool(ctx, services.PoolContext{
		PriorModel:    &prior,
		PriorSolution: &solution,
		Cap:           cfg.Planning.PoolCap,
	})
	if err != nil {
		return err
	}

	if f.apply != "" {
		var target domain.Model
		if err := readJSON(f.apply, &target); err != nil {
			return err
		}
		pools = services.FilterPools(pools, target.VehicleIDs())
		patched := services.ApplyPools(&target, pools)
		if err := services.ValidateModel(&target); err != nil {
			return fmt.Errorf("patched model is invalid: %w", err)
		}
		if err := writeJSON(a.out, f.apply, target); err != nil {
			return err
		}
		log.Printf("applied pools model=%s people=%d visits=%d", f.apply, len(pools), patched)
	}

	if f.out != "" {
		if err := writeJSON(a.out, f.out, pools); err != nil {
			return err
		}
	}
	if f.out == "-" {
		return nil
	}
	if a.v.GetBool("json") {
		return writeJSON(a.out, "-", pools)
	}
	printPools(a, pools)
	return nil
}

func printPools(a *app, pools domain.ContinuityPools) {
	people := make([]string, 0, len(pools))
	for p := range pools {
		people = append(people, p)
	}
	sort.Strings(people)

	tw := table.NewWriter()
	tw.SetOutputMirror(a.out)
	tw.AppendHeader(table.Row{"Person", "Vehicles"})
	for _, p := range people {
		tw.AppendRow(table.Row{p, strings.Join(pools[p], ", ")})
	}
	tw.Render()
}
