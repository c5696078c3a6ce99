package main

import (
	"errors"
	"fmt"
	"visit-model-service/internal/domain"
	"visit-model-service/internal/services"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate MODEL [SOLUTION]",
		Short: "Check a model file, and optionally an optimizer output against it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var m domain.Model
			if err := readJSON(args[0], &m); err != nil {
				return err
			}
			errs := []error{services.ValidateModel(&m)}

			var out domain.SolverOutput
			if len(args) == 2 {
				if err := readJSON(args[1], &out); err != nil {
					return err
				}
				errs = append(errs, services.CheckSolution(&m, out))
			}
			if err := errors.Join(errs...); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			groupMembers := 0
			for _, g := range m.VisitGroups {
				groupMembers += len(g.Visits)
			}
			shifts := 0
			for _, v := range m.Vehicles {
				shifts += len(v.Shifts)
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(a.out)
			tw.SetTitle(args[0] + " ok")
			tw.AppendRows([]table.Row{
				{"visits", len(m.Visits)},
				{"visit groups", len(m.VisitGroups)},
				{"grouped visits", groupMembers},
				{"vehicles", len(m.Vehicles)},
				{"shifts", shifts},
			})
			if len(args) == 2 {
				tw.AppendRows([]table.Row{
					{"assigned", len(out.Assignments)},
					{"unassigned", len(out.Unassigned)},
				})
			}
			tw.Render()
			return nil
		},
	}
}
