package main

import (
	"fmt"
	"time"
	"visit-model-service/internal/adapters/calendar"
	"visit-model-service/internal/services"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func (a *app) shiftsCmd() *cobra.Command {
	var employees, dir string
	cmd := &cobra.Command{
		Use:   "shifts-ics",
		Short: "Export each caregiver's generated shifts as an iCalendar file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			rows, _, err := readEmployees(employees)
			if err != nil {
				return err
			}

			report := &services.BuildReport{}
			vehicles, err := services.GenerateVehicles(cfg.Planning, rows, report)
			if err != nil {
				return err
			}
			if len(vehicles) == 0 {
				return fmt.Errorf("%s: no schedulable shifts", employees)
			}

			paths, err := calendar.ExportShiftCalendars(dir, vehicles, time.Now())
			if err != nil {
				return err
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(a.out)
			tw.AppendHeader(table.Row{"Vehicle", "Shifts", "File"})
			for i, v := range vehicles {
				tw.AppendRow(table.Row{v.ID, len(v.Shifts), paths[i]})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&employees, "employees", "", "employee/shift table")
	cmd.Flags().StringVar(&dir, "dir", "shifts", "output directory")
	_ = cmd.MarkFlagRequired("employees")
	return cmd
}
