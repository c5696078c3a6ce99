package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"visit-model-service/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the settings shared by every subcommand.
type app struct {
	v   *viper.Viper
	out io.Writer
}

func main() {
	config.LoadEnv()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), out: os.Stdout}

	root := &cobra.Command{
		Use:   "modelbuilder",
		Short: "Build solver models from home-care visit and staff tables",
		Long: `modelbuilder expands recurring home-care visits over a planning window,
generates one vehicle per caregiver with dated shifts and writes the
scheduling model handed to the route optimizer.

Continuity pools restrict each person's visits to a short list of
caregivers, taken from the source tables, the service area or a solved
prior run.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.out = cmd.OutOrStdout()
		},
	}

	a.v.SetEnvPrefix("MODELBUILDER")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	pf := root.PersistentFlags()
	pf.String("config", "", "YAML config file (defaults when empty)")
	pf.String("start", "", "planning start date YYYY-MM-DD (moved back to Monday)")
	pf.Int("weeks", 0, "planning window in weeks")
	pf.Int("pool-cap", 0, "max vehicles per continuity pool")
	pf.String("redis-addr", "", "share the run's geocode cache through Redis")
	pf.Bool("json", false, "print JSON instead of tables")
	for _, name := range []string{"config", "start", "weeks", "pool-cap", "redis-addr", "json"} {
		_ = a.v.BindPFlag(name, pf.Lookup(name))
	}

	root.AddCommand(a.buildCmd())
	root.AddCommand(a.poolCmd())
	root.AddCommand(a.validateCmd())
	root.AddCommand(a.shiftsCmd())
	return root
}

// loadConfig reads the config file and applies the command line overrides.
func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.v.GetString("config"))
	if err != nil {
		return nil, err
	}

	if s := a.v.GetString("start"); s != "" {
		cfg.Planning.StartDate = s
	}
	if n := a.v.GetInt("weeks"); n != 0 {
		cfg.Planning.Weeks = n
	}
	if n := a.v.GetInt("pool-cap"); n != 0 {
		cfg.Planning.PoolCap = n
	}
	if s := a.v.GetString("redis-addr"); s != "" {
		cfg.Redis.Addr = s
	}

	if err := cfg.Planning.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
