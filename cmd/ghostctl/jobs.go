package main

import (
	"encoding/json"
	"fmt"

	"github.com/Harshitk-cp/ghostprotocol/internal/api"
	"github.com/Harshitk-cp/ghostprotocol/internal/config"
	"github.com/Harshitk-cp/ghostprotocol/internal/llm"
	"github.com/Harshitk-cp/ghostprotocol/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List or run the periodic maintenance jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List job names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := newOfflineJobRunner().Names()
		if output != formatTable {
			return writeStructured(cmd.OutOrStdout(), map[string][]string{"jobs": names})
		}
		for _, n := range names {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
		return nil
	},
}

var jobsRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run one job against the configured database",
	Example: `  DATABASE_URL=postgres://localhost/ghost ghostctl jobs run gravity
  ghostctl jobs run beliefs -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runJob,
}

func init() {
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsRunCmd)
}

// newOfflineJobRunner builds a runner with no stores behind it. It is only
// good for listing names.
func newOfflineJobRunner() *service.JobRunner {
	return service.NewJobRunner(nil, nil, nil, service.DefaultJobIntervals(), service.DefaultBeliefDecayRate, logger)
}

func runJob(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	gen := llm.NewMockGenerator()
	engine := service.NewEngine(api.PostgresStores(db), catalog, newSource(), gen, llm.NewAnalyzer(gen), service.EngineOptions{
		BeliefDecayRate: config.BeliefDecayRate(),
		JobWorkers:      config.JobWorkers(),
	}, logger)

	name := args[0]
	result, err := engine.Jobs.Run(ctx, name)
	if err != nil {
		return err
	}
	logger.Info("job finished", zap.String("job", name))

	if output != formatTable {
		return writeStructured(cmd.OutOrStdout(), map[string]any{"job": name, "result": result})
	}
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	printHeader(cmd.OutOrStdout(), "Job "+name)
	return writeYAML(cmd.OutOrStdout(), data)
}
