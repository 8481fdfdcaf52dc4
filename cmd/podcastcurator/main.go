package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"PodcastCurator/internal/app"
	"PodcastCurator/internal/config"
	"PodcastCurator/internal/domain"
	"PodcastCurator/internal/logging"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "podcastcurator",
		Short: "Staged qualification of podcast candidates for a curated dataset",
	}

	rootCmd.AddCommand(collectCmd())
	rootCmd.AddCommand(coverageCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(statusCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp loads config and wires the application. An interrupt cancels
// the returned context; the pipeline flushes its caches before exiting.
func newApp() (*app.Application, context.Context, context.CancelFunc, error) {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return application, ctx, cancel, nil
}

func collectCmd() *cobra.Command {
	var targetCount int

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect raw candidates from the discovery API",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, ctx, cancel, err := newApp()
			if err != nil {
				return err
			}
			defer cancel()
			defer application.Close()

			if targetCount <= 0 {
				targetCount = application.Config().Discovery.TargetCount
			}

			candidates, err := application.Pipeline().Collect(ctx, targetCount)
			if err != nil {
				return err
			}

			fmt.Printf("Collected %d candidates\n", len(candidates))
			return nil
		},
	}

	cmd.Flags().IntVar(&targetCount, "target", 0, "target candidate count (0 = configured default)")
	return cmd
}

func coverageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "coverage",
		Short: "Validate per-year episode and transcript coverage",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, ctx, cancel, err := newApp()
			if err != nil {
				return err
			}
			defer cancel()
			defer application.Close()

			candidates, err := application.Files().ReadCandidates()
			if err != nil {
				return fmt.Errorf("load candidates (run collect first): %w", err)
			}

			results, summary, err := application.Pipeline().RunCoverage(ctx, candidates)
			if err != nil {
				return err
			}

			passed := make([]domain.CoverageResult, 0, len(results))
			for _, result := range results {
				if result.ValidationPassed {
					passed = append(passed, result)
				}
			}
			if err := application.Files().WriteCoverageResults(results, passed); err != nil {
				return err
			}

			printSummary("coverage", summary)
			return nil
		},
	}
}

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Classify coverage-passed candidates for single authorship",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, ctx, cancel, err := newApp()
			if err != nil {
				return err
			}
			defer cancel()
			defer application.Close()

			passed, err := application.Files().ReadCoveragePassed()
			if err != nil {
				return fmt.Errorf("load coverage results (run coverage first): %w", err)
			}

			qualified, summary, err := application.Pipeline().RunClassification(ctx, passed)
			if err != nil {
				return err
			}
			if err := application.Files().WriteQualified(qualified); err != nil {
				return err
			}

			printSummary("classification", summary)
			fmt.Printf("Qualified candidates: %d\n", len(qualified))
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full qualification pipeline over collected candidates",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, ctx, cancel, err := newApp()
			if err != nil {
				return err
			}
			defer cancel()
			defer application.Close()

			candidates, err := application.Files().ReadCandidates()
			if err != nil {
				return fmt.Errorf("load candidates (run collect first): %w", err)
			}

			summary, err := application.Pipeline().Run(ctx, candidates)
			if err != nil {
				return err
			}

			printSummary("pipeline", summary)
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show verification cache status",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _, cancel, err := newApp()
			if err != nil {
				return err
			}
			defer cancel()
			defer application.Close()

			coverageCache, verifyCache := application.Caches()

			fmt.Printf("Coverage cache: %d entries\n", coverageCache.Len())
			fmt.Printf("Verification cache: %d entries\n", verifyCache.Len())

			passed := 0
			for _, entry := range verifyCache.Entries() {
				if entry.Passed {
					passed++
				}
			}
			fmt.Printf("Verified single authors: %d\n", passed)
			return nil
		},
	}
}

func printSummary(stage string, summary domain.RunSummary) {
	fmt.Printf("%s run %s: processed=%d qualified=%d skipped=%d failed=%d duration=%s\n",
		stage, summary.RunID, summary.Processed, summary.Qualified,
		summary.Skipped, summary.Failed, summary.Duration)
}
