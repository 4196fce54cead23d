package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"api-contract-validator/internal/config"
	"api-contract-validator/internal/contextstore"
	"api-contract-validator/internal/executor"
	"api-contract-validator/internal/httpx"
	"api-contract-validator/internal/llm"
	"api-contract-validator/internal/logger"
	"api-contract-validator/internal/parser"
	"api-contract-validator/internal/reporter"
	"api-contract-validator/internal/schema"
	"api-contract-validator/internal/seed"
	"api-contract-validator/internal/types"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "api-contract-validator",
	Short: "Probes a REST API, infers per-endpoint contracts, and validates responses against them",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Enumerate endpoints from an OpenAPI document and validate all of them",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if cfg.OpenAPIURL == "" {
			return fmt.Errorf("openapi_url is required in %s", cfgFile)
		}
		if cfg.BaseURL == "" {
			return fmt.Errorf("base_url is required in %s", cfgFile)
		}

		log, err := logger.New(cfg.Log)
		if err != nil {
			return err
		}
		defer log.Sync()

		endpoints, err := parser.New(log).ParseEndpoints(cfg.OpenAPIURL)
		if err != nil {
			return err
		}
		if len(endpoints) == 0 {
			log.Warn("OpenAPI document declares no endpoints")
		}

		runner, store, err := buildRunner(cfg, log)
		if err != nil {
			return err
		}

		ctx := context.Background()
		if cfg.Seed.Enabled {
			if err := seed.New(cfg.Seed, log).Seed(ctx, store); err != nil {
				log.Warn("context seeding failed, falling back to placeholders", zap.Error(err))
			}
		}

		entries := runner.Run(ctx, endpoints)
		return writeReport(cfg, log, entries)
	},
}

var probeURL string

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Discover a working method for a single URL and validate it once",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadOrDefault(cfgFile)
		if err != nil {
			return err
		}

		log, err := logger.New(cfg.Log)
		if err != nil {
			return err
		}
		defer log.Sync()

		runner, _, err := buildRunner(cfg, log)
		if err != nil {
			return err
		}

		entry := runner.ProbeAndValidate(context.Background(), probeURL)
		if entry.Schema != nil {
			fmt.Printf("Inferred schema for %s %s:\n%s\n", entry.Method, entry.URL, prettySchema(entry.Schema))
		}
		return writeReport(cfg, log, []types.ValidationEntry{entry})
	},
}

// loadOrDefault tolerates a missing config file for probe mode.
func loadOrDefault(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.Load(path)
}

func buildRunner(cfg *config.Config, log *zap.Logger) (*executor.Runner, *contextstore.Store, error) {
	schemas, err := schema.NewStore(cfg.Run.SchemaDir)
	if err != nil {
		return nil, nil, err
	}

	var llmClient llm.Client
	if cfg.LLM.Enabled {
		llmClient, err = llm.New(cfg.LLM, log)
		if err != nil {
			return nil, nil, err
		}
	}

	client := httpx.NewClient(time.Duration(cfg.Run.TimeoutSeconds)*time.Second, cfg.Auth.Headers(), log)
	store := contextstore.New()
	runner := executor.NewRunner(executor.Config{
		BaseURL:          cfg.BaseURL,
		MaxFanout:        cfg.Run.MaxFanout,
		LatencyThreshold: cfg.Run.LatencySeconds,
	}, client, schemas, store, llmClient, log)
	return runner, store, nil
}

func writeReport(cfg *config.Config, log *zap.Logger, entries []types.ValidationEntry) error {
	rep := reporter.New(reporter.Config{
		Format:           cfg.Reporting.Format,
		OutputDir:        cfg.Reporting.OutputDir,
		Detailed:         cfg.Reporting.Detailed,
		LatencyThreshold: cfg.Run.LatencySeconds,
	}, log)

	paths, err := rep.Generate(entries)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	report := rep.Build(entries)
	log.Info("run complete",
		zap.Int("total", report.Total),
		zap.Int("passed", report.Passed),
		zap.Int("failed", report.Failed),
		zap.Strings("reports", paths))

	if !report.AllPassed {
		os.Exit(1)
	}
	return nil
}

func prettySchema(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "path to run configuration")
	probeCmd.Flags().StringVar(&probeURL, "url", "", "URL to probe")
	probeCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(probeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
