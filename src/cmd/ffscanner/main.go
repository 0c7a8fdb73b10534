package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jiaming2012/forward-factor/src/cmd/ffscanner/run"
	"github.com/jiaming2012/forward-factor/src/eventmodels"
	"github.com/jiaming2012/forward-factor/src/eventpubsub"
	"github.com/jiaming2012/forward-factor/src/handler"
	"github.com/jiaming2012/forward-factor/src/logger"
	"github.com/jiaming2012/forward-factor/src/sheets"
	"github.com/jiaming2012/forward-factor/src/telemetry"
	"github.com/jiaming2012/forward-factor/src/utils"
)

var otelShutdown func(context.Context) error

var rootCmd = &cobra.Command{
	Use:   "ffscanner",
	Short: "Scan option chains for forward factor term structure setups",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel, _ := cmd.Flags().GetString("log-level")
		logJSON, _ := cmd.Flags().GetBool("log-json")
		if err := logger.Setup(logLevel, logJSON); err != nil {
			log.Warnf("invalid log level, using info: %v", err)
		}

		envFile, _ := cmd.Flags().GetString("env-file")
		if err := utils.InitEnvironmentVariables(envFile); err != nil {
			log.Fatalf("error loading environment variables: %v", err)
		}

		enableOtel, _ := cmd.Flags().GetBool("otel")
		if enableOtel {
			shutdown, err := telemetry.SetupOTelSDK(cmd.Context(), "ffscanner")
			if err != nil {
				log.Fatalf("failed to setup opentelemetry: %v", err)
			}

			otelShutdown = shutdown
			logger.AddTelemetryHook()
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if otelShutdown == nil {
			return
		}

		if err := otelShutdown(context.Background()); err != nil {
			log.Errorf("failed to shutdown opentelemetry: %v", err)
		}
	},
}

func loadConfig(cmd *cobra.Command) *eventmodels.ScanConfigYAML {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := run.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	if cmd.Flags().Changed("min-ff") {
		minFF, _ := cmd.Flags().GetFloat64("min-ff")
		cfg.MinForwardFactor = &minFF
	}

	if cmd.Flags().Changed("max-ff") {
		maxFF, _ := cmd.Flags().GetFloat64("max-ff")
		cfg.MaxForwardFactor = &maxFF
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid flags: %v", err)
	}

	return cfg
}

func loadScanEnv(cfg *eventmodels.ScanConfigYAML) run.Env {
	env, err := run.LoadScanEnv(cfg)
	if err != nil {
		log.Fatalf("error loading environment: %v", err)
	}

	return env
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run an ad-hoc scan and print the top opportunities",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		tickers, _ := cmd.Flags().GetStringSlice("tickers")
		top, _ := cmd.Flags().GetInt("top")
		exportDir, _ := cmd.Flags().GetString("export")

		if !cmd.Flags().Changed("top") {
			top = cfg.TopN
		}

		scanner, cleanup, err := run.NewScanner(cfg, loadScanEnv(cfg))
		if err != nil {
			log.Fatalf("error creating scanner: %v", err)
		}
		defer cleanup()

		if _, err := run.RunScan(cmd.Context(), scanner, run.ScanArgs{
			Tickers:   run.Tickers(cfg, tickers),
			Top:       top,
			ExportDir: exportDir,
		}, os.Stdout); err != nil {
			log.Errorf("Error: %v", err)
		}
	},
}

var nightlyCmd = &cobra.Command{
	Use:   "nightly",
	Short: "Scan the configured universe, save the markdown report and notify slack",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		force, _ := cmd.Flags().GetBool("force")
		env := loadScanEnv(cfg)

		scanner, cleanup, err := run.NewScanner(cfg, env)
		if err != nil {
			log.Fatalf("error creating scanner: %v", err)
		}
		defer cleanup()

		journal, err := sheets.NewScanJournalFromEnv(cmd.Context())
		if err != nil {
			log.Warnf("sheets journal disabled: %v", err)
		}

		result, err := run.RunNightly(cmd.Context(), scanner, run.NewCalendar(env), run.NightlyArgs{
			Tickers:         run.Tickers(cfg, nil),
			Force:           force,
			ReportDir:       cfg.ReportDir,
			SlackWebhookURL: env.SlackWebhookURL,
			Journal:         journal,
		})

		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		if result.Ran {
			log.Infof("nightly scan complete: %d quality setups, report at %s", len(result.Result.Accepted), result.ReportPath)
		}
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [csv file]",
	Short: "Filter and score opportunities from a previously exported CSV",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)

		scanner, cleanup, err := run.NewScanner(cfg, loadScanEnv(cfg))
		if err != nil {
			log.Fatalf("error creating scanner: %v", err)
		}
		defer cleanup()

		if _, err := run.RunAnalyze(cmd.Context(), scanner, args[0], os.Stdout); err != nil {
			log.Fatalf("Error: %v", err)
		}
	},
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Print the trading schedule used by the nightly scan",
	Run: func(cmd *cobra.Command, args []string) {
		cal := run.NewCalendar(run.LoadEnv())

		if _, err := run.RunCalendar(cmd.Context(), cal, time.Now(), os.Stdout); err != nil {
			log.Fatalf("Error: %v", err)
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve on-demand scans, the latest report and a progress stream over http",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		env := loadScanEnv(cfg)
		port := utils.GetEnvOrDefault("PORT", "8080")

		scanner, cleanup, err := run.NewScanner(cfg, env)
		if err != nil {
			log.Fatalf("error creating scanner: %v", err)
		}
		defer cleanup()

		eventpubsub.Init()

		server, err := handler.NewServer(scanner, run.NewCalendar(env), eventpubsub.Default(), run.Tickers(cfg, nil))
		if err != nil {
			log.Fatalf("error creating server: %v", err)
		}

		if err := run.RunServe(cmd.Context(), server, port); err != nil {
			log.Fatalf("Error: %v", err)
		}
	},
}

func main() {
	rootCmd.PersistentFlags().String("env-file", utils.DEV_ENV_FILENAME, "The dotenv file to load outside production.")
	rootCmd.PersistentFlags().String("config", "src/config/scan.yaml", "The scan configuration file.")
	rootCmd.PersistentFlags().String("log-level", "info", "The log level.")
	rootCmd.PersistentFlags().Bool("log-json", false, "Log in json format.")
	rootCmd.PersistentFlags().Bool("otel", false, "Export traces and metrics over OTLP/HTTP.")
	rootCmd.PersistentFlags().Float64("min-ff", -100, "Minimum raw forward factor kept before filtering.")
	rootCmd.PersistentFlags().Float64("max-ff", 100, "Maximum raw forward factor kept before filtering.")

	scanCmd.Flags().StringSlice("tickers", []string{}, "Tickers to scan instead of the configured universe.")
	scanCmd.Flags().Int("top", 10, "Number of rows to print.")
	scanCmd.Flags().String("export", "", "Directory to export the raw opportunities CSV to.")

	nightlyCmd.Flags().Bool("force", false, "Scan even when tomorrow is not a trading day.")

	rootCmd.AddCommand(scanCmd, nightlyCmd, analyzeCmd, calendarCmd, serveCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}
