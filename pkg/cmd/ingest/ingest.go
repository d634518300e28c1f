package ingest

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/racevision/ingest-service-go/log"
	"github.com/racevision/ingest-service-go/pkg/config"
	"github.com/racevision/ingest-service-go/pkg/db/postgres"
	"github.com/racevision/ingest-service-go/pkg/ergast"
	pipeline "github.com/racevision/ingest-service-go/pkg/ingest"
	"github.com/racevision/ingest-service-go/pkg/utils"
)

//nolint:funlen // by design
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "fetches data from the upstream API and writes it to the store",
		Long: `Runs the catalog writers in dependency order over the configured
season range. Within a tier the writers may run concurrently.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return startIngestion()
		},
	}
	cmd.Flags().IntVar(&config.FirstSeason,
		"first-season",
		1950,
		"first season of the ingestion range")
	cmd.Flags().IntVar(&config.LastSeason,
		"last-season",
		0,
		"last season of the ingestion range (0 means current year)")
	cmd.Flags().StringSliceVar(&config.Entities,
		"entities",
		[]string{},
		"entity subset to ingest (empty means all)")
	cmd.Flags().BoolVar(&config.Parallel,
		"parallel",
		false,
		"run writers of a tier concurrently")
	cmd.Flags().StringVar(&config.BaseURL,
		"base-url",
		ergast.DefaultBaseURL,
		"base URL of the Ergast compatible API")
	cmd.Flags().StringVar(&config.DataSource,
		"data-source",
		"ergast",
		"value for the data_source metadata attribute")
	cmd.Flags().IntVar(&config.PageSize,
		"page-size",
		ergast.DefaultPageSize,
		"page size for API requests")
	cmd.Flags().IntVar(&config.MaxTries,
		"max-tries",
		ergast.DefaultMaxTries,
		"max attempts for a single API request")
	cmd.Flags().Float64Var(&config.RequestsPerSecond,
		"requests-per-second",
		3.0,
		"rate limit towards the API")
	return cmd
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

func setupLogger() *log.Logger {
	if config.LogConfig != "" {
		if logger, err := filteredLogger(config.LogConfig); err == nil {
			log.ResetDefault(logger)
			return logger
		} else {
			log.Warn("could not apply log config, using defaults",
				log.String("path", config.LogConfig), log.ErrorField(err))
		}
	}
	var logger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.DebugLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	log.ResetDefault(logger)
	return logger
}

func filteredLogger(path string) (*log.Logger, error) {
	cfg, err := log.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	level := parseLogLevel(cfg.DefaultLevel,
		parseLogLevel(config.LogLevel, log.InfoLevel))
	return log.NewWithFilters(
		os.Stderr,
		level,
		cfg.Filters,
		log.WithCaller(true),
		log.AddCallerSkip(1))
}

//nolint:funlen // by design
func startIngestion() error {
	logger := setupLogger()

	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}
	postgresAddr := utils.ExtractFromDBURL(config.DB)
	if err = utils.WaitForTCP(postgresAddr, timeout); err != nil {
		log.Fatal("database not ready", log.ErrorField(err))
	}

	pool := postgres.InitWithURL(config.DB,
		postgres.WithTracer(logger.Named("sql").Sugar()))
	defer pool.Close()

	client := ergast.NewClient(
		ergast.WithBaseURL(config.BaseURL),
		ergast.WithPageSize(config.PageSize),
		ergast.WithMaxTries(config.MaxTries),
		ergast.WithRequestsPerSecond(config.RequestsPerSecond),
		ergast.WithLogger(logger.Named("ergast")),
	)

	lastSeason := config.LastSeason
	if lastSeason == 0 {
		lastSeason = time.Now().Year()
	}
	if lastSeason < config.FirstSeason {
		return fmt.Errorf("invalid season range %d-%d",
			config.FirstSeason, lastSeason)
	}

	o := pipeline.NewOrchestrator(client, pool,
		pipeline.WithSeasonRange(config.FirstSeason, lastSeason),
		pipeline.WithEntities(config.Entities),
		pipeline.WithParallel(config.Parallel),
		pipeline.WithOrchestratorDataSource(config.DataSource),
		pipeline.WithOrchestratorLogger(logger.Named("ingest")),
	)

	ctx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := o.Run(ctx)
	if report != nil {
		report.LogSummary(logger)
	}
	return err
}
