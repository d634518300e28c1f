package validate

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
	"github.com/racevision/ingest-service-go/pkg/utils"
	harness "github.com/racevision/ingest-service-go/pkg/validate"
)

func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "runs read-only consistency checks against the store",
		Long: `Verifies existence, coverage and referential integrity of the
ingested collections. The store is not modified.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return startValidation()
		},
	}
	return cmd
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

func startValidation() error {
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

	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}
	postgresAddr := utils.ExtractFromDBURL(config.DB)
	if err = utils.WaitForTCP(postgresAddr, timeout); err != nil {
		log.Fatal("database not ready", log.ErrorField(err))
	}

	pool := postgres.InitWithURL(config.DB)
	defer pool.Close()

	ctx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := harness.NewHarness(pool, logger.Named("validate"))
	report, err := h.Run(ctx)
	if err != nil {
		return err
	}
	h.LogReport(report)
	if !report.Passed() {
		return fmt.Errorf("validation failed with %d findings",
			len(report.Failures()))
	}
	return nil
}
