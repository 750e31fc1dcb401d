package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"property-leads/pkg/api"
	"property-leads/pkg/clients/airtable"
	"property-leads/pkg/clients/collector"
	"property-leads/pkg/config"
	"property-leads/pkg/form"
	"property-leads/pkg/middleware"
	"property-leads/pkg/models"
	"property-leads/pkg/services"
)

var rootCmd = &cobra.Command{
	Use:   "leadform",
	Short: "Property valuation lead form service",
	Long: `leadform hosts the property valuation form: it keeps one form session per
open page, validates submissions and forwards accepted leads to the
configured collector.`,
	SilenceUsage: true,
	RunE:         serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	RunE:  serve,
}

var validateCmd = &cobra.Command{
	Use:   "validate [lead.json]",
	Short: "Validate a lead file and print its field errors",
	Args:  cobra.ExactArgs(1),
	RunE:  validateLead,
}

func init() {
	rootCmd.AddCommand(serveCmd, validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if level == "debug" {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func newCollector(cfg *config.Config, logger *zap.Logger) collector.Client {
	if cfg.CollectorKind == config.CollectorAirtable {
		client := airtable.NewClient(cfg.AirtableAPIKey, cfg.AirtableBaseID, airtable.WithTimeout(cfg.CollectorTimeout))
		return collector.NewAirtableCollector(client, cfg.AirtableLeadsTable, logger)
	}
	return collector.NewWebhookClient(cfg.CollectorURL, cfg.CollectorTimeout, logger)
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	leadCollector := newCollector(cfg, logger)

	sessions := services.NewSessionStore(func() *form.Controller {
		return form.NewController(leadCollector, form.WithLogger(logger))
	}, cfg.SessionTTL, logger)
	defer sessions.Close()

	leadService := services.NewLeadService(leadCollector, logger)

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.CORSAllowedOrigin))

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	handlers := api.NewHandlers(sessions, leadService, logger)
	handlers.Register(router, limiter.Middleware())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting",
			zap.String("port", cfg.Port),
			zap.String("collector", cfg.CollectorKind))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	// In-flight submissions get the collector timeout to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.CollectorTimeout+5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func validateLead(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("error reading lead file: %w", err)
	}

	var state models.FormState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("error parsing lead file: %w", err)
	}

	errs := form.Validate(state)
	out := cmd.OutOrStdout()
	if len(errs) == 0 {
		fmt.Fprintln(out, "valid")
		return nil
	}

	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(out, "%s: %s\n", f, errs[models.Field(f)])
	}
	return fmt.Errorf("%d invalid field(s)", len(errs))
}
