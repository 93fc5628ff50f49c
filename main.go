package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"airbnb-analyzer/api"
	"airbnb-analyzer/config"
	"airbnb-analyzer/models"
	"airbnb-analyzer/services"
	"airbnb-analyzer/storage"
	"airbnb-analyzer/utils"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "airbnb-analyzer",
		Short:         "Earnings, occupancy and guest reports from AirBnB transaction exports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")

	root.AddCommand(newReportCmd(), newServeCmd())
	return root
}

func loadConfig(cmd *cobra.Command, logger *utils.Logger) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config-file")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(cfg.LogLevel)
	return cfg, nil
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Print a report for a CSV/XLSX export or a PostgreSQL table and optionally export it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runReport,
	}
	cmd.Flags().String("source", "file", "Where transactions come from: file or postgres")
	cmd.Flags().String("table", "", "PostgreSQL table to read (default from config)")
	cmd.Flags().IntP("top-customers", "t", 0, "Number of repeat guests to list; 0 or less lists all (default from config)")
	cmd.Flags().StringSliceP("report-type", "y", nil, "Export formats: csv, json, xlsx, pdf")
	cmd.Flags().StringP("report-name", "n", "airbnb_report", "Base name of exported files")
	cmd.Flags().StringP("dir", "d", "", "Directory for exported files (default from config)")
	cmd.Flags().String("currency", "", "Currency label printed before amounts")
	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	logger := utils.NewLogger()
	cfg, err := loadConfig(cmd, logger)
	if err != nil {
		return err
	}

	source, _ := cmd.Flags().GetString("source")
	table, _ := cmd.Flags().GetString("table")
	if table == "" {
		table = cfg.PostgresTable
	}
	top := cfg.TopCustomers
	if cmd.Flags().Changed("top-customers") {
		top, _ = cmd.Flags().GetInt("top-customers")
	}
	formats, _ := cmd.Flags().GetStringSlice("report-type")
	name, _ := cmd.Flags().GetString("report-name")
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cfg.ExportDir
	}
	currency, _ := cmd.Flags().GetString("currency")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== AirBnB Analyzer starting ===")
	loader := services.NewLoader(logger)

	var (
		ds    *models.Dataset
		label string
	)
	switch source {
	case "file":
		if len(args) != 1 {
			return errors.New("report: a CSV or XLSX file is required when --source=file")
		}
		label = filepath.Base(args[0])
		ds, err = loader.LoadFile(args[0])
	case "postgres":
		label = "postgres:" + table
		ds, err = loadFromSource(ctx, postgresOpener(cfg, logger), table, loader, logger)
	default:
		return fmt.Errorf("report: unknown source %q, expected file or postgres", source)
	}
	if err != nil {
		return err
	}

	sess, err := services.NewSessionStore().Create(label, ds)
	if err != nil {
		return err
	}

	report := services.NewInsightService(logger).Generate(sess.Info, sess.Engine, top)
	if err := services.NewPrinter(os.Stdout, currency).Print(report); err != nil {
		return fmt.Errorf("report: print: %w", err)
	}

	if len(formats) == 0 {
		return nil
	}
	paths, err := storage.ExportAll(ctx, report, formats, name, dir)
	if err != nil {
		return err
	}
	for _, p := range paths {
		logger.Info("Report saved to %s", p)
	}
	return nil
}

// sourceOpener connects to a database holding imported transactions.
type sourceOpener func(ctx context.Context) (storage.RowSource, error)

func postgresOpener(cfg *config.Config, logger *utils.Logger) sourceOpener {
	return func(ctx context.Context) (storage.RowSource, error) {
		src, err := storage.NewPostgresSource(ctx, cfg.DSN(), cfg.DBMaxRetries, logger)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
}

func loadFromSource(ctx context.Context, open sourceOpener, table string, loader *services.Loader, logger *utils.Logger) (*models.Dataset, error) {
	src, err := open(ctx)
	if err != nil {
		logger.Error("Failed to connect to the database: %v", err)
		return nil, err
	}
	defer src.Close()

	header, rows, err := src.Fetch(ctx, table)
	if err != nil {
		return nil, err
	}
	return loader.FromRows(header, rows)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve uploaded reports over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().String("addr", "", "Listen address (default from config)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := utils.NewJSONLogger(os.Stdout)
	cfg, err := loadConfig(cmd, logger)
	if err != nil {
		return err
	}
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.HTTPAddr
	}

	srv := api.NewServer(
		services.NewSessionStore(),
		services.NewLoader(logger),
		services.NewInsightService(logger),
		logger,
		api.NewMetrics(),
		api.Options{MaxUploadBytes: cfg.MaxUploadBytes, TopCustomers: cfg.TopCustomers},
	)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening on %s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
