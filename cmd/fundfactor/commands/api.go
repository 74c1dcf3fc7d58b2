package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fundfactor/internal/api"
	"github.com/wonny/fundfactor/internal/api/handlers"
	"github.com/wonny/fundfactor/internal/contracts"
	"github.com/wonny/fundfactor/internal/factors"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the REST API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                          - Health check
  GET  /api/funds/{ticker}/analysis     - Full analysis of one ticker
  GET  /api/regions                     - Supported regions and their datasets
  GET  /api/datasets                    - Factor library catalogue

Example:
  go run ./cmd/fundfactor api
  go run ./cmd/fundfactor api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default PORT or 8080)")
}

// regionDatasets adapts factors.DatasetsFor to the handler signature
func regionDatasets(region contracts.Region) (string, string, error) {
	ds, err := factors.DatasetsFor(region)
	if err != nil {
		return "", "", err
	}
	return ds.FiveFactor, ds.Momentum, nil
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Wire providers and the fund service
	a, err := newApp(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	log := a.log
	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Create handlers and router
	router := api.NewRouter(api.Handlers{
		Fund:     handlers.NewFundHandler(a.service, log),
		Datasets: handlers.NewDatasetsHandler(a.french, log),
		Regions:  handlers.RegionsHandler(regionDatasets),
		Checks: map[string]func(context.Context) string{
			"redis": a.redis.Health,
		},
	}, log)

	// 4. Create server
	server := api.New(cfg, log, router)

	// 5. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	PrintSuccess(fmt.Sprintf("Server running on http://localhost:%s", cfg.Port))
	fmt.Println("\nAvailable endpoints:")
	PrintList([]string{
		"GET  /health",
		"GET  /api/funds/{ticker}/analysis?currency=USD&region=Europe&window=36",
		"GET  /api/regions",
		"GET  /api/datasets",
	})
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal or a failed start
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case <-quit:
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
