// Package server initializes and runs the development backend: it loads
// the resource catalog, seeds the in-memory tables and serves the REST API
// until a termination signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/sellingcar/internal/catalog"
	"github.com/dmitrijs2005/sellingcar/internal/logging"
	"github.com/dmitrijs2005/sellingcar/internal/server/config"
	"github.com/dmitrijs2005/sellingcar/internal/server/httpapi"
	"github.com/dmitrijs2005/sellingcar/internal/server/repositories/records"
	"github.com/dmitrijs2005/sellingcar/internal/server/seed"
	"github.com/dmitrijs2005/sellingcar/internal/server/services"
)

type App struct {
	config          *config.Config
	logger          logging.Logger
	recordService   *services.RecordService
	customerService *services.CustomerService
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	cat, err := loadCatalog(c.ResourcesFile)
	if err != nil {
		return nil, fmt.Errorf("catalog error: %w", err)
	}

	repo := records.NewMemoryRepository()
	rs := services.NewRecordService(cat, repo)
	cs := services.NewCustomerService(repo, c)

	if c.Seed {
		if err := seed.Load(ctx, cat, rs, seed.Sample()); err != nil {
			return nil, fmt.Errorf("seed error: %w", err)
		}
		logger.Info(ctx, "sample data loaded")
	}

	return &App{config: c, logger: logger, recordService: rs, customerService: cs}, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddr, app.logger, app.recordService, app.customerService, app.config.SecretKey)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until the server stops, either on a signal or on a listen
// error.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

}
