// Package server assembles the log orchestrator process: record store,
// object storage, gateway transport and the gRPC front end. Run blocks
// until a signal or a fatal component error cancels the context.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/devlogs/internal/logging"
	"github.com/dmitrijs2005/devlogs/internal/server/config"
	"github.com/dmitrijs2005/devlogs/internal/server/gateway"
	"github.com/dmitrijs2005/devlogs/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/devlogs/internal/server/services"
	"github.com/dmitrijs2005/devlogs/internal/server/storage"

	gs "github.com/dmitrijs2005/devlogs/internal/server/grpc"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	publisher  *gateway.KafkaPublisher
	subscriber *gateway.KafkaSubscriber
	dispatcher *gateway.Dispatcher
	logService *services.LogService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(c.LogLevel)

	db, rm, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	locator, err := storage.NewS3Locator(ctx, c)
	if err != nil {
		closeDB(db)
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	kc := gateway.KafkaConfig{
		Brokers:       c.KafkaBrokers,
		CommandsTopic: c.KafkaCommandsTopic,
		EventsTopic:   c.KafkaEventsTopic,
		GroupID:       c.KafkaGroupID,
	}
	pub, err := gateway.NewKafkaPublisher(kc, logger)
	if err != nil {
		closeDB(db)
		return nil, fmt.Errorf("gateway publisher init error: %w", err)
	}
	sub, err := gateway.NewKafkaSubscriber(kc, logger)
	if err != nil {
		pub.Close()
		closeDB(db)
		return nil, fmt.Errorf("gateway subscriber init error: %w", err)
	}

	dispatcher := gateway.NewDispatcher(pub, sub, gateway.NewSessionRegistry(rm.Sessions(db)), logger.With("module", "gateway"), c.ReplyTimeout)
	ls := services.NewLogService(db, rm, dispatcher, locator, c, logger)
	dispatcher.Register(ls.OnDeviceEvent)

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		publisher:  pub,
		subscriber: sub,
		dispatcher: dispatcher,
		logService: ls,
	}, nil
}

func closeDB(db *sql.DB) {
	if db != nil {
		db.Close()
	}
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

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.logService, app.config.SecretKey)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

func (app *App) startDispatcher(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.dispatcher.Run(ctx); err != nil {
		app.logger.Error(ctx, "gateway dispatcher stopped", "error", err)
		cancelFunc()
	}
}

func (app *App) close(ctx context.Context) {
	if err := app.subscriber.Close(); err != nil {
		app.logger.Error(ctx, "closing gateway subscriber", "error", err)
	}
	if err := app.publisher.Close(); err != nil {
		app.logger.Error(ctx, "closing gateway publisher", "error", err)
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "closing database", "error", err)
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startDispatcher(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close(context.WithoutCancel(ctx))
	app.logger.Info(ctx, "App stopped")
}
