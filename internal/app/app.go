package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/strogholod/catalog/config"
	"github.com/strogholod/catalog/internal/adapter"
	"github.com/strogholod/catalog/internal/adapter/catalogapi"
	"github.com/strogholod/catalog/internal/adapter/httphandler"
	"github.com/strogholod/catalog/internal/adapter/kafka"
	"github.com/strogholod/catalog/internal/adapter/photo"
	"github.com/strogholod/catalog/internal/adapter/storage"
	"github.com/strogholod/catalog/internal/core/port"
	"github.com/strogholod/catalog/internal/core/service"
	"github.com/strogholod/catalog/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

type outbound struct {
	backend       *catalogapi.Client
	resolver      *photo.Resolver
	sqldb         *storage.SQLDB
	priceChanges  *storage.PriceChangesRepository
	priceProducer *kafka.PriceChangesProducer
}

type coreService struct {
	catalog   *service.Catalog
	submitter *service.Submitter
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	outbound   *outbound
	service    *coreService
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{
		ctx:      ctx,
		cfg:      cfg,
		outbound: new(outbound),
		service:  new(coreService),
	}

	app.initLogger()
	app.initCatalogBackend()
	app.initPhotoResolver()
	app.initStorage()
	app.initProducer()
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.Level()}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initCatalogBackend() {
	const op = "App.initCatalogBackend"
	cfg := app.cfg.Catalog

	opts := []catalogapi.Opt{
		catalogapi.BaseURLOpt(cfg.BaseURL),
		catalogapi.UploadPathOpt(cfg.UploadPath),
		catalogapi.TimeoutOpt(cfg.Timeout),
	}

	if cfg.CAFile != "" {
		tlsConfig, err := adapter.MakeClientTLSConfig(cfg.CAFile)
		if err != nil {
			app.fallDown(op, err)
		}
		opts = append(opts, catalogapi.TLSConfigOpt(tlsConfig))
	}

	backend, err := catalogapi.New(opts...)
	if err != nil {
		app.fallDown(op, err)
	}
	app.outbound.backend = backend
}

func (app *App) initPhotoResolver() {
	const op = "App.initPhotoResolver"

	opts := []photo.Opt{photo.MaxSizeOpt(app.cfg.Photo.MaxSize)}
	if app.cfg.Photo.BaseDir != "" {
		opts = append(opts, photo.BaseDirOpt(app.cfg.Photo.BaseDir))
	}

	resolver, err := photo.NewResolver(opts...)
	if err != nil {
		app.fallDown(op, err)
	}
	app.outbound.resolver = resolver
}

func (app *App) initStorage() {
	const op = "App.initStorage"
	log := slog.With("op", op)

	if !app.cfg.StorageEnabled() {
		log.Info("price change storage is disabled")
		return
	}

	sqldb, err := storage.NewSQLDB(app.ctx, app.cfg.SQLDB)
	if err != nil {
		app.fallDown(op, err)
	}
	repo := storage.NewPriceChangesRepository(sqldb)

	app.outbound.sqldb = &sqldb
	app.outbound.priceChanges = &repo
}

func (app *App) initProducer() {
	const op = "App.initProducer"
	log := slog.With("op", op)

	if !app.cfg.BrokerEnabled() {
		log.Info("price change broker is disabled")
		return
	}

	broker := app.cfg.Broker
	topic := broker.Topics.PriceChanges

	srClient, err := sr.NewClient(sr.URLs(broker.SchemaRegistryURLs...))
	if err != nil {
		app.fallDown(op, err)
	}

	serde, err := schema.NewSerdePriceChangeV1(
		app.ctx,
		schema.SubjectOpt(topic+"-value"),
		schema.SchemaIdentifierOpt(schema.NewSchemaCreater(srClient)),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	producer, err := kafka.NewPriceChangesProducer(
		kafka.ProducerClientOpt(app.ctx, broker.SeedBrokers, topic),
		kafka.ProducerEncoderOpt(serde),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.outbound.priceProducer = &producer
}

func (app *App) initCoreService() {
	const op = "App.initCoreService"
	cfg := app.cfg.Catalog

	catalog, err := service.NewCatalog(
		service.CatalogBackendOpt(app.outbound.backend),
		service.CatalogFetchRetryOpt(cfg.FetchAttempts, cfg.FetchRetryDelay),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	submitter, err := service.NewSubmitter(
		service.SubmitterBackendOpt(app.outbound.backend),
		service.SubmitterResolverOpt(app.outbound.resolver),
		service.SubmitterJournalOpt(app.journal()...),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.service.catalog = catalog
	app.service.submitter = submitter
}

func (app *App) journal() []port.PriceChangeRecorder {
	var rs []port.PriceChangeRecorder
	if app.outbound.priceChanges != nil {
		rs = append(rs, app.outbound.priceChanges)
	}
	if app.outbound.priceProducer != nil {
		rs = append(rs, app.outbound.priceProducer)
	}
	return rs
}

func (app *App) initInboundAdapters() {
	var history port.PriceChangesReader
	if app.outbound.priceChanges != nil {
		history = app.outbound.priceChanges
	}

	mux := http.NewServeMux()
	httphandler.RegisterCatalog(
		mux, app.service.catalog, app.service.submitter, history,
	)

	handler := httphandler.LogRequests(httphandler.AllowJSON(mux))
	app.httpServer = httphandler.NewHTTPServer(
		app.cfg.HTTPServerAddr, handler, app.cfg.HTTPHandlerTimeout,
	)
}

func (app *App) Run(stopFn context.CancelFunc) {
	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	if app.outbound.priceProducer != nil {
		app.outbound.priceProducer.Close()
	}
	if app.outbound.sqldb != nil {
		app.outbound.sqldb.Close()
	}

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
