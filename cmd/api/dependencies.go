package main

import (
	"log/slog"

	"github.com/bmehta/tally-bridge/internal/domain/statement/decoder"
	statementhandler "github.com/bmehta/tally-bridge/internal/domain/statement/handler"
	"github.com/bmehta/tally-bridge/internal/domain/statement/service"
	"github.com/bmehta/tally-bridge/internal/domain/transfer"
	transferhandler "github.com/bmehta/tally-bridge/internal/domain/transfer/handler"
	"github.com/bmehta/tally-bridge/internal/tally"
	tallyhandler "github.com/bmehta/tally-bridge/internal/tally/handler"
	"github.com/bmehta/tally-bridge/pkg/config"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	// Services
	TallyClient      *tally.Client
	StatementService *service.Service
	TransferService  *transfer.Service

	// Handlers
	StatementHandler *statementhandler.Handler
	TransferHandler  *transferhandler.Handler
	TallyHandler     *tallyhandler.Handler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) *Dependencies {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.initServices()
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")
	return deps
}

// initServices wires the parsing pipeline and the ledger system client
func (d *Dependencies) initServices() {
	ocr := decoder.NewTesseractRecognizer(d.Config.OCR.Language, d.Logger)
	dec := decoder.New(ocr)

	d.StatementService = service.New(dec, d.Logger)
	d.TallyClient = tally.NewClient(d.Config.Tally.Host, d.Config.Tally.Port, d.Logger)
	d.TransferService = transfer.NewService(d.TallyClient, d.Logger)
}

// initHandlers wires the HTTP handlers
func (d *Dependencies) initHandlers() {
	d.StatementHandler = statementhandler.New(d.StatementService, d.TallyClient, d.Logger)
	d.TransferHandler = transferhandler.New(d.TransferService, d.Logger)
	d.TallyHandler = tallyhandler.New(d.TallyClient, d.Logger)
}
