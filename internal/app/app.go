package app

import (
	"context"
	"fmt"
	"io"

	"github.com/andy/billcalc/internal/config"
	"github.com/andy/billcalc/internal/logger"
	"github.com/andy/billcalc/internal/repository"
	"github.com/andy/billcalc/internal/service"
)

// App is the dependency injection container for all application components
type App struct {
	Config   *config.Config
	Workbook *repository.Workbook

	// Repositories
	CurrencyRepo repository.CurrencyRepository
	TaxRepo      repository.TaxRepository
	FirmRepo     repository.FirmRepository
	InvoiceRepo  repository.InvoiceRepository

	// Services
	DocumentService service.DocumentService
	PaymentService  service.PaymentService
	ReportService   service.ReportService

	logCloser io.Closer
}

// New creates a new App instance, initializing all dependencies
// It handles:
// 1. Loading config
// 2. Setting up the logger
// 3. Loading the workbook
// 4. Creating repositories
// 5. Creating services
func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	closer, err := logger.Setup(cfg.GetLoggerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a, err := NewWithConfig(ctx, cfg)
	if err != nil {
		closer.Close()
		return nil, err
	}
	a.logCloser = closer
	return a, nil
}

// NewWithConfig creates an App with a provided config (useful for testing)
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.WithComponent("app")

	wb, err := repository.LoadWorkbook(cfg.Data.WorkbookPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load workbook: %w", err)
	}
	log.Debug().Str("path", cfg.Data.WorkbookPath).Msg("Workbook loaded")

	// Create repositories
	currencyRepo := repository.NewCurrencyRepo(wb)
	taxRepo := repository.NewTaxRepo(wb)
	firmRepo := repository.NewFirmRepo(wb)
	invoiceRepo := repository.NewInvoiceRepo(wb)

	// Create services with their dependencies
	documentService := service.NewDocumentService(
		currencyRepo, taxRepo,
		cfg.Policy(), cfg.Calculation.DefaultPrecision,
		logger.WithComponent("documents"),
	)
	paymentService := service.NewPaymentService(
		firmRepo, invoiceRepo, currencyRepo,
		cfg.Tolerance(), cfg.Calculation.BaseCurrencyID,
	)
	reportService := service.NewReportService(firmRepo, invoiceRepo, currencyRepo, cfg.Tolerance())

	return &App{
		Config:          cfg,
		Workbook:        wb,
		CurrencyRepo:    currencyRepo,
		TaxRepo:         taxRepo,
		FirmRepo:        firmRepo,
		InvoiceRepo:     invoiceRepo,
		DocumentService: documentService,
		PaymentService:  paymentService,
		ReportService:   reportService,
	}, nil
}

// Close releases the log file, if any
func (a *App) Close() error {
	if a.logCloser != nil {
		return a.logCloser.Close()
	}
	return nil
}
