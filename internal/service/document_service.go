package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/andy/billcalc/internal/document"
	"github.com/andy/billcalc/internal/domain"
	"github.com/andy/billcalc/internal/pricing"
	"github.com/andy/billcalc/internal/repository"
)

// DocumentService computes invoices, quotations and their expense variants
type DocumentService interface {
	// Calculate runs a full pricing pass and writes results onto doc
	Calculate(ctx context.Context, doc document.Adapter) (*pricing.DocumentResult, error)

	// Validate runs the submit-time checks without computing anything
	Validate(ctx context.Context, doc document.Adapter) error

	// Currency returns the currency of doc, or nil when it has none
	Currency(ctx context.Context, doc document.Adapter) (*domain.Currency, error)
}

type documentService struct {
	currencyRepo     repository.CurrencyRepository
	taxRepo          repository.TaxRepository
	policy           pricing.Policy
	defaultPrecision int
	log              zerolog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	currencyRepo repository.CurrencyRepository,
	taxRepo repository.TaxRepository,
	policy pricing.Policy,
	defaultPrecision int,
	log zerolog.Logger,
) DocumentService {
	return &documentService{
		currencyRepo:     currencyRepo,
		taxRepo:          taxRepo,
		policy:           policy,
		defaultPrecision: defaultPrecision,
		log:              log,
	}
}

func (s *documentService) Calculate(ctx context.Context, doc document.Adapter) (*pricing.DocumentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	precision, err := s.precision(ctx, doc)
	if err != nil {
		return nil, err
	}

	res, err := document.Calculate(doc, taxCatalog{ctx: ctx, repo: s.taxRepo}, precision, s.policy)
	if err != nil {
		if domain.IsValidation(err) {
			s.log.Warn().Err(err).Str("kind", string(doc.Kind())).Str("reference", doc.Reference()).Msg("Document rejected")
		}
		return nil, err
	}

	s.log.Debug().
		Str("kind", string(doc.Kind())).
		Str("reference", doc.Reference()).
		Int("lines", len(res.Lines)).
		Str("total", res.Totals.Total.String()).
		Msg("Document recalculated")
	return res, nil
}

func (s *documentService) Validate(ctx context.Context, doc document.Adapter) error {
	precision, err := s.precision(ctx, doc)
	if err != nil {
		return err
	}
	if err := document.Validate(doc, taxCatalog{ctx: ctx, repo: s.taxRepo}, precision); err != nil {
		s.log.Warn().Err(err).Str("kind", string(doc.Kind())).Str("reference", doc.Reference()).Msg("Document failed validation")
		return err
	}
	return nil
}

func (s *documentService) Currency(ctx context.Context, doc document.Adapter) (*domain.Currency, error) {
	if doc.Currency() == 0 {
		return nil, nil
	}
	return s.currencyRepo.GetByID(ctx, doc.Currency())
}

func (s *documentService) precision(ctx context.Context, doc document.Adapter) (int, error) {
	c, err := s.Currency(ctx, doc)
	if err != nil {
		return 0, err
	}
	if c == nil {
		return s.defaultPrecision, nil
	}
	return c.DigitAfterComma, nil
}
