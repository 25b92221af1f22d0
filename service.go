package certify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apontes/go-certify/internal/assets"
	"github.com/apontes/go-certify/internal/dateutil"
)

// Service orchestrates the certificate issuance pipeline: idempotency
// guard, template composition, PDF rendering, publication. Stages run
// strictly in order; a failure at any stage short-circuits the rest.
type Service struct {
	cfg       serviceConfig
	store     RecordStore
	composer  templateComposer
	converter pdfConverter
	publisher Publisher
	now       func() time.Time
}

// New creates a Service with default configuration: packaged launch
// profile, 30s render timeout, embedded assets, in-memory record store and
// a local file publisher. Use options to wire production collaborators.
func New(opts ...Option) *Service {
	s := &Service{
		cfg: serviceConfig{
			timeout:    defaultTimeout,
			profile:    ProfilePackaged,
			dateFormat: dateutil.DefaultFormat,
		},
		now: time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = NewMemoryStore()
	}
	if s.composer == nil {
		s.composer = newCertComposer(assets.NewEmbeddedLoader(), s.cfg.dateFormat)
	}
	if s.converter == nil {
		s.converter = newRodConverter(launchConfig{
			profile: s.cfg.profile,
			bin:     s.cfg.browserBin,
		}, s.cfg.timeout)
	}
	if s.publisher == nil {
		// Error ignored: "." always exists, MkdirAll on it cannot fail.
		s.publisher, _ = NewFilePublisher(".")
	}

	return s
}

// Issue runs the full pipeline for one request and returns the published
// certificate location. The context is used for cancellation; the render
// stage additionally carries its own bounded timeout.
func (s *Service) Issue(ctx context.Context, req Request) (*PublicationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	issuedAt := s.now()

	if err := s.ensureRecord(ctx, req, issuedAt); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tc, err := s.composer.Context(req, issuedAt)
	if err != nil {
		return nil, err
	}

	htmlContent, err := s.composer.Compose(ctx, tc)
	if err != nil {
		return nil, err
	}

	document, err := s.converter.ToPDF(ctx, htmlContent)
	if err != nil {
		// Timeouts included: the render step is the only stage with
		// unbounded external-process latency, so its deadline faults
		// classify as render failures.
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	return s.publisher.Publish(ctx, req.ID, document)
}

// ensureRecord runs the idempotency check against the record store.
//
// Policy: a FOUND record is overwritten with the current name, grade and a
// fresh timestamp; an ABSENT record is left absent. Issuance proceeds
// unconditionally either way, so the branch affects persisted state only.
// See DESIGN.md for why this branch is not inverted.
func (s *Service) ensureRecord(ctx context.Context, req Request, now time.Time) error {
	_, err := s.store.FindByID(ctx, req.ID)
	switch {
	case err == nil:
		rec := Record{
			ID:        req.ID,
			Name:      req.Name,
			Grade:     req.Grade,
			CreatedAt: now,
		}
		if err := s.store.Put(ctx, rec); err != nil {
			return fmt.Errorf("%w: %v", ErrRecordStore, err)
		}
		return nil

	case errors.Is(err, ErrRecordNotFound):
		return nil

	default:
		return fmt.Errorf("%w: %v", ErrRecordStore, err)
	}
}

// Close releases converter resources. The rod converter is scoped per
// invocation and holds nothing between calls, but injected converters may.
func (s *Service) Close() error {
	if s.converter != nil {
		return s.converter.Close()
	}
	return nil
}
