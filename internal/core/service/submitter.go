package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/strogholod/catalog/internal/core/domain"
	"github.com/strogholod/catalog/internal/core/port"
)

var _ port.ProductSubmitter = (*Submitter)(nil)

type submitBackend interface {
	port.ProductWriter
	port.PhotoUploader
}

type SubmitterOpt func(*submitterOpts) error

type submitterOpts struct {
	backend  submitBackend
	resolver port.PhotoResolver
	journal  journal
	now      func() time.Time
}

func SubmitterBackendOpt(b submitBackend) SubmitterOpt {
	return func(opts *submitterOpts) error {
		if b == nil {
			return errors.New("backend is nil")
		}
		opts.backend = b
		return nil
	}
}

func SubmitterResolverOpt(r port.PhotoResolver) SubmitterOpt {
	return func(opts *submitterOpts) error {
		if r == nil {
			return errors.New("photo resolver is nil")
		}
		opts.resolver = r
		return nil
	}
}

// SubmitterJournalOpt sets the price change recorders. Nil recorders are skipped.
func SubmitterJournalOpt(rs ...port.PriceChangeRecorder) SubmitterOpt {
	return func(opts *submitterOpts) error {
		opts.journal = newJournal(rs...)
		return nil
	}
}

func SubmitterClockOpt(now func() time.Time) SubmitterOpt {
	return func(opts *submitterOpts) error {
		if now == nil {
			return errors.New("clock is nil")
		}
		opts.now = now
		return nil
	}
}

// A Submitter uploads a newly chosen photo and then creates or updates
// the product. One submission at a time runs per Submitter.
type Submitter struct {
	backend  submitBackend
	resolver port.PhotoResolver
	journal  journal
	now      func() time.Time

	inFlight atomic.Bool

	mu    sync.RWMutex
	state domain.SubmissionState
}

func NewSubmitter(opts ...SubmitterOpt) (*Submitter, error) {
	const op = "NewSubmitter"

	options := submitterOpts{now: time.Now}
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if options.backend == nil || options.resolver == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrTooFewOpts)
	}

	return &Submitter{
		backend:  options.backend,
		resolver: options.resolver,
		journal:  options.journal,
		now:      options.now,
	}, nil
}

// Submit runs the workflow for draft. existing is the product being
// edited, nil when creating. The final state is published and returned;
// a concurrent call is rejected without touching the published state.
func (s *Submitter) Submit(
	ctx context.Context, draft domain.Draft, existing *domain.Product,
) domain.SubmissionState {
	const op = "Submitter.Submit"
	log := slog.With("op", op)

	if !s.inFlight.CompareAndSwap(false, true) {
		log.Warn("submission rejected", "err", ErrSubmissionInProgress)
		return domain.SubmissionState{
			Status:  domain.SubmissionRejected,
			Message: ErrSubmissionInProgress.Error(),
		}
	}
	defer s.inFlight.Store(false)

	s.publish(domain.SubmissionState{Status: domain.SubmissionPending})

	product, change, err := s.prepare(ctx, draft, existing)
	if err != nil {
		log.Warn("failed to prepare product", "err", err)
		return s.fail(err)
	}

	resp, err := s.dispatch(ctx, product, existing != nil)
	if err != nil {
		log.Error("failed to save product", "err", err)
		return s.fail(err)
	}

	if !resp.Success {
		log.Warn("product rejected", "productID", product.ID, "msg", resp.Message)
		return s.publish(domain.SubmissionState{
			Status:  domain.SubmissionFailed,
			Message: resp.Message,
		})
	}

	if change != nil {
		s.journal.record(ctx, *change)
	}

	log.Info("product saved", "productID", product.ID, "name", product.Name)
	return s.publish(domain.SubmissionState{
		Status:  domain.SubmissionSucceeded,
		Success: true,
		Message: resp.Message,
	})
}

func (s *Submitter) State() domain.SubmissionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// ResetSuccess clears the success flag once the caller has reacted to it.
// Status and Message of the last outcome stay observable.
func (s *Submitter) ResetSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Success = false
}

func (s *Submitter) prepare(
	ctx context.Context, draft domain.Draft, existing *domain.Product,
) (domain.Product, *domain.PriceChange, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return domain.Product{}, nil, ErrEmptyName
	}

	category := domain.CodeOrDefault(draft.CategoryLabel)

	var photo string
	if existing != nil {
		photo = existing.Photo
	}

	if handle := strings.TrimSpace(draft.LocalPhoto); handle != "" {
		uploaded, err := s.uploadPhoto(ctx, handle, category)
		if err != nil {
			return domain.Product{}, nil, err
		}
		photo = uploaded
	}

	if !domain.IsRemotePhoto(photo) {
		return domain.Product{}, nil, ErrPhotoRequired
	}

	now := s.now()
	product := domain.Product{
		Name:        name,
		Price:       strings.TrimSpace(draft.Price),
		Description: draft.Description,
		Photo:       photo,
		Category:    category,
	}

	if existing == nil {
		product.PriceUpdatedAt = domain.FormatPriceTime(now)
		return product, nil, nil
	}

	product.ID = existing.ID
	oldPrice := strings.TrimSpace(existing.Price)
	if product.Price == oldPrice {
		product.OldPrice = existing.OldPrice
		product.PriceUpdatedAt = existing.PriceUpdatedAt
		return product, nil, nil
	}

	product.OldPrice = oldPrice
	product.PriceUpdatedAt = domain.FormatPriceTime(now)
	change := &domain.PriceChange{
		ProductID: product.ID,
		Name:      product.Name,
		Category:  product.Category,
		OldPrice:  oldPrice,
		NewPrice:  product.Price,
		ChangedAt: now,
	}
	return product, change, nil
}

func (s *Submitter) uploadPhoto(
	ctx context.Context, handle, category string,
) (string, error) {
	const op = "Submitter.uploadPhoto"
	log := slog.With("op", op)

	path, err := s.resolver.Resolve(handle)
	if err != nil {
		log.Warn("failed to resolve photo", "handle", handle, "err", err)
		return "", fmt.Errorf("%w: %s", ErrPhotoUnavailable, handle)
	}

	resp, err := s.backend.UploadPhoto(ctx, path, category)
	if err != nil {
		return "", err
	}

	if !resp.Success {
		return "", fmt.Errorf("%w: %s", ErrUploadRejected, resp.Message)
	}

	log.Info("photo uploaded", "url", resp.Message)
	return resp.Message, nil
}

func (s *Submitter) dispatch(
	ctx context.Context, product domain.Product, update bool,
) (domain.ServerResponse, error) {
	if update {
		return s.backend.UpdateProduct(ctx, product)
	}
	return s.backend.CreateProduct(ctx, product)
}

func (s *Submitter) fail(err error) domain.SubmissionState {
	return s.publish(domain.SubmissionState{
		Status:  domain.SubmissionFailed,
		Message: failureMessage(err),
	})
}

func (s *Submitter) publish(state domain.SubmissionState) domain.SubmissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	return state
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyName),
		errors.Is(err, ErrPhotoRequired),
		errors.Is(err, ErrPhotoUnavailable),
		errors.Is(err, ErrUploadRejected):
		return err.Error()
	default:
		return "Error: " + err.Error()
	}
}
