// Package service implements the business operations of the library
// system on top of the persistence engine: registration, the borrowing
// lifecycle, and the guarded deletes. Field validation happens here,
// before any transaction is opened; the engine enforces the cross-table
// guards inside its transactions.
package service

import (
	"context"
	"log/slog"

	"github.com/BilyiPJATK/librarystore/catalog"
	"github.com/BilyiPJATK/librarystore/catalog/postgresengine"
)

const (
	logMsgOperationRejected = "operation rejected"
	logAttrError            = "error"
	logAttrOperation        = "operation"
)

// Service wires validation, retry, and logging around the catalog store.
type Service struct {
	store        *postgresengine.Store
	logger       *slog.Logger
	retryOptions []RetryOption
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for operational messages.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithRetryOptions sets a custom retry configuration for operations
// that can hit transient database conflicts.
func WithRetryOptions(options ...RetryOption) Option {
	return func(s *Service) {
		s.retryOptions = options
	}
}

// NewService creates a Service over the given store.
func NewService(store *postgresengine.Store, options ...Option) *Service {
	service := &Service{
		store:  store,
		logger: slog.Default(),
	}

	for _, option := range options {
		option(service)
	}

	return service
}

// withRetry runs a mutating operation with the configured backoff,
// logging rejections on the way out.
func (s *Service) withRetry(ctx context.Context, operation string, fn RetryableFunc) error {
	err := RetryWithBackoff(ctx, fn, s.retryOptions...)
	if err != nil {
		s.logger.Info(logMsgOperationRejected, logAttrOperation, operation, logAttrError, err.Error())
	}

	return err
}

// RegisterUser validates and persists a new user. Duplicate emails are
// rejected with catalog.ErrDuplicateEmail before any row is written.
func (s *Service) RegisterUser(ctx context.Context, user catalog.User) (*catalog.User, error) {
	v := catalog.NewValidator()
	catalog.ValidateUser(v, user)

	if err := v.Err(); err != nil {
		return nil, err
	}

	err := s.withRetry(ctx, "register_user", func(retryCtx context.Context) error {
		return s.store.RegisterUser(retryCtx, &user)
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Login resolves a user by email the way the original login screen did.
// The second return value reports whether the user has a librarian
// profile and therefore gets the admin view. An unknown email yields
// catalog.ErrNotFound.
func (s *Service) Login(ctx context.Context, email string) (*catalog.User, bool, error) {
	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}

	if user == nil {
		return nil, false, catalog.ErrNotFound
	}

	librarian, err := s.store.Librarians().FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, false, err
	}

	return user, librarian != nil, nil
}

// GetUser returns a user by id, or nil when absent.
func (s *Service) GetUser(ctx context.Context, id int64) (*catalog.User, error) {
	return s.store.Users().GetByID(ctx, id)
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]catalog.User, error) {
	return s.store.Users().GetAll(ctx)
}

// UpdateUser validates and stores new field values for an existing user.
func (s *Service) UpdateUser(ctx context.Context, user catalog.User) error {
	v := catalog.NewValidator()
	catalog.ValidateUser(v, user)

	if err := v.Err(); err != nil {
		return err
	}

	return s.withRetry(ctx, "update_user", func(retryCtx context.Context) error {
		return s.store.Users().Update(retryCtx, &user)
	})
}

// DeleteUser removes a user unless borrowings or a librarian profile
// reference them.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	return s.withRetry(ctx, "delete_user", func(retryCtx context.Context) error {
		return s.store.DeleteUser(retryCtx, id)
	})
}

// CreateLibrarian validates and persists a staff profile for a user.
func (s *Service) CreateLibrarian(ctx context.Context, librarian catalog.Librarian) (*catalog.Librarian, error) {
	v := catalog.NewValidator()
	catalog.ValidateLibrarian(v, librarian)

	if err := v.Err(); err != nil {
		return nil, err
	}

	err := s.withRetry(ctx, "create_librarian", func(retryCtx context.Context) error {
		return s.store.Librarians().Create(retryCtx, &librarian)
	})
	if err != nil {
		return nil, err
	}

	return &librarian, nil
}

// GetLibrarian returns a staff profile by id, or nil when absent.
func (s *Service) GetLibrarian(ctx context.Context, id int64) (*catalog.Librarian, error) {
	return s.store.Librarians().GetByID(ctx, id)
}

// ListLibrarians returns all staff profiles.
func (s *Service) ListLibrarians(ctx context.Context) ([]catalog.Librarian, error) {
	return s.store.Librarians().GetAll(ctx)
}

// UpdateLibrarian validates and stores new field values for a staff profile.
func (s *Service) UpdateLibrarian(ctx context.Context, librarian catalog.Librarian) error {
	v := catalog.NewValidator()
	catalog.ValidateLibrarian(v, librarian)

	if err := v.Err(); err != nil {
		return err
	}

	return s.withRetry(ctx, "update_librarian", func(retryCtx context.Context) error {
		return s.store.Librarians().Update(retryCtx, &librarian)
	})
}

// DeleteLibrarian removes a staff profile; the user record stays.
func (s *Service) DeleteLibrarian(ctx context.Context, id int64) error {
	return s.withRetry(ctx, "delete_librarian", func(retryCtx context.Context) error {
		return s.store.Librarians().DeleteByID(retryCtx, id)
	})
}
