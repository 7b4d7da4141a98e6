package service

import (
	"context"

	"github.com/BilyiPJATK/librarystore/catalog"
)

// CreatePublisher validates and persists a publisher.
func (s *Service) CreatePublisher(ctx context.Context, publisher catalog.Publisher) (*catalog.Publisher, error) {
	v := catalog.NewValidator()
	catalog.ValidatePublisher(v, publisher)

	if err := v.Err(); err != nil {
		return nil, err
	}

	err := s.withRetry(ctx, "create_publisher", func(retryCtx context.Context) error {
		return s.store.Publishers().Create(retryCtx, &publisher)
	})
	if err != nil {
		return nil, err
	}

	return &publisher, nil
}

// GetPublisher returns a publisher by id, or nil when absent.
func (s *Service) GetPublisher(ctx context.Context, id int64) (*catalog.Publisher, error) {
	return s.store.Publishers().GetByID(ctx, id)
}

// ListPublishers returns all publishers.
func (s *Service) ListPublishers(ctx context.Context) ([]catalog.Publisher, error) {
	return s.store.Publishers().GetAll(ctx)
}

// UpdatePublisher validates and stores new field values for a publisher.
func (s *Service) UpdatePublisher(ctx context.Context, publisher catalog.Publisher) error {
	v := catalog.NewValidator()
	catalog.ValidatePublisher(v, publisher)

	if err := v.Err(); err != nil {
		return err
	}

	return s.withRetry(ctx, "update_publisher", func(retryCtx context.Context) error {
		return s.store.Publishers().Update(retryCtx, &publisher)
	})
}

// DeletePublisher removes a publisher. Books still referencing it make
// the delete fail on the foreign key and surface as a persistence error.
func (s *Service) DeletePublisher(ctx context.Context, id int64) error {
	return s.withRetry(ctx, "delete_publisher", func(retryCtx context.Context) error {
		return s.store.Publishers().DeleteByID(retryCtx, id)
	})
}

// CreateBook validates and persists a catalog record.
func (s *Service) CreateBook(ctx context.Context, book catalog.Book) (*catalog.Book, error) {
	v := catalog.NewValidator()
	catalog.ValidateBook(v, book)

	if err := v.Err(); err != nil {
		return nil, err
	}

	err := s.withRetry(ctx, "create_book", func(retryCtx context.Context) error {
		return s.store.Books().Create(retryCtx, &book)
	})
	if err != nil {
		return nil, err
	}

	return &book, nil
}

// GetBook returns a book by id, or nil when absent.
func (s *Service) GetBook(ctx context.Context, id int64) (*catalog.Book, error) {
	return s.store.Books().GetByID(ctx, id)
}

// ListBooks returns all catalog records.
func (s *Service) ListBooks(ctx context.Context) ([]catalog.Book, error) {
	return s.store.Books().GetAll(ctx)
}

// AvailableBooks returns every book with at least one Available copy.
func (s *Service) AvailableBooks(ctx context.Context) ([]catalog.Book, error) {
	return s.store.Books().Available(ctx)
}

// UpdateBook validates and stores new field values for a catalog record.
func (s *Service) UpdateBook(ctx context.Context, book catalog.Book) error {
	v := catalog.NewValidator()
	catalog.ValidateBook(v, book)

	if err := v.Err(); err != nil {
		return err
	}

	return s.withRetry(ctx, "update_book", func(retryCtx context.Context) error {
		return s.store.Books().Update(retryCtx, &book)
	})
}

// DeleteBook removes a book with its copies and closed loan history,
// unless any copy is currently borrowed.
func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	return s.withRetry(ctx, "delete_book", func(retryCtx context.Context) error {
		return s.store.DeleteBook(retryCtx, id)
	})
}

// CreateCopy validates and persists a physical copy.
func (s *Service) CreateCopy(ctx context.Context, copy catalog.Copy) (*catalog.Copy, error) {
	v := catalog.NewValidator()
	catalog.ValidateCopy(v, copy)

	if err := v.Err(); err != nil {
		return nil, err
	}

	err := s.withRetry(ctx, "create_copy", func(retryCtx context.Context) error {
		return s.store.Copies().Create(retryCtx, &copy)
	})
	if err != nil {
		return nil, err
	}

	return &copy, nil
}

// GetCopy returns a copy by id, or nil when absent.
func (s *Service) GetCopy(ctx context.Context, id int64) (*catalog.Copy, error) {
	return s.store.Copies().GetByID(ctx, id)
}

// ListCopies returns all copies, or only one book's copies when bookID is positive.
func (s *Service) ListCopies(ctx context.Context, bookID int64) ([]catalog.Copy, error) {
	if bookID > 0 {
		return s.store.Copies().ForBook(ctx, bookID)
	}

	return s.store.Copies().GetAll(ctx)
}

// UpdateCopy validates and stores new field values for a copy.
func (s *Service) UpdateCopy(ctx context.Context, copy catalog.Copy) error {
	v := catalog.NewValidator()
	catalog.ValidateCopy(v, copy)

	if err := v.Err(); err != nil {
		return err
	}

	return s.withRetry(ctx, "update_copy", func(retryCtx context.Context) error {
		return s.store.Copies().Update(retryCtx, &copy)
	})
}

// DeleteCopy removes a copy. Borrowings still referencing it make the
// delete fail on the foreign key and surface as a persistence error.
func (s *Service) DeleteCopy(ctx context.Context, id int64) error {
	return s.withRetry(ctx, "delete_copy", func(retryCtx context.Context) error {
		return s.store.Copies().DeleteByID(retryCtx, id)
	})
}
