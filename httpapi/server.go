// Package httpapi exposes the library system as a small REST surface,
// standing in for the desktop interface of the original application.
// Handlers translate HTTP to service calls and map the shared error
// taxonomy onto status codes; no business rule lives here.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/BilyiPJATK/librarystore/catalog"
)

// UserService is the part of the service layer the user and staff
// handlers need.
type UserService interface {
	RegisterUser(ctx context.Context, user catalog.User) (*catalog.User, error)
	Login(ctx context.Context, email string) (*catalog.User, bool, error)
	GetUser(ctx context.Context, id int64) (*catalog.User, error)
	ListUsers(ctx context.Context) ([]catalog.User, error)
	UpdateUser(ctx context.Context, user catalog.User) error
	DeleteUser(ctx context.Context, id int64) error
	CreateLibrarian(ctx context.Context, librarian catalog.Librarian) (*catalog.Librarian, error)
	GetLibrarian(ctx context.Context, id int64) (*catalog.Librarian, error)
	ListLibrarians(ctx context.Context) ([]catalog.Librarian, error)
	UpdateLibrarian(ctx context.Context, librarian catalog.Librarian) error
	DeleteLibrarian(ctx context.Context, id int64) error
}

// CatalogService is the part of the service layer the catalog handlers need.
type CatalogService interface {
	CreatePublisher(ctx context.Context, publisher catalog.Publisher) (*catalog.Publisher, error)
	GetPublisher(ctx context.Context, id int64) (*catalog.Publisher, error)
	ListPublishers(ctx context.Context) ([]catalog.Publisher, error)
	UpdatePublisher(ctx context.Context, publisher catalog.Publisher) error
	DeletePublisher(ctx context.Context, id int64) error
	CreateBook(ctx context.Context, book catalog.Book) (*catalog.Book, error)
	GetBook(ctx context.Context, id int64) (*catalog.Book, error)
	ListBooks(ctx context.Context) ([]catalog.Book, error)
	AvailableBooks(ctx context.Context) ([]catalog.Book, error)
	UpdateBook(ctx context.Context, book catalog.Book) error
	DeleteBook(ctx context.Context, id int64) error
	CreateCopy(ctx context.Context, copy catalog.Copy) (*catalog.Copy, error)
	GetCopy(ctx context.Context, id int64) (*catalog.Copy, error)
	ListCopies(ctx context.Context, bookID int64) ([]catalog.Copy, error)
	UpdateCopy(ctx context.Context, copy catalog.Copy) error
	DeleteCopy(ctx context.Context, id int64) error
}

// CirculationService is the part of the service layer the borrowing
// handlers need.
type CirculationService interface {
	BorrowCopy(ctx context.Context, userID int64, copyID int64, borrowDate time.Time) (*catalog.Borrowing, error)
	ReturnCopy(ctx context.Context, borrowingID int64, returnDate time.Time) (*catalog.Borrowing, error)
	GetBorrowing(ctx context.Context, id int64) (*catalog.Borrowing, error)
	ListBorrowings(ctx context.Context, filter catalog.BorrowingFilter) ([]catalog.Borrowing, error)
	BorrowedBooks(ctx context.Context, userID int64) ([]catalog.BorrowedBook, error)
	DeleteBorrowing(ctx context.Context, id int64) error
}

// Services bundles everything the server needs from the service layer.
type Services interface {
	UserService
	CatalogService
	CirculationService
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	logger         *slog.Logger
	svc            Services
	requestTimeout time.Duration
	rateLimit      rateLimitSettings
}

type rateLimitSettings struct {
	enabled bool
	rps     float64
	burst   int
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithRequestTimeout bounds every request-scoped context. Zero disables
// the bound.
func WithRequestTimeout(timeout time.Duration) ServerOption {
	return func(s *Server) {
		s.requestTimeout = timeout
	}
}

// WithRateLimit enables per-client rate limiting.
func WithRateLimit(rps float64, burst int) ServerOption {
	return func(s *Server) {
		s.rateLimit = rateLimitSettings{enabled: true, rps: rps, burst: burst}
	}
}

// NewServer creates a Server over the given service layer.
func NewServer(logger *slog.Logger, svc Services, options ...ServerOption) *Server {
	server := &Server{
		logger:         logger,
		svc:            svc,
		requestTimeout: 10 * time.Second,
	}

	for _, option := range options {
		option(server)
	}

	return server
}

// Routes builds the router with all endpoints and middleware attached.
func (s *Server) Routes() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/v1/healthcheck", s.handleHealthcheck).Methods(http.MethodGet)

	router.HandleFunc("/v1/login", s.handleLogin).Methods(http.MethodPost)

	router.HandleFunc("/v1/users", s.handleRegisterUser).Methods(http.MethodPost)
	router.HandleFunc("/v1/users", s.handleListUsers).Methods(http.MethodGet)
	router.HandleFunc("/v1/users/{id:[0-9]+}", s.handleGetUser).Methods(http.MethodGet)
	router.HandleFunc("/v1/users/{id:[0-9]+}", s.handleUpdateUser).Methods(http.MethodPut)
	router.HandleFunc("/v1/users/{id:[0-9]+}", s.handleDeleteUser).Methods(http.MethodDelete)
	router.HandleFunc("/v1/users/{id:[0-9]+}/borrowed", s.handleBorrowedBooks).Methods(http.MethodGet)

	router.HandleFunc("/v1/librarians", s.handleCreateLibrarian).Methods(http.MethodPost)
	router.HandleFunc("/v1/librarians", s.handleListLibrarians).Methods(http.MethodGet)
	router.HandleFunc("/v1/librarians/{id:[0-9]+}", s.handleGetLibrarian).Methods(http.MethodGet)
	router.HandleFunc("/v1/librarians/{id:[0-9]+}", s.handleUpdateLibrarian).Methods(http.MethodPut)
	router.HandleFunc("/v1/librarians/{id:[0-9]+}", s.handleDeleteLibrarian).Methods(http.MethodDelete)

	router.HandleFunc("/v1/publishers", s.handleCreatePublisher).Methods(http.MethodPost)
	router.HandleFunc("/v1/publishers", s.handleListPublishers).Methods(http.MethodGet)
	router.HandleFunc("/v1/publishers/{id:[0-9]+}", s.handleGetPublisher).Methods(http.MethodGet)
	router.HandleFunc("/v1/publishers/{id:[0-9]+}", s.handleUpdatePublisher).Methods(http.MethodPut)
	router.HandleFunc("/v1/publishers/{id:[0-9]+}", s.handleDeletePublisher).Methods(http.MethodDelete)

	router.HandleFunc("/v1/books", s.handleCreateBook).Methods(http.MethodPost)
	router.HandleFunc("/v1/books", s.handleListBooks).Methods(http.MethodGet)
	router.HandleFunc("/v1/books/available", s.handleAvailableBooks).Methods(http.MethodGet)
	router.HandleFunc("/v1/books/{id:[0-9]+}", s.handleGetBook).Methods(http.MethodGet)
	router.HandleFunc("/v1/books/{id:[0-9]+}", s.handleUpdateBook).Methods(http.MethodPut)
	router.HandleFunc("/v1/books/{id:[0-9]+}", s.handleDeleteBook).Methods(http.MethodDelete)

	router.HandleFunc("/v1/copies", s.handleCreateCopy).Methods(http.MethodPost)
	router.HandleFunc("/v1/copies", s.handleListCopies).Methods(http.MethodGet)
	router.HandleFunc("/v1/copies/{id:[0-9]+}", s.handleGetCopy).Methods(http.MethodGet)
	router.HandleFunc("/v1/copies/{id:[0-9]+}", s.handleUpdateCopy).Methods(http.MethodPut)
	router.HandleFunc("/v1/copies/{id:[0-9]+}", s.handleDeleteCopy).Methods(http.MethodDelete)

	router.HandleFunc("/v1/borrowings", s.handleBorrowCopy).Methods(http.MethodPost)
	router.HandleFunc("/v1/borrowings", s.handleListBorrowings).Methods(http.MethodGet)
	router.HandleFunc("/v1/borrowings/{id:[0-9]+}", s.handleGetBorrowing).Methods(http.MethodGet)
	router.HandleFunc("/v1/borrowings/{id:[0-9]+}/return", s.handleReturnCopy).Methods(http.MethodPatch)
	router.HandleFunc("/v1/borrowings/{id:[0-9]+}", s.handleDeleteBorrowing).Methods(http.MethodDelete)

	var handler http.Handler = router
	handler = s.logRequest(handler)

	if s.rateLimit.enabled {
		handler = s.limitRate(handler)
	}

	handler = s.withRequestID(handler)
	handler = s.recoverPanic(handler)

	return handler
}

func (s *Server) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "available"})
}
