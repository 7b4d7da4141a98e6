package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/BilyiPJATK/librarystore/catalog"
)

type publisherPayload struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
}

func publisherFromPayload(payload publisherPayload) catalog.Publisher {
	return catalog.Publisher{
		ID:          payload.ID,
		Name:        payload.Name,
		Address:     payload.Address,
		PhoneNumber: payload.PhoneNumber,
	}
}

func payloadFromPublisher(publisher catalog.Publisher) publisherPayload {
	return publisherPayload{
		ID:          publisher.ID,
		Name:        publisher.Name,
		Address:     publisher.Address,
		PhoneNumber: publisher.PhoneNumber,
	}
}

func (s *Server) handleCreatePublisher(w http.ResponseWriter, r *http.Request) {
	var payload publisherPayload
	if err := s.readJSON(w, r, &payload); err != nil {
		s.writeError(w, r, err)

		return
	}

	created, err := s.svc.CreatePublisher(r.Context(), publisherFromPayload(payload))
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, payloadFromPublisher(*created))
}

func (s *Server) handleGetPublisher(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	publisher, err := s.svc.GetPublisher(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if publisher == nil {
		s.writeError(w, r, fmt.Errorf("%w: publisher %d", catalog.ErrNotFound, id))

		return
	}

	s.writeJSON(w, http.StatusOK, payloadFromPublisher(*publisher))
}

func (s *Server) handleListPublishers(w http.ResponseWriter, r *http.Request) {
	publishers, err := s.svc.ListPublishers(r.Context())
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	payloads := make([]publisherPayload, 0, len(publishers))
	for _, publisher := range publishers {
		payloads = append(payloads, payloadFromPublisher(publisher))
	}

	s.writeJSON(w, http.StatusOK, payloads)
}

func (s *Server) handleUpdatePublisher(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	var payload publisherPayload
	if err = s.readJSON(w, r, &payload); err != nil {
		s.writeError(w, r, err)

		return
	}

	publisher := publisherFromPayload(payload)
	publisher.ID = id

	if err = s.svc.UpdatePublisher(r.Context(), publisher); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, payloadFromPublisher(publisher))
}

func (s *Server) handleDeletePublisher(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if err = s.svc.DeletePublisher(r.Context(), id); err != nil {
		s.writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type bookPayload struct {
	ID              int64  `json:"id,omitempty"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	PublicationYear int    `json:"publication_year"`
	ISBN            string `json:"isbn"`
	PublisherID     int64  `json:"publisher_id"`
}

func bookFromPayload(payload bookPayload) catalog.Book {
	return catalog.Book{
		ID:              payload.ID,
		Title:           payload.Title,
		Author:          payload.Author,
		PublicationYear: payload.PublicationYear,
		ISBN:            payload.ISBN,
		PublisherID:     payload.PublisherID,
	}
}

func payloadFromBook(book catalog.Book) bookPayload {
	return bookPayload{
		ID:              book.ID,
		Title:           book.Title,
		Author:          book.Author,
		PublicationYear: book.PublicationYear,
		ISBN:            book.ISBN,
		PublisherID:     book.PublisherID,
	}
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var payload bookPayload
	if err := s.readJSON(w, r, &payload); err != nil {
		s.writeError(w, r, err)

		return
	}

	created, err := s.svc.CreateBook(r.Context(), bookFromPayload(payload))
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, payloadFromBook(*created))
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	book, err := s.svc.GetBook(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if book == nil {
		s.writeError(w, r, fmt.Errorf("%w: book %d", catalog.ErrNotFound, id))

		return
	}

	s.writeJSON(w, http.StatusOK, payloadFromBook(*book))
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.svc.ListBooks(r.Context())
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, bookPayloads(books))
}

func (s *Server) handleAvailableBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.svc.AvailableBooks(r.Context())
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, bookPayloads(books))
}

func bookPayloads(books []catalog.Book) []bookPayload {
	payloads := make([]bookPayload, 0, len(books))
	for _, book := range books {
		payloads = append(payloads, payloadFromBook(book))
	}

	return payloads
}

func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	var payload bookPayload
	if err = s.readJSON(w, r, &payload); err != nil {
		s.writeError(w, r, err)

		return
	}

	book := bookFromPayload(payload)
	book.ID = id

	if err = s.svc.UpdateBook(r.Context(), book); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, payloadFromBook(book))
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if err = s.svc.DeleteBook(r.Context(), id); err != nil {
		s.writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type copyPayload struct {
	ID         int64  `json:"id,omitempty"`
	BookID     int64  `json:"book_id"`
	CopyNumber int    `json:"copy_number"`
	Status     string `json:"status"`
}

func copyFromPayload(payload copyPayload) catalog.Copy {
	return catalog.Copy{
		ID:         payload.ID,
		BookID:     payload.BookID,
		CopyNumber: payload.CopyNumber,
		Status:     catalog.CopyStatus(payload.Status),
	}
}

func payloadFromCopy(copy catalog.Copy) copyPayload {
	return copyPayload{
		ID:         copy.ID,
		BookID:     copy.BookID,
		CopyNumber: copy.CopyNumber,
		Status:     string(copy.Status),
	}
}

func (s *Server) handleCreateCopy(w http.ResponseWriter, r *http.Request) {
	var payload copyPayload
	if err := s.readJSON(w, r, &payload); err != nil {
		s.writeError(w, r, err)

		return
	}

	created, err := s.svc.CreateCopy(r.Context(), copyFromPayload(payload))
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, payloadFromCopy(*created))
}

func (s *Server) handleGetCopy(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	copy, err := s.svc.GetCopy(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if copy == nil {
		s.writeError(w, r, fmt.Errorf("%w: copy %d", catalog.ErrNotFound, id))

		return
	}

	s.writeJSON(w, http.StatusOK, payloadFromCopy(*copy))
}

func (s *Server) handleListCopies(w http.ResponseWriter, r *http.Request) {
	var bookID int64

	if raw := r.URL.Query().Get("book_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			s.writeError(w, r, fmt.Errorf("%w: invalid book_id parameter", catalog.ErrValidation))

			return
		}

		bookID = parsed
	}

	copies, err := s.svc.ListCopies(r.Context(), bookID)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	payloads := make([]copyPayload, 0, len(copies))
	for _, copy := range copies {
		payloads = append(payloads, payloadFromCopy(copy))
	}

	s.writeJSON(w, http.StatusOK, payloads)
}

func (s *Server) handleUpdateCopy(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	var payload copyPayload
	if err = s.readJSON(w, r, &payload); err != nil {
		s.writeError(w, r, err)

		return
	}

	copy := copyFromPayload(payload)
	copy.ID = id

	if err = s.svc.UpdateCopy(r.Context(), copy); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, payloadFromCopy(copy))
}

func (s *Server) handleDeleteCopy(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if err = s.svc.DeleteCopy(r.Context(), id); err != nil {
		s.writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
