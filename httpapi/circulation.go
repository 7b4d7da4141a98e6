package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/BilyiPJATK/librarystore/catalog"
)

type borrowingPayload struct {
	ID         int64   `json:"id"`
	UserID     int64   `json:"user_id"`
	CopyID     int64   `json:"copy_id"`
	BorrowDate string  `json:"borrow_date"`
	ReturnDate *string `json:"return_date"`
}

func payloadFromBorrowing(borrowing catalog.Borrowing) borrowingPayload {
	payload := borrowingPayload{
		ID:         borrowing.ID,
		UserID:     borrowing.UserID,
		CopyID:     borrowing.CopyID,
		BorrowDate: catalog.FormatDate(borrowing.BorrowDate),
	}

	if borrowing.ReturnDate != nil {
		formatted := catalog.FormatDate(*borrowing.ReturnDate)
		payload.ReturnDate = &formatted
	}

	return payload
}

type borrowRequest struct {
	UserID     int64  `json:"user_id"`
	CopyID     int64  `json:"copy_id"`
	BorrowDate string `json:"borrow_date"`
}

func (s *Server) handleBorrowCopy(w http.ResponseWriter, r *http.Request) {
	var request borrowRequest
	if err := s.readJSON(w, r, &request); err != nil {
		s.writeError(w, r, err)

		return
	}

	borrowDate, err := catalog.ParseDate(request.BorrowDate)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	borrowing, err := s.svc.BorrowCopy(r.Context(), request.UserID, request.CopyID, borrowDate)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, payloadFromBorrowing(*borrowing))
}

type returnRequest struct {
	ReturnDate string `json:"return_date"`
}

func (s *Server) handleReturnCopy(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	var request returnRequest
	if err = s.readJSON(w, r, &request); err != nil {
		s.writeError(w, r, err)

		return
	}

	returnDate, err := catalog.ParseDate(request.ReturnDate)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	borrowing, err := s.svc.ReturnCopy(r.Context(), id, returnDate)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, payloadFromBorrowing(*borrowing))
}

func (s *Server) handleGetBorrowing(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	borrowing, err := s.svc.GetBorrowing(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if borrowing == nil {
		s.writeError(w, r, fmt.Errorf("%w: borrowing %d", catalog.ErrNotFound, id))

		return
	}

	s.writeJSON(w, http.StatusOK, payloadFromBorrowing(*borrowing))
}

func (s *Server) handleListBorrowings(w http.ResponseWriter, r *http.Request) {
	filter, err := borrowingFilterFromQuery(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	borrowings, err := s.svc.ListBorrowings(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	payloads := make([]borrowingPayload, 0, len(borrowings))
	for _, borrowing := range borrowings {
		payloads = append(payloads, payloadFromBorrowing(borrowing))
	}

	s.writeJSON(w, http.StatusOK, payloads)
}

func borrowingFilterFromQuery(r *http.Request) (catalog.BorrowingFilter, error) {
	query := r.URL.Query()
	builder := catalog.BuildBorrowingFilter()

	if raw := query.Get("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID < 1 {
			return catalog.BorrowingFilter{}, fmt.Errorf("%w: invalid user_id parameter", catalog.ErrValidation)
		}

		builder.ForUser(userID)
	}

	if raw := query.Get("copy_id"); raw != "" {
		copyID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || copyID < 1 {
			return catalog.BorrowingFilter{}, fmt.Errorf("%w: invalid copy_id parameter", catalog.ErrValidation)
		}

		builder.ForCopy(copyID)
	}

	if raw := query.Get("open"); raw != "" {
		open, err := strconv.ParseBool(raw)
		if err != nil {
			return catalog.BorrowingFilter{}, fmt.Errorf("%w: invalid open parameter", catalog.ErrValidation)
		}

		if open {
			builder.OpenOnly()
		} else {
			builder.ClosedOnly()
		}
	}

	if raw := query.Get("from"); raw != "" {
		from, err := catalog.ParseDate(raw)
		if err != nil {
			return catalog.BorrowingFilter{}, err
		}

		builder.BorrowedFrom(from)
	}

	if raw := query.Get("until"); raw != "" {
		until, err := catalog.ParseDate(raw)
		if err != nil {
			return catalog.BorrowingFilter{}, err
		}

		builder.BorrowedUntil(until)
	}

	return builder.Finalize(), nil
}

func (s *Server) handleDeleteBorrowing(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if err = s.svc.DeleteBorrowing(r.Context(), id); err != nil {
		s.writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type borrowedBookPayload struct {
	Title      string  `json:"title"`
	BorrowDate string  `json:"borrow_date"`
	ReturnDate *string `json:"return_date"`
}

func (s *Server) handleBorrowedBooks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	borrowed, err := s.svc.BorrowedBooks(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	payloads := make([]borrowedBookPayload, 0, len(borrowed))

	for _, row := range borrowed {
		payload := borrowedBookPayload{
			Title:      row.Title,
			BorrowDate: catalog.FormatDate(row.BorrowDate),
		}

		if row.ReturnDate != nil {
			formatted := catalog.FormatDate(*row.ReturnDate)
			payload.ReturnDate = &formatted
		}

		payloads = append(payloads, payload)
	}

	s.writeJSON(w, http.StatusOK, payloads)
}
