package httpapi

import (
	"fmt"
	"net/http"

	"github.com/BilyiPJATK/librarystore/catalog"
)

type userPayload struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

func userFromPayload(payload userPayload) catalog.User {
	return catalog.User{
		ID:          payload.ID,
		Name:        payload.Name,
		Email:       payload.Email,
		PhoneNumber: payload.PhoneNumber,
		Address:     payload.Address,
	}
}

func payloadFromUser(user catalog.User) userPayload {
	return userPayload{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		Address:     user.Address,
	}
}

func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var payload userPayload
	if err := s.readJSON(w, r, &payload); err != nil {
		s.writeError(w, r, err)

		return
	}

	created, err := s.svc.RegisterUser(r.Context(), userFromPayload(payload))
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, payloadFromUser(*created))
}

type loginRequest struct {
	Email string `json:"email"`
}

type loginResponse struct {
	User        userPayload `json:"user"`
	IsLibrarian bool        `json:"is_librarian"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var request loginRequest
	if err := s.readJSON(w, r, &request); err != nil {
		s.writeError(w, r, err)

		return
	}

	user, isLibrarian, err := s.svc.Login(r.Context(), request.Email)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, loginResponse{
		User:        payloadFromUser(*user),
		IsLibrarian: isLibrarian,
	})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	user, err := s.svc.GetUser(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if user == nil {
		s.writeError(w, r, fmt.Errorf("%w: user %d", catalog.ErrNotFound, id))

		return
	}

	s.writeJSON(w, http.StatusOK, payloadFromUser(*user))
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.ListUsers(r.Context())
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	payloads := make([]userPayload, 0, len(users))
	for _, user := range users {
		payloads = append(payloads, payloadFromUser(user))
	}

	s.writeJSON(w, http.StatusOK, payloads)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	var payload userPayload
	if err = s.readJSON(w, r, &payload); err != nil {
		s.writeError(w, r, err)

		return
	}

	user := userFromPayload(payload)
	user.ID = id

	if err = s.svc.UpdateUser(r.Context(), user); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, payloadFromUser(user))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if err = s.svc.DeleteUser(r.Context(), id); err != nil {
		s.writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type librarianPayload struct {
	ID             int64  `json:"id,omitempty"`
	UserID         int64  `json:"user_id"`
	EmploymentDate string `json:"employment_date"`
	Position       string `json:"position"`
}

func librarianFromPayload(payload librarianPayload) (catalog.Librarian, error) {
	employmentDate, err := catalog.ParseDate(payload.EmploymentDate)
	if err != nil {
		return catalog.Librarian{}, err
	}

	return catalog.Librarian{
		ID:             payload.ID,
		UserID:         payload.UserID,
		EmploymentDate: employmentDate,
		Position:       catalog.Position(payload.Position),
	}, nil
}

func payloadFromLibrarian(librarian catalog.Librarian) librarianPayload {
	return librarianPayload{
		ID:             librarian.ID,
		UserID:         librarian.UserID,
		EmploymentDate: catalog.FormatDate(librarian.EmploymentDate),
		Position:       string(librarian.Position),
	}
}

func (s *Server) handleCreateLibrarian(w http.ResponseWriter, r *http.Request) {
	var payload librarianPayload
	if err := s.readJSON(w, r, &payload); err != nil {
		s.writeError(w, r, err)

		return
	}

	librarian, err := librarianFromPayload(payload)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	created, err := s.svc.CreateLibrarian(r.Context(), librarian)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, payloadFromLibrarian(*created))
}

func (s *Server) handleGetLibrarian(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	librarian, err := s.svc.GetLibrarian(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if librarian == nil {
		s.writeError(w, r, fmt.Errorf("%w: librarian %d", catalog.ErrNotFound, id))

		return
	}

	s.writeJSON(w, http.StatusOK, payloadFromLibrarian(*librarian))
}

func (s *Server) handleListLibrarians(w http.ResponseWriter, r *http.Request) {
	librarians, err := s.svc.ListLibrarians(r.Context())
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	payloads := make([]librarianPayload, 0, len(librarians))
	for _, librarian := range librarians {
		payloads = append(payloads, payloadFromLibrarian(librarian))
	}

	s.writeJSON(w, http.StatusOK, payloads)
}

func (s *Server) handleUpdateLibrarian(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	var payload librarianPayload
	if err = s.readJSON(w, r, &payload); err != nil {
		s.writeError(w, r, err)

		return
	}

	librarian, err := librarianFromPayload(payload)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	librarian.ID = id

	if err = s.svc.UpdateLibrarian(r.Context(), librarian); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, payloadFromLibrarian(librarian))
}

func (s *Server) handleDeleteLibrarian(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if err = s.svc.DeleteLibrarian(r.Context(), id); err != nil {
		s.writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
