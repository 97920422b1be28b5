package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/weather-gateway/internal/adapter/kafka"
	"github.com/couchcryptid/weather-gateway/internal/auth"
	"github.com/couchcryptid/weather-gateway/internal/domain"
)

// loginRequest is the JSON login payload.
type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	user, err := s.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "Incorrect email or password")
			return
		}
		s.writeDomainError(w, err)
		return
	}

	if !auth.VerifyPassword(user.HashedPassword, req.Password) {
		writeError(w, http.StatusBadRequest, "Incorrect email or password")
		return
	}
	if !user.IsActive {
		writeError(w, http.StatusBadRequest, "Inactive user")
		return
	}

	token, err := s.auth.IssueToken(user.ID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.Token{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req domain.UserRegister
	if !s.decodeBody(w, r, &req) {
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	user, err := s.users.CreateUser(r.Context(), domain.UserCreate{
		Email:    req.Email,
		FullName: req.FullName,
	}, hashed)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.publishAudit(r, "user", "create", user.ID, user.ID)
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request, _ domain.User) {
	skip, limit := pagination(r)
	page, err := s.users.ListUsers(r.Context(), skip, limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request, actor domain.User) {
	var req domain.UserCreate
	if !s.decodeBody(w, r, &req) {
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	user, err := s.users.CreateUser(r.Context(), req, hashed)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.publishAudit(r, "user", "create", user.ID, actor.ID)
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleGetMe(w http.ResponseWriter, _ *http.Request, user domain.User) {
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req domain.UserUpdateMe
	if !s.decodeBody(w, r, &req) {
		return
	}

	updated, err := s.users.UpdateUser(r.Context(), user.ID, domain.UserUpdate{
		Email:    req.Email,
		FullName: req.FullName,
	}, "")
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.publishAudit(r, "user", "update", user.ID, user.ID)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req domain.UpdatePassword
	if !s.decodeBody(w, r, &req) {
		return
	}

	if !auth.VerifyPassword(user.HashedPassword, req.CurrentPassword) {
		writeError(w, http.StatusBadRequest, "Incorrect password")
		return
	}
	if req.CurrentPassword == req.NewPassword {
		writeError(w, http.StatusBadRequest, "New password cannot be the same as the current one")
		return
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if err := s.users.UpdateUserPassword(r.Context(), user.ID, hashed); err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.publishAudit(r, "user", "update_password", user.ID, user.ID)
	writeJSON(w, http.StatusOK, domain.Message{Message: "Password updated successfully"})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request, actor domain.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if id != actor.ID && !actor.IsSuperuser {
		writeError(w, http.StatusForbidden, "The user doesn't have enough privileges")
		return
	}

	user, err := s.users.GetUserByID(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request, actor domain.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req domain.UserUpdate
	if !s.decodeBody(w, r, &req) {
		return
	}

	hashed := ""
	if req.Password != nil {
		h, err := auth.HashPassword(*req.Password)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		hashed = h
	}

	user, err := s.users.UpdateUser(r.Context(), id, req, hashed)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.publishAudit(r, "user", "update", id, actor.ID)
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, actor domain.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if id == actor.ID {
		writeError(w, http.StatusForbidden, "Superusers are not allowed to delete themselves")
		return
	}

	if err := s.users.DeleteUser(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.publishAudit(r, "user", "delete", id, actor.ID)
	writeJSON(w, http.StatusOK, domain.Message{Message: "User deleted successfully"})
}

// publishAudit records an entity mutation when auditing is enabled. The
// request context may be cancelled as soon as the response is written, so the
// event is published on a detached context.
func (s *Server) publishAudit(r *http.Request, entity, action string, entityID, actorID uuid.UUID) {
	if s.audit == nil {
		return
	}
	s.audit.Publish(context.WithoutCancel(r.Context()), kafka.AuditEvent{
		Entity:     entity,
		Action:     action,
		EntityID:   entityID.String(),
		ActorID:    actorID.String(),
		OccurredAt: time.Now().UTC(),
	})
}

// pathID parses the {id} path segment as a UUID.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// pagination reads the skip/limit query parameters with their defaults.
func pagination(r *http.Request) (skip, limit int) {
	skip, limit = 0, 100
	if v := r.URL.Query().Get("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			skip = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			limit = n
		}
	}
	return skip, limit
}
