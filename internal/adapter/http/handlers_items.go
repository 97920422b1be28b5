package http

import (
	"net/http"

	"github.com/couchcryptid/weather-gateway/internal/domain"
)

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request, user domain.User) {
	skip, limit := pagination(r)

	var (
		page domain.ItemsPage
		err  error
	)
	if user.IsSuperuser {
		page, err = s.items.ListItems(r.Context(), skip, limit)
	} else {
		page, err = s.items.ListItemsByOwner(r.Context(), user.ID, skip, limit)
	}
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req domain.ItemCreate
	if !s.decodeBody(w, r, &req) {
		return
	}

	item, err := s.items.CreateItem(r.Context(), user.ID, req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.publishAudit(r, "item", "create", item.ID, user.ID)
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request, user domain.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	item, err := s.items.GetItemByID(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if item.OwnerID != user.ID && !user.IsSuperuser {
		writeError(w, http.StatusForbidden, "Not enough permissions")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request, user domain.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	item, err := s.items.GetItemByID(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if item.OwnerID != user.ID && !user.IsSuperuser {
		writeError(w, http.StatusForbidden, "Not enough permissions")
		return
	}

	var req domain.ItemUpdate
	if !s.decodeBody(w, r, &req) {
		return
	}

	updated, err := s.items.UpdateItem(r.Context(), id, req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.publishAudit(r, "item", "update", id, user.ID)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request, user domain.User) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	item, err := s.items.GetItemByID(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if item.OwnerID != user.ID && !user.IsSuperuser {
		writeError(w, http.StatusForbidden, "Not enough permissions")
		return
	}

	if err := s.items.DeleteItem(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.publishAudit(r, "item", "delete", id, user.ID)
	writeJSON(w, http.StatusOK, domain.Message{Message: "Item deleted successfully"})
}
