package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gastos/internal/log"
	"gastos/internal/services"
)

// resourceHandlers serves the five CRUD routes of one entity.
type resourceHandlers[T any, P services.Payload] struct {
	path string
	res  *services.Resource[T, P]
	idOf func(T) int64
}

func mountResource[T any, P services.Payload](r chi.Router, path string, res *services.Resource[T, P], idOf func(T) int64) {
	h := &resourceHandlers[T, P]{path: path, res: res, idOf: idOf}
	r.Route(path, func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *resourceHandlers[T, P]) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.res.List(r.Context())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	OK(items).Write(w)
}

func (h *resourceHandlers[T, P]) get(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		BadRequest(err.Error()).Write(w)
		return
	}
	item, err := h.res.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	OK(item).Write(w)
}

func (h *resourceHandlers[T, P]) create(w http.ResponseWriter, r *http.Request) {
	var in P
	if err := DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	created, err := h.res.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	Created(fmt.Sprintf("/api%s/%d", h.path, h.idOf(created)), created).Write(w)
}

func (h *resourceHandlers[T, P]) update(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		BadRequest(err.Error()).Write(w)
		return
	}
	var in P
	if err := DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	if bodyID := in.BodyID(); bodyID != nil && *bodyID != id {
		BadRequest(fmt.Sprintf("body id %d does not match route id %d", *bodyID, id)).Write(w)
		return
	}
	if err := h.res.Update(r.Context(), id, in); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	NoContent().Write(w)
}

func (h *resourceHandlers[T, P]) delete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		BadRequest(err.Error()).Write(w)
		return
	}
	if err := h.res.Delete(r.Context(), id); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	NoContent().Write(w)
}
