package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/eventmanager/server/internal/api/pagination"
	"github.com/eventmanager/server/internal/api/problem"
	"github.com/eventmanager/server/internal/domain/events"
	"github.com/eventmanager/server/internal/metrics"
)

// EventsHandler serves the event CRUD endpoints.
type EventsHandler struct {
	Service  *events.Service
	Env      string
	validate *validator.Validate
}

func NewEventsHandler(service *events.Service, env string) *EventsHandler {
	return &EventsHandler{Service: service, Env: env, validate: validator.New()}
}

type eventRequest struct {
	Name     string  `json:"name" validate:"required"`
	Location string  `json:"location" validate:"required,max=100"`
	Country  *string `json:"country"`
	Capacity *int32  `json:"capacity" validate:"omitempty,gt=0"`
}

// eventUpdateRequest carries the target id in the body for PUT /api/event.
type eventUpdateRequest struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name" validate:"required"`
	Location string  `json:"location" validate:"required,max=100"`
	Country  *string `json:"country"`
	Capacity *int32  `json:"capacity" validate:"omitempty,gt=0"`
}

type eventResponse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Country  *string `json:"country"`
	Capacity *int32  `json:"capacity"`
}

func toEventResponse(e *events.Event) eventResponse {
	return eventResponse{
		ID:       e.ID,
		Name:     e.Name,
		Location: e.Location,
		Country:  e.Country,
		Capacity: e.Capacity,
	}
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		problem.ServerError(w, r, nil, h.Env)
		return
	}

	id, ok := h.eventID(w, r)
	if !ok {
		return
	}

	event, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			problem.NotFound(w, r, fmt.Errorf("Event with ID %d not found.", id), h.Env)
			return
		}
		problem.ServerError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, toEventResponse(event))
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		problem.ServerError(w, r, nil, h.Env)
		return
	}

	query, err := pagination.ParseQuery(r.URL.Query())
	if err != nil {
		problem.Validation(w, r, err, h.Env)
		return
	}

	result, err := h.Service.List(r.Context(), query)
	if err != nil {
		var sortErr events.SortError
		if errors.As(err, &sortErr) {
			problem.Validation(w, r, sortErr, h.Env)
			return
		}
		problem.ServerError(w, r, err, h.Env)
		return
	}

	items := make([]eventResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, toEventResponse(&result.Items[i]))
	}

	writeJSON(w, http.StatusOK, pagination.PagedResult[eventResponse]{
		Items:      items,
		TotalCount: result.TotalCount,
		Page:       result.Page,
		PageSize:   result.PageSize,
	})
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		problem.ServerError(w, r, nil, h.Env)
		return
	}

	input, ok := h.decodeEvent(w, r)
	if !ok {
		return
	}

	created, err := h.Service.Create(r.Context(), events.Event{
		Name:     input.Name,
		Location: input.Location,
		Country:  input.Country,
		Capacity: input.Capacity,
	})
	if err != nil {
		problem.ServerError(w, r, err, h.Env)
		return
	}

	metrics.EventOperationsTotal.WithLabelValues("create").Inc()
	w.Header().Set("Location", fmt.Sprintf("/api/event/%d", created.ID))
	writeJSON(w, http.StatusCreated, toEventResponse(created))
}

// Update replaces the event addressed by the path id.
func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		problem.ServerError(w, r, nil, h.Env)
		return
	}

	id, ok := h.eventID(w, r)
	if !ok {
		return
	}
	input, ok := h.decodeEvent(w, r)
	if !ok {
		return
	}

	h.replaceEvent(w, r, events.Event{
		ID:       id,
		Name:     input.Name,
		Location: input.Location,
		Country:  input.Country,
		Capacity: input.Capacity,
	})
}

// UpdateByBody replaces the event whose id is carried in the request body,
// for clients addressing PUT /api/event with the full record.
func (h *EventsHandler) UpdateByBody(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		problem.ServerError(w, r, nil, h.Env)
		return
	}

	var req eventUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Validation(w, r, err, h.Env)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		problem.Validation(w, r, err, h.Env)
		return
	}

	h.replaceEvent(w, r, events.Event{
		ID:       req.ID,
		Name:     req.Name,
		Location: req.Location,
		Country:  req.Country,
		Capacity: req.Capacity,
	})
}

func (h *EventsHandler) replaceEvent(w http.ResponseWriter, r *http.Request, event events.Event) {
	updated, err := h.Service.Update(r.Context(), event)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			problem.NotFound(w, r, fmt.Errorf("Event with ID %d not found.", event.ID), h.Env)
			return
		}
		problem.ServerError(w, r, err, h.Env)
		return
	}

	metrics.EventOperationsTotal.WithLabelValues("update").Inc()
	writeJSON(w, http.StatusOK, toEventResponse(updated))
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		problem.ServerError(w, r, nil, h.Env)
		return
	}

	id, ok := h.eventID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, events.ErrNotFound) {
			problem.NotFound(w, r, fmt.Errorf("Event with ID %d not found.", id), h.Env)
			return
		}
		problem.ServerError(w, r, err, h.Env)
		return
	}

	metrics.EventOperationsTotal.WithLabelValues("delete").Inc()
	w.WriteHeader(http.StatusNoContent)
}

// eventID parses the path id. Any well-formed integer passes through; ids
// that match no row, zero and negatives included, surface as a 404 miss.
func (h *EventsHandler) eventID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		problem.Validation(w, r, fmt.Errorf("invalid event id %q", raw), h.Env)
		return 0, false
	}
	return id, true
}

func (h *EventsHandler) decodeEvent(w http.ResponseWriter, r *http.Request) (eventRequest, bool) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Validation(w, r, err, h.Env)
		return eventRequest{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		problem.Validation(w, r, err, h.Env)
		return eventRequest{}, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
