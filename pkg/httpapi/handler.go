// Package httpapi exposes the service operations as a JSON API for the
// calendar frontend.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/koolBEANS829/jls-lawn-tracker/pkg/core"
	"github.com/koolBEANS829/jls-lawn-tracker/pkg/recur"
	"github.com/koolBEANS829/jls-lawn-tracker/pkg/scope"
	"github.com/koolBEANS829/jls-lawn-tracker/pkg/service"
)

// CreateRequest is the POST /jobs payload.
type CreateRequest struct {
	Title       string    `json:"title"`
	StartTime   time.Time `json:"start_time"`
	JobType     string    `json:"job_type"`
	Notes       string    `json:"notes,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	Address     string    `json:"address,omitempty"`
	ClientPhone string    `json:"client_phone,omitempty"`

	Recurring bool   `json:"recurring,omitempty"`
	Frequency string `json:"frequency,omitempty"`
	Count     int    `json:"count,omitempty"`
}

// EditRequest is the PATCH /jobs/{id} payload. It deliberately covers only
// the caller-editable fields; sync-owned fields like the calendar event id
// cannot be set through the API.
type EditRequest struct {
	Title       *string       `json:"title,omitempty"`
	JobType     *core.JobType `json:"job_type,omitempty"`
	Notes       *string       `json:"notes,omitempty"`
	Price       *float64      `json:"price,omitempty"`
	Address     *string       `json:"address,omitempty"`
	ClientPhone *string       `json:"client_phone,omitempty"`
	StartTime   *time.Time    `json:"start_time,omitempty"`
}

func (r EditRequest) patch() core.Patch {
	return core.Patch{
		Title:       r.Title,
		JobType:     r.JobType,
		Notes:       r.Notes,
		Price:       r.Price,
		Address:     r.Address,
		ClientPhone: r.ClientPhone,
		StartTime:   r.StartTime,
	}
}

// ScopesResponse lists the breadths a pending action may choose from.
type ScopesResponse struct {
	NeedsChoice bool          `json:"needs_choice"`
	Scopes      []scope.Scope `json:"scopes,omitempty"`
}

// AffectedResponse reports how many rows a scoped mutation touched.
type AffectedResponse struct {
	Affected int64 `json:"affected"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler creates an http.Handler over the service.
func Handler(svc *service.Service, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &api{svc: svc, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /jobs", h.listJobs)
	mux.HandleFunc("POST /jobs", h.createJob)
	mux.HandleFunc("GET /jobs/{id}/scopes", h.jobScopes)
	mux.HandleFunc("POST /jobs/{id}/done", h.markDone)
	mux.HandleFunc("POST /jobs/{id}/cancel", h.cancelJob)
	mux.HandleFunc("PATCH /jobs/{id}", h.editJob)
	mux.HandleFunc("DELETE /jobs/{id}", h.deleteJob)
	return mux
}

type api struct {
	svc    *service.Service
	logger *slog.Logger
}

func (h *api) listJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, jobs)
}

func (h *api) createJob(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	created, err := h.svc.CreateJob(r.Context(), recur.Request{
		Template: core.Job{
			Title:       req.Title,
			StartTime:   req.StartTime,
			JobType:     core.JobType(req.JobType),
			Notes:       req.Notes,
			Price:       req.Price,
			Address:     req.Address,
			ClientPhone: req.ClientPhone,
		},
		Recurring: req.Recurring,
		Frequency: core.Frequency(req.Frequency),
		Count:     req.Count,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *api) jobScopes(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.BeginAction(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ScopesResponse{
		NeedsChoice: res.NeedsChoice(),
		Scopes:      res.Choices(),
	})
}

func (h *api) markDone(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.MarkDone(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, AffectedResponse{Affected: 1})
}

func (h *api) cancelJob(w http.ResponseWriter, r *http.Request) {
	affected, err := h.svc.CancelJob(r.Context(), r.PathValue("id"), scopeParam(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, AffectedResponse{Affected: affected})
}

func (h *api) editJob(w http.ResponseWriter, r *http.Request) {
	var req EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	affected, err := h.svc.EditJob(r.Context(), r.PathValue("id"), scopeParam(r), req.patch())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, AffectedResponse{Affected: affected})
}

func (h *api) deleteJob(w http.ResponseWriter, r *http.Request) {
	affected, err := h.svc.DeleteJob(r.Context(), r.PathValue("id"), scopeParam(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, AffectedResponse{Affected: affected})
}

func scopeParam(r *http.Request) scope.Scope {
	return scope.Scope(r.URL.Query().Get("scope"))
}

func (h *api) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *api) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrJobNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrTerminalStatus):
		status = http.StatusConflict
	case errors.Is(err, core.ErrScopeNotChosen) || errors.Is(err, core.ErrScopeAlreadySet),
		errors.Is(err, core.ErrEmptyPatch), errors.Is(err, core.ErrStatusImmutable),
		isValidationError(err):
		status = http.StatusBadRequest
	}

	var remoteErr *core.RemoteError
	if errors.As(err, &remoteErr) {
		status = http.StatusBadGateway
	}

	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func isValidationError(err error) bool {
	for _, v := range []error{
		core.ErrMissingTitle, core.ErrMissingStartTime, core.ErrInvalidJobType,
		core.ErrInvalidFrequency, core.ErrTooFewOccurrences, core.ErrTooManyOccurrences,
		core.ErrInvalidPrice, core.ErrTitleTooLong, core.ErrNotesTooLong, core.ErrInvalidPhone,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
