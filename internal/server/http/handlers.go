package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/sundaram/internal/api"
	"github.com/dmitrijs2005/sundaram/internal/common"
	"github.com/dmitrijs2005/sundaram/internal/logging"
	"github.com/dmitrijs2005/sundaram/internal/server/dto"
	"github.com/dmitrijs2005/sundaram/internal/server/services"
)

// Handlers serves the JSON API on top of the services.
type Handlers struct {
	users   *services.UserService
	sieve   *services.SieveService
	history *services.HistoryService
	logger  logging.Logger
}

func NewHandlers(users *services.UserService, sieve *services.SieveService, history *services.HistoryService, logger logging.Logger) *Handlers {
	return &Handlers{users: users, sieve: sieve, history: history, logger: logger}
}

// decode reads a JSON body into v. An empty body leaves v at its zero value.
func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return common.Detail(common.ErrorBadRequest, "request body too large")
	}
	return common.Detail(common.ErrorBadRequest, "invalid JSON body")
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := decode(r, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	u, err := h.users.Register(r.Context(), req.Login, req.Email, req.Password)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.Session(u, api.MsgRegistered))
}

func (h *Handlers) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req api.AuthenticateRequest
	if err := decode(r, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	u, err := h.users.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.Session(u, api.MsgAuthenticated))
}

func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	var req api.GenerateRequest
	if err := decode(r, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	primes, err := h.sieve.Generate(r.Context(), userFromContext(r.Context()), req.Limit)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.Generate(primes, req.Limit))
}

func (h *Handlers) GetCurrent(w http.ResponseWriter, r *http.Request) {
	primes, params, err := h.sieve.Current(r.Context(), userFromContext(r.Context()))
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.Current(primes, params))
}

func (h *Handlers) DeleteCurrent(w http.ResponseWriter, r *http.Request) {
	if err := h.sieve.DeleteCurrent(r.Context(), userFromContext(r.Context())); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.DeleteCurrent())
}

func (h *Handlers) SaveParams(w http.ResponseWriter, r *http.Request) {
	var req api.SaveParamsRequest
	if err := decode(r, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	total, err := h.sieve.SaveParams(r.Context(), userFromContext(r.Context()), req.Name, req.Limit)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SaveParams(req.Name, total))
}

func (h *Handlers) ListSavedParams(w http.ResponseWriter, r *http.Request) {
	list, err := h.sieve.ListSaved(r.Context(), userFromContext(r.Context()))
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SavedParams(list))
}

func (h *Handlers) DeleteSavedParams(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	// chi matches against RawPath when the path needed escaping
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}
	remaining, err := h.sieve.DeleteSaved(r.Context(), userFromContext(r.Context()), name)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.DeleteSaved(name, remaining))
}

func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.history.List(r.Context(), userFromContext(r.Context()))
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.History(entries))
}

func (h *Handlers) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.history.Clear(r.Context(), userFromContext(r.Context())); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: api.MsgHistoryDeleted})
}

func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req api.ChangePasswordRequest
	if err := decode(r, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	u, err := h.users.ChangePassword(r.Context(), userFromContext(r.Context()), req.OldPassword, req.NewPassword)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ChangePassword(u))
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.PingResponse{Status: "ok"})
}
