package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/foldershare/internal/common"
	"github.com/dmitrijs2005/foldershare/internal/logging"
	"github.com/dmitrijs2005/foldershare/internal/server/ratelimit"
	"github.com/dmitrijs2005/foldershare/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// DefaultMaxBodyBytes bounds a publish body; a full folder of records
// stays well below it.
const DefaultMaxBodyBytes = 8 << 20

type ShareService interface {
	Publish(ctx context.Context, req *services.PublishRequest) (string, error)
	Fetch(ctx context.Context, id string) ([]byte, error)
}

type Handler struct {
	shares       ShareService
	limiter      ratelimit.Limiter
	log          logging.Logger
	maxBodyBytes int64
}

func NewHandler(shares ShareService, limiter ratelimit.Limiter, maxBodyBytes int64, log logging.Logger) *Handler {
	if limiter == nil {
		limiter = ratelimit.Noop{}
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Handler{
		shares:       shares,
		limiter:      limiter,
		log:          log.With("module", "httpapi"),
		maxBodyBytes: maxBodyBytes,
	}
}

type publishResponse struct {
	ID string `json:"id"`
}

// Publish handles POST /api/share/folder.
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !strings.Contains(r.Header.Get("Content-Type"), common.JSONContentType) {
		writeError(w, http.StatusUnsupportedMediaType, msgInvalidContent)
		return
	}

	if !h.limiter.Allow(ctx, clientIP(r)) {
		writeError(w, http.StatusTooManyRequests, msgRateLimited)
		return
	}

	req, err := h.decodePublish(w, r)
	if err != nil {
		h.log.Debug(ctx, "publish rejected", "error", err)
		writeError(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}

	id, err := h.shares.Publish(ctx, req)
	if err != nil {
		status, msg := publishStatus(err)
		if status >= http.StatusInternalServerError {
			h.log.Error(ctx, "publish failed", "error", err)
		} else {
			h.log.Debug(ctx, "publish rejected", "error", err)
		}
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, publishResponse{ID: id})
}

// decodePublish reads exactly one JSON object with no unknown fields.
func (h *Handler) decodePublish(w http.ResponseWriter, r *http.Request) (*services.PublishRequest, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	var req services.PublishRequest
	if err := dec.Decode(&req); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after request object")
	}
	return &req, nil
}

// Fetch handles GET /api/share/folder/{id}.
func (h *Handler) Fetch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.NotFound(w, r)
		return
	}

	body, err := h.shares.Fetch(r.Context(), id)
	if err != nil {
		status, msg := fetchStatus(err)
		if status >= http.StatusInternalServerError {
			h.log.Error(r.Context(), "fetch failed", "id", id, "error", err)
		}
		writeError(w, status, msg)
		return
	}

	w.Header().Set("Content-Type", common.JSONContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) NotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, msgNotFound)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
