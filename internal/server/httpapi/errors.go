package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/foldershare/internal/common"
)

const (
	msgNotFound          = "Not found"
	msgNotFoundOrExpired = "Not found or expired"
	msgInvalidContent    = "Invalid content type"
	msgInvalidPayload    = "Invalid payload structure"
	msgHMACMismatch      = "HMAC mismatch"
	msgRateLimited       = "Rate limit exceeded"
	msgDataMissing       = "Data missing"
	msgInternal          = "Internal server error"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", common.JSONContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// publishStatus maps a publish failure to the response sent to the client.
func publishStatus(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorInvalidPayload):
		return http.StatusBadRequest, msgInvalidPayload
	case errors.Is(err, common.ErrorIntegrityMismatch):
		return http.StatusBadRequest, msgHMACMismatch
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

func fetchStatus(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, msgNotFoundOrExpired
	case errors.Is(err, common.ErrorDataMissing):
		return http.StatusInternalServerError, msgDataMissing
	default:
		return http.StatusInternalServerError, msgInternal
	}
}
