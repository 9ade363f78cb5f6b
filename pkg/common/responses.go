package common

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	pkgerrors "peoplenet/pkg/errors"
)

// DefaultMaxBodyBytes bounds JSON request bodies
const DefaultMaxBodyBytes int64 = 1 << 20

// APIResponse is the success envelope
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Meta    *MetaInfo `json:"meta,omitempty"`
}

// MetaInfo carries pagination and other response metadata
type MetaInfo struct {
	Pagination *PaginationInfo `json:"pagination,omitempty"`
}

// RespondJSON sends data wrapped in the success envelope
func RespondJSON(w http.ResponseWriter, status int, data any) {
	RespondWithMeta(w, status, data, nil)
}

// RespondWithMeta sends data and metadata in the success envelope. The body
// is encoded before the status is written so an encoding failure becomes a 500.
func RespondWithMeta(w http.ResponseWriter, status int, data any, meta *MetaInfo) {
	body, err := json.Marshal(APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
		Meta:    meta,
	})
	if err != nil {
		zap.L().Error("Failed to encode response", zap.Int("status", status), zap.Error(err))
		body, _ = json.Marshal(pkgerrors.ErrorResponse{
			Error:   true,
			Type:    string(pkgerrors.ErrorTypeInternal),
			Message: "failed to encode response",
		})
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// ParseJSONBody decodes a size-limited JSON body, rejecting unknown fields
func ParseJSONBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, DefaultMaxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return pkgerrors.NewValidationError("invalid request body: " + err.Error())
	}
	return nil
}
