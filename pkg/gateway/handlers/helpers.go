// Package handlers holds the HTTP handlers for the gateway surface.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/insightlab/insightlab/pkg/core"
	"github.com/insightlab/insightlab/pkg/gateway/apierror"
	"github.com/insightlab/insightlab/pkg/gateway/mw"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	reqID, _ := mw.RequestIDFrom(r.Context())
	coreErr, status := apierror.FromError(err, reqID)
	writeJSON(w, status, apierror.Envelope{Error: coreErr})
}

// decodeJSON strictly decodes a bounded request body. Unknown fields
// and trailing data are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v any) error {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return core.NewInvalidRequestError("request body too large")
		}
		return core.NewInvalidRequestError("invalid request body: " + err.Error())
	}
	if dec.More() {
		return core.NewInvalidRequestError("request body must contain a single JSON object")
	}
	_, _ = io.Copy(io.Discard, r.Body)
	return nil
}

// pathInt parses a numeric path segment registered with r.PathValue.
func pathInt(r *http.Request, name string) (int, error) {
	raw := r.PathValue(name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, core.NewInvalidRequestErrorWithParam("must be a positive integer", name)
	}
	return id, nil
}
