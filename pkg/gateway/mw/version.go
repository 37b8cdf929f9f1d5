package mw

import (
	"net/http"
	"strings"

	"github.com/insightlab/insightlab/pkg/core"
)

const (
	apiVersionHeader    = "X-InsightLab-Version"
	supportedAPIVersion = "1"
)

// APIVersion rejects /v1 requests that pin an API version this build
// does not speak. Requests without the header pass through.
func APIVersion(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || !isV1Path(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		for _, value := range r.Header.Values(apiVersionHeader) {
			for _, part := range strings.Split(value, ",") {
				version := strings.TrimSpace(part)
				if version == "" || version == supportedAPIVersion {
					continue
				}
				reqID, _ := RequestIDFrom(r.Context())
				writeJSONError(w, http.StatusBadRequest, &core.Error{
					Type:      core.ErrInvalidRequest,
					Message:   "unsupported API version",
					Param:     apiVersionHeader,
					Code:      "unsupported_version",
					RequestID: reqID,
				})
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func isV1Path(path string) bool {
	return path == "/v1" || strings.HasPrefix(path, "/v1/")
}
