package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/kalambet/grokvibe/internal/slackapp"
)

const maxRequestBodySize = 1 << 20 // 1MB

// SignatureVerifier decides whether a raw request body is authentic.
type SignatureVerifier interface {
	Verify(body []byte, timestamp, signature string) bool
}

// SlackSignature rejects requests whose Slack signature does not verify.
// The body is buffered and restored for the next handler.
func SlackSignature(v SignatureVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
			r.Body.Close()
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					httpError(w, http.StatusRequestEntityTooLarge, "request body too large")
					return
				}
				httpError(w, http.StatusBadRequest, "reading request body: %v", err)
				return
			}

			ts := r.Header.Get(slackapp.HeaderTimestamp)
			sig := r.Header.Get(slackapp.HeaderSignature)
			if !v.Verify(body, ts, sig) {
				hlog.FromRequest(r).Warn().Str("timestamp", ts).Msg("rejected request with invalid signature")
				httpError(w, http.StatusUnauthorized, "Invalid signature")
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}
