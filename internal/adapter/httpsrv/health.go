package httpsrv

import (
	"io"
	"net/http"
)

// healthHandler reports that the process is serving, not the state of the swept hosts.
func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "OK")
	}
}
