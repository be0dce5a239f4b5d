package http

import (
	"errors"
	"net/http"

	"inegidash/internal/core"
)

// errorStatus is the single mapping from pipeline error kinds to HTTP
// statuses. The API contract promises a 400-class response for every
// pipeline failure, so the kinds currently collapse onto one status, but
// the mapping stays explicit so both presentation adapters share it.
func errorStatus(err error) int {
	var perr *core.Error
	if !errors.As(err, &perr) {
		return http.StatusBadRequest
	}
	switch perr.Kind {
	case core.KindConfiguration,
		core.KindNetwork,
		core.KindUpstream,
		core.KindDecode,
		core.KindSchema:
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}

// writeErrorJSON converts any pipeline error into the structured error
// document. Clients never see a stack trace or a partial series.
func writeErrorJSON(w http.ResponseWriter, err error) {
	writeJSON(w, errorStatus(err), map[string]string{"error": err.Error()})
}
