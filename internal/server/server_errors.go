package server

import (
	"errors"
	"net/http"

	"github.com/koltyakov/aocd/internal/domain"
)

const (
	codeBadRequest          = "bad_request"
	codeUnsupported         = "unsupported"
	codeBadUpstream         = "bad_upstream"
	codeInternalUnavailable = "internal_unavailable"
)

// statusForError maps a resolution failure to its HTTP status, a stable
// error code, and a client-safe message. Upstream bodies and credentials
// never reach the message.
func statusForError(err error) (int, string, string) {
	switch domain.KindOf(err) {
	case domain.KindUnsupported:
		if errors.Is(err, domain.ErrInvalidPuzzleKey) {
			return http.StatusBadRequest, codeBadRequest, "invalid puzzle key"
		}
		return http.StatusNotFound, codeUnsupported, "unsupported puzzle"
	case domain.KindUpstream:
		return http.StatusBadGateway, codeBadUpstream, "upstream fetch failed"
	default:
		return http.StatusInternalServerError, codeInternalUnavailable, "internal error"
	}
}
