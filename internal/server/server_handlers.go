package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	slogcontext "github.com/veqryn/slog-context"

	"github.com/koltyakov/aocd/internal/auth"
	"github.com/koltyakov/aocd/internal/domain"
)

const maxSessionBodyBytes = 16 * 1024

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	key, ok := puzzleKeyFromVars(w, r)
	if !ok {
		return
	}
	answer, err := s.deps.Resolver.Resolve(r.Context(), key)
	if err != nil {
		s.writeResolveError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, answer)
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	key, ok := puzzleKeyFromVars(w, r)
	if !ok {
		return
	}
	text, err := s.deps.Resolver.Input(r.Context(), key)
	if err != nil {
		s.writeResolveError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, text)
}

func (s *Server) handleListPuzzles(w http.ResponseWriter, _ *http.Request) {
	keys := s.deps.Puzzles()
	out := make([]domain.PuzzleInfo, 0, len(keys))
	for _, k := range keys {
		out = append(out, domain.PuzzleInfo{Year: k.Year, Day: k.Day})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRegisterSession(w http.ResponseWriter, r *http.Request) {
	if !s.registerKV.Verify(auth.BearerToken(r)) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req domain.SessionRequest
	if err := decodeJSONBody(w, r, maxSessionBodyBytes, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || strings.TrimSpace(req.Val) == "" {
		http.Error(w, "username and val are required", http.StatusBadRequest)
		return
	}

	logger := slogcontext.FromCtx(r.Context())
	cred, err := s.deps.Store.InsertSession(r.Context(), req.Username, req.Val)
	if err != nil {
		logger.Error("failed to store session credential", "username", req.Username, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	logger.Info("session credential registered", "username", cred.Username, "credential_id", cred.ID)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Store.Ping(r.Context()); err != nil {
		slogcontext.FromCtx(r.Context()).Warn("readiness check failed", "err", err)
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) writeResolveError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := statusForError(err)
	logger := slogcontext.FromCtx(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("puzzle resolution failed", "kind", domain.KindOf(err).String(), "err", err)
	} else {
		logger.Debug("puzzle resolution rejected", "kind", domain.KindOf(err).String(), "err", err)
	}
	writeJSON(w, status, domain.ErrorResponse{Error: msg, ErrorCode: code})
}

// puzzleKeyFromVars parses the routed year and day. It writes a 400 and
// returns false when either is zero or does not fit in 32 bits.
func puzzleKeyFromVars(w http.ResponseWriter, r *http.Request) (domain.PuzzleKey, bool) {
	vars := mux.Vars(r)
	key, err := parsePuzzleKey(vars["year"], vars["day"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, domain.ErrorResponse{Error: err.Error(), ErrorCode: codeBadRequest})
		return domain.PuzzleKey{}, false
	}
	return key, true
}

func parsePuzzleKey(year, day string) (domain.PuzzleKey, error) {
	y, err := strconv.ParseUint(year, 10, 32)
	if err != nil {
		return domain.PuzzleKey{}, errors.New("invalid year")
	}
	d, err := strconv.ParseUint(day, 10, 32)
	if err != nil {
		return domain.PuzzleKey{}, errors.New("invalid day")
	}
	key := domain.PuzzleKey{Year: uint32(y), Day: uint32(d)}
	if !key.Valid() {
		return domain.PuzzleKey{}, domain.ErrInvalidPuzzleKey
	}
	return key, nil
}
