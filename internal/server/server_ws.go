package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	slogcontext "github.com/veqryn/slog-context"

	"github.com/koltyakov/aocd/internal/domain"
)

const wsReadLimit = 4 * 1024

// wsUpgrader leaves CheckOrigin nil, so browsers may only connect from the
// server's own host. Non-browser clients send no Origin and are accepted.
var wsUpgrader = websocket.Upgrader{}

const wsCloseWait = time.Second

// handleWebSocket answers one SolveRequest frame with one SolveResponse
// frame, in order, until the peer closes.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	logger := slogcontext.FromCtx(r.Context())
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	s.trackWS(conn)
	defer func() {
		s.untrackWS(conn)
		_ = conn.Close()
	}()
	conn.SetReadLimit(wsReadLimit)

	ctx := r.Context()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read error", "err", err)
			}
			return
		}

		var req domain.SolveRequest
		if err := json.Unmarshal(data, &req); err != nil {
			if err := conn.WriteJSON(domain.SolveResponse{Error: "invalid json", ErrorCode: codeBadRequest}); err != nil {
				return
			}
			continue
		}

		resp := domain.SolveResponse{Year: req.Year, Day: req.Day}
		key := domain.PuzzleKey{Year: req.Year, Day: req.Day}
		if !key.Valid() {
			resp.Error, resp.ErrorCode = "invalid puzzle key", codeBadRequest
		} else if answer, err := s.deps.Resolver.Resolve(ctx, key); err != nil {
			_, resp.ErrorCode, resp.Error = statusForError(err)
			logger.Debug("websocket solve failed", "year", req.Year, "day", req.Day, "err", err)
		} else {
			resp.Answer = answer
		}
		if err := conn.WriteJSON(resp); err != nil {
			logger.Warn("websocket write error", "err", err)
			return
		}
	}
}

func (s *Server) trackWS(conn *websocket.Conn) {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	if s.wsConns == nil {
		s.wsConns = map[*websocket.Conn]struct{}{}
	}
	s.wsConns[conn] = struct{}{}
}

func (s *Server) untrackWS(conn *websocket.Conn) {
	s.wsMu.Lock()
	delete(s.wsConns, conn)
	s.wsMu.Unlock()
}

// closeWebSockets sends a going-away close frame to every open websocket
// and closes it. http.Server.Shutdown does not touch hijacked connections,
// so this runs as a shutdown hook.
func (s *Server) closeWebSockets() {
	s.wsMu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.wsConns))
	for c := range s.wsConns {
		conns = append(conns, c)
	}
	s.wsMu.Unlock()

	deadline := time.Now().Add(wsCloseWait)
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, c := range conns {
		_ = c.WriteControl(websocket.CloseMessage, msg, deadline)
		_ = c.Close()
	}
}

func (s *Server) openWebSockets() int {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	return len(s.wsConns)
}
