package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/mesa-rpg/mesa/internal/app/logger/logging"
	"github.com/mesa-rpg/mesa/internal/metrics"
	"github.com/mesa-rpg/mesa/internal/table"
	"github.com/mesa-rpg/mesa/internal/wire"
)

// HandleWebSocket gates the connection on a valid bearer credential and
// hands it over to the coordinator. A rejected credential never touches the
// coordinator state.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	claims, err := s.Verifier.Verify(bearerToken(r))
	if err != nil {
		metrics.AuthRejections.Inc()
		slog.Warn("Rejected a websocket connection", logging.Error(err))
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols: []string{wire.SupportedRealm},
	})
	if err != nil {
		metrics.ConnectionErrs.Inc()
		slog.Error("Could not accept the connection",
			logging.Error(err),
			"origin", r.Header.Get("Origin"),
			"username", claims.Username)
		return
	}
	defer conn.CloseNow()

	if conn.Subprotocol() != wire.SupportedRealm {
		_ = conn.Close(websocket.StatusPolicyViolation, "client must speak the right subprotocol")
		return
	}

	session := table.NewUserSession(uuid.NewString(), claims, conn)
	if err := s.Coordinator.HandleSession(r.Context(), session); err != nil {
		return
	}
}

// bearerToken extracts the credential from the Authorization header, or
// from the token query parameter for browser clients which cannot set
// headers on a websocket dial.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
