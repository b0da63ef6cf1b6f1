package table

import (
	"context"
	"log/slog"

	"github.com/mesa-rpg/mesa/internal/app/logger/logging"
	"github.com/mesa-rpg/mesa/internal/metrics"
	"github.com/mesa-rpg/mesa/internal/wire"
)

// trackConnection records a freshly accepted, still unassigned connection.
func (c *Coordinator) trackConnection(session *UserSession) {
	c.mu.Lock()
	c.conns[session.ConnID] = session
	c.mu.Unlock()

	metrics.ActiveConnections.Inc()
	slog.Info("Connection accepted", "connId", session.ConnID, "username", session.Claims.Username)
}

// registerGM assigns the game master role and takes over the GM slot.
// A previous occupant is silently replaced; it stays connected as a stale,
// unaddressed connection until it disconnects on its own.
func (c *Coordinator) registerGM(session *UserSession) {
	c.mu.Lock()
	session.Role = RoleGM
	c.gm = session
	c.mu.Unlock()

	slog.Info("Game master registered", "connId", session.ConnID, "username", session.Claims.Username)
}

// registerPlayer assigns the player role and claims the directory entry for
// the player identifier, displacing any prior connection registered under it.
func (c *Coordinator) registerPlayer(session *UserSession, playerID, nome string) {
	c.mu.Lock()
	session.Role = RolePlayer
	session.PlayerID = playerID
	session.Nome = nome
	c.players[playerID] = session
	c.mu.Unlock()

	slog.Info("Player registered", logging.PlayerID(playerID), "nome", nome, "connId", session.ConnID)
}

// Unregister is called when a connection goes away. It clears whatever the
// connection held (GM slot, player directory entry) and cascades into the
// session table.
func (c *Coordinator) Unregister(session *UserSession) {
	if session.Websocket != nil {
		_ = session.Websocket.CloseNow()
	}

	c.mu.Lock()
	delete(c.conns, session.ConnID)

	wasGM := c.gm == session
	if wasGM {
		c.gm = nil
	}

	wasPlayer := session.Role == RolePlayer && c.players[session.PlayerID] == session
	if wasPlayer {
		delete(c.players, session.PlayerID)
	}
	c.mu.Unlock()

	metrics.ActiveConnections.Dec()

	ctx := context.Background()

	if session.Role == RoleGM {
		// The slot clear above is identity-gated, but sessions are keyed to
		// the owning connection: a GM displaced from the slot still owns the
		// sessions it started, and those end when it goes away.
		slog.Info("Game master disconnected", "connId", session.ConnID, "heldSlot", wasGM)
		c.endSessionsOwnedBy(ctx, session)
		return
	}

	if session.Role == RolePlayer {
		slog.Info("Player disconnected", logging.PlayerID(session.PlayerID), "nome", session.Nome)

		if wasPlayer {
			c.SendToGM(ctx, wire.PlayerDisconnected, wire.PlayerPresence{
				ID:   session.PlayerID,
				Nome: session.Nome,
			})
		}
		c.removePlayerFromSessions(ctx, session)
		return
	}

	slog.Debug("Unassigned connection closed", "connId", session.ConnID)
}

// gmSession returns the current occupant of the GM slot, if any.
func (c *Coordinator) gmSession() (*UserSession, bool) {
	c.mu.RLock()
	gm := c.gm
	c.mu.RUnlock()
	return gm, gm != nil
}

// getPlayer is a thread-safe lookup in the player directory.
func (c *Coordinator) getPlayer(playerID string) (*UserSession, bool) {
	c.mu.RLock()
	session, ok := c.players[playerID]
	c.mu.RUnlock()
	return session, ok
}

// forEachPlayer iterates over the player directory.
func (c *Coordinator) forEachPlayer(f func(session *UserSession) bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, session := range c.players {
		if next := f(session); !next {
			return
		}
	}
}

// forEachConn iterates over every live connection, the GM and unassigned
// connections included.
func (c *Coordinator) forEachConn(f func(session *UserSession) bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, session := range c.conns {
		if next := f(session); !next {
			return
		}
	}
}
