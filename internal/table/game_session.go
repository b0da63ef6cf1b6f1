package table

import (
	"context"
	"log/slog"
	"time"

	"github.com/mesa-rpg/mesa/internal/app/logger/logging"
	"github.com/mesa-rpg/mesa/internal/metrics"
	"github.com/mesa-rpg/mesa/internal/wire"
)

// StatusActive is the only modeled state of a running play session.
const StatusActive = "ativa"

// SessionPlayer is one joined participant of an active play session.
type SessionPlayer struct {
	ConnID   string    `json:"socketId"`
	PlayerID string    `json:"playerId"`
	Nome     string    `json:"nome"`
	JoinedAt time.Time `json:"conectadoEm"`
}

// GameSession is the live, in-memory record of one campaign's active play
// session: who owns it and who has joined. At most one exists per campaign
// identifier.
type GameSession struct {
	CampaignID   string          `json:"campaignId"`
	CampaignName string          `json:"campanha"`
	OwnerConnID  string          `json:"mestre"`
	Players      []SessionPlayer `json:"jogadores"`
	StartedAt    time.Time       `json:"iniciadaEm"`
	Status       string          `json:"status"`
}

// StartSession activates a play session for the campaign. An already active
// session for the same campaign is replaced and its joined players are
// discarded.
func (c *Coordinator) StartSession(campaignID, campaignName string, owner *UserSession) *GameSession {
	session := &GameSession{
		CampaignID:   campaignID,
		CampaignName: campaignName,
		OwnerConnID:  owner.ConnID,
		Players:      []SessionPlayer{},
		StartedAt:    c.clock().In(time.UTC),
		Status:       StatusActive,
	}

	c.mu.Lock()
	c.sessions[campaignID] = session
	active := len(c.sessions)
	c.mu.Unlock()

	metrics.GameSessionsStarted.Inc()
	metrics.ActiveGameSessions.Set(float64(active))
	slog.Info("Session started", logging.CampaignID(campaignID), "campaignName", campaignName, "owner", owner.ConnID)
	return session
}

// JoinSession appends a player to the campaign's active session and tells
// the owning GM connection the new head count. Joining a campaign with no
// active session is a silent no-op.
func (c *Coordinator) JoinSession(ctx context.Context, campaignID, playerID, nome string, conn *UserSession) {
	c.mu.Lock()
	session, ok := c.sessions[campaignID]
	if !ok {
		c.mu.Unlock()
		slog.Debug("Join for an inactive campaign dropped", logging.CampaignID(campaignID), logging.PlayerID(playerID))
		return
	}
	session.Players = append(session.Players, SessionPlayer{
		ConnID:   conn.ConnID,
		PlayerID: playerID,
		Nome:     nome,
		JoinedAt: c.clock().In(time.UTC),
	})
	owner, total := c.conns[session.OwnerConnID], len(session.Players)
	c.mu.Unlock()

	if owner != nil {
		owner.SendEvent(ctx, wire.SessionJoined, wire.SessionJoinedPayload{
			PlayerID:       playerID,
			Nome:           nome,
			TotalJogadores: total,
		})
	}
}

// EndSession deactivates the campaign's session and tells every other
// connection. Ending a campaign with no active session is a silent no-op.
func (c *Coordinator) EndSession(ctx context.Context, campaignID string, by *UserSession) {
	c.mu.Lock()
	_, ok := c.sessions[campaignID]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.sessions, campaignID)
	active := len(c.sessions)
	c.mu.Unlock()

	metrics.ActiveGameSessions.Set(float64(active))
	slog.Info("Session ended", logging.CampaignID(campaignID))

	c.BroadcastAll(ctx, wire.SessionEnded, wire.SessionEndedPayload{
		CampaignID: campaignID,
		Motivo:     wire.ReasonEndedByGM,
	}, by)
}

// endSessionsOwnedBy ends every session owned by a disconnecting GM
// connection, each with a "game master disconnected" notice.
func (c *Coordinator) endSessionsOwnedBy(ctx context.Context, owner *UserSession) {
	c.mu.Lock()
	var ended []string
	for campaignID, session := range c.sessions {
		if session.OwnerConnID == owner.ConnID {
			ended = append(ended, campaignID)
			delete(c.sessions, campaignID)
		}
	}
	active := len(c.sessions)
	c.mu.Unlock()

	metrics.ActiveGameSessions.Set(float64(active))

	for _, campaignID := range ended {
		slog.Info("Session ended by GM disconnect", logging.CampaignID(campaignID))
		c.BroadcastAll(ctx, wire.SessionEnded, wire.SessionEndedPayload{
			CampaignID: campaignID,
			Motivo:     wire.ReasonGMDisconnected,
		}, owner)
	}
}

// removePlayerFromSessions scrubs a disconnecting player connection from
// every session's joined list and tells each owning GM the new head count.
func (c *Coordinator) removePlayerFromSessions(ctx context.Context, conn *UserSession) {
	type notice struct {
		owner *UserSession
		total int
	}

	c.mu.Lock()
	var notices []notice
	for _, session := range c.sessions {
		kept := session.Players[:0]
		removed := false
		for _, p := range session.Players {
			if p.ConnID == conn.ConnID {
				removed = true
				continue
			}
			kept = append(kept, p)
		}
		session.Players = kept
		if removed {
			if owner := c.conns[session.OwnerConnID]; owner != nil {
				notices = append(notices, notice{owner: owner, total: len(session.Players)})
			}
		}
	}
	c.mu.Unlock()

	for _, n := range notices {
		n.owner.SendEvent(ctx, wire.SessionPlayerLeft, wire.SessionPlayerLeftPayload{
			PlayerID:       conn.PlayerID,
			Nome:           conn.Nome,
			TotalJogadores: n.total,
		})
	}
}

func (c *Coordinator) handleSessionStart(ctx context.Context, in Inbound) {
	data, err := wire.DecodeTyped[wire.SessionStartPayload](in.Msg)
	if err != nil || data.CampaignID == "" {
		return
	}

	c.StartSession(data.CampaignID, data.CampaignName, in.Session)

	c.BroadcastAll(ctx, wire.SessionStarted, wire.SessionStartedPayload{
		CampaignID:   data.CampaignID,
		CampaignName: data.CampaignName,
		Mestre:       in.Session.Claims.Username,
	}, in.Session)
}

func (c *Coordinator) handleSessionJoin(ctx context.Context, in Inbound) {
	data, err := wire.DecodeTyped[wire.SessionJoinPayload](in.Msg)
	if err != nil || data.CampaignID == "" {
		return
	}
	c.JoinSession(ctx, data.CampaignID, data.PlayerID, data.Nome, in.Session)
}

func (c *Coordinator) handleSessionEnd(ctx context.Context, in Inbound) {
	data, err := wire.DecodeTyped[wire.SessionEndPayload](in.Msg)
	if err != nil || data.CampaignID == "" {
		return
	}
	c.EndSession(ctx, data.CampaignID, in.Session)
}

// ActiveSession returns a snapshot lookup of the campaign's session.
func (c *Coordinator) ActiveSession(campaignID string) (GameSession, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	session, ok := c.sessions[campaignID]
	if !ok {
		return GameSession{}, false
	}
	return *session, true
}
