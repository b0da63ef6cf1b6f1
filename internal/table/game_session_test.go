package table

import (
	"testing"

	"github.com/mesa-rpg/mesa/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleSessionStart(t *testing.T) {
	t.Run("announced to everyone but the initiator", func(t *testing.T) {
		c, _ := newTestCoordinator(t)
		gm, gmConn := registerGM(t, c, "conn-gm", "mestre")
		_, p1 := registerPlayer(t, c, "conn-p1", "p1", "Ana")

		deliver(t, c, gm, wire.SessionStart, wire.SessionStartPayload{
			CampaignID:   "c1",
			CampaignName: "A Tumba",
		})

		started := requireEvent[wire.SessionStartedPayload](t, p1, wire.SessionStarted)
		assert.Equal(t, "c1", started.CampaignID)
		assert.Equal(t, "A Tumba", started.CampaignName)
		assert.Equal(t, "mestre", started.Mestre)
		assert.Equal(t, 0, countEvents(t, gmConn, wire.SessionStarted))

		session, ok := c.ActiveSession("c1")
		require.True(t, ok)
		assert.Equal(t, StatusActive, session.Status)
		assert.Equal(t, "conn-gm", session.OwnerConnID)
		assert.Empty(t, session.Players)
	})

	t.Run("restart discards the joined players", func(t *testing.T) {
		c, _ := newTestCoordinator(t)
		gm, _ := registerGM(t, c, "conn-gm", "mestre")
		player, _ := registerPlayer(t, c, "conn-p1", "p1", "Ana")

		deliver(t, c, gm, wire.SessionStart, wire.SessionStartPayload{CampaignID: "c1"})
		deliver(t, c, player, wire.SessionJoin, wire.SessionJoinPayload{CampaignID: "c1", PlayerID: "p1", Nome: "Ana"})
		deliver(t, c, gm, wire.SessionStart, wire.SessionStartPayload{CampaignID: "c1"})

		session, ok := c.ActiveSession("c1")
		require.True(t, ok)
		assert.Empty(t, session.Players)
	})

	t.Run("missing campaign id is dropped", func(t *testing.T) {
		c, _ := newTestCoordinator(t)
		gm, _ := registerGM(t, c, "conn-gm", "mestre")
		_, p1 := registerPlayer(t, c, "conn-p1", "p1", "Ana")

		deliver(t, c, gm, wire.SessionStart, wire.SessionStartPayload{CampaignName: "sem id"})

		assert.Equal(t, 0, countEvents(t, p1, wire.SessionStarted))
	})
}

func TestHandleSessionJoin(t *testing.T) {
	t.Run("the owner learns the head count", func(t *testing.T) {
		c, _ := newTestCoordinator(t)
		gm, gmConn := registerGM(t, c, "conn-gm", "mestre")
		p1, _ := registerPlayer(t, c, "conn-p1", "p1", "Ana")
		p2, _ := registerPlayer(t, c, "conn-p2", "p2", "Bruno")

		deliver(t, c, gm, wire.SessionStart, wire.SessionStartPayload{CampaignID: "c1"})
		deliver(t, c, p1, wire.SessionJoin, wire.SessionJoinPayload{CampaignID: "c1", PlayerID: "p1", Nome: "Ana"})
		deliver(t, c, p2, wire.SessionJoin, wire.SessionJoinPayload{CampaignID: "c1", PlayerID: "p2", Nome: "Bruno"})

		events := gmConn.Events(t)
		var totals []int
		for _, msg := range events {
			if msg.Type != wire.SessionJoined {
				continue
			}
			data, err := wire.DecodeTyped[wire.SessionJoinedPayload](msg)
			require.NoError(t, err)
			totals = append(totals, data.TotalJogadores)
		}
		assert.Equal(t, []int{1, 2}, totals)

		session, ok := c.ActiveSession("c1")
		require.True(t, ok)
		require.Len(t, session.Players, 2)
		assert.Equal(t, "p1", session.Players[0].PlayerID)
		assert.Equal(t, "conn-p1", session.Players[0].ConnID)
	})

	t.Run("joining an inactive campaign is a no-op", func(t *testing.T) {
		c, _ := newTestCoordinator(t)
		_, gmConn := registerGM(t, c, "conn-gm", "mestre")
		p1, p1Conn := registerPlayer(t, c, "conn-p1", "p1", "Ana")

		deliver(t, c, p1, wire.SessionJoin, wire.SessionJoinPayload{CampaignID: "nope", PlayerID: "p1"})

		assert.Equal(t, 0, countEvents(t, gmConn, wire.SessionJoined))
		assert.Equal(t, 0, countEvents(t, p1Conn, wire.RegisterError))
	})
}

func TestHandleSessionEnd(t *testing.T) {
	t.Run("announced to everyone but the initiator", func(t *testing.T) {
		c, _ := newTestCoordinator(t)
		gm, gmConn := registerGM(t, c, "conn-gm", "mestre")
		p1, p1Conn := registerPlayer(t, c, "conn-p1", "p1", "Ana")

		deliver(t, c, gm, wire.SessionStart, wire.SessionStartPayload{CampaignID: "c1"})
		deliver(t, c, p1, wire.SessionJoin, wire.SessionJoinPayload{CampaignID: "c1", PlayerID: "p1", Nome: "Ana"})
		deliver(t, c, gm, wire.SessionEnd, wire.SessionEndPayload{CampaignID: "c1"})

		ended := requireEvent[wire.SessionEndedPayload](t, p1Conn, wire.SessionEnded)
		assert.Equal(t, "c1", ended.CampaignID)
		assert.Equal(t, wire.ReasonEndedByGM, ended.Motivo)
		assert.Equal(t, 0, countEvents(t, gmConn, wire.SessionEnded))

		_, ok := c.ActiveSession("c1")
		assert.False(t, ok)
	})

	t.Run("ending an inactive campaign is a no-op", func(t *testing.T) {
		c, _ := newTestCoordinator(t)
		gm, _ := registerGM(t, c, "conn-gm", "mestre")
		_, p1Conn := registerPlayer(t, c, "conn-p1", "p1", "Ana")

		deliver(t, c, gm, wire.SessionEnd, wire.SessionEndPayload{CampaignID: "nope"})

		assert.Equal(t, 0, countEvents(t, p1Conn, wire.SessionEnded))
	})
}

func TestGMDisconnect_EndsOwnedSessions(t *testing.T) {
	c, _ := newTestCoordinator(t)
	gm, _ := registerGM(t, c, "conn-gm", "mestre")
	p1, p1Conn := registerPlayer(t, c, "conn-p1", "p1", "Ana")

	deliver(t, c, gm, wire.SessionStart, wire.SessionStartPayload{CampaignID: "c1"})
	deliver(t, c, gm, wire.SessionStart, wire.SessionStartPayload{CampaignID: "c2"})
	deliver(t, c, p1, wire.SessionJoin, wire.SessionJoinPayload{CampaignID: "c1", PlayerID: "p1", Nome: "Ana"})

	c.Unregister(gm)

	require.Equal(t, 2, countEvents(t, p1Conn, wire.SessionEnded), "one notice per owned session, exactly once")
	for _, msg := range p1Conn.Events(t) {
		if msg.Type != wire.SessionEnded {
			continue
		}
		data, err := wire.DecodeTyped[wire.SessionEndedPayload](msg)
		require.NoError(t, err)
		assert.Equal(t, wire.ReasonGMDisconnected, data.Motivo)
	}

	_, ok := c.ActiveSession("c1")
	assert.False(t, ok)
	_, ok = c.ActiveSession("c2")
	assert.False(t, ok)
}

func TestGMDisconnect_LeavesForeignSessionsAlone(t *testing.T) {
	c, _ := newTestCoordinator(t)
	oldGM, _ := registerGM(t, c, "conn-gm-1", "mestre")
	deliver(t, c, oldGM, wire.SessionStart, wire.SessionStartPayload{CampaignID: "c1"})

	newGM, _ := registerGM(t, c, "conn-gm-2", "mestre")
	deliver(t, c, newGM, wire.SessionStart, wire.SessionStartPayload{CampaignID: "c2"})

	c.Unregister(oldGM)

	_, ok := c.ActiveSession("c1")
	assert.False(t, ok, "the stale GM's own session ends")
	_, ok = c.ActiveSession("c2")
	assert.True(t, ok, "the new GM's session survives")
}

func TestPlayerDisconnect_ScrubbedFromSessions(t *testing.T) {
	c, _ := newTestCoordinator(t)
	gm, gmConn := registerGM(t, c, "conn-gm", "mestre")
	p1, _ := registerPlayer(t, c, "conn-p1", "p1", "Ana")
	p2, _ := registerPlayer(t, c, "conn-p2", "p2", "Bruno")

	deliver(t, c, gm, wire.SessionStart, wire.SessionStartPayload{CampaignID: "c1"})
	deliver(t, c, p1, wire.SessionJoin, wire.SessionJoinPayload{CampaignID: "c1", PlayerID: "p1", Nome: "Ana"})
	deliver(t, c, p2, wire.SessionJoin, wire.SessionJoinPayload{CampaignID: "c1", PlayerID: "p2", Nome: "Bruno"})

	c.Unregister(p1)

	left := requireEvent[wire.SessionPlayerLeftPayload](t, gmConn, wire.SessionPlayerLeft)
	assert.Equal(t, "p1", left.PlayerID)
	assert.Equal(t, "Ana", left.Nome)
	assert.Equal(t, 1, left.TotalJogadores)

	session, ok := c.ActiveSession("c1")
	require.True(t, ok)
	require.Len(t, session.Players, 1)
	assert.Equal(t, "p2", session.Players[0].PlayerID)
}
