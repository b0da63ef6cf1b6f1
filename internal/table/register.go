package table

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mesa-rpg/mesa/internal/app/logger/logging"
	"github.com/mesa-rpg/mesa/internal/wire"
)

func (c *Coordinator) handleRegister(ctx context.Context, in Inbound) {
	data, err := wire.DecodeTyped[wire.RegisterPayload](in.Msg)
	if err != nil || data.Role == "" {
		in.Session.SendEvent(ctx, wire.RegisterError, wire.ErrorPayload{Message: "Dados de registro inválidos"})
		return
	}

	switch data.Role {
	case wire.RoleGM:
		c.registerGM(in.Session)

		// The new GM gets a point-in-time roster derived from the persisted
		// fichas, not from the live directory.
		in.Session.SendEvent(ctx, wire.PlayerList, c.playerRoster(ctx))
		in.Session.SendEvent(ctx, wire.RegisterSuccess, wire.RegisterAck{Role: wire.RoleGM})

	case wire.RolePlayer:
		if data.PlayerID == "" || data.Nome == "" {
			in.Session.SendEvent(ctx, wire.RegisterError, wire.ErrorPayload{Message: "Nome e ID são obrigatórios"})
			return
		}
		c.registerPlayer(in.Session, data.PlayerID, data.Nome)

		c.SendToGM(ctx, wire.PlayerConnected, wire.PlayerPresence{
			ID:       data.PlayerID,
			Nome:     data.Nome,
			SocketID: in.Session.ConnID,
		})
		in.Session.SendEvent(ctx, wire.RegisterSuccess, wire.RegisterAck{
			Role:     wire.RolePlayer,
			PlayerID: data.PlayerID,
			Nome:     data.Nome,
		})
		c.pushSavedTheme(ctx, in.Session)

	default:
		in.Session.SendEvent(ctx, wire.RegisterError, wire.ErrorPayload{Message: "Role inválido"})
	}
}

// playerRoster lists every player known from a persisted ficha. The display
// name comes from the sheet's "jogador" field; the socket id is filled in
// for players with a live connection.
func (c *Coordinator) playerRoster(ctx context.Context) []wire.PlayerInfo {
	records, err := c.DB.ListFichas(ctx)
	if err != nil {
		slog.Error("Could not list the fichas", logging.Error(err))
		return []wire.PlayerInfo{}
	}

	roster := make([]wire.PlayerInfo, 0, len(records))
	for _, rec := range records {
		info := wire.PlayerInfo{ID: rec.PlayerID, Nome: fichaOwnerName(rec.Ficha)}
		if live, ok := c.getPlayer(rec.PlayerID); ok {
			info.SocketID = &live.ConnID
		}
		roster = append(roster, info)
	}
	return roster
}

func fichaOwnerName(ficha json.RawMessage) string {
	var doc struct {
		Jogador string `json:"jogador"`
	}
	if err := json.Unmarshal(ficha, &doc); err != nil || doc.Jogador == "" {
		return "---"
	}
	return doc.Jogador
}
