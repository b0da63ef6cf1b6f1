package table

import (
	"context"

	"github.com/mesa-rpg/mesa/internal/wire"
)

const defaultChatSender = "Sistema"

func (c *Coordinator) handleDiceRoll(ctx context.Context, in Inbound) {
	data, err := wire.DecodeTyped[wire.DiceRollPayload](in.Msg)
	if err != nil {
		return
	}

	c.BroadcastAll(ctx, wire.DiceResult, wire.DiceResultPayload{
		Jogador:     data.Jogador,
		JogadorID:   data.JogadorID,
		Formula:     data.Formula,
		Resultados:  data.Resultados,
		Total:       data.Total,
		Modificador: data.Modificador,
		Timestamp:   c.timestamp(),
	}, nil)
}

func (c *Coordinator) handleChatSend(ctx context.Context, in Inbound) {
	data, err := wire.DecodeTyped[wire.ChatSendPayload](in.Msg)
	if err != nil {
		return
	}

	tipo := data.Tipo
	if tipo == "" {
		tipo = "info"
	}

	c.BroadcastAll(ctx, wire.ChatReceive, wire.ChatReceivePayload{
		Texto:     data.Texto,
		Tipo:      tipo,
		De:        defaultName(in.Session.Nome, defaultChatSender),
		Timestamp: c.timestamp(),
	}, nil)
}
