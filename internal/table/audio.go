package table

import (
	"context"

	"github.com/mesa-rpg/mesa/internal/wire"
)

// Labels attached to audio cues when the sender provides none.
const (
	defaultDirectAudioName    = "Áudio do Mestre"
	defaultBroadcastAudioName = "Áudio Ambiente"
)

func (c *Coordinator) handleAudioSend(ctx context.Context, in Inbound) {
	data, err := wire.DecodeTyped[wire.AudioSendPayload](in.Msg)
	if err != nil {
		return
	}

	status := c.SendToPlayer(ctx, data.JogadorID, wire.AudioPlay, wire.AudioPlayPayload{
		URL:    data.AudioURL,
		Volume: defaultVolume(data.Volume),
		Nome:   defaultName(data.Nome, defaultDirectAudioName),
	})
	if status != Delivered {
		return
	}
	in.Session.SendEvent(ctx, wire.AudioConfirmed, wire.AudioConfirmedPayload{
		JogadorID: data.JogadorID,
		AudioNome: data.Nome,
	})
}

func (c *Coordinator) handleAudioBroadcast(ctx context.Context, in Inbound) {
	data, err := wire.DecodeTyped[wire.AudioBroadcastPayload](in.Msg)
	if err != nil {
		return
	}

	c.BroadcastPlayers(ctx, wire.AudioPlay, wire.AudioPlayPayload{
		URL:    data.AudioURL,
		Volume: defaultVolume(data.Volume),
		Nome:   defaultName(data.Nome, defaultBroadcastAudioName),
	})
}

func (c *Coordinator) handleAudioStop(ctx context.Context, in Inbound) {
	data, err := wire.DecodeTyped[wire.AudioStopPayload](in.Msg)
	if err != nil {
		return
	}
	c.SendToPlayer(ctx, data.JogadorID, wire.AudioStop, struct{}{})
}

func defaultVolume(v float64) float64 {
	if v == 0 {
		return 1.0
	}
	return v
}

func defaultName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
