package table

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mesa-rpg/mesa/internal/app/logger/logging"
	"github.com/mesa-rpg/mesa/internal/metrics"
	"github.com/mesa-rpg/mesa/internal/wire"
)

func (c *Coordinator) handleFichaRequest(ctx context.Context, in Inbound) {
	data, err := wire.DecodeTyped[wire.FichaRequestPayload](in.Msg)
	if err != nil {
		return
	}

	rec, err := c.DB.GetFicha(ctx, data.PlayerID)
	if err != nil {
		slog.Error("Could not load the ficha", logging.PlayerID(data.PlayerID), logging.Error(err))
		metrics.PersistenceFailures.WithLabelValues("get_ficha").Inc()
	}
	if rec == nil {
		in.Session.SendEvent(ctx, wire.FichaLoad, nil)
		return
	}
	in.Session.SendEvent(ctx, wire.FichaLoad, rec.Ficha)
}

func (c *Coordinator) handleFichaSave(ctx context.Context, in Inbound) {
	data, err := wire.DecodeTyped[wire.FichaSavePayload](in.Msg)
	if err != nil {
		return
	}

	if err := c.DB.SaveFicha(ctx, data.PlayerID, data.Ficha); err != nil {
		slog.Error("Could not save the ficha", logging.PlayerID(data.PlayerID), logging.Error(err))
		metrics.PersistenceFailures.WithLabelValues("save_ficha").Inc()
		in.Session.SendEvent(ctx, wire.FichaSaveError, wire.ErrorPayload{Message: err.Error()})
		return
	}

	in.Session.SendEvent(ctx, wire.FichaSaved, wire.FichaSavedPayload{Success: true})
	slog.Debug("Ficha saved", logging.PlayerID(data.PlayerID))

	// Keep the GM's aggregate view current without polling.
	if _, ok := c.gmSession(); ok {
		c.SendToGM(ctx, wire.FichasUpdate, c.aggregateFichas(ctx))
	}
}

func (c *Coordinator) aggregateFichas(ctx context.Context) map[string]json.RawMessage {
	all := map[string]json.RawMessage{}
	records, err := c.DB.ListFichas(ctx)
	if err != nil {
		slog.Error("Could not list the fichas", logging.Error(err))
		metrics.PersistenceFailures.WithLabelValues("list_fichas").Inc()
		return all
	}
	for _, rec := range records {
		all[rec.PlayerID] = rec.Ficha
	}
	return all
}
