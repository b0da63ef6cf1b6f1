package table

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mesa-rpg/mesa/internal/app/logger/logging"
	"github.com/mesa-rpg/mesa/internal/metrics"
	"github.com/mesa-rpg/mesa/internal/wire"
)

// themePreference is the stored preference value, keyed by player id.
type themePreference struct {
	Theme string `json:"theme"`
}

func (c *Coordinator) handleThemeSet(ctx context.Context, in Inbound) {
	if in.Session.PlayerID == "" {
		return
	}
	data, err := wire.DecodeTyped[wire.ThemePayload](in.Msg)
	if err != nil {
		return
	}

	value, err := json.Marshal(themePreference{Theme: data.Theme})
	if err != nil {
		return
	}
	if err := c.DB.SavePreference(ctx, in.Session.PlayerID, value); err != nil {
		slog.Error("Could not save the theme", logging.PlayerID(in.Session.PlayerID), logging.Error(err))
		metrics.PersistenceFailures.WithLabelValues("save_preference").Inc()
		return
	}

	in.Session.SendEvent(ctx, wire.ThemeSaved, wire.ThemePayload{Theme: data.Theme})
	slog.Debug("Theme saved", logging.PlayerID(in.Session.PlayerID), "theme", data.Theme)
}

func (c *Coordinator) handleThemeRequest(ctx context.Context, in Inbound) {
	if in.Session.PlayerID == "" {
		return
	}
	c.pushSavedTheme(ctx, in.Session)
}

// pushSavedTheme sends the stored theme to the connection, if one exists.
// No reply is sent when nothing is stored.
func (c *Coordinator) pushSavedTheme(ctx context.Context, session *UserSession) {
	value, err := c.DB.GetPreference(ctx, session.PlayerID)
	if err != nil {
		slog.Error("Could not read the theme", logging.PlayerID(session.PlayerID), logging.Error(err))
		metrics.PersistenceFailures.WithLabelValues("get_preference").Inc()
		return
	}
	if value == nil {
		return
	}

	var pref themePreference
	if err := json.Unmarshal(value, &pref); err != nil || pref.Theme == "" {
		return
	}
	session.SendEvent(ctx, wire.ThemeApply, wire.ThemePayload{Theme: pref.Theme})
}
