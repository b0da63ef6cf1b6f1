package logging

import (
	"log/slog"
)

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

func PlayerID(playerID string) slog.Attr {
	return slog.String("playerId", playerID)
}

func CampaignID(campaignID string) slog.Attr {
	return slog.String("campaignId", campaignID)
}
