package wire

import (
	"encoding/json"
	"errors"
)

// ErrMissingType is returned when an envelope has no event type tag.
var ErrMissingType = errors.New("wire: missing event type")

// Message is the tagged envelope carried on the websocket. Every event is
// encoded as a type tag plus an opaque payload, decoded per type by the
// handler that owns it.
type Message struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Roles carried in registration and in JWT claims.
const (
	RoleGM     = "gm"
	RolePlayer = "player"
)

type RegisterPayload struct {
	Role     string `json:"role"`
	PlayerID string `json:"playerId,omitempty"`
	Nome     string `json:"nome,omitempty"`
}

type RegisterAck struct {
	Role     string `json:"role"`
	PlayerID string `json:"playerId,omitempty"`
	Nome     string `json:"nome,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// PlayerInfo is one row of the roster pushed to a newly registered game
// master. SocketID is nil when the player has no live connection.
type PlayerInfo struct {
	ID       string  `json:"id"`
	Nome     string  `json:"nome"`
	SocketID *string `json:"socketId"`
}

type PlayerPresence struct {
	ID       string `json:"id"`
	Nome     string `json:"nome"`
	SocketID string `json:"socketId,omitempty"`
}

type AudioSendPayload struct {
	JogadorID string  `json:"jogadorId"`
	AudioURL  string  `json:"audioUrl"`
	Volume    float64 `json:"volume,omitempty"`
	Nome      string  `json:"nome,omitempty"`
}

type AudioPlayPayload struct {
	URL    string  `json:"url"`
	Volume float64 `json:"volume"`
	Nome   string  `json:"nome"`
}

type AudioConfirmedPayload struct {
	JogadorID string `json:"jogadorId"`
	AudioNome string `json:"audioNome"`
}

type AudioBroadcastPayload struct {
	AudioURL string  `json:"audioUrl"`
	Volume   float64 `json:"volume,omitempty"`
	Nome     string  `json:"nome,omitempty"`
}

type AudioStopPayload struct {
	JogadorID string `json:"jogadorId"`
}

type FichaRequestPayload struct {
	PlayerID string `json:"playerId"`
}

type FichaSavePayload struct {
	PlayerID string          `json:"playerId"`
	Ficha    json.RawMessage `json:"ficha"`
}

type FichaSavedPayload struct {
	Success bool `json:"success"`
}

type DiceRollPayload struct {
	Jogador     string `json:"jogador"`
	JogadorID   string `json:"jogadorId"`
	Formula     string `json:"formula"`
	Resultados  []int  `json:"resultados"`
	Total       int    `json:"total"`
	Modificador int    `json:"modificador"`
}

type DiceResultPayload struct {
	Jogador     string `json:"jogador"`
	JogadorID   string `json:"jogadorId"`
	Formula     string `json:"formula"`
	Resultados  []int  `json:"resultados"`
	Total       int    `json:"total"`
	Modificador int    `json:"modificador"`
	Timestamp   string `json:"timestamp"`
}

type ChatSendPayload struct {
	Texto string `json:"texto"`
	Tipo  string `json:"tipo,omitempty"`
}

type ChatReceivePayload struct {
	Texto     string `json:"texto"`
	Tipo      string `json:"tipo"`
	De        string `json:"de"`
	Timestamp string `json:"timestamp"`
}

type ThemePayload struct {
	Theme string `json:"theme"`
}

type SessionStartPayload struct {
	CampaignID   string `json:"campaignId"`
	CampaignName string `json:"campaignName"`
}

type SessionStartedPayload struct {
	CampaignID   string `json:"campaignId"`
	CampaignName string `json:"campaignName"`
	Mestre       string `json:"mestre"`
}

type SessionJoinPayload struct {
	CampaignID string `json:"campaignId"`
	PlayerID   string `json:"playerId"`
	Nome       string `json:"nome"`
}

type SessionJoinedPayload struct {
	PlayerID       string `json:"playerId"`
	Nome           string `json:"nome"`
	TotalJogadores int    `json:"totalJogadores"`
}

type SessionPlayerLeftPayload struct {
	PlayerID       string `json:"playerId"`
	Nome           string `json:"nome"`
	TotalJogadores int    `json:"totalJogadores"`
}

type SessionEndPayload struct {
	CampaignID string `json:"campaignId"`
}

// Reasons attached to a session ended notice.
const (
	ReasonEndedByGM      = "encerrada_pelo_mestre"
	ReasonGMDisconnected = "mestre_desconectado"
)

type SessionEndedPayload struct {
	CampaignID string `json:"campaignId"`
	Motivo     string `json:"motivo"`
}
