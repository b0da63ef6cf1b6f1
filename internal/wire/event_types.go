package wire

// EventType names an event on the table wire. The names are the wire
// contract shared with the web client and must not be translated.
type EventType string

const (
	// Registration
	Register        EventType = "register"
	RegisterSuccess EventType = "register:success"
	RegisterError   EventType = "register:error"

	// Presence pushed to the game master
	PlayerList         EventType = "jogadores:lista"
	PlayerConnected    EventType = "jogador:conectado"
	PlayerDisconnected EventType = "jogador:desconectado"

	// Audio cues
	AudioSend      EventType = "audio:enviar"
	AudioPlay      EventType = "audio:tocar"
	AudioConfirmed EventType = "audio:confirmado"
	AudioBroadcast EventType = "audio:broadcast"
	AudioStop      EventType = "audio:parar"

	// Character sheets
	FichaRequest   EventType = "ficha:solicitar"
	FichaLoad      EventType = "ficha:carregar"
	FichaSave      EventType = "ficha:salvar"
	FichaSaved     EventType = "ficha:salva"
	FichaSaveError EventType = "ficha:salva:erro"
	FichasUpdate   EventType = "fichas:atualizar"

	// Dice
	DiceRoll   EventType = "dado:rolar"
	DiceResult EventType = "dado:resultado"

	// Table chat
	ChatSend    EventType = "mensagem:enviar"
	ChatReceive EventType = "mensagem:receber"

	// Theme preference
	ThemeSet     EventType = "theme:set"
	ThemeSaved   EventType = "theme:salvo"
	ThemeRequest EventType = "theme:solicitar"
	ThemeApply   EventType = "theme:aplicar"

	// Play sessions
	SessionStart      EventType = "mestre:iniciar-sessao"
	SessionStarted    EventType = "sessao:iniciada"
	SessionJoin       EventType = "jogador:entrar-sessao"
	SessionJoined     EventType = "jogador:conectado-sessao"
	SessionPlayerLeft EventType = "jogador:desconectado-sessao"
	SessionEnd        EventType = "mestre:encerrar-sessao"
	SessionEnded      EventType = "sessao:encerrada"
)

func (e EventType) String() string { return string(e) }
