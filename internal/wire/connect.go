package wire

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/coder/websocket"
)

const SupportedRealm = "mesa"

var ProtoVersion = "dev"

// Connect dials the table coordinator, presenting the bearer token issued at
// login. The dial is retried with exponential backoff; authentication
// failures are not retried because a rejected token stays rejected.
func Connect(ctx context.Context, wsURL, token string) (*websocket.Conn, error) {
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+token)
	headers.Set("X-Version", ProtoVersion)

	dial := func() (*websocket.Conn, error) {
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		ws, resp, err := websocket.Dial(dialCtx, wsURL, &websocket.DialOptions{
			Subprotocols: []string{SupportedRealm},
			HTTPHeader:   headers,
		})
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusUnauthorized {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return ws, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second

	return backoff.RetryNotifyWithData(dial, backoff.WithContext(bo, ctx),
		func(err error, next time.Duration) {
			slog.Warn("Retrying connection to the table", "in", next.String(), "error", err)
		})
}

var _ WebSocketWriter = (*websocket.Conn)(nil)

type WebSocketWriter interface {
	Write(ctx context.Context, messageType websocket.MessageType, payload []byte) error
}

func Write(ctx context.Context, wsConn WebSocketWriter, payload []byte) error {
	return wsConn.Write(ctx, websocket.MessageText, payload)
}
