package stream

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"brainup-client/internal/domain"
)

// Client consumes a server-push event stream over a websocket connection.
// Reconnection is deliberately not handled here; when the connection drops
// the event channel closes and the caller decides what to do.
type Client struct {
	url    string
	dialer *websocket.Dialer
}

func NewClient(url string) *Client {
	return &Client{url: url, dialer: websocket.DefaultDialer}
}

// Subscribe opens the stream and returns a channel of event envelopes. The
// caller must invoke the returned cancel function on teardown to release the
// connection; cancel is idempotent and safe to call after a read error.
func (c *Client) Subscribe(ctx context.Context) (<-chan domain.Event, func(), error) {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("url", c.url).Msg("stream connected")

	events := make(chan domain.Event, 16)
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			if err := conn.Close(); err != nil {
				log.Debug().Err(err).Msg("stream close")
			}
			log.Info().Str("url", c.url).Msg("stream disconnected")
		})
	}

	go func() {
		defer close(events)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Warn().Err(err).Msg("stream read failed")
				}
				cancel()
				return
			}

			var ev domain.Event
			if err := json.Unmarshal(raw, &ev); err != nil {
				log.Warn().Err(err).Msg("discarding malformed stream frame")
				continue
			}
			if ev.Kind == "" {
				log.Warn().Msg("discarding stream frame without event kind")
				continue
			}

			select {
			case events <- ev:
			case <-ctx.Done():
				cancel()
				return
			}
		}
	}()

	return events, cancel, nil
}
