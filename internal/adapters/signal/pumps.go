package signal

import (
	"context"
	"time"

	"github.com/dkeye/rtcengine/internal/core"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

func encode(msg core.SignalMessage) ([]byte, error) {
	return json.Marshal(msg)
}

func (c *Client) writePump(ctx context.Context, ws *websocket.Conn, send <-chan []byte) {
	var ping <-chan time.Time
	if c.pingPeriod > 0 {
		t := time.NewTicker(c.pingPeriod)
		defer t.Stop()
		ping = t.C
	}

	for {
		select {
		case <-ctx.Done():
			c.logger.Debug().Msg("writePump ctx done")
			return
		case <-ping:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout)); err != nil {
				c.logger.Warn().Err(err).Msg("writePump ping")
				return
			}
		case data, ok := <-send:
			if !ok {
				c.logger.Debug().Msg("writePump channel closed")
				return
			}
			if err := ws.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				c.logger.Error().Err(err).Msg("writePump set deadline")
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Error().Err(err).Msg("writePump write error")
				return
			}
		}
	}
}

// readPump decodes inbound envelopes until the connection ends. A connection
// lost while the client is open is reported to the handler as an error
// envelope.
func (c *Client) readPump(ctx context.Context, ws *websocket.Conn) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Debug().Msg("readPump closing")
				return
			}
			c.logger.Error().Err(err).Msg("readPump read error")
			c.deliver(core.SignalMessage{Type: core.SignalError, Error: "connection lost: " + err.Error()})
			if c.markClosed() {
				c.release()
			}
			return
		}

		var msg core.SignalMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn().Err(err).Msg("bad json")
			continue
		}
		if msg.Type == "" {
			c.logger.Warn().Msg("envelope without type")
			continue
		}
		c.deliver(msg)
	}
}
