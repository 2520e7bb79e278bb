package http

import (
	"net/http"
	"time"

	"github.com/dkeye/rtcengine/internal/adapters/host"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// events upgrades to a websocket and streams the engine's event frames until
// either side goes away.
func (s *Server) events(c *gin.Context) {
	h := handleOf(c)
	sink, ok := s.hub.Sink(h)
	if !ok {
		invalidHandle(c)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("ws upgrade")
		return
	}
	l := log.With().Str("module", "adapters.http").Int64("handle", int64(h)).Str("client", c.GetString(clientTokenKey)).Logger()
	l.Info().Msg("event stream opened")

	sub := sink.Subscribe()
	closed := make(chan struct{})
	go s.readPump(ws, closed, l)
	s.writePump(ws, sub, closed, l)

	sink.Unsubscribe(sub)
	_ = ws.Close()
	l.Info().Msg("event stream closed")
}

// readPump discards client frames and closes done when the peer goes away.
func (s *Server) readPump(ws *websocket.Conn, done chan<- struct{}, l zerolog.Logger) {
	defer close(done)
	limit := s.cfg.ReadLimit
	if limit <= 0 {
		limit = defaultReadLimit
	}
	ws.SetReadLimit(limit)
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			l.Debug().Err(err).Msg("readPump closing")
			return
		}
	}
}

func (s *Server) writePump(ws *websocket.Conn, sub *host.Subscriber, done <-chan struct{}, l zerolog.Logger) {
	timeout := s.cfg.WriteTimeout
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	var ping <-chan time.Time
	if s.cfg.PingPeriod > 0 {
		t := time.NewTicker(s.cfg.PingPeriod)
		defer t.Stop()
		ping = t.C
	}

	for {
		select {
		case <-done:
			return
		case <-ping:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(timeout)); err != nil {
				l.Warn().Err(err).Msg("writePump ping")
				return
			}
		case data, ok := <-sub.C():
			if !ok {
				l.Warn().Msg("writePump subscriber closed")
				_ = ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "subscriber closed"),
					time.Now().Add(timeout))
				return
			}
			if err := ws.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
				l.Error().Err(err).Msg("writePump set deadline")
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				l.Error().Err(err).Msg("writePump write error")
				return
			}
		}
	}
}
