// Package http is the host command surface: REST routes for the handle scoped
// engine commands and a websocket stream of each engine's events.
package http

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/dkeye/rtcengine/internal/adapters/host"
	"github.com/dkeye/rtcengine/internal/app"
	"github.com/dkeye/rtcengine/internal/config"
	"github.com/dkeye/rtcengine/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	clientTokenKey = "client_token"
	handleKey      = "handle"

	defaultReadLimit = 32768
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware keeps a per-client token in the cookie session.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		token, _ := s.Get(clientTokenKey).(string)
		if token == "" {
			token = genClientToken()
			s.Set(clientTokenKey, token)
			if err := s.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("save session")
			}
		}
		c.Set(clientTokenKey, token)
		c.Next()
	}
}

type Server struct {
	cfg      *config.Config
	boundary *app.Boundary
	hub      *host.Hub
	joins    *JoinLimiter
}

func NewServer(cfg *config.Config, b *app.Boundary, hub *host.Hub) *Server {
	return &Server{
		cfg:      cfg,
		boundary: b,
		hub:      hub,
		joins:    NewJoinLimiter(cfg.JoinLimit, cfg.JoinWindow),
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, b *app.Boundary, hub *host.Hub) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("RtcEngineSessions", store))
	r.Use(ClientTokenMiddleware())

	s := NewServer(cfg, b, hub)
	api := r.Group("/api")
	api.POST("/engines", s.createEngine)

	eng := api.Group("/engines/:handle", s.withHandle)
	eng.GET("", s.status)
	eng.DELETE("", s.destroy)
	eng.POST("/join", func(c *gin.Context) { s.join(ctx, c) })
	eng.POST("/leave", s.leave)
	eng.POST("/video/local", s.localVideo)
	eng.POST("/video/remote", s.remoteVideo)
	eng.POST("/audio/mute", s.mute)
	eng.POST("/video/enable", s.enableVideo)
	eng.GET("/events", s.events)

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}

func handleOf(c *gin.Context) app.Handle {
	return c.MustGet(handleKey).(app.Handle)
}

func invalidHandle(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"code": int(domain.CodeInvalidHandle)})
}

// withHandle parses :handle and rejects handles the registry does not know.
func (s *Server) withHandle(c *gin.Context) {
	n, err := strconv.ParseInt(c.Param("handle"), 10, 64)
	if err != nil {
		invalidHandle(c)
		return
	}
	h := app.Handle(n)
	if _, ok := s.boundary.Registry.Resolve(h); !ok {
		invalidHandle(c)
		return
	}
	c.Set(handleKey, h)
	c.Next()
}

func (s *Server) createEngine(c *gin.Context) {
	limit := s.cfg.ReadLimit
	if limit <= 0 {
		limit = defaultReadLimit
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, limit))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body"})
		return
	}
	sink := s.hub.NewSink()
	h, err := s.boundary.Create(string(body), sink)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.hub.Bind(h, sink)
	log.Info().Str("module", "adapters.http").Str("client", c.GetString(clientTokenKey)).Int64("handle", int64(h)).Msg("engine created")
	c.JSON(http.StatusCreated, gin.H{"handle": h})
}

func (s *Server) status(c *gin.Context) {
	st, ok := s.boundary.Status(handleOf(c))
	if !ok {
		invalidHandle(c)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) destroy(c *gin.Context) {
	h := handleOf(c)
	if !s.boundary.Destroy(h) {
		invalidHandle(c)
		return
	}
	s.hub.Drop(h)
	c.Status(http.StatusNoContent)
}

type joinRequest struct {
	Token   string `json:"token"`
	Channel string `json:"channel"`
	UserID  string `json:"userId"`
}

func (s *Server) join(ctx context.Context, c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": int(domain.CodeInvalidArgument), "error": err.Error()})
		return
	}
	if !s.joins.Allow(c.GetString(clientTokenKey)) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many join attempts"})
		return
	}
	code := s.boundary.JoinChannel(ctx, handleOf(c), req.Token, req.Channel, req.UserID)
	c.JSON(codeStatus(code), gin.H{"code": int(code), "name": code.String()})
}

func (s *Server) leave(c *gin.Context) {
	code := s.boundary.LeaveChannel(handleOf(c))
	c.JSON(codeStatus(code), gin.H{"code": int(code), "name": code.String()})
}

func codeStatus(code domain.ResultCode) int {
	switch code {
	case domain.CodeOK:
		return http.StatusOK
	case domain.CodeInvalidHandle:
		return http.StatusNotFound
	case domain.CodeInvalidArgument:
		return http.StatusBadRequest
	case domain.CodeAlreadyInChannel, domain.CodeNotInitialized:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

type surfaceRequest struct {
	Surface string `json:"surface"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	UserID  string `json:"userId"`
}

func (s *Server) localVideo(c *gin.Context) {
	var req surfaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ok := s.boundary.SetupLocalVideo(handleOf(c), domain.Surface{ID: req.Surface, Width: req.Width, Height: req.Height})
	c.JSON(boolStatus(ok), gin.H{"ok": ok})
}

func (s *Server) remoteVideo(c *gin.Context) {
	var req surfaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ok := s.boundary.SetupRemoteVideo(handleOf(c), domain.Surface{ID: req.Surface, Width: req.Width, Height: req.Height}, req.UserID)
	c.JSON(boolStatus(ok), gin.H{"ok": ok})
}

func (s *Server) mute(c *gin.Context) {
	var req struct {
		Muted bool `json:"muted"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ok := s.boundary.MuteLocalAudio(handleOf(c), req.Muted)
	c.JSON(boolStatus(ok), gin.H{"ok": ok})
}

func (s *Server) enableVideo(c *gin.Context) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ok := s.boundary.EnableLocalVideo(handleOf(c), req.Enabled)
	c.JSON(boolStatus(ok), gin.H{"ok": ok})
}

func boolStatus(ok bool) int {
	if ok {
		return http.StatusOK
	}
	return http.StatusUnprocessableEntity
}
