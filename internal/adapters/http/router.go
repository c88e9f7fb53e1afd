package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Jukebox/internal/adapters/broadcast"
	"github.com/dkeye/Jukebox/internal/app"
	"github.com/dkeye/Jukebox/internal/config"
	"github.com/dkeye/Jukebox/internal/core"
	"github.com/dkeye/Jukebox/internal/domain"
)

const (
	sessionName    = "JukeboxSessions"
	sessionPID     = "pid"
	sessionRoom    = "room"
	clientTokenKey = "client_token"
	clientKeyKey   = "client_key"
)

// ClientTokenMiddleware issues the "ct" cookie. Requests that did not send
// one are keyed by client IP, so dropping the cookie does not reset limits.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		key := "ct:" + token
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
			key = "ip:" + c.ClientIP()
		}
		c.Set(clientTokenKey, token)
		c.Set(clientKeyKey, key)
		c.Next()
	}
}

type handlers struct {
	ctx   context.Context
	rooms *app.Manager
	hub   *broadcast.Hub
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func SetupRouter(ctx context.Context, cfg *config.Config, rooms *app.Manager, hub *broadcast.Hub) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: int(cfg.Room.Retention.Seconds()), HttpOnly: true})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(ClientTokenMiddleware())

	h := &handlers{ctx: ctx, rooms: rooms, hub: hub}
	limit := NewRateLimiter(cfg.Rate.Limit, cfg.Rate.Interval).Middleware()

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	api.GET("/me", h.whoAmI)
	api.GET("/rooms", h.listRooms)
	api.POST("/rooms", limit, h.createRoom)
	api.GET("/rooms/:code", h.roomState)
	api.POST("/rooms/:code/join", limit, h.joinRoom)
	api.POST("/rooms/:code/songs", limit, h.addSong)
	api.POST("/rooms/:code/votes", limit, h.castVote)
	api.POST("/rooms/:code/leave", limit, h.leaveRoom)
	api.GET("/rooms/:code/ws", h.subscribe)

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}

func roomCode(c *gin.Context) domain.RoomCode {
	return domain.NormalizeCode(c.Param("code"))
}

func remember(c *gin.Context, pid domain.ParticipantID, code domain.RoomCode) {
	s := sessions.Default(c)
	s.Set(sessionPID, string(pid))
	s.Set(sessionRoom, string(code))
	if err := s.Save(); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("session save")
	}
}

func forget(c *gin.Context) {
	s := sessions.Default(c)
	s.Clear()
	if err := s.Save(); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("session save")
	}
}

// participant prefers the explicit id and falls back to the session when it
// belongs to the same room.
func participant(c *gin.Context, explicit string, code domain.RoomCode) domain.ParticipantID {
	if explicit != "" {
		return domain.ParticipantID(explicit)
	}
	s := sessions.Default(c)
	pid, _ := s.Get(sessionPID).(string)
	room, _ := s.Get(sessionRoom).(string)
	if pid == "" || domain.RoomCode(room) != code {
		return ""
	}
	return domain.ParticipantID(pid)
}

func (h *handlers) whoAmI(c *gin.Context) {
	pid, _ := sessions.Default(c).Get(sessionPID).(string)
	if pid == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "not in a room"})
		return
	}
	code, ok := h.rooms.Locate(domain.ParticipantID(pid))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not in a room"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"participantId": pid, "roomCode": code})
}

func (h *handlers) listRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.rooms.ListRooms()})
}

func (h *handlers) createRoom(c *gin.Context) {
	var req struct {
		RoomName      string `json:"roomName" binding:"required"`
		CreatorName   string `json:"creatorName" binding:"required"`
		CreatorAvatar string `json:"creatorAvatar"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.rooms.Create(req.RoomName, req.CreatorName, req.CreatorAvatar)
	if err != nil {
		writeError(c, err)
		return
	}
	remember(c, res.ParticipantID, res.RoomCode)
	c.JSON(http.StatusCreated, res)
}

func (h *handlers) roomState(c *gin.Context) {
	code := roomCode(c)
	snap, err := h.rooms.RoomState(code, participant(c, c.Query("participantId"), code))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *handlers) joinRoom(c *gin.Context) {
	var req struct {
		Name   string `json:"name" binding:"required"`
		Avatar string `json:"avatar"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	code := roomCode(c)
	res, err := h.rooms.Join(code, req.Name, req.Avatar)
	if err != nil {
		writeError(c, err)
		return
	}
	remember(c, res.ParticipantID, code)
	c.JSON(http.StatusOK, res)
}

func (h *handlers) addSong(c *gin.Context) {
	var req struct {
		ParticipantID string `json:"participantId"`
		Title         string `json:"title" binding:"required"`
		Artist        string `json:"artist"`
		AlbumArt      string `json:"albumArt"`
		Duration      int    `json:"duration" binding:"gte=0"`
		CatalogID     string `json:"catalogId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	code := roomCode(c)
	res, err := h.rooms.AddSong(code, participant(c, req.ParticipantID, code), domain.SongFields{
		Title:     req.Title,
		Artist:    req.Artist,
		AlbumArt:  req.AlbumArt,
		Duration:  req.Duration,
		CatalogID: req.CatalogID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *handlers) castVote(c *gin.Context) {
	var req struct {
		ParticipantID string `json:"participantId"`
		SongID        string `json:"songId" binding:"required"`
		Direction     string `json:"direction"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	code := roomCode(c)
	res, err := h.rooms.CastVote(code, participant(c, req.ParticipantID, code), domain.SongID(req.SongID), req.Direction)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) leaveRoom(c *gin.Context) {
	var req struct {
		ParticipantID string `json:"participantId"`
	}
	// An empty body means "use the session".
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	code := roomCode(c)
	res, err := h.rooms.Leave(code, participant(c, req.ParticipantID, code))
	if err != nil {
		writeError(c, err)
		return
	}
	forget(c)
	c.JSON(http.StatusOK, res)
}

func (h *handlers) subscribe(c *gin.Context) {
	code := roomCode(c)
	if err := h.rooms.Exists(code); err != nil {
		writeError(c, err)
		return
	}
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "adapters.http").Str("room", string(code)).Str("ct", c.GetString(clientTokenKey)).Msg("ws subscribe")
	h.hub.Attach(h.ctx, core.ChannelKey(code), ws)
}
