package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wireboard-server/internal/config"
)

// NewServer builds the HTTP server: health check, WebSocket relay endpoint and
// the authenticated room REST API.
func NewServer(hub SessionHub, authn Authenticator, rooms RoomService, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	ws := NewWSHandler(hub, authn, WSOptions{
		MaxMessageBytes: cfg.MaxMessageBytes,
		EventsPerMinute: cfg.EventsPerMinute,
		OriginPatterns:  cfg.AllowedOrigins,
	}, logger)

	api := router.Group("/api")
	api.Use(AuthMiddleware(authn, logger))

	roomHandlers := NewRoomHandlers(rooms, logger)
	api.GET("/rooms/:code/messages", roomHandlers.History)
	api.GET("/rooms/:code/board", roomHandlers.GetBoard)
	api.PUT("/rooms/:code/board", roomHandlers.SaveBoard)

	// /ws stays off the gin router: its writer refuses the upgrade hijack.
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", ws)
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
