// Package server implements the Settings API HTTP surface (§4.8): the
// read/write path for the upload pipeline's runtime configuration.
// Authorization, CSRF, and session handling are left to a host
// application's middleware chain; this package only registers plain
// gin.HandlerFunc routes.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/settings"
)

// Config holds server configuration.
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server is the Settings API HTTP server.
type Server struct {
	config     *Config
	router     *gin.Engine
	store      settings.Store
	httpClient *http.Client
}

// NewServer builds a Server backed by store.
func NewServer(config *Config, store settings.Store) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	s := &Server{
		config:     config,
		router:     router,
		store:      store,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	admin := s.router.Group("/admin/uploads/settings")
	{
		admin.GET("", s.handleGetSettings)
		admin.PUT("", s.handlePutSettings)
		admin.OPTIONS("", s.handleOptions)
		admin.POST("/reset-prompts", s.handleResetPrompts)
		admin.POST("/test", s.handleTestConnection)
	}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with a custom server or tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

func (s *Server) handleOptions(c *gin.Context) {
	c.Header("Access-Control-Allow-Methods", "GET, PUT, POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
	c.Status(http.StatusNoContent)
}

func (s *Server) handleGetSettings(c *gin.Context) {
	ctx := c.Request.Context()
	all, err := s.store.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list settings"})
		return
	}

	wire := make([]SettingWire, 0, len(all))
	for _, s := range all {
		if !settings.IsRecognized(settings.Key(s.Key)) {
			continue
		}
		wire = append(wire, toWire(s))
	}
	c.JSON(http.StatusOK, GetSettingsResponse{Settings: wire})
}

func (s *Server) handlePutSettings(c *gin.Context) {
	var req PutSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	existing, err := s.store.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load existing settings"})
		return
	}

	var skipped []string
	incoming := make([]settings.Setting, 0, len(req.Settings))
	for _, entry := range req.Settings {
		if !settings.IsRecognized(settings.Key(entry.Key)) {
			skipped = append(skipped, entry.Key)
			continue
		}
		incoming = append(incoming, settings.Setting{Key: entry.Key, Value: entry.Value})
	}

	merged, changed := settings.Merge(existing, incoming)
	if len(changed) == 0 {
		c.JSON(http.StatusOK, PutSettingsResponse{Success: true, Updated: []string{}, Skipped: skipped})
		return
	}

	changedSet := make(map[string]bool, len(changed))
	for _, key := range changed {
		changedSet[key] = true
	}

	now := time.Now().UTC()
	toWrite := make([]settings.Setting, 0, len(changed))
	for _, m := range merged {
		if !changedSet[m.Key] {
			continue
		}
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		m.UpdatedAt = now
		toWrite = append(toWrite, m)
	}

	preview := settings.NewMemStore()
	if _, err := preview.Upsert(ctx, merged); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to validate settings"})
		return
	}
	if _, err := settings.Load(ctx, preview); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if _, err := s.store.Upsert(ctx, toWrite); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to save settings"})
		return
	}

	c.JSON(http.StatusOK, PutSettingsResponse{Success: true, Updated: changed, Skipped: skipped})
}

func (s *Server) handleResetPrompts(c *gin.Context) {
	ctx := c.Request.Context()
	prompts, err := settings.ResetPrompts(ctx, s.store)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to reset prompts"})
		return
	}
	c.JSON(http.StatusOK, ResetPromptsResponse{Success: true, Message: "prompts reset to defaults", Prompts: prompts})
}

func (s *Server) handleTestConnection(c *gin.Context) {
	var req settings.TestConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Model == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "model is required"})
		return
	}

	result := settings.TestConnection(c.Request.Context(), s.httpClient, req)
	c.JSON(http.StatusOK, TestConnectionResponse{
		Ok:      result.Ok,
		Message: result.Message,
		Error:   result.Error,
		Detail:  result.Detail,
	})
}
