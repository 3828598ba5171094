// Package server exposes the document engine over HTTP.
package server

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SvenSonnborn/e-invoice-processor/internal/model"
	"github.com/SvenSonnborn/e-invoice-processor/pkg/einvoice"
)

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server represents the HTTP API server
type Server struct {
	config *Config
	router *gin.Engine
	engine *einvoice.Engine
}

// NewServer creates a new API server around an existing engine.
func NewServer(config *Config, engine *einvoice.Engine) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	s := &Server{
		config: config,
		router: router,
		engine: engine,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/generate/xrechnung", s.handleGenerateXRechnung)
		v1.POST("/generate/zugferd", s.handleGenerateZugferd)

		v1.POST("/validate/xrechnung", s.handleValidateXRechnung)
		v1.POST("/validate/zugferd", s.handleValidateZugferd)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleGenerateXRechnung(c *gin.Context) {
	var stored model.StoredInvoice
	if err := c.ShouldBindJSON(&stored); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid invoice payload: " + err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	result, err := s.engine.GenerateXRechnung(ctx, &stored)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, GenerateXMLResponse{
		XML:        result.XML,
		Validation: result.Validation,
	})
}

func (s *Server) handleGenerateZugferd(c *gin.Context) {
	var stored model.StoredInvoice
	if err := c.ShouldBindJSON(&stored); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid invoice payload: " + err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
	defer cancel()

	export, err := s.engine.GenerateZugferdFromStored(ctx, &stored)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if c.Query("download") == "1" {
		c.Header("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
		c.Data(http.StatusOK, "application/pdf", export.PDF)
		return
	}

	c.JSON(http.StatusOK, GenerateZugferdResponse{
		Filename:   export.Filename,
		Metadata:   export.Metadata,
		Validation: export.Validation,
		PDFBase64:  base64.StdEncoding.EncodeToString(export.PDF),
	})
}

func (s *Server) handleValidateXRechnung(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	result, err := s.engine.ValidateXRechnung(ctx, string(body))
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.writeValidation(c, result)
}

func (s *Server) handleValidateZugferd(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
	defer cancel()

	result, err := s.engine.ValidateZugferd(ctx, body)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.writeValidation(c, result)
}

func (s *Server) writeValidation(c *gin.Context, result *model.ValidationResult) {
	status := http.StatusOK
	if !result.Valid {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, ValidationResponse{
		Valid:  result.Valid,
		Issues: result.Issues,
	})
}

func (s *Server) writeError(c *gin.Context, err error) {
	var genErr *model.GenerationError
	if errors.As(err, &genErr) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: genErr.Message, Details: genErr.Details})
		return
	}

	var valErr *model.ValidationFailure
	if errors.As(err, &valErr) {
		c.JSON(http.StatusUnprocessableEntity, ValidationResponse{
			Valid:  false,
			Issues: valErr.Result.Issues,
		})
		return
	}

	var cfgErr *model.ConfigurationError
	if errors.As(err, &cfgErr) {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: cfgErr.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}
