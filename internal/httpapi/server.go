// Package httpapi exposes the certificate pipeline over HTTP.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	certify "github.com/apontes/go-certify"
)

// Issuer runs the certificate pipeline. Satisfied by *certify.Service.
type Issuer interface {
	Issue(ctx context.Context, req certify.Request) (*certify.PublicationResult, error)
}

// Config holds transport settings.
type Config struct {
	Debug      bool
	EnableCORS bool
}

// Server routes HTTP requests to the issuance pipeline.
type Server struct {
	engine *gin.Engine
	issuer Issuer
	log    *slog.Logger
}

// issueRequest is the JSON trigger body. All fields are required; a
// malformed body fails before any pipeline step runs.
type issueRequest struct {
	ID    string `json:"id" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Grade string `json:"grade" binding:"required"`
}

// NewServer creates the HTTP server around an issuer.
func NewServer(issuer Issuer, log *slog.Logger, cfg Config) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	if cfg.EnableCORS {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
		engine.Use(cors.New(corsConfig))
	}

	s := &Server{engine: engine, issuer: issuer, log: log}
	s.routes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.health)
	s.engine.POST("/certificates", s.issue)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) issue(c *gin.Context) {
	var body issueRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id, name and grade are required"})
		return
	}

	start := time.Now()
	res, err := s.issuer.Issue(c.Request.Context(), certify.Request{
		ID:    body.ID,
		Name:  body.Name,
		Grade: body.Grade,
	})
	if err != nil {
		status := statusForError(err)
		s.log.Error("certificate issuance failed",
			"id", body.ID,
			"status", status,
			"err", err,
		)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	s.log.Info("certificate issued",
		"id", body.ID,
		"key", res.ObjectKey,
		"took", time.Since(start),
	)
	c.JSON(http.StatusCreated, gin.H{
		"message": "certificate issued successfully",
		"url":     res.PublicURL,
	})
}

// statusForError maps pipeline error kinds to HTTP statuses. Store and
// object-store faults are upstream dependency failures; everything else in
// the taxonomy is internal.
func statusForError(err error) int {
	switch {
	case errors.Is(err, certify.ErrEmptyIdentity):
		return http.StatusBadRequest
	case errors.Is(err, certify.ErrRecordStore), errors.Is(err, certify.ErrPublish):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
