package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Skufu/saviour/internal/assess"
	"github.com/Skufu/saviour/internal/middleware"
	"github.com/Skufu/saviour/internal/patient"
	"github.com/Skufu/saviour/internal/risk"
)

// HealthChecker reports whether a dependency is usable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// recommenderStatus exposes the recommender's configuration error, if any.
type recommenderStatus struct {
	err error
}

func (s recommenderStatus) Ping(context.Context) error {
	return s.err
}

func setupRouter(svc *assess.Service, recommender HealthChecker, staticRoot string, logger zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		gin.Recovery(),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			MaxAge:       12 * time.Hour,
		}),
	)

	if fileExists(filepath.Join(staticRoot, "index.html")) {
		router.StaticFile("/", filepath.Join(staticRoot, "index.html"))
		router.Static("/static", staticRoot)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := recommender.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":          "degraded",
				"recommendations": "unavailable: " + err.Error(),
				"risk":            "ok",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"recommendations": "ok",
			"risk":            "ok",
		})
	})

	api := router.Group("/api")
	api.POST("/risk", func(c *gin.Context) {
		in, ok := bindPatient(c)
		if !ok {
			return
		}
		r := svc.Estimate(in)
		c.JSON(http.StatusOK, gin.H{
			"mortalityRisk":       r.MortalityRisk,
			"survivalProbability": r.SurvivalProbability(),
			"display":             r.Display(),
		})
	})

	api.GET("/risk/chart", func(c *gin.Context) {
		value, err := strconv.ParseFloat(c.Query("risk"), 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "risk must be a number between 0 and 1"})
			return
		}
		html, err := risk.RenderPie(value)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
	})

	api.POST("/assessments", func(c *gin.Context) {
		in, ok := bindPatient(c)
		if !ok {
			return
		}
		out := svc.Submit(c.Request.Context(), in)
		if out.Err != nil && !errors.Is(out.Err, assess.ErrEmptySymptoms) {
			_ = c.Error(out.Err)
		}
		c.JSON(http.StatusOK, out)
	})

	return router
}

// bindPatient decodes and validates the form payload, writing the error
// response itself when it returns false.
func bindPatient(c *gin.Context) (patient.Input, bool) {
	var payload patient.Input
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return payload, false
	}

	if err := patient.Validate(payload); err != nil {
		var verr *patient.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation_failed",
				"message": verr.Error(),
				"fields":  verr.Fields,
			})
			return payload, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return payload, false
	}

	return payload, true
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// detectStaticRoot looks for web/index.html next to the working directory
// and up to two parents.
func detectStaticRoot() string {
	startDir, err := os.Getwd()
	if err != nil {
		return "web"
	}

	candidates := []string{
		startDir,
		filepath.Dir(startDir),
		filepath.Dir(filepath.Dir(startDir)),
	}

	for _, dir := range candidates {
		web := filepath.Join(dir, "web")
		if fileExists(filepath.Join(web, "index.html")) {
			return web
		}
	}

	return filepath.Join(startDir, "web")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
