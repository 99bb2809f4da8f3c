// Package api exposes the plate pipeline over HTTP.
//
//	POST /api/v1/lpr/process-image   {"image_base64": "..."}
//	GET  /api/v1/lpr/backends
//	GET  /healthz
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ironsheep/plate-tools-mcp/internal/pipeline"
)

// NewRouter builds the gin engine serving p. Request logging is enabled when
// debug is set.
func NewRouter(p *pipeline.Pipeline, debug bool) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if debug {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	lpr := NewLPRHandler(p)
	v1 := r.Group("/api/v1")
	{
		lprRoutes := v1.Group("/lpr")
		lprRoutes.POST("/process-image", lpr.ProcessImage)
		lprRoutes.GET("/backends", lpr.Backends)
	}

	return r
}

// ListenAndServe serves h on addr until ctx is done, then shuts the server
// down, waiting up to 10 seconds for requests in flight.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("HTTP API listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down HTTP API...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
