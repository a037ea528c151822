// Package web serves the planner's HTML pages and JSON API over gin.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/digit2ai/CRM-Co-Pilot/internal/planner"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed assets/*
var assetsFS embed.FS

// DefaultPort is used when StartOpts.Port is unset.
const DefaultPort = 5000

// StartOpts holds configuration for the web server.
type StartOpts struct {
	DB          *gorm.DB
	Service     *planner.Service // built from DB when nil
	Port        int
	CORSOrigins []string // empty allows any origin
	Mode        string   // gin mode; release when empty
	Logger      *slog.Logger
	Out         io.Writer
}

// NewHandler builds the router with middleware, templates and routes, wrapped
// in the CORS handler.
func NewHandler(opts StartOpts) (http.Handler, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("web: db is required")
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	svc := opts.Service
	if svc == nil {
		svc = planner.New(opts.DB, nil, planner.WithLogger(log))
	}
	mode := opts.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(log))

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("web: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	registerRoutes(router, opts.DB, svc)
	registerAPI(router, opts.DB, svc)

	return newCORS(opts.CORSOrigins).Handler(router), nil
}

// Start launches the HTTP server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Port <= 0 {
		opts.Port = DefaultPort
	}
	handler, err := NewHandler(opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Planner running at http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web: %w", err)
	}
	return nil
}

func newCORS(origins []string) *cors.Cors {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	})
}

// parseTemplates loads the embedded HTML templates.
func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format("2006-01-02") },
	"pct":  func(v float64) string { return fmt.Sprintf("%.2f%%", v) },
}
