// Package web is the HTTP surface: a server-rendered page per visitor and a
// POST-redirect-GET route for every user action.
package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"idcard/internal/app"
	"idcard/internal/auth"
	"idcard/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"inputs": inputs,
}).ParseFS(templateFS, "templates/*.html"))

// Options configures the HTTP surface.
type Options struct {
	MaxUploadBytes     int64
	VisitorSigningKey  string
	VisitorTTL         time.Duration
	SecureCookies      bool
	SettingsCloseDelay time.Duration
}

// Server renders workspaces and routes user actions to them.
type Server struct {
	registry *app.Registry
	backend  storage.Backend
	logger   *slog.Logger
	opts     Options
}

// New creates the server.
func New(registry *app.Registry, backend storage.Backend, logger *slog.Logger, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Server{registry: registry, backend: backend, logger: logger, opts: opts}
}

// Register mounts every route on r.
func (s *Server) Register(r *gin.Engine) {
	r.SetHTMLTemplate(templates)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", s.healthz)

	g := r.Group("/", auth.VisitorAuth(s.opts.VisitorSigningKey, s.opts.VisitorTTL, s.opts.SecureCookies), s.limitBody())

	g.GET("/", s.index)
	g.GET("/preview/card", s.previewCard)
	g.GET("/previews/:id", s.previewImage)

	g.POST("/register", s.register)
	g.POST("/register/photo", s.selectPhoto)
	g.POST("/register/confirm", s.command(func(*gin.Context) app.Command { return app.ConfirmRegistration{} }))
	g.POST("/register/cancel", s.command(func(*gin.Context) app.Command { return app.CancelRegistration{} }))

	g.POST("/login/open", s.command(func(*gin.Context) app.Command { return app.OpenLogin{} }))
	g.POST("/login/close", s.command(func(*gin.Context) app.Command { return app.CloseLogin{} }))
	g.POST("/login", s.command(func(c *gin.Context) app.Command {
		return app.Login{Username: c.PostForm("username"), Password: c.PostForm("password")}
	}))
	g.POST("/logout", s.command(func(*gin.Context) app.Command { return app.Logout{} }))

	a := g.Group("/admin")
	a.POST("/refresh", s.command(func(*gin.Context) app.Command { return app.Refresh{} }))
	a.POST("/students/:id/select", s.command(func(c *gin.Context) app.Command {
		return app.SelectUpload{StudentID: c.Param("id")}
	}))
	a.POST("/students/:id/upload", s.uploadIDCard)
	a.POST("/students/:id/upload/cancel", s.command(func(*gin.Context) app.Command { return app.CancelUpload{} }))
	a.POST("/students/:id/delete", s.command(func(c *gin.Context) app.Command {
		return app.RequestDelete{StudentID: c.Param("id")}
	}))
	a.POST("/delete/confirm", s.command(func(*gin.Context) app.Command { return app.ConfirmDelete{} }))
	a.POST("/delete/cancel", s.command(func(*gin.Context) app.Command { return app.CancelDelete{} }))
	a.POST("/notice/ack", s.command(func(*gin.Context) app.Command { return app.Acknowledge{} }))
	a.POST("/settings/open", s.command(func(*gin.Context) app.Command { return app.OpenSettings{} }))
	a.POST("/settings/close", s.command(func(*gin.Context) app.Command { return app.CloseSettings{} }))
	a.POST("/settings/save", s.saveSettings)
	a.GET("/students/export", s.exportRoster)
}

func (s *Server) healthz(c *gin.Context) {
	storageHealthy := s.backend.Healthy(c.Request.Context())
	status := http.StatusOK
	if !storageHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "storage": storageHealthy, "workspaces": s.registry.Len()})
}

// limitBody caps request bodies so uploads cannot exhaust memory.
func (s *Server) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > s.opts.MaxUploadBytes {
			c.String(http.StatusRequestEntityTooLarge, "upload too large")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)
		}
		c.Next()
	}
}

func (s *Server) workspace(c *gin.Context) *app.Workspace {
	return s.registry.Get(c.Request.Context(), auth.VisitorID(c))
}

// command dispatches the built command and redirects back to the page.
// Outcomes are shown by the page itself, so dispatch errors are not surfaced here.
func (s *Server) command(build func(c *gin.Context) app.Command) gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = s.workspace(c).Dispatch(c.Request.Context(), build(c))
		c.Redirect(http.StatusSeeOther, "/")
	}
}
