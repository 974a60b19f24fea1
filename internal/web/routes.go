package web

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/constants"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/web/handlers"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/web/middleware"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/web/static"
)

func (s *Server) setupRoutes() {
	// Create handlers
	sessionHandler := handlers.NewSessionHandler(s.sessionManager)
	configHandler := handlers.NewConfigHandler(s.config)
	bookHandler := handlers.NewBookHandler(s.config, s.sessionManager, s.uploads, s.previews, s.events)
	previewHandler := handlers.NewPreviewHandler(s.handoff)
	filesHandler := handlers.NewFilesHandler(s.uploads)

	// Health check (no session required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// Uploaded files belong to an existing session
	s.router.With(middleware.RequireSession(s.sessionManager)).
		Get("/api/v1/files/{id}", filesHandler.Get)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.WithSession(s.sessionManager))

		// Session
		r.Get("/session", sessionHandler.Status)
		r.Delete("/session", sessionHandler.Reset)

		// Config
		r.Get("/config", configHandler.Get)

		// Edit view
		r.Route("/book", func(r chi.Router) {
			r.Get("/", bookHandler.Get)
			r.Get("/events", bookHandler.Events)

			// Pages and cells
			r.Post("/pages", bookHandler.ConfirmPages)
			r.Put("/pages/{page}/grid", bookHandler.SetGrid)
			r.Post("/pages/{page}/swap", bookHandler.SwapCells)
			r.With(httprate.LimitByIP(s.config.Upload.RateLimit, time.Minute)).
				Put("/pages/{page}/cells/{cell}/file", bookHandler.Upload)
			r.Delete("/pages/{page}/cells/{cell}/file", bookHandler.ClearCell)
			r.Put("/pages/{page}/cells/{cell}/fit", bookHandler.SetFit)

			// Table of contents
			r.Put("/toc/page", bookHandler.SetTOCPage)
			r.Put("/toc/count", bookHandler.SetTOCCount)
			r.Put("/toc/entries/{index}", bookHandler.SetTOCEntry)

			// Social links
			r.Post("/socials", bookHandler.AddSocial)
			r.Post("/socials/pages", bookHandler.AddSocialPage)
			r.Delete("/socials/pages/{page}", bookHandler.RemoveSocialPage)
			r.Put("/socials/all-pages", bookHandler.SetAllSocialPages)
			r.Delete("/socials/{name}", bookHandler.RemoveSocial)
			r.Put("/socials/{name}/link", bookHandler.SetSocialLink)

			// Buttons
			r.Post("/buttons", bookHandler.AddButton)
			r.Delete("/buttons/{page}", bookHandler.RemoveButton)

			// Live flipbook
			r.Get("/view", bookHandler.View)
			r.Get("/view/pages/{page}", bookHandler.PageView)
			r.Post("/navigate", bookHandler.Navigate)

			// Handoff to the preview view
			r.Post("/preview", previewHandler.Publish)
		})

		// Preview view
		r.Get("/preview", previewHandler.Get)
		r.Post("/preview/navigate", previewHandler.Navigate)
		r.Get("/preview/payload", previewHandler.Payload)
		r.Put("/preview/payload", previewHandler.PutPayload)
	})

	// Serve static files for frontend (SPA). The preview view is a client
	// route of the same app.
	s.router.Get(constants.PreviewPath, s.serveSPA)
	s.router.Get("/*", s.serveSPA)
}

// contentTypes maps static asset extensions to their Content-Type.
var contentTypes = map[string]string{
	".html":  "text/html; charset=utf-8",
	".css":   "text/css; charset=utf-8",
	".js":    "application/javascript; charset=utf-8",
	".json":  "application/json",
	".svg":   "image/svg+xml",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".ico":   "image/x-icon",
	".woff2": "font/woff2",
	".woff":  "font/woff",
}

func contentTypeFor(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		if ct, ok := contentTypes[strings.ToLower(path[i:])]; ok {
			return ct
		}
	}
	return "application/octet-stream"
}

// serveSPA serves the single-page application
func (s *Server) serveSPA(w http.ResponseWriter, r *http.Request) {
	if static.HasDist() {
		fs := static.GetFileSystem()
		path := r.URL.Path
		if path == "/" {
			path = "/index.html"
		}

		f, err := fs.Open(path)
		if err == nil {
			defer f.Close()

			stat, err := f.Stat()
			if err == nil && !stat.IsDir() {
				w.Header().Set("Content-Type", contentTypeFor(path))

				// Add cache headers for static assets
				if strings.HasPrefix(path, "/assets/") {
					w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
				}

				w.WriteHeader(http.StatusOK)
				io.Copy(w, f)
				return
			}
		}

		// For SPA routing, serve index.html for non-asset paths
		if !strings.HasPrefix(path, "/assets/") {
			indexFile, err := fs.Open("/index.html")
			if err == nil {
				defer indexFile.Close()
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(http.StatusOK)
				io.Copy(w, indexFile)
				return
			}
		}
	}

	// Fallback: return placeholder page if no frontend is built
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>Flipbook</title>
    <style>
        body { font-family: system-ui, sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; background: #f4f1ea; color: #333; }
        .container { text-align: center; }
        h1 { color: #8b5e34; }
        a { color: #8b5e34; }
        code { background: #e8e2d6; padding: 2px 8px; border-radius: 4px; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Flipbook Editor</h1>
        <p>Frontend is not built yet. Build it into <code>internal/web/static/dist</code>.</p>
        <p>API is available at <a href="/api/v1/health">/api/v1/health</a></p>
    </div>
</body>
</html>`))
}
