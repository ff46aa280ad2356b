package web

import (
	"net/http"
	"strings"

	"github.com/example/faultloc-lite/internal/storage"
)

// Server serves stored sweep results over HTTP.
type Server struct {
	handlers *Handlers
	mux      *http.ServeMux
}

// NewServer creates a new results server. A nil metrics handler leaves
// /metrics unregistered.
func NewServer(store storage.Storage, metrics http.Handler) *Server {
	s := &Server{
		handlers: NewHandlers(store),
		mux:      http.NewServeMux(),
	}
	s.setupRoutes(metrics)
	return s
}

func (s *Server) setupRoutes(metrics http.Handler) {
	// Trailing slash enables prefix matching for /api/runs/{id}/statistics.
	s.mux.HandleFunc("/api/runs/", s.corsMiddleware(s.routeRuns))
	s.mux.HandleFunc("/api/models/", s.corsMiddleware(s.getOnly(s.handlers.ListModels)))
	s.mux.HandleFunc("/api/algorithms/", s.corsMiddleware(s.getOnly(s.handlers.ListAlgorithms)))
	if metrics != nil {
		s.mux.Handle("/metrics", metrics)
	}

	s.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" && r.URL.Path != "/index.html" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(indexHTML))
	})
}

// routeRuns routes requests to the appropriate handler based on the path
func (s *Server) routeRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/runs")

	switch {
	case path == "" || path == "/":
		s.handlers.ListRuns(w, r)
	case strings.HasSuffix(path, "/statistics"):
		s.handlers.GetStatistics(w, r)
	default:
		s.handlers.GetRun(w, r)
	}
}

func (s *Server) getOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

// corsMiddleware adds CORS headers to responses
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// Handler returns the HTTP handler for the server
func (s *Server) Handler() http.Handler {
	return s.mux
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>faultloc results</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            max-width: 800px;
            margin: 60px auto;
            color: #333;
        }
        h1 { color: #2563eb; }
        code {
            background: #f3f4f6;
            padding: 2px 8px;
            border-radius: 4px;
        }
        li { margin: 8px 0; }
    </style>
</head>
<body>
    <h1>faultloc results</h1>
    <ul>
        <li><a href="/api/runs/"><code>/api/runs/</code></a> runs, filter with <code>?sweep=</code> <code>?outcome=</code> <code>?limit=</code> <code>?offset=</code></li>
        <li><code>/api/runs/{id}</code> one run with its evaluation</li>
        <li><code>/api/runs/{id}/statistics</code> per-iteration statistics</li>
        <li><a href="/api/models/"><code>/api/models/</code></a> registered models</li>
        <li><a href="/api/algorithms/"><code>/api/algorithms/</code></a> strategy configurations</li>
        <li><a href="/metrics"><code>/metrics</code></a> Prometheus metrics</li>
    </ul>
</body>
</html>
`
