package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"time"

	"github.com/fwojciec/webindex"
)

// ShutdownTimeout is the time given to in-flight requests on shutdown.
const ShutdownTimeout = 1 * time.Second

// Server exposes crawl runs over HTTP. Crawls execute synchronously within
// the request; callers receive the run's result summary as JSON.
type Server struct {
	ln     net.Listener
	server *http.Server
	mux    *http.ServeMux

	Addr    string
	Service webindex.CrawlService
	Logger  *slog.Logger
}

// NewServer returns a new instance of Server.
func NewServer() *Server {
	s := &Server{
		server: &http.Server{},
		mux:    http.NewServeMux(),
	}
	s.server.Handler = s.mux

	s.mux.HandleFunc("POST /crawl", s.handleCrawl)
	s.mux.HandleFunc("POST /crawl/sitemap", s.handleSitemap)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	return s
}

// Open begins listening on the configured address. Serving happens on a
// background goroutine; use Close to stop.
func (s *Server) Open() (err error) {
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	go func() {
		if err := s.server.Serve(s.ln); err != nil && err != http.ErrServerClosed {
			s.logger().Error("http server terminated", "err", err)
		}
	}()
	return nil
}

// Close gracefully shuts the server down.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// URL returns the base URL the server is reachable at. Only valid after Open.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

type crawlRequest struct {
	Source string   `json:"source"`
	URLs   []string `json:"urls"`
}

type sitemapRequest struct {
	Source  string   `json:"source"`
	BaseURL string   `json:"baseUrl"`
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	var req crawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.error(w, webindex.Errorf(webindex.EINVALID, "invalid request body: %v", err))
		return
	}
	if len(req.URLs) == 0 {
		s.error(w, webindex.Errorf(webindex.EINVALID, "urls required"))
		return
	}

	result, err := s.Service.RunCrawl(r.Context(), req.Source, req.URLs)
	if err != nil {
		s.error(w, err)
		return
	}
	s.respond(w, http.StatusOK, result)
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	var req sitemapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.error(w, webindex.Errorf(webindex.EINVALID, "invalid request body: %v", err))
		return
	}
	if req.BaseURL == "" {
		s.error(w, webindex.Errorf(webindex.EINVALID, "baseUrl required"))
		return
	}

	filter, err := compileFilter(req.Include, req.Exclude)
	if err != nil {
		s.error(w, err)
		return
	}

	result, err := s.Service.RunSitemap(r.Context(), req.Source, req.BaseURL, filter)
	if err != nil {
		s.error(w, err)
		return
	}
	s.respond(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func compileFilter(include, exclude []string) (*webindex.URLFilter, error) {
	if len(include) == 0 && len(exclude) == 0 {
		return nil, nil
	}

	filter := &webindex.URLFilter{}
	for _, p := range include {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, webindex.Errorf(webindex.EINVALID, "invalid include pattern %q: %v", p, err)
		}
		filter.Include = append(filter.Include, re)
	}
	for _, p := range exclude {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, webindex.Errorf(webindex.EINVALID, "invalid exclude pattern %q: %v", p, err)
		}
		filter.Exclude = append(filter.Exclude, re)
	}
	return filter, nil
}

func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger().Error("encoding response", "err", err)
	}
}

// error writes an application error as a JSON response, translating the
// error code to an HTTP status.
func (s *Server) error(w http.ResponseWriter, err error) {
	code := webindex.ErrorCode(err)
	status := errorStatus(code)
	if status >= 500 {
		s.logger().Error("request failed", "code", code, "err", err)
	}
	s.respond(w, status, map[string]string{
		"code":  code,
		"error": webindex.ErrorMessage(err),
	})
}

func errorStatus(code string) int {
	switch code {
	case webindex.EINVALID:
		return http.StatusBadRequest
	case webindex.ENOTFOUND:
		return http.StatusNotFound
	case webindex.ERATELIMIT:
		return http.StatusTooManyRequests
	case webindex.ECANCELED:
		return 499 // client closed request
	case webindex.EUNAVAILABLE:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
