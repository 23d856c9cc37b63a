// Package web serves the daily work-status form and the on-demand sync button.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sitesync/sites-sync/logging"
	"github.com/sitesync/sites-sync/notify"
	"github.com/sitesync/sites-sync/sites"
	"github.com/sitesync/sites-sync/syncer"
)

//go:embed html
var HTML embed.FS

const tag = "web"

var ErrNoMessenger = errors.New("messaging bot is not configured")

type Store interface {
	Sites(ctx context.Context) ([]sites.Site, error)
}

type Messenger interface {
	Send(ctx context.Context, text string) error
}

// SyncFunc runs one sync of the worksheet into the table.
type SyncFunc func(ctx context.Context) (syncer.Result, error)

type Server struct {
	store     Store
	messenger Messenger
	sync      SyncFunc
	registry  *prometheus.Registry
	router    *chi.Mux
	page      *template.Template
	now       func() time.Time
}

type page struct {
	Info       string
	Error      string
	Sites      []string
	Labour     []string
	Categories []string
	Selected   notify.Status
}

// NewServer wires the handlers. messenger may be nil if no bot is configured,
// in which case status submissions are rejected.
func NewServer(store Store, messenger Messenger, run SyncFunc, registry *prometheus.Registry) (*Server, error) {
	t, err := template.ParseFS(HTML, "html/index.html")
	if err != nil {
		return nil, err
	}

	s := Server{
		store:     store,
		messenger: messenger,
		sync:      run,
		registry:  registry,
		router:    chi.NewRouter(),
		page:      t,
		now:       time.Now,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestLogger)

	s.router.Get("/", s.handleIndex)
	s.router.Post("/status", s.handleStatus)
	s.router.Post("/sync", s.handleSync)

	if registry != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	return &s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, rq *http.Request) {
	s.router.ServeHTTP(w, rq)
}

// ListenAndServe serves until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, address string) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)

	go func() {
		logging.Infof(tag, "listening on %v", address)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err

	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdown); err != nil {
			return err
		}

		return nil
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, rq *http.Request) {
	p := s.load(rq.Context())

	s.render(w, http.StatusOK, p)
}

func (s *Server) handleStatus(w http.ResponseWriter, rq *http.Request) {
	if err := rq.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	status := notify.Status{
		Site:     strings.TrimSpace(rq.PostForm.Get("site")),
		Labour:   strings.TrimSpace(rq.PostForm.Get("labour")),
		Category: strings.TrimSpace(rq.PostForm.Get("category")),
		Text:     rq.PostForm.Get("text"),
		Date:     s.now(),
	}

	p := s.load(rq.Context())
	p.Selected = status

	if err := status.Validate(); err != nil {
		p.Error = err.Error()
		s.render(w, http.StatusBadRequest, p)
		return
	}

	if s.messenger == nil {
		p.Error = ErrNoMessenger.Error()
		s.render(w, http.StatusServiceUnavailable, p)
		return
	}

	if err := s.messenger.Send(rq.Context(), status.Message()); err != nil {
		logging.Warnf(tag, "%v", err)
		p.Error = fmt.Sprintf("Error sending status (%v)", err)
		s.render(w, http.StatusBadGateway, p)
		return
	}

	logging.Infof(tag, "sent %v status for %q", status.Category, status.Site)

	p.Info = "Status sent"
	p.Selected.Text = ""
	s.render(w, http.StatusOK, p)
}

func (s *Server) handleSync(w http.ResponseWriter, rq *http.Request) {
	result, err := s.sync(rq.Context())

	p := s.load(rq.Context())

	if err != nil {
		logging.Warnf(tag, "sync %v: %v", result.ID, err)
		p.Error = fmt.Sprintf("Sync failed (%v)", err)
	} else {
		logging.Infof(tag, "%v", result)
		p.Info = fmt.Sprintf("Synced %v rows", result.Synced)
	}

	s.render(w, http.StatusOK, p)
}

// load reads the distinct site and labour names for the form. A read failure is
// shown on the page rather than failing the request.
func (s *Server) load(ctx context.Context) page {
	p := page{
		Sites:      []string{},
		Labour:     []string{},
		Categories: notify.Categories,
		Selected: notify.Status{
			Category: notify.WorkDone,
		},
	}

	list, err := s.store.Sites(ctx)
	if err != nil {
		logging.Warnf(tag, "%v", err)
		p.Error = fmt.Sprintf("Error reading sites (%v)", err)
		return p
	}

	p.Sites = distinct(list, func(s sites.Site) *string { return s.SiteName })
	p.Labour = distinct(list, func(s sites.Site) *string { return s.LabourName })

	return p
}

func (s *Server) render(w http.ResponseWriter, status int, p page) {
	var b bytes.Buffer
	if err := s.page.Execute(&b, p); err != nil {
		logging.Errorf(tag, "%v", err)
		http.Error(w, "Error formatting page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(b.Bytes())
}

func distinct(list []sites.Site, field func(sites.Site) *string) []string {
	set := map[string]bool{}
	for _, s := range list {
		if v := field(s); v != nil && strings.TrimSpace(*v) != "" {
			set[strings.TrimSpace(*v)] = true
		}
	}

	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}

	sort.Strings(values)

	return values
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, rq *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, rq.ProtoMajor)

		next.ServeHTTP(ww, rq)

		logging.Debugf(tag, "%v %v %v %v (%v)", middleware.GetReqID(rq.Context()), rq.Method, rq.URL.Path, ww.Status(), time.Since(start))
	})
}
