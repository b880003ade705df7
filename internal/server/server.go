// Package server publishes the caregiver feed on localhost: the medication
// schedule as iCalendar, the patient card as vCard, the dose history as JSON
// and the Prometheus counters.
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/tartampluch/go-medreminder/internal/config"
	"github.com/tartampluch/go-medreminder/internal/engine"
)

// cacheItem stores one rendered resource and its validators.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // http.TimeFormat
}

// resource is a route whose body is swapped atomically on every publish.
type resource struct {
	mime  string
	cache atomic.Pointer[cacheItem]
}

// FeedServer serves the caregiver feed. Reads are lock-free: the UI
// publishes a new body and concurrent requests see either the old or the
// new one in full.
type FeedServer struct {
	Port    string
	Metrics http.Handler

	resources map[string]*resource
}

// NewFeedServer creates a server for port. metricsHandler may be nil, in
// which case /metrics is not routed.
func NewFeedServer(port string, metricsHandler http.Handler) *FeedServer {
	return &FeedServer{
		Port:    port,
		Metrics: metricsHandler,
		resources: map[string]*resource{
			config.RouteCalendar: {mime: config.MimeTextCalendar},
			config.RouteProfile:  {mime: config.MimeVCard},
			config.RouteHistory:  {mime: config.MimeJSON},
		},
	}
}

// Handler returns the router. Exposed for tests and embedding.
func (s *FeedServer) Handler() http.Handler {
	r := mux.NewRouter()
	for route, res := range s.resources {
		r.HandleFunc(route, s.serve(res))
	}
	if s.Metrics != nil {
		r.Handle(config.RouteMetrics, s.Metrics)
	}
	return r
}

// Start listens on localhost and blocks until ctx is cancelled.
func (s *FeedServer) Start(ctx context.Context) error {
	port := s.Port
	if port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)
	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil
	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update replaces the body served at route. An identical body keeps the
// previous validators so caregivers' caches stay warm.
func (s *FeedServer) Update(route string, data []byte) {
	res, ok := s.resources[route]
	if !ok {
		return
	}
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	if prev := res.cache.Load(); prev != nil && prev.etag == etag {
		return
	}

	res.cache.Store(&cacheItem{
		data:         data,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	})

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyRoute, route,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag)
}

// Publish renders every resource from the current records.
func (s *FeedServer) Publish(b *engine.FeedBuilder, p engine.UserProfile, meds []engine.Medication, history []engine.HistoryLog) error {
	ics, err := b.Build(meds)
	if err != nil {
		return err
	}
	card, err := engine.PatientCard(p)
	if err != nil {
		return err
	}
	if history == nil {
		history = []engine.HistoryLog{}
	}
	ledger, err := json.Marshal(history)
	if err != nil {
		return err
	}

	s.Update(config.RouteCalendar, ics)
	s.Update(config.RouteProfile, card)
	s.Update(config.RouteHistory, ledger)
	return nil
}

func (s *FeedServer) serve(res *resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set(config.HeaderAllow, config.AllowedMethods)
			http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
			return
		}

		item := res.cache.Load()
		if item == nil {
			w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
			http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
			return
		}

		h := w.Header()
		h.Set(config.HeaderContentType, res.mime)
		h.Set(config.HeaderXContentType, config.MimeNoSniff)
		h.Set(config.HeaderCacheControl, config.CacheControlPrivate)
		h.Set(config.HeaderETag, item.etag)
		h.Set(config.HeaderLastModified, item.lastModified)

		if notModified(r, item) {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		if r.Method == http.MethodGet {
			if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
				slog.Error(config.ErrWriteResp,
					config.LogKeyComponent, config.CompServer,
					config.LogKeyError, err)
			}
		}
	}
}

// notModified applies If-None-Match, then If-Modified-Since.
func notModified(r *http.Request, item *cacheItem) bool {
	if match := r.Header.Get(config.HeaderIfNoneMatch); match != "" {
		return match == item.etag
	}
	since := r.Header.Get(config.HeaderIfModifiedSince)
	if since == "" {
		return false
	}
	client, err := time.Parse(http.TimeFormat, since)
	if err != nil {
		return false
	}
	served, err := time.Parse(http.TimeFormat, item.lastModified)
	if err != nil {
		return false
	}
	return !served.After(client)
}
