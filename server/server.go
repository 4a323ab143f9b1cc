// Package server exposes the export documents over HTTP. Endpoint paths and
// payload shapes mirror the files downstream consumers already fetch, so the
// server can sit behind the same URLs the static exports used.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/relenghq/shipit/classify"
	"github.com/relenghq/shipit/config"
	"github.com/relenghq/shipit/export"
	"github.com/relenghq/shipit/model"
	"github.com/relenghq/shipit/store"
)

// Source loads the release and event collections a request operates on.
// Both the NATS-backed store and a file snapshot satisfy it.
type Source interface {
	ListReleases(ctx context.Context) ([]model.Release, error)
	ListEvents(ctx context.Context) ([]model.BuildEvent, error)
}

// SnapshotSource serves a fixed snapshot, for offline runs and tests.
type SnapshotSource struct {
	Snapshot *store.Snapshot
}

func (s SnapshotSource) ListReleases(ctx context.Context) ([]model.Release, error) {
	return s.Snapshot.Releases, nil
}

func (s SnapshotSource) ListEvents(ctx context.Context) ([]model.BuildEvent, error) {
	return s.Snapshot.Events, nil
}

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shipit_http_requests_total",
		Help: "HTTP requests served, by endpoint and status class.",
	}, []string{"endpoint", "status"})

	renderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shipit_export_render_seconds",
		Help:    "Time spent rendering export documents.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)

// historyFile matches export filenames like
// firefox_history_stability_releases.json.
var historyFile = regexp.MustCompile(`^([a-z]+)_history_([a-z]+)_releases\.json$`)

// Server renders export documents on demand from a Source. The config, and
// with it the exporter, can be swapped at runtime by the config watcher.
type Server struct {
	source Source
	logger *slog.Logger

	mu       sync.RWMutex
	cfg      *config.Config
	exporter *export.Exporter
}

// New creates a Server over the given configuration and data source.
func New(cfg *config.Config, source Source, logger *slog.Logger) *Server {
	return &Server{
		source:   source,
		logger:   logger.With("component", "server"),
		cfg:      cfg,
		exporter: export.New(cfg),
	}
}

// SetConfig swaps the active configuration. In-flight requests keep the
// exporter they started with.
func (s *Server) SetConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.exporter = export.New(cfg)
	s.logger.Info("Configuration reloaded",
		"current_esr", cfg.Releases.CurrentESRMajor,
		"next_esr", cfg.Releases.NextESRMajor)
}

func (s *Server) snapshot() (*config.Config, *export.Exporter) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.exporter
}

// RegisterHTTPHandlers wires all endpoints into the mux:
//
//	GET /json/<product>_history_<category>_releases.json
//	GET /json/firefox_versions.json
//	GET /json/mobile_versions.json
//	GET /json/mobile_details.json
//	GET /json/thunderbird_versions.json
//	GET /json/<product>_primary_builds.json
//	GET /json/l10n/<releaseName>.json
//	GET /json/regions.json
//	GET /json/regions/<region>.json
//	GET /releases/<name>/status
//	GET /healthz
//	GET /metrics
func (s *Server) RegisterHTTPHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/json/", s.handleJSON)
	mux.HandleFunc("/releases/", s.handleReleaseStatus)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer observeRender("json", time.Now())

	name := strings.TrimPrefix(r.URL.Path, "/json/")
	switch {
	case name == "firefox_versions.json":
		s.serveVersions(w, r, "firefox")
	case name == "mobile_versions.json", name == "mobile_details.json":
		s.serveVersions(w, r, "mobile")
	case name == "thunderbird_versions.json":
		s.serveVersions(w, r, "thunderbird")
	case strings.HasSuffix(name, "_primary_builds.json"):
		s.servePrimaryBuilds(w, r, strings.TrimSuffix(name, "_primary_builds.json"))
	case strings.HasPrefix(name, "l10n/") && strings.HasSuffix(name, ".json"):
		s.serveL10n(w, r, strings.TrimSuffix(strings.TrimPrefix(name, "l10n/"), ".json"))
	case name == "regions.json":
		s.serveRegionList(w, r)
	case strings.HasPrefix(name, "regions/"):
		s.serveRegionFile(w, r, strings.TrimPrefix(name, "regions/"))
	default:
		if m := historyFile.FindStringSubmatch(name); m != nil {
			s.serveHistory(w, r, m[1], m[2])
			return
		}
		s.notFound(w, "json")
	}
}

func (s *Server) serveHistory(w http.ResponseWriter, r *http.Request, product, categoryName string) {
	category, ok := historyCategory(categoryName)
	if !ok {
		s.notFound(w, "history")
		return
	}

	releases, err := s.source.ListReleases(r.Context())
	if err != nil {
		s.serverError(w, "history", err)
		return
	}

	_, exporter := s.snapshot()
	pairs, err := exporter.History(releases, urlProduct(product), category)
	if err != nil {
		s.notFound(w, "history")
		return
	}

	// The document is a version-to-date object ordered by shipped date.
	byVersion := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		byVersion[pair[0]] = pair[1]
	}
	data, err := export.MarshalSortedByValues(byVersion)
	if err != nil {
		s.serverError(w, "history", err)
		return
	}
	s.writeData(w, "history", data)
}

func (s *Server) serveVersions(w http.ResponseWriter, r *http.Request, kind string) {
	releases, err := s.source.ListReleases(r.Context())
	if err != nil {
		s.serverError(w, "versions", err)
		return
	}

	_, exporter := s.snapshot()
	var versions map[string]string
	switch kind {
	case "firefox":
		versions, err = exporter.FirefoxVersions(releases)
	case "mobile":
		versions, err = exporter.MobileVersions(releases)
	case "thunderbird":
		versions, err = exporter.ThunderbirdVersions(releases)
	}
	if err != nil {
		s.serverError(w, "versions", err)
		return
	}

	data, err := export.MarshalSortedByKeys(versions)
	if err != nil {
		s.serverError(w, "versions", err)
		return
	}
	s.writeData(w, "versions", data)
}

func (s *Server) servePrimaryBuilds(w http.ResponseWriter, r *http.Request, product string) {
	releases, err := s.source.ListReleases(r.Context())
	if err != nil {
		s.serverError(w, "primary_builds", err)
		return
	}

	_, exporter := s.snapshot()
	builds, err := exporter.PrimaryBuilds(releases, urlProduct(product))
	if err != nil {
		s.notFound(w, "primary_builds")
		return
	}

	data, err := export.MarshalSortedByKeys(builds)
	if err != nil {
		s.serverError(w, "primary_builds", err)
		return
	}
	s.writeData(w, "primary_builds", data)
}

func (s *Server) serveL10n(w http.ResponseWriter, r *http.Request, releaseName string) {
	releases, err := s.source.ListReleases(r.Context())
	if err != nil {
		s.serverError(w, "l10n", err)
		return
	}

	_, exporter := s.snapshot()
	doc, err := exporter.LocaleExport(releases, releaseName)
	if err != nil {
		if errors.Is(err, model.ErrInvalidChangesetFormat) {
			s.serverError(w, "l10n", err)
			return
		}
		s.notFound(w, "l10n")
		return
	}

	data, err := export.MarshalSortedByKeys(doc)
	if err != nil {
		s.serverError(w, "l10n", err)
		return
	}
	s.writeData(w, "l10n", data)
}

func (s *Server) serveRegionList(w http.ResponseWriter, r *http.Request) {
	cfg, _ := s.snapshot()
	files, err := export.RegionFiles(cfg.HTTP.RegionsDir)
	if err != nil {
		s.serverError(w, "regions", err)
		return
	}

	data, err := export.MarshalSortedByKeys(files)
	if err != nil {
		s.serverError(w, "regions", err)
		return
	}
	s.writeData(w, "regions", data)
}

func (s *Server) serveRegionFile(w http.ResponseWriter, r *http.Request, name string) {
	// Region names are flat file names; reject anything path-like.
	if name != filepath.Base(name) || !strings.HasSuffix(name, ".json") {
		s.notFound(w, "regions")
		return
	}

	cfg, _ := s.snapshot()
	data, err := os.ReadFile(filepath.Join(cfg.HTTP.RegionsDir, name))
	if err != nil {
		s.notFound(w, "regions")
		return
	}
	s.writeData(w, "regions", data)
}

// handleReleaseStatus serves GET /releases/<name>/status. The withEvents
// query parameter attaches the raw event rows.
func (s *Server) handleReleaseStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer observeRender("status", time.Now())

	rest := strings.TrimPrefix(r.URL.Path, "/releases/")
	releaseName, ok := strings.CutSuffix(rest, "/status")
	if !ok || releaseName == "" || strings.Contains(releaseName, "/") {
		s.notFound(w, "status")
		return
	}

	releases, err := s.source.ListReleases(r.Context())
	if err != nil {
		s.serverError(w, "status", err)
		return
	}
	events, err := s.source.ListEvents(r.Context())
	if err != nil {
		s.serverError(w, "status", err)
		return
	}

	var expectedPlatforms []string
	for _, rel := range releases {
		if rel.Name == releaseName {
			expectedPlatforms = rel.PlatformList()
			break
		}
	}

	_, exporter := s.snapshot()
	withEvents := r.URL.Query().Get("withEvents") != ""
	doc := exporter.Status(releaseName, events, expectedPlatforms, withEvents)

	data, err := export.MarshalSortedByKeys(doc)
	if err != nil {
		s.serverError(w, "status", err)
		return
	}
	s.writeData(w, "status", data)
}

func observeRender(endpoint string, start time.Time) {
	renderDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func (s *Server) writeData(w http.ResponseWriter, endpoint string, data []byte) {
	requestsTotal.WithLabelValues(endpoint, "200").Inc()
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		s.logger.Debug("Failed to write response", "endpoint", endpoint, "error", err)
	}
}

func (s *Server) notFound(w http.ResponseWriter, endpoint string) {
	requestsTotal.WithLabelValues(endpoint, "404").Inc()
	http.Error(w, "Not found", http.StatusNotFound)
}

func (s *Server) serverError(w http.ResponseWriter, endpoint string, err error) {
	requestsTotal.WithLabelValues(endpoint, "500").Inc()
	s.logger.Error("Request failed", "endpoint", endpoint, "error", err)
	http.Error(w, "Internal error", http.StatusInternalServerError)
}

// urlProduct maps a URL product segment to a product name. The mobile
// exports historically use "mobile" for fennec.
func urlProduct(name string) string {
	if name == "mobile" {
		return string(model.ProductFennec)
	}
	return name
}

// historyCategory maps a history filename segment to a category. The
// development exports historically spell the dev channel out.
func historyCategory(name string) (classify.Category, bool) {
	switch name {
	case "major":
		return classify.CategoryMajor, true
	case "stability":
		return classify.CategoryStability, true
	case "development":
		return classify.CategoryDev, true
	case "esr":
		return classify.CategoryESR, true
	default:
		return "", false
	}
}
