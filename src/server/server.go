// Package server provides the debug/metrics HTTP surface: a small
// read-only observability layer over the sketch engine, built on
// gorilla/mux and a SO_REUSEPORT listener. It is not a signature-interop
// format and not a CLI.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/libp2p/go-reuseport"
	logger "github.com/sirupsen/logrus"

	"github.com/mashing-pumpkins/gosketch/src/sketch"
)

// SketchLookup resolves a previously registered sketch id to its current
// frozen snapshot, used by /debug/sketch/{id}.
type SketchLookup func(id string) (*sketch.Frozen, bool)

// DebugServer exposes /healthz, /debug/sketch/{id}, and (when a metrics
// handler is attached) /metrics over a gorilla/mux router on a
// go-reuseport listener, so the debug port survives a process restart.
type DebugServer struct {
	addr   string
	router *mux.Router
	lookup SketchLookup

	mu       sync.Mutex
	listener net.Listener
	srv      *http.Server
}

// New constructs a DebugServer bound to addr (e.g. "0.0.0.0:8080") that
// resolves sketch ids through lookup.
func New(addr string, lookup SketchLookup) *DebugServer {
	d := &DebugServer{addr: addr, router: mux.NewRouter(), lookup: lookup}
	d.router.HandleFunc("/healthz", d.handleHealthz).Methods(http.MethodGet)
	d.router.HandleFunc("/debug/sketch/{id}", d.handleDebugSketch).Methods(http.MethodGet)
	return d
}

// AddMetricsHandler attaches an arbitrary handler (typically
// promhttp.HandlerFor wrapping a PrometheusSink's registry) at /metrics.
// Calling it is optional; a server with no Prometheus sink wired simply
// never registers the route.
func (d *DebugServer) AddMetricsHandler(h http.Handler) {
	d.router.Handle("/metrics", h).Methods(http.MethodGet)
}

// AddDebugHandler registers an additional read-only debug endpoint at
// path, for ad hoc introspection routes.
func (d *DebugServer) AddDebugHandler(path string, h http.HandlerFunc) {
	d.router.HandleFunc(path, h).Methods(http.MethodGet)
}

func (d *DebugServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type sketchDebugView struct {
	K         int    `json:"k"`
	M         int    `json:"m"`
	Len       int    `json:"len"`
	NVisited  uint64 `json:"nvisited"`
	TopK      bool   `json:"top_k"`
	HashFunID string `json:"hashfun_id"`
}

func (d *DebugServer) handleDebugSketch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	f, ok := d.lookup(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	view := sketchDebugView{
		K:         f.K(),
		M:         f.M(),
		Len:       f.Len(),
		NVisited:  f.NVisited(),
		TopK:      f.IsTopK(),
		HashFunID: f.HashFunID(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(view); err != nil {
		logger.Warnf("server: failed to encode debug view for %s: %v", id, err)
	}
}

// Start binds a SO_REUSEPORT listener on addr and begins serving in the
// background. A restarted process can bind the same port before the old
// process has released it, so in-flight scrapes against the old process
// keep completing instead of failing with connection refused.
func (d *DebugServer) Start() error {
	ln, err := reuseport.Listen("tcp", d.addr)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.listener = ln
	d.srv = &http.Server{Handler: d.router}
	srv := d.srv
	d.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Errorf("server: debug server stopped serving: %v", err)
		}
	}()
	return nil
}

// Stop gracefully shuts the debug server down.
func (d *DebugServer) Stop(ctx context.Context) error {
	d.mu.Lock()
	srv := d.srv
	d.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
