package app

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/suxatcode/concentric-layout/db"
	"github.com/suxatcode/concentric-layout/internal/controller"
	"github.com/suxatcode/concentric-layout/layout"
	"github.com/suxatcode/concentric-layout/middleware"
	"golang.org/x/exp/slices"
)

const (
	defaultPNGWidth  = 900
	defaultPNGHeight = 900
)

// Server exposes layouts over HTTP: one-shot requests return the settled
// layout, the websocket endpoint streams snapshots and accepts interaction
// commands.
type Server struct {
	conf     Config
	ctrl     *controller.Controller
	forces   layout.ForceConfig
	upgrader websocket.Upgrader
}

func NewServer(conf Config, ctrl *controller.Controller, forces layout.ForceConfig) *Server {
	s := &Server{conf: conf, ctrl: ctrl, forces: forces}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(s.conf.AllowedOrigins, origin) || slices.Contains(s.conf.AllowedOrigins, "*")
}

func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.AddLogging)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.conf.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/health", s.health)
	router.Post("/getbestsubgraph", s.bestSubgraph)
	router.Route("/layout", func(r chi.Router) {
		r.Post("/", s.layout)
		r.Post("/png", s.layoutPNG)
		r.Get("/ws", s.layoutStream)
	})
	return router
}

// layoutRequest selects a dataset and optionally overrides single force
// parameters of the server's configuration.
type layoutRequest struct {
	Query  db.Query        `json:"query"`
	Forces json.RawMessage `json:"forces,omitempty"`
}

// forcesWith returns the server's forces with the given overrides applied.
func (s *Server) forcesWith(overrides json.RawMessage) (layout.ForceConfig, error) {
	return s.forces.WithOverrides(overrides)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// bestSubgraph answers the query with the raw dataset, without layout.
func (s *Server) bestSubgraph(w http.ResponseWriter, r *http.Request) {
	q := db.Query{}
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, r, http.StatusBadRequest, errors.Wrap(err, "invalid query"))
		return
	}
	ds, err := s.ctrl.Dataset(r.Context(), q)
	if err != nil {
		writeError(w, r, statusOf(err), err)
		return
	}
	writeJSON(w, r, http.StatusOK, ds)
}

func (s *Server) layout(w http.ResponseWriter, r *http.Request) {
	req := layoutRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, errors.Wrap(err, "invalid layout request"))
		return
	}
	forces, err := s.forcesWith(req.Forces)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	snap, stats, err := s.ctrl.Layout(r.Context(), req.Query, forces)
	if err != nil {
		writeError(w, r, statusOf(err), err)
		return
	}
	log.Ctx(r.Context()).Debug().Msgf("layout done after %d iterations", stats.Iterations)
	writeJSON(w, r, http.StatusOK, snap)
}

func (s *Server) layoutPNG(w http.ResponseWriter, r *http.Request) {
	req := layoutRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, errors.Wrap(err, "invalid layout request"))
		return
	}
	forces, err := s.forcesWith(req.Forces)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	session := s.ctrl.NewSession()
	_, err = session.RunFromSource(r.Context(), s.ctrl, req.Query, forces, func(layout.Snapshot) error { return nil })
	if err != nil {
		writeError(w, r, statusOf(err), err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if err := session.DrawPNG(w, defaultPNGWidth, defaultPNGHeight, false); err != nil {
		log.Ctx(r.Context()).Error().Msgf("failed to draw layout: %v", err)
	}
}

func statusOf(err error) int {
	dataErr := &layout.DataError{}
	if errors.As(err, &dataErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Ctx(r.Context()).Error().Msgf("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	log.Ctx(r.Context()).Error().Msgf("%v", err)
	writeJSON(w, r, status, map[string]string{"error": err.Error()})
}

// RunServer serves layouts until the listener fails.
func RunServer(conf Config, dbconf db.Config, forcesPath string) error {
	forces, err := LoadForceConfig(forcesPath)
	if err != nil {
		return err
	}
	sim, err := conf.SimulationConfig()
	if err != nil {
		return err
	}
	source, err := NewDataSource(dbconf)
	if err != nil {
		return err
	}
	server := http.Server{
		Addr:        ":" + conf.Port,
		Handler:     NewServer(conf, controller.NewController(source, sim), forces).Handler(),
		ReadTimeout: conf.HTTPTimeout,
	}
	log.Info().Msgf("serving layouts from '%s' on http://0.0.0.0:%s/", dbconf.DataSource, conf.Port)
	return server.ListenAndServe()
}
