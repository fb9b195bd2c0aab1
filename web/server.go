package web

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mogaika/fractal_browser/config"
	"github.com/mogaika/fractal_browser/export/snapshot"
	"github.com/mogaika/fractal_browser/scene"
	"github.com/mogaika/fractal_browser/status"
)

type Server struct {
	Scene     *scene.Scene
	Scheduler *scene.Scheduler
	Hub       *status.Hub

	// Config is the base for trees spawned over http, request bodies override it.
	Config   config.Config
	Snapshot snapshot.Options

	router *mux.Router
}

// NewServer wires the routes and forwards scene events to hub. scheduler and
// hub may be nil, the matching routes then answer with an error.
func NewServer(sc *scene.Scene, scheduler *scene.Scheduler, hub *status.Hub, cfg config.Config) *Server {
	s := &Server{
		Scene:     sc,
		Scheduler: scheduler,
		Hub:       hub,
		Config:    cfg,
		Snapshot:  snapshot.DefaultOptions(),
	}

	r := mux.NewRouter()
	r.HandleFunc("/json/scene", s.HandlerAjaxScene).Methods("GET")
	r.HandleFunc("/json/scene", s.HandlerSpawnTree).Methods("POST")
	r.HandleFunc("/json/scene/{tree}", s.HandlerAjaxTree).Methods("GET")
	r.HandleFunc("/json/scene/{tree}/stats", s.HandlerAjaxTreeStats).Methods("GET")
	r.HandleFunc("/json/scene/{tree}/node/{node}", s.HandlerAjaxNode).Methods("GET")
	r.HandleFunc("/action/pause", s.HandlerActionPause).Methods("POST")
	r.HandleFunc("/action/resume", s.HandlerActionResume).Methods("POST")
	r.HandleFunc("/action/{tree}/remove", s.HandlerActionRemoveTree).Methods("POST")
	r.HandleFunc("/action/{tree}/remove/{node}", s.HandlerActionRemoveNode).Methods("POST")
	r.HandleFunc("/dump/scene/{tree}/{node}", s.HandlerDumpNode).Methods("GET")
	r.HandleFunc("/export/{tree}/gltf", s.HandlerExportGltf).Methods("GET")
	r.HandleFunc("/export/{tree}/png", s.HandlerExportPng).Methods("GET")
	if hub != nil {
		r.Handle("/ws/status", hub)
	}
	s.router = r

	sc.Listen(s.publish)
	return s
}

func (s *Server) publish(ev scene.Event) {
	if s.Hub != nil {
		s.Hub.Publish(string(ev.Type), ev)
	}
}

func (s *Server) Handler() http.Handler {
	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(s.router)
	return handlers.LoggingHandler(os.Stdout, h)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func StartServer(addr string, s *Server) error {
	log.Printf("[web] Starting server %v", addr)
	return http.ListenAndServe(addr, s.Handler())
}
