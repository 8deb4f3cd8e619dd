// Package api exposes a small HTTP introspection surface over a running
// actor system. It is meant to be mounted on an ops port next to the
// metrics handler, not on the application's own API.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/codewandler/troupe-go/core/system"
)

// Config configures the handler.
type Config struct {
	// System is the registry to expose. Required.
	System *system.System
	Log    *slog.Logger
}

type actorInfo struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

// NewHandler returns the introspection handler:
//
//	GET    /healthz          liveness probe
//	GET    /actors           all registered actors, in spawn order
//	GET    /actors/{id}      one actor
//	DELETE /actors/{id}      request a graceful stop (202, async)
//
// Actor IDs may contain slashes (keyed groups), so {id} spans the rest of
// the path.
func NewHandler(cfg Config) http.Handler {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	sys := cfg.System

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /actors", func(w http.ResponseWriter, r *http.Request) {
		refs := sys.Refs()
		out := make([]actorInfo, 0, len(refs))
		for _, ref := range refs {
			out = append(out, actorInfo{ID: ref.ID(), State: ref.State().String()})
		}
		writeJSON(w, http.StatusOK, out)
	})

	mux.HandleFunc("GET /actors/{id...}", func(w http.ResponseWriter, r *http.Request) {
		ref, ok := sys.Lookup(r.PathValue("id"))
		if !ok {
			http.Error(w, "actor not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, actorInfo{ID: ref.ID(), State: ref.State().String()})
	})

	mux.HandleFunc("DELETE /actors/{id...}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		ref, ok := sys.Lookup(id)
		if !ok {
			http.Error(w, "actor not found", http.StatusNotFound)
			return
		}
		ref.Stop()
		log.Info("stop requested via api", slog.String("actor", id))
		w.WriteHeader(http.StatusAccepted)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
