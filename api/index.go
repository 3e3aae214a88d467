package handler

import (
	"context"
	"net/http"
	"sync"

	"github.com/wadjakorntonsri/linkpage/pkg/app"
	"github.com/wadjakorntonsri/linkpage/pkg/config"
)

var (
	once    sync.Once
	mux     http.Handler
	initErr error
)

// build runs on the first request. Serverless instances are reused, so the
// store and cache live as long as the instance does.
func build() {
	cfg, err := config.Load()
	if err != nil {
		initErr = err
		return
	}
	log, err := app.NewLogger(cfg)
	if err != nil {
		initErr = err
		return
	}

	// On Vercel the local sqlite file is ephemeral; point DATABASE_URL at Turso or Postgres.
	a, err := app.New(context.Background(), cfg, log)
	if err != nil {
		log.Error(err, "startup failed")
		initErr = err
		return
	}
	mux = a.Handler
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(build)
	if initErr != nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	mux.ServeHTTP(w, r)
}
