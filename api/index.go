package handler

import (
	"net/http"
	"sync"

	"elc/config"
	"elc/di"
	"elc/shared/logger"
	elcHTTP "elc/transport/http"
)

var (
	once   sync.Once
	server *elcHTTP.HTTP
)

// Handler is the serverless entry point. The dependency graph is built once
// per warm instance.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger()

		logger.SetLogLevel(cfg)

		server, _ = di.InitializeService()
	})

	server.ServeHTTP(w, r)
}
