// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/hoofbeat/paddock/internal/auth"
	"github.com/hoofbeat/paddock/internal/cache"
	"github.com/hoofbeat/paddock/internal/database"
	"github.com/hoofbeat/paddock/internal/handlers"
	"github.com/hoofbeat/paddock/internal/middleware"
)

func main() {
	auth.Init()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	if os.Getenv("PG_HOST") != "" {
		database.ConnectDB()
	} else {
		logger.Warn("PG_HOST not set; running without persistence, guest stats will not be saved")
	}

	if err := cache.ConnectRedis(); err != nil {
		logger.Warnf("redis unavailable, session event log disabled: %v", err)
		cache.Rdb = nil
	}

	mux := http.NewServeMux()

	// user endpoints
	mux.HandleFunc("/user/create", handlers.CreateUserHandler)
	mux.HandleFunc("/user/login", handlers.LoginHandler)
	mux.HandleFunc("/user/claim", handlers.ClaimEphemeralHandler)
	mux.HandleFunc("/user/stats", handlers.UserStatsHandler)

	// session engine
	ss := handlers.NewSessionServer()

	mux.Handle("/session/create", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.CreateSessionHandler(ss),
	)))
	mux.Handle("/session/ws/", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.SessionWSHandler(ss),
	)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
