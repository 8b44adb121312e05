/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the budget engine server: configuration,
  dependency wiring, and graceful shutdown.

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: budget.db)
           Use ":memory:" for an in-memory database

ENVIRONMENT:
  GEMINI_API_KEY  Enables the AI advisor when set (loaded from .env too).
                  Without it the advisor endpoints return 503; everything
                  else works normally.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, drain active requests
  (30s timeout), close the database, exit.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/warp/budget-engine/advisor"
	"github.com/warp/budget-engine/api"
	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/logger"
	"github.com/warp/budget-engine/session"
	"github.com/warp/budget-engine/store/sqlite"
)

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "budget.db", "SQLite database path")
	flag.Parse()

	log := logger.New()

	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	st, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer st.Close()

	clock := budget.SystemClock{}
	sessions := session.New(st, clock, log)

	var adv advisor.Advisor
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		adv = advisor.NewGemini(key)
		log.Info().Msg("AI advisor enabled")
	} else {
		log.Info().Msg("GEMINI_API_KEY not set; advisor endpoints disabled")
	}

	handler := api.NewHandler(sessions, clock, adv, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", *port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server stopped")
}
