// Package solveapi is the HTTP control plane for the solver: it queues
// solve runs, streams their progress over a websocket, persists results,
// and manages webhook subscriptions.
package solveapi

import (
	"context"
	"log"
	"os"
	"strings"

	"golang.org/x/time/rate"

	"github.com/arenadelta/pdptw-solver/internal/bestknown"
	"github.com/arenadelta/pdptw-solver/internal/config"
	"github.com/arenadelta/pdptw-solver/internal/notify"
	"github.com/arenadelta/pdptw-solver/internal/runstore"
)

// Server holds every dependency the HTTP handlers need.
type Server struct {
	Store      runstore.Store
	Pub        *notify.Publisher
	Broker     EventBroker
	BestKnown  bestknown.Store
	Limiter    *rate.Limiter
	Defaults   config.SolverDefaults
}

// NewServer wires a Server from environment-derived configuration. With no
// DATABASE_URL it falls back to an in-memory store; with no REDIS_URL it
// falls back to an in-memory broker.
func NewServer(svc config.ServiceConfig) (*Server, error) {
	var store runstore.Store
	if strings.TrimSpace(svc.DatabaseURL) == "" {
		store = runstore.NewMemory()
	} else {
		pg, err := runstore.NewPostgres(svc.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if os.Getenv("DB_MIGRATE") != "false" {
			if err := pg.Migrate(context.Background(), "db/migrations"); err != nil {
				log.Printf("migrate: %v", err)
			}
		}
		store = pg
	}

	var broker EventBroker
	if strings.TrimSpace(svc.RedisURL) != "" {
		if rb, err := NewRedisBroker(svc.RedisURL); err == nil {
			broker = rb
		} else {
			log.Printf("redis broker unavailable, falling back to in-memory: %v", err)
			broker = NewBroker()
		}
	} else {
		broker = NewBroker()
	}

	defaults, err := config.LoadSolverDefaults("config/solver.yaml")
	if err != nil {
		log.Printf("solver defaults: %v", err)
	}

	return &Server{
		Store:     store,
		Pub:       notify.NewPublisher(store),
		Broker:    broker,
		BestKnown: bestknown.Embedded{},
		Limiter:   rate.NewLimiter(rate.Limit(svc.RateRPS), svc.RateBurst),
		Defaults:  defaults,
	}, nil
}

// NewNotifyWorker builds the background webhook delivery worker for s.
func (s *Server) NewNotifyWorker(svc config.ServiceConfig) *notify.Worker {
	return notify.NewWorker(s.Store, svc.RateRPS, svc.RateBurst)
}
