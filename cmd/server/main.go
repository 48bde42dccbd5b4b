// Command server runs the HTTP control plane for queuing and tracking
// solve runs.
package main

import (
	"log"
	"net/http"
	"time"

	"github.com/arenadelta/pdptw-solver/internal/config"
	"github.com/arenadelta/pdptw-solver/internal/metrics"
	"github.com/arenadelta/pdptw-solver/internal/solveapi"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	svcCfg := config.LoadServiceConfig()

	srv, err := solveapi.NewServer(svcCfg)
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/solves", srv.SolvesHandler)
	mux.HandleFunc("/v1/solves/", routeSolveByID(srv))
	mux.HandleFunc("/v1/subscriptions", srv.SubscriptionsHandler)
	mux.HandleFunc("/v1/subscriptions/", srv.SubscriptionByIDHandler)
	mux.HandleFunc("/healthz", srv.HealthHandler)
	mux.HandleFunc("/readyz", srv.ReadyHandler)

	metrics.RegisterDefault()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	handler := solveapi.LogRequests(solveapi.RecordMetrics(srv.RateLimit(mux)))

	addr := ":" + svcCfg.Port
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	worker := srv.NewNotifyWorker(svcCfg)
	worker.Start()
	defer close(worker.Stop)

	log.Printf("solve API listening on %s", addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// routeSolveByID dispatches /v1/solves/{id} to the JSON handler and
// /v1/solves/{id}/ws to the websocket handler.
func routeSolveByID(srv *solveapi.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.Path) > 3 && r.URL.Path[len(r.URL.Path)-3:] == "/ws" {
			srv.SolveWSHandler(w, r)
			return
		}
		srv.SolveByIDHandler(w, r)
	}
}
