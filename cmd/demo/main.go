// Command demo wires a servlet, the net/http container binding, and the
// Prometheus metrics registry into a runnable HTTP server. It exists to give
// the rest of this module a real process to run, not as a production
// entrypoint.
package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robertvazan/hookless-servlets/config"
	"github.com/robertvazan/hookless-servlets/container/nethttp"
	hookless "github.com/robertvazan/hookless-servlets/http"
	"github.com/robertvazan/hookless-servlets/reactive"
	"github.com/robertvazan/hookless-servlets/servlet"
)

func main() {
	addr := flag.String("addr", ":8080", "address to listen on")
	debug := flag.Bool("debug", false, "log guarded container exceptions")
	flag.Parse()

	logger := log.Default()

	s := servlet.New().
		Get(func(r *hookless.Request) *hookless.Response {
			return hookless.NewResponse().String("ok")
		}).
		Post(func(r *hookless.Request) *hookless.Response {
			return hookless.NewResponse().Bytes(r.Data())
		})

	cfg := config.Default()
	cfg.Logger = logger
	cfg.Debug = *debug

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", &nethttp.Handler{
		Servlet:   s,
		Evaluator: reactive.PollEvaluator{},
		Config:    cfg,
	})

	server := &http.Server{
		Addr:         *addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Timeouts.Task + 5*time.Second,
	}

	logger.Printf("listening on %s", *addr)
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal(err)
	}
}
