package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"oasis-map/internal/backend"
	"oasis-map/internal/layout"
	"oasis-map/internal/logger"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	level := flag.String("log-level", "info", "debug, info, warn or error")
	seed := flag.Bool("seed", true, "start with a few sample oases")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logger.ParseLevel(*level)}))
	if err := run(*addr, *seed, log); err != nil {
		fmt.Fprintln(os.Stderr, "oasisd:", err)
		os.Exit(1)
	}
}

func run(addr string, seed bool, log *slog.Logger) error {
	var initial []layout.Remote
	if seed {
		initial = []layout.Remote{
			{ID: "sample-1", Title: "Travel phrases", Language: "es"},
			{ID: "sample-2", Title: "Kitchen words", Language: "fr"},
			{ID: "sample-3", Title: "Verbs of motion", Language: "de"},
		}
	}
	h := backend.NewHandler(backend.NewStore(initial...), log)
	srv := &http.Server{Addr: addr, Handler: h.Routes(), ReadHeaderTimeout: 5 * time.Second}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	go func() {
		<-ctx.Done()
		shutdown, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutdown)
	}()

	log.Info("oasisd: listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
