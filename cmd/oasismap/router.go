package main

import (
	"log/slog"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"oasis-map/internal/config"
)

// router opens oasis detail routes. Absolute http(s) routes open in the
// browser; relative ones are only logged.
type router struct {
	cfg config.Config
	log *slog.Logger
}

func (r *router) OpenDetail(id string) {
	route := r.cfg.DetailRoute(id)
	r.log.Info("open detail", "id", id, "route", route)
	if strings.HasPrefix(route, "http://") || strings.HasPrefix(route, "https://") {
		rl.OpenURL(route)
	}
}
