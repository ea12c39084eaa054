package main

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	html "github.com/gofiber/template/html/v2"

	"modiesel/internal/api"
	"modiesel/internal/config"
	"modiesel/internal/http/handlers"
	"modiesel/internal/observability"
	"modiesel/internal/sale"
	"modiesel/internal/session"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	ctx := context.Background()
	shutdownTracing, err := observability.Init(ctx, "modiesel-dashboard")
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	store, err := session.OpenStore(cfg.SessionDSN)
	if err != nil {
		log.Fatal(err)
	}
	gate, err := session.NewGate(ctx, store)
	if err != nil {
		log.Fatal(err)
	}

	flows := sale.NewRegistry()

	// Any 401 from the backend tears the session down, no matter which
	// handler triggered the call; open compose flows die with it.
	apiClient := api.New(cfg.APIBaseURL, gate.Token, func() {
		gate.Invalidate(context.Background())
		flows.DropAll()
	})

	engine := html.New("./web/templates", ".html")
	app := handlers.NewApp(handlers.NewDeps(apiClient, gate, flows), gate, engine)

	log.Fatal(app.Listen(":" + cfg.Port))
}
