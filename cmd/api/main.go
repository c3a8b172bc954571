package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/KiWA001/kiwa-labs/internal/app"
	"github.com/KiWA001/kiwa-labs/internal/auth"
	"github.com/KiWA001/kiwa-labs/internal/completion"
	"github.com/KiWA001/kiwa-labs/internal/config"
	"github.com/KiWA001/kiwa-labs/internal/notify"
	"github.com/KiWA001/kiwa-labs/internal/search"
	"github.com/KiWA001/kiwa-labs/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	dataStore := store.NewPostgresStore(db)

	completer := completion.NewClient(completion.Config{
		BaseURL: cfg.CompletionBaseURL,
		APIKey:  cfg.CompletionAPIKey,
		Model:   cfg.CompletionModel,
	})

	gate, err := auth.NewGate(cfg.AdminPassword, cfg.AdminTokenSecret, cfg.AdminTokenTTL)
	if err != nil {
		log.Fatalf("admin gate setup failed: %v", err)
	}

	pgfts := search.NewPgFTS(db)
	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	searchService := search.NewService(meiliClient, pgfts)
	if meiliClient != nil {
		go searchService.ReindexAllFromPG(ctx)
	}

	var alertTo []string
	for _, addr := range strings.Split(cfg.HandoffAlertTo, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			alertTo = append(alertTo, addr)
		}
	}
	notifier := notify.NewService(notify.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
		AlertTo:  alertTo,
	})
	if !notifier.IsConfigured() {
		log.Printf("SMTP not configured, hand-off alerts disabled")
	}

	service := app.NewService(app.Deps{
		Store:     dataStore,
		Completer: completer,
		Gate:      gate,
		Search:    searchService,
		Notifier:  notifier,
	})

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("KiWA Labs API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
