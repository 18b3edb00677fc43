package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ateliersoft/gpao/internal/auth"
	"github.com/ateliersoft/gpao/internal/httpapi"
	"github.com/ateliersoft/gpao/internal/obs"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	secret := os.Getenv("GPAO_AUTH_SECRET")
	if secret == "" {
		log.Fatal("GPAO_AUTH_SECRET is required")
	}
	dsn := os.Getenv("GPAO_PG_DSN")
	if dsn == "" {
		log.Fatal("GPAO_PG_DSN is required")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	cfg := auth.Config{
		Secret:      []byte(secret),
		SessionTTL:  time.Duration(envInt("GPAO_SESSION_DAYS", 7)) * 24 * time.Hour,
		MaxSessions: envInt("GPAO_MAX_SESSIONS", 5),
	}

	opts := []auth.Option{}
	var cache *auth.RedisSessionCache
	if addr := os.Getenv("GPAO_REDIS_ADDR"); addr != "" {
		cache = auth.NewRedisSessionCache(addr)
		opts = append(opts, auth.WithSessionCache(cache))
	}

	svc, err := auth.NewService(auth.NewPGStore(db), cfg, opts...)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, svc)

	addr := os.Getenv("GPAO_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting gpao-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if cache != nil {
		_ = cache.Close()
	}
	_ = db.Close()
	log.Println("Stopped")
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Fatalf("%s: invalid value %q", key, raw)
	}
	return n
}
