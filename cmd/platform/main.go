package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"

	"github.com/JunMin765677/wallet-server/internal/api"
	"github.com/JunMin765677/wallet-server/internal/config"
	"github.com/JunMin765677/wallet-server/internal/core/services"
	"github.com/JunMin765677/wallet-server/internal/db"
	"github.com/JunMin765677/wallet-server/internal/gateways"
	"github.com/JunMin765677/wallet-server/internal/health"
	"github.com/JunMin765677/wallet-server/internal/log"
	"github.com/JunMin765677/wallet-server/internal/repositories"
	"github.com/JunMin765677/wallet-server/pkg/cache"
	client "github.com/JunMin765677/wallet-server/pkg/http"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Error(context.Background(), "cannot load config", "err", err)
		return
	}

	ctx, cancel := context.WithCancel(log.NewContext(context.Background(), cfg.Log.Level, cfg.Log.Mode, os.Stdout))
	defer cancel()

	if err := cfg.Sanitize(); err != nil {
		log.Error(ctx, "there are errors in the configuration", "err", err)
		return
	}

	storage, err := db.NewStorage(cfg.Database.URL)
	if err != nil {
		log.Error(ctx, "cannot connect to database", "err", err)
		return
	}
	defer func() {
		if err := storage.Close(); err != nil {
			log.Error(ctx, "error closing database connection", "err", err)
		}
	}()

	cacheClient, rdb, err := cache.NewCacheClient(ctx, *cfg)
	if err != nil {
		log.Error(ctx, "cannot initialize the cache", "err", err)
		return
	}

	pingers := []health.Ping{storage.Pgx}
	if rdb != nil {
		pingers = append(pingers, health.RedisPinger{Client: rdb})
	}

	walletHTTP := client.NewClient(http.Client{Timeout: cfg.Wallet.Timeout})
	verifierHTTP := client.NewClient(http.Client{Timeout: cfg.Verifier.Timeout})
	wallet := gateways.NewWalletClient(walletHTTP, cfg.Wallet)
	verifier := gateways.NewVerifierClient(verifierHTTP, cfg.Verifier)

	personRepo := repositories.NewPerson()
	templateRepo := repositories.NewTemplate()
	eligibilityRepo := repositories.NewEligibility()
	issuedVCRepo := repositories.NewIssuedVC()
	issuanceLogRepo := repositories.NewIssuanceLog()
	verificationLogRepo := repositories.NewVerificationLog()
	batchSessionRepo := repositories.NewBatchSession()
	sessionRepo := repositories.NewSessionCached(cacheClient, cfg.Windows.SessionTokenExpiry)
	statsRepo := repositories.NewStats(db.NewSqlx(cfg.Database.URL))

	issuanceService := services.NewIssuance(storage.Pgx, personRepo, templateRepo, eligibilityRepo, issuedVCRepo, issuanceLogRepo, wallet, services.NewRandomBenefitPicker(), cfg.Windows.IssuanceClaim)
	verificationService := services.NewVerification(storage.Pgx, personRepo, issuedVCRepo, verificationLogRepo, batchSessionRepo, verifier, cfg.Windows.Verification, cfg.Windows.BatchSession, cfg.ServerUrl)
	revocationService := services.NewRevocation(storage.Pgx, issuedVCRepo, eligibilityRepo, wallet)

	server := api.NewServer(storage.Pgx, health.New(pingers...), personRepo, sessionRepo, issuanceService, verificationService, revocationService, statsRepo)

	mux := chi.NewRouter()
	mux.Use(
		chimiddleware.RequestID,
		chimiddleware.Recoverer,
		cors.AllowAll().Handler,
		log.ChiMiddleware(ctx),
	)
	server.Routes(mux)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info(ctx, "server started", "port", cfg.ServerPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "starting http server", "err", err)
		}
	}()

	<-quit
	log.Info(ctx, "shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "shutting down http server", "err", err)
	}
}
