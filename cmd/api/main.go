package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brokerhub/campaigns-backend/api/routes"
	"github.com/brokerhub/campaigns-backend/internal/config"
	"github.com/brokerhub/campaigns-backend/internal/handlers"
	"github.com/brokerhub/campaigns-backend/internal/repositories"
	mongorepo "github.com/brokerhub/campaigns-backend/internal/repositories/mongodb"
	"github.com/brokerhub/campaigns-backend/internal/services"
	"github.com/brokerhub/campaigns-backend/pkg/cache"
	"github.com/brokerhub/campaigns-backend/pkg/mongodb"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present; real deployments configure via environment
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	// Repositories
	var campaignRepo repositories.CampaignRepository = mongorepo.NewCampaignRepository(db)
	var policyRepo repositories.PolicyRepository = mongorepo.NewPolicyRepository(db)
	var linkRepo repositories.PolicyLinkRepository = mongorepo.NewPolicyLinkRepository(db)
	var userRepo repositories.UserRepository = mongorepo.NewUserRepository(db)

	// Progress engine: every trigger site shares this one pipeline
	progressCache := cache.New(cfg.Progress.CacheTTL)
	calculator := services.NewProgressCalculator(linkRepo, services.ProgressOptions{
		DisplayAggregation: services.DisplayAggregation(cfg.Progress.DisplayAggregation),
	})
	reconciler := services.NewStatusReconciler()
	recalcService := services.NewRecalculationService(campaignRepo, calculator, reconciler, progressCache)

	// Services
	authService := services.NewAuthService(userRepo, cfg)
	campaignService := services.NewCampaignService(campaignRepo, recalcService, progressCache)
	policyService := services.NewPolicyService(policyRepo, linkRepo, campaignRepo, recalcService)

	// Handlers
	handlerDeps := routes.HandlerDependencies{
		AuthHandler:     handlers.NewAuthHandler(authService),
		CampaignHandler: handlers.NewCampaignHandler(campaignService, recalcService),
		PolicyHandler:   handlers.NewPolicyHandler(policyService),
	}

	router := routes.SetupRouter(cfg, handlerDeps)

	// Background sweep keeps progress consistent when synchronous triggers
	// fail; cancelled on shutdown.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	sweeper := services.NewSweeper(recalcService, cfg.Progress.SweepInterval)
	sweeper.Start(sweepCtx)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	log.Printf("Server starting on port %s", cfg.Server.Port)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}
