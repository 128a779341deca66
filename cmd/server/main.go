package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/hcm-console/project-factory/internal/api"
	"github.com/hcm-console/project-factory/internal/bus"
	"github.com/hcm-console/project-factory/internal/clients"
	"github.com/hcm-console/project-factory/internal/config"
	"github.com/hcm-console/project-factory/internal/db"
	"github.com/hcm-console/project-factory/internal/middleware"
	"github.com/hcm-console/project-factory/internal/processor"
	"github.com/hcm-console/project-factory/internal/repository"
)

func main() {
	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup database connection
	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	// Run migrations
	if err := db.RunMigrations("./migrations", cfg.Database); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create repositories
	rowRepo := repository.NewRowRepository(conn.Pool)
	mappingRepo := repository.NewMappingRepository(conn.Pool)

	// Persistence pipe: processors push row batches here, a background
	// worker applies them through the repositories.
	producer := bus.NewStoreProducer(rowRepo, mappingRepo, 0)
	defer producer.Close()

	// Downstream service clients
	httpClient := clients.NewHTTPClient(cfg.Processing.HTTPTimeout)
	cache := clients.NewCache(cfg.Processing.CacheTTL)

	campaigns := clients.NewCampaignService(httpClient, cfg.Downstream.CampaignSearchURL)
	boundaries := clients.NewBoundaryService(httpClient, cfg.Downstream.BoundaryRelationshipURL, cache)
	schemas := clients.NewSchemaService(httpClient, cfg.Downstream.MDMSSearchURL, cache)
	projects := clients.NewProjectService(httpClient, cfg.Downstream.ProjectCreateURL, cfg.Downstream.ProjectUpdateURL, cfg.Downstream.ProjectSearchURL)
	facilities := clients.NewFacilityService(httpClient, cfg.Downstream.FacilityCreateURL)
	employees := clients.NewEmployeeService(httpClient, cfg.Downstream.EmployeeCreateURL)

	encrypter, err := clients.NewAESEncrypter(cfg.Processing.EncryptionSecret)
	if err != nil {
		log.Fatalf("Failed to initialize credential encryption: %v", err)
	}

	// Reconciliation engines
	settle := processor.SettlePolicy{Floor: cfg.Processing.SettleFloor, PerRow: cfg.Processing.SettlePerRow}
	reconciler := processor.NewReconciler(rowRepo, producer,
		processor.WithBatchSize(cfg.Processing.BatchSize),
		processor.WithSettlePolicy(settle),
	)
	mapper := processor.NewMappingReconciler(mappingRepo, rowRepo, producer,
		processor.WithMappingBatchSize(cfg.Processing.BatchSize),
		processor.WithMappingSettlePolicy(settle),
	)

	// Resource processors
	registry := processor.NewRegistry(
		processor.NewBoundaryProcessor(reconciler, boundaries, schemas, projects),
		processor.NewFacilityProcessor(reconciler, boundaries, schemas, facilities, mapper),
		processor.NewUserProcessor(reconciler, schemas, employees, encrypter),
	)

	// HTTP surface
	service := api.NewService(campaigns, registry, rowRepo)
	handler := api.NewHTTPHandler(service)

	mux := http.NewServeMux()
	handler.Register(mux)

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      corsHandler.Handler(middleware.LoggingMiddleware(middleware.TenantMiddleware(mux))),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting project factory server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
