package main

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/peoplekit/hradmin/internal/application/services"
	"github.com/peoplekit/hradmin/internal/config"
	"github.com/peoplekit/hradmin/internal/infrastructure/database"
	"github.com/peoplekit/hradmin/internal/infrastructure/hrapi"
	"github.com/peoplekit/hradmin/internal/infrastructure/persistence"
	"github.com/peoplekit/hradmin/internal/interfaces/middleware"
	"github.com/peoplekit/hradmin/internal/interfaces/rest"
	"github.com/peoplekit/hradmin/pkg/expression"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Audit store: MySQL when a DSN is configured, no-op otherwise
	var (
		auditSink    services.AuditSink
		auditHandler *rest.AuditHandler
	)
	if cfg.AuditDSN != "" {
		db, err := database.Open(context.Background(), cfg.AuditDSN)
		if err != nil {
			log.Fatalf("Failed to connect to audit database: %v", err)
		}
		repo := persistence.NewAuditRepository(db)
		if err := repo.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Failed to initialize audit schema: %v", err)
		}
		log.Println("✅ Audit database connection established")
		auditSink = repo
		auditHandler = rest.NewAuditHandler(repo)
	} else {
		log.Println("⚠️  Warning: AUDIT_DB_DSN not set, admin actions will not be persisted")
		store := persistence.NoopAuditStore{}
		auditSink = store
		auditHandler = rest.NewAuditHandler(store)
	}

	// HR backend client and services
	client := hrapi.NewClient(cfg.HRAPIBaseURL, cfg.HRAPITimeout)
	overrides := services.NewOverrideRegistry()
	resolver := services.NewSchemaResolver(client, overrides)
	choices := services.NewChoiceLoader(client)
	engine := expression.NewEngine()
	pageService := services.NewPageService(client, resolver, choices, overrides, engine, cfg.SessionTTL)
	formService := services.NewFormService()
	crudService := services.NewCrudService(client, auditSink)
	transferService := services.NewTransferService(client, auditSink)
	log.Println("🔧 Services initialized")

	// Create Gin router
	router := gin.Default()

	// CORS middleware - Allow credentials from any origin
	router.Use(middleware.Cors())

	// Actor middleware - pass-through bearer token + audit identity
	router.Use(middleware.Actor())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":   "ok",
			"backend":  cfg.HRAPIBaseURL,
			"sessions": pageService.Count(),
		})
	})

	// Debug/pprof endpoints for goroutine debugging
	// Access: http://localhost:8080/debug/pprof/
	// Goroutine stacks: http://localhost:8080/debug/pprof/goroutine?debug=2
	debug := router.Group("/debug/pprof")
	{
		debug.GET("/", gin.WrapF(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/debug/pprof/", http.StatusMovedPermanently)
		})))
		debug.GET("/goroutine", gin.WrapH(http.DefaultServeMux))
		debug.GET("/heap", gin.WrapH(http.DefaultServeMux))
		debug.GET("/threadcreate", gin.WrapH(http.DefaultServeMux))
		debug.GET("/block", gin.WrapH(http.DefaultServeMux))
		debug.GET("/mutex", gin.WrapH(http.DefaultServeMux))
		debug.GET("/profile", gin.WrapH(http.DefaultServeMux))
		debug.GET("/trace", gin.WrapH(http.DefaultServeMux))
	}

	// Initialize handlers
	pageHandler := rest.NewPageHandler(pageService, formService)
	recordHandler := rest.NewRecordHandler(pageService, crudService)
	transferHandler := rest.NewTransferHandler(pageService, transferService)

	// API routes
	api := router.Group("/api")
	{
		admin := api.Group("/admin")
		{
			admin.GET("/catalog", pageHandler.Catalog)
			admin.GET("/audit", auditHandler.Recent)

			pages := admin.Group("/pages")
			{
				pages.POST("", pageHandler.Mount)
				pages.GET("/:sessionID", pageHandler.Describe)
				pages.DELETE("/:sessionID", pageHandler.Unmount)

				pages.GET("/:sessionID/rows", pageHandler.Rows)
				pages.GET("/:sessionID/form", pageHandler.CreateForm)
				pages.GET("/:sessionID/records/:recordID/form", pageHandler.EditForm)

				pages.POST("/:sessionID/records", recordHandler.Create)
				pages.PATCH("/:sessionID/records/:recordID", recordHandler.Update)
				pages.DELETE("/:sessionID/records/:recordID", recordHandler.Delete)

				pages.GET("/:sessionID/export", transferHandler.Export)
				pages.GET("/:sessionID/template", transferHandler.Template)
				pages.POST("/:sessionID/import", transferHandler.Import)
			}
		}
	}

	// Start idle session sweeper
	if err := pageService.StartSweeper(cfg.SweepSchedule); err != nil {
		log.Fatalf("Failed to start session sweeper: %v", err)
	}
	log.Printf("⏰ Session sweeper started (schedule %s)", cfg.SweepSchedule)

	// Start server
	log.Println("\n═══════════════════════════════════════════════════════════════════════════")
	log.Println("🚀 HR Admin Console Started Successfully")
	log.Println("═══════════════════════════════════════════════════════════════════════════")
	log.Printf("\n📍 Server:          http://localhost:%s", cfg.Port)
	log.Printf("📚 Catalog API:     http://localhost:%s/api/admin/catalog", cfg.Port)
	log.Printf("📄 Pages API:       http://localhost:%s/api/admin/pages", cfg.Port)
	log.Printf("📜 Audit API:       http://localhost:%s/api/admin/audit", cfg.Port)
	log.Printf("🔁 HR backend:      %s", cfg.HRAPIBaseURL)
	log.Printf("💚 Health check:    http://localhost:%s/health\n", cfg.Port)

	// Create HTTP Server
	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Stop background workers
	pageService.StopSweeper()
	log.Println("🛑 Session sweeper stopped")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}
