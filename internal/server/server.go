package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/BigSlendr/BBE-Menu/config"
	"github.com/BigSlendr/BBE-Menu/internal/db"
	"github.com/BigSlendr/BBE-Menu/internal/handlers"
	"github.com/BigSlendr/BBE-Menu/internal/mail"
	"github.com/BigSlendr/BBE-Menu/internal/services"
	"github.com/BigSlendr/BBE-Menu/internal/storage"
	"github.com/BigSlendr/BBE-Menu/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	log        *zap.Logger
}

// New wires the full API: storage, mail, repositories, services, and
// routes.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*Server, error) {
	if cfg.Admin.Secret == "" {
		return nil, errors.New("ADMIN_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	objects, err := storage.New(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if err := objects.EnsureBucket(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}

	resend, err := mail.NewResendClient(cfg.Mail)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	mailer := mail.New(resend)

	userRepo := store.NewUserRepository(dbConn)
	sessionRepo := store.NewSessionRepository(dbConn)
	resetRepo := store.NewResetRepository(dbConn)
	productRepo := store.NewProductRepository(dbConn)
	orderRepo := store.NewOrderRepository(dbConn)
	ledgerRepo := store.NewLedgerRepository(dbConn)
	verificationRepo := store.NewVerificationRepository(dbConn)
	tagRepo := store.NewTagRepository(dbConn)

	authService := services.NewAuthService(userRepo, sessionRepo, resetRepo, verificationRepo, mailer, cfg.Mail.From, cfg.Mail.SiteURL)
	catalogService := services.NewCatalogService(productRepo)
	orderService := services.NewOrderService(orderRepo, ledgerRepo, userRepo, mailer, cfg.Mail.From, cfg.Mail.To)
	verificationService := services.NewVerificationService(verificationRepo, userRepo, objects)
	customerService := services.NewCustomerService(userRepo, tagRepo, ledgerRepo, orderRepo, sessionRepo)

	requireSession := handlers.RequireSession(authService)
	requireAdmin := handlers.RequireAdmin(cfg.Admin.Secret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz(dbConn))

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			handlers.AuthRouter(r, authService)
		})
		r.Route("/products", func(r chi.Router) {
			handlers.CatalogRouter(r, catalogService)
		})
		r.Route("/suggestions", func(r chi.Router) {
			handlers.SuggestionRouter(r, mailer, cfg.Mail.From, cfg.Mail.To)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireSession)
			handlers.AccountRouter(r, authService, orderService)
			r.Route("/verify", func(r chi.Router) {
				handlers.VerificationRouter(r, verificationService)
			})
			r.With(handlers.RequireApproved).Route("/orders", func(r chi.Router) {
				handlers.OrderRouter(r, orderService)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			handlers.AdminRouter(r, customerService, verificationService, cfg.Admin.Secret)
			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Route("/customers", func(r chi.Router) {
					handlers.AdminCustomerRouter(r, customerService)
				})
				handlers.AdminProductRouter(r, catalogService, cfg.Mail.SiteURL)
				r.Route("/orders", func(r chi.Router) {
					handlers.AdminOrderRouter(r, orderService)
				})
			})
		})
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		log:        log,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.log.Info("listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
