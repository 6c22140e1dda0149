package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"

	"brandflowAPI/handlers"
	"brandflowAPI/internal/config"
	"brandflowAPI/internal/feed"
	"brandflowAPI/internal/firebase"
	"brandflowAPI/internal/gemini"
	"brandflowAPI/internal/identity"
	"brandflowAPI/internal/ledger"
	"brandflowAPI/internal/logging"
	"brandflowAPI/internal/notification"
	"brandflowAPI/internal/realtime"
	"brandflowAPI/internal/workers"
	"brandflowAPI/middleware"
	"brandflowAPI/services"

	_ "net/http/pprof"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	log := logging.New(cfg.LogLevel, cfg.IsProduction())

	// Firebase clients hold on to this context; it must outlive the server.
	ctx := context.Background()

	credentials, err := firebase.CredentialOption(cfg.FirebaseServiceAccount, cfg.FirebaseCredentials, log)
	if err != nil {
		log.WithError(err).Fatal("failed to load firebase credentials")
	}

	app, err := firebase.NewApp(ctx, cfg.FirebaseDBURL, credentials)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize firebase")
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize firebase auth")
	}
	toolkit, err := identitytoolkit.NewService(ctx, credentials)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize identity toolkit")
	}
	provider := identity.NewFirebaseProvider(authClient, toolkit)

	var base realtime.Store
	switch cfg.StoreBackend {
	case "memory":
		base = realtime.NewMemoryStore()
		log.Warn("using in-memory store, data is lost on restart")
	default:
		if cfg.FirebaseDBURL == "" {
			log.Fatal("FIREBASE_DB_URL environment variable is not set")
		}
		dbClient, err := app.Database(ctx)
		if err != nil {
			log.WithError(err).Fatal("failed to initialize realtime database")
		}
		base = realtime.NewFirebaseStore(dbClient)
		log.Info("connected to firebase realtime database")
	}

	hub := feed.NewHub(base, log)
	store := realtime.NewWatched(base, hub.OnChange)

	var push services.PushProvider
	fcmService, err := notification.NewFCMService(ctx, app, log)
	if err != nil {
		log.WithError(err).Warn("could not initialize FCM, push notifications disabled")
	} else {
		push = fcmService
		log.Info("FCM push provider initialized")
	}

	var (
		recorder ledger.Recorder = ledger.NewMemory()
		dbPool   *pgxpool.Pool
	)
	if cfg.DatabaseURL != "" {
		dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
		defer dbCancel()

		dbPool, err = ledger.Connect(dbCtx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to ledger database")
		}
		defer func() {
			log.Info("closing database connection pool")
			dbPool.Close()
		}()

		pg := ledger.NewPostgres(dbPool)
		if err := pg.EnsureSchema(dbCtx); err != nil {
			log.WithError(err).Fatal("failed to prepare ledger schema")
		}
		recorder = pg
		log.Info("payment ledger backed by postgres")
	} else {
		log.Warn("DATABASE_URL not set, payment ledger kept in memory")
	}

	if cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is not set")
	}
	gateway := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiBaseURL, gemini.Models{
		Text:   cfg.TextModel,
		Image:  cfg.ImageModel,
		Speech: cfg.SpeechModel,
		Video:  cfg.VideoModel,
	}, time.Duration(cfg.GeminiTimeoutSec)*time.Second)

	middleware.InitPrometheus(prometheus.DefaultRegisterer)
	metrics := middleware.DomainMetrics{}

	notifier := services.NewNotifier(store, push)
	userService := services.NewUserService(store, cfg.AdminEmails, notifier)
	usageService := services.NewUsageService(store, metrics)
	paymentService := services.NewPaymentService(store, recorder, notifier, cfg.UPIPayee)
	contentService := services.NewContentService(store, gateway, usageService, metrics)
	businessService := services.NewBusinessService(store, gateway, metrics)
	academyService := services.NewAcademyService(store, gateway, metrics)
	healthService := services.NewHealthService(store, gateway, metrics)
	searchService := services.NewSearchService(store)
	authService := services.NewAuthService(provider, userService, notifier)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, usageService)
	subscriptionHandler := handlers.NewSubscriptionHandler(paymentService)
	adminHandler := handlers.NewAdminHandler(userService, paymentService)
	contentHandler := handlers.NewContentHandler(contentService)
	workspaceHandler := handlers.NewWorkspaceHandler(businessService, academyService, healthService)
	searchHandler := handlers.NewSearchHandler(searchService)
	authHandler := handlers.NewAuthHandler(authService)
	feedHandler := handlers.NewFeedHandler(hub)

	authn := middleware.NewAuthenticator(provider, userService)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	go limiter.CleanupVisitors(bgCtx)

	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/api/v1/feed/ws", authn.FirebaseAuth(http.HandlerFunc(feedHandler.Connect))).Methods("GET")

	r.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(cfg.PprofSecret)(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if dbPool != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := dbPool.Ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "brandflow-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	public := api.PathPrefix("").Subrouter()
	public.Use(limiter.Middleware)

	public.HandleFunc("/auth/signup", authHandler.SignUp).Methods("POST")
	public.HandleFunc("/auth/password-reset", authHandler.PasswordReset).Methods("POST")
	public.HandleFunc("/plans", subscriptionHandler.Plans).Methods("GET")
	public.HandleFunc("/plans/{plan}/qr", subscriptionHandler.PlanQR).Methods("GET")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(authn.FirebaseAuth)
	protected.Use(limiter.Middleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/usage", userHandler.GetUsage).Methods("GET")
	protected.HandleFunc("/user/devices", userHandler.RegisterDevice).Methods("POST")

	protected.HandleFunc("/subscription/payment", subscriptionHandler.SubmitPayment).Methods("POST")
	protected.HandleFunc("/subscription/payment", subscriptionHandler.GetPayment).Methods("GET")

	protected.HandleFunc("/content", contentHandler.Generate).Methods("POST")
	protected.HandleFunc("/content/history", contentHandler.History).Methods("GET")
	protected.HandleFunc("/content/history/{id}", contentHandler.Get).Methods("GET")
	protected.HandleFunc("/content/history/{id}/image", contentHandler.Image).Methods("GET")
	protected.HandleFunc("/content/history/{id}/audio/{track}", contentHandler.Audio).Methods("GET")
	protected.HandleFunc("/content/video", contentHandler.Video).Methods("POST")

	protected.HandleFunc("/business/tasks", workspaceHandler.CreateTask).Methods("POST")
	protected.HandleFunc("/business/tasks", workspaceHandler.Tasks).Methods("GET")
	protected.HandleFunc("/academy/courses", workspaceHandler.CreateCourse).Methods("POST")
	protected.HandleFunc("/academy/courses", workspaceHandler.Courses).Methods("GET")
	protected.HandleFunc("/health/reports", workspaceHandler.Analyze).Methods("POST")
	protected.HandleFunc("/health/reports", workspaceHandler.Reports).Methods("GET")
	protected.HandleFunc("/health/reports/latest", workspaceHandler.LatestReport).Methods("GET")

	protected.HandleFunc("/search", searchHandler.Search).Methods("GET")

	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/users", adminHandler.ListUsers).Methods("GET")
	admin.HandleFunc("/payments", adminHandler.ListPayments).Methods("GET")
	admin.HandleFunc("/payments/ledger", adminHandler.Ledger).Methods("GET")
	admin.HandleFunc("/payments/{uid}/approve", adminHandler.Approve).Methods("POST")
	admin.HandleFunc("/payments/{uid}/reject", adminHandler.Reject).Methods("POST")

	wcfg := workers.DefaultConfig()
	wcfg.SweepExpiry = cfg.ExpirySweepEnabled
	scheduler := workers.NewScheduler(wcfg, paymentService, middleware.SetPendingPayments, userService, log)
	if err := scheduler.Start(); err != nil {
		log.WithError(err).Fatal("failed to start background jobs")
	}

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", middleware.RequestIDHeader, "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader}),
	)

	server := http.Server{
		Addr:        cfg.Addr(),
		Handler:     corsHandler(r),
		ReadTimeout: 15 * time.Second,
		// Video generation can hold a request open for several minutes.
		WriteTimeout: 7 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("error starting server")
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	log.WithField("signal", sig.String()).Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	hub.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown error")
	}
	scheduler.Stop(shutdownCtx)
	stopBackground()

	log.Info("server shutdown complete")
}
