package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"bank-service/internal/config"
	"bank-service/internal/domain"
	"bank-service/internal/handler"
	"bank-service/internal/middleware"
	"bank-service/internal/notifier"
	"bank-service/internal/repository"
	"bank-service/internal/router"
	"bank-service/internal/storage"
	"bank-service/internal/usecase/auth"
	"bank-service/internal/usecase/otp"
	"bank-service/internal/usecase/transfer"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func NewServer(cfg config.Config) *http.Server {
	// --- Init Logger ---
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	// --- Init Storage ---
	store, err := storage.NewStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("failed to open data dir: %v", err)
	}

	// --- Init Redis (optional; demo mode runs without it) ---
	var rdb *redis.Client
	var otpStore otp.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       0,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[Redis] Unreachable (%v), falling back to in-memory OTP store", err)
			otpStore = otp.NewMemoryStore()
		} else {
			log.Println("[Redis] Connected successfully")
			rdb = client
			otpStore = otp.NewRedisStore(client)
		}
	} else {
		otpStore = otp.NewMemoryStore()
	}

	// --- Init Repositories ---
	registryRepo, err := repository.NewRegistryRepository(store, logger)
	if err != nil {
		log.Fatalf("failed to load user registry: %v", err)
	}
	ledgerRepo := repository.NewLedgerRepository(store, logger)
	credRepo, err := repository.NewCredentialRepository(store, logger)
	if err != nil {
		log.Fatalf("failed to load credentials: %v", err)
	}

	// --- Init Notifier & Usecases ---
	emailNotifier := notifier.NewEmailNotifier(logger, cfg.EmailDelay)
	otpSvc := otp.NewService(otpStore, emailNotifier, logger, cfg.OTPTTL)
	authSvc := auth.NewService(registryRepo, credRepo, otpSvc, logger, []byte(cfg.JWTSecret), cfg.SessionTTL)
	transferSvc := transfer.NewService(registryRepo, ledgerRepo, emailNotifier, logger, cfg.ProcessingDelay)

	// --- Seed admin on first boot ---
	if err := seedAdmin(cfg, registryRepo, credRepo, logger); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// --- Init Middleware & Handlers ---
	authMW := middleware.NewAuthMiddleware(authSvc, registryRepo)
	authH := handler.NewAuthHandler(authSvc, logger)
	accountH := handler.NewAccountHandler(authSvc, transferSvc, logger)
	transferH := handler.NewTransferHandler(transferSvc, logger)
	txH := handler.NewTransactionHandler(ledgerRepo, logger)
	adminH := handler.NewAdminHandler(registryRepo, logger)

	// --- Router ---
	r := chi.NewRouter()
	r = router.SetupRoutes(r, authH, accountH, transferH, txH, adminH, authMW, rdb).(*chi.Mux)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
	srv.RegisterOnShutdown(func() {
		emailNotifier.Flush()
		_ = logger.Sync()
	})
	return srv
}

// seedAdmin creates the administrator against an empty registry so a fresh
// deployment has one funded user to demo against. Subsequent boots find a
// non-empty registry and skip it.
func seedAdmin(cfg config.Config, registry *repository.RegistryRepository, creds *repository.CredentialRepository, logger *zap.Logger) error {
	if registry.Size() > 0 {
		return nil
	}

	checking, err := decimal.NewFromString(cfg.AdminCheckingBalance)
	if err != nil {
		return err
	}
	savings, err := decimal.NewFromString(cfg.AdminSavingsBalance)
	if err != nil {
		return err
	}

	now := time.Now()
	admin := &domain.User{
		ID:       uuid.NewString(),
		Email:    cfg.AdminEmail,
		Name:     cfg.AdminName,
		Currency: "USD",
		IsAdmin:  true,
		Accounts: []*domain.Account{
			{
				ID:        uuid.NewString(),
				Type:      domain.AccountTypeChecking,
				Name:      "Primary Checking",
				Balance:   checking,
				Currency:  "USD",
				CreatedAt: now,
			},
			{
				ID:        uuid.NewString(),
				Type:      domain.AccountTypeSavings,
				Name:      "Savings Account",
				Balance:   savings,
				Currency:  "USD",
				CreatedAt: now,
			},
		},
		CreatedAt: now,
	}

	if _, err := registry.CreateUser(admin); err != nil {
		return err
	}
	if err := creds.SetPassword(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return err
	}
	logger.Info("admin seeded", zap.String("email", cfg.AdminEmail))
	return nil
}
