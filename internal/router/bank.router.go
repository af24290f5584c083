package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"bank-service/internal/handler"
	"bank-service/internal/middleware"
	"bank-service/internal/usecase/auth"
)

func SetupRoutes(
	r chi.Router,
	authH *handler.AuthHandler,
	accountH *handler.AccountHandler,
	transferH *handler.TransferHandler,
	txH *handler.TransactionHandler,
	adminH *handler.AdminHandler,
	authMW *middleware.AuthMiddleware,
	rdb *redis.Client,
) chi.Router {
	// ---- Global Middleware ----
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Global rate limiting
	r.Use(middleware.RateLimiter(rdb, 100, time.Minute, 10*time.Minute, "global"))

	// ============================================================
	// Public Endpoints
	// ============================================================
	r.Group(func(pub chi.Router) {
		pub.Get("/bank/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})

		pub.Post("/bank/auth/register", authH.Register)
		pub.Post("/bank/auth/login", authH.Login)
	})

	// ============================================================
	// OTP Endpoints (pre-auth token from register/login)
	// ============================================================
	r.Route("/bank/auth/otp", func(pr chi.Router) {
		pr.Use(authMW.Require(auth.StagePreAuth))
		pr.Use(middleware.RateLimiter(rdb, 5, time.Minute, 15*time.Minute, "otp"))

		pr.Post("/send", authH.SendOTP)
		pr.Post("/verify", authH.VerifyOTP)
	})

	// ============================================================
	// Authenticated Endpoints (full session)
	// ============================================================
	r.With(authMW.Require(auth.StageFull)).Post("/bank/auth/logout", authH.Logout)

	r.Route("/bank/svc", func(pr chi.Router) {
		pr.Use(authMW.Require(auth.StageFull))

		pr.Get("/me", accountH.Me)
		pr.Patch("/me", accountH.UpdateProfile)
		pr.Post("/pin", accountH.SetPin)
		pr.Post("/pin/verify", accountH.VerifyPin)

		pr.Get("/accounts", accountH.Accounts)
		pr.Post("/accounts/{accountID}/fund", accountH.Fund)
		pr.Post("/accounts/{accountID}/billpay", accountH.BillPay)
		pr.Post("/accounts/{accountID}/deposit-check", accountH.DepositCheck)

		pr.Get("/transfers/restrictions", transferH.Restrictions)
		pr.Post("/transfers/internal", transferH.Internal)
		pr.Post("/transfers/account-number", transferH.ByAccountNumber)
		pr.Post("/transfers/external", transferH.External)

		pr.Get("/transactions", txH.List)
	})

	// ============================================================
	// Admin Endpoints
	// ============================================================
	r.Route("/bank/admin", func(pr chi.Router) {
		pr.Use(authMW.Require(auth.StageFull))
		pr.Use(authMW.RequireAdmin)

		pr.Get("/users", adminH.ListUsers)
		pr.Get("/users/{userID}", adminH.GetUser)
		pr.Post("/users/{userID}/restriction", adminH.SetRestriction)
	})

	return r
}
