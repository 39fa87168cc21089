package api

import (
	"net/http"

	"github.com/dvloznov/finance-advisor/internal/api/handlers"
	"github.com/dvloznov/finance-advisor/internal/api/middleware"
	"github.com/dvloznov/finance-advisor/internal/domain"
	"github.com/rs/zerolog"
)

// Prefix is the mount point of every versioned route.
const Prefix = "/api/v1"

// FinanceService is everything the router needs from the finance layer.
type FinanceService interface {
	handlers.Advisor
	handlers.DashboardSource
	handlers.Ledger
}

// Deps are the services the router dispatches to.
type Deps struct {
	Finance        FinanceService
	Accounts       handlers.Accounts
	Tokens         middleware.TokenValidator
	MaxUploadBytes int64
}

// NewRouter builds the HTTP handler with all routes and middleware applied.
func NewRouter(d Deps, log zerolog.Logger) http.Handler {
	aiHandler := handlers.NewAIHandler(d.Finance, log)
	dashboardHandler := handlers.NewDashboardHandler(d.Finance, log)
	expensesHandler := handlers.NewTransactionsHandler(d.Finance, domain.KindExpense, log)
	incomesHandler := handlers.NewTransactionsHandler(d.Finance, domain.KindIncome, log)
	authHandler := handlers.NewAuthHandler(d.Accounts, d.MaxUploadBytes, log)

	protect := middleware.RequireAuth(d.Tokens, log)
	private := func(h http.HandlerFunc) http.Handler { return protect(h) }

	mux := http.NewServeMux()

	// Auth endpoints
	mux.HandleFunc("POST "+Prefix+"/auth/register", authHandler.Register)
	mux.HandleFunc("POST "+Prefix+"/auth/login", authHandler.Login)
	mux.HandleFunc("POST "+Prefix+"/auth/upload-image", authHandler.UploadImage)
	mux.Handle("GET "+Prefix+"/auth/me", private(authHandler.Me))
	mux.Handle("PUT "+Prefix+"/auth/me", private(authHandler.UpdateMe))

	// AI endpoints
	mux.Handle("GET "+Prefix+"/ai/suggestion", private(aiHandler.GetSuggestion))
	mux.Handle("POST "+Prefix+"/ai/chat", private(aiHandler.Chat))

	// Dashboard endpoint
	mux.Handle("GET "+Prefix+"/dashboard", private(dashboardHandler.GetDashboard))

	// Transaction endpoints
	for _, route := range []struct {
		path    string
		handler *handlers.TransactionsHandler
	}{
		{"/expenses", expensesHandler},
		{"/incomes", incomesHandler},
	} {
		mux.Handle("POST "+Prefix+route.path, private(route.handler.Add))
		mux.Handle("GET "+Prefix+route.path, private(route.handler.List))
		mux.Handle("GET "+Prefix+route.path+"/export", private(route.handler.Export))
		mux.Handle("DELETE "+Prefix+route.path+"/{id}", private(route.handler.Delete))
	}

	// Health check endpoint
	mux.HandleFunc("GET /health", handlers.Health)

	return middleware.Recovery(log)(
		middleware.RequestID(
			middleware.Logger(log)(
				middleware.CORS(mux),
			),
		),
	)
}
