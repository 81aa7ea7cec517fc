package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"spendlog-server/src/config"
	"spendlog-server/src/db"
	"spendlog-server/src/handlers"
	"spendlog-server/src/middleware"
)

func NewRouter(store db.Store, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.DemoModeMiddleware(cfg.DemoMode))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", handlers.Register(store, cfg.SessionTTL))
		r.Post("/login", handlers.Login(store, cfg.SessionTTL))

		// Protected routes
		r.With(middleware.JWTAuthMiddleware(store)).Group(func(r chi.Router) {
			r.Post("/logout", handlers.Logout(store))
			r.Get("/me", handlers.Me(store))

			// Categories (reference data)
			r.Get("/categories", handlers.ListCategories(store))

			// Expenses
			r.Get("/expenses", handlers.ListExpenses(store))
			r.Post("/expenses", handlers.CreateExpense(store))
			r.Get("/expenses/range", handlers.ListExpensesByDateRange(store))
			r.Put("/expenses/{expense_id}", handlers.UpdateExpense(store))
			r.Delete("/expenses/{expense_id}", handlers.DeleteExpense(store))
			r.Post("/expenses/{expense_id}/rollback-demo", handlers.RollbackDemo(store))

			// Reports
			r.Get("/reports/monthly", handlers.MonthlyReport(store))
			r.Get("/reports/trends", handlers.SpendingTrend(store))

			// Budgets and alerts
			r.Post("/budgets", handlers.SetBudget(store))
			r.Get("/budgets", handlers.GetAllBudgetsForUser(store))
			r.Get("/alerts", handlers.GetAllAlertsForUser(store))
		})
	})

	return r
}
