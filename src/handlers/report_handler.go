package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"spendlog-server/src/db"
	"spendlog-server/src/models"
)

func MonthlyReport(store db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		month, err := strconv.Atoi(r.URL.Query().Get("month"))
		if err != nil || month < 1 || month > 12 {
			http.Error(w, "month must be between 1 and 12", http.StatusBadRequest)
			return
		}
		year, err := strconv.Atoi(r.URL.Query().Get("year"))
		if err != nil {
			http.Error(w, "year must be a number", http.StatusBadRequest)
			return
		}

		report, err := store.MonthlyReport(r.Context(), int(userID), month, year)
		if err != nil {
			log.Printf("ERROR: Failed to build monthly report for user %d: %v", userID, err)
			http.Error(w, "failed to build report", storeErrorStatus(err))
			return
		}
		// A month with no expenses is an empty report, not an error.
		if report == nil {
			report = []models.CategoryTotal{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(report)
	}
}

func SpendingTrend(store db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		trend, err := store.SpendingTrend(r.Context(), int(userID))
		if err != nil {
			log.Printf("ERROR: Failed to build spending trend for user %d: %v", userID, err)
			http.Error(w, "failed to build trend", storeErrorStatus(err))
			return
		}
		if trend == nil {
			trend = []models.MonthlyTotal{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(trend)
	}
}
