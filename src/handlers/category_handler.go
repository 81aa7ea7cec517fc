package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"spendlog-server/src/db"
	"spendlog-server/src/models"
)

func ListCategories(store db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := store.ListCategories(r.Context())
		if err != nil {
			log.Printf("ERROR: Failed to list categories: %v", err)
			http.Error(w, "failed to list categories", storeErrorStatus(err))
			return
		}
		if categories == nil {
			categories = []models.Category{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(categories)
	}
}
