package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"spendlog-server/src/db"
)

// Me returns the authenticated user's own profile. User rows are otherwise
// immutable to this service.
func Me(store db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		user, err := store.GetUserByID(r.Context(), int(userID))
		if err != nil {
			log.Printf("ERROR: Failed to get user - user_id: %d: %v", userID, err)
			http.Error(w, "user not found", storeErrorStatus(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(user)
	}
}
