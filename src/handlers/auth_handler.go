package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"spendlog-server/src/db"
	"spendlog-server/src/errs"
	"spendlog-server/src/models"
	"spendlog-server/src/util"
)

func Register(store db.Store, sessionTTL time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode register request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		req.Username = strings.TrimSpace(req.Username)

		// Mismatched confirmation is rejected before anything touches
		// the store.
		if req.Password != req.ConfirmPassword {
			log.Printf("ERROR: Password confirmation mismatch during registration - Email: %s", req.Email)
			http.Error(w, "passwords do not match", http.StatusBadRequest)
			return
		}

		if !util.ValidateEmail(req.Email) {
			log.Printf("ERROR: Email validation failed during registration - Email: %s", req.Email)
			http.Error(w, "invalid email format", http.StatusBadRequest)
			return
		}

		if !util.ValidateUsername(req.Username) {
			log.Printf("ERROR: Username validation failed during registration - Username: %s", req.Username)
			http.Error(w, "username must be between 3 and 30 characters", http.StatusBadRequest)
			return
		}

		if !util.ValidatePassword(req.Password) {
			log.Printf("ERROR: Password validation failed during registration - Username: %s", req.Username)
			http.Error(w, "password must be at least 8 characters", http.StatusBadRequest)
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("ERROR: Failed to hash password for user %s: %v", req.Username, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		user, err := store.CreateUser(r.Context(), req.Username, req.Email, string(hashedPassword))
		if err != nil {
			if errs.Is(err, errs.KindConstraint) {
				log.Printf("ERROR: Registration failed - email already exists - Email: %s", req.Email)
				http.Error(w, "email already exists", http.StatusConflict)
				return
			}
			log.Printf("ERROR: Failed to create user %s: %v", req.Username, err)
			http.Error(w, "internal error", storeErrorStatus(err))
			return
		}

		session, err := store.CreateSession(r.Context(), user.ID, sessionTTL)
		if err != nil {
			log.Printf("ERROR: Failed to create session for user %d: %v", user.ID, err)
			http.Error(w, "internal error", storeErrorStatus(err))
			return
		}

		tokenString, err := issueToken(user, session)
		if err != nil {
			log.Printf("ERROR: Failed to generate token for user %s: %v", user.Username, err)
			http.Error(w, "error generating token", http.StatusInternalServerError)
			return
		}

		log.Printf("INFO: Successful registration - User: %s, ID: %d", user.Username, user.ID)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{
			"token": tokenString,
		})
	}
}

func Login(store db.Store, sessionTTL time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var credentials struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
			log.Printf("ERROR: Failed to decode login request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		user, err := store.GetUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(credentials.Email)))
		if err != nil {
			if errs.Is(err, errs.KindNotFound) {
				log.Printf("ERROR: Login for unknown email: %s", credentials.Email)
				http.Error(w, "user not found", http.StatusNotFound)
				return
			}
			log.Printf("ERROR: Failed to look up user during login - Email: %s: %v", credentials.Email, err)
			http.Error(w, "internal error", storeErrorStatus(err))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credentials.Password)); err != nil {
			log.Printf("ERROR: Invalid password attempt for email %s from IP %s", credentials.Email, r.RemoteAddr)
			http.Error(w, "incorrect password", http.StatusUnauthorized)
			return
		}

		session, err := store.CreateSession(r.Context(), user.ID, sessionTTL)
		if err != nil {
			log.Printf("ERROR: Failed to create session for user %d: %v", user.ID, err)
			http.Error(w, "internal error", storeErrorStatus(err))
			return
		}

		tokenString, err := issueToken(user, session)
		if err != nil {
			log.Printf("ERROR: Failed to generate token for user %s: %v", user.Username, err)
			http.Error(w, "error generating token", http.StatusInternalServerError)
			return
		}

		log.Printf("INFO: Successful login - User: %s, ID: %d", user.Username, user.ID)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"token": tokenString,
		})
	}
}

// Logout deletes the server-side session; calling it twice is harmless.
func Logout(store db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		sessionID := r.Context().Value("session_id").(string)

		if err := store.DeleteSession(r.Context(), sessionID); err != nil {
			log.Printf("ERROR: Failed to delete session for user %d: %v", userID, err)
			http.Error(w, "internal error", storeErrorStatus(err))
			return
		}

		log.Printf("INFO: Logged out - User: %d", userID)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "logged out successfully",
		})
	}
}

func issueToken(user *models.User, session *models.Session) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    user.ID,
		"username":   user.Username,
		"session_id": session.ID,
		"exp":        session.ExpiresAt.Unix(),
	})
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
