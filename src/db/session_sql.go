package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"spendlog-server/src/errs"
	"spendlog-server/src/models"
)

func (s *PostgresStore) CreateSession(ctx context.Context, userID int, ttl time.Duration) (*models.Session, error) {
	query := `
		INSERT INTO sessions (id, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, expires_at
	`
	var sess models.Session
	err := s.pool.QueryRow(ctx, query, uuid.NewString(), userID, time.Now().Add(ttl)).
		Scan(&sess.ID, &sess.UserID, &sess.ExpiresAt)
	if err != nil {
		return nil, errs.FromPg(fmt.Errorf("create session: %w", err))
	}
	return &sess, nil
}

func (s *PostgresStore) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	query := `
		SELECT id, user_id, expires_at
		FROM sessions
		WHERE id = $1 AND expires_at > NOW()
	`
	var sess models.Session
	err := s.pool.QueryRow(ctx, query, sessionID).
		Scan(&sess.ID, &sess.UserID, &sess.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFoundf("session not found")
		}
		return nil, errs.FromPg(fmt.Errorf("get session: %w", err))
	}
	return &sess, nil
}

// DeleteSession is idempotent: deleting an absent session is not an error.
func (s *PostgresStore) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID)
	if err != nil {
		return errs.FromPg(fmt.Errorf("delete session: %w", err))
	}
	return nil
}
