package db

import (
	"context"
	"fmt"

	"spendlog-server/src/errs"
	"spendlog-server/src/models"
)

func (s *PostgresStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	query := `SELECT id, name FROM categories ORDER BY id`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, errs.FromPg(fmt.Errorf("list categories: %w", err))
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
