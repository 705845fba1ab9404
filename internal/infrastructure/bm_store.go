package infrastructure

import (
	"context"
	"database/sql"
	"fmt"

	"adsboard/internal/domain"
)

// BusinessManagerStore implements domain.BusinessManagerRepository
// against PostgreSQL.
type BusinessManagerStore struct{ db *sql.DB }

// NewBusinessManagerStore creates a Postgres-backed business manager store.
func NewBusinessManagerStore(db *sql.DB) *BusinessManagerStore {
	return &BusinessManagerStore{db: db}
}

func (s *BusinessManagerStore) Upsert(ctx context.Context, bm *domain.BusinessManager) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO business_managers (bm_id, access_token)
		VALUES ($1, $2)
		ON CONFLICT (bm_id) DO UPDATE
		SET access_token = EXCLUDED.access_token, updated_at = now()
	`, bm.BMID, bm.AccessToken)
	if err != nil {
		return fmt.Errorf("upsert business manager: %w", err)
	}
	return nil
}

func (s *BusinessManagerStore) Get(ctx context.Context, bmID string) (*domain.BusinessManager, error) {
	bm := &domain.BusinessManager{}
	err := s.db.QueryRowContext(ctx, `
		SELECT bm_id, access_token, created_at, updated_at
		FROM business_managers
		WHERE bm_id = $1
	`, bmID).Scan(&bm.BMID, &bm.AccessToken, &bm.CreatedAt, &bm.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get business manager: %w", err)
	}
	return bm, nil
}

func (s *BusinessManagerStore) List(ctx context.Context) ([]domain.BusinessManager, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bm_id, access_token, created_at, updated_at
		FROM business_managers
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list business managers: %w", err)
	}
	defer rows.Close()

	var out []domain.BusinessManager
	for rows.Next() {
		var bm domain.BusinessManager
		if err := rows.Scan(&bm.BMID, &bm.AccessToken, &bm.CreatedAt, &bm.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan business manager: %w", err)
		}
		out = append(out, bm)
	}
	return out, rows.Err()
}

func (s *BusinessManagerStore) Delete(ctx context.Context, bmID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM business_managers WHERE bm_id = $1
	`, bmID)
	if err != nil {
		return fmt.Errorf("delete business manager: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete business manager: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
