package infrastructure

import (
	"context"
	"database/sql"
	"fmt"

	"adsboard/internal/domain"
)

// ShareLinkStore implements domain.ShareLinkRepository against PostgreSQL.
type ShareLinkStore struct{ db *sql.DB }

// NewShareLinkStore creates a Postgres-backed share link store.
func NewShareLinkStore(db *sql.DB) *ShareLinkStore { return &ShareLinkStore{db: db} }

func (s *ShareLinkStore) Create(ctx context.Context, link *domain.ShareLink) error {
	var reportID sql.NullInt64
	if link.ReportID != nil {
		reportID = sql.NullInt64{Int64: *link.ReportID, Valid: true}
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO share_links (token, report_id, bm_id, ad_account_id, campaign_id, date_preset, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, link.Token, reportID, link.BMID, link.AdAccountID, link.CampaignID, link.DatePreset, link.ExpiresAt).
		Scan(&link.ID, &link.CreatedAt)
	if err != nil {
		return fmt.Errorf("create share link: %w", err)
	}
	return nil
}

func (s *ShareLinkStore) GetByToken(ctx context.Context, token string) (*domain.ShareLink, error) {
	link := &domain.ShareLink{}
	var reportID sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, token, report_id, bm_id, ad_account_id, campaign_id, date_preset, expires_at, created_at
		FROM share_links
		WHERE token = $1
	`, token).Scan(
		&link.ID, &link.Token, &reportID, &link.BMID, &link.AdAccountID,
		&link.CampaignID, &link.DatePreset, &link.ExpiresAt, &link.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get share link: %w", err)
	}
	if reportID.Valid {
		link.ReportID = &reportID.Int64
	}
	return link, nil
}
