package infrastructure

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"adsboard/internal/domain"
)

// ReportStore implements domain.ReportRepository against PostgreSQL. The
// raw insight payload is kept as JSONB so a share link can replay exactly
// what the user saw.
type ReportStore struct{ db *sql.DB }

// NewReportStore creates a Postgres-backed report store.
func NewReportStore(db *sql.DB) *ReportStore { return &ReportStore{db: db} }

func (s *ReportStore) Save(ctx context.Context, report *domain.Report) error {
	payload, err := json.Marshal(report.Insights)
	if err != nil {
		return fmt.Errorf("encode report insights: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO reports (name, report_type, bm_id, object_id, date_preset, insights)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, report.Name, report.Type, report.BMID, report.ObjectID, report.DatePreset, payload).
		Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func (s *ReportStore) Get(ctx context.Context, id int64) (*domain.Report, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, report_type, bm_id, object_id, date_preset, insights, created_at
		FROM reports
		WHERE id = $1
	`, id)
	return scanReport(row)
}

func (s *ReportStore) List(ctx context.Context, limit int) ([]domain.Report, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, report_type, bm_id, object_id, date_preset, insights, created_at
		FROM reports
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []domain.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *ReportStore) LatestFor(ctx context.Context, bmID, objectID string, reportType domain.ReportType, datePreset string) (*domain.Report, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, report_type, bm_id, object_id, date_preset, insights, created_at
		FROM reports
		WHERE bm_id = $1 AND object_id = $2 AND report_type = $3 AND date_preset = $4
		ORDER BY created_at DESC
		LIMIT 1
	`, bmID, objectID, reportType, datePreset)
	return scanReport(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*domain.Report, error) {
	r := &domain.Report{}
	var payload []byte
	err := row.Scan(&r.ID, &r.Name, &r.Type, &r.BMID, &r.ObjectID, &r.DatePreset, &payload, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan report: %w", err)
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &r.Insights); err != nil {
			return nil, fmt.Errorf("decode report insights: %w", err)
		}
	}
	return r, nil
}
