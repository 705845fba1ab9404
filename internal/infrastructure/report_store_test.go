package infrastructure

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"adsboard/internal/domain"
)

func TestReportStore_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock: %v", err)
	}
	defer db.Close()

	store := NewReportStore(db)
	now := time.Now()

	report := &domain.Report{
		Name:       "Account Insights: Demo",
		Type:       domain.ReportTypeAdAccount,
		BMID:       "123",
		ObjectID:   "act_1",
		DatePreset: "last_7d",
		Insights: []domain.InsightRecord{
			{DateStart: "2024-06-01", Impressions: "100", Clicks: "5", Spend: "10.50"},
		},
	}

	mock.ExpectQuery("INSERT INTO reports").
		WithArgs("Account Insights: Demo", string(domain.ReportTypeAdAccount), "123", "act_1", "last_7d", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), now))

	if err := store.Save(context.Background(), report); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if report.ID != 42 {
		t.Errorf("Save() id = %d, want 42", report.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %s", err)
	}
}

func TestReportStore_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock: %v", err)
	}
	defer db.Close()

	store := NewReportStore(db)
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		insights := []byte(`[{"date_start":"2024-06-01","impressions":"100","clicks":"5","spend":"10.50"}]`)
		mock.ExpectQuery("SELECT id, name, report_type").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "name", "report_type", "bm_id", "object_id", "date_preset", "insights", "created_at",
			}).AddRow(int64(42), "Account Insights: Demo", "ad_account", "123", "act_1", "last_7d", insights, now))

		report, err := store.Get(context.Background(), 42)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if report.Type != domain.ReportTypeAdAccount {
			t.Errorf("Get() type = %s, want ad_account", report.Type)
		}
		if len(report.Insights) != 1 || string(report.Insights[0].Impressions) != "100" {
			t.Errorf("Get() insights = %+v, want one record with 100 impressions", report.Insights)
		}
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, name, report_type").
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "name", "report_type", "bm_id", "object_id", "date_preset", "insights", "created_at",
			}))

		_, err := store.Get(context.Background(), 99)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Get() error = %v, want ErrNotFound", err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %s", err)
	}
}

func TestReportStore_LatestFor(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock: %v", err)
	}
	defer db.Close()

	store := NewReportStore(db)
	now := time.Now()

	mock.ExpectQuery("SELECT id, name, report_type").
		WithArgs("123", "camp_9", string(domain.ReportTypeCampaign), "last_30d").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "report_type", "bm_id", "object_id", "date_preset", "insights", "created_at",
		}).AddRow(int64(7), "Campaign Insights: Promo", "campaign", "123", "camp_9", "last_30d", []byte(`[]`), now))

	report, err := store.LatestFor(context.Background(), "123", "camp_9", domain.ReportTypeCampaign, "last_30d")
	if err != nil {
		t.Fatalf("LatestFor() error = %v", err)
	}
	if report.ID != 7 {
		t.Errorf("LatestFor() id = %d, want 7", report.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %s", err)
	}
}
