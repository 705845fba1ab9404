package infrastructure

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"adsboard/internal/domain"
)

func TestBusinessManagerStore_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock: %v", err)
	}
	defer db.Close()

	store := NewBusinessManagerStore(db)

	mock.ExpectExec("INSERT INTO business_managers").
		WithArgs("123456", "token-abc").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = store.Upsert(context.Background(), &domain.BusinessManager{
		BMID:        "123456",
		AccessToken: "token-abc",
	})
	if err != nil {
		t.Errorf("Upsert() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %s", err)
	}
}

func TestBusinessManagerStore_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock: %v", err)
	}
	defer db.Close()

	store := NewBusinessManagerStore(db)
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT bm_id, access_token, created_at, updated_at").
			WithArgs("123456").
			WillReturnRows(sqlmock.NewRows([]string{"bm_id", "access_token", "created_at", "updated_at"}).
				AddRow("123456", "token-abc", now, now))

		bm, err := store.Get(context.Background(), "123456")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if bm.BMID != "123456" || bm.AccessToken != "token-abc" {
			t.Errorf("Get() = %+v, want bm_id 123456 with token-abc", bm)
		}
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery("SELECT bm_id, access_token, created_at, updated_at").
			WithArgs("999").
			WillReturnRows(sqlmock.NewRows([]string{"bm_id", "access_token", "created_at", "updated_at"}))

		_, err := store.Get(context.Background(), "999")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Get() error = %v, want ErrNotFound", err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %s", err)
	}
}

func TestBusinessManagerStore_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock: %v", err)
	}
	defer db.Close()

	store := NewBusinessManagerStore(db)
	now := time.Now()

	mock.ExpectQuery("SELECT bm_id, access_token, created_at, updated_at").
		WillReturnRows(sqlmock.NewRows([]string{"bm_id", "access_token", "created_at", "updated_at"}).
			AddRow("111", "token-1", now, now).
			AddRow("222", "token-2", now, now))

	bms, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(bms) != 2 {
		t.Fatalf("List() returned %d managers, want 2", len(bms))
	}
	if bms[0].BMID != "111" || bms[1].BMID != "222" {
		t.Errorf("List() order = %s, %s, want 111, 222", bms[0].BMID, bms[1].BMID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %s", err)
	}
}

func TestBusinessManagerStore_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock: %v", err)
	}
	defer db.Close()

	store := NewBusinessManagerStore(db)

	t.Run("deletes existing", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM business_managers").
			WithArgs("123456").
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := store.Delete(context.Background(), "123456"); err != nil {
			t.Errorf("Delete() error = %v", err)
		}
	})

	t.Run("missing is ErrNotFound", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM business_managers").
			WithArgs("999").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.Delete(context.Background(), "999")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Delete() error = %v, want ErrNotFound", err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %s", err)
	}
}
