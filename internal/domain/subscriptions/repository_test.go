package subscriptions

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("creating sqlmock connection: %s", err)
	}

	silent := logger.New(log.New(io.Discard, "", log.LstdFlags), logger.Config{LogLevel: logger.Silent})
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, DriverName: "postgres"}), &gorm.Config{Logger: silent})
	if err != nil {
		t.Fatalf("opening GORM connection: %s", err)
	}

	return gormDB, mock, func() { sqlDB.Close() }
}

func TestFindByPaymentReference(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "payment_reference", "status"}).
		AddRow(3, 9, "PAY-1", StatusPending)
	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE payment_reference = \$1`).
		WithArgs("PAY-1", 1).
		WillReturnRows(rows)

	sub, err := repo.FindByPaymentReference("PAY-1")

	assert.NoError(t, err)
	assert.Equal(t, uint(9), sub.UserID)
	assert.Equal(t, "PAY-1", *sub.PaymentReference)
}

func TestFindByPaymentReference_NotFound(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE payment_reference = \$1`).
		WithArgs("PAY-missing", 1).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := repo.FindByPaymentReference("PAY-missing")

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindExpired_QueriesStaleActiveRows(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "is_active", "status"}).
		AddRow(1, 2, true, StatusActive).
		AddRow(2, 5, true, StatusActive)
	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE end_date < \$1 AND is_active = \$2`).
		WithArgs(now, true).
		WillReturnRows(rows)

	subs, err := repo.FindExpired(now)

	assert.NoError(t, err)
	assert.Len(t, subs, 2)
}

func TestConfirmByReference_LocksActivatesAndSaves(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "payment_reference", "status", "is_active"}).
		AddRow(3, 9, "PAY-1", StatusPending, false)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE payment_reference = \$1 (.+) FOR UPDATE`).
		WithArgs("PAY-1", 1).
		WillReturnRows(rows)
	mock.ExpectExec(`UPDATE "subscriptions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	now := time.Now()
	sub, err := repo.ConfirmByReference("PAY-1", func(s *Subscription) error {
		return s.Activate(now)
	})

	assert.NoError(t, err)
	assert.Equal(t, StatusActive, sub.Status)
	assert.True(t, sub.EffectivelyActive(now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmByReference_ApplyErrorRollsBack(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "payment_reference", "status", "is_active"}).
		AddRow(3, 9, "PAY-1", StatusActive, true)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE payment_reference = \$1 (.+) FOR UPDATE`).
		WithArgs("PAY-1", 1).
		WillReturnRows(rows)
	mock.ExpectRollback()

	_, err := repo.ConfirmByReference("PAY-1", func(s *Subscription) error {
		if s.Status == StatusActive {
			return ErrAlreadyActive
		}
		return s.Activate(time.Now())
	})

	assert.ErrorIs(t, err, ErrAlreadyActive)
	assert.NoError(t, mock.ExpectationsWereMet(), "nothing is written for a replayed confirmation")
}
