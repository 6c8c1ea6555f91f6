package db

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestRunKeystoneMigration(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer sqlDB.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS telemetry_snapshots").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := RunKeystoneMigration(context.Background(), sqlDB); err != nil {
		t.Errorf("migration failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %s", err)
	}
}
