package services

import (
	"testing"

	"quickpark/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB 以 sqlmock 頂替 database.DB，測試結束後還原
// 關掉隱式交易，單一寫入就不用多期望一對 Begin/Commit
func newMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gdb, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	old := database.DB
	database.DB = gdb
	t.Cleanup(func() {
		database.DB = old
		_ = db.Close()
	})
	return mock
}
