package services

import (
	"testing"

	"quickpark/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestRegisterUserDuplicateEmailOnInsert(t *testing.T) {
	mock := newMockDB(t)

	// 查詢時還沒有人用這個 email，insert 時撞到 uniqueIndex（兩個請求同時註冊）
	mock.ExpectQuery("SELECT \\* FROM `user`").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	mock.ExpectExec("INSERT INTO `user`").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@example.com'"})

	err := RegisterUser(&models.User{
		Name:     "A",
		Email:    "a@example.com",
		Password: "password123",
		Role:     "user",
	})
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
