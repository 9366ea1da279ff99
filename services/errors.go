package services

import "errors"

// 統一的錯誤分類，handler 依此對應 HTTP 狀態碼
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInsufficientFunds = errors.New("insufficient funds")
)
