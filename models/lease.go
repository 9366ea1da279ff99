package models

import "time"

// Lease 租約值物件：持有人 + 到期時間
// 軟鎖（選位）和預約期限共用同一套語意，到期後任何人都可以搶走
type Lease struct {
	HolderID  int
	ExpiresAt time.Time
}

// Expired 租約是否已過期
func (l Lease) Expired(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}

// Live 租約是否仍然有效
func (l Lease) Live(now time.Time) bool {
	return l.ExpiresAt.After(now)
}

// HeldBy 租約是否由指定會員持有
func (l Lease) HeldBy(userID int) bool {
	return l.HolderID == userID
}
