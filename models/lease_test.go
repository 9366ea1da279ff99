package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLeaseExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	future := Lease{HolderID: 7, ExpiresAt: now.Add(time.Minute)}
	assert.True(t, future.Live(now))
	assert.False(t, future.Expired(now))

	past := Lease{HolderID: 7, ExpiresAt: now.Add(-time.Minute)}
	assert.False(t, past.Live(now))
	assert.True(t, past.Expired(now))

	// 剛好到期視為已過期
	exact := Lease{HolderID: 7, ExpiresAt: now}
	assert.True(t, exact.Expired(now))
	assert.False(t, exact.Live(now))
}

func TestLeaseHeldBy(t *testing.T) {
	lease := Lease{HolderID: 42, ExpiresAt: time.Now().Add(time.Hour)}

	assert.True(t, lease.HeldBy(42))
	assert.False(t, lease.HeldBy(7))
}

func TestSlotLeasePairing(t *testing.T) {
	now := time.Now()
	holder := 3

	// 兩個欄位都有值才構成租約
	slot := Slot{SlotNumber: 1, Status: SlotAvailable, LockHolderID: &holder, LockExpiresAt: &now}
	lease := slot.Lease()
	assert.NotNil(t, lease)
	assert.Equal(t, 3, lease.HolderID)

	// 缺任何一邊都視為沒有租約
	assert.Nil(t, (&Slot{SlotNumber: 2, LockHolderID: &holder}).Lease())
	assert.Nil(t, (&Slot{SlotNumber: 3, LockExpiresAt: &now}).Lease())
	assert.Nil(t, (&Slot{SlotNumber: 4}).Lease())
}
