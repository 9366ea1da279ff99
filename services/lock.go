package services

import (
	"errors"
	"fmt"
	"log"
	"quickpark/database"
	"quickpark/models"
	"time"

	"gorm.io/gorm"
)

// 選位軟鎖的租期範圍：client 可以在上限內自訂
const (
	DefaultLockLeaseSeconds = 120
	MaxLockLeaseSeconds     = 600
)

// normalizeLeaseSeconds 非正數落回預設值，超過上限截到上限
func normalizeLeaseSeconds(leaseSeconds int) int {
	if leaseSeconds <= 0 {
		return DefaultLockLeaseSeconds
	}
	if leaseSeconds > MaxLockLeaseSeconds {
		return MaxLockLeaseSeconds
	}
	return leaseSeconds
}

// AcquireOrExtendLock 取得或延長車位軟鎖
// 同一人重複呼叫等於續約（就算租約已過期但還沒被清掉也一樣），不會發任何硬體指令
func AcquireOrExtendLock(slotNumber, userID, leaseSeconds int) (*models.Slot, error) {
	leaseSeconds = normalizeLeaseSeconds(leaseSeconds)
	now := time.Now().UTC()

	var slot models.Slot
	if err := database.DB.Where("slot_number = ?", slotNumber).First(&slot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: slot %d does not exist", ErrNotFound, slotNumber)
		}
		log.Printf("Failed to find slot %d: %v", slotNumber, err)
		return nil, fmt.Errorf("failed to find slot %d: %w", slotNumber, err)
	}

	// 已被預約或佔用的車位不能再上鎖
	if slot.Status != models.SlotAvailable {
		return nil, fmt.Errorf("%w: slot %d is %s", ErrConflict, slotNumber, slot.Status)
	}

	// 別人的租約還活著就不能搶
	if lease := slot.Lease(); lease != nil && !lease.HeldBy(userID) && lease.Live(now) {
		return nil, fmt.Errorf("%w: slot %d is locked by another user until %s",
			ErrConflict, slotNumber, lease.ExpiresAt.Format(time.RFC3339))
	}

	// 條件式更新：commit 時再驗一次前提，避免兩個請求同時搶到
	expiresAt := now.Add(time.Duration(leaseSeconds) * time.Second)
	res := database.DB.Model(&models.Slot{}).
		Where("slot_number = ? AND status = ?", slotNumber, models.SlotAvailable).
		Where("lock_holder_id IS NULL OR lock_holder_id = ? OR lock_expires_at <= ?", userID, now).
		Updates(map[string]interface{}{
			"lock_holder_id":  userID,
			"lock_expires_at": expiresAt,
			"updated_at":      now,
		})
	if res.Error != nil {
		log.Printf("Failed to lock slot %d for user %d: %v", slotNumber, userID, res.Error)
		return nil, fmt.Errorf("failed to lock slot %d: %w", slotNumber, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: slot %d was taken by another request", ErrConflict, slotNumber)
	}

	if err := database.DB.Where("slot_number = ?", slotNumber).First(&slot).Error; err != nil {
		return nil, fmt.Errorf("failed to reload slot %d: %w", slotNumber, err)
	}

	log.Printf("Slot %d locked by user %d until %s", slotNumber, userID, expiresAt.Format(time.RFC3339))
	return &slot, nil
}

// ReleaseLock 釋放軟鎖，只有持有人自己可以放
func ReleaseLock(slotNumber, userID int) (*models.Slot, error) {
	now := time.Now().UTC()

	var slot models.Slot
	if err := database.DB.Where("slot_number = ?", slotNumber).First(&slot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: slot %d does not exist", ErrNotFound, slotNumber)
		}
		log.Printf("Failed to find slot %d: %v", slotNumber, err)
		return nil, fmt.Errorf("failed to find slot %d: %w", slotNumber, err)
	}

	lease := slot.Lease()
	if slot.Status != models.SlotAvailable || lease == nil || !lease.HeldBy(userID) {
		return nil, fmt.Errorf("%w: slot %d is not locked by user %d", ErrForbidden, slotNumber, userID)
	}

	res := database.DB.Model(&models.Slot{}).
		Where("slot_number = ? AND status = ? AND lock_holder_id = ?", slotNumber, models.SlotAvailable, userID).
		Updates(map[string]interface{}{
			"lock_holder_id":  nil,
			"lock_expires_at": nil,
			"updated_at":      now,
		})
	if res.Error != nil {
		log.Printf("Failed to release lock on slot %d for user %d: %v", slotNumber, userID, res.Error)
		return nil, fmt.Errorf("failed to release lock on slot %d: %w", slotNumber, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: slot %d is not locked by user %d", ErrForbidden, slotNumber, userID)
	}

	if err := database.DB.Where("slot_number = ?", slotNumber).First(&slot).Error; err != nil {
		return nil, fmt.Errorf("failed to reload slot %d: %w", slotNumber, err)
	}

	log.Printf("Slot %d lock released by user %d", slotNumber, userID)
	return &slot, nil
}

// GetAllSlots 查詢所有車位現況
func GetAllSlots() ([]models.Slot, error) {
	var slots []models.Slot
	if err := database.DB.Order("slot_number asc").Find(&slots).Error; err != nil {
		log.Printf("Failed to list slots: %v", err)
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	return slots, nil
}

// GetSlotByNumber 查詢單一車位
func GetSlotByNumber(slotNumber int) (*models.Slot, error) {
	var slot models.Slot
	if err := database.DB.Where("slot_number = ?", slotNumber).First(&slot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: slot %d does not exist", ErrNotFound, slotNumber)
		}
		return nil, fmt.Errorf("failed to find slot %d: %w", slotNumber, err)
	}
	return &slot, nil
}
