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

// DefaultReservationSeconds 預約保留期限，逾期未佔用會被 Janitor 收回
const DefaultReservationSeconds = 30 * 60

// ConfirmReservation 將活著的軟鎖轉成正式預約
// 跨車位檢查（一人同時只能有一個 reserved/occupied 車位）先做，再驗軟鎖，
// 最後用條件式更新 commit，RowsAffected=0 代表被別的請求搶先
func ConfirmReservation(slotNumber, userID int) (*models.Slot, error) {
	now := time.Now().UTC()
	deadline := now.Add(DefaultReservationSeconds * time.Second)

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		// 跨車位檢查：先擋掉同一人搶兩個位子
		var held int64
		if err := tx.Model(&models.Slot{}).
			Where("occupant_id = ? AND status IN ?", userID, []string{models.SlotReserved, models.SlotOccupied}).
			Count(&held).Error; err != nil {
			return fmt.Errorf("failed to check existing reservations for user %d: %w", userID, err)
		}
		if held > 0 {
			return fmt.Errorf("%w: user %d already holds a reserved or occupied slot", ErrConflict, userID)
		}

		var slot models.Slot
		if err := tx.Where("slot_number = ?", slotNumber).First(&slot).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: slot %d does not exist", ErrNotFound, slotNumber)
			}
			return fmt.Errorf("failed to find slot %d: %w", slotNumber, err)
		}

		if slot.Status != models.SlotAvailable {
			return fmt.Errorf("%w: slot %d is %s", ErrConflict, slotNumber, slot.Status)
		}

		lease := slot.Lease()
		if lease == nil || !lease.HeldBy(userID) || lease.Expired(now) {
			return fmt.Errorf("%w: user %d does not hold a live lock on slot %d", ErrForbidden, userID, slotNumber)
		}

		// commit：軟鎖換成預約期限，租約欄位改記 30 分鐘 deadline
		res := tx.Model(&models.Slot{}).
			Where("slot_number = ? AND status = ? AND lock_holder_id = ? AND lock_expires_at > ?",
				slotNumber, models.SlotAvailable, userID, now).
			Updates(map[string]interface{}{
				"status":          models.SlotReserved,
				"occupant_id":     userID,
				"lock_holder_id":  userID,
				"lock_expires_at": deadline,
				"updated_at":      now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to confirm reservation on slot %d: %w", slotNumber, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: slot %d was taken by another request", ErrConflict, slotNumber)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slot, err := GetSlotByNumber(slotNumber)
	if err != nil {
		return nil, err
	}

	log.Printf("Slot %d reserved by user %d, deadline %s", slotNumber, userID, deadline.Format(time.RFC3339))
	return slot, nil
}

// CancelReservation 取消預約，僅限預約人本人或管理員
func CancelReservation(slotNumber, userID int, isAdmin bool) (*models.Slot, error) {
	now := time.Now().UTC()

	var slot models.Slot
	if err := database.DB.Where("slot_number = ?", slotNumber).First(&slot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: slot %d does not exist", ErrNotFound, slotNumber)
		}
		log.Printf("Failed to find slot %d: %v", slotNumber, err)
		return nil, fmt.Errorf("failed to find slot %d: %w", slotNumber, err)
	}

	if slot.Status != models.SlotReserved {
		return nil, fmt.Errorf("%w: slot %d is %s, not reserved", ErrConflict, slotNumber, slot.Status)
	}

	if !isAdmin && (slot.OccupantID == nil || *slot.OccupantID != userID) {
		return nil, fmt.Errorf("%w: slot %d is not reserved by user %d", ErrForbidden, slotNumber, userID)
	}

	res := database.DB.Model(&models.Slot{}).
		Where("slot_number = ? AND status = ?", slotNumber, models.SlotReserved).
		Updates(map[string]interface{}{
			"status":          models.SlotAvailable,
			"occupant_id":     nil,
			"lock_holder_id":  nil,
			"lock_expires_at": nil,
			"updated_at":      now,
		})
	if res.Error != nil {
		log.Printf("Failed to cancel reservation on slot %d: %v", slotNumber, res.Error)
		return nil, fmt.Errorf("failed to cancel reservation on slot %d: %w", slotNumber, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: slot %d is no longer reserved", ErrConflict, slotNumber)
	}

	if err := database.DB.Where("slot_number = ?", slotNumber).First(&slot).Error; err != nil {
		return nil, fmt.Errorf("failed to reload slot %d: %w", slotNumber, err)
	}

	log.Printf("Reservation on slot %d cancelled (user %d, admin=%v)", slotNumber, userID, isAdmin)
	return &slot, nil
}
