package services

import (
	"fmt"
	"log"
	"quickpark/database"
	"quickpark/models"
	"time"
)

// SweepExpiredLocks 清掉過期軟鎖：只清租約欄位，不動 status
// 批次、冪等，掃不到東西也沒關係
func SweepExpiredLocks() error {
	now := time.Now().UTC()

	res := database.DB.Model(&models.Slot{}).
		Where("status = ? AND lock_expires_at IS NOT NULL AND lock_expires_at <= ?", models.SlotAvailable, now).
		Updates(map[string]interface{}{
			"lock_holder_id":  nil,
			"lock_expires_at": nil,
			"updated_at":      now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to sweep expired locks: %w", res.Error)
	}

	if res.RowsAffected > 0 {
		log.Printf("Swept %d expired slot locks", res.RowsAffected)
	}
	return nil
}

// SweepAbandonedReservations 收回逾期未佔用的預約，整位重設為 available
// occupied 的車位一律不碰，那是感測器的事
func SweepAbandonedReservations() error {
	now := time.Now().UTC()

	res := database.DB.Model(&models.Slot{}).
		Where("status = ? AND lock_expires_at IS NOT NULL AND lock_expires_at <= ?", models.SlotReserved, now).
		Updates(map[string]interface{}{
			"status":          models.SlotAvailable,
			"occupant_id":     nil,
			"lock_holder_id":  nil,
			"lock_expires_at": nil,
			"updated_at":      now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to sweep abandoned reservations: %w", res.Error)
	}

	if res.RowsAffected > 0 {
		log.Printf("Reset %d abandoned reservations", res.RowsAffected)
	}
	return nil
}
