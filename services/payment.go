package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"quickpark/database"
	"quickpark/models"
	"strconv"

	"gorm.io/gorm"
)

// DefaultHourlyRate 預設停車費率，可用環境變數 HOURLY_RATE 覆蓋
const DefaultHourlyRate = 20.0

func hourlyRate() float64 {
	if v := os.Getenv("HOURLY_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil && rate > 0 {
			return rate
		}
	}
	return DefaultHourlyRate
}

// CalculateStayFare 依停留秒數計費，不足一小時以一小時計
func CalculateStayFare(staySeconds int64, rate float64) float64 {
	if staySeconds <= 0 || rate <= 0 {
		return 0
	}
	hours := math.Ceil(float64(staySeconds) / 3600.0)
	return hours * rate
}

// TopUpWallet 錢包儲值並記一筆交易
func TopUpWallet(userID int, amount float64) (*models.User, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: top-up amount must be positive", ErrConflict)
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("user_id = ?", userID).
			Update("wallet_balance", gorm.Expr("wallet_balance + ?", amount))
		if res.Error != nil {
			return fmt.Errorf("failed to top up wallet for user %d: %w", userID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: user %d does not exist", ErrNotFound, userID)
		}

		entry := models.PaymentLog{
			UserID: userID,
			Amount: amount,
			Kind:   models.PaymentTopup,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to log top-up for user %d: %w", userID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	user, err := GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	log.Printf("User %d topped up %.2f, balance is now %.2f", userID, amount, user.WalletBalance)
	return user, nil
}

// DebitWallet 扣款：餘額不足回 ErrInsufficientFunds，條件式更新避免扣成負數
func DebitWallet(userID int, amount float64, reference string) error {
	if amount <= 0 {
		return fmt.Errorf("%w: debit amount must be positive", ErrConflict)
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("user_id = ? AND wallet_balance >= ?", userID, amount).
			Update("wallet_balance", gorm.Expr("wallet_balance - ?", amount))
		if res.Error != nil {
			return fmt.Errorf("failed to debit wallet for user %d: %w", userID, res.Error)
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.User{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to verify user %d: %w", userID, err)
			}
			if count == 0 {
				return fmt.Errorf("%w: user %d does not exist", ErrNotFound, userID)
			}
			return fmt.Errorf("%w: user %d cannot cover %.2f", ErrInsufficientFunds, userID, amount)
		}

		entry := models.PaymentLog{
			UserID:    userID,
			Amount:    -amount,
			Kind:      models.PaymentCharge,
			Reference: reference,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to log charge for user %d: %w", userID, err)
		}
		return nil
	})
}

// ChargeForStay 依停留時間向佔用人收費，由 Occupancy Arbiter 在結束停留時呼叫
func ChargeForStay(userID, slotNumber int, staySeconds int64) error {
	fare := CalculateStayFare(staySeconds, hourlyRate())
	if fare == 0 {
		return nil
	}

	reference := fmt.Sprintf("slot-%d-stay", slotNumber)
	if err := DebitWallet(userID, fare, reference); err != nil {
		if errors.Is(err, ErrInsufficientFunds) {
			log.Printf("User %d has insufficient funds for %.2f (slot %d stay)", userID, fare, slotNumber)
		}
		return err
	}

	log.Printf("Charged user %d %.2f for slot %d stay (%d seconds)", userID, fare, slotNumber, staySeconds)
	return nil
}

// GetPaymentLogs 查詢會員的交易紀錄，新的在前
func GetPaymentLogs(userID int) ([]models.PaymentLog, error) {
	var logs []models.PaymentLog
	if err := database.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&logs).Error; err != nil {
		log.Printf("Failed to fetch payment logs for user %d: %v", userID, err)
		return nil, fmt.Errorf("failed to fetch payment logs: %w", err)
	}
	return logs, nil
}
