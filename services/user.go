package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"quickpark/database"
	"quickpark/models"
	"quickpark/utils"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// RegisterUser 註冊會員
func RegisterUser(user *models.User) error {
	// 檢查是否有重複的 email
	var existing models.User
	if err := database.DB.Where("email = ?", user.Email).First(&existing).Error; err == nil {
		return fmt.Errorf("%w: email %s is already in use", ErrConflict, user.Email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Failed to check for duplicate email: %v", err)
		return fmt.Errorf("failed to check for duplicate email: %w", err)
	}

	if user.Role != "user" && user.Role != "admin" {
		user.Role = "user"
	}

	// 哈希密碼
	hashedPassword, err := utils.HashPassword(user.Password)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hashedPassword

	// 加密 payment_info
	if user.PaymentInfo != "" {
		encrypted, err := utils.EncryptPaymentInfo(user.PaymentInfo)
		if err != nil {
			log.Printf("Failed to encrypt payment_info: %v", err)
			return fmt.Errorf("failed to encrypt payment_info: %w", err)
		}
		user.PaymentInfo = encrypted
	}

	if err := database.DB.Create(user).Error; err != nil {
		// 兩個請求同時註冊同一個 email 時，前面的查詢擋不住，靠 uniqueIndex 收尾
		if mysqlErr, ok := err.(*mysql.MySQLError); ok && mysqlErr.Number == 1062 {
			return fmt.Errorf("%w: email %s is already in use", ErrConflict, user.Email)
		}
		log.Printf("Failed to register user: %v", err)
		return fmt.Errorf("failed to register user: %w", err)
	}

	log.Printf("Successfully registered user with ID %d", user.UserID)
	return nil
}

// LoginUser 登入會員
func LoginUser(email, password string) (*models.User, error) {
	var user models.User
	if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("User with email %s not found", email)
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		log.Printf("Failed to login user: %v", err)
		return nil, fmt.Errorf("failed to login user: %w", err)
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		log.Printf("Invalid password for email %s", email)
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	log.Printf("User with ID %d logged in successfully", user.UserID)
	return &user, nil
}

// GetUserByID 根據ID查詢會員（對外協作介面的 lookupUser）
func GetUserByID(id int) (*models.User, error) {
	var user models.User
	if err := database.DB.Where("user_id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d does not exist", ErrNotFound, id)
		}
		log.Printf("Failed to get user by ID %d: %v", id, err)
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}
	return &user, nil
}

// OTP 有效期限
const passwordResetTTL = 10 * time.Minute

// CreatePasswordReset 產生密碼重設 OTP，寄送不在本服務範圍（只記 log）
func CreatePasswordReset(email string) (*models.PasswordReset, error) {
	var user models.User
	if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no account for email %s", ErrNotFound, email)
		}
		return nil, fmt.Errorf("failed to look up email %s: %w", email, err)
	}

	code, err := generateOTP(6)
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP: %w", err)
	}

	reset := models.PasswordReset{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().UTC().Add(passwordResetTTL),
	}
	if err := database.DB.Create(&reset).Error; err != nil {
		log.Printf("Failed to store password reset for %s: %v", email, err)
		return nil, fmt.Errorf("failed to store password reset: %w", err)
	}

	// 信件發送是外部服務的事，這裡先記 log 方便開發環境測試
	log.Printf("Password reset OTP for %s generated (expires %s)", email, reset.ExpiresAt.Format(time.RFC3339))
	return &reset, nil
}

// ResetPassword 驗證 OTP 並更新密碼
func ResetPassword(email, code, newPassword string) error {
	now := time.Now().UTC()

	var reset models.PasswordReset
	if err := database.DB.
		Where("email = ? AND code = ? AND used = ? AND expires_at > ?", email, code, false, now).
		Order("created_at desc").
		First(&reset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: invalid or expired OTP", ErrUnauthorized)
		}
		return fmt.Errorf("failed to verify OTP: %w", err)
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("email = ?", email).Update("password", hashedPassword)
		if res.Error != nil {
			return fmt.Errorf("failed to update password for %s: %w", email, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: no account for email %s", ErrNotFound, email)
		}
		if err := tx.Model(&reset).Update("used", true).Error; err != nil {
			return fmt.Errorf("failed to mark OTP used: %w", err)
		}
		log.Printf("Password reset completed for %s", email)
		return nil
	})
}

// generateOTP 產生指定長度的數字驗證碼
func generateOTP(digits int) (string, error) {
	code := make([]byte, digits)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}
