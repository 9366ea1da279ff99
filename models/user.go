package models

import "time"

type User struct {
	UserID        int       `json:"user_id" gorm:"primaryKey;autoIncrement;type:INT"`
	Name          string    `json:"name" gorm:"type:varchar(50);not null"`
	Email         string    `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Phone         string    `json:"phone" gorm:"type:varchar(20)"`
	Password      string    `json:"password" gorm:"type:varchar(100);not null"`
	Role          string    `json:"role" gorm:"type:enum('user', 'admin');not null;default:'user'"`
	WalletBalance float64   `json:"wallet_balance" gorm:"type:decimal(10,2);default:0.00"`
	PaymentInfo   string    `json:"payment_info" gorm:"type:varchar(200)"` // AES 加密後存放
	LicensePlate  string    `json:"license_plate" gorm:"type:varchar(20)"`
	Vehicles      []Vehicle `json:"-" gorm:"foreignKey:UserID;references:UserID"`
	CreatedAt     time.Time `json:"created_at" gorm:"column:created_at"`
}

func (User) TableName() string {
	return "user"
}

type UserResponse struct {
	UserID        int     `json:"user_id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	Role          string  `json:"role"`
	WalletBalance float64 `json:"wallet_balance"`
	LicensePlate  string  `json:"license_plate"`
}

// ToResponse 轉換為回應格式，不洩漏密碼與加密後的付款資訊
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		UserID:        u.UserID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          u.Role,
		WalletBalance: u.WalletBalance,
		LicensePlate:  u.LicensePlate,
	}
}

// PasswordReset 密碼重設 OTP：寄送通道不在本服務範圍，只負責產生與驗證
type PasswordReset struct {
	ID        int       `json:"id" gorm:"primaryKey;autoIncrement;type:INT"`
	Email     string    `json:"email" gorm:"type:varchar(100);index;not null"`
	Code      string    `json:"code" gorm:"type:varchar(10);not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"type:datetime;not null"`
	Used      bool      `json:"used" gorm:"type:tinyint(1);default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (PasswordReset) TableName() string {
	return "password_reset"
}
