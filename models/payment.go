package models

import "time"

// 交易類型
const (
	PaymentTopup  = "topup"
	PaymentCharge = "charge"
)

// PaymentLog 錢包交易紀錄：儲值為正、扣款為負都記一筆
type PaymentLog struct {
	PaymentID int       `json:"payment_id" gorm:"primaryKey;autoIncrement;type:INT"`
	UserID    int       `json:"user_id" gorm:"index;not null;type:INT"`
	Amount    float64   `json:"amount" gorm:"type:decimal(10,2);not null"`
	Kind      string    `json:"kind" gorm:"type:enum('topup', 'charge');not null"`
	Reference string    `json:"reference" gorm:"type:varchar(100)"` // 例如 slot-7-stay
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (PaymentLog) TableName() string {
	return "payment_log"
}

type PaymentLogResponse struct {
	PaymentID int       `json:"payment_id"`
	UserID    int       `json:"user_id"`
	Amount    float64   `json:"amount"`
	Kind      string    `json:"kind"`
	Reference string    `json:"reference"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *PaymentLog) ToResponse() PaymentLogResponse {
	return PaymentLogResponse{
		PaymentID: p.PaymentID,
		UserID:    p.UserID,
		Amount:    p.Amount,
		Kind:      p.Kind,
		Reference: p.Reference,
		CreatedAt: p.CreatedAt,
	}
}
