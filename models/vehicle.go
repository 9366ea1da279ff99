package models

import "time"

// Vehicle 車輛表：支援一人多車 + 預設車牌
type Vehicle struct {
	LicensePlate string `gorm:"primaryKey;size:20;column:license_plate" json:"license_plate" binding:"required"`
	UserID       int    `gorm:"column:user_id;index:idx_user" json:"user_id" binding:"required"`
	Brand        string `gorm:"size:50;column:brand" json:"brand,omitempty"`
	Model        string `gorm:"size:50;column:model" json:"model,omitempty"`
	Color        string `gorm:"size:20;column:color" json:"color,omitempty"`
	IsDefault    bool   `gorm:"column:is_default;default:false" json:"is_default"`

	// 關聯：這台車屬於哪個會員（可選 Preload）
	User User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Vehicle) TableName() string {
	return "vehicle"
}

type VehicleResponse struct {
	LicensePlate string `json:"license_plate"`
	Brand        string `json:"brand,omitempty"`
	Model        string `json:"model,omitempty"`
	Color        string `json:"color,omitempty"`
	IsDefault    bool   `json:"is_default"`
	CreatedAt    string `json:"created_at"`
}

func (v *Vehicle) ToResponse() VehicleResponse {
	return VehicleResponse{
		LicensePlate: v.LicensePlate,
		Brand:        v.Brand,
		Model:        v.Model,
		Color:        v.Color,
		IsDefault:    v.IsDefault,
		CreatedAt:    v.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
