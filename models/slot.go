package models

import "time"

// 車位狀態：三種狀態互斥，任一時刻只會是其中一種
const (
	SlotAvailable = "available"
	SlotReserved  = "reserved"
	SlotOccupied  = "occupied"
)

// Slot 車位表：一筆代表一個實體車位，開站時建立後不再刪除，只在三種狀態間循環
// lock_holder_id / lock_expires_at 成對出現：
//   - status=available 時是選位軟鎖
//   - status=reserved 時是預約期限（給 Janitor 清理逾期預約用）
type Slot struct {
	SlotNumber      int        `json:"slot_number" gorm:"primaryKey;type:INT;column:slot_number"`
	Status          string     `json:"status" gorm:"type:enum('available', 'reserved', 'occupied');not null;default:'available'"`
	OccupantID      *int       `json:"occupant_id" gorm:"type:INT;default:null;column:occupant_id"`
	LockHolderID    *int       `json:"lock_holder_id" gorm:"type:INT;default:null;column:lock_holder_id"`
	LockExpiresAt   *time.Time `json:"lock_expires_at" gorm:"type:datetime;default:null;column:lock_expires_at"`
	OccupiedSince   *time.Time `json:"occupied_since" gorm:"type:datetime;default:null;column:occupied_since"`
	LastStaySeconds int64      `json:"last_stay_seconds" gorm:"type:INT;default:0;column:last_stay_seconds"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Slot) TableName() string {
	return "slot"
}

// Lease 取出目前的租約，欄位不成對時視為無租約
func (s *Slot) Lease() *Lease {
	if s.LockHolderID == nil || s.LockExpiresAt == nil {
		return nil
	}
	return &Lease{HolderID: *s.LockHolderID, ExpiresAt: *s.LockExpiresAt}
}

type SlotResponse struct {
	SlotNumber      int        `json:"slot_number"`
	Status          string     `json:"status"`
	OccupantID      *int       `json:"occupant_id,omitempty"`
	LockHolderID    *int       `json:"lock_holder_id,omitempty"`
	LockExpiresAt   *time.Time `json:"lock_expires_at,omitempty"`
	OccupiedSince   *time.Time `json:"occupied_since,omitempty"`
	LastStaySeconds int64      `json:"last_stay_seconds"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (s *Slot) ToResponse() SlotResponse {
	return SlotResponse{
		SlotNumber:      s.SlotNumber,
		Status:          s.Status,
		OccupantID:      s.OccupantID,
		LockHolderID:    s.LockHolderID,
		LockExpiresAt:   s.LockExpiresAt,
		OccupiedSince:   s.OccupiedSince,
		LastStaySeconds: s.LastStaySeconds,
		UpdatedAt:       s.UpdatedAt,
	}
}
