package services

import (
	"errors"
	"fmt"
	"log"
	"quickpark/database"
	"quickpark/models"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// GetVehiclesByUserID 取得會員的所有車輛
func GetVehiclesByUserID(userID int) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	if err := database.DB.Where("user_id = ?", userID).Order("created_at asc").Find(&vehicles).Error; err != nil {
		log.Printf("Failed to fetch vehicles for user %d: %v", userID, err)
		return nil, fmt.Errorf("failed to fetch vehicles: %w", err)
	}
	return vehicles, nil
}

// CreateVehicle 新增車輛，第一台自動設為預設
func CreateVehicle(vehicle *models.Vehicle) error {
	var count int64
	if err := database.DB.Model(&models.Vehicle{}).Where("user_id = ?", vehicle.UserID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count vehicles for user %d: %w", vehicle.UserID, err)
	}
	if count == 0 {
		vehicle.IsDefault = true
	}

	if err := database.DB.Create(vehicle).Error; err != nil {
		if mysqlErr, ok := err.(*mysql.MySQLError); ok && mysqlErr.Number == 1062 {
			return fmt.Errorf("%w: license plate %s is already registered", ErrConflict, vehicle.LicensePlate)
		}
		log.Printf("Failed to create vehicle %s: %v", vehicle.LicensePlate, err)
		return fmt.Errorf("failed to create vehicle: %w", err)
	}

	log.Printf("Vehicle %s created for user %d", vehicle.LicensePlate, vehicle.UserID)
	return nil
}

// UpdateVehicle 修改車輛資料，僅限車主本人
func UpdateVehicle(licensePlate string, userID int, updates map[string]interface{}) error {
	res := database.DB.Model(&models.Vehicle{}).
		Where("license_plate = ? AND user_id = ?", licensePlate, userID).
		Updates(updates)
	if res.Error != nil {
		log.Printf("Failed to update vehicle %s: %v", licensePlate, res.Error)
		return fmt.Errorf("failed to update vehicle: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: vehicle %s does not belong to user %d", ErrNotFound, licensePlate, userID)
	}
	return nil
}

// DeleteVehicle 刪除車輛，若刪的是預設車就把最早的一台補上
func DeleteVehicle(licensePlate string, userID int) error {
	res := database.DB.Where("license_plate = ? AND user_id = ?", licensePlate, userID).Delete(&models.Vehicle{})
	if res.Error != nil {
		log.Printf("Failed to delete vehicle %s: %v", licensePlate, res.Error)
		return fmt.Errorf("failed to delete vehicle: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: vehicle %s does not belong to user %d", ErrNotFound, licensePlate, userID)
	}

	var defaultVehicle models.Vehicle
	err := database.DB.Where("user_id = ? AND is_default = ?", userID, true).First(&defaultVehicle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = database.DB.Where("user_id = ?", userID).Order("created_at asc").First(&defaultVehicle).Error
		if err == nil {
			if err := database.DB.Model(&defaultVehicle).Update("is_default", true).Error; err != nil {
				log.Printf("Failed to promote vehicle %s to default: %v", defaultVehicle.LicensePlate, err)
			}
		}
	}

	log.Printf("Vehicle %s deleted for user %d", licensePlate, userID)
	return nil
}

// SetDefaultVehicle 設為預設車輛
func SetDefaultVehicle(licensePlate string, userID int) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		var vehicle models.Vehicle
		if err := tx.Where("license_plate = ? AND user_id = ?", licensePlate, userID).First(&vehicle).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: vehicle %s does not belong to user %d", ErrNotFound, licensePlate, userID)
			}
			return fmt.Errorf("failed to find vehicle %s: %w", licensePlate, err)
		}

		if err := tx.Model(&models.Vehicle{}).Where("user_id = ?", userID).Update("is_default", false).Error; err != nil {
			return fmt.Errorf("failed to clear default vehicle: %w", err)
		}
		if err := tx.Model(&vehicle).Update("is_default", true).Error; err != nil {
			return fmt.Errorf("failed to set default vehicle: %w", err)
		}
		return nil
	})
}
