package handlers

import (
	"errors"
	"net/http"
	"quickpark/models"
	"quickpark/services"

	"github.com/gin-gonic/gin"
)

// GetMyVehicles 取得我的所有車輛
func GetMyVehicles(c *gin.Context) {
	userID := c.GetInt("user_id")

	vehicles, err := services.GetVehiclesByUserID(userID)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "查詢車輛失敗", err.Error())
		return
	}

	resp := make([]models.VehicleResponse, len(vehicles))
	for i, v := range vehicles {
		resp[i] = v.ToResponse()
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", resp)
}

// CreateVehicle 新增車輛
func CreateVehicle(c *gin.Context) {
	userID := c.GetInt("user_id")

	var input struct {
		LicensePlate string  `json:"license_plate" binding:"required"`
		Brand        *string `json:"brand,omitempty"`
		Model        *string `json:"model,omitempty"`
		Color        *string `json:"color,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "輸入格式錯誤", err.Error())
		return
	}

	vehicle := models.Vehicle{
		LicensePlate: input.LicensePlate,
		UserID:       userID,
		Brand:        getString(input.Brand),
		Model:        getString(input.Model),
		Color:        getString(input.Color),
		IsDefault:    false,
	}

	if err := services.CreateVehicle(&vehicle); err != nil {
		if errors.Is(err, services.ErrConflict) {
			ErrorResponse(c, http.StatusConflict, "此車牌已被其他會員註冊", err.Error())
		} else {
			ErrorResponse(c, http.StatusBadRequest, "新增車輛失敗", err.Error())
		}
		return
	}

	SuccessResponse(c, http.StatusCreated, "車輛新增成功", vehicle.ToResponse())
}

// UpdateVehicle 修改車輛（用 JSON 傳 license_plate）
func UpdateVehicle(c *gin.Context) {
	userID := c.GetInt("user_id")

	var input struct {
		LicensePlate string  `json:"license_plate" binding:"required"`
		Brand        *string `json:"brand,omitempty"`
		Model        *string `json:"model,omitempty"`
		Color        *string `json:"color,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "輸入格式錯誤", err.Error())
		return
	}

	updates := make(map[string]interface{})
	if input.Brand != nil {
		updates["brand"] = *input.Brand
	}
	if input.Model != nil {
		updates["model"] = *input.Model
	}
	if input.Color != nil {
		updates["color"] = *input.Color
	}

	if len(updates) == 0 {
		ErrorResponse(c, http.StatusBadRequest, "未提供任何欄位更新", "")
		return
	}

	if err := services.UpdateVehicle(input.LicensePlate, userID, updates); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			ErrorResponse(c, http.StatusNotFound, "車輛不存在或無權限", err.Error())
		} else {
			ErrorResponse(c, http.StatusInternalServerError, "更新失敗", err.Error())
		}
		return
	}

	SuccessResponse(c, http.StatusOK, "車輛更新成功", nil)
}

// DeleteVehicle 刪除車輛（用 JSON 傳 license_plate）
func DeleteVehicle(c *gin.Context) {
	userID := c.GetInt("user_id")

	var input struct {
		LicensePlate string `json:"license_plate" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "請提供 license_plate", err.Error())
		return
	}

	if err := services.DeleteVehicle(input.LicensePlate, userID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			ErrorResponse(c, http.StatusNotFound, "車輛不存在或無權限", err.Error())
		} else {
			ErrorResponse(c, http.StatusInternalServerError, "刪除失敗", err.Error())
		}
		return
	}

	SuccessResponse(c, http.StatusOK, "車輛刪除成功", nil)
}

// SetDefaultVehicle 設為預設車輛（用 JSON 傳 license_plate）
func SetDefaultVehicle(c *gin.Context) {
	userID := c.GetInt("user_id")

	var input struct {
		LicensePlate string `json:"license_plate" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "請提供 license_plate", err.Error())
		return
	}

	if err := services.SetDefaultVehicle(input.LicensePlate, userID); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "設定失敗", err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "已設為預設車輛", nil)
}

// 工具函數：*string → string
func getString(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
