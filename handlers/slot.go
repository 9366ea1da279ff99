package handlers

import (
	"errors"
	"log"
	"net/http"
	"quickpark/models"
	"quickpark/services"
	"strconv"

	"github.com/gin-gonic/gin"
)

// respondSlotError 依錯誤分類對應 HTTP 狀態碼與錯誤代碼
func respondSlotError(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"status":  false,
			"message": message,
			"error":   err.Error(),
			"code":    "ERR_NOT_FOUND",
		})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{
			"status":  false,
			"message": message,
			"error":   err.Error(),
			"code":    "ERR_CONFLICT",
		})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"status":  false,
			"message": message,
			"error":   err.Error(),
			"code":    "ERR_FORBIDDEN",
		})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  false,
			"message": message,
			"error":   err.Error(),
			"code":    "ERR_UNAUTHORIZED",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  false,
			"message": message,
			"error":   err.Error(),
			"code":    "ERR_SERVER",
		})
	}
}

// parseSlotNumber 解析路徑中的車位編號
func parseSlotNumber(c *gin.Context) (int, bool) {
	numberStr := c.Param("number")
	number, err := strconv.Atoi(numberStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "無效的車位編號",
			"error":   "slot number must be an integer",
			"code":    "ERR_INVALID_SLOT_NUMBER",
		})
		return 0, false
	}
	return number, true
}

// ListSlots 查詢所有車位現況
func ListSlots(c *gin.Context) {
	slots, err := services.GetAllSlots()
	if err != nil {
		log.Printf("Failed to list slots: %v", err)
		respondSlotError(c, "查詢車位失敗", err)
		return
	}

	responses := make([]models.SlotResponse, len(slots))
	for i, slot := range slots {
		responses[i] = slot.ToResponse()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": "查詢成功",
		"data":    responses,
	})
}

// SelectSlot 選位：取得或延長軟鎖
func SelectSlot(c *gin.Context) {
	number, ok := parseSlotNumber(c)
	if !ok {
		return
	}
	userID := c.GetInt("user_id")

	var input struct {
		LeaseSeconds int `json:"lease_seconds"`
	}
	// body 可以整個省略，lease 會落回預設 120 秒；自訂值有上限，超過會被截掉
	_ = c.ShouldBindJSON(&input)

	slot, err := services.AcquireOrExtendLock(number, userID, input.LeaseSeconds)
	if err != nil {
		log.Printf("Failed to lock slot %d for user %d: %v", number, userID, err)
		respondSlotError(c, "選位失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": "選位成功",
		"data":    slot.ToResponse(),
	})
}

// CancelSelect 放棄選位：釋放軟鎖
func CancelSelect(c *gin.Context) {
	number, ok := parseSlotNumber(c)
	if !ok {
		return
	}
	userID := c.GetInt("user_id")

	slot, err := services.ReleaseLock(number, userID)
	if err != nil {
		log.Printf("Failed to release lock on slot %d for user %d: %v", number, userID, err)
		respondSlotError(c, "取消選位失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": "已取消選位",
		"data":    slot.ToResponse(),
	})
}

// ConfirmSlot 確認預約：軟鎖轉為正式預約
func ConfirmSlot(c *gin.Context) {
	number, ok := parseSlotNumber(c)
	if !ok {
		return
	}
	userID := c.GetInt("user_id")

	slot, err := services.ConfirmReservation(number, userID)
	if err != nil {
		log.Printf("Failed to confirm reservation on slot %d for user %d: %v", number, userID, err)
		respondSlotError(c, "預約失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": "車位預約成功",
		"data":    slot.ToResponse(),
	})
}

// HandleReservation 取消預約（本人或管理員）
func HandleReservation(c *gin.Context) {
	number, ok := parseSlotNumber(c)
	if !ok {
		return
	}
	userID := c.GetInt("user_id")
	isAdmin := c.GetString("role") == "admin"

	slot, err := services.CancelReservation(number, userID, isAdmin)
	if err != nil {
		log.Printf("Failed to cancel reservation on slot %d (user %d): %v", number, userID, err)
		respondSlotError(c, "取消預約失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": "預約已取消",
		"data":    slot.ToResponse(),
	})
}

// UpdateSlotStatus 三方狀態回報入口：from 指定來源（user/sensor/admin）
// 感測器需通過裝置密鑰驗證，管理員需具備 admin 角色，一般使用者只能動自己的預約
func UpdateSlotStatus(c *gin.Context) {
	number, ok := parseSlotNumber(c)
	if !ok {
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
		UserID int    `json:"user_id"`
		From   string `json:"from" binding:"required,oneof=user sensor admin"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid input for slot %d status update: %v", number, err)
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "無效的輸入資料",
			"error":   "status and from are required; from must be user, sensor or admin",
			"code":    "ERR_INVALID_INPUT",
		})
		return
	}

	var actor services.Actor
	var actingUserID int

	switch input.From {
	case "sensor":
		if !c.GetBool("device_authenticated") {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "裝置驗證失敗",
				"error":   "sensor reports require a valid device key",
				"code":    "ERR_DEVICE_KEY",
			})
			return
		}
		actor = services.ActorSensor

	case "admin":
		if c.GetString("role") != "admin" {
			c.JSON(http.StatusForbidden, gin.H{
				"status":  false,
				"message": "權限不足",
				"error":   "admin transitions require the admin role",
				"code":    "ERR_INSUFFICIENT_PERMISSIONS",
			})
			return
		}
		actor = services.ActorAdmin
		actingUserID = input.UserID // 管理員可指定強制綁定的對象

	default:
		userID := c.GetInt("user_id")
		if userID == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "未授權",
				"error":   "user transitions require a valid token",
				"code":    "ERR_NO_USER_ID",
			})
			return
		}
		actor = services.ActorUser
		actingUserID = userID
	}

	slot, note, err := services.ReportSlotStatus(number, input.Status, actor, actingUserID)
	if err != nil {
		log.Printf("Rejected %s transition on slot %d to %q: %v", actor, number, input.Status, err)
		respondSlotError(c, "狀態更新被拒絕", err)
		return
	}

	message := "狀態更新成功"
	if note != "" {
		message = note
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": message,
		"data":    slot.ToResponse(),
	})
}

// OccupySlot 開始佔用：驗證預約後排入硬體指令三連發
func OccupySlot(c *gin.Context) {
	number, ok := parseSlotNumber(c)
	if !ok {
		return
	}
	userID := c.GetInt("user_id")

	var input struct {
		Duration int `json:"duration" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid occupy input for slot %d: %v", number, err)
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "無效的輸入資料",
			"error":   "duration must be a positive integer",
			"code":    "ERR_INVALID_INPUT",
		})
		return
	}

	slot, err := services.OccupySlot(number, userID, input.Duration)
	if err != nil {
		log.Printf("Failed to occupy slot %d for user %d: %v", number, userID, err)
		respondSlotError(c, "佔用失敗", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": "佔用指令已送出",
		"data":    slot.ToResponse(),
	})
}
