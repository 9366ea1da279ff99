package handlers

import (
	"errors"
	"log"
	"net/http"
	"quickpark/models"
	"quickpark/services"

	"github.com/gin-gonic/gin"
)

// TopUpWallet 錢包儲值
func TopUpWallet(c *gin.Context) {
	userID := c.GetInt("user_id")

	var input struct {
		Amount float64 `json:"amount" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "儲值金額必須為正數", err.Error())
		return
	}

	user, err := services.TopUpWallet(userID, input.Amount)
	if err != nil {
		log.Printf("Failed to top up wallet for user %d: %v", userID, err)
		if errors.Is(err, services.ErrNotFound) {
			ErrorResponse(c, http.StatusNotFound, "會員不存在", err.Error())
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, "儲值失敗", err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "儲值成功", user.ToResponse())
}

// GetPaymentLogs 查詢交易紀錄
func GetPaymentLogs(c *gin.Context) {
	userID := c.GetInt("user_id")

	logs, err := services.GetPaymentLogs(userID)
	if err != nil {
		log.Printf("Failed to fetch payment logs for user %d: %v", userID, err)
		ErrorResponse(c, http.StatusInternalServerError, "查詢交易紀錄失敗", err.Error())
		return
	}

	responses := make([]models.PaymentLogResponse, len(logs))
	for i, entry := range logs {
		responses[i] = entry.ToResponse()
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", responses)
}
