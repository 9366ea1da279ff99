package handlers

import (
	"errors"
	"log"
	"net/http"
	"quickpark/models"
	"quickpark/services"
	"quickpark/utils"
	"regexp"

	"github.com/gin-gonic/gin"
)

// 預編譯 email 的正則表達式
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// RegisterUser 註冊會員
func RegisterUser(c *gin.Context) {
	var input struct {
		Name         string `json:"name" binding:"required"`
		Email        string `json:"email" binding:"required"`
		Phone        string `json:"phone"`
		Password     string `json:"password" binding:"required,min=8"`
		PaymentInfo  string `json:"payment_info"`
		LicensePlate string `json:"license_plate"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", err.Error())
		return
	}

	if !emailRegex.MatchString(input.Email) {
		ErrorResponse(c, http.StatusBadRequest, "請提供有效的電子郵件地址", "invalid email format")
		return
	}

	user := models.User{
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		Password:     input.Password,
		Role:         "user",
		PaymentInfo:  input.PaymentInfo,
		LicensePlate: input.LicensePlate,
	}

	if err := services.RegisterUser(&user); err != nil {
		log.Printf("Failed to register user %s: %v", input.Email, err)
		if errors.Is(err, services.ErrConflict) {
			ErrorResponse(c, http.StatusConflict, "電子郵件已被使用", err.Error())
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, "註冊失敗", err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "註冊成功", user.ToResponse())
}

// LoginUser 登入並取得 token
func LoginUser(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Printf("Invalid input data: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", err.Error())
		return
	}

	user, err := services.LoginUser(input.Email, input.Password)
	if err != nil {
		log.Printf("Login failed for email %s: %v", input.Email, err)
		ErrorResponse(c, http.StatusUnauthorized, "登入失敗，檢查電子郵件或密碼", err.Error())
		return
	}

	token, err := utils.GenerateToken(user.UserID, user.Role)
	if err != nil {
		log.Printf("Failed to generate token for user %d: %v", user.UserID, err)
		ErrorResponse(c, http.StatusInternalServerError, "產生 token 失敗", err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "登入成功", gin.H{
		"token": token,
		"user":  user.ToResponse(),
	})
}

// GetProfile 查看個人資料
func GetProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	user, err := services.GetUserByID(userID)
	if err != nil {
		log.Printf("Failed to get profile for user %d: %v", userID, err)
		if errors.Is(err, services.ErrNotFound) {
			ErrorResponse(c, http.StatusNotFound, "會員不存在", err.Error())
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, "查詢失敗", err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "查詢成功", user.ToResponse())
}

// ForgotPassword 申請密碼重設 OTP
func ForgotPassword(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "請提供電子郵件", err.Error())
		return
	}

	if _, err := services.CreatePasswordReset(input.Email); err != nil {
		log.Printf("Failed to create password reset for %s: %v", input.Email, err)
		// 查無帳號也回成功，避免暴露哪些 email 已註冊
		if errors.Is(err, services.ErrNotFound) {
			SuccessResponse(c, http.StatusOK, "如果帳號存在，驗證碼已寄出", nil)
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, "申請失敗", err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "如果帳號存在，驗證碼已寄出", nil)
}

// ResetPassword 以 OTP 重設密碼
func ResetPassword(c *gin.Context) {
	var input struct {
		Email       string `json:"email" binding:"required"`
		Code        string `json:"code" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "無效的輸入資料", err.Error())
		return
	}

	if err := services.ResetPassword(input.Email, input.Code, input.NewPassword); err != nil {
		log.Printf("Failed to reset password for %s: %v", input.Email, err)
		if errors.Is(err, services.ErrUnauthorized) {
			ErrorResponse(c, http.StatusUnauthorized, "驗證碼無效或已過期", err.Error())
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, "重設失敗", err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "密碼重設成功", nil)
}
