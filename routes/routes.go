package routes

import (
	"errors"
	"log"
	"net/http"
	"os"
	"quickpark/handlers"
	"quickpark/utils"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware 驗證 JWT token，並提取 user_id 和 role
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "缺少 Authorization 標頭",
				"error":   "Authorization header is required",
				"code":    "ERR_NO_AUTH_HEADER",
			})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "無效的 Authorization 格式",
				"error":   "Authorization header must be in the format 'Bearer <token>'",
				"code":    "ERR_INVALID_AUTH_FORMAT",
			})
			c.Abort()
			return
		}

		claims, err := parseToken(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.JSON(http.StatusUnauthorized, gin.H{
					"status":  false,
					"message": "token 已過期",
					"error":   "Token has expired",
					"code":    "ERR_TOKEN_EXPIRED",
				})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{
					"status":  false,
					"message": "無效的 token",
					"error":   err.Error(),
					"code":    "ERR_INVALID_TOKEN",
				})
			}
			c.Abort()
			return
		}

		userID, role, err := extractIdentity(claims)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "無效的 token 內容",
				"error":   err.Error(),
				"code":    "ERR_INVALID_CLAIMS",
			})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}

// 明確要求檢查 exp 字段
func parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return utils.JWTSecret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		log.Printf("Token parsing error: %v", err)
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims or token is not valid")
	}
	return claims, nil
}

func extractIdentity(claims jwt.MapClaims) (int, string, error) {
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, "", errors.New("invalid user_id in token")
	}

	role, ok := claims["role"].(string)
	if !ok || (role != "user" && role != "admin") {
		return 0, "", errors.New("invalid role in token")
	}

	log.Printf("Token verified for user_id: %d, role: %s, exp=%v, current_time=%v",
		int(userID), role, claims["exp"], time.Now().Unix())
	return int(userID), role, nil
}

// RoleMiddleware 檢查會員角色是否符合要求
func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "無法獲取角色資訊",
				"error":   "Role not found in context",
				"code":    "ERR_ROLE_NOT_FOUND",
			})
			c.Abort()
			return
		}

		roleStr, ok := role.(string)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "無效的角色類型",
				"error":   "Invalid role type",
				"code":    "ERR_INVALID_ROLE_TYPE",
			})
			c.Abort()
			return
		}

		// 允許 admin 角色訪問所有端點
		if roleStr == "admin" {
			c.Next()
			return
		}

		allowed := false
		for _, allowedRole := range allowedRoles {
			if roleStr == allowedRole {
				allowed = true
				break
			}
		}

		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{
				"status":  false,
				"message": "權限不足",
				"error":   "Insufficient role permissions",
				"code":    "ERR_INSUFFICIENT_PERMISSIONS",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// deviceKeyMatches 比對 X-Device-Key 與環境變數 DEVICE_KEY
func deviceKeyMatches(c *gin.Context) bool {
	expected := os.Getenv("DEVICE_KEY")
	if expected == "" {
		return false
	}
	return c.GetHeader("X-Device-Key") == expected
}

// DeviceKeyMiddleware 硬體專用端點：只接受 X-Device-Key
func DeviceKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !deviceKeyMatches(c) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  false,
				"message": "無效的裝置金鑰",
				"error":   "Invalid or missing X-Device-Key header",
				"code":    "ERR_DEVICE_KEY",
			})
			c.Abort()
			return
		}
		c.Set("device_authenticated", true)
		c.Next()
	}
}

// FlexibleAuthMiddleware 狀態回報端點同時接受感測器與會員：
// 有 X-Device-Key 就以裝置身分通過，否則照一般 JWT 流程。
// 三方仲裁的細部授權（from=user/sensor/admin）在 handler 內檢查。
func FlexibleAuthMiddleware() gin.HandlerFunc {
	jwtAuth := AuthMiddleware()
	return func(c *gin.Context) {
		if c.GetHeader("X-Device-Key") != "" {
			if !deviceKeyMatches(c) {
				c.JSON(http.StatusUnauthorized, gin.H{
					"status":  false,
					"message": "無效的裝置金鑰",
					"error":   "Invalid X-Device-Key header",
					"code":    "ERR_DEVICE_KEY",
				})
				c.Abort()
				return
			}
			c.Set("device_authenticated", true)
			c.Next()
			return
		}
		jwtAuth(c)
	}
}

func Path(router *gin.RouterGroup) {
	// 版本控制
	v1 := router.Group("/v1")
	{
		// 測試路由
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(200, gin.H{"message": "pong"})
		})

		// 地理圍欄查詢：App 進場前檢查，不需要登入
		v1.GET("/geofence/check", handlers.CheckGeofence)

		// 會員路由
		users := v1.Group("/users")
		{
			// 公開路由：不需要 token 驗證
			users.POST("/register", handlers.RegisterUser) // 註冊會員
			users.POST("/login", handlers.LoginUser)       // 登入會員並獲取 token
			users.POST("/password/forgot", handlers.ForgotPassword)
			users.POST("/password/reset", handlers.ResetPassword)

			// 受保護路由：需要 token 驗證
			usersWithAuth := users.Group("")
			usersWithAuth.Use(AuthMiddleware())
			{
				usersWithAuth.GET("/profile", handlers.GetProfile) // 查看個人資料
			}
		}

		// 錢包路由
		wallet := v1.Group("/wallet")
		wallet.Use(AuthMiddleware())
		{
			wallet.POST("/topup", handlers.TopUpWallet)      // 錢包儲值
			wallet.GET("/payments", handlers.GetPaymentLogs) // 交易紀錄
		}

		// 車輛路由
		vehicles := v1.Group("/vehicles")
		vehicles.Use(AuthMiddleware())
		{
			vehicles.GET("", handlers.GetMyVehicles)
			vehicles.POST("", handlers.CreateVehicle)
			vehicles.PUT("", handlers.UpdateVehicle)
			vehicles.DELETE("", handlers.DeleteVehicle)
			vehicles.PUT("/default", handlers.SetDefaultVehicle)
		}

		// 車位路由
		slots := v1.Group("/slots")
		{
			// 狀態回報：感測器用裝置金鑰，會員和管理員用 JWT
			slots.PUT("/:number", FlexibleAuthMiddleware(), handlers.UpdateSlotStatus)

			slotsWithAuth := slots.Group("")
			slotsWithAuth.Use(AuthMiddleware())
			{
				slotsWithAuth.GET("", handlers.ListSlots)                     // 查詢所有車位
				slotsWithAuth.POST("/:number/select", handlers.SelectSlot)    // 選定車位（軟鎖）
				slotsWithAuth.POST("/:number/cancel", handlers.CancelSelect)  // 放棄選定
				slotsWithAuth.PUT("/:number/confirm", handlers.ConfirmSlot)   // 確認預約
				slotsWithAuth.PUT("/:number/occupy", handlers.OccupySlot)     // 入場啟用
				slotsWithAuth.PUT("/:number/handle_reservation", handlers.HandleReservation) // 取消預約
			}
		}

		// 硬體指令路由
		cmd := v1.Group("/cmd")
		{
			cmd.POST("", AuthMiddleware(), RoleMiddleware("admin"), handlers.EnqueueCommand) // 管理員手動排指令
			cmd.GET("/next", DeviceKeyMiddleware(), handlers.NextCommand)                    // 硬體輪詢
		}
	}
}
