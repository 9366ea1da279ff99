package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"quickpark/database"
	"quickpark/models"
	"quickpark/routes"
	"quickpark/services"
	"quickpark/utils"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	// 載入 .env 檔案
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using default environment variables: %v", err)
	}

	// 調用 AES_KEY 是否加載成功
	if err := utils.InitCrypto(); err != nil {
		log.Fatalf("Failed to initialize crypto: %v", err)
	}
	log.Println("Crypto initialized successfully")

	// 初始化 JWTSecret
	utils.InitJWTSecret()

	// 初始化資料庫
	database.InitDB()

	// 執行資料庫遷移
	database.DB.AutoMigrate(
		&models.User{},
		&models.Vehicle{},
		&models.Slot{},
		&models.PaymentLog{},
		&models.PasswordReset{},
	)
	log.Println("Database migration completed")

	// 確保預設管理員存在
	ensureAdminExists()

	// 建立缺少的車位
	seedSlots()

	// 初始化硬體指令佇列
	services.InitCommandQueue()

	// 設置 Gin 模式
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "" {
		ginMode = gin.ReleaseMode
	}
	gin.SetMode(ginMode)
	log.Printf("Gin mode set to %s", ginMode)

	// 初始化 Gin 路由器
	r := gin.Default()

	// 創建一個 API 路由組
	api := r.Group("/api")
	{
		routes.Path(api)
	}

	// 啟動定時任務
	c := cron.New()

	// 清除過期軟鎖（每分鐘執行一次）
	if _, err := c.AddFunc("* * * * *", func() {
		if err := services.SweepExpiredLocks(); err != nil {
			log.Printf("Failed to sweep expired locks: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule expired locks cron job: %v", err)
	}

	// 釋放逾期未入場的預約（每 5 分鐘執行一次）
	if _, err := c.AddFunc("*/5 * * * *", func() {
		log.Println("Checking for abandoned reservations...")
		if err := services.SweepAbandonedReservations(); err != nil {
			log.Printf("Failed to sweep abandoned reservations: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule abandoned reservations cron job: %v", err)
	}

	c.Start()
	log.Println("Cron jobs started")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("Starting server on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 等待中斷訊號後優雅關機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	c.Stop()

	if dropped := services.Commands.Drain(); dropped > 0 {
		log.Printf("Dropped %d undelivered hardware commands on shutdown", dropped)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// ensureAdminExists 檢查並創建預設管理員
func ensureAdminExists() {
	var admin models.User
	if err := database.DB.Where("role = ?", "admin").First(&admin).Error; err == nil {
		log.Printf("Admin already exists: email=%s", admin.Email)
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin1234"
	}
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	admin = models.User{
		Name:     "Administrator",
		Email:    "admin@quickpark.local",
		Password: hashedPassword,
		Role:     "admin",
	}

	if err := database.DB.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to create default admin: %v", err)
	}

	log.Printf("Default admin created: email=%s", admin.Email)
}

// seedSlots 依 SLOT_COUNT 建立缺少的車位，已存在的不動
func seedSlots() {
	count := 20
	if raw := os.Getenv("SLOT_COUNT"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			log.Fatalf("Invalid SLOT_COUNT %q: %v", raw, err)
		}
		count = parsed
	}

	created := 0
	for number := 1; number <= count; number++ {
		var slot models.Slot
		if err := database.DB.Where("slot_number = ?", number).First(&slot).Error; err == nil {
			continue
		}

		slot = models.Slot{
			SlotNumber: number,
			Status:     models.SlotAvailable,
		}
		if err := database.DB.Create(&slot).Error; err != nil {
			log.Fatalf("Failed to seed slot %d: %v", number, err)
		}
		created++
	}

	if created > 0 {
		log.Printf("Seeded %d parking slots (total %d)", created, count)
	}
}
