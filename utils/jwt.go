package utils

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTSecret 簽發與驗證 token 用的密鑰
var JWTSecret []byte

// InitJWTSecret 從環境變數載入 JWT 密鑰
func InitJWTSecret() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "quickpark-dev-secret"
		log.Println("JWT_SECRET not set, using development default")
	}
	JWTSecret = []byte(secret)
}

// GenerateToken 簽發 24 小時有效的 JWT，夾帶 user_id 與 role
func GenerateToken(userID int, role string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(JWTSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
