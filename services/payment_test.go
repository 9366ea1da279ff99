package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateStayFare(t *testing.T) {
	// 不足一小時以一小時計
	assert.Equal(t, 20.0, CalculateStayFare(1, 20.0))
	assert.Equal(t, 20.0, CalculateStayFare(3599, 20.0))
	assert.Equal(t, 20.0, CalculateStayFare(3600, 20.0))

	// 超過一小時進位到下一小時
	assert.Equal(t, 40.0, CalculateStayFare(3601, 20.0))
	assert.Equal(t, 60.0, CalculateStayFare(3*3600, 20.0))

	// 零或負的停留不收費
	assert.Equal(t, 0.0, CalculateStayFare(0, 20.0))
	assert.Equal(t, 0.0, CalculateStayFare(-5, 20.0))

	// 費率無效也不收費
	assert.Equal(t, 0.0, CalculateStayFare(3600, 0))
	assert.Equal(t, 0.0, CalculateStayFare(3600, -1))
}
