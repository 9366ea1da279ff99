package handlers

import (
	"net/http"
	"quickpark/services"
	"strconv"

	"github.com/gin-gonic/gin"
)

// CheckGeofence 檢查座標是否在停車場地理圍欄內
func CheckGeofence(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		ErrorResponse(c, http.StatusBadRequest, "請提供有效的 lat 與 lng", "lat and lng must be numbers")
		return
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		ErrorResponse(c, http.StatusBadRequest, "座標超出範圍", "lat must be in [-90,90], lng in [-180,180]")
		return
	}

	inside, distanceKm := services.WithinFacility(lat, lng)

	SuccessResponse(c, http.StatusOK, "查詢成功", gin.H{
		"inside":      inside,
		"distance_km": distanceKm,
	})
}
