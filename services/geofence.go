package services

import (
	"math"
	"os"
	"strconv"
)

// 停車場座標與半徑的預設值，可用環境變數覆蓋
const (
	DefaultFacilityLat      = 25.033964
	DefaultFacilityLng      = 121.564468
	DefaultFacilityRadiusKm = 0.5
)

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// HaversineKm 兩點間球面距離（公里）
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// WithinFacility 檢查座標是否在停車場地理圍欄內，回傳判定結果與實際距離
func WithinFacility(lat, lng float64) (bool, float64) {
	facilityLat := envFloat("FACILITY_LAT", DefaultFacilityLat)
	facilityLng := envFloat("FACILITY_LNG", DefaultFacilityLng)
	radiusKm := envFloat("FACILITY_RADIUS_KM", DefaultFacilityRadiusKm)

	distance := HaversineKm(lat, lng, facilityLat, facilityLng)
	return distance <= radiusKm, distance
}
