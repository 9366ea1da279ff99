package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	// 同一點距離為零
	assert.InDelta(t, 0, HaversineKm(25.0, 121.5, 25.0, 121.5), 1e-9)

	// 台北 101 到台北車站約 5 公里
	dist := HaversineKm(25.033964, 121.564468, 25.047759, 121.517337)
	assert.InDelta(t, 5.0, dist, 1.0)

	// 順序對調距離不變
	reverse := HaversineKm(25.047759, 121.517337, 25.033964, 121.564468)
	assert.InDelta(t, dist, reverse, 1e-9)
}

func TestWithinFacility(t *testing.T) {
	t.Setenv("FACILITY_LAT", "25.033964")
	t.Setenv("FACILITY_LNG", "121.564468")
	t.Setenv("FACILITY_RADIUS_KM", "0.5")

	// 停車場正中心
	inside, dist := WithinFacility(25.033964, 121.564468)
	assert.True(t, inside)
	assert.InDelta(t, 0, dist, 1e-9)

	// 幾公里外
	inside, dist = WithinFacility(25.047759, 121.517337)
	assert.False(t, inside)
	assert.Greater(t, dist, 0.5)
}

func TestWithinFacilityRadiusOverride(t *testing.T) {
	t.Setenv("FACILITY_LAT", "25.033964")
	t.Setenv("FACILITY_LNG", "121.564468")
	t.Setenv("FACILITY_RADIUS_KM", "100")

	inside, _ := WithinFacility(25.047759, 121.517337)
	assert.True(t, inside)
}
