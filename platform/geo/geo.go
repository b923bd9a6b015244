// Package geo provides geographic and workforce-bracket utilities.
// This is part of the platform layer and contains no business logic.
package geo

import "math"

const earthRadiusKm = 6371.0

// Distance returns the great-circle distance in kilometers between two
// coordinate pairs, using the haversine formula. Pure function.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// workforceMidpoints maps ordinal workforce bracket codes to a representative
// headcount. Used for queue sorting only, never as an exact count.
var workforceMidpoints = map[string]int{
	"00": 0,     // no employees
	"01": 2,     // 1-2
	"02": 4,     // 3-5
	"03": 7,     // 6-9
	"11": 15,    // 10-19
	"12": 35,    // 20-49
	"21": 75,    // 50-99
	"22": 150,   // 100-199
	"31": 225,   // 200-249
	"32": 375,   // 250-499
	"41": 750,   // 500-999
	"42": 1500,  // 1000-1999
	"51": 3500,  // 2000-4999
	"52": 7500,  // 5000-9999
	"53": 15000, // 10000+
}

// WorkforceMidpoint maps an ordinal workforce bracket code to a representative
// headcount. Unknown or empty codes map to 0.
func WorkforceMidpoint(bracketCode string) int {
	return workforceMidpoints[bracketCode]
}
