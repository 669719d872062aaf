// Package geo は地理座標の範囲検証と大円距離の計算を提供する。
package geo

import "math"

// EarthRadiusMeters は平均地球半径（メートル）。PostGISのgeography計算と同じ球近似で用いる。
const EarthRadiusMeters = 6371008.8

// ValidLatitude は緯度が[-90, 90]の範囲内かを返す。NaNは範囲外として扱う。
func ValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

// ValidLongitude は経度が[-180, 180]の範囲内かを返す。NaNは範囲外として扱う。
func ValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}

// DistanceMeters は2地点間の大円距離をhaversine公式で計算する。
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}
