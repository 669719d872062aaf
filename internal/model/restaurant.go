// Package model はドメインモデルを定義する。
package model

import "time"

// GeoPointType はGeoJSON Pointの種別名。
const GeoPointType = "Point"

// GeoPoint は緯度経度で表す地点。
// APIでは {"type": "Point", "coordinates": [latitude, longitude]} として表現される。
type GeoPoint struct {
	Latitude  float64
	Longitude float64
}

// Restaurant はレストランを表す。
// Slugは全レストランで一意であり、作成後は変更されない。
type Restaurant struct {
	ID        string
	NameEn    string
	NameAr    string
	Slug      string
	Cuisines  []string
	Location  GeoPoint
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RestaurantSummary はおすすめ結果で返すレストランの射影。
type RestaurantSummary struct {
	ID     string
	NameEn string
	Slug   string
}
