// Package model はドメインモデルを定義する。
package model

import "time"

// Follow はユーザーとレストランのフォロー関係を表す。
// (UserID, RestaurantID) の組は一意。作成後は変更されない。
type Follow struct {
	ID           string
	UserID       string
	RestaurantID string
	CreatedAt    time.Time
}
