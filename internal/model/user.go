// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
type User struct {
	ID               string
	FullName         string
	FavoriteCuisines []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SharesCuisineWith は2人のユーザーのお気に入り料理が1つ以上重なるかを返す。
// 比較は完全一致（大文字小文字を区別する）。
func (u *User) SharesCuisineWith(cuisines []string) bool {
	for _, mine := range u.FavoriteCuisines {
		for _, other := range cuisines {
			if mine == other {
				return true
			}
		}
	}
	return false
}
