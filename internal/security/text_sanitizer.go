// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer はレストラン名やユーザー名などの自由入力テキストから
// HTMLマークアップを除去し、保存前にプレーンテキストへ正規化する。
// bluemondayのStrictPolicyを使用し、すべてのタグを除去する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はプレーンテキスト化のインターフェース。
type TextSanitizer interface {
	// Sanitize はHTMLタグを除去し、前後の空白を取り除いた文字列を返す。
	// "&" などの文字はエスケープせずそのまま残す。
	Sanitize(s string) string
	// SanitizeAll はスライスの各要素にSanitizeを適用した新しいスライスを返す。
	SanitizeAll(values []string) []string
}

type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerを生成する。
func NewTextSanitizer() TextSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

func (s *textSanitizer) Sanitize(v string) string {
	// StrictPolicyはテキストをHTMLエスケープして返すため、元の文字に戻す
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}

func (s *textSanitizer) SanitizeAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = s.Sanitize(v)
	}
	return out
}
