// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService は掲示の自由入力テキストをサニタイズし、
// XSS攻撃などのセキュリティリスクからユーザーを保護する。
// 掲示のタイトル・キャンパス名・説明文はプレーンテキストとして扱うため、
// bluemondayのStrictPolicyで全てのHTMLタグを除去する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService はプレーンテキスト入力のサニタイズ機能のインターフェースを定義する。
// 掲示の保存前に使用される。
type TextSanitizerService interface {
	// Sanitize は入力テキストから全てのHTMLタグを除去し、前後の空白を削除して返す。
	// scriptタグの中身も含めて除去される。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは全てのタグと属性を除去し、テキストのみを残す。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は入力テキストから全てのHTMLタグを除去して返す。
// bluemondayはタグ除去後のテキストをHTMLエンティティにエスケープするため、
// プレーンテキストとして保存できるようアンエスケープしてから返す。
func (s *textSanitizer) Sanitize(raw string) string {
	cleaned := s.policy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}
