// Package security はユーザー入力の無害化を提供する。
//
// 求人の説明文は雇用者が自由に記述するHTMLを受け付けるため、
// bluemondayの許可リストポリシーで安全なタグと属性のみを通過させる。
// タイトルや会社名などのプレーンテキスト項目は全てのタグを除去し、
// 文字参照はエスケープせずそのまま保存する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer は求人の入力項目を無害化するインターフェース。
type Sanitizer interface {
	// SanitizeHTML は説明文のHTMLから許可タグ以外を除去する。
	// 許可タグ: p, br, ul, ol, li, strong, em, h3, h4, a（hrefはhttp/httpsのみ）。
	// aタグにはtarget="_blank"とrel="nofollow noopener noreferrer"を付与する。
	SanitizeHTML(rawHTML string) string

	// StripTags は全てのタグを除去し、前後の空白を取り除いたテキストを返す。
	// "&"や"'"などはエスケープしない。
	StripTags(s string) string
}

// contentSanitizer はSanitizerの実装。
// bluemondayのポリシーはスレッドセーフに共有できる。
type contentSanitizer struct {
	html  *bluemonday.Policy
	plain *bluemonday.Policy
}

// NewContentSanitizer はSanitizerの新しいインスタンスを生成する。
func NewContentSanitizer() *contentSanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"strong", "em", "h3", "h4",
	)

	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https")
	p.AllowRelativeURLs(false)
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	return &contentSanitizer{
		html:  p,
		plain: bluemonday.StrictPolicy(),
	}
}

// SanitizeHTML は説明文のHTMLから許可タグ以外を除去する。
func (s *contentSanitizer) SanitizeHTML(rawHTML string) string {
	return strings.TrimSpace(s.html.Sanitize(rawHTML))
}

// StripTags は全てのタグを除去する。
// StrictPolicyはテキストもエスケープするため、結果を元の文字に戻す。
func (s *contentSanitizer) StripTags(str string) string {
	return strings.TrimSpace(html.UnescapeString(s.plain.Sanitize(str)))
}
