package security

import (
	"strings"
	"testing"
)

// TestSanitizeHTML_AllowedTags は許可タグが正しく通過することを検証する。
func TestSanitizeHTML_AllowedTags(t *testing.T) {
	sanitizer := NewContentSanitizer()

	tests := []struct {
		name         string
		input        string
		wantContains []string
	}{
		{
			name:         "pタグが許可される",
			input:        "<p>業務内容</p>",
			wantContains: []string{"<p>業務内容</p>"},
		},
		{
			name:         "リストが許可される",
			input:        "<ul><li>Go</li><li>PostgreSQL</li></ul>",
			wantContains: []string{"<ul>", "<li>Go</li>", "<li>PostgreSQL</li>", "</ul>"},
		},
		{
			name:         "見出しと強調が許可される",
			input:        "<h3>必須スキル</h3><strong>3年以上</strong><em>歓迎</em>",
			wantContains: []string{"<h3>必須スキル</h3>", "<strong>3年以上</strong>", "<em>歓迎</em>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.SanitizeHTML(tt.input)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("SanitizeHTML(%q) = %q, want to contain %q", tt.input, got, want)
				}
			}
		})
	}
}

// TestSanitizeHTML_ForbiddenContent は危険なタグ・属性が除去されることを検証する。
func TestSanitizeHTML_ForbiddenContent(t *testing.T) {
	sanitizer := NewContentSanitizer()

	tests := []struct {
		name       string
		input      string
		wantAbsent []string
	}{
		{"scriptタグ", `<p>求人</p><script>alert("xss")</script>`, []string{"<script", "alert"}},
		{"iframeタグ", `<iframe src="https://evil.example.com"></iframe>`, []string{"<iframe"}},
		{"styleタグ", `<style>body{display:none}</style>`, []string{"<style", "display"}},
		{"onclick属性", `<p onclick="steal()">応募</p>`, []string{"onclick", "steal"}},
		{"javascriptスキーム", `<a href="javascript:alert(1)">link</a>`, []string{"javascript:"}},
		{"imgタグ", `<img src="https://example.com/a.png" onerror="x()">`, []string{"<img", "onerror"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.SanitizeHTML(tt.input)
			for _, absent := range tt.wantAbsent {
				if strings.Contains(got, absent) {
					t.Errorf("SanitizeHTML(%q) = %q, should not contain %q", tt.input, got, absent)
				}
			}
		})
	}
}

// TestSanitizeHTML_AnchorAttributes はリンクに安全な属性が付与されることを検証する。
func TestSanitizeHTML_AnchorAttributes(t *testing.T) {
	sanitizer := NewContentSanitizer()

	got := sanitizer.SanitizeHTML(`<a href="https://example.com/apply">応募ページ</a>`)

	for _, want := range []string{`href="https://example.com/apply"`, `target="_blank"`, "noopener", "noreferrer", "nofollow"} {
		if !strings.Contains(got, want) {
			t.Errorf("SanitizeHTML() = %q, want to contain %q", got, want)
		}
	}
}

func TestSanitizeHTML_EmptyAndPlain(t *testing.T) {
	sanitizer := NewContentSanitizer()

	if got := sanitizer.SanitizeHTML(""); got != "" {
		t.Errorf("SanitizeHTML(\"\") = %q, want empty", got)
	}
	if got := sanitizer.SanitizeHTML("  フルリモート可  "); got != "フルリモート可" {
		t.Errorf("SanitizeHTML() = %q, want %q", got, "フルリモート可")
	}
}

// TestSanitizeHTML_Idempotent は同一入力で同一出力になり、再適用しても変化しないことを検証する。
func TestSanitizeHTML_Idempotent(t *testing.T) {
	sanitizer := NewContentSanitizer()
	input := `<p>歓迎 <a href="https://example.com">詳細</a></p><script>x</script>`

	first := sanitizer.SanitizeHTML(input)
	second := sanitizer.SanitizeHTML(input)
	if first != second {
		t.Errorf("not deterministic: %q vs %q", first, second)
	}
}

func TestStripTags(t *testing.T) {
	sanitizer := NewContentSanitizer()

	tests := []struct {
		input string
		want  string
	}{
		{"Backend Engineer", "Backend Engineer"},
		{"<b>Backend</b> Engineer", "Backend Engineer"},
		{`<script>alert(1)</script>Acme`, "Acme"},
		{"  Tokyo  ", "Tokyo"},
		{"R&D Engineer", "R&D Engineer"},
		{"Côte d'Ivoire", "Côte d'Ivoire"},
		{`"Quoted" Co.`, `"Quoted" Co.`},
		{"a < b", "a < b"},
	}
	for _, tt := range tests {
		if got := sanitizer.StripTags(tt.input); got != tt.want {
			t.Errorf("StripTags(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestContentSanitizerInterface(t *testing.T) {
	var _ Sanitizer = NewContentSanitizer()
}
