package security

import (
	"strings"
	"testing"
)

// TestSanitize_RemovesTags はHTMLタグが除去されテキストのみ残ることを検証する。
func TestSanitize_RemovesTags(t *testing.T) {
	sanitizer := NewTextSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "プレーンテキストはそのまま通過する",
			input: "서울대 정문 도보 5분 투룸 쉐어",
			want:  "서울대 정문 도보 5분 투룸 쉐어",
		},
		{
			name:  "bタグが除去される",
			input: "<b>깨끗한 집</b>",
			want:  "깨끗한 집",
		},
		{
			name:  "scriptタグが中身ごと除去される",
			input: "안녕하세요<script>alert('xss')</script>",
			want:  "안녕하세요",
		},
		{
			name:  "iframeタグが除去される",
			input: `<iframe src="https://evil.example.com"></iframe>조용한 동네`,
			want:  "조용한 동네",
		},
		{
			name:  "imgタグのonerror属性ごと除去される",
			input: `<img src=x onerror="alert(1)">역세권`,
			want:  "역세권",
		},
		{
			name:  "前後の空白が除去される",
			input: "  연세대 근처 원룸  ",
			want:  "연세대 근처 원룸",
		},
		{
			name:  "空文字列は空文字列を返す",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSanitize_KeepsPlainCharacters はエンティティエスケープが残らないことを検証する。
func TestSanitize_KeepsPlainCharacters(t *testing.T) {
	sanitizer := NewTextSanitizer()

	got := sanitizer.Sanitize("보증금 500 & 월세 35")
	if strings.Contains(got, "&amp;") {
		t.Errorf("Sanitize() = %q, should not contain HTML entities", got)
	}
	if got != "보증금 500 & 월세 35" {
		t.Errorf("Sanitize() = %q, want %q", got, "보증금 500 & 월세 35")
	}
}

// TestSanitize_Idempotent は同一入力に対して常に同一出力を返すことを検証する。
func TestSanitize_Idempotent(t *testing.T) {
	sanitizer := NewTextSanitizer()

	input := "<p>홍대입구역 3분</p>"
	first := sanitizer.Sanitize(input)
	second := sanitizer.Sanitize(first)

	if first != second {
		t.Errorf("Sanitize() is not idempotent: first = %q, second = %q", first, second)
	}
}
