package security

import (
	"strings"
	"testing"
)

func TestSanitizeHTML_KeepsMarkdownTags(t *testing.T) {
	s := NewContentSanitizer()
	input := "<h2>Plan</h2><ul><li><strong>Breakfast</strong>: oats</li></ul><p>Drink <em>water</em>.</p>"

	got := s.SanitizeHTML(input)
	if got != input {
		t.Errorf("SanitizeHTML() = %q, want unchanged %q", got, input)
	}
}

func TestSanitizeHTML_RemovesDangerousContent(t *testing.T) {
	s := NewContentSanitizer()
	tests := []struct {
		name      string
		input     string
		forbidden string
	}{
		{"script", `<p>ok</p><script>alert(1)</script>`, "<script"},
		{"iframe", `<iframe src="https://evil.example"></iframe>`, "<iframe"},
		{"onclick", `<p onclick="alert(1)">x</p>`, "onclick"},
		{"javascript link", `<a href="javascript:alert(1)">x</a>`, "javascript:"},
		{"style", `<style>body{}</style>`, "<style"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.SanitizeHTML(tt.input)
			if strings.Contains(strings.ToLower(got), tt.forbidden) {
				t.Errorf("SanitizeHTML(%q) = %q, must not contain %q", tt.input, got, tt.forbidden)
			}
		})
	}
}

func TestSanitizeHTML_LinksGetNoReferrer(t *testing.T) {
	s := NewContentSanitizer()
	got := s.SanitizeHTML(`<a href="https://example.com/guide">guide</a>`)
	if !strings.Contains(got, `target="_blank"`) {
		t.Errorf("expected target=_blank, got %q", got)
	}
	if !strings.Contains(got, "noreferrer") {
		t.Errorf("expected rel noreferrer, got %q", got)
	}
}

func TestPlainText(t *testing.T) {
	s := NewContentSanitizer()
	tests := []struct {
		input string
		want  string
	}{
		{"Incorrect email or password", "Incorrect email or password"},
		{"<b>User</b> not found", "User not found"},
		{"  spaced  ", "spaced"},
		{"a & b", "a & b"},
		{"<script>alert(1)</script>", ""},
	}
	for _, tt := range tests {
		if got := s.PlainText(tt.input); got != tt.want {
			t.Errorf("PlainText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
