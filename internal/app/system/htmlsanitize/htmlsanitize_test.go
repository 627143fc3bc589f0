package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/clubsphere/internal/app/system/htmlsanitize"
)

func TestPlainText_Empty(t *testing.T) {
	if got := htmlsanitize.PlainText(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestPlainText_Unchanged(t *testing.T) {
	if got := htmlsanitize.PlainText("Weekly chess nights"); got != "Weekly chess nights" {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestPlainText_StripsTags(t *testing.T) {
	got := htmlsanitize.PlainText("<p><strong>Bold</strong> club</p>")
	if got != "Bold club" {
		t.Errorf("expected tags stripped, got %q", got)
	}
}

func TestPlainText_RemovesScript(t *testing.T) {
	got := htmlsanitize.PlainText("Hello<script>alert('xss')</script>")
	if strings.Contains(got, "script") || strings.Contains(got, "alert") {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestPlainText_KeepsApostrophes(t *testing.T) {
	if got := htmlsanitize.PlainText("Tom's <em>book</em> club"); got != "Tom's book club" {
		t.Errorf("got %q, want %q", got, "Tom's book club")
	}
}
