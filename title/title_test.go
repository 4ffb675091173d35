package title

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		maxLength     int
		want          string
		wantTruncated bool
	}{
		{
			name:          "short title unchanged",
			input:         "A short title",
			maxLength:     70,
			want:          "A short title",
			wantTruncated: false,
		},
		{
			name:          "empty string",
			input:         "",
			maxLength:     70,
			want:          "",
			wantTruncated: false,
		},
		{
			name:          "cut at word boundary",
			input:         "This is a very long title that exceeds the limit",
			maxLength:     20,
			want:          "This is a very long",
			wantTruncated: true,
		},
		{
			name:          "whitespace collapsed without truncation",
			input:         "Spaces   everywhere\t here",
			maxLength:     70,
			want:          "Spaces everywhere here",
			wantTruncated: false,
		},
		{
			name:          "exactly at limit",
			input:         strings.Repeat("a", 70),
			maxLength:     70,
			want:          strings.Repeat("a", 70),
			wantTruncated: false,
		},
		{
			name:          "single run-on token gets ellipsis",
			input:         strings.Repeat("x", 80),
			maxLength:     70,
			want:          strings.Repeat("x", 67) + "...",
			wantTruncated: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := Truncate(tt.input, tt.maxLength)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxLength, got, tt.want)
			}
			if truncated != tt.wantTruncated {
				t.Errorf("Truncate(%q, %d) truncated = %v, want %v", tt.input, tt.maxLength, truncated, tt.wantTruncated)
			}
		})
	}
}

func TestTruncateNeverExceedsLimit(t *testing.T) {
	inputs := []string{
		"word " + strings.Repeat("another word ", 30),
		strings.Repeat("z", 300),
		"Mixed    whitespace\tand a long tail of words that keeps going for a while and then some",
	}
	for _, input := range inputs {
		for _, limit := range []int{10, 20, 70} {
			got, _ := Truncate(input, limit)
			if n := len([]rune(got)); n > limit {
				t.Errorf("Truncate(%q, %d) length = %d, exceeds limit", input, limit, n)
			}
		}
	}
}

func TestTruncateNeverSplitsWords(t *testing.T) {
	input := "This is a very long title that exceeds the limit"
	got, truncated := Truncate(input, 20)
	if !truncated {
		t.Fatal("expected truncation")
	}
	for _, w := range strings.Fields(got) {
		if !strings.Contains(input, w) {
			t.Errorf("truncated output contains partial word %q", w)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantValid  bool
		wantError  string
		wantErrors int
	}{
		{"empty", "", false, "Title is missing or empty", 1},
		{"whitespace only", "   \t  ", false, "Title contains only whitespace", 1},
		{"valid title", "A perfectly reasonable title", true, "", 0},
		{"over limit", strings.Repeat("a", 71), false, "Title exceeds 70 character limit (71 chars)", 1},
		{"null byte", "bad\x00title", false, "Title contains null bytes (likely encoding issue)", 1},
		{"no alphanumerics", "!!! ???", false, "Title contains no alphanumeric characters", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.input)
			if res.Valid != tt.wantValid {
				t.Errorf("Validate(%q).Valid = %v, want %v (errors: %v)", tt.input, res.Valid, tt.wantValid, res.Errors)
			}
			if len(res.Errors) != tt.wantErrors {
				t.Errorf("Validate(%q) errors = %v, want %d", tt.input, res.Errors, tt.wantErrors)
			}
			if tt.wantError != "" && (len(res.Errors) == 0 || res.Errors[0] != tt.wantError) {
				t.Errorf("Validate(%q) first error = %v, want %q", tt.input, res.Errors, tt.wantError)
			}
		})
	}
}

func TestValidateWarnings(t *testing.T) {
	// 70 chars ending in a letter: suspect mid-word truncation.
	suspect := strings.Repeat("a ", 33) + "word"
	if n := len([]rune(suspect)); n != 70 {
		t.Fatalf("test input length = %d, want 70", n)
	}
	res := Validate(suspect)
	if len(res.Warnings) == 0 {
		t.Errorf("expected mid-word truncation warning, got none")
	}

	res = Validate("An article about this and")
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "incomplete word 'and'") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected incomplete-ending warning, got %v", res.Warnings)
	}
	if !res.Valid {
		t.Errorf("warnings must not make a title invalid")
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"control chars stripped", "Hello\x00\x1fWorld", "HelloWorld"},
		{"punctuation kept", `A title: with "quotes" and (parens)!`, `A title: with "quotes" and (parens)!`},
		{"disallowed symbols dropped", "Price $100 @home #tag", "Price 100 home tag"},
		{"whitespace collapsed", "too    many   spaces", "too many spaces"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"Hello\x00\x1fWorld",
		"Price $100 @home",
		`Already clean: words, "quotes" (and parens)`,
		"unicode Ünïcode 日本語",
	}
	for _, input := range inputs {
		once := Sanitize(input)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestScoreQuality(t *testing.T) {
	t.Run("empty title scores zero", func(t *testing.T) {
		res := ScoreQuality("")
		if res.QualityScore != 0 || res.IsAcceptable {
			t.Errorf("ScoreQuality(\"\") = %+v, want score 0 and not acceptable", res)
		}
	})

	t.Run("normal title is acceptable", func(t *testing.T) {
		res := ScoreQuality("A normal readable title")
		if res.QualityScore < 0.9 {
			t.Errorf("score = %v, want >= 0.9 (issues: %v)", res.QualityScore, res.Issues)
		}
		if !res.IsAcceptable {
			t.Error("expected acceptable")
		}
	})

	t.Run("all caps penalized", func(t *testing.T) {
		res := ScoreQuality("SHOUTING HEADLINE HERE")
		if res.QualityScore > 0.8 {
			t.Errorf("score = %v, want penalty applied", res.QualityScore)
		}
	})

	t.Run("repeated character garbage penalized", func(t *testing.T) {
		res := ScoreQuality("Look at thisssss title")
		foundIssue := false
		for _, issue := range res.Issues {
			if strings.Contains(issue, "suspicious character patterns") {
				foundIssue = true
			}
		}
		if !foundIssue {
			t.Errorf("expected garbage-pattern issue, got %v", res.Issues)
		}
	})

	t.Run("score stays within bounds", func(t *testing.T) {
		inputs := []string{
			"ab",
			"AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
			strings.Repeat("x", 25),
			"word word word word",
			"1234567890123456789",
		}
		for _, input := range inputs {
			res := ScoreQuality(input)
			if res.QualityScore < 0 || res.QualityScore > 1 {
				t.Errorf("ScoreQuality(%q) = %v, out of [0,1]", input, res.QualityScore)
			}
		}
	})
}
