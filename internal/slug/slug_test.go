package slug

import (
	"regexp"
	"testing"
)

var validSlug = regexp.MustCompile(`^([a-z0-9]+(-[a-z0-9]+)*)?$`)

func TestToSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple title", input: "Hello World", want: "hello-world"},
		{name: "surrounding whitespace", input: "   Go Generics   ", want: "go-generics"},
		{name: "punctuation stripped", input: "What's new in Go 1.22?", want: "whats-new-in-go-122"},
		{name: "underscores collapse", input: "snake_case__title", want: "snake-case-title"},
		{name: "mixed separator run", input: "a - _ b", want: "a-b"},
		{name: "leading and trailing hyphens", input: "--edge--", want: "edge"},
		{name: "non-ascii letters dropped", input: "Café Olé", want: "caf-ol"},
		{name: "all punctuation", input: "!!!???", want: ""},
		{name: "empty", input: "", want: ""},
		{name: "tabs and newlines", input: "line\tone\nline two", want: "line-one-line-two"},
		{name: "no-break space", input: "a\u00a0b", want: "a-b"},
		{name: "vertical tab", input: "a\vb", want: "a-b"},
		{name: "em space", input: "a\u2003b", want: "a-b"},
		{name: "ideographic space", input: "a\u3000b", want: "a-b"},
		{name: "pasted title with nbsp run", input: "\u00a0Hello\u00a0\u00a0World\u00a0", want: "hello-world"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ToSlug(tt.input); got != tt.want {
				t.Fatalf("ToSlug(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToSlugShapeAndIdempotence(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Hello World",
		"  __Already-slugged__  ",
		"Ünïcödé & Friends!",
		"İstanbul Kelvin K",
		"multiple     spaces here",
		"-_-",
		"Building a CMS in 2024: Part 2/3",
		"emoji 🚀 launch",
	}

	for _, in := range inputs {
		once := ToSlug(in)
		if !validSlug.MatchString(once) {
			t.Fatalf("ToSlug(%q) = %q, not a valid slug", in, once)
		}
		if twice := ToSlug(once); twice != once {
			t.Fatalf("ToSlug not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestResolveUnique(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		base     string
		existing []string
		want     string
	}{
		{name: "free base", base: "post", existing: nil, want: "post"},
		{name: "base taken", base: "post", existing: []string{"post"}, want: "post-1"},
		{name: "base and first suffix taken", base: "post", existing: []string{"post", "post-1"}, want: "post-2"},
		{name: "gap is reused", base: "post", existing: []string{"post", "post-2"}, want: "post-1"},
		{name: "unrelated slugs ignored", base: "post", existing: []string{"posts", "post-x"}, want: "post"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			existing := SetOf(tt.existing)
			got := ResolveUnique(tt.base, existing)
			if got != tt.want {
				t.Fatalf("ResolveUnique(%q, %v) = %q, want %q", tt.base, tt.existing, got, tt.want)
			}
			if again := ResolveUnique(tt.base, existing); again != got {
				t.Fatalf("ResolveUnique not deterministic: %q then %q", got, again)
			}
		})
	}
}
