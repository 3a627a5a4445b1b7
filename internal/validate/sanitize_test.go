package validate

import (
	"strings"
	"testing"
)

// TestSanitizeHTML tests tag stripping behavior.
func TestSanitizeHTML(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		mustLose []string
		mustKeep []string
	}{
		{
			name:     "script block with content",
			input:    `before<script>evil()</script>after`,
			mustLose: []string{"<script>", "evil()"},
			mustKeep: []string{"before", "after"},
		},
		{
			name:     "script with attributes",
			input:    `<script type="text/javascript" src="x.js">payload</script>text`,
			mustLose: []string{"payload", "x.js"},
			mustKeep: []string{"text"},
		},
		{
			name:     "iframe with content",
			input:    `a<iframe src="http://evil.example">inner</iframe>b`,
			mustLose: []string{"iframe", "inner"},
			mustKeep: []string{"a", "b"},
		},
		{
			name:     "object and embed",
			input:    `x<object data="o">o1</object><embed src="e">y`,
			mustLose: []string{"object", "embed"},
			mustKeep: []string{"x", "y"},
		},
		{
			name:     "form with inputs",
			input:    `pre<form action="/l"><input name="user"><input name="pass"></form>post`,
			mustLose: []string{"<form", "<input"},
			mustKeep: []string{"pre", "post"},
		},
		{
			name:     "bare input tag",
			input:    `a<input type="hidden" value="csrf">b`,
			mustLose: []string{"<input"},
			mustKeep: []string{"ab"},
		},
		{
			name:     "case insensitive",
			input:    `a<SCRIPT>x</SCRIPT><IFRAME>y</IFRAME>b`,
			mustLose: []string{"x", "y"},
			mustKeep: []string{"ab"},
		},
		{
			name:     "multiline script",
			input:    "a<script>\nline1\nline2\n</script>b",
			mustLose: []string{"line1", "line2"},
			mustKeep: []string{"ab"},
		},
		{
			name:     "plain text untouched",
			input:    "contact us at leak@evil.com with password: hunter2",
			mustKeep: []string{"contact us at leak@evil.com with password: hunter2"},
		},
		{
			name:     "benign tags kept",
			input:    `<p>paragraph</p><a href="/x">link</a>`,
			mustKeep: []string{"<p>paragraph</p>", `<a href="/x">link</a>`},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := SanitizeHTML(tc.input)
			for _, lost := range tc.mustLose {
				if strings.Contains(got, lost) {
					t.Errorf("sanitized %q still contains %q", got, lost)
				}
			}
			for _, kept := range tc.mustKeep {
				if !strings.Contains(got, kept) {
					t.Errorf("sanitized %q lost %q", got, kept)
				}
			}
		})
	}
}

// TestSanitizeHTMLIdempotent tests sanitize(sanitize(x)) == sanitize(x)
// over adversarial inputs, including tags spliced together by removal.
func TestSanitizeHTMLIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"plain text",
		`<script>a</script>`,
		`<scr<iframe>x</iframe>ipt>alert(1)</scr<iframe>y</iframe>ipt>`,
		`<ifr<script>z</script>ame>inner</ifr<script>w</script>ame>`,
		`<form><input><form><input></form></form>`,
		strings.Repeat(`<script>x</script>junk`, 500),
		strings.Repeat("a", MaxContentLength*2),
		`<SCRIPT SRC="a">1</SCRIPT><script>2</script>`,
	}

	for _, input := range inputs {
		once := SanitizeHTML(input)
		twice := SanitizeHTML(once)
		if once != twice {
			t.Errorf("sanitize not idempotent for input of length %d: first pass %d bytes, second pass %d bytes",
				len(input), len(once), len(twice))
		}
	}
}

// TestSanitizeHTMLCapsLength tests the content ceiling.
func TestSanitizeHTMLCapsLength(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", MaxContentLength+1000)
	got := SanitizeHTML(long)
	if len(got) != MaxContentLength {
		t.Errorf("got length %d, expected %d", len(got), MaxContentLength)
	}
}

// TestSanitizeHTMLNestedSplicing tests that removal which splices a new
// dangerous tag into existence still converges to clean output.
func TestSanitizeHTMLNestedSplicing(t *testing.T) {
	t.Parallel()

	// Removing the inner iframe splices the outer script tag together.
	input := `<scr<iframe></iframe>ipt>stolen()</scr<iframe></iframe>ipt>`
	got := SanitizeHTML(input)

	if strings.Contains(got, "<script>") || strings.Contains(got, "stolen()") {
		t.Errorf("spliced script survived sanitization: %q", got)
	}
}
