package validate

import "regexp"

// MaxContentLength is the ceiling applied to sanitized content.
// Scanning bounded content keeps worst-case indicator matching cheap and
// prevents a hostile source from exhausting memory.
const MaxContentLength = 10000

// scriptPattern removes script blocks together with their content.
var scriptPattern = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)

// containerPatterns remove dangerous container tags with their content.
// iframe, object, embed, and form can smuggle active or self-referencing
// content into downstream rendering; their bodies go with them.
var containerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<iframe[^>]*>.*?</iframe>`),
	regexp.MustCompile(`(?is)<object[^>]*>.*?</object>`),
	regexp.MustCompile(`(?is)<embed[^>]*>.*?</embed>`),
	regexp.MustCompile(`(?is)<form[^>]*>.*?</form>`),
}

// voidPatterns remove self-closing or unclosed dangerous tags.
var voidPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<input[^>]*>`),
	regexp.MustCompile(`(?is)<iframe[^>]*>`),
	regexp.MustCompile(`(?is)<object[^>]*>`),
	regexp.MustCompile(`(?is)<embed[^>]*>`),
	regexp.MustCompile(`(?is)<form[^>]*>`),
	regexp.MustCompile(`(?is)</(?:iframe|object|embed|form)>`),
}

// SanitizeHTML strips active content from fetched HTML and caps the
// result at MaxContentLength.
//
// Stripping runs to a fixpoint: removing one tag can splice two halves
// of another into existence (e.g. "<scr<iframe></iframe>ipt>"), so we
// repeat until a pass changes nothing. The fixpoint is what makes
// sanitization idempotent, which the scanner relies on, since content
// may arrive pre-sanitized from the fetcher and be sanitized again
// defensively.
func SanitizeHTML(content string) string {
	if len(content) > MaxContentLength {
		content = content[:MaxContentLength]
	}

	for {
		stripped := stripDangerousTags(content)
		if stripped == content {
			return content
		}
		content = stripped
	}
}

// stripDangerousTags performs one removal pass.
func stripDangerousTags(content string) string {
	content = scriptPattern.ReplaceAllString(content, "")
	for _, p := range containerPatterns {
		content = p.ReplaceAllString(content, "")
	}
	for _, p := range voidPatterns {
		content = p.ReplaceAllString(content, "")
	}
	return content
}
