package validate

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/nao1215/darkhound/internal/model"
)

// ErrInvalidInput is the sentinel for all validation failures.
// Callers wrap it with detail and test with errors.Is; no I/O is ever
// attempted on input that fails validation.
var ErrInvalidInput = errors.New("invalid input")

// emailPattern matches well-formed email addresses.
// Intentionally stricter than RFC 5322: alert destinations are operator
// configuration, not arbitrary user mail, so the common shape suffices.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// SourceURL validates a monitoring source address.
// The scheme must be http or https and the authority must be well
// formed. Hosts ending in .onion must additionally carry a valid v3
// onion address checksum; a mistyped onion address can never be reached
// through the proxy, so it is dropped at load rather than timing out at
// fetch time.
func SourceURL(source string) error {
	if source == "" {
		return fmt.Errorf("%w: empty source URL", ErrInvalidInput)
	}

	u, err := url.Parse(source)
	if err != nil {
		return fmt.Errorf("%w: unparsable source URL %q", ErrInvalidInput, source)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: source scheme must be http or https, got %q", ErrInvalidInput, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: source URL %q has no host", ErrInvalidInput, source)
	}

	if strings.HasSuffix(host, OnionSuffix) && !IsValidV3OnionAddress(host) {
		return fmt.Errorf("%w: %q is not a valid v3 onion address", ErrInvalidInput, host)
	}

	return nil
}

// Email validates an alert destination address.
func Email(address string) error {
	if address == "" {
		return fmt.Errorf("%w: empty email address", ErrInvalidInput)
	}
	if !emailPattern.MatchString(address) {
		return fmt.Errorf("%w: malformed email address", ErrInvalidInput)
	}
	return nil
}

// Indicator validates a configured leak indicator token.
// An indicator of exactly the ceiling length is accepted; one character
// over is rejected.
func Indicator(indicator string) error {
	if indicator == "" {
		return fmt.Errorf("%w: empty indicator", ErrInvalidInput)
	}
	if len(indicator) > model.MaxIndicatorLength {
		return fmt.Errorf("%w: indicator exceeds %d characters", ErrInvalidInput, model.MaxIndicatorLength)
	}
	return nil
}
