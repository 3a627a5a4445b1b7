package validate

import (
	"encoding/base32"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Onion address constants.
const (
	// OnionSuffix is the common suffix for all onion addresses.
	OnionSuffix = ".onion"

	// onionV3Version is the version byte for v3 onion addresses.
	onionV3Version = 0x03
)

// onionV3Pattern matches v3 onion addresses (56 base32 characters + .onion).
// Base32 uses lowercase a-z and digits 2-7.
var onionV3Pattern = regexp.MustCompile(`^[a-z2-7]{56}\.onion$`)

// checksumPrefix is the prefix used in v3 onion address checksum
// calculation, per the Tor rendezvous specification.
var checksumPrefix = []byte(".onion checksum")

// IsValidV3OnionAddress checks if the given host is a valid v3 onion
// address. It performs both format validation and checksum verification.
//
// Design decision: We perform full checksum validation rather than just
// pattern matching because it catches typos and corrupted addresses at
// configuration load, long before a doomed fetch would time out through
// the proxy. This matches what Tor itself does when connecting.
func IsValidV3OnionAddress(host string) bool {
	host = strings.ToLower(host)

	if !onionV3Pattern.MatchString(host) {
		return false
	}

	onionPart := strings.TrimSuffix(host, OnionSuffix)

	// The Tor spec uses standard base32 encoding (RFC 4648)
	decoded, err := base32.StdEncoding.DecodeString(strings.ToUpper(onionPart))
	if err != nil {
		return false
	}

	// Decoded data is 32 bytes ed25519 pubkey + 2 bytes checksum + 1 byte version
	if len(decoded) != 35 {
		return false
	}

	pubkey := decoded[:32]
	checksum := decoded[32:34]
	version := decoded[34]

	if version != onionV3Version {
		return false
	}

	expected := computeV3Checksum(pubkey, version)
	return checksum[0] == expected[0] && checksum[1] == expected[1]
}

// computeV3Checksum computes the checksum bytes for a v3 onion address.
// The checksum is the first 2 bytes of SHA3-256(".onion checksum" || pubkey || version).
func computeV3Checksum(pubkey []byte, version byte) []byte {
	data := make([]byte, 0, len(checksumPrefix)+len(pubkey)+1)
	data = append(data, checksumPrefix...)
	data = append(data, pubkey...)
	data = append(data, version)

	hash := sha3.Sum256(data)
	return hash[:2]
}
