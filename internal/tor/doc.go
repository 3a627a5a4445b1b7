// Package tor provides anonymized network connectivity for DarkHound.
//
// This package builds the SOCKS5-proxied HTTP client every fetch goes
// through, verifies that the configured proxy actually speaks the Tor
// SOCKS5 protocol, and can optionally launch an embedded Tor daemon via
// tornago for deployments without an external proxy.
//
// Design decision: All monitoring traffic is routed through the proxy
// without exception. The client never falls back to a direct connection;
// if the proxy is unreachable the fetch fails and the cycle moves on.
// Leaking the monitoring host's address to a leak site is strictly worse
// than missing one cycle.
//
// The package is designed to be used with dependency injection - create a
// Client and pass it to components that need proxy connectivity rather
// than using global state.
package tor
