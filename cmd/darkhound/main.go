// Package main provides the entry point for the DarkHound CLI.
//
// DarkHound monitors dark web sources for leaked indicators. It fetches
// configured sources through Tor, scans the content for watched tokens,
// stores findings locally, and sends redacted email alerts.
//
// Usage:
//
//	darkhound monitor
//	darkhound dashboard
//
// See --help for all available options.
package main

// main is the entry point for DarkHound.
func main() {
	Execute()
}
