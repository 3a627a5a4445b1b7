package tor

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestTLSConfigForHost tests that certificate verification is relaxed
// for hidden services only.
func TestTLSConfigForHost(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		host       string
		skipVerify bool
	}{
		{"hidden service", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaam2dqd.onion", true},
		{"clearnet host", "example.com", false},
		{"onion-like clearnet name", "onion.example.com", false},
		{"bare ip", "192.0.2.10", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := tlsConfigForHost(tc.host)
			if cfg.InsecureSkipVerify != tc.skipVerify {
				t.Errorf("InsecureSkipVerify = %v, expected %v", cfg.InsecureSkipVerify, tc.skipVerify)
			}
			if cfg.ServerName != tc.host {
				t.Errorf("ServerName = %q, expected %q", cfg.ServerName, tc.host)
			}
		})
	}
}

// TestNewClient tests client construction and address validation.
func TestNewClient(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		address string
		valid   bool
	}{
		{"standard address", "127.0.0.1:9050", true},
		{"hostname", "localhost:9150", true},
		{"max port", "127.0.0.1:65535", true},
		{"empty", "", false},
		{"no port", "127.0.0.1", false},
		{"no host", ":9050", false},
		{"empty port", "127.0.0.1:", false},
		{"port zero", "127.0.0.1:0", false},
		{"port too large", "127.0.0.1:65536", false},
		{"non-numeric port", "127.0.0.1:abc", false},
		{"with scheme", "socks5://127.0.0.1:9050", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client, err := NewClient(tc.address, 30*time.Second)
			if tc.valid {
				if err != nil {
					t.Fatalf("NewClient(%q) = %v, expected nil", tc.address, err)
				}
				if client.ProxyAddress() != tc.address {
					t.Errorf("got proxy address %q, expected %q", client.ProxyAddress(), tc.address)
				}
			} else if err == nil {
				t.Errorf("NewClient(%q) = nil, expected error", tc.address)
			}
		})
	}
}

// TestCheckConnectionNoProxy tests the status when nothing listens at the
// proxy address.
func TestCheckConnectionNoProxy(t *testing.T) {
	t.Parallel()

	// Reserve a port and close it so nothing is listening there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	client, err := NewClient(addr, time.Second)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	status := client.CheckConnection(context.Background())
	if status != ProxyStatusCannotConnect {
		t.Errorf("got status %v, expected %v", status, ProxyStatusCannotConnect)
	}
}

// TestCheckConnectionWrongType tests the status when the listener does
// not speak SOCKS5.
func TestCheckConnectionWrongType(t *testing.T) {
	t.Parallel()

	// An HTTP server will answer the SOCKS5 greeting with garbage.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	addr := srv.Listener.Addr().String()
	client, err := NewClient(addr, time.Second)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	status := client.CheckConnection(context.Background())
	if status != ProxyStatusWrongType && status != ProxyStatusCannotConnect {
		t.Errorf("got status %v, expected wrong-type or cannot-connect", status)
	}
}

// TestCheckConnectionFakeSOCKS5 tests the full handshake against a
// minimal in-process SOCKS5 responder.
func TestCheckConnectionFakeSOCKS5(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		// Auth negotiation: accept no-auth.
		greeting := make([]byte, 3)
		if _, err := io.ReadFull(conn, greeting); err != nil {
			return
		}
		if _, err := conn.Write([]byte{0x05, 0x00}); err != nil {
			return
		}

		// CONNECT request: read header and consume the rest, then report
		// host unreachable (what Tor does for a bogus onion address).
		header := make([]byte, 5)
		if _, err := io.ReadFull(conn, header); err != nil {
			return
		}
		rest := make([]byte, int(header[4])+2)
		if _, err := io.ReadFull(conn, rest); err != nil {
			return
		}
		_, _ = conn.Write([]byte{0x05, 0x04, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
	}()

	client, err := NewClient(ln.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	status := client.CheckConnection(context.Background())
	if status != ProxyStatusOK {
		t.Errorf("got status %v, expected %v", status, ProxyStatusOK)
	}
}

// TestNewHTTPClientDoesNotFollowRedirects tests the redirect policy.
func TestNewHTTPClientDoesNotFollowRedirects(t *testing.T) {
	t.Parallel()

	client, err := NewClient("127.0.0.1:9050", 5*time.Second)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	httpClient := client.NewHTTPClient()
	if httpClient.CheckRedirect == nil {
		t.Fatal("expected CheckRedirect to be set")
	}

	err = httpClient.CheckRedirect(nil, nil)
	if err != http.ErrUseLastResponse {
		t.Errorf("got %v, expected http.ErrUseLastResponse", err)
	}
}

// TestProxyStatusString tests status formatting.
func TestProxyStatusString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		status   ProxyStatus
		expected string
	}{
		{ProxyStatusOK, "OK"},
		{ProxyStatusWrongType, "wrong type (not Tor)"},
		{ProxyStatusCannotConnect, "cannot connect"},
		{ProxyStatusTimeout, "timeout"},
		{ProxyStatus(99), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.status.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.status.String(), tc.expected)
			}
		})
	}
}

// TestProxyStatusError tests status-to-error mapping.
func TestProxyStatusError(t *testing.T) {
	t.Parallel()

	if ProxyStatusOK.Error() != nil {
		t.Error("expected nil error for OK status")
	}
	if ProxyStatusWrongType.Error() != ErrProxyNotTor {
		t.Error("expected ErrProxyNotTor for wrong type")
	}
	if ProxyStatusCannotConnect.Error() != ErrProxyCannotConnect {
		t.Error("expected ErrProxyCannotConnect")
	}
	if ProxyStatusTimeout.Error() != ErrProxyTimeout {
		t.Error("expected ErrProxyTimeout")
	}
}

// TestEmbeddedTorStopWithoutStart tests that Stop is safe on an
// unstarted instance.
func TestEmbeddedTorStopWithoutStart(t *testing.T) {
	t.Parallel()

	e := NewEmbeddedTor(WithStartupTimeout(time.Second))
	if err := e.Stop(); err != nil {
		t.Errorf("Stop on unstarted instance returned %v", err)
	}
	if e.SocksAddr() != "" {
		t.Errorf("got socks addr %q, expected empty", e.SocksAddr())
	}
}

// TestEmbeddedTorNewClientBeforeStart tests the unstarted-daemon error.
func TestEmbeddedTorNewClientBeforeStart(t *testing.T) {
	t.Parallel()

	e := NewEmbeddedTor()
	if _, err := e.NewClient(time.Second); err == nil {
		t.Error("expected error creating client before daemon start")
	}
}
