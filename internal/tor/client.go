package tor

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// checkProxyTimeout is the timeout for checking if the proxy is available.
// We use a short timeout here because this is just a connectivity check,
// not an actual request through the proxy.
const checkProxyTimeout = 2 * time.Second

// Client provides anonymized network connectivity.
// It wraps a SOCKS5 dialer and builds the HTTP client the fetcher uses
// for all source retrieval.
type Client struct {
	// proxyAddress is the SOCKS5 proxy address in "host:port" format.
	proxyAddress string

	// dialer is the SOCKS5 dialer for proxied connections.
	// We cache this to avoid recreating it for each connection.
	dialer proxy.Dialer

	// timeout is the default timeout for connections.
	timeout time.Duration
}

// NewClient creates a new proxy client with the given address and timeout.
//
// The proxyAddress must be in "host:port" format (e.g., "127.0.0.1:9050").
// The timeout is used as the default for HTTP clients created by this client.
//
// This function validates the proxy address format but does not verify
// that the proxy is actually running. Call CheckConnection() to verify.
//
// Design decision: We don't connect to the proxy in the constructor because:
// 1. It allows creating the client even when the proxy isn't running yet
// 2. It separates object creation from network operations
// 3. It allows for better testing with mock proxies
func NewClient(proxyAddress string, timeout time.Duration) (*Client, error) {
	if !isValidProxyAddress(proxyAddress) {
		return nil, ErrInvalidProxyAddress
	}

	// We use nil for auth because Tor's SOCKS port typically doesn't require auth
	dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	return &Client{
		proxyAddress: proxyAddress,
		dialer:       dialer,
		timeout:      timeout,
	}, nil
}

// isValidProxyAddress checks if the address is in valid "host:port" format.
// We use a simple check rather than a full URL parser because the format
// is very specific (no scheme, no path, just host and port).
func isValidProxyAddress(address string) bool {
	parts := strings.Split(address, ":")
	if len(parts) != 2 {
		return false
	}

	host := parts[0]
	port := parts[1]

	if host == "" || port == "" {
		return false
	}

	// Validate port is a number in valid range
	portNum := 0
	for _, c := range port {
		if c < '0' || c > '9' {
			return false
		}
		portNum = portNum*10 + int(c-'0')
		if portNum > 65535 {
			return false
		}
	}

	return portNum >= 1
}

// SOCKS5 protocol constants
const (
	socks5Version       = 0x05
	socks5AuthNone      = 0x00
	socks5AuthNoAccept  = 0xFF
	socks5CmdConnect    = 0x01
	socks5AddrTypeDomID = 0x03

	// socks5TestOnion is a synthetic .onion address used for SOCKS5
	// verification. This is intentionally a non-existent address - we only
	// need to verify the proxy responds to SOCKS5 CONNECT requests, not
	// that the connection succeeds. Using a fake address avoids any
	// interaction with real services.
	socks5TestOnion = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa.onion"
)

// CheckConnection verifies that the proxy is running and accessible.
// It returns a ProxyStatus indicating the result of the check.
//
// The check works by performing a SOCKS5 protocol handshake to verify:
// 1. The proxy speaks SOCKS5 protocol
// 2. The proxy accepts connections without authentication
// 3. The proxy can handle .onion domain connections
//
// Security note: This is more robust than just checking HTTP response
// strings, as a fake proxy cannot easily mimic proper SOCKS5 protocol
// behavior.
func (c *Client) CheckConnection(ctx context.Context) ProxyStatus {
	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.proxyAddress)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return ProxyStatusCannotConnect
	}

	// Step 1: SOCKS5 version negotiation.
	// Client sends: version (1 byte) + num auth methods (1 byte) + methods.
	// We offer no authentication (0x00) only.
	_, err = conn.Write([]byte{socks5Version, 0x01, socks5AuthNone})
	if err != nil {
		return ProxyStatusCannotConnect
	}

	// Server responds: version (1 byte) + selected auth method (1 byte)
	authResp := make([]byte, 2)
	if _, err := io.ReadFull(conn, authResp); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		// Anything else means it didn't speak SOCKS5 properly
		return ProxyStatusWrongType
	}

	version := authResp[0]
	authMethod := authResp[1]

	if version != socks5Version {
		return ProxyStatusWrongType
	}
	if authMethod == socks5AuthNoAccept || authMethod != socks5AuthNone {
		return ProxyStatusWrongType
	}

	// Step 2: Verify the proxy can handle connection requests.
	// We send a connection request to a test .onion address. The proxy
	// should respond (even with failure for a non-existent address); this
	// verifies it's actually proxying, not just accepting handshakes.
	testOnion := socks5TestOnion
	testPort := uint16(80)

	connectReq := []byte{
		socks5Version,
		socks5CmdConnect,
		0x00, // reserved
		socks5AddrTypeDomID,
		byte(len(testOnion)),
	}
	connectReq = append(connectReq, []byte(testOnion)...)
	connectReq = append(connectReq, byte(testPort>>8), byte(testPort&0xFF))

	_, err = conn.Write(connectReq)
	if err != nil {
		return ProxyStatusCannotConnect
	}

	// Read response header: version + reply + reserved + addr type.
	// The actual connection may fail (that's fine - we're just testing
	// that the proxy processed the SOCKS5 request).
	connectResp := make([]byte, 4)
	if _, err := io.ReadFull(conn, connectResp); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}

	if connectResp[0] != socks5Version {
		return ProxyStatusWrongType
	}

	return ProxyStatusOK
}

// NewHTTPClient creates an HTTP client configured for the proxy.
// The returned client routes all requests through the SOCKS5 proxy.
//
// Design decisions:
//   - Redirects are never followed. A redirect from a leak source is
//     surfaced to the fetcher as its status code; silently following one
//     could move the request to an unvalidated destination.
//   - No cookie jar. Sources are fetched statelessly; carrying session
//     state between leak sites is a correlation risk with no benefit.
//   - TLS verification is skipped for .onion hosts only. Hidden services
//     use self-signed certs and the onion address itself authenticates
//     the service; clearnet hosts keep full certificate verification.
//   - Compression is disabled to avoid compression side channels on
//     anonymized connections.
func (c *Client) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: func(_ context.Context, network, addr string) (net.Conn, error) {
			return c.dialer.Dial(network, addr)
		},
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := c.dialer.Dial(network, addr)
			if err != nil {
				return nil, err
			}
			host, _, err := net.SplitHostPort(addr)
			if err != nil {
				host = addr
			}
			tlsConn := tls.Client(conn, tlsConfigForHost(host))
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				_ = conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		// Each connection goes through a proxy circuit, which is a limited
		// resource, so the pool is kept small.
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
		DisableCompression:  true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
		CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// tlsConfigForHost returns the TLS configuration for one host.
// Hidden services use self-signed certificates, so verification is
// skipped for .onion hosts; every other host gets full certificate
// verification against its name.
func tlsConfigForHost(host string) *tls.Config {
	cfg := &tls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
	}
	if strings.HasSuffix(host, ".onion") {
		cfg.InsecureSkipVerify = true //nolint:gosec // the onion address authenticates the service
	}
	return cfg
}

// ProxyAddress returns the configured proxy address.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}
