package alert

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/darkhound/internal/model"
	"github.com/nao1215/darkhound/internal/validate"
)

// fakeSMTPServer runs a minimal in-process SMTP responder for one
// session. It returns the listen address and a channel carrying the
// received DATA payload. authReply, when non-empty, is sent in response
// to AUTH instead of accepting it.
func fakeSMTPServer(t *testing.T, authReply string) (string, <-chan string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	dataCh := make(chan string, 1)

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		w := bufio.NewWriter(conn)
		reply := func(s string) {
			_, _ = w.WriteString(s + "\r\n")
			_ = w.Flush()
		}

		reply("220 fake ESMTP ready")
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))

			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				_, _ = w.WriteString("250-fake\r\n250 AUTH PLAIN\r\n")
				_ = w.Flush()
			case strings.HasPrefix(cmd, "AUTH"):
				if authReply != "" {
					reply(authReply)
				} else {
					reply("235 2.7.0 accepted")
				}
			case strings.HasPrefix(cmd, "MAIL"), strings.HasPrefix(cmd, "RCPT"):
				reply("250 OK")
			case strings.HasPrefix(cmd, "DATA"):
				reply("354 go ahead")
				var data strings.Builder
				for {
					dl, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if strings.TrimRight(dl, "\r\n") == "." {
						break
					}
					data.WriteString(dl)
				}
				dataCh <- data.String()
				reply("250 queued")
			case strings.HasPrefix(cmd, "QUIT"):
				reply("221 bye")
				return
			default:
				reply("250 OK")
			}
		}
	}()

	return ln.Addr().String(), dataCh
}

func testFinding(t *testing.T) model.Finding {
	t.Helper()

	finding, err := model.NewFinding(
		"example.com",
		"dump snippet: user=jdoe password: hunter2 from example.com",
		map[string]string{"password": "hunter2", "email": "jdoe@example.com"},
		10,
	)
	if err != nil {
		t.Fatal(err)
	}
	return finding
}

// TestNewRejectsInvalidDestination tests that a malformed destination
// fails at construction, before any network use.
func TestNewRejectsInvalidDestination(t *testing.T) {
	t.Parallel()

	_, err := New("127.0.0.1:2525", "darkhound@example.com", "not-an-email")
	if err == nil {
		t.Fatal("expected error for invalid destination")
	}
	if !errors.Is(err, validate.ErrInvalidInput) {
		t.Errorf("got %v, expected wrapped validate.ErrInvalidInput", err)
	}
}

// TestDispatchNoDestination tests that a disabled dispatcher fails fast
// without dialing.
func TestDispatchNoDestination(t *testing.T) {
	t.Parallel()

	// Address that would fail loudly if dialed.
	d, err := New("invalid-host-that-does-not-exist:2525", "darkhound@example.com", "")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	start := time.Now()
	err = d.Dispatch(context.Background(), testFinding(t))
	if !errors.Is(err, ErrNoDestination) {
		t.Errorf("got %v, expected ErrNoDestination", err)
	}
	if time.Since(start) > time.Second {
		t.Error("disabled dispatch took long enough to have dialed")
	}
}

// TestRenderRedaction tests that the rendered alert never leaks the
// captured context or extracted entities.
func TestRenderRedaction(t *testing.T) {
	t.Parallel()

	finding := testFinding(t)

	subject := Subject(finding)
	if subject != "DarkHound Leak Alert: example.com" {
		t.Errorf("got subject %q", subject)
	}

	body := Body(finding)
	if !strings.Contains(body, "example.com") {
		t.Error("body missing indicator")
	}
	if !strings.Contains(body, "10/10") {
		t.Error("body missing risk score")
	}
	if !strings.Contains(body, "[context redacted]") {
		t.Error("body missing redaction placeholder")
	}

	for _, leaked := range []string{"hunter2", "jdoe", "dump snippet"} {
		if strings.Contains(body, leaked) {
			t.Errorf("body leaks %q", leaked)
		}
		if strings.Contains(subject, leaked) {
			t.Errorf("subject leaks %q", leaked)
		}
	}
}

// TestDispatchDelivery tests a full session against the fake server,
// including redaction of the wire payload.
func TestDispatchDelivery(t *testing.T) {
	t.Parallel()

	addr, dataCh := fakeSMTPServer(t, "")

	d, err := New(addr, "darkhound@example.com", "soc@example.com",
		WithCredentials("monitor", "secret"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := d.Dispatch(context.Background(), testFinding(t)); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	select {
	case data := <-dataCh:
		if !strings.Contains(data, "Subject: DarkHound Leak Alert: example.com") {
			t.Errorf("payload missing subject: %q", data)
		}
		if strings.Contains(data, "hunter2") || strings.Contains(data, "dump snippet") {
			t.Errorf("payload leaks context: %q", data)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server never received message data")
	}
}

// TestDispatchFailureClassification tests the error reasons.
func TestDispatchFailureClassification(t *testing.T) {
	t.Parallel()

	t.Run("connection refused", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		addr := ln.Addr().String()
		_ = ln.Close()

		d, err := New(addr, "darkhound@example.com", "soc@example.com")
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		err = d.Dispatch(context.Background(), testFinding(t))
		var dispErr *DispatchError
		if !errors.As(err, &dispErr) {
			t.Fatalf("got %T, expected *DispatchError", err)
		}
		if dispErr.Reason != ReasonConnection {
			t.Errorf("got reason %v, expected %v", dispErr.Reason, ReasonConnection)
		}
	})

	t.Run("auth rejected", func(t *testing.T) {
		t.Parallel()

		addr, _ := fakeSMTPServer(t, "535 5.7.8 authentication credentials invalid")

		d, err := New(addr, "darkhound@example.com", "soc@example.com",
			WithCredentials("monitor", "wrong"))
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		err = d.Dispatch(context.Background(), testFinding(t))
		var dispErr *DispatchError
		if !errors.As(err, &dispErr) {
			t.Fatalf("got %T, expected *DispatchError", err)
		}
		if dispErr.Reason != ReasonAuth {
			t.Errorf("got reason %v, expected %v", dispErr.Reason, ReasonAuth)
		}
	})

	t.Run("invalid server address", func(t *testing.T) {
		t.Parallel()

		d, err := New("no-port-here", "darkhound@example.com", "soc@example.com")
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		err = d.Dispatch(context.Background(), testFinding(t))
		var dispErr *DispatchError
		if !errors.As(err, &dispErr) {
			t.Fatalf("got %T, expected *DispatchError", err)
		}
		if dispErr.Reason != ReasonConnection {
			t.Errorf("got reason %v, expected %v", dispErr.Reason, ReasonConnection)
		}
	})
}

// TestReasonString tests the reason names.
func TestReasonString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		reason Reason
		want   string
	}{
		{ReasonConnection, "connection failed"},
		{ReasonAuth, "authentication rejected"},
		{ReasonDisconnected, "server disconnected"},
		{ReasonProtocol, "protocol error"},
		{Reason(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.reason.String(); got != tt.want {
			t.Errorf("Reason(%d).String() = %q, expected %q", tt.reason, got, tt.want)
		}
	}
}
