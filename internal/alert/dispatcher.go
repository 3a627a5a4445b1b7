package alert

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/nao1215/darkhound/internal/model"
	"github.com/nao1215/darkhound/internal/validate"
)

// defaultDialTimeout bounds the TCP connection to the SMTP server.
const defaultDialTimeout = 10 * time.Second

// Dispatcher sends one alert email per finding.
type Dispatcher struct {
	serverAddr  string
	from        string
	destination string
	username    string
	password    string
	dialTimeout time.Duration
	logger      *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithCredentials enables SMTP PLAIN authentication.
func WithCredentials(username, password string) Option {
	return func(d *Dispatcher) {
		d.username = username
		d.password = password
	}
}

// WithDialTimeout overrides the connection timeout.
func WithDialTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.dialTimeout = timeout
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New creates a Dispatcher for the given SMTP server.
//
// A non-empty destination must be a valid email address; an invalid one
// is rejected here, before any connection is made, so a typo in the
// configuration surfaces at startup. An empty destination builds a
// disabled dispatcher whose Dispatch always returns ErrNoDestination.
func New(serverAddr, from, destination string, opts ...Option) (*Dispatcher, error) {
	if destination != "" {
		if err := validate.Email(destination); err != nil {
			return nil, fmt.Errorf("alert destination: %w", err)
		}
	}
	if from == "" {
		from = "darkhound@localhost"
	}

	d := &Dispatcher{
		serverAddr:  serverAddr,
		from:        from,
		destination: destination,
		dialTimeout: defaultDialTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch sends the alert for one finding.
//
// Without a destination it fails fast with ErrNoDestination and never
// touches the network. Transport failures come back as *DispatchError
// with the reason classified, so the orchestrator can log them without
// parsing SMTP replies.
func (d *Dispatcher) Dispatch(ctx context.Context, finding model.Finding) error {
	if d.destination == "" {
		return ErrNoDestination
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	host, _, err := net.SplitHostPort(d.serverAddr)
	if err != nil {
		return &DispatchError{Reason: ReasonConnection, Server: d.serverAddr,
			Err: fmt.Errorf("invalid server address: %w", err)}
	}

	dialer := &net.Dialer{Timeout: d.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", d.serverAddr)
	if err != nil {
		return &DispatchError{Reason: ReasonConnection, Server: d.serverAddr, Err: err}
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return d.classify(err)
	}
	defer client.Close()

	// Upgrade to TLS when the server offers it. PLAIN credentials are
	// refused over plaintext to anything but localhost.
	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return d.classify(err)
		}
	}

	if d.username != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", d.username, d.password, host)
			if err := client.Auth(auth); err != nil {
				return d.classify(err)
			}
		}
	}

	if err := client.Mail(d.from); err != nil {
		return d.classify(err)
	}
	if err := client.Rcpt(d.destination); err != nil {
		return d.classify(err)
	}

	w, err := client.Data()
	if err != nil {
		return d.classify(err)
	}
	if _, err := w.Write(message(d.from, d.destination, finding)); err != nil {
		_ = w.Close()
		return d.classify(err)
	}
	if err := w.Close(); err != nil {
		return d.classify(err)
	}

	if err := client.Quit(); err != nil {
		// The message was accepted; a failed QUIT is worth a log line,
		// not a dispatch failure.
		d.logger.Debug("smtp quit failed after accepted message", "error", err)
	}

	d.logger.Info("alert dispatched",
		"indicator", finding.Indicator,
		"risk_score", finding.RiskScore)
	return nil
}

// classify maps an SMTP session error to a DispatchError.
func (d *Dispatcher) classify(err error) *DispatchError {
	reason := ReasonProtocol

	var tpErr *textproto.Error
	switch {
	case errors.As(err, &tpErr) && (tpErr.Code == 535 || tpErr.Code == 534 || tpErr.Code == 530):
		reason = ReasonAuth
	case errors.Is(err, io.EOF),
		strings.Contains(err.Error(), "broken pipe"),
		strings.Contains(err.Error(), "connection reset"):
		reason = ReasonDisconnected
	}

	return &DispatchError{Reason: reason, Server: d.serverAddr, Err: err}
}
