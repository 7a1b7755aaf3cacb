// =============================================================================
// internal/mikrotik/client.go - RouterOS API client
// =============================================================================
package mikrotik

import (
	"crypto/tls"
	"errors"
	"net"
	"time"

	"github.com/AndrewSav/mktool/internal/failure"
	"github.com/go-routeros/routeros/v3"
	"github.com/go-routeros/routeros/v3/proto"
	"github.com/rs/zerolog"
)

const (
	apiPort    = "8728"
	apiTLSPort = "8729"
)

// DialOptions holds connection parameters
type DialOptions struct {
	Address  string
	User     string
	Password string
	TLS      bool
	Insecure bool
	Timeout  time.Duration
	Logger   zerolog.Logger
}

// Client talks to a router over the RouterOS API
type Client struct {
	conn *routeros.Client
	log  zerolog.Logger
}

// Dial connects and logs in to the router
func Dial(opts DialOptions) (*Client, error) {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	address := withDefaultPort(opts.Address, opts.TLS)

	opts.Logger.Info().Str("address", address).Bool("tls", opts.TLS).Msg("Connecting to router")

	var (
		conn *routeros.Client
		err  error
	)
	if opts.TLS {
		conn, err = routeros.DialTLSTimeout(address, opts.User, opts.Password,
			&tls.Config{InsecureSkipVerify: opts.Insecure}, opts.Timeout)
	} else {
		conn, err = routeros.DialTimeout(address, opts.User, opts.Password, opts.Timeout)
	}
	if err != nil {
		return nil, failure.Wrapf(failure.Connection, err, "error connecting to router %s", address)
	}

	return &Client{conn: conn, log: opts.Logger}, nil
}

// withDefaultPort appends the API port when the address has none
func withDefaultPort(address string, useTLS bool) string {
	if _, _, err := net.SplitHostPort(address); err == nil {
		return address
	}
	port := apiPort
	if useTLS {
		port = apiTLSPort
	}
	return net.JoinHostPort(address, port)
}

// Close ends the API session
func (c *Client) Close() error {
	c.conn.Close()
	return nil
}

// ListDHCPLeases fetches every DHCP server lease
func (c *Client) ListDHCPLeases() ([]Entry, error) {
	return c.Execute(DHCPLeasePrint)
}

// ListDNSStatic fetches every static DNS entry
func (c *Client) ListDNSStatic() ([]Entry, error) {
	return c.Execute(DNSStaticPrint)
}

// ListWiFiAccessList fetches every wireless access list entry
func (c *Client) ListWiFiAccessList() ([]Entry, error) {
	return c.Execute(WiFiAccessPrint)
}

// Execute sends one sentence and returns the reply entries. A !trap reply
// comes back as a failure.RemoteWrite error carrying the router message.
func (c *Client) Execute(sentence ...string) ([]Entry, error) {
	c.log.Info().Strs("request", sentence).Msg("Executing router call")

	reply, err := c.conn.RunArgs(sentence)
	if err != nil {
		return nil, translateError(err)
	}

	entries := replyEntries(reply.Re)
	c.log.Trace().Interface("response", entries).Msg("Router response")
	return entries, nil
}

func replyEntries(sentences []*proto.Sentence) []Entry {
	entries := make([]Entry, 0, len(sentences))
	for _, s := range sentences {
		e := make(Entry, len(s.Map))
		for k, v := range s.Map {
			e[k] = v
		}
		entries = append(entries, e)
	}
	return entries
}

// TrapMessage extracts the router supplied message from a trap error
func TrapMessage(err error) (string, bool) {
	var devErr *routeros.DeviceError
	if !errors.As(err, &devErr) {
		return "", false
	}
	if devErr.Sentence == nil {
		return devErr.Error(), true
	}
	if msg := devErr.Sentence.Map["message"]; msg != "" {
		return msg, true
	}
	return devErr.Error(), true
}

func translateError(err error) error {
	if msg, ok := TrapMessage(err); ok {
		return failure.New(failure.RemoteWrite, "%s", msg)
	}
	return failure.Wrapf(failure.Connection, err, "error executing router command")
}
