// =============================================================================
// internal/vault/vault.go - Vault KV secret lookup
// =============================================================================
package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/AndrewSav/mktool/internal/failure"
	cleanhttp "github.com/hashicorp/go-cleanhttp"
	"github.com/rs/zerolog"
)

const (
	// AllKeys requests the whole secret object as JSON
	AllKeys = "*"

	tokenHeader = "X-Vault-Token"
	tokenFile   = ".vault-token"
)

// ResponseError carries the body of a Vault response that could not be
// used, so it can be shown when debugging
type ResponseError struct {
	Message  string
	Response string
}

func (e *ResponseError) Error() string {
	return e.Message
}

// Response returns the Vault response body attached to err, if any
func Response(err error) (string, bool) {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.Response, true
	}
	return "", false
}

// Options locates Vault and the token used to talk to it. Empty fields fall
// back to VAULT_ADDR, VAULT_TOKEN and ~/.vault-token.
type Options struct {
	Address string
	Token   string
	// HomeDir overrides the directory searched for the token file
	HomeDir string
	Logger  zerolog.Logger
}

// Client reads secrets from a Vault server
type Client struct {
	address string
	token   string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient resolves address and token and creates a client
func NewClient(opts Options) (*Client, error) {
	address := opts.Address
	if address == "" {
		address = os.Getenv("VAULT_ADDR")
	}
	opts.Logger.Debug().Str("address", address).Msg("Vault address after environment lookup")
	if strings.TrimSpace(address) == "" {
		return nil, failure.New(failure.VaultAddress, "could not determine Vault address, use --vault-address or VAULT_ADDR")
	}

	token, err := resolveToken(opts)
	if err != nil {
		return nil, err
	}

	return &Client{
		address: strings.TrimRight(address, "/"),
		token:   token,
		http:    cleanhttp.DefaultClient(),
		log:     opts.Logger,
	}, nil
}

func resolveToken(opts Options) (string, error) {
	opts.Logger.Debug().Bool("passed", opts.Token != "").Msg("Getting Vault token")

	if opts.Token != "" {
		return opts.Token, nil
	}
	if token := os.Getenv("VAULT_TOKEN"); strings.TrimSpace(token) != "" {
		return token, nil
	}

	home := opts.HomeDir
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return "", failure.Wrapf(failure.VaultToken, err, "cannot determine home directory")
		}
	}
	path := filepath.Join(home, tokenFile)
	opts.Logger.Debug().Str("file", path).Msg("Reading Vault token file")

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", failure.New(failure.VaultToken, "%s is not found. Please login to vault first with 'vault login'", path)
	}
	if err != nil {
		return "", failure.Wrapf(failure.VaultToken, err, "cannot read token file")
	}
	return strings.TrimSpace(string(data)), nil
}

// Get reads key from the secret at path. KV version 2 responses are
// unwrapped transparently. Key AllKeys returns the whole secret as JSON.
func (c *Client) Get(ctx context.Context, path, key string) (string, error) {
	uri := fmt.Sprintf("%s/v1/%s", c.address, strings.TrimLeft(path, "/"))
	c.log.Info().Str("path", path).Str("key", key).Msg("Getting value from Vault")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return "", failure.Wrapf(failure.VaultRequest, err, "new request")
	}
	req.Header.Set(tokenHeader, c.token)

	rsp, err := c.http.Do(req)
	if err != nil {
		return "", failure.Wrapf(failure.VaultData, err, "HTTP request to Vault failed")
	}
	defer func() { _ = rsp.Body.Close() }()

	body, err := io.ReadAll(rsp.Body)
	if err != nil {
		return "", failure.Wrapf(failure.VaultData, err, "reading Vault response")
	}

	if rsp.StatusCode < 200 || rsp.StatusCode > 299 {
		hint := ""
		if rsp.StatusCode == http.StatusForbidden {
			hint = " Have you logged in?"
		}
		return "", failure.Wrap(failure.VaultRequest, &ResponseError{
			Message:  fmt.Sprintf("querying vault at %s. %s%s", uri, rsp.Status, hint),
			Response: string(body),
		})
	}

	data, err := secretData(body)
	if err != nil {
		return "", err
	}

	if key == AllKeys {
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", failure.Wrap(failure.VaultData, err)
		}
		return string(out), nil
	}

	raw, ok := data[key]
	if !ok {
		return "", failure.Wrap(failure.VaultMissingKey, &ResponseError{
			Message:  fmt.Sprintf("object at '%s' does not contain requested key '%s'", path, key),
			Response: string(body),
		})
	}
	return rawValue(raw), nil
}

// secretData returns the secret object of a KV read. Version 2 nests the
// secret under data.data next to data.metadata.
func secretData(body []byte) (map[string]json.RawMessage, error) {
	var envelope struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Data == nil {
		return nil, failure.Wrap(failure.VaultData, &ResponseError{
			Message:  "cannot parse 'data' element of Vault response as a json object",
			Response: string(body),
		})
	}

	inner, hasInner := envelope.Data["data"]
	_, hasMeta := envelope.Data["metadata"]
	if hasInner && hasMeta {
		var kv2 map[string]json.RawMessage
		if err := json.Unmarshal(inner, &kv2); err == nil && kv2 != nil {
			return kv2, nil
		}
	}
	return envelope.Data, nil
}

// rawValue renders a JSON value the way a user expects to see it: strings
// without quotes, anything else as JSON text
func rawValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
