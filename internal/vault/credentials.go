// =============================================================================
// internal/vault/credentials.go - Router credential resolution
// =============================================================================
package vault

import "context"

// Default secret keys for the router user name and password
const (
	DefaultUserKey     = "username"
	DefaultPasswordKey = "password"
)

// CredentialOptions says where the router user name and password come from.
// A literal value wins over a Vault location.
type CredentialOptions struct {
	User             string
	Password         string
	UserLocation     string
	UserKey          string
	PasswordLocation string
	PasswordKey      string
	Vault            Options
}

// Credentials resolves the router user name and password. Vault is only
// contacted when one of them has no literal value.
func Credentials(ctx context.Context, opts CredentialOptions) (string, string, error) {
	user, password := opts.User, opts.Password
	if user != "" && password != "" {
		return user, password, nil
	}

	opts.Vault.Logger.Info().Msg("Retrieving username and password from Vault")
	client, err := NewClient(opts.Vault)
	if err != nil {
		return "", "", err
	}

	if user == "" {
		if user, err = client.Get(ctx, opts.UserLocation, keyOrDefault(opts.UserKey, DefaultUserKey)); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = client.Get(ctx, opts.PasswordLocation, keyOrDefault(opts.PasswordKey, DefaultPasswordKey)); err != nil {
			return "", "", err
		}
	}
	return user, password, nil
}

func keyOrDefault(key, def string) string {
	if key == "" {
		return def
	}
	return key
}
