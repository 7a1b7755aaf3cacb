// =============================================================================
// internal/failure/failure.go - Error kinds and process exit codes
// =============================================================================
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies an error for reporting and exit code selection
type Kind int

const (
	Unhandled Kind = iota
	CommandLine
	VaultRequest
	VaultMissingKey
	VaultToken
	VaultAddress
	VaultData
	Connection
	FileWrite
	LoggingInit
	MissingFormat
	ImportFile
	Validation
	RemoteWrite
	ConfigurationLoad
	Configuration
	PoolExhausted
	RecordNotFound
	AmbiguousRemoteState
	Format
)

var kindNames = map[Kind]string{
	Unhandled:            "unhandled",
	CommandLine:          "command line",
	VaultRequest:         "vault request",
	VaultMissingKey:      "vault missing key",
	VaultToken:           "vault token",
	VaultAddress:         "vault address",
	VaultData:            "vault data",
	Connection:           "router connection",
	FileWrite:            "file write",
	LoggingInit:          "logging init",
	MissingFormat:        "missing format",
	ImportFile:           "import file",
	Validation:           "validation",
	RemoteWrite:          "router write",
	ConfigurationLoad:    "configuration load",
	Configuration:        "configuration",
	PoolExhausted:        "allocation pool exhausted",
	RecordNotFound:       "router record not found",
	AmbiguousRemoteState: "ambiguous router state",
	Format:               "format",
}

// exitCodes keeps the numbering of the original tool so scripts keep working.
// Vault address and data problems share the request code.
var exitCodes = map[Kind]int{
	CommandLine:          1,
	VaultRequest:         2,
	VaultMissingKey:      3,
	VaultToken:           4,
	VaultAddress:         2,
	VaultData:            5,
	Connection:           6,
	FileWrite:            7,
	LoggingInit:          8,
	MissingFormat:        9,
	ImportFile:           10,
	Validation:           11,
	RemoteWrite:          12,
	ConfigurationLoad:    13,
	Configuration:        14,
	PoolExhausted:        15,
	RecordNotFound:       16,
	AmbiguousRemoteState: 17,
	Format:               18,
	Unhandled:            127,
}

// String returns a human readable kind name
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is an error tagged with a Kind
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String() + " error"
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a tagged error from a format string
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap tags err with kind. A nil err stays nil.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// Wrapf tags err with kind and prefixes it with a message
func Wrapf(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)}
}

// KindOf returns the kind of the outermost tagged error in the chain,
// or Unhandled when err carries no kind.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Unhandled
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ExitCode maps an error to the process exit status
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := exitCodes[KindOf(err)]; ok {
		return code
	}
	return exitCodes[Unhandled]
}
