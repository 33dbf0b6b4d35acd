// Package cliconfig loads and validates the CLI surface of spec §6 with
// viper, fail-fast, in the teacher's main.go style: bind flags and
// DEADROP_* environment variables into one struct, validate eagerly, and
// abort on the first bad value rather than discovering it mid-run.
package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults mirror spec §6's documented flag defaults.
const (
	DefaultPort     = 8080
	DefaultBind     = "0.0.0.0"
	DefaultTTL      = time.Hour
	DefaultMaxCount = 1
	DefaultOutDir   = "."
)

// SendConfig is the validated configuration for `ded [send] <PATH>...`.
type SendConfig struct {
	Paths        []string
	Port         int
	Bind         string
	TTL          time.Duration
	MaxDownloads uint64 // 0 means unlimited, per spec §6 "-n 0"
	Password     string
	NoQR         bool
	Tor          bool
}

// ReceiveConfig is the validated configuration for `ded receive`.
type ReceiveConfig struct {
	OutputDir string
	Port      int
	Bind      string
	NoQR      bool
	Tor       bool
}

// NewViper constructs a viper instance bound to the DEADROP_ environment
// prefix, with the spec's documented defaults pre-seeded so an unset flag
// and an unset environment variable resolve the same way.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("DEADROP")
	v.AutomaticEnv()
	v.SetDefault("port", DefaultPort)
	v.SetDefault("bind", DefaultBind)
	v.SetDefault("ttl", "1h")
	v.SetDefault("count", DefaultMaxCount)
	v.SetDefault("out", DefaultOutDir)
	v.SetDefault("log_level", "info")
	return v
}

// durationUnits maps the unit suffixes of spec §6's duration grammar:
// "integer suffixed by s|m|h|d".
var durationUnits = map[byte]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'd': 24 * time.Hour,
}

// ParseDuration parses the spec's duration grammar. It does not accept
// Go's own duration syntax (e.g. "1h30m") — exactly one integer and one
// unit suffix, matching the documented CLI grammar exactly.
func ParseDuration(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("cliconfig: %q is not a valid duration (want <int><s|m|h|d>)", s)
	}
	unit, ok := durationUnits[s[len(s)-1]]
	if !ok {
		return 0, fmt.Errorf("cliconfig: %q has an unrecognized unit suffix", s)
	}
	n, err := strconv.ParseInt(s[:len(s)-1], 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("cliconfig: %q does not start with a non-negative integer", s)
	}
	return time.Duration(n) * unit, nil
}

// ValidatePort rejects a port outside the usable range, matching the
// teacher's focused single-purpose Validate* functions
// (config/secret_validation.go's ValidateJWTSecret).
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("cliconfig: port %d out of range [1,65535]", port)
	}
	return nil
}

// ValidateBind rejects an empty bind address; anything more specific is a
// matter for the OS's own bind(2) to reject at startup.
func ValidateBind(bind string) error {
	if strings.TrimSpace(bind) == "" {
		return fmt.Errorf("cliconfig: bind address must not be empty")
	}
	return nil
}

// ValidateMaxDownloads accepts any value; 0 means unlimited per spec §6.
// It exists so every numeric CLI input has a matching Validate* function,
// even when the rule is "anything is valid".
func ValidateMaxDownloads(uint64) error { return nil }

// ValidatePassword enforces nothing about length or character set — the
// wire format supports arbitrary non-UTF-8 passwords (spec §8 property 5) —
// but rejects a password supplied as an empty string via --pw, since that
// almost certainly means the flag was passed without a value.
func ValidatePassword(pw string, wasSet bool) error {
	if wasSet && pw == "" {
		return fmt.Errorf("cliconfig: --pw requires a non-empty value")
	}
	return nil
}
