package cliconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"30s", 30 * time.Second},
		{"5m", 5 * time.Minute},
		{"1h", time.Hour},
		{"2d", 48 * time.Hour},
		{"0s", 0},
	}
	for _, tc := range cases {
		got, err := ParseDuration(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseDuration_Rejects(t *testing.T) {
	for _, in := range []string{"", "1", "h", "1h30m", "-5s", "5x", "abc"} {
		_, err := ParseDuration(in)
		require.Error(t, err, in)
	}
}

func TestValidatePort(t *testing.T) {
	require.NoError(t, ValidatePort(8080))
	require.NoError(t, ValidatePort(1))
	require.NoError(t, ValidatePort(65535))
	require.Error(t, ValidatePort(0))
	require.Error(t, ValidatePort(65536))
	require.Error(t, ValidatePort(-1))
}

func TestValidateBind(t *testing.T) {
	require.NoError(t, ValidateBind("0.0.0.0"))
	require.Error(t, ValidateBind(""))
	require.Error(t, ValidateBind("   "))
}

func TestValidatePassword(t *testing.T) {
	require.NoError(t, ValidatePassword("", false)) // --pw never supplied
	require.Error(t, ValidatePassword("", true))    // --pw supplied empty
	require.NoError(t, ValidatePassword("secret", true))
}

func TestNewViper_Defaults(t *testing.T) {
	v := NewViper()
	require.Equal(t, DefaultPort, v.GetInt("port"))
	require.Equal(t, DefaultBind, v.GetString("bind"))
	require.Equal(t, "1h", v.GetString("ttl"))
}
