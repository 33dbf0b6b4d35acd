package app

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/Karmanya03/Deadrop/internal/cliconfig"
	"github.com/Karmanya03/Deadrop/internal/codec"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func TestSend_NoPassword_URLHasBareKeyFragment(t *testing.T) {
	blobDir := t.TempDir()
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("payload bytes"), 0600))
	src, err := OpenSource([]string{path})
	require.NoError(t, err)

	cfg := cliconfig.SendConfig{Port: 9001, Bind: "127.0.0.1", TTL: time.Hour, MaxDownloads: 1}
	result, err := Send(testLogger(), blobDir, cfg, src)
	require.NoError(t, err)
	require.NotNil(t, result.Server)

	idx := strings.IndexByte(result.URL, '#')
	require.Greater(t, idx, 0)
	fragment := result.URL[idx+1:]
	require.False(t, strings.HasPrefix(fragment, "pw:"))

	// The blob on disk decodes back to the original plaintext under the
	// fragment key (the URL fragment never appears anywhere but the browser).
	raw, err := base64.RawURLEncoding.DecodeString(fragment)
	require.NoError(t, err)

	f, err := os.Open(result.BlobPath)
	require.NoError(t, err)
	defer f.Close()

	var out bytes.Buffer
	err = codec.Decode(f, raw, codec.KnownLength{}, func(chunk []byte) error {
		_, werr := out.Write(chunk)
		return werr
	})
	require.NoError(t, err)
	require.Equal(t, "payload bytes", out.String())
}

func TestSend_WithPassword_URLHasSaltFragment(t *testing.T) {
	blobDir := t.TempDir()
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("secret payload"), 0600))
	src, err := OpenSource([]string{path})
	require.NoError(t, err)

	cfg := cliconfig.SendConfig{Port: 9002, Bind: "127.0.0.1", TTL: time.Hour, Password: "correct horse"}
	result, err := Send(testLogger(), blobDir, cfg, src)
	require.NoError(t, err)

	idx := strings.IndexByte(result.URL, '#')
	require.Greater(t, idx, 0)
	fragment := result.URL[idx+1:]
	require.True(t, strings.HasPrefix(fragment, "pw:"))
}

func TestSend_DefaultsTTLWhenZero(t *testing.T) {
	blobDir := t.TempDir()
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))
	src, err := OpenSource([]string{path})
	require.NoError(t, err)

	cfg := cliconfig.SendConfig{Port: 9003, Bind: "127.0.0.1"}
	result, err := Send(testLogger(), blobDir, cfg, src)
	require.NoError(t, err)
	require.NotEmpty(t, result.DropID)

	// A zero TTL left as-is would expire the drop at once and erase its
	// blob; with DefaultTTL applied the blob is still on disk.
	time.Sleep(50 * time.Millisecond)
	require.FileExists(t, result.BlobPath)
}
