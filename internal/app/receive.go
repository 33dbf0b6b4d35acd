package app

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/Karmanya03/Deadrop/internal/cliconfig"
	"github.com/Karmanya03/Deadrop/internal/cryptoprim"
	"github.com/Karmanya03/Deadrop/internal/diag"
	"github.com/Karmanya03/Deadrop/internal/httpserver"
	"github.com/Karmanya03/Deadrop/internal/registry"
)

// ReceiveResult carries what the CLI needs to print and wait on.
type ReceiveResult struct {
	URL    string
	Server *httpserver.Server
}

// Receive implements the receive control flow of spec §2: the operator's
// machine starts a server holding a freshly generated key; the browser
// page at /u encodes the chosen file under that key and posts the blob to
// /api/upload, after which the server saves it and schedules its own
// shutdown.
func Receive(logger *logrus.Logger, cfg cliconfig.ReceiveConfig) (*ReceiveResult, error) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = cliconfig.DefaultOutDir
	}
	if err := os.MkdirAll(cfg.OutputDir, 0700); err != nil {
		return nil, fmt.Errorf("app: create output directory: %w", err)
	}
	if err := diag.CheckFreeSpace(cfg.OutputDir, 0); err != nil {
		return nil, err
	}

	keyBytes := make([]byte, cryptoprim.KeySize)
	if _, err := rand.Read(keyBytes); err != nil {
		return nil, fmt.Errorf("app: generate key: %w", err)
	}
	fragment := base64.RawURLEncoding.EncodeToString(keyBytes)

	reg := registry.New(logger)
	srv := httpserver.New(httpserver.ModeReceive, reg, logger, httpserver.ReceiveConfig{
		OutputDir:   cfg.OutputDir,
		ExpectedKey: keyBytes,
	})

	url := fmt.Sprintf("http://%s:%d/u#%s", displayHost(cfg.Bind), cfg.Port, fragment)
	return &ReceiveResult{URL: url, Server: srv}, nil
}
