package app

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/Karmanya03/Deadrop/internal/cliconfig"
	"github.com/Karmanya03/Deadrop/internal/codec"
	"github.com/Karmanya03/Deadrop/internal/cryptoprim"
	"github.com/Karmanya03/Deadrop/internal/diag"
	"github.com/Karmanya03/Deadrop/internal/httpserver"
	"github.com/Karmanya03/Deadrop/internal/registry"
)

// SendResult carries everything the CLI layer needs to print for the user
// after a drop is published (spec §6 "URL forms").
type SendResult struct {
	URL      string
	DropID   string
	Server   *httpserver.Server
	BlobPath string
}

// Send implements the send control flow of spec §2: encode the plaintext
// source to an on-disk ciphertext blob, register it, and return an HTTP
// server (not yet listening; the caller starts it with Run) plus the URL
// the sender shares out of band.
func Send(logger *logrus.Logger, blobDir string, cfg cliconfig.SendConfig, src *PlaintextSource) (*SendResult, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = cliconfig.DefaultTTL
	}

	if src.HasSize {
		if err := diag.CheckFreeSpace(blobDir, uint64(src.KnownSize)); err != nil {
			return nil, err
		}
	}

	var keyBytes []byte
	var fragment string
	var err error

	if cfg.Password != "" {
		salt := make([]byte, cryptoprim.SaltSize)
		if _, err = rand.Read(salt); err != nil {
			return nil, fmt.Errorf("app: generate salt: %w", err)
		}
		keyBytes, err = cryptoprim.DeriveKey([]byte(cfg.Password), salt)
		if err != nil {
			return nil, fmt.Errorf("app: derive key from password: %w", err)
		}
		fragment = "pw:" + base64.RawURLEncoding.EncodeToString(salt)
	} else {
		keyBytes = make([]byte, cryptoprim.KeySize)
		if _, err = rand.Read(keyBytes); err != nil {
			return nil, fmt.Errorf("app: generate key: %w", err)
		}
		fragment = base64.RawURLEncoding.EncodeToString(keyBytes)
	}

	baseNonceBytes := make([]byte, cryptoprim.NonceSize)
	if _, err := rand.Read(baseNonceBytes); err != nil {
		return nil, fmt.Errorf("app: generate base nonce: %w", err)
	}

	blobPath := filepath.Join(blobDir, fmt.Sprintf("deadrop-%x.blob", baseNonceBytes[:8]))
	blobFile, err := os.OpenFile(blobPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("app: create blob file: %w", err)
	}

	if src.HasSize {
		err = codec.EncodeKnownSize(blobFile, src.Reader, keyBytes, baseNonceBytes, src.KnownSize)
	} else {
		err = codec.EncodeSeekable(blobFile, src.Reader, keyBytes, baseNonceBytes)
	}
	src.Cleanup()
	closeErr := blobFile.Close()
	if err != nil || closeErr != nil {
		os.Remove(blobPath)
		if err == nil {
			err = closeErr
		}
		return nil, fmt.Errorf("app: encode blob: %w", err)
	}

	reg := registry.New(logger)
	key := cryptoprim.NewKey(keyBytes)
	baseNonce := cryptoprim.NewBaseNonce(baseNonceBytes)

	meta := registry.Meta{
		Filename:          src.Filename,
		Mime:              src.Mime,
		PasswordProtected: cfg.Password != "",
		MaxDownloads:      cfg.MaxDownloads,
		TTL:               cfg.TTL,
	}

	created, err := reg.Create(meta, blobPath, key, baseNonce)
	if err != nil {
		os.Remove(blobPath)
		return nil, fmt.Errorf("app: register drop: %w", err)
	}

	srv := httpserver.New(httpserver.ModeSend, reg, logger, httpserver.ReceiveConfig{})

	url := fmt.Sprintf("http://%s:%d/d/%s#%s", displayHost(cfg.Bind), cfg.Port, created.ID, fragment)

	return &SendResult{URL: url, DropID: created.ID, Server: srv, BlobPath: blobPath}, nil
}

func displayHost(bind string) string {
	if bind == "0.0.0.0" || bind == "" {
		return "127.0.0.1"
	}
	return bind
}
