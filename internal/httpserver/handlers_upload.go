package httpserver

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Karmanya03/Deadrop/internal/codec"
)

// unsafeFilenameChars strips path separators and control characters from a
// client-supplied filename before it ever touches the filesystem (spec
// §4.4 "safe unique filename").
var unsafeFilenameChars = regexp.MustCompile(`[/\\\x00-\x1f]`)

func sanitizeFilename(raw string) string {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		decoded = raw
	}
	clean := unsafeFilenameChars.ReplaceAllString(filepath.Base(decoded), "_")
	if clean == "" || clean == "." || clean == ".." {
		clean = "upload.bin"
	}
	return clean
}

// uniquePath appends a numeric suffix until it finds a name that does not
// already exist in dir, so concurrent or repeated uploads never clobber a
// prior save.
func uniquePath(dir, name string) string {
	ext := filepath.Ext(name)
	base := name[:len(name)-len(ext)]
	candidate := filepath.Join(dir, name)
	for i := 1; ; i++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, i, ext))
	}
}

// handleUpload serves POST /api/upload (spec §4.4, receive mode only): the
// whole encrypted blob arrives as the request body, decoded with the key
// the operator generated for this receive session, and saved to the
// configured output directory.
func (s *Server) handleUpload(c *gin.Context) {
	filename := sanitizeFilename(c.GetHeader("X-Filename"))
	mime := c.GetHeader("X-Mime")

	var knownLen codec.KnownLength
	if c.Request.ContentLength > 0 {
		knownLen = codec.KnownLength{Valid: true, Bytes: c.Request.ContentLength}
	}

	outPath := uniquePath(s.receive.OutputDir, filename)
	out, err := os.OpenFile(outPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "internal", "message": "could not create output file"}})
		return
	}

	var written int64
	decodeErr := codec.Decode(c.Request.Body, s.receive.ExpectedKey, knownLen, func(chunk []byte) error {
		n, werr := out.Write(chunk)
		written += int64(n)
		return werr
	})
	closeErr := out.Close()

	if decodeErr != nil || closeErr != nil {
		_ = os.Remove(outPath)
		if s.logger != nil {
			s.logger.WithError(decodeErr).Warn("upload decode failed")
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "decode_failed", "message": errMessage(decodeErr, closeErr)}})
		return
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"saved_as": filepath.Base(outPath), "mime": mime, "size": written}).Info("upload received")
	}

	c.JSON(http.StatusOK, gin.H{
		"saved_as": filepath.Base(outPath),
		"size":     written,
	})

	s.scheduleShutdown()
}

func errMessage(primary, fallback error) string {
	if primary != nil {
		return primary.Error()
	}
	if fallback != nil {
		return fallback.Error()
	}
	return "unknown error"
}
