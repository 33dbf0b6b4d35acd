// Package assets embeds every static artifact the HTTP surface serves: the
// landing and upload pages, their client-side scripts, the decrypt/encrypt
// workers, and the compiled codec artifact loaded by those workers (spec
// §4.4 "All assets are embedded in the binary.").
package assets

import (
	"embed"
	"html/template"
)

//go:embed static/landing.html static/burned.html static/notfound.html static/upload.html
var templateFiles embed.FS

//go:embed static/download.js static/decrypt_worker.js static/upload.js static/upload_worker.js static/wasm_exec.js static/codec.wasm
var StaticFiles embed.FS

// Templates parses every embedded HTML template once at startup. Panics on
// a malformed template, which is a build-time defect, not a runtime one.
var Templates = template.Must(template.ParseFS(templateFiles, "static/*.html"))

// LandingData feeds static/landing.html.
type LandingData struct {
	ID                string
	Filename          string
	Mime              string
	PasswordProtected bool
}

// UploadData holds upload-page limits. handleUploadPage renders
// static/upload.html without it, and the template reads no fields.
type UploadData struct {
	MaxBytes int64
}
