// Package qr builds check-in links and renders them as QR code images.
package qr

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/iliyamo/church-check-in/internal/model"
)

// imageSize is the rendered PNG edge length in pixels. 256 scans reliably
// from both phone screens and paper printouts.
const imageSize = 256

// Link builds the scannable check-in URL for a person. The payload is
// first|last|role, URL-encoded into the data query parameter.
func Link(baseURL, first, last string, role model.Role) string {
	payload := fmt.Sprintf("%s|%s|%s", first, last, role)
	return strings.TrimRight(baseURL, "/") + "/check-in?data=" + url.QueryEscape(payload)
}

// Encode renders the link as PNG bytes, used for the email attachment.
func Encode(link string) ([]byte, error) {
	return qrcode.Encode(link, qrcode.Medium, imageSize)
}

// FileName is the stable on-disk image name for a person.
func FileName(first, last string) string {
	return fmt.Sprintf("%s_%s.png", first, last)
}

// Write renders the link into dir under the person's file name and returns
// the full path.
func Write(dir, first, last, link string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, FileName(first, last))
	if err := qrcode.WriteFile(link, qrcode.Medium, imageSize, path); err != nil {
		return "", fmt.Errorf("write qr %s: %w", path, err)
	}
	return path, nil
}
