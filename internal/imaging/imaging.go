// Package imaging validates and prepares uploaded photos before they are
// sent anywhere: extension allow-list, size cap and a downscale pass so
// oversized camera shots do not travel over the wire at full resolution.
package imaging

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
)

// MaxUploadBytes caps the accepted image size.
const MaxUploadBytes = 10 << 20

// MaxWidth is the width uploads are downscaled to when they exceed it.
const MaxWidth = 800

var allowedExtensions = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
}

// ValidateUpload checks the filename extension and the byte size.
func ValidateUpload(filename string, size int64) error {
	extension := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[extension]; !ok {
		return fmt.Errorf("invalid file type %q: only JPEG, JPG, and PNG images are allowed", extension)
	}
	if size > MaxUploadBytes {
		return fmt.Errorf("image is too large: %d bytes (limit %d)", size, MaxUploadBytes)
	}
	return nil
}

// MIMEType returns the MIME type for an allowed extension, or empty.
func MIMEType(filename string) string {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Downscale re-encodes the image at MaxWidth when it is wider, preserving
// the original format. Images at or under the limit pass through
// untouched.
func Downscale(data []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if img.Bounds().Dx() <= MaxWidth {
		return data, nil
	}

	img = resize.Resize(MaxWidth, 0, img, resize.Lanczos3)

	out := &bytes.Buffer{}
	switch format {
	case "jpeg":
		err = jpeg.Encode(out, img, nil)
	case "png":
		err = png.Encode(out, img)
	default:
		return nil, fmt.Errorf("unsupported image format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return out.Bytes(), nil
}

// Digest calculates the SHA256 hash of the image data, used to key the
// analysis history.
func Digest(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
