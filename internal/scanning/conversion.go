package scanning

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gen2brain/heic"
)

// ImageError is returned when the downloaded content is not a usable image.
type ImageError struct {
	MimeType string
	Err      error
}

func (e *ImageError) Error() string {
	return e.Err.Error()
}

func (e *ImageError) Unwrap() error {
	return e.Err
}

// passthroughTypes are sent to the model as-is
var passthroughTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// imageToPNG converts any decodable image format to PNG
func imageToPNG(imageData []byte, mimeType string) ([]byte, error) {
	var img image.Image
	var err error

	if isHEICMimeType(mimeType) {
		// Go's standard image package doesn't support HEIC (common on iPhones)
		img, err = heic.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding image: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// isHEICMimeType checks if the MIME type indicates HEIC/HEIF format
func isHEICMimeType(mimeType string) bool {
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// detectMimeType normalizes the declared content type, sniffing the data when
// the declaration is missing or generic.
func detectMimeType(imageData []byte, contentType string) string {
	mimeType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mimeType = ""
	}
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if mimeType == "" || mimeType == "application/octet-stream" || mimeType == "binary/octet-stream" {
		mimeType = mimetype.Detect(imageData).String()
	}
	return mimeType
}

// prepareImageData returns image data the model accepts and its MIME type.
// JPEG, PNG and WEBP are passed through, HEIC/HEIF and GIF are converted to PNG.
func prepareImageData(imageData []byte, contentType string) ([]byte, string, error) {
	if len(imageData) == 0 {
		return nil, "", &ImageError{Err: errors.New("empty image data")}
	}

	mimeType := detectMimeType(imageData, contentType)
	if passthroughTypes[mimeType] {
		return imageData, mimeType, nil
	}

	if isHEICMimeType(mimeType) || mimeType == "image/gif" {
		pngData, err := imageToPNG(imageData, mimeType)
		if err != nil {
			return nil, "", &ImageError{MimeType: mimeType, Err: fmt.Errorf("converting image to PNG: %w", err)}
		}
		return pngData, "image/png", nil
	}

	return nil, "", &ImageError{
		MimeType: mimeType,
		Err:      fmt.Errorf("unsupported image format %q. Supported formats: JPEG, PNG, WEBP, GIF, HEIC, HEIF", mimeType),
	}
}
