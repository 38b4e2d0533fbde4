// Package image turns client supplied image payloads into storable bytes
// and maps blob locators back to object keys.
package image

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const defaultExt = "jpg"

// dataURIPrefixes maps the recognised data URI media types to file extensions.
var dataURIPrefixes = []struct {
	marker string
	ext    string
}{
	{marker: "data:image/jpeg", ext: "jpg"},
	{marker: "data:image/png", ext: "png"},
	{marker: "data:image/gif", ext: "gif"},
}

// Decoded is the binary form of an uploaded image.
type Decoded struct {
	Data []byte
	Ext  string
}

// ContentType returns the MIME type stored with the object.
func (d Decoded) ContentType() string {
	return "image/" + d.Ext
}

// Decode strips an optional "data:image/<subtype>;base64," prefix and decodes the rest.
// Unrecognised or missing media types fall back to jpg.
func Decode(imageData string) (Decoded, error) {
	ext := DetectExt(imageData)
	payload := imageData
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 {
			return Decoded{}, fmt.Errorf("malformed data URI: missing ',' separator")
		}
		payload = payload[idx+1:]
	}
	data, err := decodeBase64(payload)
	if err != nil {
		return Decoded{}, fmt.Errorf("image data is not valid base64: %w", err)
	}
	if len(data) == 0 {
		return Decoded{}, fmt.Errorf("image data is empty")
	}
	return Decoded{Data: data, Ext: ext}, nil
}

// decodeBase64 accepts padded or unpadded input in the standard or URL-safe alphabet.
func decodeBase64(payload string) ([]byte, error) {
	payload = strings.TrimRight(strings.TrimSpace(payload), "=")
	data, err := base64.RawStdEncoding.DecodeString(payload)
	if err == nil {
		return data, nil
	}
	if urlData, urlErr := base64.RawURLEncoding.DecodeString(payload); urlErr == nil {
		return urlData, nil
	}
	return nil, err
}

// DetectExt picks the file extension from the data URI media type.
// Only the header before the first ',' is inspected.
func DetectExt(imageData string) string {
	header := imageData
	if idx := strings.IndexByte(header, ','); idx >= 0 {
		header = header[:idx]
	}
	for _, p := range dataURIPrefixes {
		if strings.HasPrefix(header, p.marker) {
			return p.ext
		}
	}
	return defaultExt
}

// ObjectKey returns the blob key for the image of product id.
func ObjectKey(id, ext string) string {
	return fmt.Sprintf("products/%s.%s", id, ext)
}

// KeyFromLocator strips the "https://{host}/" prefix, keeping everything after the third '/'.
func KeyFromLocator(locator string) (string, error) {
	parts := strings.SplitN(locator, "/", 4)
	if len(parts) < 4 || parts[3] == "" {
		return "", fmt.Errorf("cannot derive object key from locator %q", locator)
	}
	return parts[3], nil
}
