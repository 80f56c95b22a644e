// Package base64 reads and writes "data:<type>;base64,<payload>" URLs, the
// form QR codes are returned in.
package base64

import (
	"encoding/base64"
	"errors"
	"strings"
)

var ErrNotDataURL = errors.New("not a base64 data url")

const (
	dataPrefix   = "data:"
	base64Marker = ";base64,"
)

func split(url string) (header, payload string, ok bool) {
	rest, found := strings.CutPrefix(url, dataPrefix)
	if !found {
		return "", "", false
	}

	return strings.Cut(rest, base64Marker)
}

// GetContentType returns the media type of a data URL without parameters, or
// an empty string when url is not a base64 data URL.
func GetContentType(url string) string {
	header, _, ok := split(url)
	if !ok {
		return ""
	}

	mediaType, _, _ := strings.Cut(header, ";")

	return strings.TrimSpace(mediaType)
}

func EncodeDataURL(contentType string, data []byte) string {
	return dataPrefix + contentType + base64Marker + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL returns the payload bytes of a base64 data URL.
func DecodeDataURL(url string) ([]byte, error) {
	_, payload, ok := split(url)
	if !ok {
		return nil, ErrNotDataURL
	}

	return base64.StdEncoding.DecodeString(payload) //nolint:wrapcheck
}
