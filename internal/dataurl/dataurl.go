// Package dataurl encodes and decodes the RFC 2397 "data:" URLs used to
// carry chat attachments inline.
package dataurl

import (
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/vincent-petithory/dataurl"
)

// DefaultType is used when a file has no known media type.
const DefaultType = "application/octet-stream"

var ErrMalformed = errors.New("malformed data url")

// Encode returns data as a base64 data URL. Parameters are dropped; media
// types the URL cannot carry fall back to DefaultType.
func Encode(mediaType string, data []byte) string {
	return dataurl.New(data, baseType(mediaType)).String()
}

// Decode parses a data URL (base64 or percent-encoded) and returns its
// media type without parameters and the payload.
func Decode(s string) (mediaType string, data []byte, err error) {
	du, err := parse(s)
	if err != nil {
		return "", nil, err
	}

	mediaType = du.MediaType.ContentType()
	if mediaType == "" || mediaType == "/" {
		mediaType = DefaultType
	}
	return mediaType, du.Data, nil
}

// DecodedLen returns the payload size of a data URL.
func DecodedLen(s string) (int, error) {
	du, err := parse(s)
	if err != nil {
		return 0, err
	}
	return len(du.Data), nil
}

func parse(s string) (*dataurl.DataURL, error) {
	if !strings.HasPrefix(s, "data:") {
		return nil, ErrMalformed
	}

	du, err := dataurl.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return du, nil
}

// baseType reduces mediaType to type/subtype or DefaultType.
func baseType(mediaType string) string {
	base, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return DefaultType
	}
	typ, subtype, ok := strings.Cut(base, "/")
	if !ok || typ == "" || subtype == "" || strings.Contains(subtype, "/") {
		return DefaultType
	}
	return base
}
