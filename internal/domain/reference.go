package domain

import (
	"errors"
	"strings"
)

// MaxImageBytes is the largest embedded payload accepted anywhere in the system.
const MaxImageBytes = 5 << 20

// LocalAssetLabel replaces embedded references wherever an image has to be displayed as text.
const LocalAssetLabel = "Local Asset"

type referenceKind uint8

const (
	referenceUnset referenceKind = iota
	referenceRemote
	referenceEmbedded
)

var (
	ErrReferenceUnset  = errors.New("image reference is empty")
	ErrNotHTTPURL      = errors.New("image url must use http or https")
	ErrEmptyPayload    = errors.New("embedded image payload is empty")
	ErrMediaTypeNeeded = errors.New("embedded image media type is required")
)

// ImageReference is either a remote URL or an embedded binary payload. The
// zero value is invalid; build one with RemoteReference or EmbeddedReference.
type ImageReference struct {
	kind      referenceKind
	url       string
	data      []byte
	mediaType string
}

// RemoteReference builds a reference to an image reachable over http(s).
func RemoteReference(url string) (ImageReference, error) {
	if !HasHTTPScheme(url) {
		return ImageReference{}, ErrNotHTTPURL
	}
	return ImageReference{kind: referenceRemote, url: url}, nil
}

// EmbeddedReference builds a reference carrying raw image bytes.
func EmbeddedReference(data []byte, mediaType string) (ImageReference, error) {
	if len(data) == 0 {
		return ImageReference{}, ErrEmptyPayload
	}
	if strings.TrimSpace(mediaType) == "" {
		return ImageReference{}, ErrMediaTypeNeeded
	}
	return ImageReference{kind: referenceEmbedded, data: data, mediaType: mediaType}, nil
}

// HasHTTPScheme reports whether raw begins with an http or https scheme.
func HasHTTPScheme(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func (r ImageReference) IsRemote() bool   { return r.kind == referenceRemote }
func (r ImageReference) IsEmbedded() bool { return r.kind == referenceEmbedded }

// URL returns the remote URL, or "" for embedded references.
func (r ImageReference) URL() string { return r.url }

// Bytes returns the embedded payload, or nil for remote references.
func (r ImageReference) Bytes() []byte { return r.data }

// MediaType returns the declared MIME type of an embedded payload.
func (r ImageReference) MediaType() string { return r.mediaType }

// Validate checks that exactly one variant is populated.
func (r ImageReference) Validate() error {
	switch r.kind {
	case referenceRemote:
		if !HasHTTPScheme(r.url) || len(r.data) != 0 {
			return ErrNotHTTPURL
		}
		return nil
	case referenceEmbedded:
		if r.url != "" {
			return ErrReferenceUnset
		}
		if len(r.data) == 0 {
			return ErrEmptyPayload
		}
		if r.mediaType == "" {
			return ErrMediaTypeNeeded
		}
		return nil
	default:
		return ErrReferenceUnset
	}
}

// DisplayRef is the text shown for this reference in history listings.
func (r ImageReference) DisplayRef() string {
	if r.IsEmbedded() {
		return LocalAssetLabel
	}
	return r.url
}
