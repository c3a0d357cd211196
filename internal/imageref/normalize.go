// Package imageref turns raw user input into canonical image references.
package imageref

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"imgprompt/internal/domain"
)

// FromText normalizes a pasted string. http(s) URLs are taken verbatim as
// remote references; data:image URLs are decoded into embedded references.
func FromText(input string) (domain.ImageReference, error) {
	if strings.TrimSpace(input) == "" {
		return domain.ImageReference{}, domain.Fail(domain.KindEmptyInput, "no image link provided")
	}
	if strings.HasPrefix(strings.ToLower(input), "data:") {
		return fromDataURL(strings.TrimSpace(input))
	}
	ref, err := domain.RemoteReference(input)
	if err != nil {
		return domain.ImageReference{}, &domain.Failure{
			Kind:    domain.KindInvalidReference,
			Message: "image link must start with http:// or https://",
			Err:     err,
		}
	}
	return ref, nil
}

// FromFile normalizes an uploaded file. size is the declared length in bytes
// or a negative value when unknown; the payload is bounded regardless.
func FromFile(declaredType string, size int64, r io.Reader) (domain.ImageReference, error) {
	if size > domain.MaxImageBytes {
		return domain.ImageReference{}, tooLarge(size)
	}
	if !isImageType(declaredType) {
		return domain.ImageReference{}, unsupported(declaredType)
	}
	if r == nil {
		return domain.ImageReference{}, domain.Fail(domain.KindEmptyInput, "no file provided")
	}
	data, err := io.ReadAll(io.LimitReader(r, domain.MaxImageBytes+1))
	if err != nil {
		return domain.ImageReference{}, &domain.Failure{Kind: domain.KindInvalidReference, Message: "could not read uploaded file", Err: err}
	}
	if len(data) > domain.MaxImageBytes {
		return domain.ImageReference{}, tooLarge(int64(len(data)))
	}
	return embedded(data, declaredType)
}

// FromBytes normalizes an in-memory payload with its declared type.
func FromBytes(declaredType string, data []byte) (domain.ImageReference, error) {
	return FromFile(declaredType, int64(len(data)), bytes.NewReader(data))
}

func fromDataURL(raw string) (domain.ImageReference, error) {
	header, payload, ok := strings.Cut(raw[len("data:"):], ",")
	if !ok {
		return domain.ImageReference{}, domain.Fail(domain.KindInvalidReference, "malformed data url")
	}
	params := strings.Split(header, ";")
	mediaType := strings.TrimSpace(params[0])
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}
	if !isBase64 {
		return domain.ImageReference{}, domain.Fail(domain.KindInvalidReference, "data url must be base64 encoded")
	}
	if len(payload) > base64.StdEncoding.EncodedLen(domain.MaxImageBytes) {
		return domain.ImageReference{}, tooLarge(int64(base64.StdEncoding.DecodedLen(len(payload))))
	}
	if !isImageType(mediaType) {
		return domain.ImageReference{}, unsupported(mediaType)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	}
	if err != nil {
		return domain.ImageReference{}, &domain.Failure{Kind: domain.KindInvalidReference, Message: "data url payload is not valid base64", Err: err}
	}
	if len(data) > domain.MaxImageBytes {
		return domain.ImageReference{}, tooLarge(int64(len(data)))
	}
	return embedded(data, mediaType)
}

func embedded(data []byte, mediaType string) (domain.ImageReference, error) {
	ref, err := domain.EmbeddedReference(data, mediaType)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyPayload) {
			return domain.ImageReference{}, &domain.Failure{Kind: domain.KindEmptyInput, Message: "image file is empty", Err: err}
		}
		return domain.ImageReference{}, &domain.Failure{Kind: domain.KindInvalidReference, Message: err.Error(), Err: err}
	}
	return ref, nil
}

func isImageType(mediaType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mediaType)), "image/")
}

func tooLarge(size int64) *domain.Failure {
	return domain.Fail(domain.KindFileTooLarge, "image is %d bytes, the limit is %d bytes (5 MiB)", size, domain.MaxImageBytes)
}

func unsupported(mediaType string) *domain.Failure {
	if mediaType == "" {
		mediaType = "unknown"
	}
	return domain.Fail(domain.KindUnsupportedType, "%s is not an image type", mediaType)
}
