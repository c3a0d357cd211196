package imageref

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"imgprompt/internal/domain"
)

func TestFromTextRemote(t *testing.T) {
	ref, err := FromText("http://example.com/a.jpg")
	if err != nil {
		t.Fatalf("FromText error: %v", err)
	}
	if !ref.IsRemote() || ref.URL() != "http://example.com/a.jpg" {
		t.Fatalf("unexpected reference: %+v", ref)
	}
}

func TestFromTextRejections(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  domain.ErrorKind
	}{
		{name: "empty", input: "", kind: domain.KindEmptyInput},
		{name: "blank", input: "   ", kind: domain.KindEmptyInput},
		{name: "no scheme", input: "example.com/a.jpg", kind: domain.KindInvalidReference},
		{name: "javascript", input: "javascript:alert(1)", kind: domain.KindInvalidReference},
		{name: "data not base64", input: "data:image/png,abc", kind: domain.KindInvalidReference},
		{name: "data not image", input: "data:text/plain;base64,aGVsbG8=", kind: domain.KindUnsupportedType},
		{name: "data bad payload", input: "data:image/png;base64,@@@", kind: domain.KindInvalidReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromText(tt.input)
			if got := domain.KindOf(err); got != tt.kind {
				t.Fatalf("kind = %q, want %q (err=%v)", got, tt.kind, err)
			}
		})
	}
}

func TestFromTextDataURL(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	raw := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)
	ref, err := FromText(raw)
	if err != nil {
		t.Fatalf("FromText error: %v", err)
	}
	if !ref.IsEmbedded() || ref.MediaType() != "image/png" {
		t.Fatalf("unexpected reference: %+v", ref)
	}
	if !bytes.Equal(ref.Bytes(), payload) {
		t.Fatalf("payload mismatch")
	}
}

func TestFromFileRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte{0xab, 0xcd, 0xef, 0x01}, (4<<20)/4)
	ref, err := FromFile("image/png", int64(len(data)), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("FromFile error: %v", err)
	}
	if !ref.IsEmbedded() || ref.MediaType() != "image/png" {
		t.Fatalf("unexpected reference: %+v", ref)
	}
	if !bytes.Equal(ref.Bytes(), data) {
		t.Fatal("payload is not byte-for-byte equal")
	}
}

func TestFromFileSizeBoundary(t *testing.T) {
	exact := make([]byte, domain.MaxImageBytes)
	exact[0] = 1
	if _, err := FromBytes("image/jpeg", exact); err != nil {
		t.Fatalf("exactly 5 MiB should be accepted: %v", err)
	}
	over := make([]byte, domain.MaxImageBytes+1)
	if _, err := FromBytes("image/jpeg", over); !domain.IsKind(err, domain.KindFileTooLarge) {
		t.Fatalf("5 MiB + 1 should be FileTooLarge, got %v", err)
	}
}

func TestFromFileUndeclaredSizeStillBounded(t *testing.T) {
	over := make([]byte, domain.MaxImageBytes+1)
	if _, err := FromFile("image/jpeg", -1, bytes.NewReader(over)); !domain.IsKind(err, domain.KindFileTooLarge) {
		t.Fatalf("expected FileTooLarge, got %v", err)
	}
}

func TestFromFileUnsupportedType(t *testing.T) {
	_, err := FromFile("application/pdf", 10, strings.NewReader("%PDF-1.4.."))
	if !domain.IsKind(err, domain.KindUnsupportedType) {
		t.Fatalf("expected UnsupportedType, got %v", err)
	}
	_, err = FromFile("", 10, strings.NewReader("0123456789"))
	if !domain.IsKind(err, domain.KindUnsupportedType) {
		t.Fatalf("expected UnsupportedType for missing type, got %v", err)
	}
}

func TestFromFileEmpty(t *testing.T) {
	_, err := FromFile("image/png", 0, strings.NewReader(""))
	if !domain.IsKind(err, domain.KindEmptyInput) {
		t.Fatalf("expected EmptyInput, got %v", err)
	}
}
