package domain

import (
	"errors"
	"testing"
)

func TestRemoteReferenceRequiresHTTPScheme(t *testing.T) {
	tests := []struct {
		name string
		url  string
		ok   bool
	}{
		{name: "http", url: "http://example.com/a.jpg", ok: true},
		{name: "https upper", url: "HTTPS://example.com/a.jpg", ok: true},
		{name: "ftp", url: "ftp://example.com/a.jpg"},
		{name: "bare host", url: "example.com/a.jpg"},
		{name: "empty", url: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := RemoteReference(tt.url)
			if tt.ok {
				if err != nil {
					t.Fatalf("RemoteReference(%q) error: %v", tt.url, err)
				}
				if !ref.IsRemote() || ref.IsEmbedded() {
					t.Fatalf("expected remote reference, got %+v", ref)
				}
				if ref.URL() != tt.url {
					t.Fatalf("URL = %q, want %q", ref.URL(), tt.url)
				}
				return
			}
			if !errors.Is(err, ErrNotHTTPURL) {
				t.Fatalf("expected ErrNotHTTPURL, got %v", err)
			}
		})
	}
}

func TestEmbeddedReferenceValidation(t *testing.T) {
	if _, err := EmbeddedReference(nil, "image/png"); !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("expected ErrEmptyPayload, got %v", err)
	}
	if _, err := EmbeddedReference([]byte{1}, " "); !errors.Is(err, ErrMediaTypeNeeded) {
		t.Fatalf("expected ErrMediaTypeNeeded, got %v", err)
	}
	ref, err := EmbeddedReference([]byte{1, 2, 3}, "image/png")
	if err != nil {
		t.Fatalf("EmbeddedReference error: %v", err)
	}
	if err := ref.Validate(); err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if ref.DisplayRef() != LocalAssetLabel {
		t.Fatalf("DisplayRef = %q", ref.DisplayRef())
	}
}

func TestZeroReferenceIsInvalid(t *testing.T) {
	var ref ImageReference
	if err := ref.Validate(); !errors.Is(err, ErrReferenceUnset) {
		t.Fatalf("expected ErrReferenceUnset, got %v", err)
	}
}

func TestCredentialUsable(t *testing.T) {
	cases := map[Credential]bool{
		"":          false,
		"abcd":      false,
		"    abcd ": false,
		"abcde":     true,
		"AIzaXYZ12": true,
	}
	for cred, want := range cases {
		if got := cred.Usable(); got != want {
			t.Fatalf("Credential(%q).Usable() = %v, want %v", string(cred), got, want)
		}
	}
	if Credential("secret-key").String() == "secret-key" {
		t.Fatal("credential String must not leak the token")
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(nil) != "" {
		t.Fatal("KindOf(nil) should be empty")
	}
	if KindOf(errors.New("boom")) != KindEngineFailure {
		t.Fatal("foreign errors should be engine failures")
	}
	wrapped := Wrap(KindRateLimited, errors.New("429 too many"))
	if !IsKind(wrapped, KindRateLimited) {
		t.Fatalf("IsKind mismatch for %v", wrapped)
	}
	if wrapped.Message != "429 too many" {
		t.Fatalf("message = %q", wrapped.Message)
	}
	if !KindAuthInvalid.NeedsReauth() || KindRateLimited.NeedsReauth() {
		t.Fatal("NeedsReauth mismatch")
	}
}
