package domain

import (
	"strings"
	"time"
)

// MinCredentialLength is the shortest credential considered worth sending to the vision backend.
const MinCredentialLength = 5

// Credential is an opaque access token; the empty value means absent.
type Credential string

// Usable reports whether the credential is present and longer than a trivial value.
func (c Credential) Usable() bool {
	return len(strings.TrimSpace(string(c))) >= MinCredentialLength
}

func (c Credential) String() string {
	if c == "" {
		return ""
	}
	return "[redacted]"
}

// Backend identifies which service produced a prompt.
type Backend string

const (
	BackendAryan  Backend = "aryan"
	BackendGemini Backend = "gemini"
)

// Result is a successful resolution.
type Result struct {
	Prompt  string  `json:"prompt"`
	Backend Backend `json:"backend"`
}

// HistoryEntry records one successful resolution for display.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Owner     string    `json:"-"`
	Timestamp time.Time `json:"timestamp"`
	ImageRef  string    `json:"image_ref"`
	Prompt    string    `json:"prompt"`
	Backend   Backend   `json:"backend"`
}

// VisionRequest is what the vision backend receives: an optional inline image
// and, when the image could not be inlined, the URL to mention as context.
type VisionRequest struct {
	Image        ImageReference
	ReferenceURL string
}
