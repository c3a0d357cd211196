package imageref

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"imgprompt/internal/domain"
)

const defaultFetchTimeout = 15 * time.Second

var (
	ErrFetchTooLarge = errors.New("imageref: remote image exceeds size limit")
	ErrFetchNotImage = errors.New("imageref: remote content is not an image")
	// ErrBlockedAddress is returned when a fetch would connect to a
	// loopback, private, link-local or otherwise non-public address.
	ErrBlockedAddress = errors.New("imageref: destination address is not public")
)

const maxFetchRedirects = 5

var carrierGradeNAT = &net.IPNet{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}

// FetcherOptions configures an HTTPFetcher. A nil HTTPClient gets a client
// that only dials public addresses; a supplied client is used as is.
type FetcherOptions struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string
}

// HTTPFetcher downloads remote images so they can be sent inline.
type HTTPFetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

func NewHTTPFetcher(opts FetcherOptions) *HTTPFetcher {
	client := opts.HTTPClient
	if client == nil {
		client = NewPublicClient()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = "imgprompt/1.0"
	}
	return &HTTPFetcher{client: client, timeout: timeout, userAgent: ua}
}

// Fetch downloads url and returns it as an embedded reference. The media
// type comes from Content-Type when it names an image, otherwise it is sniffed.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (domain.ImageReference, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.ImageReference{}, fmt.Errorf("imageref: create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.ImageReference{}, fmt.Errorf("imageref: fetch: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.ImageReference{}, fmt.Errorf("imageref: fetch status %d", resp.StatusCode)
	}
	if resp.ContentLength > domain.MaxImageBytes {
		return domain.ImageReference{}, ErrFetchTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, domain.MaxImageBytes+1))
	if err != nil {
		return domain.ImageReference{}, fmt.Errorf("imageref: read body: %w", err)
	}
	if len(data) > domain.MaxImageBytes {
		return domain.ImageReference{}, ErrFetchTooLarge
	}
	mediaType := detectMediaType(resp.Header.Get("Content-Type"), data)
	if !isImageType(mediaType) {
		return domain.ImageReference{}, fmt.Errorf("%w: %s", ErrFetchNotImage, mediaType)
	}
	return domain.EmbeddedReference(data, mediaType)
}

// NewPublicClient returns an http.Client whose connections, including those
// made while following redirects, are refused unless the resolved IP is public.
func NewPublicClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   refusePrivate,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxFetchRedirects {
				return errors.New("imageref: too many redirects")
			}
			if !domain.HasHTTPScheme(req.URL.String()) {
				return fmt.Errorf("imageref: redirect to unsupported scheme %q", req.URL.Scheme)
			}
			return nil
		},
	}
}

// refusePrivate runs after DNS resolution, so hostnames that resolve to
// internal addresses are caught too.
func refusePrivate(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	ip := net.ParseIP(host)
	if ip == nil || !isPublicIP(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	return nil
}

func isPublicIP(ip net.IP) bool {
	switch {
	case ip.IsLoopback(), ip.IsPrivate(), ip.IsUnspecified(),
		ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(), ip.IsMulticast():
		return false
	case carrierGradeNAT.Contains(ip):
		return false
	}
	return true
}

func detectMediaType(header string, data []byte) string {
	if parsed, _, err := mime.ParseMediaType(header); err == nil && isImageType(parsed) {
		return parsed
	}
	if len(data) == 0 {
		return ""
	}
	detected := mimetype.Detect(data)
	parsed, _, err := mime.ParseMediaType(detected.String())
	if err != nil {
		return detected.String()
	}
	return parsed
}
