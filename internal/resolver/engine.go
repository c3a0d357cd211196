// Package resolver decides which backend produces the prompt for an image
// and folds every backend failure into a single classified outcome.
package resolver

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"imgprompt/internal/domain"
)

const (
	DefaultAryanTimeout  = 10 * time.Second
	DefaultVisionTimeout = 60 * time.Second
)

// URLDescriber is the URL-only fast path.
type URLDescriber interface {
	DescribeURL(ctx context.Context, imageURL string) (string, error)
}

// VisionDescriber is the credentialed vision model.
type VisionDescriber interface {
	Describe(ctx context.Context, credential domain.Credential, req domain.VisionRequest) (string, error)
}

// ImageFetcher downloads a remote image so it can be sent inline.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (domain.ImageReference, error)
}

type Options struct {
	Aryan         URLDescriber
	Vision        VisionDescriber
	Fetcher       ImageFetcher
	AryanTimeout  time.Duration
	VisionTimeout time.Duration
	Logger        *zerolog.Logger
}

// Engine is safe for concurrent use; it holds no per-call state.
type Engine struct {
	aryan         URLDescriber
	vision        VisionDescriber
	fetcher       ImageFetcher
	aryanTimeout  time.Duration
	visionTimeout time.Duration
	logger        zerolog.Logger
}

func New(opts Options) *Engine {
	aryanTimeout := opts.AryanTimeout
	if aryanTimeout <= 0 {
		aryanTimeout = DefaultAryanTimeout
	}
	visionTimeout := opts.VisionTimeout
	if visionTimeout <= 0 {
		visionTimeout = DefaultVisionTimeout
	}
	logger := zerolog.New(io.Discard)
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Engine{
		aryan:         opts.Aryan,
		vision:        opts.Vision,
		fetcher:       opts.Fetcher,
		aryanTimeout:  aryanTimeout,
		visionTimeout: visionTimeout,
		logger:        logger.With().Str("component", "resolver").Logger(),
	}
}

// Resolve produces a prompt for ref. Remote references try the URL service
// first and fall back silently; embedded references go straight to the vision
// model. Every error returned is a *domain.Failure.
func (e *Engine) Resolve(ctx context.Context, ref domain.ImageReference, credential domain.Credential) (domain.Result, error) {
	if err := ref.Validate(); err != nil {
		return domain.Result{}, &domain.Failure{Kind: domain.KindInvalidReference, Message: err.Error(), Err: err}
	}

	if ref.IsRemote() && e.aryan != nil {
		if text, ok := e.tryAryan(ctx, ref.URL()); ok {
			return domain.Result{Prompt: text, Backend: domain.BackendAryan}, nil
		}
		if err := ctx.Err(); err != nil {
			return domain.Result{}, &domain.Failure{Kind: domain.KindEngineFailure, Message: "resolution cancelled", Err: err}
		}
	}

	if !credential.Usable() {
		return domain.Result{}, domain.Fail(domain.KindAuthRequired, "authentication token is missing; connect an API project and try again")
	}
	if e.vision == nil {
		return domain.Result{}, domain.Fail(domain.KindEngineFailure, "vision backend is not configured")
	}

	req := domain.VisionRequest{Image: ref}
	if ref.IsRemote() {
		req = e.inlineRemote(ctx, ref.URL())
	}

	vctx, cancel := context.WithTimeout(ctx, e.visionTimeout)
	defer cancel()
	text, err := e.vision.Describe(vctx, credential, req)
	if err != nil {
		failure := classify(err)
		e.logger.Warn().
			Err(err).
			Str("kind", string(failure.Kind)).
			Msg("resolver: vision backend failed")
		return domain.Result{}, failure
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Result{}, domain.Fail(domain.KindEmptyResult, "vision analysis returned an empty result")
	}
	return domain.Result{Prompt: text, Backend: domain.BackendGemini}, nil
}

func (e *Engine) tryAryan(ctx context.Context, imageURL string) (string, bool) {
	actx, cancel := context.WithTimeout(ctx, e.aryanTimeout)
	defer cancel()

	start := time.Now()
	text, err := e.aryan.DescribeURL(actx, imageURL)
	if err != nil {
		e.logger.Warn().
			Err(err).
			Dur("elapsed", time.Since(start)).
			Msg("resolver: url service unavailable; falling back to vision backend")
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		e.logger.Warn().Msg("resolver: url service returned no prompt; falling back to vision backend")
		return "", false
	}
	e.logger.Debug().Dur("elapsed", time.Since(start)).Msg("resolver: url service produced prompt")
	return text, true
}

// inlineRemote fetches the image bytes so the model sees pixels; when that
// fails the request degrades to a text note carrying the URL.
func (e *Engine) inlineRemote(ctx context.Context, imageURL string) domain.VisionRequest {
	if e.fetcher == nil {
		return domain.VisionRequest{ReferenceURL: imageURL}
	}
	img, err := e.fetcher.Fetch(ctx, imageURL)
	if err == nil {
		err = img.Validate()
	}
	if err != nil || !img.IsEmbedded() {
		e.logger.Info().Err(err).Msg("resolver: remote image not fetchable; sending url as context")
		return domain.VisionRequest{ReferenceURL: imageURL}
	}
	return domain.VisionRequest{Image: img}
}
