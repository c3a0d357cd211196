package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"imgprompt/internal/domain"
	"imgprompt/internal/history"
	"imgprompt/internal/imageref"
	"imgprompt/internal/middleware"
)

// maxJSONBody leaves room for a base64 data URL of a maximum-size image.
const maxJSONBody = 8 << 20

// uploadOverhead covers multipart framing around the file part.
const uploadOverhead = 1 << 20

type describeRequest struct {
	ImageURL string `json:"image_url"`
}

type describeResponse struct {
	Prompt    string         `json:"prompt"`
	Backend   domain.Backend `json:"backend"`
	HistoryID string         `json:"history_id,omitempty"`
}

// Describe resolves a prompt for a pasted URL or data URL.
func (a *App) Describe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	var req describeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.failure(w, r, domain.Fail(domain.KindFileTooLarge, "request body exceeds %d bytes", maxJSONBody))
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	ref, err := imageref.FromText(req.ImageURL)
	if err != nil {
		a.failure(w, r, err)
		return
	}
	a.resolve(w, r, ref)
}

// DescribeUpload resolves a prompt for a multipart upload in the "file" field.
func (a *App) DescribeUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, domain.MaxImageBytes+uploadOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			a.failure(w, r, domain.Fail(domain.KindFileTooLarge, "file exceeds the %d byte limit", domain.MaxImageBytes))
		case errors.Is(err, http.ErrMissingFile):
			a.failure(w, r, domain.Fail(domain.KindEmptyInput, "no file was provided"))
		default:
			a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		}
		return
	}
	defer file.Close()

	ref, err := imageref.FromFile(header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		a.failure(w, r, err)
		return
	}
	a.resolve(w, r, ref)
}

func (a *App) resolve(w http.ResponseWriter, r *http.Request, ref domain.ImageReference) {
	ctx := r.Context()
	credential, source := a.Credentials.Resolve(ctx, r.Header.Get("X-Goog-Api-Key"))
	logger := a.log(r)

	start := time.Now()
	res, err := a.Resolver.Resolve(ctx, ref, credential)
	if err != nil {
		logger.Info().
			Str("kind", string(domain.KindOf(err))).
			Str("credential_source", string(source)).
			Dur("elapsed", time.Since(start)).
			Msg("prompt resolution failed")
		a.failure(w, r, err)
		return
	}
	logger.Info().
		Str("backend", string(res.Backend)).
		Str("credential_source", string(source)).
		Dur("elapsed", time.Since(start)).
		Msg("prompt resolved")

	out := describeResponse{Prompt: res.Prompt, Backend: res.Backend}
	if a.History != nil {
		owner := middleware.ClientIDFromContext(ctx)
		entry, err := a.History.Add(ctx, history.NewEntry(owner, ref, res, time.Now()))
		if err != nil {
			logger.Warn().Err(err).Msg("history add failed")
		} else {
			out.HistoryID = entry.ID
		}
	}
	a.json(w, http.StatusOK, out)
}
