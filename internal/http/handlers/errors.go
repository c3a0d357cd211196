package handlers

import (
	"errors"
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"imgprompt/internal/domain"
	"imgprompt/internal/middleware"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

var hints = func() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	set := func(key, en, id string) {
		_ = b.SetString(language.English, key, en)
		_ = b.SetString(language.Indonesian, key, id)
	}
	set(string(domain.KindEmptyInput),
		"Paste an image link or choose a file first.",
		"Tempel tautan gambar atau pilih berkas terlebih dahulu.")
	set(string(domain.KindInvalidReference),
		"Links must start with http:// or https://.",
		"Tautan harus diawali http:// atau https://.")
	set(string(domain.KindFileTooLarge),
		"Choose an image of 5 MB or less.",
		"Pilih gambar berukuran maksimal 5 MB.")
	set(string(domain.KindUnsupportedType),
		"Only image files can be analyzed.",
		"Hanya berkas gambar yang dapat dianalisis.")
	set(string(domain.KindAuthRequired),
		"Connect a Gemini API key and try again.",
		"Hubungkan kunci API Gemini lalu coba lagi.")
	set(string(domain.KindAuthInvalid),
		"The saved API key was rejected. Connect a new key.",
		"Kunci API yang tersimpan ditolak. Hubungkan kunci baru.")
	set(string(domain.KindRateLimited),
		"The API quota is exhausted. Wait a moment or switch keys.",
		"Kuota API habis. Tunggu sebentar atau ganti kunci.")
	set(string(domain.KindEmptyResult),
		"Try a clearer image.",
		"Coba gambar yang lebih jelas.")
	set(string(domain.KindEngineFailure),
		"Try again in a moment.",
		"Coba lagi sebentar lagi.")
	return b
}()

func hintFor(locale string, kind domain.ErrorKind) string {
	tag := language.English
	if locale == "id" {
		tag = language.Indonesian
	}
	p := message.NewPrinter(tag, message.Catalog(hints))
	return p.Sprintf(string(kind))
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindEmptyInput, domain.KindInvalidReference:
		return http.StatusBadRequest
	case domain.KindFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case domain.KindUnsupportedType:
		return http.StatusUnsupportedMediaType
	case domain.KindAuthRequired, domain.KindAuthInvalid:
		return http.StatusUnauthorized
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	case domain.KindEmptyResult, domain.KindEngineFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (a *App) error(w http.ResponseWriter, code int, errCode, msg string) {
	a.json(w, code, errorBody{Error: errorDetail{Code: errCode, Message: msg}})
}

// failure writes a classified resolution failure with a localized hint.
func (a *App) failure(w http.ResponseWriter, r *http.Request, err error) {
	var f *domain.Failure
	if !errors.As(err, &f) {
		a.log(r).Error().Err(err).Msg("unclassified error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	a.json(w, statusFor(f.Kind), errorBody{Error: errorDetail{
		Code:    string(f.Kind),
		Message: f.Message,
		Hint:    hintFor(locale, f.Kind),
	}})
}
