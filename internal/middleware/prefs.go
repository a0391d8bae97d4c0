package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/psycare/psycare/i18n"
)

type ctxKey string

const ctxLang ctxKey = "pref_lang"

const (
	langCookie  = "lang"
	flashCookie = "flash"
)

// Prefs extracts the language preference (query > cookie > header) and stores it in context.
// A query-provided language is persisted in a cookie for ~30 days.
func Prefs(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := ""
		if c, err := r.Cookie(langCookie); err == nil {
			lang = c.Value
		}
		if ql := r.URL.Query().Get("lang"); ql != "" && i18n.Supported(ql) {
			lang = ql
			http.SetCookie(w, &http.Cookie{Name: langCookie, Value: lang, Path: "/", MaxAge: 86400 * 30})
		}
		if !i18n.Supported(lang) {
			lang = i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxLang, lang)))
	})
}

// LangFrom returns language preference from context or fallback.
func LangFrom(r *http.Request) string {
	if v, ok := r.Context().Value(ctxLang).(string); ok && v != "" {
		return v
	}
	return i18n.DetectLanguage(r.Header.Get("Accept-Language"))
}

// Flash sets a translated flash message cookie using translation code (or literal if missing).
func Flash(w http.ResponseWriter, r *http.Request, code string) {
	msg := i18n.T(LangFrom(r), code)
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: url.QueryEscape(msg), Path: "/", HttpOnly: true})
}

// PopFlash reads and clears the flash message.
func PopFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})
	msg, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return msg
}
