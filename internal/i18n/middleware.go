package i18n

import (
	"net/http"
	"time"
)

// LangCookieName remembers a language picked with the "lang" query parameter.
const LangCookieName = "lang"

// Middleware injects a localizer into every request context. A supported
// "lang" query parameter wins and is stored in a cookie, so the choice
// survives form posts and redirects. Then come the cookie, the
// Accept-Language header, and lang.
func Middleware(lang string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			chosen := r.URL.Query().Get("lang")
			if chosen != "" && Supported(chosen) {
				http.SetCookie(w, &http.Cookie{
					Name:     LangCookieName,
					Value:    chosen,
					Path:     "/",
					MaxAge:   int((365 * 24 * time.Hour).Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			} else if c, err := r.Cookie(LangCookieName); err == nil && Supported(c.Value) {
				chosen = c.Value
			} else {
				chosen = ""
			}
			loc := NewLocalizer(chosen, r.Header.Get("Accept-Language"), lang)
			next.ServeHTTP(w, r.WithContext(WithLocalizer(r.Context(), loc)))
		})
	}
}
