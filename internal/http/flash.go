package http

import (
	"net/http"
	"net/url"
)

const (
	flashCookie      = "flash"
	flashLevelCookie = "flash_level"
)

// flash holds a one-shot message displayed on the next page render.
type flash struct {
	Message string
	Level   string
}

func setFlash(w http.ResponseWriter, level, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(message),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     flashLevelCookie,
		Value:    level,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the pending flash message, if any.
func popFlash(w http.ResponseWriter, r *http.Request) *flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	message, err := url.QueryUnescape(c.Value)
	if err != nil || message == "" {
		return nil
	}

	level := "success"
	if lc, err := r.Cookie(flashLevelCookie); err == nil && lc.Value != "" {
		level = lc.Value
	}

	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})
	http.SetCookie(w, &http.Cookie{Name: flashLevelCookie, Value: "", Path: "/", MaxAge: -1})

	return &flash{Message: message, Level: level}
}
