package handler

import (
	"net/http"
	"net/url"
)

// FlashWriter stores a one-shot message for the next request.
type FlashWriter interface {
	SetFlash(w http.ResponseWriter, key string, value any) error
}

type redirectResponse struct {
	url   string
	code  int
	flash func(w http.ResponseWriter) error
}

func (r redirectResponse) Render(w http.ResponseWriter, req *http.Request) error {
	if r.flash != nil {
		if err := r.flash(w); err != nil {
			return err
		}
	}
	http.Redirect(w, req, r.url, r.code)
	return nil
}

// Redirect creates a redirect response with status 303 (See Other).
func Redirect(url string) Response {
	return redirectResponse{url: url, code: http.StatusSeeOther}
}

// RedirectWithCode creates a redirect response with a specific status code.
func RedirectWithCode(url string, code int) Response {
	return redirectResponse{url: url, code: code}
}

// RedirectWithFlash stores value under key via fw and redirects with 303.
func RedirectWithFlash(url string, fw FlashWriter, key string, value any) Response {
	return redirectResponse{
		url:  url,
		code: http.StatusSeeOther,
		flash: func(w http.ResponseWriter) error {
			return fw.SetFlash(w, key, value)
		},
	}
}

// IsSafeRedirect reports whether target stays on the request's host.
func IsSafeRedirect(target string, req *http.Request) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	if u.Scheme == "" && u.Host == "" {
		return len(u.Path) > 0 && u.Path[0] == '/' && (len(u.Path) == 1 || u.Path[1] != '/')
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host == req.Host
}

// FlashKey is the flash slot rendered by the page layout.
const FlashKey = "flash"

// Flash is a one-shot page message. Level is success, notice or alert.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}
