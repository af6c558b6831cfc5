package session

import (
	"net/http"
	"time"
)

// Cookie names for the session pair. The access cookie is a short-lived
// signed token; the refresh cookie is an opaque token resolving to the
// persisted session record.
const (
	AccessCookie  = "soko_at"
	RefreshCookie = "soko_rt"
)

// AccessCookieFor builds the access cookie with hardened attributes.
func AccessCookieFor(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     AccessCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// CookieSync mirrors every cookie mutation onto both the inbound request
// and the outbound response. Downstream reads within the same evaluation
// see rewritten cookies exactly as the browser will on the next request.
type CookieSync struct {
	w http.ResponseWriter
	r *http.Request
}

// NewCookieSync wraps a response/request pair.
func NewCookieSync(w http.ResponseWriter, r *http.Request) *CookieSync {
	return &CookieSync{w: w, r: r}
}

// Get reads a cookie from the (possibly already rewritten) inbound request.
func (c *CookieSync) Get(name string) (*http.Cookie, bool) {
	cookie, err := c.r.Cookie(name)
	if err != nil {
		return nil, false
	}
	return cookie, true
}

// Set writes a cookie to the response and rewrites the inbound request's
// Cookie header to match.
func (c *CookieSync) Set(cookie *http.Cookie) {
	http.SetCookie(c.w, cookie)
	c.rewriteRequest(cookie.Name, cookie.Value, false)
}

// Clear expires a cookie on the response and removes it from the inbound
// request.
func (c *CookieSync) Clear(name string) {
	http.SetCookie(c.w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	c.rewriteRequest(name, "", true)
}

// rewriteRequest rebuilds the request's Cookie header with name replaced
// (or removed when drop is true).
func (c *CookieSync) rewriteRequest(name, value string, drop bool) {
	existing := c.r.Cookies()
	rebuilt := make([]string, 0, len(existing)+1)
	for _, cookie := range existing {
		if cookie.Name == name {
			continue
		}
		rebuilt = append(rebuilt, cookie.Name+"="+cookie.Value)
	}
	if !drop {
		rebuilt = append(rebuilt, name+"="+value)
	}

	c.r.Header.Del("Cookie")
	if len(rebuilt) > 0 {
		c.r.Header.Set("Cookie", joinCookies(rebuilt))
	}
}

func joinCookies(pairs []string) string {
	out := pairs[0]
	for _, p := range pairs[1:] {
		out += "; " + p
	}
	return out
}
