package gatehouse

import (
	"net/http"
	"time"
)

// HTTPCookieJar defines a public type used by gatehouse APIs.
//
// HTTPCookieJar adapts a net/http request/response pair to the CookieJar
// interface. Reads come from the request, writes go to the response; a value
// set during the current exchange is not visible to a subsequent Get.
type HTTPCookieJar struct {
	w http.ResponseWriter
	r *http.Request
}

// NewHTTPCookieJar describes the newhttpcookiejar operation and its observable behavior.
//
// NewHTTPCookieJar does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewHTTPCookieJar(w http.ResponseWriter, r *http.Request) *HTTPCookieJar {
	return &HTTPCookieJar{w: w, r: r}
}

// Set describes the set operation and its observable behavior.
//
// Set does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (j *HTTPCookieJar) Set(name, value string, expires time.Time, path string) {
	if j == nil || j.w == nil {
		return
	}
	http.SetCookie(j.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Expires:  expires,
		Path:     path,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Get describes the get operation and its observable behavior.
//
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (j *HTTPCookieJar) Get(name string) (string, bool) {
	if j == nil || j.r == nil {
		return "", false
	}
	c, err := j.r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
