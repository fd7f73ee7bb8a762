// Package twilio implements Twilio's webhook signature scheme: an HMAC-SHA1
// over the full request URL concatenated with the sorted POST parameters,
// base64 encoded and carried in the X-Twilio-Signature header.
package twilio

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// SignatureHeader is the header Twilio sets on webhook requests.
const SignatureHeader = "X-Twilio-Signature"

// RequestValidator verifies that a webhook request was signed with the
// account's auth token. A disabled validator accepts everything, which is
// how development mode runs.
type RequestValidator struct {
	authToken string
	baseURL   string
	enabled   bool
}

// NewRequestValidator builds a validator. baseURL, when non-empty, replaces
// the scheme and host observed on the request when reconstructing the signed
// URL; required when the service sits behind a proxy that rewrites Host.
func NewRequestValidator(authToken, baseURL string, enabled bool) *RequestValidator {
	return &RequestValidator{
		authToken: authToken,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		enabled:   enabled,
	}
}

func (v *RequestValidator) Enabled() bool { return v.enabled }

// Validate reports whether the request's signature matches the given POST
// params. Always true when the validator is disabled.
func (v *RequestValidator) Validate(r *http.Request, params url.Values) bool {
	if !v.enabled {
		return true
	}
	sig := r.Header.Get(SignatureHeader)
	if sig == "" {
		return false
	}
	expected := v.Sign(v.requestURL(r), params)
	return hmac.Equal([]byte(sig), []byte(expected))
}

// Sign computes the signature Twilio would produce for the URL and params.
func (v *RequestValidator) Sign(fullURL string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(fullURL)
	for _, k := range keys {
		for _, val := range params[k] {
			b.WriteString(k)
			b.WriteString(val)
		}
	}

	mac := hmac.New(sha1.New, []byte(v.authToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (v *RequestValidator) requestURL(r *http.Request) string {
	if v.baseURL != "" {
		return v.baseURL + r.URL.RequestURI()
	}
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
