package twilio

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// Fixed vector: signature precomputed for exactly these inputs.
const (
	docAuthToken = "12345"
	docURL       = "https://mycompany.com/myapp.php?foo=1&bar=2"
	docSignature = "0/KCTR6DLpKmkAf8muzZqo1nDgQ="
)

func docParams() url.Values {
	return url.Values{
		"CallSid": {"CA1234567890ABCDE"},
		"Caller":  {"+12349013030"},
		"Digits":  {"1234"},
		"From":    {"+12349013030"},
		"To":      {"+18005551212"},
	}
}

func TestSignMatchesDocumentedVector(t *testing.T) {
	v := NewRequestValidator(docAuthToken, "", true)
	if got := v.Sign(docURL, docParams()); got != docSignature {
		t.Fatalf("Sign() = %q, want %q", got, docSignature)
	}
}

func TestValidateAcceptsCorrectSignature(t *testing.T) {
	v := NewRequestValidator(docAuthToken, "https://mycompany.com", true)

	params := docParams()
	r := httptest.NewRequest("POST", "https://mycompany.com/myapp.php?foo=1&bar=2",
		strings.NewReader(params.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set(SignatureHeader, docSignature)

	if !v.Validate(r, params) {
		t.Fatal("correctly signed request rejected")
	}
}

func TestValidateRejectsTamperedBody(t *testing.T) {
	v := NewRequestValidator(docAuthToken, "https://mycompany.com", true)

	params := docParams()
	params.Set("Digits", "9999")
	r := httptest.NewRequest("POST", "https://mycompany.com/myapp.php?foo=1&bar=2",
		strings.NewReader(params.Encode()))
	r.Header.Set(SignatureHeader, docSignature)

	if v.Validate(r, params) {
		t.Fatal("tampered request accepted")
	}
}

func TestValidateRejectsMissingHeader(t *testing.T) {
	v := NewRequestValidator(docAuthToken, "", true)
	r := httptest.NewRequest("POST", "https://mycompany.com/myapp.php", nil)
	if v.Validate(r, url.Values{}) {
		t.Fatal("unsigned request accepted")
	}
}

func TestDisabledValidatorAcceptsEverything(t *testing.T) {
	v := NewRequestValidator("", "", false)
	r := httptest.NewRequest("POST", "http://localhost/api/webhook/twilio", nil)
	if !v.Validate(r, url.Values{}) {
		t.Fatal("disabled validator must accept")
	}
}
