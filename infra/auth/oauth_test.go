package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CrestNiraj12/kabinka/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func withMockDefaultTransport(t *testing.T, rt roundTripFunc) {
	t.Helper()
	prev := http.DefaultTransport
	http.DefaultTransport = rt
	t.Cleanup(func() { http.DefaultTransport = prev })
}

func response(req *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}
}

func TestPathsFor_SeparatesInstances(t *testing.T) {
	a := PathsFor("/cfg", "https://Mastodon.Social/")
	b := PathsFor("/cfg", "https://fosstodon.org")
	if a.Token != filepath.Join("/cfg", "mastodon.social", "token") {
		t.Fatalf("unexpected token path: %q", a.Token)
	}
	if a.Client != filepath.Join("/cfg", "mastodon.social", "oauth_client.json") {
		t.Fatalf("unexpected client path: %q", a.Client)
	}
	if a.Token == b.Token {
		t.Fatalf("instances must not share a token file")
	}
}

func TestValidateToken_StatusHandling(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantValid bool
		wantErr   bool
	}{
		{name: "ok", status: http.StatusOK, body: "{}", wantValid: true, wantErr: false},
		{name: "unauthorized", status: http.StatusUnauthorized, body: "{}", wantValid: false, wantErr: false},
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantValid: false, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var authHeader string
			withMockDefaultTransport(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
				if r.URL.Path != "/api/v1/accounts/verify_credentials" {
					t.Fatalf("unexpected path: %s", r.URL.Path)
				}
				authHeader = r.Header.Get("Authorization")
				return response(r, tc.status, tc.body), nil
			}))

			valid, err := validateToken(context.Background(), "http://example.test", "tok123")
			if authHeader != "Bearer tok123" {
				t.Fatalf("missing bearer token header: %q", authHeader)
			}
			if valid != tc.wantValid {
				t.Fatalf("valid mismatch got=%v want=%v", valid, tc.wantValid)
			}
			if (err != nil) != tc.wantErr {
				t.Fatalf("err mismatch got=%v wantErr=%v", err, tc.wantErr)
			}
		})
	}
}

func TestEnsureOAuthLogin_ValidTokenSkipsLogin(t *testing.T) {
	p := PathsFor(t.TempDir(), "http://example.test")
	if err := writeToken(p.Token, "tok"); err != nil {
		t.Fatalf("write token failed: %v", err)
	}
	calls := 0
	withMockDefaultTransport(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		if r.URL.Path != "/api/v1/accounts/verify_credentials" {
			t.Fatalf("login must not start, got request to %s", r.URL.Path)
		}
		return response(r, http.StatusOK, "{}"), nil
	}))
	prevOpen := openBrowser
	openBrowser = func(string) error {
		t.Fatalf("browser must not open")
		return nil
	}
	t.Cleanup(func() { openBrowser = prevOpen })

	if err := EnsureOAuthLogin(context.Background(), "http://example.test", p, 45145); err != nil {
		t.Fatalf("ensure login failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one validation request, got %d", calls)
	}
}

func TestLoadOrCreateOAuthClient_ReadsCachedCredentials(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oauth_client.json")
	cached := oauthClientCredentials{ClientID: "cid", ClientSecret: "sec"}
	raw, _ := json.Marshal(cached)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write cached creds failed: %v", err)
	}

	creds, err := loadOrCreateOAuthClient(context.Background(), "https://example.invalid", path, 45145)
	if err != nil {
		t.Fatalf("load cached creds failed: %v", err)
	}
	if creds != cached {
		t.Fatalf("cached creds mismatch got=%#v want=%#v", creds, cached)
	}
}

func TestLoadOrCreateOAuthClient_RegistersAndPersists(t *testing.T) {
	var gotContentType string
	var gotValues url.Values

	withMockDefaultTransport(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/api/v1/apps" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotValues, _ = url.ParseQuery(string(body))
		resp, _ := json.Marshal(oauthClientCredentials{ClientID: "newid", ClientSecret: "newsecret"})
		return response(r, http.StatusOK, string(resp)), nil
	}))

	path := filepath.Join(t.TempDir(), "auth", "oauth_client.json")
	creds, err := loadOrCreateOAuthClient(context.Background(), "http://example.test", path, 45145)
	if err != nil {
		t.Fatalf("register oauth app failed: %v", err)
	}
	if creds.ClientID != "newid" || creds.ClientSecret != "newsecret" {
		t.Fatalf("unexpected creds: %#v", creds)
	}
	if !strings.Contains(gotContentType, "application/x-www-form-urlencoded") {
		t.Fatalf("expected form content-type, got %q", gotContentType)
	}
	if gotValues.Get("client_name") != domain.AppTitle || gotValues.Get("redirect_uris") != "http://127.0.0.1:45145/callback" || gotValues.Get("scopes") != oauthScopes {
		t.Fatalf("unexpected registration form values: %#v", gotValues)
	}

	persisted, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected persisted credentials file: %v", err)
	}
	var parsed oauthClientCredentials
	if err := json.Unmarshal(persisted, &parsed); err != nil {
		t.Fatalf("parse persisted creds failed: %v", err)
	}
	if parsed != creds {
		t.Fatalf("persisted creds mismatch got=%#v want=%#v", parsed, creds)
	}
}

func TestLoadOrCreateOAuthClient_RegistrationFailure(t *testing.T) {
	withMockDefaultTransport(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return response(r, http.StatusUnprocessableEntity, `{"error":"bad redirect"}`), nil
	}))
	_, err := loadOrCreateOAuthClient(context.Background(), "http://example.test", filepath.Join(t.TempDir(), "c.json"), 1)
	if err == nil || !strings.Contains(err.Error(), "422") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		wantCode string
		wantErr  string
		status   int
	}{
		{name: "ok", target: "/callback?state=s1&code=abc", wantCode: "abc", status: http.StatusOK},
		{name: "state mismatch", target: "/callback?state=other&code=abc", wantErr: "state mismatch", status: http.StatusBadRequest},
		{name: "denied", target: "/callback?state=s1&error=access_denied", wantErr: "access_denied", status: http.StatusBadRequest},
		{name: "missing code", target: "/callback?state=s1", wantErr: "missing code", status: http.StatusBadRequest},
		{name: "other path", target: "/favicon.ico", status: http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			codeCh := make(chan string, 1)
			errCh := make(chan error, 1)
			rec := httptest.NewRecorder()
			callbackHandler("s1", codeCh, errCh).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.target, nil))

			if rec.Code != tc.status {
				t.Fatalf("unexpected status %d", rec.Code)
			}
			select {
			case code := <-codeCh:
				if code != tc.wantCode {
					t.Fatalf("unexpected code %q", code)
				}
			case err := <-errCh:
				if tc.wantErr == "" || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("unexpected error %v", err)
				}
			default:
				if tc.wantCode != "" || tc.wantErr != "" {
					t.Fatalf("expected a result on the channels")
				}
			}
		})
	}
}

func TestAuthorizeURL_CarriesPKCEChallenge(t *testing.T) {
	raw := authorizeURL("https://example.test", oauthClientCredentials{ClientID: "cid"}, 45145, "st", "chal")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	q := u.Query()
	if u.Path != "/oauth/authorize" || q.Get("client_id") != "cid" || q.Get("state") != "st" {
		t.Fatalf("unexpected authorize url: %s", raw)
	}
	if q.Get("code_challenge") != "chal" || q.Get("code_challenge_method") != "S256" || q.Get("scope") != oauthScopes {
		t.Fatalf("unexpected pkce params: %v", q)
	}
}

func TestExchangeCode_SendsVerifier(t *testing.T) {
	var gotValues url.Values
	withMockDefaultTransport(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/oauth/token" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		gotValues, _ = url.ParseQuery(string(body))
		return response(r, http.StatusOK, `{"access_token":" tok-1 "}`), nil
	}))

	tok, err := exchangeCode(context.Background(), "http://example.test", oauthClientCredentials{ClientID: "cid", ClientSecret: "sec"}, 45145, "code-1", "verifier-1")
	if err != nil {
		t.Fatalf("exchange failed: %v", err)
	}
	if tok != "tok-1" {
		t.Fatalf("unexpected token %q", tok)
	}
	if gotValues.Get("code") != "code-1" || gotValues.Get("code_verifier") != "verifier-1" || gotValues.Get("grant_type") != "authorization_code" {
		t.Fatalf("unexpected exchange form: %v", gotValues)
	}
}

func TestStateAndTokenHelpers(t *testing.T) {
	state, err := randomState()
	if err != nil {
		t.Fatalf("randomState failed: %v", err)
	}
	if len(state) < 20 {
		t.Fatalf("unexpectedly short state: %q", state)
	}
	if strings.ContainsAny(state, " \n\t") {
		t.Fatalf("state should not include whitespace: %q", state)
	}

	p := PathsFor(t.TempDir(), "https://example.test")
	if err := writeToken(p.Token, "  my-token \n"); err != nil {
		t.Fatalf("writeToken failed: %v", err)
	}
	got, err := readToken(p.Token)
	if err != nil {
		t.Fatalf("readToken failed: %v", err)
	}
	if got != "my-token" {
		t.Fatalf("unexpected read token: %q", got)
	}

	if err := Logout(p); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := os.Stat(p.Token); !os.IsNotExist(err) {
		t.Fatalf("expected token removed, got %v", err)
	}
	if err := Logout(p); err != nil {
		t.Fatalf("second logout should be a no-op: %v", err)
	}
}

func TestPKCEHelpers(t *testing.T) {
	verifier, err := randomCodeVerifier()
	if err != nil {
		t.Fatalf("randomCodeVerifier failed: %v", err)
	}
	if len(verifier) < 43 || len(verifier) > 128 {
		t.Fatalf("invalid code verifier length: %d", len(verifier))
	}
	if _, err := base64.RawURLEncoding.DecodeString(verifier); err != nil {
		t.Fatalf("verifier is not base64url: %v", err)
	}

	// RFC 7636 Appendix B example.
	challenge := codeChallengeS256("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk")
	want := "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"
	if challenge != want {
		t.Fatalf("unexpected code challenge: got %q want %q", challenge, want)
	}
}
