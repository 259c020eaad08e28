package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/CrestNiraj12/kabinka/domain"
)

const (
	oauthScopes  = "read write follow"
	loginTimeout = 3 * time.Minute
	appWebsite   = "https://github.com/CrestNiraj12/kabinka"
)

type oauthClientCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type oauthTokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Paths locates the per-instance token and registered app credentials.
type Paths struct {
	Token  string
	Client string
}

// PathsFor returns the auth file locations for instanceURL under dir.
// Every instance gets its own directory so several accounts can coexist.
func PathsFor(dir, instanceURL string) Paths {
	host := instanceURL
	if u, err := url.Parse(instanceURL); err == nil && u.Host != "" {
		host = u.Host
	}
	host = strings.ToLower(strings.TrimSpace(host))
	return Paths{
		Token:  filepath.Join(dir, host, "token"),
		Client: filepath.Join(dir, host, "oauth_client.json"),
	}
}

// openBrowser is replaced in tests.
var openBrowser = func(u string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", u).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", u).Start()
	default:
		return exec.Command("xdg-open", u).Start()
	}
}

// EnsureOAuthLogin guarantees a valid OAuth token exists at p.Token.
// It validates an existing token and falls back to browser OAuth login if needed.
func EnsureOAuthLogin(ctx context.Context, instanceURL string, p Paths, callbackPort int) error {
	token, err := readToken(p.Token)
	if err == nil && token != "" {
		valid, err := validateToken(ctx, instanceURL, token)
		if err != nil {
			return err
		}
		if valid {
			return nil
		}
	}

	creds, err := loadOrCreateOAuthClient(ctx, instanceURL, p.Client, callbackPort)
	if err != nil {
		return err
	}

	token, err = runOAuthAuthorization(ctx, instanceURL, creds, callbackPort)
	if err != nil {
		return err
	}

	return writeToken(p.Token, token)
}

// Logout forgets the token stored at p.Token. The registered app is kept.
func Logout(p Paths) error {
	if err := os.Remove(p.Token); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token: %w", err)
	}
	return nil
}

func validateToken(ctx context.Context, instanceURL, token string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, instanceURL+"/api/v1/accounts/verify_credentials", nil)
	if err != nil {
		return false, fmt.Errorf("creating token validation request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := (&http.Client{Timeout: 10 * time.Second}).Do(req)
	if err != nil {
		return false, fmt.Errorf("validating oauth token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return false, fmt.Errorf("token validation failed: %d %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return true, nil
}

func redirectURI(port int) string {
	return fmt.Sprintf("http://127.0.0.1:%d/callback", port)
}

func loadOrCreateOAuthClient(ctx context.Context, instanceURL, clientPath string, callbackPort int) (oauthClientCredentials, error) {
	if data, err := os.ReadFile(clientPath); err == nil {
		var creds oauthClientCredentials
		if err := sonic.Unmarshal(data, &creds); err == nil && creds.ClientID != "" && creds.ClientSecret != "" {
			return creds, nil
		}
	}

	form := url.Values{
		"client_name":   {domain.AppTitle},
		"redirect_uris": {redirectURI(callbackPort)},
		"scopes":        {oauthScopes},
		"website":       {appWebsite},
	}
	data, err := postForm(ctx, instanceURL+"/api/v1/apps", form)
	if err != nil {
		return oauthClientCredentials{}, fmt.Errorf("registering oauth app: %w", err)
	}

	var creds oauthClientCredentials
	if err := sonic.Unmarshal(data, &creds); err != nil {
		return oauthClientCredentials{}, fmt.Errorf("parsing oauth app registration response: %w", err)
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return oauthClientCredentials{}, errors.New("oauth app registration returned empty client credentials")
	}

	if err := os.MkdirAll(filepath.Dir(clientPath), 0o700); err != nil {
		return oauthClientCredentials{}, fmt.Errorf("creating auth directory: %w", err)
	}
	serialized, err := sonic.Marshal(creds)
	if err != nil {
		return oauthClientCredentials{}, fmt.Errorf("serializing oauth client credentials: %w", err)
	}
	if err := os.WriteFile(clientPath, serialized, 0o600); err != nil {
		return oauthClientCredentials{}, fmt.Errorf("writing oauth client credentials: %w", err)
	}

	return creds, nil
}

func postForm(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := (&http.Client{Timeout: 15 * time.Second}).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%d %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

// callbackHandler serves the loopback redirect. Exactly one of codeCh or
// errCh receives a value per request; extra sends are dropped.
func callbackHandler(state string, codeCh chan<- string, errCh chan<- error) http.Handler {
	fail := func(w http.ResponseWriter, msg string, err error) {
		http.Error(w, msg, http.StatusBadRequest)
		select {
		case errCh <- err:
		default:
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/callback" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("state") != state {
			fail(w, "invalid oauth state", errors.New("oauth state mismatch"))
			return
		}
		if e := q.Get("error"); e != "" {
			fail(w, "authorization denied", fmt.Errorf("oauth authorization error: %s", e))
			return
		}
		code := q.Get("code")
		if code == "" {
			fail(w, "missing oauth code", errors.New("oauth callback missing code"))
			return
		}
		_, _ = io.WriteString(w, domain.AppTitle+" login complete. You can return to the terminal.")
		select {
		case codeCh <- code:
		default:
		}
	})
}

func authorizeURL(instanceURL string, creds oauthClientCredentials, callbackPort int, state, challenge string) string {
	return instanceURL + "/oauth/authorize?" + url.Values{
		"response_type":         {"code"},
		"client_id":             {creds.ClientID},
		"redirect_uri":          {redirectURI(callbackPort)},
		"scope":                 {oauthScopes},
		"state":                 {state},
		"code_challenge_method": {"S256"},
		"code_challenge":        {challenge},
	}.Encode()
}

func runOAuthAuthorization(ctx context.Context, instanceURL string, creds oauthClientCredentials, callbackPort int) (string, error) {
	state, err := randomState()
	if err != nil {
		return "", fmt.Errorf("generating oauth state: %w", err)
	}
	codeVerifier, err := randomCodeVerifier()
	if err != nil {
		return "", fmt.Errorf("generating oauth code verifier: %w", err)
	}

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	srv := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", callbackPort),
		Handler:           callbackHandler(state, codeCh, errCh),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errCh <- fmt.Errorf("oauth callback server: %w", err):
			default:
			}
		}
	}()
	defer func() { _ = srv.Shutdown(context.Background()) }()

	authURL := authorizeURL(instanceURL, creds, callbackPort, state, codeChallengeS256(codeVerifier))
	fmt.Printf("Opening browser for OAuth login...\nIf it does not open, visit:\n%s\n\n", authURL)
	_ = openBrowser(authURL)

	timeout := time.NewTimer(loginTimeout)
	defer timeout.Stop()

	var code string
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-errCh:
		return "", err
	case code = <-codeCh:
	case <-timeout.C:
		return "", errors.New("oauth login timed out")
	}

	return exchangeCode(ctx, instanceURL, creds, callbackPort, code, codeVerifier)
}

func exchangeCode(ctx context.Context, instanceURL string, creds oauthClientCredentials, callbackPort int, code, codeVerifier string) (string, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {creds.ClientID},
		"client_secret": {creds.ClientSecret},
		"redirect_uri":  {redirectURI(callbackPort)},
		"scope":         {oauthScopes},
		"code_verifier": {codeVerifier},
	}
	data, err := postForm(ctx, instanceURL+"/oauth/token", form)
	if err != nil {
		return "", fmt.Errorf("exchanging oauth code: %w", err)
	}

	var tr oauthTokenResponse
	if err := sonic.Unmarshal(data, &tr); err != nil {
		return "", fmt.Errorf("parsing oauth token response: %w", err)
	}
	if strings.TrimSpace(tr.AccessToken) == "" {
		return "", errors.New("oauth token response missing access token")
	}
	return strings.TrimSpace(tr.AccessToken), nil
}

func randomState() (string, error) {
	return randomToken(24)
}

func randomCodeVerifier() (string, error) {
	// 32 random bytes -> 43 chars with RawURLEncoding, valid PKCE verifier length.
	return randomToken(32)
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func codeChallengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func writeToken(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	return os.WriteFile(path, []byte(strings.TrimSpace(token)), 0o600)
}
