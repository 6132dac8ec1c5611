package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/datatug/drivetug/pkg/drives"
	"github.com/datatug/drivetug/pkg/logging"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
)

const callbackPath = "/callback"

// LoadConfig reads the OAuth client file of a "Desktop app" client.
func LoadConfig(credentialsPath string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read OAuth client file %s (download it from the Google Cloud console): %w", credentialsPath, err)
	}
	config, err := google.ConfigFromJSON(data, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OAuth client file %s: %w", credentialsPath, err)
	}
	return config, nil
}

type Option func(*Authenticator)

func WithLogger(log zerolog.Logger) Option {
	return func(a *Authenticator) {
		a.log = log
	}
}

// WithRedirectPort fixes the loopback port, 0 picks a free one.
func WithRedirectPort(port int) Option {
	return func(a *Authenticator) {
		a.redirectPort = port
	}
}

func WithRetries(max int, waitMin, waitMax time.Duration) Option {
	return func(a *Authenticator) {
		a.retryMax = max
		a.retryWaitMin = waitMin
		a.retryWaitMax = waitMax
	}
}

// Identify names the account an authorized client belongs to, typically by its e-mail.
type Identify func(ctx context.Context, client *http.Client) (string, error)

func WithIdentify(f Identify) Option {
	return func(a *Authenticator) {
		a.identify = f
	}
}

type Authenticator struct {
	config       *oauth2.Config
	identify     Identify
	tokens       *TokenStore
	log          zerolog.Logger
	redirectPort int
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
}

func NewAuthenticator(config *oauth2.Config, tokens *TokenStore, o ...Option) *Authenticator {
	a := &Authenticator{
		config:       config,
		tokens:       tokens,
		log:          zerolog.Nop(),
		retryMax:     4,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 8 * time.Second,
	}
	for _, opt := range o {
		opt(a)
	}
	return a
}

func (a *Authenticator) Tokens() *TokenStore {
	return a.tokens
}

// httpClient retries transient failures with exponential backoff.
func (a *Authenticator) httpClient() *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = a.retryMax
	rc.RetryWaitMin = a.retryWaitMin
	rc.RetryWaitMax = a.retryWaitMax
	rc.Logger = logging.RetryLogger{Logger: a.log}
	return rc.StandardClient()
}

// Client returns an HTTP client authorized as account.
// Without a stored token it fails with drives.ErrPermissionRequired.
func (a *Authenticator) Client(ctx context.Context, account string) (*http.Client, error) {
	token, err := a.tokens.Load(account)
	if err != nil {
		return nil, err
	}
	return a.client(ctx, account, token), nil
}

func (a *Authenticator) client(ctx context.Context, account string, token *oauth2.Token) *http.Client {
	base := a.httpClient()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	src := &persistingSource{
		account: account,
		store:   a.tokens,
		src:     a.config.TokenSource(ctx, token),
		last:    token.AccessToken,
		onError: func(err error) {
			a.log.Warn().Err(err).Str("account", account).Msg("auth: failed to save refreshed token")
		},
	}
	return &http.Client{
		Transport: &oauth2.Transport{Source: src, Base: base.Transport},
	}
}

type callbackResult struct {
	code string
	err  error
}

// Authorize runs the authorization code flow with a loopback redirect.
// prompt gets the URL the user has to open in a browser.
func (a *Authenticator) Authorize(ctx context.Context, prompt func(authURL string)) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", a.redirectPort))
	if err != nil {
		return nil, fmt.Errorf("failed to listen for the OAuth redirect: %w", err)
	}
	config := *a.config
	config.RedirectURL = "http://" + ln.Addr().String() + callbackPath

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	results := make(chan callbackResult, 1)

	srv := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != callbackPath {
				http.NotFound(w, r)
				return
			}
			q := r.URL.Query()
			var result callbackResult
			switch {
			case q.Get("state") != state:
				result.err = errors.New("OAuth state mismatch")
			case q.Get("error") == "access_denied":
				result.err = fmt.Errorf("access denied by user: %w", drives.ErrPermissionRequired)
			case q.Get("error") != "":
				result.err = fmt.Errorf("authorization failed: %s", q.Get("error"))
			case q.Get("code") == "":
				result.err = errors.New("authorization code is missing")
			default:
				result.code = q.Get("code")
			}
			if result.err != nil {
				http.Error(w, "drivetug: "+result.err.Error(), http.StatusBadRequest)
			} else {
				_, _ = fmt.Fprintln(w, "drivetug: authorization received, you can close this window.")
			}
			select {
			case results <- result:
			default:
			}
		}),
	}
	go func() {
		if serveErr := srv.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			a.log.Error().Err(serveErr).Msg("auth: redirect listener failed")
		}
	}()
	defer func() {
		_ = srv.Shutdown(context.Background())
	}()

	authURL := config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	a.log.Info().Str("redirect", config.RedirectURL).Msg("auth: waiting for authorization")
	prompt(authURL)

	var result callbackResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result = <-results:
	}
	if result.err != nil {
		return nil, result.err
	}
	exchangeCtx := context.WithValue(ctx, oauth2.HTTPClient, a.httpClient())
	token, err := config.Exchange(exchangeCtx, result.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token, nil
}

// Login authorizes an account and stores its token.
// An empty account is named by the Identify option once authorized.
func (a *Authenticator) Login(ctx context.Context, account string, prompt func(authURL string)) (string, error) {
	if account != "" {
		if err := validateAccount(account); err != nil {
			return "", err
		}
	}
	token, err := a.Authorize(ctx, prompt)
	if err != nil {
		return "", err
	}
	if account == "" {
		if a.identify == nil {
			return "", fmt.Errorf("%w: account name is required", ErrInvalidAccount)
		}
		if account, err = a.identify(ctx, oauth2.NewClient(
			context.WithValue(ctx, oauth2.HTTPClient, a.httpClient()),
			oauth2.StaticTokenSource(token),
		)); err != nil {
			return "", fmt.Errorf("failed to identify the authorized account: %w", err)
		}
		if err = validateAccount(account); err != nil {
			return "", err
		}
	}
	if err = a.tokens.Save(account, token); err != nil {
		return "", fmt.Errorf("failed to save token of %s: %w", account, err)
	}
	a.log.Info().Str("account", account).Msg("auth: logged in")
	return account, nil
}

// Recover drops the token of account and authorizes it again.
func (a *Authenticator) Recover(ctx context.Context, account string, prompt func(authURL string)) error {
	if err := a.Logout(account); err != nil {
		return err
	}
	_, err := a.Login(ctx, account, prompt)
	return err
}

func (a *Authenticator) Logout(account string) error {
	return a.tokens.Delete(account)
}
