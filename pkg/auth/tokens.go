package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/datatug/drivetug/pkg/drives"
	"github.com/datatug/drivetug/pkg/fsutils"
	"golang.org/x/oauth2"
)

const tokenFileExt = ".json"

var ErrInvalidAccount = errors.New("invalid account name")

// TokenStore keeps one OAuth token file per account in a directory.
type TokenStore struct {
	dir string
	mu  sync.Mutex
}

func NewTokenStore(dir string) *TokenStore {
	return &TokenStore{dir: dir}
}

func (s *TokenStore) Dir() string {
	return s.dir
}

func validateAccount(account string) error {
	if account == "" || account == "." || account == ".." ||
		strings.ContainsAny(account, `/\`) || strings.HasPrefix(account, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidAccount, account)
	}
	return nil
}

func (s *TokenStore) path(account string) string {
	return filepath.Join(s.dir, account+tokenFileExt)
}

// Load returns the stored token of account or drives.ErrPermissionRequired when there is none.
func (s *TokenStore) Load(account string) (*oauth2.Token, error) {
	if err := validateAccount(account); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var token oauth2.Token
	if err := fsutils.ReadJSONFile(s.path(account), true, &token); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no token for %s: %w", account, drives.ErrPermissionRequired)
		}
		return nil, fmt.Errorf("failed to read token of %s: %w", account, err)
	}
	return &token, nil
}

func (s *TokenStore) Save(account string, token *oauth2.Token) error {
	if err := validateAccount(account); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fsutils.WriteJSONFile(s.path(account), token, 0o600)
}

func (s *TokenStore) Delete(account string) error {
	if err := validateAccount(account); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path(account))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Accounts lists accounts with a stored token, sorted.
func (s *TokenStore) Accounts() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if exists, err := fsutils.DirExists(s.dir); err != nil || !exists {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var accounts []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, tokenFileExt) || strings.HasPrefix(name, ".") {
			continue
		}
		accounts = append(accounts, strings.TrimSuffix(name, tokenFileExt))
	}
	sort.Strings(accounts)
	return accounts, nil
}

// persistingSource writes refreshed tokens back to the store.
type persistingSource struct {
	account string
	store   *TokenStore
	src     oauth2.TokenSource
	onError func(error)

	mu   sync.Mutex
	last string
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	token, err := p.src.Token()
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if token.AccessToken != p.last {
		p.last = token.AccessToken
		if saveErr := p.store.Save(p.account, token); saveErr != nil && p.onError != nil {
			p.onError(saveErr)
		}
	}
	return token, nil
}
