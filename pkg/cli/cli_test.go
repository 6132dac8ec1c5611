package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/datatug/drivetug/pkg/auth"
	"github.com/datatug/drivetug/pkg/drives"
	"github.com/datatug/drivetug/pkg/drivetug"
	"github.com/datatug/drivetug/pkg/dtsettings"
	"github.com/datatug/drivetug/pkg/dtstate"
	"github.com/datatug/drivetug/pkg/navigation"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

// withSettingsDir points the default config to an empty temp directory.
func withSettingsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := defaultConfigPath
	defaultConfigPath = func() (string, error) {
		return filepath.Join(dir, "config.yaml"), nil
	}
	t.Cleanup(func() {
		defaultConfigPath = old
	})
	return dir
}

func execute(t *testing.T, o *options, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(o)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()
	assert.Equal(t, "drivetug", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	for _, name := range []string{"config", "account", "credentials", "demo", "page-size", "verbose", "no-color", "cpuprofile", "memprofile"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
	assert.True(t, cmd.PersistentFlags().Lookup("cpuprofile").Hidden)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"ls", "whoami", "login", "logout", "accounts"})
}

func TestLs_Demo(t *testing.T) {
	withSettingsDir(t)

	t.Run("top_level", func(t *testing.T) {
		out, err := execute(t, &options{}, "ls", "--demo")
		assert.NoError(t, err)
		assert.Equal(t, "My Drive/\n  Music/\n  Photos/\n  Work/\n", out)
	})

	t.Run("folder_with_ids", func(t *testing.T) {
		out, err := execute(t, &options{}, "ls", "--demo", "--ids", "photos")
		assert.NoError(t, err)
		assert.Equal(t, "My Drive/Photos/\n  2024/  photos-2024\n  2025/  photos-2025\n", out)
	})

	t.Run("root_id", func(t *testing.T) {
		out, err := execute(t, &options{}, "ls", "--demo", "root")
		assert.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "My Drive/\n"), out)
	})

	t.Run("empty_folder", func(t *testing.T) {
		out, err := execute(t, &options{}, "ls", "--demo", "photos-2024")
		assert.NoError(t, err)
		assert.Equal(t, "My Drive/2024/\n  (no folders)\n", out)
	})

	t.Run("truncated", func(t *testing.T) {
		out, err := execute(t, &options{}, "ls", "--demo", "--page-size", "2")
		assert.NoError(t, err)
		assert.Contains(t, out, "more folders not shown")
	})

	t.Run("not_a_folder", func(t *testing.T) {
		_, err := execute(t, &options{}, "ls", "--demo", "notes")
		assert.ErrorIs(t, err, navigation.ErrInvalidFolder)
	})

	t.Run("unknown_folder", func(t *testing.T) {
		_, err := execute(t, &options{}, "ls", "--demo", "nope")
		assert.ErrorIs(t, err, drives.ErrNotFound)
	})
}

func TestWhoamiLoginAccounts_Demo(t *testing.T) {
	withSettingsDir(t)

	out, err := execute(t, &options{}, "whoami", "--demo")
	assert.NoError(t, err)
	assert.Equal(t, "demo@example.com\nDemo User\n", out)

	out, err = execute(t, &options{}, "login", "--demo")
	assert.NoError(t, err)
	assert.Equal(t, "Logged in as demo@example.com\n", out)

	_, err = execute(t, &options{}, "login", "--demo", "other@example.com")
	assert.ErrorIs(t, err, drives.ErrNotFound)

	out, err = execute(t, &options{}, "accounts", "--demo")
	assert.NoError(t, err)
	assert.Equal(t, "* demo@example.com\n", out)

	out, err = execute(t, &options{}, "logout", "--demo")
	assert.NoError(t, err)
	assert.Equal(t, "Logged out demo@example.com\n", out)
}

func TestAccountsAndLogout(t *testing.T) {
	dir := withSettingsDir(t)

	out, err := execute(t, &options{}, "accounts")
	assert.NoError(t, err)
	assert.Contains(t, out, "No accounts")

	_, err = execute(t, &options{}, "logout")
	assert.ErrorContains(t, err, "no account")

	tokens := auth.NewTokenStore(filepath.Join(dir, "accounts"))
	assert.NoError(t, tokens.Save("a@example.com", &oauth2.Token{AccessToken: "a"}))
	assert.NoError(t, tokens.Save("b@example.com", &oauth2.Token{AccessToken: "b"}))
	stateFile := filepath.Join(dir, "drivetug-state.json")
	state := dtstate.New(stateFile, zerolog.Nop())
	state.SaveAccount("b@example.com")

	out, err = execute(t, &options{}, "accounts")
	assert.NoError(t, err)
	assert.Equal(t, "  a@example.com\n* b@example.com\n", out)

	out, err = execute(t, &options{}, "accounts", "--account", "a@example.com")
	assert.NoError(t, err)
	assert.Equal(t, "* a@example.com\n  b@example.com\n", out)

	out, err = execute(t, &options{}, "logout")
	assert.NoError(t, err)
	assert.Equal(t, "Logged out b@example.com\n", out)
	assert.Equal(t, "", state.Account())

	_, err = execute(t, &options{}, "logout", "a@example.com")
	assert.NoError(t, err)
	accounts, err := tokens.Accounts()
	assert.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestConfig(t *testing.T) {
	dir := withSettingsDir(t)

	t.Run("explicit_config_must_exist", func(t *testing.T) {
		_, err := execute(t, &options{}, "accounts", "--config", filepath.Join(dir, "missing.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid_config", func(t *testing.T) {
		p := filepath.Join(dir, "invalid.yaml")
		assert.NoError(t, os.WriteFile(p, []byte("page_size: [1"), 0o600))
		_, err := execute(t, &options{}, "accounts", "--config", p)
		assert.ErrorContains(t, err, "failed to parse config")
	})

	t.Run("flags_override_config", func(t *testing.T) {
		p := filepath.Join(dir, "config.yaml")
		assert.NoError(t, os.WriteFile(p, []byte("account: cfg@example.com\npage_size: 7\ncredentials: /nowhere.json\n"), 0o600))
		o := &options{}
		cmd := newRootCmd(o)
		assert.NoError(t, cmd.ParseFlags([]string{"--config", p, "--account", "flag@example.com", "--page-size", "3"}))
		cfg, err := loadConfig(cmd, o)
		assert.NoError(t, err)
		assert.Equal(t, "flag@example.com", cfg.Account)
		assert.Equal(t, int64(3), cfg.PageSize)
		assert.Equal(t, "/nowhere.json", cfg.Credentials)
		assert.Equal(t, dir, cfg.Dir)
	})

	t.Run("missing_credentials", func(t *testing.T) {
		_, err := execute(t, &options{}, "ls", "--credentials", filepath.Join(dir, "nope.json"))
		assert.ErrorContains(t, err, "nope.json")
	})
}

func TestEnv_Account(t *testing.T) {
	dir := t.TempDir()
	newTestEnv := func(account string) *env {
		cfg := dtsettings.Defaults(dir)
		cfg.Account = account
		return newEnvWithLogger(&options{}, cfg, zerolog.Nop())
	}

	e := newTestEnv("")
	_, err := e.account()
	assert.ErrorContains(t, err, "no account")

	assert.NoError(t, e.tokens.Save("one@example.com", &oauth2.Token{}))
	account, err := e.account()
	assert.NoError(t, err)
	assert.Equal(t, "one@example.com", account)

	assert.NoError(t, e.tokens.Save("two@example.com", &oauth2.Token{}))
	_, err = e.account()
	assert.ErrorContains(t, err, "--account")

	e.state.SaveAccount("two@example.com")
	account, err = e.account()
	assert.NoError(t, err)
	assert.Equal(t, "two@example.com", account)

	e = newTestEnv("cfg@example.com")
	account, err = e.account()
	assert.NoError(t, err)
	assert.Equal(t, "cfg@example.com", account)
}

// fakeDrive serves the Drive v3 calls of one small drive.
func fakeDrive(t *testing.T) (*httptest.Server, *atomic.Value) {
	var authorization atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		type file struct {
			ID       string   `json:"id"`
			Name     string   `json:"name"`
			Parents  []string `json:"parents,omitempty"`
			MimeType string   `json:"mimeType"`
		}
		var body any
		switch {
		case r.URL.Path == "/drive/v3/files/top":
			body = file{ID: "top", Name: "My Drive", MimeType: drives.FolderMimeType}
		case r.URL.Path == "/drive/v3/files" && strings.Contains(r.URL.Query().Get("q"), "in parents"):
			body = map[string]any{"files": []file{
				{ID: "b", Name: "beta", Parents: []string{"top"}, MimeType: drives.FolderMimeType},
				{ID: "a", Name: "Alpha", Parents: []string{"top"}, MimeType: drives.FolderMimeType},
			}}
		case r.URL.Path == "/drive/v3/files":
			body = map[string]any{"files": []file{
				{ID: "x", Name: "x.txt", Parents: []string{"top"}, MimeType: "text/plain"},
			}}
		case r.URL.Path == "/drive/v3/about":
			body = map[string]any{"user": map[string]string{"emailAddress": "me@example.com", "displayName": "Me"}}
		default:
			w.WriteHeader(http.StatusNotFound)
			body = map[string]any{"error": map[string]any{"code": 404, "message": "not found"}}
		}
		assert.NoError(t, json.NewEncoder(w).Encode(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &authorization
}

func TestLs_GoogleDrive(t *testing.T) {
	dir := withSettingsDir(t)
	srv, authorization := fakeDrive(t)

	credentials := filepath.Join(dir, "credentials.json")
	assert.NoError(t, os.WriteFile(credentials, []byte(`{"installed":{
		"client_id":"id","client_secret":"secret",
		"auth_uri":"https://accounts.example.com/auth","token_uri":"https://accounts.example.com/token",
		"redirect_uris":["http://localhost"]}}`), 0o600))
	tokens := auth.NewTokenStore(filepath.Join(dir, "accounts"))
	assert.NoError(t, tokens.Save("me@example.com", &oauth2.Token{
		AccessToken: "at", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour),
	}))

	o := &options{clientOptions: []option.ClientOption{option.WithEndpoint(srv.URL + "/drive/v3/")}}
	out, err := execute(t, o, "ls")
	assert.NoError(t, err)
	assert.Equal(t, "My Drive/\n  Alpha/\n  beta/\n", out)
	assert.Equal(t, "Bearer at", authorization.Load())

	o = &options{clientOptions: []option.ClientOption{option.WithEndpoint(srv.URL + "/drive/v3/")}}
	out, err = execute(t, o, "whoami")
	assert.NoError(t, err)
	assert.Equal(t, "me@example.com\nMe\n", out)

	o = &options{clientOptions: []option.ClientOption{option.WithEndpoint(srv.URL + "/drive/v3/")}}
	_, err = execute(t, o, "ls", "--account", "stranger@example.com")
	assert.ErrorIs(t, err, drives.ErrPermissionRequired)
	assert.ErrorContains(t, err, "drivetug login stranger@example.com")
}

func TestRunBrowser_Demo(t *testing.T) {
	dir := withSettingsDir(t)
	var ran, rooted atomic.Bool
	old := newApp
	newApp = func() drivetug.App {
		return drivetug.NewApp(nil,
			drivetug.WithQueueUpdateDraw(func(f func()) {}),
			drivetug.WithSetFocus(func(tview.Primitive) {}),
			drivetug.WithSetRoot(func(root tview.Primitive, _ bool) { rooted.Store(root != nil) }),
			drivetug.WithEnableMouse(func(bool) {}),
			drivetug.WithRun(func() error { ran.Store(true); return nil }),
			drivetug.WithStop(func() {}),
			drivetug.WithSuspend(func(f func()) bool { f(); return true }),
		)
	}
	t.Cleanup(func() {
		newApp = old
	})

	_, err := execute(t, &options{}, "--demo", "--verbose")
	assert.NoError(t, err)
	assert.True(t, ran.Load())
	assert.True(t, rooted.Load())
	_, err = os.Stat(filepath.Join(dir, "drivetug.log"))
	assert.NoError(t, err, "the browser logs to a file")
}

func TestProfilingFlags(t *testing.T) {
	dir := withSettingsDir(t)
	cpu := filepath.Join(dir, "cpu.prof")
	mem := filepath.Join(dir, "mem.prof")
	_, err := execute(t, &options{}, "accounts", "--demo", "--cpuprofile", cpu, "--memprofile", mem)
	assert.NoError(t, err)
	_, err = os.Stat(cpu)
	assert.NoError(t, err)
	_, err = os.Stat(mem)
	assert.NoError(t, err)
}
