package dtstate

import (
	"github.com/datatug/drivetug/pkg/fsutils"
	"github.com/rs/zerolog"
)

// State is what the app remembers between runs.
type State struct {
	Account string `json:"account,omitempty"`
	// FolderPath holds names from the top-level folder to the last opened one of Account.
	FolderPath []string `json:"folder_path,omitempty"`
}

var readJSON = fsutils.ReadJSONFile
var writeJSON = fsutils.WriteJSONFile

// Store reads and writes the state file. Persistence errors are logged, never fatal.
type Store struct {
	path string
	log  zerolog.Logger
}

func New(path string, log zerolog.Logger) Store {
	return Store{path: path, log: log}
}

func (s Store) Path() string {
	return s.path
}

func (s Store) State() (*State, error) {
	var state State
	return &state, readJSON(s.path, false, &state)
}

func (s Store) Account() string {
	state, _ := s.State()
	return state.Account
}

// LastFolderPath returns the folder path saved for account, nil for any other account.
func (s Store) LastFolderPath(account string) []string {
	state, _ := s.State()
	if account == "" || state.Account != account {
		return nil
	}
	return state.FolderPath
}

// SaveAccount remembers the selected account and forgets the folder path of the previous one.
func (s Store) SaveAccount(account string) {
	s.save(func(state *State) {
		if state.Account != account {
			state.FolderPath = nil
		}
		state.Account = account
	})
}

func (s Store) SaveFolderPath(names []string) {
	s.save(func(state *State) {
		state.FolderPath = names
	})
}

func (s Store) save(f func(state *State)) {
	var state State
	if err := readJSON(s.path, false, &state); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("dtstate: error reading state file")
	}
	f(&state)
	if err := writeJSON(s.path, state, 0o600); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("dtstate: error writing state file")
	}
}
