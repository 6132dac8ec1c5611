package navigation

import (
	"github.com/datatug/drivetug/pkg/drives"
	"github.com/rs/zerolog"
)

// Session is the explicit context a Controller works in: one account and its drive.
type Session struct {
	Account string
	Drive   drives.Service
	Logger  zerolog.Logger
}

func NewSession(account string, drive drives.Service, logger zerolog.Logger) Session {
	return Session{
		Account: account,
		Drive:   drive,
		Logger:  logger.With().Str("account", account).Logger(),
	}
}
