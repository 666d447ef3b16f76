package opts

import (
	"github.com/walteh/savesync/pkg/status"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigPath  string
	PidfilePath string
	Reporter    *status.Console
}
