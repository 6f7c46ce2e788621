// Package user resolves who a local CLI invocation acts as
package user

import (
	"os"
	"os/user"
	"strings"

	"github.com/thenoetrevino/tablero/internal/types"
)

// ActorEnv overrides the OS username as the acting user
const ActorEnv = "TABLERO_USER"

// Unknown is returned when no name can be found
const Unknown types.UserID = "unknown"

// Actor returns the user local commands act as. It tries, in order:
// $TABLERO_USER, the OS account, $USER and finally Unknown.
func Actor() types.UserID {
	if v := strings.TrimSpace(os.Getenv(ActorEnv)); v != "" {
		return types.UserID(v)
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return types.UserID(u.Username)
	}
	if v := os.Getenv("USER"); v != "" {
		return types.UserID(v)
	}
	return Unknown
}
