// Package credential stores the secrets used to reach Jira and Polarion.
package credential

import "context"

// System is a remote system credentials are kept for.
type System string

const (
	Jira     System = "jira"
	Polarion System = "polarion"
)

// Systems lists every known system.
var Systems = []System{Jira, Polarion}

// Credentials for one system. Jira accepts either a token or a username
// and password; Polarion only the latter.
type Credentials struct {
	Token    string `json:"token,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// Empty reports whether no secret is set.
func (c *Credentials) Empty() bool {
	return c == nil || (c.Token == "" && c.Username == "" && c.Password == "")
}

// Storage persists credentials per system.
type Storage interface {
	Save(ctx context.Context, system System, creds *Credentials) error
	// Get returns nil without error when nothing is stored.
	Get(ctx context.Context, system System) (*Credentials, error)
	Delete(ctx context.Context, system System) error
}

// ParseSystem validates a system name.
func ParseSystem(name string) (System, bool) {
	for _, s := range Systems {
		if string(s) == name {
			return s, true
		}
	}
	return "", false
}
