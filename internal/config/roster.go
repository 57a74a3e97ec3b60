package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/policy-letter-api/internal/domain"
	"gopkg.in/yaml.v3"
)

type rosterFile struct {
	Users []domain.AuthorizedUser `yaml:"users"`
}

// LoadRoster returns the authorized staff roster. A roster file takes precedence
// over AUTH_ALLOWED_EMAILS; having neither is an error.
func LoadRoster(cfg *Config) ([]domain.AuthorizedUser, error) {
	if cfg.RosterFile != "" {
		f, err := os.Open(cfg.RosterFile)
		if err != nil {
			return nil, fmt.Errorf("open roster: %w", err)
		}
		defer f.Close()
		return ParseRoster(f)
	}
	users := make([]domain.AuthorizedUser, 0, len(cfg.AllowedEmails))
	for _, e := range cfg.AllowedEmails {
		users = append(users, domain.AuthorizedUser{Email: e})
	}
	return normalizeRoster(users)
}

// ParseRoster decodes a YAML roster document.
func ParseRoster(r io.Reader) ([]domain.AuthorizedUser, error) {
	var rf rosterFile
	if err := yaml.NewDecoder(r).Decode(&rf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	return normalizeRoster(rf.Users)
}

func normalizeRoster(users []domain.AuthorizedUser) ([]domain.AuthorizedUser, error) {
	if len(users) == 0 {
		return nil, errors.New("roster is empty: set AUTH_ROSTER_FILE or AUTH_ALLOWED_EMAILS")
	}
	seen := make(map[string]struct{}, len(users))
	out := make([]domain.AuthorizedUser, 0, len(users))
	for i, u := range users {
		u.Email = domain.NormalizeEmail(u.Email)
		if u.Email == "" {
			return nil, fmt.Errorf("roster entry %d has no email", i)
		}
		if _, dup := seen[u.Email]; dup {
			return nil, fmt.Errorf("roster lists %s twice", u.Email)
		}
		seen[u.Email] = struct{}{}
		out = append(out, u)
	}
	return out, nil
}
