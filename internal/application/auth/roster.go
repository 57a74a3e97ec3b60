package auth

import "github.com/policy-letter-api/internal/domain"

// Roster answers whether an email may sign in and returns its signer profile.
type Roster interface {
	Lookup(email string) (domain.AuthorizedUser, bool)
}

// StaticRoster is an immutable allow-list loaded at startup.
type StaticRoster struct {
	byEmail map[string]domain.AuthorizedUser
}

func NewStaticRoster(users []domain.AuthorizedUser) *StaticRoster {
	m := make(map[string]domain.AuthorizedUser, len(users))
	for _, u := range users {
		u.Email = domain.NormalizeEmail(u.Email)
		m[u.Email] = u
	}
	return &StaticRoster{byEmail: m}
}

func (r *StaticRoster) Lookup(email string) (domain.AuthorizedUser, bool) {
	u, ok := r.byEmail[domain.NormalizeEmail(email)]
	return u, ok
}

func (r *StaticRoster) Len() int { return len(r.byEmail) }
