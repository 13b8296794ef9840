package pairing

import (
	"blindpair/backend/internal/config"
	"blindpair/backend/internal/models"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// IdentityComparer decides whether guess names target.
type IdentityComparer interface {
	Matches(guess string, target *models.User) bool
}

// ComparerFunc adapts a function to IdentityComparer.
type ComparerFunc func(guess string, target *models.User) bool

func (f ComparerFunc) Matches(guess string, target *models.User) bool { return f(guess, target) }

// Normalize maps equivalent spellings of a name to one form: NFKC, collapsed
// whitespace, no leading "@", case folded.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimSpace(strings.TrimPrefix(s, "@"))
	return cases.Fold().String(s)
}

// NewComparer returns the comparer for a reveal rule. Unknown rules fall back to
// "any".
func NewComparer(rule string) IdentityComparer {
	return ComparerFunc(func(guess string, target *models.User) bool {
		if target == nil {
			return false
		}
		g := Normalize(guess)
		if g == "" {
			return false
		}
		for _, name := range candidates(rule, target) {
			if n := Normalize(name); n != "" && n == g {
				return true
			}
		}
		return false
	})
}

func candidates(rule string, u *models.User) []string {
	switch rule {
	case config.RevealRuleUsername:
		return []string{u.Username}
	case config.RevealRuleRealName:
		return []string{u.RealName}
	}
	names := []string{u.Username, u.RealName}
	return append(names, u.Aliases...)
}
