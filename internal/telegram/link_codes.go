package telegram

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// DefaultLinkCodeTTL is how long a link code can be redeemed.
const DefaultLinkCodeTTL = 10 * time.Minute

// LinkCodes are short one-time codes a user sends to the bot to connect their
// Telegram chat to their account.
type LinkCodes struct {
	codes *cache.Cache
}

func NewLinkCodes(ttl time.Duration) *LinkCodes {
	return &LinkCodes{codes: cache.New(ttl, 2*ttl)}
}

// Issue returns a fresh code for userID.
func (l *LinkCodes) Issue(userID string) string {
	code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	l.codes.SetDefault(code, userID)
	return code
}

// Redeem consumes code and returns its user.
func (l *LinkCodes) Redeem(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	v, ok := l.codes.Get(code)
	if !ok {
		return "", false
	}
	l.codes.Delete(code)
	return v.(string), true
}
