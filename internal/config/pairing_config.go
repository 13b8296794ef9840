package config

import "time"

const (
	// Pool
	DefaultPoolTTL          = 15 * time.Minute
	DefaultMoodCompanyLimit = 10

	// Pairing
	DefaultChatTTL       = 24 * time.Hour
	DefaultGateTTL       = 5 * time.Minute
	DefaultClaimAttempts = 3

	// Reveal
	RevealRuleUsername = "username"
	RevealRuleRealName = "real_name"
	RevealRuleAny      = "any"

	// Lifecycle
	DefaultSweepInterval  = time.Minute
	DefaultMatchRetention = 30 * 24 * time.Hour

	// Limits
	MaxChoiceLength  = 200
	MaxGuessLength   = 120
	MaxMessageLength = 4000
	MaxMessagesPage  = 100

	// Notifications
	DefaultNotifyTimeout = 5 * time.Second
)
