package constants

// Session and context keys
const (
	SessionCookieName     = "board_session"
	ContextKeyAuthed      = "authenticated"
	ContextKeyTask        = "task"
	SessionMaxAgeSeconds  = 86400 * 7
	RedisSessionPoolSize  = 10
	GeneratedSecretLength = 32
)

// Schema
const (
	SchemaVersion = 2
)

// Identifier prefixes
const (
	ProjectIDPrefix = "proj"
	TaskIDPrefix    = "task"
)

// Validation limits
const (
	MaxProjectNameLength = 255
	MaxTaskTitleLength   = 255
	MaxAITextLength      = 4000
)
