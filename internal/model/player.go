package model

// Player roles as stored in the user collection
const (
	RolePlayer    = "player"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Placeholder values used when a profile lookup fails during matchmaking
const (
	DefaultPhotoURL = "/default-avatar.png"
	DefaultLevel    = 1
)

// PlayerProfile is the public projection of a user record consumed by the
// relay: enough to decorate chat messages and match-found notifications.
type PlayerProfile struct {
	Username string `json:"username"`
	PhotoURL string `json:"photoUrl"`
	Role     string `json:"role"`
	Level    int    `json:"level"`
}

// CanModerate reports whether the profile may manage the hidden-word list
func (p *PlayerProfile) CanModerate() bool {
	return p.Role == RoleModerator || p.Role == RoleAdmin
}

// PlaceholderProfile returns the fallback profile used when the store
// cannot resolve a username at pairing time
func PlaceholderProfile(username string) *PlayerProfile {
	return &PlayerProfile{
		Username: username,
		PhotoURL: DefaultPhotoURL,
		Role:     RolePlayer,
		Level:    DefaultLevel,
	}
}
