package models

import "time"

// DefaultPhotoURL is shown for profiles without photos
const DefaultPhotoURL = "/default-profile.jpg"

// Crew positions a profile can hold
const (
	RoleCaptain          = "Captain"
	RoleFirstOfficer     = "First Officer"
	RoleChiefEngineer    = "Chief Engineer"
	RoleSecondEngineer   = "2nd Engineer"
	RoleThirdEngineer    = "3rd Engineer"
	RoleChiefStewardess  = "Chief Stewardess"
	RoleSecondStewardess = "2nd Stewardess"
	RoleThirdStewardess  = "3rd Stewardess"
	RoleStewardess       = "Stewardess"
	RoleChef             = "Chef"
	RoleSousChef         = "Sous Chef"
	RoleBosun            = "Bosun"
	RoleDeckhand         = "Deckhand"
)

// Roles lists every crew position in onboarding order
var Roles = []string{
	RoleCaptain,
	RoleFirstOfficer,
	RoleChiefEngineer,
	RoleSecondEngineer,
	RoleThirdEngineer,
	RoleChiefStewardess,
	RoleSecondStewardess,
	RoleThirdStewardess,
	RoleStewardess,
	RoleChef,
	RoleSousChef,
	RoleBosun,
	RoleDeckhand,
}

// IsRole reports whether role is a known crew position
func IsRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// User represents an account in the system
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	PushToken    *string   `json:"push_token,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity returns the public identity of the user
func (u *User) Identity() Identity {
	return Identity{
		ID:    u.ID,
		Email: u.Email,
		Metadata: Metadata{
			Name: u.Name,
			Role: u.Role,
		},
		CreatedAt: u.CreatedAt,
	}
}

// Metadata is display data supplied at sign-up
type Metadata struct {
	Name string `json:"name" yaml:"name"`
	Role string `json:"role" yaml:"role"`
}

// Identity is the signed-in user as seen by clients
type Identity struct {
	ID        string    `json:"id" yaml:"id"`
	Email     string    `json:"email" yaml:"email"`
	Metadata  Metadata  `json:"user_metadata" yaml:"user_metadata"`
	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at"`
}

// DisplayName returns the name to show in conversations
func (i Identity) DisplayName() string {
	if i.Metadata.Name != "" {
		return i.Metadata.Name
	}
	return i.Email
}

// UserID returns the identity id
func (i Identity) UserID() string {
	return i.ID
}

// Profile represents the crew card of a user
type Profile struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	Role           string    `json:"role"`
	Experience     string    `json:"experience"`
	Age            int       `json:"age"`
	Nationality    string    `json:"nationality"`
	Languages      []string  `json:"languages"`
	Certifications []string  `json:"certifications"`
	Interests      []string  `json:"interests"`
	Bio            string    `json:"bio"`
	Availability   string    `json:"availability"`
	Photos         []Photo   `json:"photos"`
	ImageURL       string    `json:"image_url"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Photo represents a profile picture
type Photo struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id"`
	URL       string    `json:"url"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

// Match represents an unordered pair of users who matched
type Match struct {
	ID        string    `json:"id"`
	User1ID   string    `json:"user1_id"`
	User2ID   string    `json:"user2_id"`
	CreatedAt time.Time `json:"created_at"`
}

// HasUser reports whether userID is on either side of the match
func (m *Match) HasUser(userID string) bool {
	return m.User1ID == userID || m.User2ID == userID
}

// Counterpart returns the other side of the match for userID
func (m *Match) Counterpart(userID string) (string, bool) {
	switch userID {
	case m.User1ID:
		return m.User2ID, true
	case m.User2ID:
		return m.User1ID, true
	}
	return "", false
}

// MatchWithProfile is a match resolved to the counterpart's profile
type MatchWithProfile struct {
	Match   Match   `json:"match"`
	Profile Profile `json:"profile"`
}

// Message represents a chat line inside a match
type Message struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"match_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Swipe directions
const (
	DirectionLeft  = "left"
	DirectionRight = "right"
)

// Swipe records a committed swipe of actor on target
type Swipe struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	TargetID  string    `json:"target_id"`
	Direction string    `json:"direction"`
	CreatedAt time.Time `json:"created_at"`
}
