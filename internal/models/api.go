package models

// Request and response bodies of the HTTP API, shared by the server and the client

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SignUpRequest represents a request to create an account
type SignUpRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6,max=72"`
	Metadata Metadata `json:"metadata"`
}

// SignInRequest represents a request to sign in
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned on successful sign-up or sign-in
type AuthResponse struct {
	User  Identity `json:"user"`
	Token string   `json:"token"`
}

// ProfileInput holds the editable fields of a profile
type ProfileInput struct {
	Name           string   `json:"name" validate:"required,max=100"`
	Role           string   `json:"role" validate:"crewrole"`
	Experience     string   `json:"experience" validate:"max=100"`
	Age            int      `json:"age" validate:"min=16,max=99"`
	Nationality    string   `json:"nationality" validate:"max=100"`
	Languages      []string `json:"languages" validate:"max=20,dive,required"`
	Certifications []string `json:"certifications" validate:"max=50,dive,required"`
	Interests      []string `json:"interests" validate:"max=50,dive,required"`
	Bio            string   `json:"bio" validate:"max=2000"`
	Availability   string   `json:"availability" validate:"max=200"`
}

// UploadRequest represents a request to get a pre-signed URL
type UploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// UploadResponse represents the response with pre-signed URL
type UploadResponse struct {
	UploadURL string `json:"upload_url"`
	Photo     Photo  `json:"photo"`
	ExpiresIn int    `json:"expires_in"`
}

// SwipeRequest represents a committed swipe sent by a client
type SwipeRequest struct {
	CandidateUserID string `json:"candidate_user_id"`
	Direction       string `json:"direction"`
}

// SwipeResult reports whether a swipe produced a match
type SwipeResult struct {
	Matched bool   `json:"matched"`
	Match   *Match `json:"match,omitempty"`
}

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	Content string `json:"content"`
}

// Realtime frame types
const (
	WSTypeSubscribe       = "subscribe"
	WSTypeUnsubscribe     = "unsubscribe"
	WSTypeSubscribed      = "subscribed"
	WSTypeUnsubscribed    = "unsubscribed"
	WSTypeMessageInserted = "message_inserted"
	WSTypeMatchCreated    = "match_created"
	WSTypeError           = "error"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	MatchID string      `json:"match_id,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}
