package api

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserToken is the unique identifier for the authenticated user.
	UserToken string `json:"user_token"`

	// Token is the JWT used for API authorization.
	Token string `json:"token"`
}

// ChangeUsernameRequest defines the payload for the username change endpoint.
type ChangeUsernameRequest struct {
	NewUsername string `json:"new_username" validate:"required,max=64"`
}

// ChangePasswordRequest defines the payload for the password change endpoint.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// EnqueueRequest defines the payload for submitting a captioning request.
// The image must be a base64-encoded payload; the owner is taken from the
// authenticated context, never from the body.
type EnqueueRequest struct {
	Image string `json:"image" validate:"required"`
}

// EnqueueResponse defines the response for the enqueue endpoint. ErrorMsg
// is non-null exactly when the request was rejected before reaching the
// queue; RequestToken is empty in that case.
type EnqueueResponse struct {
	RequestToken string  `json:"request_token"`
	ErrorMsg     *string `json:"error_msg"`
}

// HistoryEntry is one element of a user's caption history: either a
// persisted terminal result (Finished=true) or a request still queued or
// generating (Finished=false, empty title/description).
type HistoryEntry struct {
	Finished     bool   `json:"finished"`
	RequestToken string `json:"request_token"`
	Image        string `json:"image"`
	Title        string `json:"title"`
	Description  string `json:"description"`
}
