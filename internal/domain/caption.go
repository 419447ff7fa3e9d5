package domain

import (
	"errors"

	"github.com/google/uuid"
)

// Common validation errors for caption entities.
var (
	ErrEmptyRequestToken = errors.New("request token cannot be empty")
	ErrEmptyUserToken    = errors.New("user token cannot be empty")
	ErrEmptyImage        = errors.New("image payload cannot be empty")
)

// CaptionRequest represents a pending request to caption a single image.
// It exists only while the request is queued or in flight; once a
// CaptionResult has been persisted the request ceases to be a live entity.
//
// RequestToken is minted exactly once, by the job queue at enqueue time, and
// is immutable afterwards. The image payload is an opaque base64-encoded
// string; the pipeline never interprets it.
type CaptionRequest struct {
	RequestToken string `json:"request_token"`
	UserToken    string `json:"user_token"`
	Image        string `json:"image"`
}

// NewCaptionRequest creates a CaptionRequest for the given owner and image.
// The request token is left empty; the job queue assigns it at enqueue time.
func NewCaptionRequest(userToken, image string) (*CaptionRequest, error) {
	req := &CaptionRequest{
		UserToken: userToken,
		Image:     image,
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return req, nil
}

// Validate checks the request fields that must be set before enqueueing.
// The request token is intentionally not checked: it is empty until the
// queue mints it.
func (r *CaptionRequest) Validate() error {
	if r.UserToken == "" {
		return ErrEmptyUserToken
	}
	if r.Image == "" {
		return ErrEmptyImage
	}
	return nil
}

// CaptionResult is the terminal outcome of a caption request. A result with
// empty Title and Description is the sentinel for exhausted retries; it is a
// valid outcome, not an error object.
type CaptionResult struct {
	RequestToken string `json:"request_token"`
	UserToken    string `json:"user_token"`
	Image        string `json:"image"`
	Title        string `json:"title"`
	Description  string `json:"description"`
}

// NewCaptionResult builds a successful result for the given request.
func NewCaptionResult(req *CaptionRequest, title, description string) *CaptionResult {
	return &CaptionResult{
		RequestToken: req.RequestToken,
		UserToken:    req.UserToken,
		Image:        req.Image,
		Title:        title,
		Description:  description,
	}
}

// NewSentinelResult builds the empty-caption sentinel recording that all
// captioning attempts for the request failed.
func NewSentinelResult(req *CaptionRequest) *CaptionResult {
	return NewCaptionResult(req, "", "")
}

// IsSentinel reports whether the result records exhausted retries rather
// than a generated caption.
func (r *CaptionResult) IsSentinel() bool {
	return r.Title == "" && r.Description == ""
}

// Validate checks that the result is complete enough to persist.
func (r *CaptionResult) Validate() error {
	if r.RequestToken == "" {
		return ErrEmptyRequestToken
	}
	if r.UserToken == "" {
		return ErrEmptyUserToken
	}
	if r.Image == "" {
		return ErrEmptyImage
	}
	return nil
}

// RequestQueryResult is the answer to a status query for a request token.
// It is recomputed on every query and never stored.
//
// Finished=false with Index=k means the request is still queued with k
// requests strictly ahead of it (0 = next to run). When Index is 0 and the
// token is no longer queued it means the request is currently being
// processed. Finished=true means the request has reached a terminal outcome
// (or the token was never issued).
type RequestQueryResult struct {
	Finished bool `json:"finished"`
	Index    int  `json:"index"`
}

// NewRequestToken mints a fresh globally-unique request token.
func NewRequestToken() string {
	return uuid.New().String()
}
