package domain

import (
	"strings"
	"time"
)

type User struct {
	ID           int64  `json:"id"`
	Role         string `json:"role"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`

	// StripeAccountID is the user's connected payout account, set once
	// during onboarding and never replaced.
	StripeAccountID *string `json:"stripe_account_id,omitempty"`

	// PendingSession is the single in-flight checkout slot. A new
	// booking attempt overwrites it wholesale.
	PendingSession *CheckoutSession `json:"pending_session,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	User      *User  `json:"user"`
}
