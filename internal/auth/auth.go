// Package auth obtains the access tokens the Drive client sends.
//
// The Drive client depends only on [TokenSource]. Two sources are provided
// and combined by [Chain]: a [Static] first-party token taken from
// configuration, and a [WebFlow] that runs the OAuth authorisation code
// flow, stores the resulting tokens and refreshes them.
package auth

import (
	"context"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNotAuthenticated indicates that no usable token could be obtained.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrStateMismatch indicates a pasted redirect URL that does not answer
	// the consent URL shown to the user.
	ErrStateMismatch = errors.New("authorisation state mismatch")
)

// TokenSource hands out bearer tokens.
type TokenSource interface {
	// Token returns a usable access token. When interactive is false no
	// user interaction happens; an absent token yields ErrNotAuthenticated.
	Token(ctx context.Context, interactive bool) (string, error)
	// Invalidate drops token from any cache so the next Token call fetches
	// a fresh one. Unknown tokens are ignored.
	Invalidate(ctx context.Context, token string) error
}

// SignOuter is implemented by sources that can forget their credentials.
type SignOuter interface {
	SignOut(ctx context.Context) error
}
