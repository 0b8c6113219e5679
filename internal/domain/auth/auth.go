// Package auth provides explicit identity and authorization checks.
//
// There is no ambient session state: callers authenticate credentials into an
// Identity value and pass it into each use case, which asks for an explicit
// Decision before doing any work.
package auth

import (
	"context"
	"crypto/subtle"
)

// Role distinguishes judges from admins.
type Role string

const (
	RoleJudge Role = "judge"
	RoleAdmin Role = "admin"
)

// Identity is an authenticated caller.
type Identity struct {
	Name string
	Role Role
}

// Decision is the result of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow returns a permitting decision.
func Allow() Decision { return Decision{Allowed: true} }

// Deny returns a denying decision with a reason.
func Deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

// CredentialSource supplies the current credential lists, read fresh per call.
type CredentialSource interface {
	JudgeCredentials(ctx context.Context) (map[string]string, error)
	AdminCredentials(ctx context.Context) (map[string]string, error)
}

// Authenticate resolves credentials into an Identity. Admins are checked
// before judges, so a username present in both lists authenticates as admin.
func Authenticate(ctx context.Context, src CredentialSource, username, secret string) (Identity, error) {
	admins, err := src.AdminCredentials(ctx)
	if err != nil {
		return Identity{}, err
	}
	if match(admins, username, secret) {
		return Identity{Name: username, Role: RoleAdmin}, nil
	}

	judges, err := src.JudgeCredentials(ctx)
	if err != nil {
		return Identity{}, err
	}
	if match(judges, username, secret) {
		return Identity{Name: username, Role: RoleJudge}, nil
	}

	return Identity{}, ErrBadCredentials
}

func match(creds map[string]string, username, secret string) bool {
	want, ok := creds[username]
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(secret)) == 1
}

// RequireJudge checks that id may submit and view its own scores.
func RequireJudge(id Identity) Decision {
	if id.Role != RoleJudge {
		return Deny("judge access required")
	}
	return Allow()
}

// RequireAdmin checks that id may read raw records, rankings, and exports.
func RequireAdmin(id Identity) Decision {
	if id.Role != RoleAdmin {
		return Deny("admin access required")
	}
	return Allow()
}
