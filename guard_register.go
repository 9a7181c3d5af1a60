package authcore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Register describes the register operation and its observable behavior.
//
// Register may return an error when input validation, dependency calls, or security checks fail.
// Register does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Guard) Register(ctx context.Context, username, email, password string) (*TokenPair, error) {
	if g == nil || g.users == nil || g.passwordHash == nil || g.registry == nil {
		return nil, ErrGuardNotReady
	}

	if err := g.checkRate(ctx, ClassAuth); err != nil {
		return nil, err
	}

	if err := g.validateUsername(username); err != nil {
		g.auditFailure(ctx, auditEventRegisterFailure, username, "username_policy")
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		g.auditFailure(ctx, auditEventRegisterFailure, username, "email_invalid")
		return nil, err
	}
	if err := g.validatePassword(password); err != nil {
		g.auditFailure(ctx, auditEventRegisterFailure, username, "password_policy")
		return nil, err
	}

	hash, err := g.passwordHash.Hash(password)
	if err != nil {
		g.auditFailure(ctx, auditEventRegisterFailure, username, "hash_failure")
		return nil, err
	}

	user, err := g.users.CreateUser(ctx, CreateUserInput{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			g.metricInc(MetricRegisterDuplicate)
			g.auditFailure(ctx, auditEventRegisterDuplicate, username, "duplicate")
			return nil, ErrDuplicateUser
		}
		g.auditFailure(ctx, auditEventRegisterFailure, username, "store_failure")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	pair, err := g.issueTokenPair(ctx, user)
	if err != nil {
		g.auditFailure(ctx, auditEventRegisterFailure, username, "token_issue_failure")
		return nil, err
	}

	g.metricInc(MetricRegisterSuccess)
	g.auditSuccess(ctx, auditEventRegisterSuccess, user.ID, user.Username)

	return pair, nil
}

func (g *Guard) validateUsername(username string) error {
	n := len(username)
	if n < g.config.Policy.MinUsernameLength || n > g.config.Policy.MaxUsernameLength {
		return ErrUsernamePolicy
	}
	if strings.TrimSpace(username) != username {
		return ErrUsernamePolicy
	}
	return nil
}

// validateEmail checks shape only. Deliverability is the host
// application's problem.
func validateEmail(email string) error {
	at := strings.IndexByte(email, '@')
	if at < 1 || at == len(email)-1 {
		return ErrUsernamePolicy
	}
	return nil
}

func (g *Guard) validatePassword(password string) error {
	n := len(password)
	if n < g.config.Policy.MinPasswordLength || n > g.config.Policy.MaxPasswordLength {
		return ErrPasswordPolicy
	}
	return nil
}
