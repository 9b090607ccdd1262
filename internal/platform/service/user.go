package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/lecternhq/lectern/internal/platform/domain"
	"github.com/lecternhq/lectern/internal/platform/store"
	"github.com/lecternhq/lectern/pkg/cryptox"
	"github.com/lecternhq/lectern/pkg/idx"
	"github.com/lecternhq/lectern/pkg/slogx"
)

var (
	ErrPinnedRootAdmin = errors.New("pinned_root_admin")
	ErrInvalidRole     = errors.New("invalid_role")
)

// UserService owns user administration. The pinned list feeds the demotion
// guard: no caller, root admin or not, may deactivate or strip the admin
// flags of a pinned identity through this service.
type UserService struct {
	Store  store.Store
	Pinned []string
}

func (s *UserService) GetUser(ctx context.Context, id string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}

// CreateUser registers a new account with a freshly hashed password. New
// accounts are active and carry no admin flags; promotion is a separate,
// audited mutation.
func (s *UserService) CreateUser(ctx context.Context, username, preferredName, password string, role domain.Role) (domain.User, error) {
	if !role.Valid() {
		return domain.User{}, ErrInvalidRole
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:            idx.New().String(),
		Username:      username,
		PreferredName: preferredName,
		PasswordHash:  hash,
		Role:          role,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user created",
		"user_id", user.ID, "username", username, "role", role)
	return user, nil
}

// UpdateUserFlags applies a partial edit of role/active/admin flags. Edits
// that would demote or deactivate a pinned identity are rejected outright;
// the pinned list is the floor under the root-admin invariant and must not
// be erodible through the API.
func (s *UserService) UpdateUserFlags(ctx context.Context, userID string, upd domain.UserFlagsUpdate) (domain.User, error) {
	if upd.Role != nil && !upd.Role.Valid() {
		return domain.User{}, ErrInvalidRole
	}

	if s.isPinned(userID) && demotes(upd) {
		slogx.FromContext(ctx).Warn("demotion of pinned identity rejected", "user_id", userID)
		return domain.User{}, ErrPinnedRootAdmin
	}

	var user domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdateUserFlags(ctx, userID, upd); err != nil {
			return err
		}
		var err error
		user, err = tx.Users().GetUserByID(ctx, userID)
		return err
	})
	return user, err
}

// ChangePassword rotates a user's own credential. The current password is
// re-verified so a hijacked session cannot lock the real owner out silently.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := cryptox.VerifyPassword(current, user.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password changed", "user_id", userID)
	return nil
}

func (s *UserService) isPinned(userID string) bool {
	return slices.Contains(s.Pinned, userID)
}

// demotes reports whether the update would deactivate the account or strip
// either admin flag.
func demotes(upd domain.UserFlagsUpdate) bool {
	if upd.IsActive != nil && !*upd.IsActive {
		return true
	}
	if upd.IsAdmin != nil && !*upd.IsAdmin {
		return true
	}
	if upd.IsRootAdmin != nil && !*upd.IsRootAdmin {
		return true
	}
	return false
}
