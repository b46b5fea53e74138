package forum

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/TechTitans1233/FORUMweb-sub000/internal/auth"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/models"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/store"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=80"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is the result of a successful login.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user,omitempty"`
}

// UpdateUserInput carries the fields to change; nil means unchanged. Owners
// must confirm with their current password, administrators need not.
type UpdateUserInput struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=80"`
	Email           *string `json:"email" validate:"omitempty,email,max=120"`
	CurrentPassword string  `json:"currentPassword"`
}

type UpdateUserResult struct {
	User                *models.User `json:"user"`
	PublicationsUpdated int64        `json:"publicacoesAtualizadas"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(email)
}

// Register creates the credential and the profile of a new user and returns
// the profile with its generated id.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	trim(&in.Name, &in.Email)
	if err := s.check(&in); err != nil {
		return nil, err
	}
	email := normalizeEmail(in.Email)

	taken, err := s.store.Users.EmailTaken(ctx, email)
	if err != nil {
		return nil, upstream(err)
	}
	if taken {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	uid := models.NewID()
	if err := s.identity.CreateUser(ctx, uid, email, in.Password); err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		case errors.Is(err, auth.ErrWeakPassword):
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, upstream(err)
	}

	user := &models.User{ID: uid, Name: in.Name, Email: email}
	if err := s.store.Users.Create(ctx, user); err != nil {
		if rbErr := s.identity.DeleteUser(ctx, uid); rbErr != nil {
			slog.Error("credential rollback failed", "uid", uid, "error", rbErr)
		}
		return nil, storeErr(err, "email already registered")
	}
	slog.Info("user registered", "uid", uid)
	return user, nil
}

// Login checks the credentials and issues a user session token.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	trim(&in.Email)
	if err := s.check(&in); err != nil {
		return nil, err
	}
	uid, err := s.identity.VerifyPassword(ctx, normalizeEmail(in.Email), in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, upstream(err)
	}
	user, err := s.store.Users.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.Warn("credential without profile", "uid", uid)
			return nil, ErrInvalidCredentials
		}
		return nil, upstream(err)
	}
	token, exp, err := s.tokens.IssueUser(user.ID, user.Name)
	if err != nil {
		return nil, upstream(err)
	}
	return &Session{Token: token, ExpiresAt: exp, User: user}, nil
}

// AdminLogin compares password with the configured administrator secret.
// An empty secret disables administrator logins.
func (s *Service) AdminLogin(_ context.Context, password string) (*Session, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: password", ErrMissingFields)
	}
	if s.adminSecret == "" {
		return nil, fmt.Errorf("%w: administrator login disabled", ErrForbidden)
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.adminSecret)) != 1 {
		slog.Warn("failed administrator login")
		return nil, ErrInvalidCredentials
	}
	token, exp, err := s.tokens.IssueAdmin()
	if err != nil {
		return nil, upstream(err)
	}
	return &Session{Token: token, ExpiresAt: exp}, nil
}

// VerifyToken returns the claims of a session token.
func (s *Service) VerifyToken(raw string) (*auth.Claims, error) {
	return s.tokens.Verify(raw)
}

func (s *Service) GetUser(ctx context.Context, actor *auth.Claims, id string) (*models.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	user, err := s.store.Users.Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, actor *auth.Claims) ([]models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	users, err := s.store.Users.List(ctx)
	if err != nil {
		return nil, upstream(err)
	}
	return users, nil
}

// UpdateUser changes name and/or email of a user. A name change is copied to
// every publication of the user; if that copy fails the rename itself has
// already been stored and the error is ErrUpstream.
func (s *Service) UpdateUser(ctx context.Context, actor *auth.Claims, id string, in UpdateUserInput) (*UpdateUserResult, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !canModify(actor, id) {
		return nil, ErrForbidden
	}
	trim(in.Name, in.Email)
	if in.Name == nil && in.Email == nil {
		return nil, fmt.Errorf("%w: name or email", ErrMissingFields)
	}
	if (in.Name != nil && *in.Name == "") || (in.Email != nil && *in.Email == "") {
		return nil, fmt.Errorf("%w: name or email is empty", ErrMissingFields)
	}
	if err := s.check(&in); err != nil {
		return nil, err
	}

	current, err := s.store.Users.Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, "user")
	}

	if !actor.IsAdmin() {
		if in.CurrentPassword == "" {
			return nil, fmt.Errorf("%w: currentPassword", ErrMissingFields)
		}
		uid, err := s.identity.VerifyPassword(ctx, current.Email, in.CurrentPassword)
		if err != nil || uid != id {
			if err != nil && !errors.Is(err, auth.ErrInvalidCredentials) {
				return nil, upstream(err)
			}
			return nil, ErrInvalidCredentials
		}
	}

	fields := map[string]any{}
	renamed := in.Name != nil && *in.Name != current.Name
	if renamed {
		fields["name"] = *in.Name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email != current.Email {
			owner, err := s.store.Users.GetByEmail(ctx, email)
			switch {
			case err == nil && owner.ID != id:
				return nil, fmt.Errorf("%w: email already registered", ErrConflict)
			case err != nil && !errors.Is(err, store.ErrNotFound):
				return nil, upstream(err)
			}
			if err := s.identity.UpdateEmail(ctx, id, email); err != nil {
				if errors.Is(err, auth.ErrEmailExists) {
					return nil, fmt.Errorf("%w: email already registered", ErrConflict)
				}
				return nil, upstream(err)
			}
			fields["email"] = email
		}
	}
	if len(fields) == 0 {
		return &UpdateUserResult{User: current}, nil
	}

	user, err := s.store.Users.Update(ctx, id, fields)
	if err != nil {
		if _, changed := fields["email"]; changed {
			if rbErr := s.identity.UpdateEmail(ctx, id, current.Email); rbErr != nil {
				slog.Error("credential email rollback failed", "uid", id, "error", rbErr)
			}
		}
		return nil, storeErr(err, "user")
	}
	result := &UpdateUserResult{User: user}
	if renamed {
		n, err := s.store.Publications.RenameAuthor(ctx, id, user.Name)
		if err != nil {
			return result, fmt.Errorf("%w: user renamed but publications keep the old name: %w", ErrUpstream, err)
		}
		result.PublicationsUpdated = n
		slog.Info("author name propagated", "uid", id, "publications", n)
	}
	return result, nil
}

// UpdateUserImage sets the profile picture URL.
func (s *Service) UpdateUserImage(ctx context.Context, actor *auth.Claims, id, imageURL string) (*models.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !canModify(actor, id) {
		return nil, ErrForbidden
	}
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, fmt.Errorf("%w: imageUrl", ErrMissingFields)
	}
	user, err := s.store.Users.Update(ctx, id, map[string]any{"image_url": imageURL})
	if err != nil {
		return nil, storeErr(err, "user")
	}
	return user, nil
}

// DeleteUser removes the profile, the credential and everything the user
// authored or received.
func (s *Service) DeleteUser(ctx context.Context, actor *auth.Claims, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !canModify(actor, id) {
		return ErrForbidden
	}
	if _, err := s.store.Users.Get(ctx, id); err != nil {
		return storeErr(err, "user")
	}
	n, err := s.store.Publications.DeleteByAuthor(ctx, id)
	if err != nil {
		return upstream(err)
	}
	if err := s.store.Friendships.DeleteByUser(ctx, id); err != nil {
		return upstream(err)
	}
	if err := s.store.Notifications.DeleteForRecipient(ctx, id); err != nil {
		return upstream(err)
	}
	if err := s.store.Users.Delete(ctx, id); err != nil {
		return storeErr(err, "user")
	}
	if err := s.identity.DeleteUser(ctx, id); err != nil && !errors.Is(err, auth.ErrUserNotFound) {
		return upstream(err)
	}
	slog.Info("user deleted", "uid", id, "publications", n)
	return nil
}
