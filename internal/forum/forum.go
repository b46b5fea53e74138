// Package forum implements the composite operations behind the HTTP API:
// each call checks the caller, validates input and coordinates the store,
// identity provider and duplicate guard.
package forum

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/TechTitans1233/FORUMweb-sub000/internal/auth"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/dedupe"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/models"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/store"
	"github.com/go-playground/validator/v10"
)

var (
	ErrMissingFields       = errors.New("missing required fields")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthenticated     = auth.ErrUnauthenticated
	ErrInvalidToken        = auth.ErrInvalidToken
	ErrInvalidCredentials  = auth.ErrInvalidCredentials
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrDuplicateSubmission = errors.New("duplicate submission")
	ErrUpstream            = errors.New("upstream failure")
)

// Deps are the collaborators of a Service.
type Deps struct {
	Store       *store.Store
	Identity    auth.Provider
	Tokens      *auth.Tokens
	Guard       dedupe.Guard
	AdminSecret string
}

type Service struct {
	store       *store.Store
	identity    auth.Provider
	tokens      *auth.Tokens
	guard       dedupe.Guard
	adminSecret string
	validate    *validator.Validate
}

func New(d Deps) *Service {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &Service{
		store:       d.Store,
		identity:    d.Identity,
		tokens:      d.Tokens,
		guard:       d.Guard,
		adminSecret: d.AdminSecret,
		validate:    v,
	}
}

// check validates in (a pointer to a struct) and turns failures into
// ErrMissingFields or ErrInvalidInput.
func (s *Service) check(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	var missing, invalid []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		} else {
			invalid = append(invalid, fe.Field())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(invalid, ", "))
}

// requireActor rejects anonymous callers.
func requireActor(actor *auth.Claims) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	return nil
}

// canModify reports whether actor may change a resource owned by ownerID.
func canModify(actor *auth.Claims, ownerID string) bool {
	return actor != nil && (actor.IsAdmin() || actor.UserID() == ownerID)
}

func requireAdmin(actor *auth.Claims) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: administrator only", ErrForbidden)
	}
	return nil
}

// storeErr maps repository errors onto the service sentinels.
func storeErr(err error, what string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, store.ErrAlreadyExists):
		return fmt.Errorf("%w: %s", ErrConflict, what)
	}
	return upstream(err)
}

func upstream(err error) error {
	return fmt.Errorf("%w: %w", ErrUpstream, err)
}

// notify stores an in-app notification. Failures are logged and dropped.
func (s *Service) notify(ctx context.Context, recipientID, message string) {
	n := &models.Notification{RecipientID: recipientID, Message: message}
	if err := s.store.Notifications.Create(ctx, n); err != nil {
		slog.Warn("notification not delivered", "recipient", recipientID, "error", err)
	}
}

func trim(ps ...*string) {
	for _, p := range ps {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}
