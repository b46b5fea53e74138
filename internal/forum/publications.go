package forum

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/TechTitans1233/FORUMweb-sub000/internal/auth"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/dedupe"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/models"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/store"
	"gorm.io/datatypes"
)

// PublicationInput is a new warning as submitted by the client. Its JSON
// encoding is also the payload compared by the duplicate guard.
type PublicationInput struct {
	Title    string          `json:"title" validate:"required,max=200"`
	Body     string          `json:"body" validate:"required,max=5000"`
	Address  string          `json:"address" validate:"required,max=300"`
	Lat      *float64        `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon      *float64        `json:"lon" validate:"required,gte=-180,lte=180"`
	Shape    json.RawMessage `json:"shape,omitempty"`
	ImageURL string          `json:"imageUrl,omitempty"`
}

// PublicationPatch lists the fields to change; nil means unchanged.
type PublicationPatch struct {
	Title    *string         `json:"title" validate:"omitempty,max=200"`
	Body     *string         `json:"body" validate:"omitempty,max=5000"`
	Address  *string         `json:"address" validate:"omitempty,max=300"`
	Lat      *float64        `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lon      *float64        `json:"lon" validate:"omitempty,gte=-180,lte=180"`
	Shape    json.RawMessage `json:"shape,omitempty"`
	ImageURL *string         `json:"imageUrl"`
}

// compactShape validates a GeoJSON value and strips insignificant whitespace.
func compactShape(raw json.RawMessage) (datatypes.JSON, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, fmt.Errorf("%w: shape is not valid JSON", ErrInvalidInput)
	}
	return datatypes.JSON(buf.Bytes()), nil
}

// CreatePublication stores a new warning authored by actor. An identical
// submission by the same user inside the guard window is rejected with
// ErrDuplicateSubmission.
func (s *Service) CreatePublication(ctx context.Context, actor *auth.Claims, in PublicationInput) (*models.Publication, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		return nil, fmt.Errorf("%w: administrator sessions cannot publish", ErrForbidden)
	}
	trim(&in.Title, &in.Body, &in.Address, &in.ImageURL)
	if err := s.check(&in); err != nil {
		return nil, err
	}
	shape, err := compactShape(in.Shape)
	if err != nil {
		return nil, err
	}
	in.Shape = json.RawMessage(shape)

	author, err := s.store.Users.Get(ctx, actor.UserID())
	if err != nil {
		return nil, storeErr(err, "author")
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return nil, upstream(err)
	}
	if err := s.guard.Check(ctx, author.ID, payload); err != nil {
		if errors.Is(err, dedupe.ErrDuplicate) {
			slog.Info("duplicate publication rejected", "uid", author.ID)
			return nil, ErrDuplicateSubmission
		}
		return nil, upstream(err)
	}
	pub := &models.Publication{
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Title:      in.Title,
		Body:       in.Body,
		Address:    in.Address,
		Lat:        *in.Lat,
		Lon:        *in.Lon,
		Shape:      shape,
		ImageURL:   in.ImageURL,
	}
	if err := s.store.Publications.Create(ctx, pub); err != nil {
		if relErr := s.guard.Release(ctx, author.ID, payload); relErr != nil {
			slog.Warn("duplicate guard release failed", "uid", author.ID, "error", relErr)
		}
		return nil, storeErr(err, "publication")
	}
	return pub, nil
}

func (s *Service) GetPublication(ctx context.Context, id string) (*models.Publication, error) {
	pub, err := s.store.Publications.Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, "publication")
	}
	return pub, nil
}

// ListPublications returns publications newest first, optionally only those
// of one author.
func (s *Service) ListPublications(ctx context.Context, authorID string) ([]models.Publication, error) {
	pubs, err := s.store.Publications.List(ctx, store.ListFilter{AuthorID: authorID})
	if err != nil {
		return nil, upstream(err)
	}
	return pubs, nil
}

func (s *Service) UpdatePublication(ctx context.Context, actor *auth.Claims, id string, in PublicationPatch) (*models.Publication, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	pub, err := s.store.Publications.Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, "publication")
	}
	if !canModify(actor, pub.AuthorID) {
		return nil, ErrForbidden
	}
	trim(in.Title, in.Body, in.Address, in.ImageURL)
	if err := s.check(&in); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	for column, v := range map[string]*string{"title": in.Title, "body": in.Body, "address": in.Address} {
		if v == nil {
			continue
		}
		if *v == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingFields, column)
		}
		fields[column] = *v
	}
	if in.ImageURL != nil {
		fields["image_url"] = *in.ImageURL
	}
	if in.Lat != nil {
		fields["lat"] = *in.Lat
	}
	if in.Lon != nil {
		fields["lon"] = *in.Lon
	}
	if len(in.Shape) > 0 {
		shape, err := compactShape(in.Shape)
		if err != nil {
			return nil, err
		}
		fields["shape"] = shape
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrMissingFields)
	}

	updated, err := s.store.Publications.Update(ctx, id, fields)
	if err != nil {
		return nil, storeErr(err, "publication")
	}
	return updated, nil
}

func (s *Service) DeletePublication(ctx context.Context, actor *auth.Claims, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	pub, err := s.store.Publications.Get(ctx, id)
	if err != nil {
		return storeErr(err, "publication")
	}
	if !canModify(actor, pub.AuthorID) {
		return ErrForbidden
	}
	if err := s.store.Publications.Delete(ctx, id); err != nil {
		return storeErr(err, "publication")
	}
	return nil
}

// DeletePublications removes publications in bulk; administrators only.
func (s *Service) DeletePublications(ctx context.Context, actor *auth.Claims, ids []string) (int64, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: ids", ErrMissingFields)
	}
	n, err := s.store.Publications.DeleteMany(ctx, ids)
	if err != nil {
		return 0, upstream(err)
	}
	slog.Info("publications deleted", "requested", len(ids), "deleted", n)
	return n, nil
}
