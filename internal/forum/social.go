package forum

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/TechTitans1233/FORUMweb-sub000/internal/auth"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/models"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/store"
)

// LikePublication records actor's like and notifies the author.
func (s *Service) LikePublication(ctx context.Context, actor *auth.Claims, pubID string) (*models.Publication, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	pub, err := s.store.Likes.Like(ctx, pubID, actor.UserID())
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: publication already liked", ErrConflict)
		}
		return nil, storeErr(err, "publication")
	}
	if pub.AuthorID != actor.UserID() {
		s.notify(ctx, pub.AuthorID, fmt.Sprintf("%s curtiu sua publicação %q", actor.Name, pub.Title))
	}
	return pub, nil
}

// UnlikePublication removes actor's like; ErrNotFound when there is none.
func (s *Service) UnlikePublication(ctx context.Context, actor *auth.Claims, pubID string) (*models.Publication, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	pub, err := s.store.Likes.Unlike(ctx, pubID, actor.UserID())
	if err != nil {
		if errors.Is(err, store.ErrNotLiked) {
			return nil, fmt.Errorf("%w: publication not liked", ErrNotFound)
		}
		return nil, storeErr(err, "publication")
	}
	return pub, nil
}

func (s *Service) HasLiked(ctx context.Context, actor *auth.Claims, pubID string) (bool, error) {
	if err := requireActor(actor); err != nil {
		return false, err
	}
	liked, err := s.store.Likes.Exists(ctx, pubID, actor.UserID())
	if err != nil {
		return false, upstream(err)
	}
	return liked, nil
}

type CommentInput struct {
	PublicationID string `json:"publicacaoId" validate:"required"`
	Text          string `json:"comentario" validate:"required,max=2000"`
}

// CreateComment adds a comment and notifies the publication author.
func (s *Service) CreateComment(ctx context.Context, actor *auth.Claims, in CommentInput) (*models.Comment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	trim(&in.PublicationID, &in.Text)
	if err := s.check(&in); err != nil {
		return nil, err
	}
	pub, err := s.store.Publications.Get(ctx, in.PublicationID)
	if err != nil {
		return nil, storeErr(err, "publication")
	}
	name := actor.Name
	if !actor.IsAdmin() {
		author, err := s.store.Users.Get(ctx, actor.UserID())
		if err != nil {
			return nil, storeErr(err, "author")
		}
		name = author.Name
	}
	c := &models.Comment{
		PublicationID: pub.ID,
		AuthorID:      actor.UserID(),
		AuthorName:    name,
		Text:          in.Text,
	}
	if err := s.store.Comments.Create(ctx, c); err != nil {
		return nil, upstream(err)
	}
	if pub.AuthorID != actor.UserID() {
		s.notify(ctx, pub.AuthorID, fmt.Sprintf("%s comentou na sua publicação %q", name, pub.Title))
	}
	return c, nil
}

// ListComments returns the comments of a publication, oldest first.
func (s *Service) ListComments(ctx context.Context, pubID string) ([]models.Comment, error) {
	if _, err := s.store.Publications.Get(ctx, pubID); err != nil {
		return nil, storeErr(err, "publication")
	}
	comments, err := s.store.Comments.ListByPublication(ctx, pubID)
	if err != nil {
		return nil, upstream(err)
	}
	return comments, nil
}

// Follow makes actor follow followeeID and notifies the followee.
func (s *Service) Follow(ctx context.Context, actor *auth.Claims, followeeID string) (*models.Friendship, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	followeeID = strings.TrimSpace(followeeID)
	if followeeID == "" {
		return nil, fmt.Errorf("%w: followeeId", ErrMissingFields)
	}
	if followeeID == actor.UserID() {
		return nil, fmt.Errorf("%w: cannot follow yourself", ErrInvalidInput)
	}
	if _, err := s.store.Users.Get(ctx, followeeID); err != nil {
		return nil, storeErr(err, "user")
	}
	f, err := s.store.Friendships.Follow(ctx, actor.UserID(), followeeID)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: already following", ErrConflict)
		}
		return nil, upstream(err)
	}
	s.notify(ctx, followeeID, fmt.Sprintf("%s começou a seguir você", actor.Name))
	return f, nil
}

func (s *Service) Unfollow(ctx context.Context, actor *auth.Claims, followeeID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if err := s.store.Friendships.Unfollow(ctx, actor.UserID(), followeeID); err != nil {
		return storeErr(err, "not following")
	}
	return nil
}

func (s *Service) IsFollowing(ctx context.Context, actor *auth.Claims, followeeID string) (bool, error) {
	if err := requireActor(actor); err != nil {
		return false, err
	}
	ok, err := s.store.Friendships.Exists(ctx, actor.UserID(), followeeID)
	if err != nil {
		return false, upstream(err)
	}
	return ok, nil
}

// Following lists whom actor follows, newest first.
func (s *Service) Following(ctx context.Context, actor *auth.Claims) ([]models.Friendship, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	list, err := s.store.Friendships.Following(ctx, actor.UserID())
	if err != nil {
		return nil, upstream(err)
	}
	return list, nil
}

type NotificationInput struct {
	RecipientID string `json:"userId" validate:"required"`
	Message     string `json:"mensagem" validate:"required,max=500"`
}

func (s *Service) CreateNotification(ctx context.Context, actor *auth.Claims, in NotificationInput) (*models.Notification, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	trim(&in.RecipientID, &in.Message)
	if err := s.check(&in); err != nil {
		return nil, err
	}
	if _, err := s.store.Users.Get(ctx, in.RecipientID); err != nil {
		return nil, storeErr(err, "recipient")
	}
	n := &models.Notification{RecipientID: in.RecipientID, Message: in.Message}
	if err := s.store.Notifications.Create(ctx, n); err != nil {
		return nil, upstream(err)
	}
	return n, nil
}

// ListNotifications returns the notifications of recipientID, newest first.
// Only the recipient or an administrator may read them.
func (s *Service) ListNotifications(ctx context.Context, actor *auth.Claims, recipientID string) ([]models.Notification, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !canModify(actor, recipientID) {
		return nil, ErrForbidden
	}
	list, err := s.store.Notifications.ListForRecipient(ctx, recipientID)
	if err != nil {
		return nil, upstream(err)
	}
	return list, nil
}

func (s *Service) MarkNotificationRead(ctx context.Context, actor *auth.Claims, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if err := s.store.Notifications.MarkRead(ctx, id, actor.UserID()); err != nil {
		return storeErr(err, "notification")
	}
	return nil
}
