package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/TechTitans1233/FORUMweb-sub000/internal/database"
	"github.com/TechTitans1233/FORUMweb-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "dws.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	return New(db)
}

func seedUser(t *testing.T, s *Store, name, email string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: email}
	require.NoError(t, s.Users.Create(context.Background(), u))
	return u
}

func seedPublication(t *testing.T, s *Store, author *models.User, title string) *models.Publication {
	t.Helper()
	p := &models.Publication{
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Title:      title,
		Body:       "flooding near the river",
		Address:    "Rua A, 10",
		Lat:        -23.5,
		Lon:        -46.6,
	}
	require.NoError(t, s.Publications.Create(context.Background(), p))
	return p
}

func TestUsersEmailUnique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ana := seedUser(t, s, "Ana", "ana@x.com")

	byEmail, err := s.Users.GetByEmail(ctx, "ana@x.com")
	require.NoError(t, err)
	assert.Equal(t, ana.ID, byEmail.ID)
	_, err = s.Users.GetByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)

	taken, err := s.Users.EmailTaken(ctx, "ana@x.com")
	require.NoError(t, err)
	assert.True(t, taken)

	err = s.Users.Create(ctx, &models.User{Name: "Other", Email: "ana@x.com"})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestUsersUpdateAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "Ana", "ana@x.com")

	updated, err := s.Users.Update(ctx, u.ID, map[string]any{"name": "Ana2"})
	require.NoError(t, err)
	assert.Equal(t, "Ana2", updated.Name)

	_, err = s.Users.Update(ctx, "missing", map[string]any{"name": "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Users.Delete(ctx, u.ID))
	_, err = s.Users.Get(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Users.Delete(ctx, u.ID), ErrNotFound)
}

func TestRenameAuthorUpdatesEveryPublication(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ana := seedUser(t, s, "Ana", "ana@x.com")
	bia := seedUser(t, s, "Bia", "bia@x.com")
	for i := 0; i < 5; i++ {
		seedPublication(t, s, ana, fmt.Sprintf("alert %d", i))
	}
	other := seedPublication(t, s, bia, "not mine")

	n, err := s.Publications.RenameAuthor(ctx, ana.ID, "Ana2")
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	pubs, err := s.Publications.List(ctx, ListFilter{AuthorID: ana.ID})
	require.NoError(t, err)
	require.Len(t, pubs, 5)
	for _, p := range pubs {
		assert.Equal(t, "Ana2", p.AuthorName)
	}

	untouched, err := s.Publications.Get(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bia", untouched.AuthorName)
}

func TestRenameAuthorWithoutPublications(t *testing.T) {
	s := newTestStore(t)
	n, err := s.Publications.RenameAuthor(context.Background(), "nobody", "X")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLikeUnlikeKeepsCounter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ana := seedUser(t, s, "Ana", "ana@x.com")
	bia := seedUser(t, s, "Bia", "bia@x.com")
	p := seedPublication(t, s, ana, "alert")

	liked, err := s.Likes.Like(ctx, p.ID, bia.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), liked.LikeCount)

	_, err = s.Likes.Like(ctx, p.ID, bia.ID)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	exists, err := s.Likes.Exists(ctx, p.ID, bia.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	unliked, err := s.Likes.Unlike(ctx, p.ID, bia.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unliked.LikeCount)

	_, err = s.Likes.Unlike(ctx, p.ID, bia.ID)
	assert.ErrorIs(t, err, ErrNotLiked)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Likes.Like(ctx, "missing", bia.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentLikesDoNotDrift(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ana := seedUser(t, s, "Ana", "ana@x.com")
	p := seedPublication(t, s, ana, "alert")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Every user likes twice; exactly one of the two may win.
			user := fmt.Sprintf("user-%d", i%10)
			_, _ = s.Likes.Like(ctx, p.ID, user)
		}(i)
	}
	wg.Wait()

	got, err := s.Publications.Get(ctx, p.ID)
	require.NoError(t, err)
	count, err := s.Likes.Count(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), count)
	assert.Equal(t, count, got.LikeCount)
}

func TestDeleteManyRemovesDependents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ana := seedUser(t, s, "Ana", "ana@x.com")
	p1 := seedPublication(t, s, ana, "one")
	p2 := seedPublication(t, s, ana, "two")
	keep := seedPublication(t, s, ana, "three")

	_, err := s.Likes.Like(ctx, p1.ID, "u")
	require.NoError(t, err)
	require.NoError(t, s.Comments.Create(ctx, &models.Comment{PublicationID: p1.ID, AuthorID: "u", AuthorName: "U", Text: "hi"}))

	n, err := s.Publications.DeleteMany(ctx, []string{p1.ID, p2.ID, "missing"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	comments, err := s.Comments.ListByPublication(ctx, p1.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
	count, err := s.Likes.Count(ctx, p1.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = s.Publications.Get(ctx, keep.ID)
	assert.NoError(t, err)
	assert.ErrorIs(t, s.Publications.Delete(ctx, p1.ID), ErrNotFound)
}

func TestFriendships(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Friendships.Follow(ctx, "a", "b")
	require.NoError(t, err)
	_, err = s.Friendships.Follow(ctx, "a", "b")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	ok, err := s.Friendships.Exists(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Friendships.Exists(ctx, "b", "a")
	require.NoError(t, err)
	assert.False(t, ok, "follows are directed")

	following, err := s.Friendships.Following(ctx, "a")
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "b", following[0].FolloweeID)

	require.NoError(t, s.Friendships.Unfollow(ctx, "a", "b"))
	assert.ErrorIs(t, s.Friendships.Unfollow(ctx, "a", "b"), ErrNotFound)
}

func TestNotificationsMarkReadOnlyForRecipient(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	n := &models.Notification{RecipientID: "ana", Message: "Bia curtiu sua publicação"}
	require.NoError(t, s.Notifications.Create(ctx, n))

	assert.ErrorIs(t, s.Notifications.MarkRead(ctx, n.ID, "bia"), ErrNotFound)
	require.NoError(t, s.Notifications.MarkRead(ctx, n.ID, "ana"))

	list, err := s.Notifications.ListForRecipient(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Read)
}
