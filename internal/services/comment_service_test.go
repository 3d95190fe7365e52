package services

import (
	"context"
	"sync"
	"testing"

	"musteat-service/internal/models"
	"musteat-service/internal/repositories/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeCommentNotifier struct {
	mu       sync.Mutex
	comments int
	replies  int
}

func (f *fakeCommentNotifier) CommentAdded(_, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments++
}

func (f *fakeCommentNotifier) ReplyAdded(_, _, _, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies++
}

func newTestCommentService(t *testing.T) (CommentService, *gorm.DB, *fakeCommentNotifier) {
	t.Helper()
	db := newTestDB(t)
	notifier := &fakeCommentNotifier{}
	svc := NewCommentService(
		postgres.NewCommentRepository(db),
		postgres.NewEntryRepository(db),
		postgres.NewUserRepository(db),
		notifier,
	)
	return svc, db, notifier
}

func TestAddCommentBumpsCountAndNotifies(t *testing.T) {
	svc, db, notifier := newTestCommentService(t)
	owner := seedUser(t, db, "owner")
	commenter := seedUser(t, db, "commenter")
	entry := seedEntry(t, db, owner.ID, "pho place")
	ctx := context.Background()

	comment, err := svc.Add(ctx, commenter.ID, &models.AddCommentRequest{EntryID: entry.ID, Content: "so good"})
	require.NoError(t, err)
	assert.Nil(t, comment.ParentID)

	var stored models.Entry
	require.NoError(t, db.First(&stored, "id = ?", entry.ID).Error)
	assert.Equal(t, 1, stored.CommentCount)
	assert.Equal(t, 1, notifier.comments)

	_, err = svc.Add(ctx, commenter.ID, &models.AddCommentRequest{EntryID: "missing", Content: "x"})
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestReplyThreadsOffRoot(t *testing.T) {
	svc, db, notifier := newTestCommentService(t)
	owner := seedUser(t, db, "owner")
	entry := seedEntry(t, db, owner.ID, "pho place")
	ctx := context.Background()

	top, err := svc.Add(ctx, owner.ID, &models.AddCommentRequest{EntryID: entry.ID, Content: "top"})
	require.NoError(t, err)

	reply, err := svc.Reply(ctx, owner.ID, &models.ReplyCommentRequest{EntryID: entry.ID, Content: "first reply", ParentID: top.ID})
	require.NoError(t, err)
	require.NotNil(t, reply.RootID)
	assert.Equal(t, top.ID, *reply.RootID)

	// A reply to a reply still hangs off the thread root.
	nested, err := svc.Reply(ctx, owner.ID, &models.ReplyCommentRequest{EntryID: entry.ID, Content: "nested", ParentID: reply.ID})
	require.NoError(t, err)
	require.NotNil(t, nested.RootID)
	assert.Equal(t, top.ID, *nested.RootID)
	assert.Equal(t, owner.ID, nested.ReplyToUserID)

	assert.Equal(t, 2, notifier.replies)
}

func TestListInlinesRepliesAnonymously(t *testing.T) {
	svc, db, _ := newTestCommentService(t)
	owner := seedUser(t, db, "owner")
	entry := seedEntry(t, db, owner.ID, "pho place")
	ctx := context.Background()

	top, err := svc.Add(ctx, owner.ID, &models.AddCommentRequest{EntryID: entry.ID, Content: "top"})
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := svc.Reply(ctx, owner.ID, &models.ReplyCommentRequest{EntryID: entry.ID, Content: "r", ParentID: top.ID})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, entry.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Comments, 1)
	assert.Equal(t, models.AnonymousName, page.Comments[0].CreatorName)
	assert.Len(t, page.Comments[0].Replies, 3, "only the leading replies are inlined")
	assert.Equal(t, int64(4), page.Comments[0].ReplyCount)
}

func TestToggleLike(t *testing.T) {
	svc, db, _ := newTestCommentService(t)
	owner := seedUser(t, db, "owner")
	liker := seedUser(t, db, "liker")
	entry := seedEntry(t, db, owner.ID, "pho place")
	ctx := context.Background()

	comment, err := svc.Add(ctx, owner.ID, &models.AddCommentRequest{EntryID: entry.ID, Content: "top"})
	require.NoError(t, err)

	liked, err := svc.ToggleLike(ctx, liker.ID, comment.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	var stored models.Comment
	require.NoError(t, db.First(&stored, "id = ?", comment.ID).Error)
	assert.Equal(t, 1, stored.Likes)

	liked, err = svc.ToggleLike(ctx, liker.ID, comment.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	require.NoError(t, db.First(&stored, "id = ?", comment.ID).Error)
	assert.Equal(t, 0, stored.Likes)
}

func TestDeleteCommentCascades(t *testing.T) {
	svc, db, _ := newTestCommentService(t)
	owner := seedUser(t, db, "owner")
	other := seedUser(t, db, "other")
	entry := seedEntry(t, db, owner.ID, "pho place")
	ctx := context.Background()

	top, err := svc.Add(ctx, owner.ID, &models.AddCommentRequest{EntryID: entry.ID, Content: "top"})
	require.NoError(t, err)
	_, err = svc.Reply(ctx, other.ID, &models.ReplyCommentRequest{EntryID: entry.ID, Content: "r", ParentID: top.ID})
	require.NoError(t, err)

	err = svc.Delete(ctx, other.ID, top.ID)
	assert.ErrorIs(t, err, ErrNotCommentOwner)

	require.NoError(t, svc.Delete(ctx, owner.ID, top.ID))

	var count int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&count).Error)
	assert.Equal(t, int64(0), count, "replies go with the root")

	var stored models.Entry
	require.NoError(t, db.First(&stored, "id = ?", entry.ID).Error)
	assert.Equal(t, 0, stored.CommentCount)
}

type brokenCountEntryRepo struct {
	postgres.EntryRepository
}

func (r *brokenCountEntryRepo) AdjustCommentCount(_ context.Context, _ string, _ int) error {
	return gorm.ErrInvalidDB
}

// The comment count is display-only; a failed adjustment must not suppress
// the notification or fail the call.
func TestAddCommentNotifiesWhenCountAdjustFails(t *testing.T) {
	db := newTestDB(t)
	notifier := &fakeCommentNotifier{}
	svc := NewCommentService(
		postgres.NewCommentRepository(db),
		&brokenCountEntryRepo{EntryRepository: postgres.NewEntryRepository(db)},
		postgres.NewUserRepository(db),
		notifier,
	)
	owner := seedUser(t, db, "owner")
	commenter := seedUser(t, db, "commenter")
	entry := seedEntry(t, db, owner.ID, "pho place")
	ctx := context.Background()

	comment, err := svc.Add(ctx, commenter.ID, &models.AddCommentRequest{EntryID: entry.ID, Content: "so good"})
	require.NoError(t, err)
	require.NotNil(t, comment)
	assert.Equal(t, 1, notifier.comments)

	reply, err := svc.Reply(ctx, commenter.ID, &models.ReplyCommentRequest{
		EntryID:  entry.ID,
		ParentID: comment.ID,
		Content:  "agreed",
	})
	require.NoError(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, 1, notifier.replies)
}
