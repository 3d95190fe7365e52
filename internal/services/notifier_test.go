package services

import (
	"strings"
	"testing"

	"musteat-service/internal/models"
	"musteat-service/internal/repositories/postgres"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifierVoteCastCreatesMessageAndPush(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	producer.ExpectSendMessageAndSucceed()

	db := newTestDB(t)
	users := postgres.NewUserRepository(db)
	entries := postgres.NewEntryRepository(db)
	messages := postgres.NewMessageRepository(db)
	n := NewNotifier(users, entries, messages, producer, "push-notifications", "tmpl-1")

	owner := seedUser(t, db, "owner")
	voter := seedUser(t, db, "voter")
	entry := seedEntry(t, db, owner.ID, "pho place")

	n.VoteCast(entry.ID, voter.ID, models.DirectionUp)
	n.Wait()

	var stored []models.Message
	require.NoError(t, db.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, owner.ID, stored[0].ReceiverID)
	assert.Equal(t, voter.ID, stored[0].SenderID)
	assert.Equal(t, models.MessageTypeVote, stored[0].Type)
	assert.Equal(t, entry.ID, stored[0].EntryID)

	require.NoError(t, producer.Close())
}

func TestNotifierSkipsSelfVote(t *testing.T) {
	db := newTestDB(t)
	users := postgres.NewUserRepository(db)
	entries := postgres.NewEntryRepository(db)
	messages := postgres.NewMessageRepository(db)
	n := NewNotifier(users, entries, messages, nil, "push-notifications", "tmpl-1")

	owner := seedUser(t, db, "owner")
	entry := seedEntry(t, db, owner.ID, "pho place")

	n.VoteCast(entry.ID, owner.ID, models.DirectionUp)
	n.Wait()

	var count int64
	require.NoError(t, db.Model(&models.Message{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestNotifierSwallowsMissingEntry(t *testing.T) {
	db := newTestDB(t)
	users := postgres.NewUserRepository(db)
	entries := postgres.NewEntryRepository(db)
	messages := postgres.NewMessageRepository(db)
	n := NewNotifier(users, entries, messages, nil, "push-notifications", "tmpl-1")

	voter := seedUser(t, db, "voter")

	// Must not panic and must not create anything.
	n.VoteCast("no-such-entry", voter.ID, models.DirectionUp)
	n.Wait()

	var count int64
	require.NoError(t, db.Model(&models.Message{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestNotifierWorksWithoutProducer(t *testing.T) {
	db := newTestDB(t)
	users := postgres.NewUserRepository(db)
	entries := postgres.NewEntryRepository(db)
	messages := postgres.NewMessageRepository(db)
	n := NewNotifier(users, entries, messages, nil, "push-notifications", "tmpl-1")

	owner := seedUser(t, db, "owner")
	voter := seedUser(t, db, "voter")
	entry := seedEntry(t, db, owner.ID, "pho place")

	n.VoteCast(entry.ID, voter.ID, models.DirectionDown)
	n.Wait()

	// The in-app message still lands; only the push is skipped.
	var count int64
	require.NoError(t, db.Model(&models.Message{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestNotifierPushFailureIsSilent(t *testing.T) {
	producer := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	db := newTestDB(t)
	users := postgres.NewUserRepository(db)
	entries := postgres.NewEntryRepository(db)
	messages := postgres.NewMessageRepository(db)
	n := NewNotifier(users, entries, messages, producer, "push-notifications", "tmpl-1")

	owner := seedUser(t, db, "owner")
	voter := seedUser(t, db, "voter")
	entry := seedEntry(t, db, owner.ID, "pho place")

	n.VoteCast(entry.ID, voter.ID, models.DirectionUp)
	n.Wait()

	// Push failed, message survives.
	var count int64
	require.NoError(t, db.Model(&models.Message{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, producer.Close())
}

func TestTruncatePushContent(t *testing.T) {
	t.Run("ShortPassesThrough", func(t *testing.T) {
		assert.Equal(t, "hello", truncatePushContent("hello"))
	})

	t.Run("ExactLimitPassesThrough", func(t *testing.T) {
		s := strings.Repeat("a", 20)
		assert.Equal(t, s, truncatePushContent(s))
	})

	t.Run("LongGetsEllipsis", func(t *testing.T) {
		s := strings.Repeat("a", 30)
		got := truncatePushContent(s)
		assert.Equal(t, strings.Repeat("a", 17)+"...", got)
		assert.Len(t, []rune(got), 20)
	})

	t.Run("CountsRunesNotBytes", func(t *testing.T) {
		s := strings.Repeat("火", 25)
		got := truncatePushContent(s)
		assert.Equal(t, strings.Repeat("火", 17)+"...", got)
		assert.Len(t, []rune(got), 20)
	})
}
