package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"musteat-service/internal/models"
	"musteat-service/internal/repositories/postgres"

	"github.com/IBM/sarama"
)

const (
	pushContentLimit = 20
	detailPagePath   = "/pages/detail/detail?id="
)

// Notifier creates in-app messages and hands push payloads to the broker when
// someone interacts with another user's content. Everything here is
// best-effort: each dispatch runs on its own goroutine with its own deadline,
// every failure is logged and swallowed, nothing is retried. A dropped
// notification is an accepted loss.
type Notifier struct {
	users      postgres.UserRepository
	entries    postgres.EntryRepository
	messages   postgres.MessageRepository
	producer   sarama.SyncProducer
	pushTopic  string
	templateID string
	timeout    time.Duration

	wg sync.WaitGroup
}

func NewNotifier(
	users postgres.UserRepository,
	entries postgres.EntryRepository,
	messages postgres.MessageRepository,
	producer sarama.SyncProducer,
	pushTopic, templateID string,
) *Notifier {
	return &Notifier{
		users:      users,
		entries:    entries,
		messages:   messages,
		producer:   producer,
		pushTopic:  pushTopic,
		templateID: templateID,
		timeout:    5 * time.Second,
	}
}

// Wait blocks until in-flight dispatches finish. Used on shutdown only.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// VoteCast notifies an entry's creator that someone voted on it.
func (n *Notifier) VoteCast(entryID, voterID string, direction models.Direction) {
	n.dispatch(func(ctx context.Context) {
		entry, sender, ok := n.resolve(ctx, entryID, voterID)
		if !ok || entry.CreatorID == voterID {
			return
		}

		content := sender.Name + " wants to eat your nomination"
		if direction == models.DirectionDown {
			content = sender.Name + " rejected your nomination"
		}
		n.deliver(ctx, &models.Message{
			ReceiverID:   entry.CreatorID,
			SenderID:     voterID,
			SenderName:   sender.Name,
			SenderAvatar: sender.Avatar,
			Type:         models.MessageTypeVote,
			Content:      content,
			EntryID:      entry.ID,
			EntryTitle:   entry.Name,
		})
	})
}

// CommentAdded notifies an entry's creator about a new comment.
func (n *Notifier) CommentAdded(entryID, commenterID string) {
	n.dispatch(func(ctx context.Context) {
		entry, sender, ok := n.resolve(ctx, entryID, commenterID)
		if !ok || entry.CreatorID == commenterID {
			return
		}
		n.deliver(ctx, &models.Message{
			ReceiverID:   entry.CreatorID,
			SenderID:     commenterID,
			SenderName:   models.AnonymousName,
			SenderAvatar: sender.Avatar,
			Type:         models.MessageTypeComment,
			Content:      models.AnonymousName + " commented on your nomination",
			EntryID:      entry.ID,
			EntryTitle:   entry.Name,
		})
	})
}

// ReplyAdded notifies a comment's author about a reply.
func (n *Notifier) ReplyAdded(entryID, replierID, receiverID, commentID string) {
	if receiverID == replierID {
		return
	}
	n.dispatch(func(ctx context.Context) {
		entry, sender, ok := n.resolve(ctx, entryID, replierID)
		if !ok {
			return
		}
		n.deliver(ctx, &models.Message{
			ReceiverID:   receiverID,
			SenderID:     replierID,
			SenderName:   models.AnonymousName,
			SenderAvatar: sender.Avatar,
			Type:         models.MessageTypeReply,
			Content:      models.AnonymousName + " replied to your comment",
			EntryID:      entry.ID,
			EntryTitle:   entry.Name,
			RelatedID:    commentID,
		})
	})
}

func (n *Notifier) dispatch(fn func(ctx context.Context)) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("notification dispatch panicked", "panic", r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		fn(ctx)
	}()
}

func (n *Notifier) resolve(ctx context.Context, entryID, senderID string) (*models.Entry, *models.User, bool) {
	entry, err := n.entries.FindByID(ctx, entryID)
	if err != nil {
		slog.Warn("notification skipped: entry lookup failed", "entry", entryID, "error", err)
		return nil, nil, false
	}
	sender, err := n.users.FindByID(ctx, senderID)
	if err != nil {
		// The sender not resolving is not worth dropping the message over.
		sender = &models.User{Name: "user", Avatar: "/images/placeholder-user.jpg"}
	}
	return entry, sender, true
}

// deliver writes the in-app message, then attempts the external push. Either
// half may fail independently; neither failure propagates.
func (n *Notifier) deliver(ctx context.Context, message *models.Message) {
	if err := n.messages.Create(ctx, message); err != nil {
		slog.Warn("in-app message create failed", "receiver", message.ReceiverID, "error", err)
		return
	}

	if n.producer == nil {
		return
	}

	payload := models.PushPayload{
		ReceiverID: message.ReceiverID,
		TemplateID: n.templateID,
		Content:    truncatePushContent(message.Content),
		PagePath:   detailPagePath + message.EntryID,
		SentAt:     time.Now().Format("2006-01-02 15:04"),
	}
	value, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("push payload marshal failed", "error", err)
		return
	}

	_, _, err = n.producer.SendMessage(&sarama.ProducerMessage{
		Topic: n.pushTopic,
		Key:   sarama.StringEncoder(message.ReceiverID),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		// Push failing (user not subscribed, broker away) is normal.
		slog.Debug("push hand-off skipped", "receiver", message.ReceiverID, "error", err)
	}
}

// truncatePushContent fits content into the template's 20-rune field.
func truncatePushContent(content string) string {
	runes := []rune(content)
	if len(runes) <= pushContentLimit {
		return content
	}
	return string(runes[:pushContentLimit-3]) + "..."
}
