package services

import (
	"context"
	"errors"
	"log/slog"

	"musteat-service/internal/models"
	"musteat-service/internal/repositories/postgres"

	"gorm.io/gorm"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("not the comment owner")
)

// CommentNotifier mirrors VoteNotifier for the comment side channels.
type CommentNotifier interface {
	CommentAdded(entryID, commenterID string)
	ReplyAdded(entryID, replierID, receiverID, commentID string)
}

type CommentService interface {
	Add(ctx context.Context, userID string, req *models.AddCommentRequest) (*models.Comment, error)
	Reply(ctx context.Context, userID string, req *models.ReplyCommentRequest) (*models.Comment, error)
	List(ctx context.Context, entryID string, page, pageSize int) (*models.CommentPage, error)
	Replies(ctx context.Context, rootID string, page, pageSize int) (*models.CommentPage, error)
	ToggleLike(ctx context.Context, userID, commentID string) (liked bool, err error)
	Delete(ctx context.Context, userID, commentID string) error
}

type commentService struct {
	comments postgres.CommentRepository
	entries  postgres.EntryRepository
	users    postgres.UserRepository
	notifier CommentNotifier
}

func NewCommentService(
	comments postgres.CommentRepository,
	entries postgres.EntryRepository,
	users postgres.UserRepository,
	notifier CommentNotifier,
) CommentService {
	return &commentService{
		comments: comments,
		entries:  entries,
		users:    users,
		notifier: notifier,
	}
}

func (s *commentService) Add(ctx context.Context, userID string, req *models.AddCommentRequest) (*models.Comment, error) {
	if userID == "" || req == nil || req.EntryID == "" || req.Content == "" {
		return nil, ErrInvalidArgument
	}
	if _, err := s.entries.FindByID(ctx, req.EntryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	comment := &models.Comment{
		EntryID:       req.EntryID,
		Content:       req.Content,
		CreatorID:     userID,
		CreatorAvatar: s.avatarOf(ctx, userID),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.CommentAdded(req.EntryID, userID)
	}
	if err := s.entries.AdjustCommentCount(ctx, req.EntryID, 1); err != nil {
		// The count is display-only and self-heals on the next recount.
		slog.Warn("comment count adjust failed", "entry", req.EntryID, "error", err)
	}
	return comment, nil
}

func (s *commentService) Reply(ctx context.Context, userID string, req *models.ReplyCommentRequest) (*models.Comment, error) {
	if userID == "" || req == nil || req.EntryID == "" || req.Content == "" || req.ParentID == "" {
		return nil, ErrInvalidArgument
	}
	parent, err := s.comments.FindByID(ctx, req.ParentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	// Replies hang off the thread root, not off each other.
	rootID := parent.ID
	if parent.RootID != nil {
		rootID = *parent.RootID
	}

	comment := &models.Comment{
		EntryID:       req.EntryID,
		Content:       req.Content,
		CreatorID:     userID,
		CreatorAvatar: s.avatarOf(ctx, userID),
		ParentID:      &parent.ID,
		RootID:        &rootID,
		ReplyToUserID: parent.CreatorID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.ReplyAdded(req.EntryID, userID, parent.CreatorID, comment.ID)
	}
	if err := s.entries.AdjustCommentCount(ctx, req.EntryID, 1); err != nil {
		slog.Warn("comment count adjust failed", "entry", req.EntryID, "error", err)
	}
	return comment, nil
}

// List returns one page of top-level comments, each with its first three
// replies inlined and the total reply count attached.
func (s *commentService) List(ctx context.Context, entryID string, page, pageSize int) (*models.CommentPage, error) {
	if entryID == "" {
		return nil, ErrInvalidArgument
	}
	page, pageSize = normalizePage(page, pageSize)

	total, err := s.comments.CountTop(ctx, entryID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListTop(ctx, entryID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	views := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		view := toCommentView(c)
		replies, err := s.comments.ListReplies(ctx, c.ID, 3, 0)
		if err == nil {
			for _, reply := range replies {
				view.Replies = append(view.Replies, toCommentView(reply))
			}
		}
		if count, err := s.comments.CountReplies(ctx, c.ID); err == nil {
			view.ReplyCount = count
		}
		views = append(views, view)
	}

	return &models.CommentPage{Comments: views, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *commentService) Replies(ctx context.Context, rootID string, page, pageSize int) (*models.CommentPage, error) {
	if rootID == "" {
		return nil, ErrInvalidArgument
	}
	page, pageSize = normalizePage(page, pageSize)

	total, err := s.comments.CountReplies(ctx, rootID)
	if err != nil {
		return nil, err
	}
	replies, err := s.comments.ListReplies(ctx, rootID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	views := make([]models.CommentView, 0, len(replies))
	for _, reply := range replies {
		views = append(views, toCommentView(reply))
	}
	return &models.CommentPage{Comments: views, Total: total, Page: page, PageSize: pageSize}, nil
}

// ToggleLike likes the comment, or removes the like when it already exists.
func (s *commentService) ToggleLike(ctx context.Context, userID, commentID string) (bool, error) {
	if userID == "" || commentID == "" {
		return false, ErrInvalidArgument
	}
	if _, err := s.comments.FindByID(ctx, commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrCommentNotFound
		}
		return false, err
	}

	existing, err := s.comments.FindLike(ctx, commentID, userID)
	switch {
	case err == nil:
		if err := s.comments.DeleteLike(ctx, existing.ID); err != nil {
			return false, err
		}
		return false, s.comments.AdjustLikes(ctx, commentID, -1)
	case errors.Is(err, gorm.ErrRecordNotFound):
		like := &models.CommentLike{CommentID: commentID, UserID: userID}
		if err := s.comments.CreateLike(ctx, like); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Double tap raced us; the first one won.
				return true, nil
			}
			return false, err
		}
		return true, s.comments.AdjustLikes(ctx, commentID, 1)
	default:
		return false, err
	}
}

// Delete removes the caller's own comment together with its replies and likes.
func (s *commentService) Delete(ctx context.Context, userID, commentID string) error {
	if userID == "" || commentID == "" {
		return ErrInvalidArgument
	}
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	if comment.CreatorID != userID {
		return ErrNotCommentOwner
	}

	removed := int64(1)
	if comment.ParentID == nil {
		if count, err := s.comments.CountReplies(ctx, comment.ID); err == nil {
			removed += count
		}
		if err := s.comments.DeleteByParent(ctx, comment.ID); err != nil {
			return err
		}
	}
	if err := s.comments.DeleteLikesByComment(ctx, comment.ID); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return err
	}
	return s.entries.AdjustCommentCount(ctx, comment.EntryID, -int(removed))
}

func (s *commentService) avatarOf(ctx context.Context, userID string) string {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return ""
	}
	return user.Avatar
}

func toCommentView(c models.Comment) models.CommentView {
	view := models.CommentView{
		ID:            c.ID,
		EntryID:       c.EntryID,
		Content:       c.Content,
		CreatorName:   models.AnonymousName,
		CreatorAvatar: c.CreatorAvatar,
		Likes:         c.Likes,
		Created:       c.Created,
	}
	if c.ReplyToUserID != "" {
		view.ReplyToName = models.AnonymousName
	}
	return view
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 50 {
		pageSize = 10
	}
	return page, pageSize
}
