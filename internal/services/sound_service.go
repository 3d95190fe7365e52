package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"

	"musteat-service/internal/database"
	"musteat-service/internal/models"
	"musteat-service/internal/repositories/postgres"

	"gorm.io/gorm"
)

var (
	ErrSoundNotFound   = errors.New("sound not found")
	ErrNotSoundOwner   = errors.New("not the sound owner")
	ErrInvalidAction   = errors.New("unknown sound action")
	ErrClipTooLarge    = errors.New("audio clip exceeds size limit")
	ErrUnsupportedClip = errors.New("unsupported audio format")
)

// Recorded clips are short reaction sounds; anything bigger is a mistake.
const maxClipBytes = 2 << 20

type SoundService interface {
	Upload(ctx context.Context, userID, action, name string, file *multipart.FileHeader) (*models.UserSound, error)
	ListByUser(ctx context.Context, userID string) ([]models.UserSound, error)
	Delete(ctx context.Context, userID, soundID string) error
}

type soundService struct {
	sounds  postgres.SoundRepository
	storage *database.MinIOClient
}

func NewSoundService(sounds postgres.SoundRepository, storage *database.MinIOClient) SoundService {
	return &soundService{sounds: sounds, storage: storage}
}

// Upload stores the clip and binds it to the given action, replacing any
// previous binding for that action.
func (s *soundService) Upload(ctx context.Context, userID, action, name string, file *multipart.FileHeader) (*models.UserSound, error) {
	if userID == "" || file == nil {
		return nil, ErrInvalidArgument
	}
	if action != models.SoundActionVote && action != models.SoundActionDownvote {
		return nil, ErrInvalidAction
	}
	if file.Size > maxClipBytes {
		return nil, ErrClipTooLarge
	}
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "audio/") {
		return nil, ErrUnsupportedClip
	}

	url, err := s.storage.UploadAudio(ctx, userID, file)
	if err != nil {
		return nil, fmt.Errorf("store audio clip: %w", err)
	}

	if name == "" {
		name = file.Filename
	}
	sound := &models.UserSound{
		UserID:  userID,
		Action:  action,
		Name:    name,
		FileURL: url,
	}
	if err := s.sounds.Upsert(ctx, sound); err != nil {
		return nil, err
	}
	return sound, nil
}

func (s *soundService) ListByUser(ctx context.Context, userID string) ([]models.UserSound, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}
	return s.sounds.ListByUser(ctx, userID)
}

func (s *soundService) Delete(ctx context.Context, userID, soundID string) error {
	if userID == "" || soundID == "" {
		return ErrInvalidArgument
	}
	sound, err := s.sounds.FindByID(ctx, soundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSoundNotFound
		}
		return err
	}
	if sound.UserID != userID {
		return ErrNotSoundOwner
	}
	if err := s.sounds.Delete(ctx, soundID); err != nil {
		return err
	}

	// Best-effort object cleanup; an orphaned clip is harmless.
	if s.storage != nil {
		object := objectNameFromURL(sound.FileURL)
		if object != "" {
			if err := s.storage.RemoveObject(ctx, object); err != nil {
				slog.Warn("stored clip cleanup failed", "object", object, "error", err)
			}
		}
	}
	return nil
}

// objectNameFromURL recovers "sounds/<user>/<file>" from a stored clip URL.
func objectNameFromURL(url string) string {
	idx := strings.Index(url, "/sounds/")
	if idx < 0 {
		return ""
	}
	return url[idx+1:]
}
