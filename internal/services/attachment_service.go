package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"campustalk_backend/internal/models/chat"
	"campustalk_backend/internal/storage"
	"campustalk_backend/pkg/apperrors"

	"github.com/google/uuid"
)

// SignedURLExpiry bounds how long a private attachment link stays valid.
const SignedURLExpiry = 15 * time.Minute

var attachmentTypes = map[chat.MessageType][]string{
	chat.MessageTypeImage: {".jpg", ".jpeg", ".png", ".gif", ".webp"},
	chat.MessageTypeVideo: {".mp4", ".webm", ".mov"},
	chat.MessageTypeVoice: {".ogg", ".mp3", ".m4a", ".wav"},
	chat.MessageTypeFile:  nil, // any extension
}

type AttachmentService interface {
	// Upload stores the blob and returns the URL that goes into the
	// message content for non-text message types.
	Upload(ctx context.Context, userID, filename, contentType string, typ chat.MessageType, reader io.Reader) (string, error)

	SignedURL(ctx context.Context, path string) (string, error)
	Delete(ctx context.Context, path string) error
}

type attachmentService struct {
	store storage.Storage
}

func NewAttachmentService(store storage.Storage) AttachmentService {
	return &attachmentService{store: store}
}

func (s *attachmentService) Upload(ctx context.Context, userID, filename, contentType string, typ chat.MessageType, reader io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	allowed, ok := attachmentTypes[typ]
	if !ok {
		return "", apperrors.ErrInvalidMessageType
	}
	if allowed != nil {
		found := false
		for _, a := range allowed {
			if ext == a {
				found = true
				break
			}
		}
		if !found {
			return "", apperrors.ValidationError(fmt.Sprintf("extension %q not allowed for %s attachments", ext, typ))
		}
	}

	path := fmt.Sprintf("attachments/%s/%s%s", userID, uuid.NewString(), ext)
	if err := s.store.Save(ctx, path, reader, contentType); err != nil {
		return "", apperrors.InternalError(err)
	}

	url, err := s.store.GetURL(ctx, path)
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	return url, nil
}

func (s *attachmentService) SignedURL(ctx context.Context, path string) (string, error) {
	url, err := s.store.GetSignedURL(ctx, path, SignedURLExpiry)
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	return url, nil
}

func (s *attachmentService) Delete(ctx context.Context, path string) error {
	if err := s.store.Delete(ctx, path); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}
