package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"pairtalk/internal/infrastructure/ratelimit"
	"pairtalk/pkg/errors"
	"pairtalk/pkg/logger"
)

type AttachmentUseCase struct {
	storage     AttachmentStorage
	rateLimiter *ratelimit.RateLimiter
	maxBytes    int64
}

func NewAttachmentUseCase(storage AttachmentStorage, maxBytes int64) *AttachmentUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &AttachmentUseCase{
		storage:     storage,
		rateLimiter: rateLimiter,
		maxBytes:    maxBytes,
	}
}

// Preview is the local, no-network result of accepting a file.
type Preview struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	DataURL     string `json:"data_url"`
}

// SelectFile validates a local file and produces an inline preview. No
// network call is made; rejected files never reach the uploader.
func (uc *AttachmentUseCase) SelectFile(name, contentType string, size int64, data []byte) (*Preview, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, errors.UnsupportedType(contentType)
	}
	if size > uc.maxBytes {
		return nil, errors.TooLarge(size, uc.maxBytes)
	}

	return &Preview{
		Name:        name,
		ContentType: contentType,
		Size:        size,
		DataURL:     fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)),
	}, nil
}

// Upload streams an accepted file to object storage and returns the durable
// URL. Transport failures leave the caller's preview state intact for
// retry.
func (uc *AttachmentUseCase) Upload(ctx context.Context, userID, name, contentType string, size int64, file io.Reader, onProgress func(pct int)) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", errors.UnsupportedType(contentType)
	}
	if size > uc.maxBytes {
		return "", errors.TooLarge(size, uc.maxBytes)
	}

	allowed, waitTime := uc.rateLimiter.Allow(userID, "upload_attachment")
	if !allowed {
		logger.Warn("Upload rate limited: user %s must wait %v", userID, waitTime)
		return "", errors.TooManyRequests("Rate limit exceeded. Please wait before uploading again", waitTime)
	}

	url, err := uc.storage.UploadChatImage(ctx, name, contentType, size, file, onProgress)
	if err != nil {
		logger.Error("Attachment upload failed for %s: %v", userID, err)
		return "", errors.UploadFailed(err)
	}

	return url, nil
}
