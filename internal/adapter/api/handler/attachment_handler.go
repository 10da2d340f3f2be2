package handler

import (
	"io"

	"github.com/labstack/echo/v4"

	"pairtalk/internal/usecase"
	"pairtalk/pkg/errors"
	"pairtalk/pkg/response"
)

type AttachmentHandler struct {
	attachmentUseCase *usecase.AttachmentUseCase
	publisher         usecase.EventPublisher
}

func NewAttachmentHandler(attachmentUseCase *usecase.AttachmentUseCase, publisher usecase.EventPublisher) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentUseCase: attachmentUseCase,
		publisher:         publisher,
	}
}

// Preview validates the file and returns the inline preview without
// touching the network.
func (h *AttachmentHandler) Preview(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("Attachment file is required", err))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Failed to open attachment", err))
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return response.Error(c, errors.Internal("Failed to read attachment", err))
	}

	preview, err := h.attachmentUseCase.SelectFile(
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		data,
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, preview)
}

// Upload streams the file to object storage and returns the durable URL the
// send operation consumes.
func (h *AttachmentHandler) Upload(c echo.Context) error {
	uid := c.Get("uid").(string)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("Attachment file is required", err))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Failed to open attachment", err))
	}
	defer src.Close()

	// Progress goes out over the session socket while the HTTP request
	// blocks on the stream.
	onProgress := func(pct int) {
		h.publisher.Publish(uid, usecase.Event{Type: usecase.EventUploadProgress, Payload: pct})
	}

	url, err := h.attachmentUseCase.Upload(
		c.Request().Context(),
		uid,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		src,
		onProgress,
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]string{"url": url})
}
