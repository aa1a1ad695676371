package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"todoapi/internal/apperr"
	"todoapi/internal/classifier"
	"todoapi/internal/logging"
	"todoapi/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// PredictResult is returned for every classified upload.
type PredictResult struct {
	URL         string                `json:"url"`
	Filename    string                `json:"filename"`
	Size        int                   `json:"size"`
	ContentType string                `json:"content_type"`
	Prediction  classifier.Prediction `json:"prediction"`
}

// ImageService stores uploaded images under names prefixed with the
// uploader's ID and serves them back only to that user.
type ImageService struct {
	store      storage.Store
	classifier classifier.Classifier
	maxBytes   int64
	now        func() time.Time
	logger     logging.Logger
}

func NewImageService(store storage.Store, c classifier.Classifier, maxBytes int64, logger logging.Logger) *ImageService {
	return &ImageService{
		store:      store,
		classifier: c,
		maxBytes:   maxBytes,
		now:        time.Now,
		logger:     logger,
	}
}

// WithClock replaces the time source used for upload names.
func (s *ImageService) WithClock(now func() time.Time) *ImageService {
	s.now = now
	return s
}

func ownerPrefix(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10) + "-"
}

// Predict classifies the image read from r and stores it for userID.
// filename is only used for its extension.
func (s *ImageService) Predict(ctx context.Context, userID uint, filename string, r io.Reader) (*PredictResult, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, apperr.Validation("Image is empty", map[string]string{"image": "required"})
	}
	if int64(len(data)) > s.maxBytes {
		return nil, apperr.Validation(
			fmt.Sprintf("Image exceeds %d bytes", s.maxBytes),
			map[string]string{"image": "too large"},
		)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, apperr.Validation(
			"Uploaded file is not an image",
			map[string]string{"image": "unsupported content type " + mt.String()},
		)
	}

	prediction, err := s.classifier.Classify(data)
	if err != nil {
		if errors.Is(err, classifier.ErrUndecodable) {
			return nil, apperr.Validation(
				"Image could not be decoded",
				map[string]string{"image": "unsupported image format " + mt.String()},
			)
		}
		return nil, fmt.Errorf("failed to classify image: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path.Base(filepath.ToSlash(filename))))
	if ext == "" || ext == "." {
		ext = mt.Extension()
	}
	name := fmt.Sprintf("%s%s-%s%s",
		ownerPrefix(userID),
		s.now().UTC().Format("20060102-150405"),
		strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
		ext,
	)

	url, err := s.store.Put(ctx, name, mt.String(), data)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	s.logger.Info(ctx, "image classified",
		"user_id", userID, "filename", name, "label", prediction.Label, "confidence", prediction.Confidence)

	return &PredictResult{
		URL:         url,
		Filename:    name,
		Size:        len(data),
		ContentType: mt.String(),
		Prediction:  prediction,
	}, nil
}

// Open returns a stored image of userID and its sniffed content type. name is
// reduced to its base name first; names without the caller's ID prefix are
// rejected as unauthorized.
func (s *ImageService) Open(ctx context.Context, userID uint, name string) ([]byte, string, error) {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	if !strings.HasPrefix(base, ownerPrefix(userID)) {
		return nil, "", apperr.Unauthorized("Image does not belong to the current user").
			WithContext("filename", base)
	}

	data, err := s.store.Get(ctx, base)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", apperr.ImageNotFound(base)
		}
		return nil, "", fmt.Errorf("failed to load image %s: %w", base, err)
	}

	return data, mimetype.Detect(data).String(), nil
}
