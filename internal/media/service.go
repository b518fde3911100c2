package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abduss/mediadrop/internal/auth"
	"github.com/abduss/mediadrop/internal/disk"
	"github.com/abduss/mediadrop/internal/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Pipeline outcomes reported to the Observer.
const (
	OutcomeValidationFailed = "validation_failed"
	OutcomeIDFailed         = "id_failed"
	OutcomeStorageFailed    = "storage_failed"
	OutcomeMetadataFailed   = "metadata_failed"
	OutcomeURLFailed        = "url_failed"
	OutcomeIngested         = "ingested"
)

type mediaStore interface {
	Insert(ctx context.Context, m Media) (Media, error)
	Find(ctx context.Context, id uuid.UUID) (Media, error)
}

type storageGateway interface {
	Write(ctx context.Context, namespace string, obj disk.Object) (disk.Location, error)
	URL(ctx context.Context, diskName, key string) (string, error)
}

// Observer receives one report per ingestion attempt.
type Observer interface {
	RecordIngest(outcome string, sizeBytes int64, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) RecordIngest(string, int64, time.Duration) {}

// Service runs the ingestion pipeline.
type Service struct {
	store     mediaStore
	gateway   storageGateway
	validator *Validator
	namespace string
	observer  Observer
	log       *zap.Logger
	newID     func() (uuid.UUID, error)
	nowFunc   func() time.Time
}

// NewService wires the pipeline. A nil observer or logger is replaced with a no-op.
func NewService(store mediaStore, gateway storageGateway, validator *Validator, namespace string, observer Observer, log *zap.Logger) *Service {
	if observer == nil {
		observer = nopObserver{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:     store,
		gateway:   gateway,
		validator: validator,
		namespace: namespace,
		observer:  observer,
		log:       log.Named("media"),
		newID:     uuid.NewV7,
		nowFunc:   time.Now,
	}
}

// Ingest validates the submission, stores the binary, then records its metadata.
// The two writes are strictly ordered and never retried.
func (s *Service) Ingest(ctx context.Context, principal auth.ContextUser, sub Submission) (Descriptor, error) {
	start := s.nowFunc()
	var size int64
	if sub.File != nil {
		size = sub.File.SizeBytes
	}
	report := func(outcome string) {
		s.observer.RecordIngest(outcome, size, s.nowFunc().Sub(start))
	}

	log := logger.FromContext(ctx, s.log)

	accepted, err := s.validator.Validate(sub)
	if err != nil {
		report(OutcomeValidationFailed)
		return Descriptor{}, err
	}

	id, err := s.newID()
	if err != nil {
		report(OutcomeIDFailed)
		return Descriptor{}, fmt.Errorf("generate media id: %w", err)
	}

	loc, err := s.gateway.Write(ctx, s.namespace, disk.Object{
		Content:     accepted.Content,
		Size:        accepted.SizeBytes,
		ContentType: accepted.MediaType,
		Extension:   accepted.Extension,
	})
	if err != nil {
		report(OutcomeStorageFailed)
		return Descriptor{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	record, err := s.store.Insert(ctx, Media{
		ID:             id,
		Title:          accepted.Title,
		Description:    accepted.Description,
		StorageBackend: loc.Disk,
		StorageKey:     loc.Key,
		MediaType:      accepted.MediaType,
		SizeBytes:      accepted.SizeBytes,
	})
	if err != nil {
		log.Error("orphaned stored object",
			zap.String("media_id", id.String()),
			zap.String("disk", loc.Disk),
			zap.String("key", loc.Key),
			zap.Error(err),
		)
		report(OutcomeMetadataFailed)
		return Descriptor{}, fmt.Errorf("%w: %v", ErrMetadataFailure, err)
	}

	publicURL, err := s.gateway.URL(ctx, record.StorageBackend, record.StorageKey)
	if err != nil {
		report(OutcomeURLFailed)
		return Descriptor{}, fmt.Errorf("%w: %v", ErrURLResolution, err)
	}

	report(OutcomeIngested)
	log.Info("media ingested",
		zap.String("media_id", record.ID.String()),
		zap.String("uploader_id", principal.ID.String()),
		zap.String("media_type", record.MediaType),
		zap.Int64("size", record.SizeBytes),
		zap.String("disk", record.StorageBackend),
	)
	return newDescriptor(record, publicURL), nil
}

// Get loads a record and resolves its current public URL.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Descriptor, error) {
	record, err := s.store.Find(ctx, id)
	if err != nil {
		if errors.Is(err, ErrMediaNotFound) {
			return Descriptor{}, ErrMediaNotFound
		}
		return Descriptor{}, fmt.Errorf("find media: %w", err)
	}

	publicURL, err := s.gateway.URL(ctx, record.StorageBackend, record.StorageKey)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: %v", ErrURLResolution, err)
	}
	return newDescriptor(record, publicURL), nil
}
