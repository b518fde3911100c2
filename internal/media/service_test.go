package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/abduss/mediadrop/internal/auth"
	"github.com/abduss/mediadrop/internal/disk"
	"github.com/abduss/mediadrop/internal/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var testPrincipal = auth.ContextUser{ID: uuid.New(), Email: "uploader@example.com"}

func TestIngestStoresBinaryThenMetadata(t *testing.T) {
	h := newServiceHarness(t)
	content := binarySample(jpegHead, 64*1024)

	sub := fileSubmission("Test upload", content)
	sub.Description = strPtr("My first test image")

	desc, err := h.service.Ingest(context.Background(), testPrincipal, sub)
	require.NoError(t, err)

	assert.Equal(t, "Test upload", desc.Title)
	require.NotNil(t, desc.Description)
	assert.Equal(t, "My first test image", *desc.Description)
	assert.Equal(t, "image/jpeg", desc.MediaType)
	assert.Equal(t, int64(65536), desc.SizeBytes)
	assert.Equal(t, uuid.Version(7), desc.ID.Version())
	assert.False(t, desc.CreatedAt.IsZero())

	require.Len(t, h.store.records, 1)
	record := h.store.records[desc.ID]
	assert.Equal(t, "memory", record.StorageBackend)
	assert.Equal(t, "https://cdn.test/"+record.StorageKey, desc.PublicURL)
	assert.Equal(t, content, h.gateway.objects[record.StorageKey])
	assert.Equal(t, []string{OutcomeIngested}, h.observer.outcomes())
}

func TestIngestValidationHasNoSideEffects(t *testing.T) {
	h := newServiceHarness(t)

	_, err := h.service.Ingest(context.Background(), testPrincipal, Submission{Title: strPtr(" ")})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "file")
	assert.Zero(t, h.gateway.writes)
	assert.Empty(t, h.store.records)
	assert.Equal(t, []string{OutcomeValidationFailed}, h.observer.outcomes())
}

func TestIngestRejectsUndecodableTitle(t *testing.T) {
	h := newServiceHarness(t)

	_, err := h.service.Ingest(context.Background(), testPrincipal, fileSubmission("bad\xff", binarySample(jpegHead, 1024)))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{msgTitleString}, verr.Fields["title"])
	assert.Zero(t, h.gateway.writes)
	assert.Zero(t, h.store.inserts)
}

func TestIngestIDFailureHasDistinctOutcome(t *testing.T) {
	h := newServiceHarness(t)
	h.service.newID = func() (uuid.UUID, error) { return uuid.Nil, errors.New("entropy exhausted") }

	_, err := h.service.Ingest(context.Background(), testPrincipal, fileSubmission("Photo", binarySample(pngHead, 1024)))

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStorageFailure)
	assert.Zero(t, h.gateway.writes)
	assert.Zero(t, h.store.inserts)
	assert.Equal(t, []string{OutcomeIDFailed}, h.observer.outcomes())
}

func TestIngestStorageFailureSkipsMetadata(t *testing.T) {
	h := newServiceHarness(t)
	h.gateway.writeErr = errors.New("disk full")

	_, err := h.service.Ingest(context.Background(), testPrincipal, fileSubmission("Photo", binarySample(pngHead, 1024)))

	require.ErrorIs(t, err, ErrStorageFailure)
	assert.Zero(t, h.store.inserts)
	assert.Equal(t, []string{OutcomeStorageFailed}, h.observer.outcomes())
}

func TestIngestMetadataFailureLogsOrphan(t *testing.T) {
	h := newServiceHarness(t)
	h.store.insertErr = errors.New("connection reset")
	ctx := logger.WithCorrelationID(context.Background(), "req-7")

	_, err := h.service.Ingest(ctx, testPrincipal, fileSubmission("Photo", binarySample(gifHead, 1024)))

	require.ErrorIs(t, err, ErrMetadataFailure)
	require.Len(t, h.gateway.objects, 1)
	assert.Empty(t, h.store.records)
	assert.Equal(t, []string{OutcomeMetadataFailed}, h.observer.outcomes())

	entries := h.logs.FilterMessage("orphaned stored object").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "memory", fields["disk"])
	assert.Equal(t, "req-7", fields["correlation_id"])
	_, stored := h.gateway.objects[fields["key"].(string)]
	assert.True(t, stored)
}

func TestIngestURLFailureKeepsRecord(t *testing.T) {
	h := newServiceHarness(t)
	h.gateway.urlErr = errors.New("presign failed")

	_, err := h.service.Ingest(context.Background(), testPrincipal, fileSubmission("Clip", binarySample(webmHead, 4096)))

	require.ErrorIs(t, err, ErrURLResolution)
	assert.Len(t, h.store.records, 1)
	assert.Equal(t, []string{OutcomeURLFailed}, h.observer.outcomes())
}

func TestIngestAssignsDistinctIDs(t *testing.T) {
	h := newServiceHarness(t)

	seen := map[uuid.UUID]bool{}
	for i := 0; i < 5; i++ {
		desc, err := h.service.Ingest(context.Background(), testPrincipal, fileSubmission("Photo", binarySample(jpegHead, 512)))
		require.NoError(t, err)
		assert.False(t, seen[desc.ID])
		seen[desc.ID] = true
	}
	assert.Len(t, h.gateway.objects, 5)
}

func TestGetResolvesURL(t *testing.T) {
	h := newServiceHarness(t)
	created, err := h.service.Ingest(context.Background(), testPrincipal, fileSubmission("Photo", binarySample(jpegHead, 512)))
	require.NoError(t, err)

	found, err := h.service.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, found)

	_, err = h.service.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrMediaNotFound)
}

type serviceHarness struct {
	service  *Service
	store    *memoryRepo
	gateway  *memoryGateway
	observer *recordingObserver
	logs     *observer.ObservedLogs
}

func newServiceHarness(t *testing.T) *serviceHarness {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	h := &serviceHarness{
		store:    newMemoryRepo(),
		gateway:  newMemoryGateway(),
		observer: &recordingObserver{},
		logs:     logs,
	}
	h.service = NewService(h.store, h.gateway, NewValidator(defaultMaxKB), "media", h.observer, zap.New(core))
	return h
}

type memoryRepo struct {
	records   map[uuid.UUID]Media
	inserts   int
	insertErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[uuid.UUID]Media)}
}

func (r *memoryRepo) Insert(ctx context.Context, m Media) (Media, error) {
	r.inserts++
	if r.insertErr != nil {
		return Media{}, r.insertErr
	}
	if _, ok := r.records[m.ID]; ok {
		return Media{}, ErrDuplicateMedia
	}
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	r.records[m.ID] = m
	return m, nil
}

func (r *memoryRepo) Find(ctx context.Context, id uuid.UUID) (Media, error) {
	m, ok := r.records[id]
	if !ok {
		return Media{}, ErrMediaNotFound
	}
	return m, nil
}

type memoryGateway struct {
	objects  map[string][]byte
	writes   int
	writeErr error
	urlErr   error
}

func newMemoryGateway() *memoryGateway {
	return &memoryGateway{objects: make(map[string][]byte)}
}

func (g *memoryGateway) Write(ctx context.Context, namespace string, obj disk.Object) (disk.Location, error) {
	g.writes++
	if g.writeErr != nil {
		return disk.Location{}, g.writeErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, obj.Content); err != nil {
		return disk.Location{}, err
	}
	key := namespace + "/" + uuid.NewString() + obj.Extension
	g.objects[key] = buf.Bytes()
	return disk.Location{Disk: "memory", Key: key}, nil
}

func (g *memoryGateway) URL(ctx context.Context, diskName, key string) (string, error) {
	if g.urlErr != nil {
		return "", g.urlErr
	}
	return "https://cdn.test/" + key, nil
}

type recordingObserver struct {
	mu      sync.Mutex
	entries []string
}

func (o *recordingObserver) RecordIngest(outcome string, sizeBytes int64, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries = append(o.entries, outcome)
}

func (o *recordingObserver) outcomes() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.entries...)
}
