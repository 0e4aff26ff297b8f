package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regulation-chat-be/internal/pkg/logger"
)

func newTestIngestService(t *testing.T) (IIngestService, *fakeChunkRepo, *fakeEmbedder) {
	t.Helper()

	chunks := &fakeChunkRepo{}
	embedder := &fakeEmbedder{}
	uow := &fakeUow{chunks: chunks, conversations: &fakeConversationRepo{}, messages: &fakeMessageRepo{}}
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})

	svc := NewIngestService(pubSub, &fakeUowFactory{uow: uow}, embedder, 2, logger.NewNopLogger())
	return svc, chunks, embedder
}

func TestIngestRunEmptyDirectory(t *testing.T) {
	svc, _, _ := newTestIngestService(t)

	results, err := svc.Run(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestIngestRunSkipsNonPDFFiles(t *testing.T) {
	svc, _, embedder := newTestIngestService(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("notes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.csv"), []byte("a,b"), 0o644))

	results, err := svc.Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, embedder.calls)
}

func TestIngestRunCorruptDocumentDoesNotAbortBatch(t *testing.T) {
	svc, _, _ := newTestIngestService(t)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "acts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acts", "broken.pdf"), []byte("not a pdf"), 0o644))

	results, err := svc.Run(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "broken.pdf", results[0].Document)
	assert.Equal(t, "failed", results[0].Status)
	assert.NotEmpty(t, results[0].Error)
}

func TestIngestRunMissingDirectory(t *testing.T) {
	svc, _, _ := newTestIngestService(t)

	_, err := svc.Run(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestIngestEnqueueReturnsJobId(t *testing.T) {
	svc, _, _ := newTestIngestService(t)

	jobId, err := svc.Enqueue(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, jobId)
}
