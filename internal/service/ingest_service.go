package service

import (
	"context"
	"encoding/json"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"regulation-chat-be/internal/constant"
	"regulation-chat-be/internal/dto"
	"regulation-chat-be/internal/entity"
	"regulation-chat-be/internal/pkg/logger"
	"regulation-chat-be/internal/repository/unitofwork"
	"regulation-chat-be/pkg/chunker"
	"regulation-chat-be/pkg/embedding"
	"regulation-chat-be/pkg/pdfx"
)

const (
	// IngestTopic is the pubsub topic for queued ingestion jobs.
	IngestTopic = "ingest.jobs"

	ingestStatusSuccess = "success"
	ingestStatusFailed  = "failed"
)

type IIngestService interface {
	// Run ingests every PDF under dir synchronously and reports per-document
	// results. The batch itself never fails on a single bad document.
	Run(ctx context.Context, dir string) ([]*dto.DocumentResultDTO, error)

	// Enqueue publishes an ingestion job and returns immediately.
	Enqueue(ctx context.Context, dir string) (uuid.UUID, error)

	// Consume processes queued jobs until ctx is done.
	Consume(ctx context.Context) error
}

type ingestService struct {
	pubSub     *gochannel.GoChannel
	uowFactory unitofwork.RepositoryFactory
	embedder   embedding.Provider
	chunk      *chunker.Chunker
	workers    int
	log        logger.ILogger
}

func NewIngestService(
	pubSub *gochannel.GoChannel,
	uowFactory unitofwork.RepositoryFactory,
	embedder embedding.Provider,
	workers int,
	log logger.ILogger,
) IIngestService {
	if workers < 1 {
		workers = 1
	}
	return &ingestService{
		pubSub:     pubSub,
		uowFactory: uowFactory,
		embedder:   embedder,
		chunk:      chunker.New(),
		workers:    workers,
		log:        log,
	}
}

func (is *ingestService) Run(ctx context.Context, dir string) ([]*dto.DocumentResultDTO, error) {
	files, err := collectPDFs(dir)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		results []*dto.DocumentResultDTO
	)

	// Documents are processed in parallel; embedding calls within one
	// document stay sequential to respect the remote service's rate limits.
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(is.workers)

	for _, path := range files {
		path := path
		g.Go(func() error {
			result := is.ingestDocument(groupCtx, path)
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			// A failed document is a result, not a batch failure.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (is *ingestService) ingestDocument(ctx context.Context, path string) *dto.DocumentResultDTO {
	name := filepath.Base(path)
	result := &dto.DocumentResultDTO{Document: name, Status: ingestStatusFailed}

	doc, err := pdfx.ExtractFile(path)
	if err != nil {
		is.log.Error("ingest", "extraction failed", map[string]interface{}{
			"document": name,
			"error":    err.Error(),
		})
		result.Error = err.Error()
		return result
	}
	result.Pages = doc.PageCount

	chunks := is.chunk.Split(doc.Text, doc.PageCount)
	if len(chunks) == 0 {
		is.log.Warn("ingest", "document produced no chunks", map[string]interface{}{
			"document": name,
		})
		result.Status = ingestStatusSuccess
		return result
	}

	documentType := constant.DocumentTypeForPath(path)
	entities := make([]*entity.Chunk, 0, len(chunks))
	for _, c := range chunks {
		// One failed embedding fails the whole document. A partially
		// indexed document would be silently incomplete forever.
		vector, err := is.embedder.Generate(ctx, c.Content, embedding.TaskRetrievalDocument)
		if err != nil {
			is.log.Error("ingest", "embedding failed", map[string]interface{}{
				"document": name,
				"chunk":    c.Index,
				"error":    err.Error(),
			})
			result.Error = err.Error()
			return result
		}

		entities = append(entities, &entity.Chunk{
			Id:             uuid.New(),
			DocumentName:   name,
			DocumentType:   documentType,
			Content:        c.Content,
			SectionTitle:   c.SectionTitle,
			Page:           c.Page,
			ChunkIndex:     c.Index,
			ActualPdfPages: doc.PageCount,
			Embedding:      vector,
			CreatedAt:      time.Now(),
		})
	}

	// Replace the document atomically: old chunks gone, new chunks in, or
	// neither.
	uow := is.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		result.Error = err.Error()
		return result
	}
	defer uow.Rollback()

	if err := uow.ChunkRepository().DeleteByDocumentName(ctx, name); err != nil {
		result.Error = err.Error()
		return result
	}
	if err := uow.ChunkRepository().CreateBulk(ctx, entities); err != nil {
		result.Error = err.Error()
		return result
	}
	if err := uow.Commit(); err != nil {
		result.Error = err.Error()
		return result
	}

	is.log.Info("ingest", "document indexed", map[string]interface{}{
		"document": name,
		"type":     documentType,
		"chunks":   len(entities),
		"pages":    doc.PageCount,
	})
	result.Status = ingestStatusSuccess
	result.Chunks = len(entities)
	return result
}

func (is *ingestService) Enqueue(ctx context.Context, dir string) (uuid.UUID, error) {
	jobId := uuid.New()
	payload, err := json.Marshal(dto.IngestJobMessage{JobId: jobId, Dir: dir})
	if err != nil {
		return uuid.Nil, err
	}

	msg := message.NewMessage(jobId.String(), payload)
	if err := is.pubSub.Publish(IngestTopic, msg); err != nil {
		return uuid.Nil, err
	}
	return jobId, nil
}

func (is *ingestService) Consume(ctx context.Context) error {
	messages, err := is.pubSub.Subscribe(ctx, IngestTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			is.processJob(ctx, msg)
		}
	}()

	return nil
}

func (is *ingestService) processJob(ctx context.Context, msg *message.Message) {
	var job dto.IngestJobMessage
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		is.log.Error("ingest", "invalid job payload", map[string]interface{}{
			"error": err.Error(),
		})
		// Malformed jobs are acked; retrying them cannot succeed.
		msg.Ack()
		return
	}

	is.log.Info("ingest", "job started", map[string]interface{}{
		"job_id": job.JobId.String(),
		"dir":    job.Dir,
	})

	results, err := is.Run(ctx, job.Dir)
	if err != nil {
		is.log.Error("ingest", "job failed", map[string]interface{}{
			"job_id": job.JobId.String(),
			"error":  err.Error(),
		})
		msg.Nack()
		return
	}

	succeeded, failed := 0, 0
	for _, r := range results {
		if r.Status == ingestStatusSuccess {
			succeeded++
		} else {
			failed++
		}
	}
	is.log.Info("ingest", "job finished", map[string]interface{}{
		"job_id":    job.JobId.String(),
		"succeeded": succeeded,
		"failed":    failed,
	})
	msg.Ack()
}

func collectPDFs(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
