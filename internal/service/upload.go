package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/cloo-solutions/finrag/internal/domain"
	"github.com/cloo-solutions/finrag/internal/loader"
	"github.com/cloo-solutions/finrag/internal/telemetry"
	"github.com/google/uuid"
)

// DocumentStore persists uploaded files. Save returns the stored file's path
// and replaces any existing file of the same name.
type DocumentStore interface {
	Save(name string, r io.Reader) (string, error)
}

// DocumentArchiver copies a stored document to long-term storage.
type DocumentArchiver interface {
	ArchiveFile(ctx context.Context, key, filePath, contentType string) error
}

// IndexJobRepositoryInterface defines the repository interface for index job persistence
type IndexJobRepositoryInterface interface {
	Create(ctx context.Context, job *domain.IndexJob) error
	GetByID(ctx context.Context, id string) (*domain.IndexJob, error)
	ClaimPending(ctx context.Context, limit int) ([]*domain.IndexJob, error)
	UpdateStatus(ctx context.Context, id string, status domain.IndexJobStatus, errMsg string) error
	IncrementRetries(ctx context.Context, id string) error
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// UploadResult describes a stored upload.
type UploadResult struct {
	Filename string
	Path     string
	// JobID is set when a reindex was queued.
	JobID string
}

// UploadService stores uploaded PDFs where the PDF loader reads them.
// The index is not touched unless a job repository is configured.
type UploadService struct {
	store    DocumentStore
	archiver DocumentArchiver
	jobs     IndexJobRepositoryInterface
	uuidGen  UUIDGenerator
}

func NewUploadService(store DocumentStore) *UploadService {
	return &UploadService{store: store, uuidGen: &DefaultUUIDGenerator{}}
}

// WithArchiver enables best-effort archiving of every upload.
func (s *UploadService) WithArchiver(archiver DocumentArchiver) *UploadService {
	s.archiver = archiver
	return s
}

// WithReindex queues an index job after every upload.
func (s *UploadService) WithReindex(jobs IndexJobRepositoryInterface, uuidGen UUIDGenerator) *UploadService {
	s.jobs = jobs
	if uuidGen != nil {
		s.uuidGen = uuidGen
	}
	return s
}

// Upload validates filename, then writes r into the document directory.
func (s *UploadService) Upload(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	name, err := SanitizeFilename(filename)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "UploadService.Upload", telemetry.SpanAttributes{
		Source:    name,
		Operation: "upload",
	})
	defer span.End()

	stored, err := s.store.Save(name, r)
	if err != nil {
		span.SetError(err)
		return nil, domain.ErrStorageOperationFail.WithCause(err)
	}

	result := &UploadResult{Filename: name, Path: stored}

	if s.archiver != nil {
		if err := s.archiver.ArchiveFile(ctx, "documents/"+name, stored, "application/pdf"); err != nil {
			log.Printf("failed to archive %s: %v", name, err)
			telemetry.CaptureError(ctx, fmt.Errorf("failed to archive %s: %w", name, err))
		}
	}

	if s.jobs != nil {
		job := domain.NewIndexJob(s.uuidGen.NewString(), "upload:"+name, time.Now().UTC())
		if err := s.jobs.Create(ctx, job); err != nil {
			log.Printf("failed to queue reindex for %s: %v", name, err)
			telemetry.CaptureError(ctx, fmt.Errorf("failed to queue reindex for %s: %w", name, err))
		} else {
			result.JobID = job.ID
		}
	}

	return result, nil
}

// SanitizeFilename strips any directory part and accepts only .pdf names.
func SanitizeFilename(filename string) (string, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	switch name {
	case "", ".", "..", "/":
		return "", domain.ErrInvalidFilename
	}
	if strings.HasPrefix(name, ".") || strings.ContainsRune(name, 0) {
		return "", domain.ErrInvalidFilename
	}
	if !loader.IsPDF(name) {
		return "", domain.ErrUnsupportedDocument
	}
	return name, nil
}
