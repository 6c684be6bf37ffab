package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	filesDomain "github.com/familyvault/vault/internal/files/domain"
	"github.com/familyvault/vault/internal/metrics"
)

// fileUseCaseWithMetrics decorates FileUseCase with metrics instrumentation.
type fileUseCaseWithMetrics struct {
	next    FileUseCase
	metrics metrics.BusinessMetrics
}

// NewFileUseCaseWithMetrics wraps a FileUseCase with metrics recording.
func NewFileUseCaseWithMetrics(useCase FileUseCase, m metrics.BusinessMetrics) FileUseCase {
	return &fileUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (f *fileUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	f.metrics.RecordOperation(ctx, "files", operation, status)
	f.metrics.RecordDuration(ctx, "files", operation, time.Since(start), status)
}

func (f *fileUseCaseWithMetrics) Upload(ctx context.Context, input UploadInput) (*filesDomain.Attachment, error) {
	start := time.Now()
	attachment, err := f.next.Upload(ctx, input)
	f.record(ctx, "file_upload", start, err)
	return attachment, err
}

func (f *fileUseCaseWithMetrics) Download(
	ctx context.Context,
	orgID, callerID, attachmentID uuid.UUID,
) (*DownloadResult, error) {
	start := time.Now()
	result, err := f.next.Download(ctx, orgID, callerID, attachmentID)
	f.record(ctx, "file_download", start, err)
	return result, err
}

func (f *fileUseCaseWithMetrics) ListByItem(
	ctx context.Context,
	orgID, callerID, itemID uuid.UUID,
) ([]*filesDomain.Attachment, error) {
	start := time.Now()
	attachments, err := f.next.ListByItem(ctx, orgID, callerID, itemID)
	f.record(ctx, "file_list", start, err)
	return attachments, err
}

func (f *fileUseCaseWithMetrics) Delete(ctx context.Context, orgID, callerID, attachmentID uuid.UUID) error {
	start := time.Now()
	err := f.next.Delete(ctx, orgID, callerID, attachmentID)
	f.record(ctx, "file_delete", start, err)
	return err
}
