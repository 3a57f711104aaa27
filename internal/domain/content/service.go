package content

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"shareboard/internal/config"
	"shareboard/internal/infrastructure/metrics"
	"shareboard/internal/utils/contentid"
	"shareboard/internal/utils/platformerrors"
)

// Repository defines persistence operations needed by the service.
type Repository interface {
	Create(ctx context.Context, rec *ContentRecord) error
	ListActive(ctx context.Context) ([]ContentRecord, error)
	ListDeleted(ctx context.Context) ([]ContentRecord, error)
	GetActive(ctx context.Context, id string) (*ContentRecord, error)
	GetDeleted(ctx context.Context, id string) (*ContentRecord, error)
	MarkDeleted(ctx context.Context, id string, at time.Time) (bool, error)
	MarkRestored(ctx context.Context, id string, at time.Time) (bool, error)
	Remove(ctx context.Context, id string) (bool, error)
	ListDeletedBefore(ctx context.Context, cutoff time.Time) ([]ContentRecord, error)
	RemoveAll(ctx context.Context) error
}

// Storage defines payload storage operations.
type Storage interface {
	Save(originalFilename string, body io.Reader) (string, int64, error)
	Remove(publicPath string) error
	Reset(ctx context.Context) error
}

// Service enforces the active/deleted partition and its transitions.
type Service struct {
	cfg     *config.Config
	repo    Repository
	storage Storage
	log     zerolog.Logger
	now     func() time.Time
}

func NewService(cfg *config.Config, repo Repository, storage Storage, log zerolog.Logger) *Service {
	return &Service{
		cfg:     cfg,
		repo:    repo,
		storage: storage,
		log:     log.With().Str("component", "content-service").Logger(),
		now:     time.Now,
	}
}

// Create ingests a new post: an optional text record plus one record per
// uploaded file. Text alone or files alone are both valid; neither is a
// validation error.
func (s *Service) Create(ctx context.Context, req CreateRequest) ([]ContentRecord, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" && len(req.Files) == 0 {
		return nil, platformerrors.NewError(platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "post needs text or at least one file", nil)
	}
	if len(req.Files) > s.cfg.MaxFilesPerPost {
		return nil, platformerrors.NewError(platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			fmt.Sprintf("at most %d files per post", s.cfg.MaxFilesPerPost), nil)
	}

	var created []ContentRecord

	if text != "" {
		rec := ContentRecord{
			ID:   contentid.New(),
			Type: TypeText,
			Text: text,
		}
		if err := s.repo.Create(ctx, &rec); err != nil {
			return nil, err
		}
		created = append(created, rec)
	}

	for _, file := range req.Files {
		sniffMimetype(&file)
		publicPath, size, err := s.storage.Save(file.Filename, file.Reader)
		if err != nil {
			return nil, platformerrors.NewError(platformerrors.LayerDomain,
				platformerrors.ErrorTypeInternal, "failed to store uploaded payload", err)
		}

		caption := ""
		if text != "" && len(req.Files) > 1 {
			caption = text
		}
		rec := ContentRecord{
			ID:       contentid.New(),
			Type:     TypeFromMimetype(file.Mimetype),
			Text:     caption,
			Data:     publicPath,
			Filename: file.Filename,
			Size:     size,
			Mimetype: file.Mimetype,
		}
		if err := s.repo.Create(ctx, &rec); err != nil {
			// Orphaned payloads from a failed insert are unlinked best-effort.
			if removeErr := s.storage.Remove(publicPath); removeErr != nil {
				s.log.Error().Err(removeErr).Str("path", publicPath).Msg("failed to unlink orphaned payload")
			}
			return nil, err
		}
		metrics.RecordUpload(file.Mimetype, size)
		created = append(created, rec)
	}

	return created, nil
}

// Publish inserts an already-stored record (used by the conversion and
// synthesis pipelines, which write their own payloads first).
func (s *Service) Publish(ctx context.Context, rec *ContentRecord) error {
	if rec.ID == "" {
		rec.ID = contentid.New()
	}
	return s.repo.Create(ctx, rec)
}

// ListActive returns the feed, newest-first.
func (s *Service) ListActive(ctx context.Context) ([]ContentRecord, error) {
	return s.repo.ListActive(ctx)
}

// ListDeleted returns the recycle bin, most recently deleted first.
func (s *Service) ListDeleted(ctx context.Context) ([]ContentRecord, error) {
	return s.repo.ListDeleted(ctx)
}

// GetActive looks up an active record; NotFound when absent.
func (s *Service) GetActive(ctx context.Context, id string) (*ContentRecord, error) {
	rec, err := s.repo.GetActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, platformerrors.NewError(platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound, "content not found", nil)
	}
	return rec, nil
}

// Delete moves an active record into the recycle bin.
func (s *Service) Delete(ctx context.Context, id string) error {
	moved, err := s.repo.MarkDeleted(ctx, id, s.now())
	if err != nil {
		return err
	}
	if !moved {
		return platformerrors.NewError(platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound, "content not found", nil)
	}
	return nil
}

// Restore moves a recycle bin record back into the feed.
func (s *Service) Restore(ctx context.Context, id string) error {
	restored, err := s.repo.MarkRestored(ctx, id, s.now())
	if err != nil {
		return err
	}
	if !restored {
		return platformerrors.NewError(platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound, "content not found", nil)
	}
	return nil
}

// PermanentlyDelete erases a recycle bin record and unlinks its payload.
// Unlink failures are logged, not fatal: the metadata removal still proceeds.
func (s *Service) PermanentlyDelete(ctx context.Context, id string) error {
	rec, err := s.repo.GetDeleted(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return platformerrors.NewError(platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound, "content not found", nil)
	}

	s.unlinkPayloads(rec)

	removed, err := s.repo.Remove(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return platformerrors.NewError(platformerrors.LayerDomain,
			platformerrors.ErrorTypeNotFound, "content not found", nil)
	}
	return nil
}

// BatchRestore restores every id present in the recycle bin; missing ids are
// silently skipped. Returns the count actually restored.
func (s *Service) BatchRestore(ctx context.Context, ids []string) (int, error) {
	restored := 0
	for _, id := range ids {
		ok, err := s.repo.MarkRestored(ctx, id, s.now())
		if err != nil {
			return restored, err
		}
		if ok {
			restored++
		}
	}
	return restored, nil
}

// BatchPermanentlyDelete permanently erases every id present in the recycle
// bin with the same skip-on-missing semantics as BatchRestore.
func (s *Service) BatchPermanentlyDelete(ctx context.Context, ids []string) (int, error) {
	removed := 0
	for _, id := range ids {
		rec, err := s.repo.GetDeleted(ctx, id)
		if err != nil {
			return removed, err
		}
		if rec == nil {
			continue
		}
		s.unlinkPayloads(rec)
		ok, err := s.repo.Remove(ctx, id)
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

// SweepExpired permanently deletes recycle bin records older than the
// configured retention period. A no-op when cleanup is disabled. One record's
// failure never aborts the rest of the sweep.
func (s *Service) SweepExpired(ctx context.Context, now time.Time, cfg CleanupConfig) (int, error) {
	if !cfg.Enabled {
		return 0, nil
	}

	cutoff := now.Add(-time.Duration(cfg.PeriodDays) * 24 * time.Hour)
	expired, err := s.repo.ListDeletedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, rec := range expired {
		s.unlinkPayloads(&rec)
		ok, err := s.repo.Remove(ctx, rec.ID)
		if err != nil {
			s.log.Error().Err(err).Str("id", rec.ID).Msg("sweep failed to remove record")
			continue
		}
		if ok {
			purged++
		}
	}

	if purged > 0 {
		metrics.RecordSweep(purged)
		s.log.Info().Int("purged", purged).Msg("cleanup sweep removed expired records")
	}
	return purged, nil
}

// Reset truncates both partitions and clears the upload directory.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.repo.RemoveAll(ctx); err != nil {
		return err
	}
	if err := s.storage.Reset(ctx); err != nil {
		return platformerrors.NewError(platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "failed to clear upload directory", err)
	}
	return nil
}

// sniffMimetype fills in the MIME type from the payload bytes when the
// client sent none or the generic octet-stream. The peeked prefix is stitched
// back onto the reader.
func sniffMimetype(file *UploadedFile) {
	if file.Mimetype != "" && file.Mimetype != "application/octet-stream" {
		return
	}
	head := make([]byte, 3072)
	n, _ := io.ReadFull(file.Reader, head)
	if n > 0 {
		file.Mimetype = mimetype.Detect(head[:n]).String()
	}
	file.Reader = io.MultiReader(bytes.NewReader(head[:n]), file.Reader)
}

// unlinkPayloads removes the record's own stored payload. Provenance paths
// are never touched: a derived record's Original.OriginalData points at the
// source record's live payload. Best effort: failures are logged only.
func (s *Service) unlinkPayloads(rec *ContentRecord) {
	if !strings.HasPrefix(rec.Data, "/uploads/") {
		return
	}
	if err := s.storage.Remove(rec.Data); err != nil {
		s.log.Error().Err(err).Str("id", rec.ID).Str("path", rec.Data).Msg("failed to unlink payload")
	}
}
