package content

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "shareboard/internal/domain/content"
	"shareboard/internal/infrastructure/database/entities"
	"shareboard/internal/utils/platformerrors"
)

// Repository handles content record persistence. Every lifecycle transition
// is a single-row update keyed by id and current status, so a record is never
// observable in both partitions or in neither.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, rec *domain.ContentRecord) error {
	entity := toEntity(rec)
	entity.Status = entities.StatusActive
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return platformerrors.NewError(platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to create content record", err)
	}
	rec.CreatedAt = entity.CreatedAt
	rec.UpdatedAt = entity.UpdatedAt
	return nil
}

// ListActive returns active records newest-first. Restore bumps updated_at,
// which keeps freshly restored records at the head like the feed expects.
func (r *Repository) ListActive(ctx context.Context) ([]domain.ContentRecord, error) {
	var rows []entities.ContentRecord
	err := r.db.WithContext(ctx).
		Where("status = ?", entities.StatusActive).
		Order("updated_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to list active records", err)
	}
	return mapEntities(rows), nil
}

// ListDeleted returns recycle bin records, most recently deleted first.
func (r *Repository) ListDeleted(ctx context.Context) ([]domain.ContentRecord, error) {
	var rows []entities.ContentRecord
	err := r.db.WithContext(ctx).
		Where("status = ?", entities.StatusDeleted).
		Order("deleted_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to list deleted records", err)
	}
	return mapEntities(rows), nil
}

// GetActive returns the active record with the given id, or nil when absent.
func (r *Repository) GetActive(ctx context.Context, id string) (*domain.ContentRecord, error) {
	return r.getByStatus(ctx, id, entities.StatusActive)
}

// GetDeleted returns the recycle bin record with the given id, or nil when absent.
func (r *Repository) GetDeleted(ctx context.Context, id string) (*domain.ContentRecord, error) {
	return r.getByStatus(ctx, id, entities.StatusDeleted)
}

func (r *Repository) getByStatus(ctx context.Context, id, status string) (*domain.ContentRecord, error) {
	var entity entities.ContentRecord
	err := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, status).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, platformerrors.NewError(platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to get content record", err)
	}
	rec := fromEntity(entity)
	return &rec, nil
}

// MarkDeleted moves an active record to the recycle bin. Returns false when
// the record is not active (already deleted or missing).
func (r *Repository) MarkDeleted(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entities.ContentRecord{}).
		Where("id = ? AND status = ?", id, entities.StatusActive).
		Updates(map[string]any{
			"status":     entities.StatusDeleted,
			"deleted_at": at,
		})
	if res.Error != nil {
		return false, platformerrors.NewError(platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to soft delete record", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MarkRestored moves a recycle bin record back to the active partition,
// clearing deleted_at. Returns false when the record is not in the bin.
func (r *Repository) MarkRestored(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entities.ContentRecord{}).
		Where("id = ? AND status = ?", id, entities.StatusDeleted).
		Updates(map[string]any{
			"status":     entities.StatusActive,
			"deleted_at": nil,
			"updated_at": at,
		})
	if res.Error != nil {
		return false, platformerrors.NewError(platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to restore record", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Remove permanently erases a recycle bin record. Returns false when the
// record is not in the bin. Terminal and irreversible.
func (r *Repository) Remove(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, entities.StatusDeleted).
		Delete(&entities.ContentRecord{})
	if res.Error != nil {
		return false, platformerrors.NewError(platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to remove record", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListDeletedBefore returns recycle bin records whose deletion time is
// strictly before the cutoff, preserving bin order.
func (r *Repository) ListDeletedBefore(ctx context.Context, cutoff time.Time) ([]domain.ContentRecord, error) {
	var rows []entities.ContentRecord
	err := r.db.WithContext(ctx).
		Where("status = ? AND deleted_at < ?", entities.StatusDeleted, cutoff).
		Order("deleted_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to list expired records", err)
	}
	return mapEntities(rows), nil
}

// RemoveAll truncates both partitions.
func (r *Repository) RemoveAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("1 = 1").Delete(&entities.ContentRecord{}).Error; err != nil {
		return platformerrors.NewError(platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to reset content records", err)
	}
	return nil
}

func toEntity(rec *domain.ContentRecord) entities.ContentRecord {
	entity := entities.ContentRecord{
		ID:        rec.ID,
		Type:      rec.Type,
		Text:      rec.Text,
		Data:      rec.Data,
		Filename:  rec.Filename,
		Size:      rec.Size,
		Mimetype:  rec.Mimetype,
		DeletedAt: rec.DeletedAt,
	}
	if rec.Original != nil {
		entity.OriginalData = rec.Original.OriginalData
		entity.OriginalFilename = rec.Original.OriginalFilename
		entity.OriginalSize = rec.Original.OriginalSize
		entity.OriginalMimetype = rec.Original.OriginalMimetype
	}
	return entity
}

func fromEntity(entity entities.ContentRecord) domain.ContentRecord {
	rec := domain.ContentRecord{
		ID:        entity.ID,
		Type:      entity.Type,
		Text:      entity.Text,
		Data:      entity.Data,
		Filename:  entity.Filename,
		Size:      entity.Size,
		Mimetype:  entity.Mimetype,
		CreatedAt: entity.CreatedAt,
		UpdatedAt: entity.UpdatedAt,
		DeletedAt: entity.DeletedAt,
	}
	if entity.OriginalData != "" {
		rec.Original = &domain.ConversionProvenance{
			OriginalData:     entity.OriginalData,
			OriginalFilename: entity.OriginalFilename,
			OriginalSize:     entity.OriginalSize,
			OriginalMimetype: entity.OriginalMimetype,
		}
	}
	return rec
}

func mapEntities(rows []entities.ContentRecord) []domain.ContentRecord {
	records := make([]domain.ContentRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, fromEntity(row))
	}
	return records
}
