package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"packvault/core/active"
	"packvault/model"
)

// PopupRepository is the GORM-backed popup repository. It mirrors the
// banner repository, including the active.SlotStore implementation.
type PopupRepository struct {
	db *gorm.DB
}

// NewPopupRepository creates a new popup repository instance.
func NewPopupRepository(db *gorm.DB) *PopupRepository {
	return &PopupRepository{db: db}
}

// CreatePopup inserts a popup.
func (r *PopupRepository) CreatePopup(ctx context.Context, popup *model.Popup) error {
	return r.db.WithContext(ctx).Create(popup).Error
}

// GetPopupByID fetches a popup by id, returning nil when absent.
func (r *PopupRepository) GetPopupByID(ctx context.Context, id string) (*model.Popup, error) {
	var popup model.Popup
	err := r.db.WithContext(ctx).First(&popup, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &popup, nil
}

// ListPopups returns all popups, newest first.
func (r *PopupRepository) ListPopups(ctx context.Context) ([]*model.Popup, error) {
	var popups []*model.Popup
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&popups).Error
	return popups, err
}

// GetActivePopup returns the single active popup, or nil.
func (r *PopupRepository) GetActivePopup(ctx context.Context) (*model.Popup, error) {
	var popup model.Popup
	err := r.db.WithContext(ctx).First(&popup, "is_active = ?", true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &popup, nil
}

// UpdatePopup overwrites a popup's content fields.
func (r *PopupRepository) UpdatePopup(ctx context.Context, popup *model.Popup) error {
	popup.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Model(popup).
		Select("title", "body", "audience", "frequency", "updated_at").
		Updates(popup).Error
}

// DeletePopup removes a popup outright.
func (r *PopupRepository) DeletePopup(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Popup{}, "id = ?", id).Error
}

// ActivateExclusive flips the popup active in one conditional
// statement; see BannerRepository.ActivateExclusive.
func (r *PopupRepository) ActivateExclusive(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE popups p
		LEFT JOIN popups other ON other.is_active = 1 AND other.id <> p.id
		SET p.is_active = 1, p.updated_at = ?
		WHERE p.id = ? AND other.id IS NULL`, time.Now(), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	popup, err := r.GetPopupByID(ctx, id)
	if err != nil {
		return err
	}
	if popup == nil {
		return active.ErrNotFound
	}
	if popup.IsActive {
		return nil
	}
	return active.ErrSlotOccupied
}

// Deactivate clears the active flag.
func (r *PopupRepository) Deactivate(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&model.Popup{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		popup, err := r.GetPopupByID(ctx, id)
		if err != nil {
			return err
		}
		if popup == nil {
			return active.ErrNotFound
		}
	}
	return nil
}
