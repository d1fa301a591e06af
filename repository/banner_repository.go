package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"packvault/core/active"
	"packvault/model"
)

// BannerRepository is the GORM-backed banner repository. It also
// implements active.SlotStore so the slot enforcer can guard it.
type BannerRepository struct {
	db *gorm.DB
}

// NewBannerRepository creates a new banner repository instance.
func NewBannerRepository(db *gorm.DB) *BannerRepository {
	return &BannerRepository{db: db}
}

// CreateBanner inserts a banner.
func (r *BannerRepository) CreateBanner(ctx context.Context, banner *model.Banner) error {
	return r.db.WithContext(ctx).Create(banner).Error
}

// GetBannerByID fetches a banner by id, returning nil when absent.
func (r *BannerRepository) GetBannerByID(ctx context.Context, id string) (*model.Banner, error) {
	var banner model.Banner
	err := r.db.WithContext(ctx).First(&banner, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &banner, nil
}

// ListBanners returns all banners, newest first.
func (r *BannerRepository) ListBanners(ctx context.Context) ([]*model.Banner, error) {
	var banners []*model.Banner
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&banners).Error
	return banners, err
}

// GetActiveBanner returns the single active banner, or nil.
func (r *BannerRepository) GetActiveBanner(ctx context.Context) (*model.Banner, error) {
	var banner model.Banner
	err := r.db.WithContext(ctx).First(&banner, "is_active = ?", true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &banner, nil
}

// UpdateBanner overwrites a banner's content fields.
func (r *BannerRepository) UpdateBanner(ctx context.Context, banner *model.Banner) error {
	banner.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Model(banner).
		Select("title", "image_url", "link_url", "cta_label", "cta_url", "audience", "updated_at").
		Updates(banner).Error
}

// DeleteBanner removes a banner outright. Banners carry no download
// history, so hard deletion is allowed.
func (r *BannerRepository) DeleteBanner(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Banner{}, "id = ?", id).Error
}

// ActivateExclusive flips the banner active in one conditional
// statement. The self-join makes the write atomic: it matches only
// while no other banner is active, so two concurrent activations
// cannot both succeed.
func (r *BannerRepository) ActivateExclusive(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE banners b
		LEFT JOIN banners other ON other.is_active = 1 AND other.id <> b.id
		SET b.is_active = 1, b.updated_at = ?
		WHERE b.id = ? AND other.id IS NULL`, time.Now(), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Zero rows: the candidate is missing, already active, or blocked
	// by an incumbent.
	banner, err := r.GetBannerByID(ctx, id)
	if err != nil {
		return err
	}
	if banner == nil {
		return active.ErrNotFound
	}
	if banner.IsActive {
		return nil
	}
	return active.ErrSlotOccupied
}

// Deactivate clears the active flag. Succeeds whether or not the
// banner was active; missing rows report ErrNotFound.
func (r *BannerRepository) Deactivate(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&model.Banner{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		banner, err := r.GetBannerByID(ctx, id)
		if err != nil {
			return err
		}
		if banner == nil {
			return active.ErrNotFound
		}
	}
	return nil
}
