package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/bradfitz/gomemcache/memcache"
	"gorm.io/gorm"

	"github.com/aichampion/hall/internal/domain"
	"github.com/aichampion/hall/internal/infra/database/models"
)

const (
	listCacheKey = "champions:list"
	listCacheTTL = 60 // seconds
)

type ChampionRepository struct {
	db *gorm.DB
	mc *memcache.Client
}

// NewChampionRepository wires the gorm store and an optional memcached list
// cache. mc may be nil; every cache path degrades to the database.
func NewChampionRepository(db *gorm.DB, mc *memcache.Client) *ChampionRepository {
	return &ChampionRepository{db: db, mc: mc}
}

func (r *ChampionRepository) List(ctx context.Context) ([]domain.Champion, error) {

	if r.mc != nil {
		if item, err := r.mc.Get(listCacheKey); err == nil {
			var cached []domain.Champion
			if err := json.Unmarshal(item.Value, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var rows []models.Champion
	err := r.db.WithContext(ctx).
		Order("registered_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	champions := make([]domain.Champion, 0, len(rows))
	for _, row := range rows {
		champions = append(champions, row.ToDomain())
	}

	if r.mc != nil {
		if encoded, err := json.Marshal(champions); err == nil {
			if err := r.mc.Set(&memcache.Item{Key: listCacheKey, Value: encoded, Expiration: listCacheTTL}); err != nil {
				slog.Debug("champion list cache set failed", "error", err)
			}
		}
	}

	return champions, nil
}

func (r *ChampionRepository) Get(ctx context.Context, id string) (domain.Champion, error) {
	var row models.Champion
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Champion{}, domain.NotFoundError{Resource: "champion"}
	}
	if err != nil {
		return domain.Champion{}, err
	}
	return row.ToDomain(), nil
}

func (r *ChampionRepository) Create(ctx context.Context, c domain.Champion) error {
	row := models.FromDomain(c)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	r.invalidateList()
	return nil
}

// Update overwrites the stored row with the given champion. There is no
// version check; concurrent editors are last-writer-wins.
func (r *ChampionRepository) Update(ctx context.Context, c domain.Champion) error {
	row := models.FromDomain(c)
	result := r.db.WithContext(ctx).
		Model(&models.Champion{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{
			"name":        row.Name,
			"department":  row.Department,
			"role":        row.Role,
			"tier":        row.Tier,
			"status":      row.Status,
			"vision":      row.Vision,
			"achievement": row.Achievement,
			"image_url":   row.ImageURL,
			"project_url": row.ProjectURL,
			"email":       row.Email,
			"secret":      row.Secret,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "champion"}
	}
	r.invalidateList()
	return nil
}

func (r *ChampionRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Delete(&models.Champion{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "champion"}
	}
	r.invalidateList()
	return nil
}

// IncrementViewCount bumps the counter atomically in SQL so interleaved
// detail views never lose an increment and the count never decreases.
func (r *ChampionRepository) IncrementViewCount(ctx context.Context, id string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Champion{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, domain.NotFoundError{Resource: "champion"}
	}

	var row models.Champion
	if err := r.db.WithContext(ctx).Select("view_count").Where("id = ?", id).Take(&row).Error; err != nil {
		return 0, err
	}
	return row.ViewCount, nil
}

func (r *ChampionRepository) invalidateList() {
	if r.mc == nil {
		return
	}
	if err := r.mc.Delete(listCacheKey); err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		slog.Debug("champion list cache invalidation failed", "error", err)
	}
}
