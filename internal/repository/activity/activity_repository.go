package activity

import (
	"context"

	"digitalwill-backend/internal/types"
	"digitalwill-backend/pkg/logger"

	"gorm.io/gorm"
)

// Repository 遗嘱操作记录仓库
type Repository interface {
	Create(ctx context.Context, activity *types.WillActivity) error
	ListByOwner(ctx context.Context, owner string, page, pageSize int) ([]types.WillActivity, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create 写入操作记录
func (r *repository) Create(ctx context.Context, activity *types.WillActivity) error {
	if err := r.db.WithContext(ctx).Create(activity).Error; err != nil {
		logger.Error("CreateActivity Error: ", err, "owner", activity.OwnerAddress, "action", activity.Action)
		return err
	}
	return nil
}

// ListByOwner 按时间倒序分页查询
func (r *repository) ListByOwner(ctx context.Context, owner string, page, pageSize int) ([]types.WillActivity, int64, error) {
	var (
		total      int64
		activities []types.WillActivity
	)

	query := r.db.WithContext(ctx).Model(&types.WillActivity{}).Where("owner_address = ?", owner)
	if err := query.Count(&total).Error; err != nil {
		logger.Error("ListActivities Error: ", err, "owner", owner)
		return nil, 0, err
	}
	if total == 0 {
		return []types.WillActivity{}, 0, nil
	}

	err := r.db.WithContext(ctx).
		Where("owner_address = ?", owner).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&activities).Error
	if err != nil {
		logger.Error("ListActivities Error: ", err, "owner", owner)
		return nil, 0, err
	}
	return activities, total, nil
}
