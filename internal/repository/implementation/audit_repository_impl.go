package implementation

import (
	"context"
	"errors"

	"leave-auth-be/internal/entity"
	"leave-auth-be/internal/mapper"
	"leave-auth-be/internal/model"
	"leave-auth-be/internal/repository/contract"
	"leave-auth-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AuditRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AuditMapper
}

func NewAuditRepository(db *gorm.DB) contract.AuditRepository {
	return &AuditRepositoryImpl{
		db:     db,
		mapper: mapper.NewAuditMapper(),
	}
}

func (r *AuditRepositoryImpl) Create(ctx context.Context, log *entity.AuditLog) error {
	m, err := r.mapper.ToModel(log)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *AuditRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AuditLog, error) {
	var models []*model.AuditLog
	query := applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	return r.mapper.ToEntities(models), nil
}

type SettingRepositoryImpl struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) contract.SettingRepository {
	return &SettingRepositoryImpl{db: db}
}

func (r *SettingRepositoryImpl) Get(ctx context.Context, key string) (*entity.Setting, error) {
	var m model.AppSetting
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return settingToEntity(&m), nil
}

func (r *SettingRepositoryImpl) Upsert(ctx context.Context, setting *entity.Setting) error {
	m := &model.AppSetting{
		Key:         setting.Key,
		Value:       setting.Value,
		Description: setting.Description,
		UpdatedBy:   setting.UpdatedBy,
		UpdatedAt:   setting.UpdatedAt,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
	}).Create(m).Error
}

func (r *SettingRepositoryImpl) All(ctx context.Context) ([]*entity.Setting, error) {
	var models []*model.AppSetting
	if err := r.db.WithContext(ctx).Order("key ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	settings := make([]*entity.Setting, 0, len(models))
	for _, m := range models {
		settings = append(settings, settingToEntity(m))
	}
	return settings, nil
}

func settingToEntity(m *model.AppSetting) *entity.Setting {
	return &entity.Setting{
		Key:         m.Key,
		Value:       m.Value,
		Description: m.Description,
		UpdatedBy:   m.UpdatedBy,
		UpdatedAt:   m.UpdatedAt,
	}
}
