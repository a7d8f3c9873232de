package contract

import (
	"context"

	"leave-auth-be/internal/entity"
	"leave-auth-be/internal/repository/specification"
)

type AuditRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AuditLog, error)
}

type SettingRepository interface {
	Get(ctx context.Context, key string) (*entity.Setting, error)
	Upsert(ctx context.Context, setting *entity.Setting) error
	All(ctx context.Context) ([]*entity.Setting, error)
}
