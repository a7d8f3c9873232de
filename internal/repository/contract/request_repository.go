package contract

import (
	"context"

	"leave-auth-be/internal/entity"
	"leave-auth-be/internal/repository/specification"

	"github.com/google/uuid"
)

type RequestRepository interface {
	Create(ctx context.Context, request *entity.AuthorizationRequest) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AuthorizationRequest, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AuthorizationRequest, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// UpdateFields applies a guarded partial update and reports how many
	// rows matched. Guards express the precondition ("stage still
	// pending"); zero rows affected means a concurrent writer won.
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}, guards ...specification.Specification) (int64, error)
}
