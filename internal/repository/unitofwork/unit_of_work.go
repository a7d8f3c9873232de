package unitofwork

import (
	"context"

	"leave-auth-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	RequestRepository() contract.RequestRepository
	UserRepository() contract.UserRepository
	AuditRepository() contract.AuditRepository
	SettingRepository() contract.SettingRepository
}
