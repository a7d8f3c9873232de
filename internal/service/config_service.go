package service

import (
	"context"
	"strconv"
	"time"

	"leave-auth-be/internal/entity"
	"leave-auth-be/internal/repository/unitofwork"

	gocache "github.com/patrickmn/go-cache"
)

const (
	defaultWeeklyRequestLimit = 5
	defaultResetTokenTTLHours = 1
)

type IConfigService interface {
	WeeklyRequestLimit(ctx context.Context) int
	ResetTokenTTLHours(ctx context.Context) int
	Invalidate(key string)
}

// configService reads runtime-adjustable settings from the database with a
// short in-process cache in front, so hot paths do not hit the settings
// table on every request.
type configService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *gocache.Cache
}

func NewConfigService(uowFactory unitofwork.RepositoryFactory) IConfigService {
	return &configService{
		uowFactory: uowFactory,
		cache:      gocache.New(30*time.Second, time.Minute),
	}
}

func (s *configService) WeeklyRequestLimit(ctx context.Context) int {
	return s.intSetting(ctx, entity.SettingWeeklyRequestLimit, defaultWeeklyRequestLimit)
}

func (s *configService) ResetTokenTTLHours(ctx context.Context) int {
	return s.intSetting(ctx, entity.SettingResetTokenTTLHours, defaultResetTokenTTLHours)
}

func (s *configService) Invalidate(key string) {
	s.cache.Delete(key)
}

func (s *configService) intSetting(ctx context.Context, key string, fallback int) int {
	if cached, found := s.cache.Get(key); found {
		return cached.(int)
	}

	value := fallback
	uow := s.uowFactory.NewUnitOfWork(ctx)
	setting, err := uow.SettingRepository().Get(ctx, key)
	if err == nil && setting != nil {
		if parsed, parseErr := strconv.Atoi(setting.Value); parseErr == nil && parsed > 0 {
			value = parsed
		}
	}

	s.cache.Set(key, value, gocache.DefaultExpiration)
	return value
}
