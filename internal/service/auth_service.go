package service

import (
	"context"
	"encoding/json"
	"time"

	"leave-auth-be/internal/config"
	"leave-auth-be/internal/dto"
	"leave-auth-be/internal/entity"
	"leave-auth-be/internal/repository/specification"
	"leave-auth-be/internal/repository/unitofwork"
	"leave-auth-be/pkg/kv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest, origin dto.RequestOrigin) (*dto.LoginResponse, error)
	Logout(ctx context.Context, actor *entity.Actor) error
	ChangePassword(ctx context.Context, actor *entity.Actor, req *dto.ChangePasswordRequest) error
	ValidateResetToken(ctx context.Context, rawToken string) (*dto.ValidateResetTokenResponse, error)
	ResetPassword(ctx context.Context, rawToken string, req *dto.ResetPasswordRequest, origin dto.RequestOrigin) error
}

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	store          kv.Store
	auditPublisher IAuditPublisher
	authCfg        config.AuthConfig
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	store kv.Store,
	auditPublisher IAuditPublisher,
	authCfg config.AuthConfig,
) IAuthService {
	return &authService{
		uowFactory:     uowFactory,
		store:          store,
		auditPublisher: auditPublisher,
		authCfg:        authCfg,
	}
}

// resetTokenCacheEntry is the JSON value stored under resetToken:<token>.
type resetTokenCacheEntry struct {
	UserId uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, origin dto.RequestOrigin) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx,
		specification.ByEmail{Email: req.Email},
		specification.ActiveOnly{},
	)
	if err != nil {
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		originIP := origin.IP
		s.auditPublisher.Emit(dto.AuditTrailMessage{
			Kind:     entity.AuditLoginFailure,
			Actor:    req.Email,
			OriginIP: &originIP,
		})
		return nil, entity.NewValidationError("credentials", "invalid email or password")
	}

	sessionTTL := time.Duration(s.authCfg.SessionTTLHours) * time.Hour
	expiresAt := time.Now().Add(sessionTTL)

	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     expiresAt.Unix(),
	}
	if user.Category != nil {
		claims["category"] = string(*user.Category)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.authCfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	// One active session per user; logging in again invalidates the old
	// token even though its signature stays valid.
	if err := s.store.Set(ctx, kv.PrefixSession+user.Id.String(), signed, sessionTTL); err != nil {
		return nil, err
	}

	originIP := origin.IP
	s.auditPublisher.Emit(dto.AuditTrailMessage{
		Kind:     entity.AuditLoginSuccess,
		Actor:    user.Email,
		OriginIP: &originIP,
	})

	return &dto.LoginResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
		User:      toUserResponse(user),
	}, nil
}

func (s *authService) Logout(ctx context.Context, actor *entity.Actor) error {
	return s.store.Delete(ctx, kv.PrefixSession+actor.Id.String())
}

func (s *authService) ChangePassword(ctx context.Context, actor *entity.Actor, req *dto.ChangePasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return entity.NewValidationError("confirm_password", "does not match new password")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: actor.Id}, specification.ActiveOnly{})
	if err != nil {
		return err
	}
	if user == nil {
		return entity.NewNotFoundError("user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return entity.NewValidationError("current_password", "is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := uow.UserRepository().UpdatePassword(ctx, user.Id, string(hash)); err != nil {
		return err
	}

	s.auditPublisher.Emit(dto.AuditTrailMessage{
		Kind:  entity.AuditPasswordChanged,
		Actor: user.Email,
	})
	return nil
}

// ValidateResetToken answers whether a reset link is still redeemable.
// The cache is checked first; on a miss the durable row decides, since a
// flushed cache must not invalidate outstanding links.
func (s *authService) ValidateResetToken(ctx context.Context, rawToken string) (*dto.ValidateResetTokenResponse, error) {
	value, found, err := s.store.Get(ctx, kv.PrefixResetToken+rawToken)
	if err == nil && found {
		var entry resetTokenCacheEntry
		if json.Unmarshal([]byte(value), &entry) == nil {
			return &dto.ValidateResetTokenResponse{Valid: true, Email: entry.Email}, nil
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	row, err := uow.UserRepository().FindPasswordResetToken(ctx,
		specification.ByToken{Token: rawToken},
		specification.Unused{},
	)
	if err != nil {
		return nil, err
	}
	if row == nil || time.Now().After(row.ExpiresAt) {
		return &dto.ValidateResetTokenResponse{Valid: false}, nil
	}
	return &dto.ValidateResetTokenResponse{Valid: true, Email: row.UserEmail}, nil
}

func (s *authService) ResetPassword(ctx context.Context, rawToken string, req *dto.ResetPasswordRequest, origin dto.RequestOrigin) error {
	if req.Password != req.ConfirmPassword {
		return entity.NewValidationError("confirm_password", "does not match password")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// The durable row is authoritative for redemption. Expired, unknown
	// and already-used tokens all read the same.
	row, err := uow.UserRepository().FindPasswordResetToken(ctx,
		specification.ByToken{Token: rawToken},
		specification.Unused{},
	)
	if err != nil {
		return err
	}
	if row == nil || time.Now().After(row.ExpiresAt) {
		return entity.NewNotFoundError("reset token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().UpdatePassword(ctx, row.UserId, string(hash)); err != nil {
		return err
	}
	if err := uow.UserRepository().MarkResetTokenUsed(ctx, row.Id, time.Now()); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	_ = s.store.Delete(ctx, kv.PrefixResetToken+rawToken)
	_ = s.store.Delete(ctx, kv.PrefixSession+row.UserId.String())

	originIP := origin.IP
	s.auditPublisher.Emit(dto.AuditTrailMessage{
		Kind:     entity.AuditResetTokenUsed,
		Actor:    row.UserEmail,
		OriginIP: &originIP,
	})
	return nil
}

func toUserResponse(u *entity.User) dto.UserResponse {
	var category *string
	if u.Category != nil {
		c := string(*u.Category)
		category = &c
	}
	return dto.UserResponse{
		Id:        u.Id,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		Role:      string(u.Role),
		Category:  category,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}
