package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"leave-auth-be/internal/dto"
	"leave-auth-be/internal/entity"
	"leave-auth-be/internal/repository/specification"
	"leave-auth-be/internal/repository/unitofwork"
	"leave-auth-be/pkg/kv"
	"leave-auth-be/pkg/token"
	"leave-auth-be/pkg/whatsapp"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAdminService interface {
	CreateUser(ctx context.Context, actor *entity.Actor, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	UpdateUser(ctx context.Context, actor *entity.Actor, id uuid.UUID, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	DeactivateUser(ctx context.Context, actor *entity.Actor, id uuid.UUID) error
	ListUsers(ctx context.Context) ([]dto.UserResponse, error)

	IssueResetLink(ctx context.Context, actor *entity.Actor, userId uuid.UUID) (*dto.ResetLinkResponse, error)

	GetSettings(ctx context.Context) ([]dto.SettingResponse, error)
	UpdateSetting(ctx context.Context, actor *entity.Actor, key string, req *dto.UpdateSettingRequest) (*dto.SettingResponse, error)

	ListAuditLogs(ctx context.Context, query *dto.ListAuditQuery) ([]dto.AuditLogResponse, error)
}

type adminService struct {
	uowFactory     unitofwork.RepositoryFactory
	store          kv.Store
	configService  IConfigService
	auditPublisher IAuditPublisher
	clientURL      string
}

func NewAdminService(
	uowFactory unitofwork.RepositoryFactory,
	store kv.Store,
	configService IConfigService,
	auditPublisher IAuditPublisher,
	clientURL string,
) IAdminService {
	return &adminService{
		uowFactory:     uowFactory,
		store:          store,
		configService:  configService,
		auditPublisher: auditPublisher,
		clientURL:      strings.TrimRight(clientURL, "/"),
	}
}

func (s *adminService) CreateUser(ctx context.Context, actor *entity.Actor, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	category, err := categoryForRole(entity.UserRole(req.Role), req.Category)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, entity.NewConflictError("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		Id:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Phone:        req.Phone,
		Role:         entity.UserRole(req.Role),
		Category:     category,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	subject := user.Email
	s.auditPublisher.Emit(dto.AuditTrailMessage{
		Kind:            entity.AuditUserCreated,
		Actor:           actor.Email,
		AffectedSubject: &subject,
		Detail:          map[string]interface{}{"role": req.Role, "category": req.Category},
	})

	response := toUserResponse(user)
	return &response, nil
}

func (s *adminService) UpdateUser(ctx context.Context, actor *entity.Actor, id uuid.UUID, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	category, err := categoryForRole(entity.UserRole(req.Role), req.Category)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entity.NewNotFoundError("user")
	}

	user.FullName = req.FullName
	user.Phone = req.Phone
	user.Role = entity.UserRole(req.Role)
	user.Category = category
	if req.Active != nil {
		user.Active = *req.Active
	}
	user.UpdatedAt = time.Now()

	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, err
	}

	if !user.Active {
		_ = s.store.Delete(ctx, kv.PrefixSession+user.Id.String())
	}

	subject := user.Email
	s.auditPublisher.Emit(dto.AuditTrailMessage{
		Kind:            entity.AuditUserUpdated,
		Actor:           actor.Email,
		AffectedSubject: &subject,
		Detail:          map[string]interface{}{"role": req.Role, "active": user.Active},
	})

	response := toUserResponse(user)
	return &response, nil
}

// DeactivateUser is a soft delete. The account keeps its audit history and
// its open session is cut immediately.
func (s *adminService) DeactivateUser(ctx context.Context, actor *entity.Actor, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if user == nil {
		return entity.NewNotFoundError("user")
	}
	if user.Id == actor.Id {
		return entity.NewPreconditionError("cannot deactivate your own account", "")
	}

	if err := uow.UserRepository().Deactivate(ctx, id); err != nil {
		return err
	}
	_ = s.store.Delete(ctx, kv.PrefixSession+id.String())

	subject := user.Email
	s.auditPublisher.Emit(dto.AuditTrailMessage{
		Kind:            entity.AuditUserDeactivated,
		Actor:           actor.Email,
		AffectedSubject: &subject,
	})
	return nil
}

func (s *adminService) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	users, err := uow.UserRepository().FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, toUserResponse(u))
	}
	return responses, nil
}

// IssueResetLink mints a reset token for a staff account. The durable row
// is the audit record and the redemption authority; the cache entry only
// speeds up validation.
func (s *adminService) IssueResetLink(ctx context.Context, actor *entity.Actor, userId uuid.UUID) (*dto.ResetLinkResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId}, specification.ActiveOnly{})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entity.NewNotFoundError("user")
	}

	rawToken, err := token.NewResetToken()
	if err != nil {
		return nil, err
	}

	ttlHours := s.configService.ResetTokenTTLHours(ctx)
	ttl := time.Duration(ttlHours) * time.Hour
	now := time.Now()
	expiresAt := now.Add(ttl)

	row := &entity.PasswordResetToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		UserEmail: user.Email,
		Token:     rawToken,
		ExpiresAt: expiresAt,
		CreatedBy: actor.Email,
		CreatedAt: now,
	}
	if err := uow.UserRepository().CreatePasswordResetToken(ctx, row); err != nil {
		return nil, err
	}

	cacheValue, _ := json.Marshal(resetTokenCacheEntry{UserId: user.Id, Email: user.Email})
	if err := s.store.Set(ctx, kv.PrefixResetToken+rawToken, string(cacheValue), ttl); err != nil {
		return nil, err
	}

	link := fmt.Sprintf("%s/reset-password/%s", s.clientURL, rawToken)

	var whatsappLink string
	if user.Phone != "" {
		whatsappLink = whatsapp.BuildLink(user.Phone, whatsapp.PasswordResetMessage(user.FullName, link, ttlHours))
	}

	subject := user.Email
	s.auditPublisher.Emit(dto.AuditTrailMessage{
		Kind:            entity.AuditResetTokenIssued,
		Actor:           actor.Email,
		AffectedSubject: &subject,
		Detail:          map[string]interface{}{"expires_at": expiresAt},
	})

	return &dto.ResetLinkResponse{
		Token:        rawToken,
		Link:         link,
		WhatsappLink: whatsappLink,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *adminService) GetSettings(ctx context.Context) ([]dto.SettingResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	settings, err := uow.SettingRepository().All(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.SettingResponse, 0, len(settings))
	for _, setting := range settings {
		responses = append(responses, toSettingResponse(setting))
	}
	return responses, nil
}

func (s *adminService) UpdateSetting(ctx context.Context, actor *entity.Actor, key string, req *dto.UpdateSettingRequest) (*dto.SettingResponse, error) {
	switch key {
	case entity.SettingWeeklyRequestLimit, entity.SettingResetTokenTTLHours:
		if parsed, err := strconv.Atoi(req.Value); err != nil || parsed <= 0 {
			return nil, entity.NewValidationError("value", "must be a positive integer")
		}
	default:
		return nil, entity.NewNotFoundError("setting")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	setting := &entity.Setting{
		Key:       key,
		Value:     req.Value,
		UpdatedBy: actor.Email,
		UpdatedAt: time.Now(),
	}
	if err := uow.SettingRepository().Upsert(ctx, setting); err != nil {
		return nil, err
	}
	s.configService.Invalidate(key)

	subject := key
	s.auditPublisher.Emit(dto.AuditTrailMessage{
		Kind:            entity.AuditConfigChanged,
		Actor:           actor.Email,
		AffectedSubject: &subject,
		Detail:          map[string]interface{}{"value": req.Value},
	})

	response := toSettingResponse(setting)
	return &response, nil
}

func (s *adminService) ListAuditLogs(ctx context.Context, query *dto.ListAuditQuery) ([]dto.AuditLogResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{}
	if query.Kind != "" {
		specs = append(specs, specification.Filter("kind", query.Kind))
	}
	if query.User != "" {
		specs = append(specs, specification.Filter("actor", query.User))
	}
	specs = append(specs, specification.OrderBy{Field: "created_at", Desc: true})

	limit := query.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	specs = append(specs, specification.Pagination{Limit: limit, Offset: query.Offset})

	logs, err := uow.AuditRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		responses = append(responses, dto.AuditLogResponse{
			Id:              l.Id,
			Kind:            l.Kind,
			Actor:           l.Actor,
			AffectedSubject: l.AffectedSubject,
			Detail:          l.Detail,
			OriginIP:        l.OriginIP,
			CreatedAt:       l.CreatedAt,
		})
	}
	return responses, nil
}

// categoryForRole enforces that supervisors carry exactly one category and
// no other role carries any.
func categoryForRole(role entity.UserRole, rawCategory string) (*entity.Category, error) {
	if role == entity.UserRoleSupervisor {
		if rawCategory == "" {
			return nil, entity.NewValidationError("category", "is required for supervisors")
		}
		if !entity.ValidCategory(rawCategory) {
			return nil, entity.NewValidationError("category", "invalid category")
		}
		c := entity.Category(rawCategory)
		return &c, nil
	}
	if rawCategory != "" {
		return nil, entity.NewValidationError("category", "only supervisors have a category")
	}
	return nil, nil
}

func toSettingResponse(s *entity.Setting) dto.SettingResponse {
	return dto.SettingResponse{
		Key:         s.Key,
		Value:       s.Value,
		Description: s.Description,
		UpdatedBy:   s.UpdatedBy,
		UpdatedAt:   s.UpdatedAt,
	}
}
