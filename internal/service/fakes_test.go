package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"leave-auth-be/internal/dto"
	"leave-auth-be/internal/entity"
	"leave-auth-be/internal/repository/contract"
	"leave-auth-be/internal/repository/specification"
	"leave-auth-be/internal/repository/unitofwork"
	"leave-auth-be/pkg/kv"

	"github.com/google/uuid"
)

// In-memory repository fakes. They interpret the same specification
// structs the gorm implementations do, and UpdateFields keeps the guarded
// zero-rows-on-lost-race semantics, so the services exercise the real
// conflict paths.

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*entity.AuthorizationRequest

	// beforeUpdate runs between the service's read and its guarded write,
	// to simulate a concurrent writer.
	beforeUpdate func()
	// afterUpdate runs once a guarded write has landed, to simulate a
	// competing mutation before the service re-reads the row.
	afterUpdate func()
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[uuid.UUID]*entity.AuthorizationRequest)}
}

func requestField(r *entity.AuthorizationRequest, field string) string {
	switch field {
	case "status_supervisor":
		return string(r.SupervisorStatus)
	case "status_parent":
		return string(r.ParentStatus)
	case "status_social_work":
		return string(r.SocialWorkStatus)
	case "status_monitor":
		return string(r.MonitorStatus)
	case "general_status":
		return r.GeneralStatus
	case "final_status":
		return string(r.FinalStatus)
	case "category":
		return string(r.Category)
	case "athlete_name":
		return r.AthleteName
	case "parent_token":
		if r.ParentToken != nil {
			return *r.ParentToken
		}
		return ""
	}
	return ""
}

func matchRequest(r *entity.AuthorizationRequest, spec specification.Specification) bool {
	switch s := spec.(type) {
	case specification.ByID:
		return r.Id == s.ID
	case specification.ByPublicCode:
		return r.PublicCode == s.Code
	case specification.ByRequesterName:
		return r.AthleteName == s.Name
	case specification.ByCategory:
		return r.Category == s.Category
	case specification.CreatedSince:
		return !r.CreatedAt.Before(s.Since)
	case specification.FilterBy:
		return requestField(r, s.Field) == fmt.Sprint(s.Value)
	case specification.AwaitingSocialWork:
		return r.SupervisorStatus == entity.ApprovalApproved &&
			(r.SocialWorkStatus == entity.ApprovalPending || r.ParentStatus == entity.ApprovalPending)
	case specification.AwaitingMonitor:
		return r.SocialWorkStatus == entity.ApprovalApproved &&
			(r.MonitorStatus == entity.MonitorPending || r.MonitorStatus == entity.MonitorDeparted || r.MonitorStatus == entity.MonitorReturned)
	}
	// Ordering and pagination are handled by the caller.
	return true
}

func (f *fakeRequestRepo) collect(specs ...specification.Specification) []*entity.AuthorizationRequest {
	var matches []*entity.AuthorizationRequest
	for _, r := range f.requests {
		ok := true
		for _, spec := range specs {
			if !matchRequest(r, spec) {
				ok = false
				break
			}
		}
		if ok {
			cp := *r
			matches = append(matches, &cp)
		}
	}

	desc := false
	for _, spec := range specs {
		if o, ok := spec.(specification.OrderBy); ok {
			desc = o.Desc
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if desc {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return matches
}

func (f *fakeRequestRepo) Create(ctx context.Context, request *entity.AuthorizationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *request
	f.requests[request.Id] = &cp
	return nil
}

func (f *fakeRequestRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AuthorizationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matches := f.collect(specs...)
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (f *fakeRequestRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AuthorizationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.collect(specs...), nil
}

func (f *fakeRequestRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.collect(specs...))), nil
}

func (f *fakeRequestRepo) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}, guards ...specification.Specification) (int64, error) {
	if f.beforeUpdate != nil {
		f.beforeUpdate()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.requests[id]
	if !ok {
		return 0, nil
	}
	for _, guard := range guards {
		if !matchRequest(r, guard) {
			return 0, nil
		}
	}
	for col, value := range updates {
		applyRequestUpdate(r, col, value)
	}
	if f.afterUpdate != nil {
		f.afterUpdate()
	}
	return 1, nil
}

func strPtrValue(v interface{}) *string {
	switch t := v.(type) {
	case nil:
		return nil
	case *string:
		return t
	case string:
		s := t
		return &s
	}
	return nil
}

func timeValue(v interface{}) *time.Time {
	if t, ok := v.(time.Time); ok {
		return &t
	}
	return nil
}

func applyRequestUpdate(r *entity.AuthorizationRequest, col string, v interface{}) {
	switch col {
	case "status_supervisor":
		r.SupervisorStatus = entity.ApprovalStatus(v.(string))
	case "supervisor_note":
		r.SupervisorNote = strPtrValue(v)
	case "supervisor_decided_at":
		r.SupervisorDecidedAt = timeValue(v)
	case "supervisor_decided_by":
		r.SupervisorDecidedBy = strPtrValue(v)
	case "supervisor_ip":
		r.SupervisorIP = strPtrValue(v)
	case "supervisor_device":
		r.SupervisorDevice = strPtrValue(v)

	case "status_parent":
		r.ParentStatus = entity.ApprovalStatus(v.(string))
	case "parent_note":
		r.ParentNote = strPtrValue(v)
	case "parent_decided_at":
		r.ParentDecidedAt = timeValue(v)
	case "parent_ip":
		r.ParentIP = strPtrValue(v)
	case "parent_device":
		r.ParentDevice = strPtrValue(v)
	case "parent_token":
		r.ParentToken = strPtrValue(v)
	case "parent_token_expires_at":
		r.ParentTokenExpiresAt = timeValue(v)

	case "status_social_work":
		r.SocialWorkStatus = entity.ApprovalStatus(v.(string))
	case "social_work_note":
		r.SocialWorkNote = strPtrValue(v)
	case "social_work_decided_at":
		r.SocialWorkDecidedAt = timeValue(v)
	case "social_work_decided_by":
		r.SocialWorkDecidedBy = strPtrValue(v)
	case "social_work_ip":
		r.SocialWorkIP = strPtrValue(v)
	case "social_work_device":
		r.SocialWorkDevice = strPtrValue(v)

	case "status_monitor":
		r.MonitorStatus = entity.MonitorStatus(v.(string))
	case "monitor_note":
		r.MonitorNote = strPtrValue(v)
	case "departure_confirmed_at":
		r.DepartureConfirmedAt = timeValue(v)
	case "return_confirmed_at":
		r.ReturnConfirmedAt = timeValue(v)
	case "archived_at":
		r.ArchivedAt = timeValue(v)

	case "general_status":
		r.GeneralStatus = v.(string)
	case "final_status":
		r.FinalStatus = entity.FinalStatus(v.(string))
	case "updated_at":
		if t := timeValue(v); t != nil {
			r.UpdatedAt = *t
		}
	}
}

func (f *fakeRequestRepo) get(id uuid.UUID) *entity.AuthorizationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.requests[id]; ok {
		cp := *r
		return &cp
	}
	return nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[uuid.UUID]*entity.User
	tokens []*entity.PasswordResetToken
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func matchUser(u *entity.User, spec specification.Specification) bool {
	switch s := spec.(type) {
	case specification.ByID:
		return u.Id == s.ID
	case specification.ByEmail:
		return u.Email == s.Email
	case specification.ActiveOnly:
		return u.Active
	}
	return true
}

func matchResetToken(t *entity.PasswordResetToken, spec specification.Specification) bool {
	switch s := spec.(type) {
	case specification.ByToken:
		return t.Token == s.Token
	case specification.Unused:
		return !t.Used
	}
	return true
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *user
	f.users[user.Id] = &cp
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	return f.Create(ctx, user)
}

func (f *fakeUserRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.Active = false
	}
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (f *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		ok := true
		for _, spec := range specs {
			if !matchUser(u, spec) {
				ok = false
				break
			}
		}
		if ok {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.User
	for _, u := range f.users {
		ok := true
		for _, spec := range specs {
			if !matchUser(u, spec) {
				ok = false
				break
			}
		}
		if ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) CreatePasswordResetToken(ctx context.Context, token *entity.PasswordResetToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *token
	f.tokens = append(f.tokens, &cp)
	return nil
}

func (f *fakeUserRepo) FindPasswordResetToken(ctx context.Context, specs ...specification.Specification) (*entity.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		ok := true
		for _, spec := range specs {
			if !matchResetToken(t, spec) {
				ok = false
				break
			}
		}
		if ok {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) MarkResetTokenUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.Id == id {
			t.Used = true
			t.UsedAt = &usedAt
		}
	}
	return nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*entity.AuditLog
}

func (f *fakeAuditRepo) Create(ctx context.Context, log *entity.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *log
	f.entries = append(f.entries, &cp)
	return nil
}

func (f *fakeAuditRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.AuditLog
	for _, e := range f.entries {
		ok := true
		for _, spec := range specs {
			filter, isFilter := spec.(specification.FilterBy)
			if !isFilter {
				continue
			}
			switch filter.Field {
			case "kind":
				if e.Kind != fmt.Sprint(filter.Value) {
					ok = false
				}
			case "actor":
				if e.Actor != fmt.Sprint(filter.Value) {
					ok = false
				}
			}
		}
		if ok {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeSettingRepo struct {
	mu       sync.Mutex
	settings map[string]*entity.Setting
}

func newFakeSettingRepo() *fakeSettingRepo {
	return &fakeSettingRepo{settings: make(map[string]*entity.Setting)}
}

func (f *fakeSettingRepo) Get(ctx context.Context, key string) (*entity.Setting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.settings[key]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeSettingRepo) Upsert(ctx context.Context, setting *entity.Setting) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *setting
	f.settings[setting.Key] = &cp
	return nil
}

func (f *fakeSettingRepo) All(ctx context.Context) ([]*entity.Setting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Setting
	for _, s := range f.settings {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

type fakeUnitOfWork struct {
	requests *fakeRequestRepo
	users    *fakeUserRepo
	audits   *fakeAuditRepo
	settings *fakeSettingRepo
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) RequestRepository() contract.RequestRepository { return u.requests }
func (u *fakeUnitOfWork) UserRepository() contract.UserRepository       { return u.users }
func (u *fakeUnitOfWork) AuditRepository() contract.AuditRepository     { return u.audits }
func (u *fakeUnitOfWork) SettingRepository() contract.SettingRepository { return u.settings }

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

type fakeAuditPublisher struct {
	mu       sync.Mutex
	messages []dto.AuditTrailMessage
}

func (f *fakeAuditPublisher) Emit(m dto.AuditTrailMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, m)
}

func (f *fakeAuditPublisher) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.messages))
	for _, m := range f.messages {
		out = append(out, m.Kind)
	}
	return out
}

type fakeConfigService struct {
	weeklyLimit int
	resetTTL    int
}

func (f *fakeConfigService) WeeklyRequestLimit(ctx context.Context) int { return f.weeklyLimit }
func (f *fakeConfigService) ResetTokenTTLHours(ctx context.Context) int { return f.resetTTL }
func (f *fakeConfigService) Invalidate(key string)                      {}

// fixture wires the fakes into real services.
type fixture struct {
	requests *fakeRequestRepo
	users    *fakeUserRepo
	audits   *fakeAuditRepo
	settings *fakeSettingRepo
	factory  *fakeFactory
	store    kv.Store
	audit    *fakeAuditPublisher
	config   *fakeConfigService
}

func newFixture() *fixture {
	requests := newFakeRequestRepo()
	users := newFakeUserRepo()
	audits := &fakeAuditRepo{}
	settings := newFakeSettingRepo()
	return &fixture{
		requests: requests,
		users:    users,
		audits:   audits,
		settings: settings,
		factory:  &fakeFactory{uow: &fakeUnitOfWork{requests: requests, users: users, audits: audits, settings: settings}},
		store:    kv.NewMemoryStore(),
		audit:    &fakeAuditPublisher{},
		config:   &fakeConfigService{weeklyLimit: 5, resetTTL: 1},
	}
}

func (f *fixture) seedRequest(category entity.Category, mutate func(*entity.AuthorizationRequest)) *entity.AuthorizationRequest {
	now := time.Now()
	r := &entity.AuthorizationRequest{
		Id:                uuid.New(),
		PublicCode:        fmt.Sprintf("AUTH-2026-%06d-TEST", len(f.requests.requests)+1),
		AthleteName:       "Ana Souza",
		Email:             "ana@example.com",
		BirthDate:         "2010-03-14",
		Phone:             "11987654321",
		Category:          category,
		GuardianName:      "Marcia Souza",
		GuardianPhone:     "11912345678",
		DepartureDate:     now.Add(24 * time.Hour).Format("2006-01-02"),
		DepartureTime:     "14:00",
		ReturnDate:        now.Add(48 * time.Hour).Format("2006-01-02"),
		ReturnTime:        "18:00",
		ReasonDestination: "Family visit",
		SupervisorStatus:  entity.ApprovalPending,
		ParentStatus:      entity.ApprovalPending,
		SocialWorkStatus:  entity.ApprovalPending,
		MonitorStatus:     entity.MonitorPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if mutate != nil {
		mutate(r)
	}
	r.GeneralStatus = entity.DeriveGeneralStatus(r.SupervisorStatus, r.ParentStatus, r.SocialWorkStatus, r.MonitorStatus)
	r.FinalStatus = entity.DeriveFinalStatus(r.SupervisorStatus, r.ParentStatus, r.SocialWorkStatus, r.MonitorStatus)
	_ = f.requests.Create(context.Background(), r)
	return r
}

func boolPtr(b bool) *bool { return &b }

func supervisorActor(category entity.Category) *entity.Actor {
	return &entity.Actor{
		Id:       uuid.New(),
		Email:    "supervisor@facility.local",
		Role:     entity.UserRoleSupervisor,
		Category: &category,
	}
}

func socialWorkActor() *entity.Actor {
	return &entity.Actor{Id: uuid.New(), Email: "socialwork@facility.local", Role: entity.UserRoleSocialWork}
}

func monitorActor() *entity.Actor {
	return &entity.Actor{Id: uuid.New(), Email: "monitor@facility.local", Role: entity.UserRoleMonitor}
}
