package service

import (
	"context"
	"encoding/json"
	"time"

	"leave-auth-be/internal/dto"
	"leave-auth-be/internal/entity"
	"leave-auth-be/internal/repository/specification"
	"leave-auth-be/internal/repository/unitofwork"
	"leave-auth-be/pkg/token"

	"github.com/google/uuid"
)

const rateLimitWindow = 7 * 24 * time.Hour

type IRequestService interface {
	Create(ctx context.Context, req *dto.CreateRequestRequest, origin dto.RequestOrigin) (*dto.CreateRequestResponse, error)
	FindByCode(ctx context.Context, code string) (*dto.PublicRequestResponse, error)
	FindByID(ctx context.Context, actor *entity.Actor, id uuid.UUID) (*dto.RequestResponse, error)
	List(ctx context.Context, actor *entity.Actor, query *dto.ListRequestsQuery) ([]*dto.RequestResponse, error)
	AttendanceReport(ctx context.Context, query *dto.AttendanceReportQuery) (*dto.AttendanceReportResponse, error)
}

type requestService struct {
	uowFactory     unitofwork.RepositoryFactory
	configService  IConfigService
	auditPublisher IAuditPublisher
}

func NewRequestService(
	uowFactory unitofwork.RepositoryFactory,
	configService IConfigService,
	auditPublisher IAuditPublisher,
) IRequestService {
	return &requestService{
		uowFactory:     uowFactory,
		configService:  configService,
		auditPublisher: auditPublisher,
	}
}

func (s *requestService) Create(ctx context.Context, req *dto.CreateRequestRequest, origin dto.RequestOrigin) (*dto.CreateRequestResponse, error) {
	departureAt, err := time.Parse("2006-01-02 15:04", req.DepartureDate+" "+req.DepartureTime)
	if err != nil {
		return nil, entity.NewValidationError("departure_date", "invalid departure date/time")
	}
	returnAt, err := time.Parse("2006-01-02 15:04", req.ReturnDate+" "+req.ReturnTime)
	if err != nil {
		return nil, entity.NewValidationError("return_date", "invalid return date/time")
	}
	if returnAt.Before(departureAt) {
		return nil, entity.NewValidationError("return_date", "return must not be before departure")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Rolling window rate limit, keyed by the declared athlete name.
	limit := s.configService.WeeklyRequestLimit(ctx)
	windowStart := time.Now().Add(-rateLimitWindow)
	usage, err := uow.RequestRepository().Count(ctx,
		specification.ByRequesterName{Name: req.AthleteName},
		specification.CreatedSince{Since: windowStart},
	)
	if err != nil {
		return nil, err
	}
	if int(usage) >= limit {
		oldest, err := uow.RequestRepository().FindOne(ctx,
			specification.ByRequesterName{Name: req.AthleteName},
			specification.CreatedSince{Since: windowStart},
			specification.OrderBy{Field: "created_at"},
		)
		if err != nil {
			return nil, err
		}
		retryAfter := time.Now().Add(rateLimitWindow)
		if oldest != nil {
			retryAfter = oldest.CreatedAt.Add(rateLimitWindow)
		}
		return nil, &entity.RateLimitError{Usage: int(usage), Limit: limit, RetryAfter: retryAfter}
	}

	publicCode, err := token.NewPublicCode()
	if err != nil {
		return nil, err
	}

	var deviceInfo *string
	if origin.IP != "" || origin.Device != "" {
		raw, _ := json.Marshal(map[string]string{"ip": origin.IP, "device": origin.Device})
		info := string(raw)
		deviceInfo = &info
	}

	now := time.Now()
	request := &entity.AuthorizationRequest{
		Id:         uuid.New(),
		PublicCode: publicCode,

		AthleteName:   req.AthleteName,
		Email:         req.Email,
		BirthDate:     req.BirthDate,
		Phone:         req.Phone,
		Category:      entity.Category(req.Category),
		GuardianName:  req.GuardianName,
		GuardianPhone: req.GuardianPhone,

		DepartureDate:     req.DepartureDate,
		DepartureTime:     req.DepartureTime,
		ReturnDate:        req.ReturnDate,
		ReturnTime:        req.ReturnTime,
		ReasonDestination: req.ReasonDestination,
		DeviceInfo:        deviceInfo,

		SupervisorStatus: entity.ApprovalPending,
		ParentStatus:     entity.ApprovalPending,
		SocialWorkStatus: entity.ApprovalPending,
		MonitorStatus:    entity.MonitorPending,

		CreatedAt: now,
		UpdatedAt: now,
	}
	request.GeneralStatus = entity.DeriveGeneralStatus(request.SupervisorStatus, request.ParentStatus, request.SocialWorkStatus, request.MonitorStatus)
	request.FinalStatus = entity.DeriveFinalStatus(request.SupervisorStatus, request.ParentStatus, request.SocialWorkStatus, request.MonitorStatus)

	if err := uow.RequestRepository().Create(ctx, request); err != nil {
		return nil, err
	}

	subject := request.PublicCode
	originIP := origin.IP
	s.auditPublisher.Emit(dto.AuditTrailMessage{
		Kind:            entity.AuditRequestCreated,
		Actor:           req.AthleteName,
		AffectedSubject: &subject,
		Detail: map[string]interface{}{
			"category":       req.Category,
			"departure_date": req.DepartureDate,
			"return_date":    req.ReturnDate,
		},
		OriginIP: &originIP,
	})

	used := int(usage) + 1
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}

	return &dto.CreateRequestResponse{
		Id:            request.Id,
		PublicCode:    request.PublicCode,
		GeneralStatus: request.GeneralStatus,
		FinalStatus:   string(request.FinalStatus),
		LimitInfo:     dto.LimitUsage{Used: used, Limit: limit, Remaining: remaining},
		CreatedAt:     request.CreatedAt,
	}, nil
}

func (s *requestService) FindByCode(ctx context.Context, code string) (*dto.PublicRequestResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	request, err := uow.RequestRepository().FindOne(ctx, specification.ByPublicCode{Code: code})
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, entity.NewNotFoundError("request")
	}

	return &dto.PublicRequestResponse{
		PublicCode:    request.PublicCode,
		AthleteName:   request.AthleteName,
		Category:      string(request.Category),
		DepartureDate: request.DepartureDate,
		DepartureTime: request.DepartureTime,
		ReturnDate:    request.ReturnDate,
		ReturnTime:    request.ReturnTime,
		GeneralStatus: request.GeneralStatus,
		FinalStatus:   string(request.FinalStatus),
		CreatedAt:     request.CreatedAt,
	}, nil
}

func (s *requestService) FindByID(ctx context.Context, actor *entity.Actor, id uuid.UUID) (*dto.RequestResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	request, err := uow.RequestRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, entity.NewNotFoundError("request")
	}

	if actor.Role == entity.UserRoleSupervisor {
		if actor.Category == nil || *actor.Category != request.Category {
			return nil, entity.NewPreconditionError("request belongs to another category", request.GeneralStatus)
		}
	}

	return toRequestResponse(request), nil
}

// List returns requests visible to the actor. Supervisors are always
// restricted to their category. Social work and monitor get their work
// queue when no explicit filters are given, and the full set otherwise.
func (s *requestService) List(ctx context.Context, actor *entity.Actor, query *dto.ListRequestsQuery) ([]*dto.RequestResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{}
	if query.Status != "" {
		specs = append(specs, specification.Filter("general_status", query.Status))
	}
	if query.Category != "" {
		if !entity.ValidCategory(query.Category) {
			return nil, entity.NewValidationError("category", "invalid category")
		}
		specs = append(specs, specification.ByCategory{Category: entity.Category(query.Category)})
	}

	switch actor.Role {
	case entity.UserRoleSupervisor:
		if actor.Category == nil {
			return nil, entity.NewPreconditionError("supervisor has no assigned category", "")
		}
		specs = append(specs, specification.ByCategory{Category: *actor.Category})
	case entity.UserRoleSocialWork:
		if query.Status == "" && query.Category == "" {
			specs = append(specs, specification.AwaitingSocialWork{})
		}
	case entity.UserRoleMonitor:
		if query.Status == "" && query.Category == "" {
			specs = append(specs, specification.AwaitingMonitor{})
		}
	}

	specs = append(specs, specification.OrderBy{Field: "created_at", Desc: true})
	if query.Limit > 0 {
		specs = append(specs, specification.Pagination{Limit: query.Limit, Offset: query.Offset})
	}

	requests, err := uow.RequestRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.RequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, toRequestResponse(r))
	}
	return responses, nil
}

// AttendanceReport classifies every fully approved, still-open trip for
// the monitor desk: not yet departed, currently out, overdue, or back.
// The roll call is evaluated at the requested instant, defaulting to now,
// so a monitor can replay who was supposed to be out at any point in time.
func (s *requestService) AttendanceReport(ctx context.Context, query *dto.AttendanceReportQuery) (*dto.AttendanceReportResponse, error) {
	now := time.Now()
	reportDate := now.Format("2006-01-02")
	reportTime := now.Format("15:04")
	if query != nil && query.Date != "" {
		reportDate = query.Date
	}
	if query != nil && query.Time != "" {
		reportTime = query.Time
	}
	at, err := time.Parse("2006-01-02 15:04", reportDate+" "+reportTime)
	if err != nil {
		return nil, entity.NewValidationError("date", "invalid report date/time")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	requests, err := uow.RequestRepository().FindAll(ctx,
		specification.AwaitingMonitor{},
		specification.OrderBy{Field: "departure_date"},
	)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.AttendanceEntry, 0, len(requests))
	for _, r := range requests {
		var situation string
		switch r.MonitorStatus {
		case entity.MonitorReturned:
			situation = "returned"
		case entity.MonitorDeparted:
			situation = "out"
			if returnAt, err := r.ReturnAt(); err == nil && at.After(returnAt) {
				situation = "overdue"
			}
		default:
			situation = "awaiting_departure"
		}

		entries = append(entries, dto.AttendanceEntry{
			Id:            r.Id,
			PublicCode:    r.PublicCode,
			AthleteName:   r.AthleteName,
			Category:      string(r.Category),
			DepartureDate: r.DepartureDate,
			DepartureTime: r.DepartureTime,
			ReturnDate:    r.ReturnDate,
			ReturnTime:    r.ReturnTime,
			Situation:     situation,
		})
	}

	return &dto.AttendanceReportResponse{
		ReportDate:  reportDate,
		ReportTime:  reportTime,
		Total:       len(entries),
		GeneratedAt: at,
		Entries:     entries,
	}, nil
}

func toRequestResponse(r *entity.AuthorizationRequest) *dto.RequestResponse {
	return &dto.RequestResponse{
		Id:         r.Id,
		PublicCode: r.PublicCode,

		AthleteName:   r.AthleteName,
		Email:         r.Email,
		BirthDate:     r.BirthDate,
		Phone:         r.Phone,
		Category:      string(r.Category),
		GuardianName:  r.GuardianName,
		GuardianPhone: r.GuardianPhone,

		DepartureDate:     r.DepartureDate,
		DepartureTime:     r.DepartureTime,
		ReturnDate:        r.ReturnDate,
		ReturnTime:        r.ReturnTime,
		ReasonDestination: r.ReasonDestination,

		Supervisor: dto.StageView{
			Status:    string(r.SupervisorStatus),
			Note:      r.SupervisorNote,
			DecidedAt: r.SupervisorDecidedAt,
			DecidedBy: r.SupervisorDecidedBy,
		},
		Parent: dto.StageView{
			Status:    string(r.ParentStatus),
			Note:      r.ParentNote,
			DecidedAt: r.ParentDecidedAt,
		},
		SocialWork: dto.StageView{
			Status:    string(r.SocialWorkStatus),
			Note:      r.SocialWorkNote,
			DecidedAt: r.SocialWorkDecidedAt,
			DecidedBy: r.SocialWorkDecidedBy,
		},

		MonitorStatus:        string(r.MonitorStatus),
		MonitorNote:          r.MonitorNote,
		DepartureConfirmedAt: r.DepartureConfirmedAt,
		ReturnConfirmedAt:    r.ReturnConfirmedAt,
		ArchivedAt:           r.ArchivedAt,

		GeneralStatus: r.GeneralStatus,
		FinalStatus:   string(r.FinalStatus),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
