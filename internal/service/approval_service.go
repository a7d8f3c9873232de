package service

import (
	"context"
	"fmt"
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
)

const parentTokenTTL = 7 * 24 * time.Hour

type IApprovalService interface {
	DecideSupervisor(ctx context.Context, actor *entity.Actor, id uuid.UUID, req *dto.StageDecisionRequest, origin dto.RequestOrigin) (*dto.RequestResponse, error)
	DecideSocialWork(ctx context.Context, actor *entity.Actor, id uuid.UUID, req *dto.StageDecisionRequest, origin dto.RequestOrigin) (*dto.RequestResponse, error)
	MonitorAction(ctx context.Context, actor *entity.Actor, id uuid.UUID, req *dto.MonitorActionRequest, origin dto.RequestOrigin) (*dto.RequestResponse, error)
	IssueParentLink(ctx context.Context, actor *entity.Actor, id uuid.UUID, origin dto.RequestOrigin) (*dto.ParentLinkResponse, error)

	ParentSummary(ctx context.Context, rawToken string) (*dto.ParentRequestSummary, error)
	DecideParent(ctx context.Context, rawToken string, req *dto.StageDecisionRequest, origin dto.RequestOrigin) (*dto.PublicRequestResponse, error)
}

// approvalService owns every status transition. Each mutation is a guarded
// partial update ("update where stage still pending"), so of two
// concurrent decisions at the same stage exactly one lands and the loser
// sees a conflict instead of silently overwriting.
type approvalService struct {
	uowFactory     unitofwork.RepositoryFactory
	store          kv.Store
	auditPublisher IAuditPublisher
	clientURL      string
}

func NewApprovalService(
	uowFactory unitofwork.RepositoryFactory,
	store kv.Store,
	auditPublisher IAuditPublisher,
	clientURL string,
) IApprovalService {
	return &approvalService{
		uowFactory:     uowFactory,
		store:          store,
		auditPublisher: auditPublisher,
		clientURL:      strings.TrimRight(clientURL, "/"),
	}
}

func (s *approvalService) DecideSupervisor(ctx context.Context, actor *entity.Actor, id uuid.UUID, req *dto.StageDecisionRequest, origin dto.RequestOrigin) (*dto.RequestResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	request, err := uow.RequestRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, entity.NewNotFoundError("request")
	}

	if actor.Category == nil || *actor.Category != request.Category {
		return nil, entity.NewPreconditionError("request belongs to another category", request.GeneralStatus)
	}
	if request.SupervisorStatus != entity.ApprovalPending {
		return nil, entity.NewPreconditionError("supervisor stage already decided", request.GeneralStatus)
	}

	approved := *req.Approved
	note := strings.TrimSpace(req.Note)
	if !approved && note == "" {
		return nil, entity.NewValidationError("note", "is required when rejecting")
	}

	newStatus := decisionStatus(approved)
	general := entity.DeriveGeneralStatus(newStatus, request.ParentStatus, request.SocialWorkStatus, request.MonitorStatus)
	final := entity.DeriveFinalStatus(newStatus, request.ParentStatus, request.SocialWorkStatus, request.MonitorStatus)

	now := time.Now()
	updates := map[string]interface{}{
		"status_supervisor":     string(newStatus),
		"supervisor_note":       optionalString(note),
		"supervisor_decided_at": now,
		"supervisor_decided_by": actor.Email,
		"supervisor_ip":         optionalString(origin.IP),
		"supervisor_device":     optionalString(origin.Device),
		"general_status":        general,
		"final_status":          string(final),
		"updated_at":            now,
	}

	rows, err := uow.RequestRepository().UpdateFields(ctx, id, updates,
		specification.Filter("status_supervisor", entity.ApprovalPending))
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, entity.NewConflictError("supervisor decision was applied concurrently")
	}

	s.emitDecision(entity.AuditSupervisorDecided, actor.Email, request.PublicCode, approved, note, origin)

	return s.refresh(ctx, uow, id)
}

// DecideSocialWork requires both upstream approvals, not just the
// supervisor's. Issuing a final decision while the parent response is
// still outstanding would let the last stage outrun the second.
func (s *approvalService) DecideSocialWork(ctx context.Context, actor *entity.Actor, id uuid.UUID, req *dto.StageDecisionRequest, origin dto.RequestOrigin) (*dto.RequestResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	request, err := uow.RequestRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, entity.NewNotFoundError("request")
	}

	if request.SupervisorStatus != entity.ApprovalApproved || request.ParentStatus != entity.ApprovalApproved {
		return nil, entity.NewPreconditionError("supervisor and parent approval are required first", request.GeneralStatus)
	}
	if request.SocialWorkStatus != entity.ApprovalPending {
		return nil, entity.NewPreconditionError("social work stage already decided", request.GeneralStatus)
	}

	approved := *req.Approved
	note := strings.TrimSpace(req.Note)
	if !approved && note == "" {
		return nil, entity.NewValidationError("note", "is required when rejecting")
	}

	newStatus := decisionStatus(approved)
	general := entity.DeriveGeneralStatus(request.SupervisorStatus, request.ParentStatus, newStatus, request.MonitorStatus)
	final := entity.DeriveFinalStatus(request.SupervisorStatus, request.ParentStatus, newStatus, request.MonitorStatus)

	now := time.Now()
	updates := map[string]interface{}{
		"status_social_work":     string(newStatus),
		"social_work_note":       optionalString(note),
		"social_work_decided_at": now,
		"social_work_decided_by": actor.Email,
		"social_work_ip":         optionalString(origin.IP),
		"social_work_device":     optionalString(origin.Device),
		"general_status":         general,
		"final_status":           string(final),
		"updated_at":             now,
	}

	rows, err := uow.RequestRepository().UpdateFields(ctx, id, updates,
		specification.Filter("status_social_work", entity.ApprovalPending))
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, entity.NewConflictError("social work decision was applied concurrently")
	}

	s.emitDecision(entity.AuditSocialWorkDecided, actor.Email, request.PublicCode, approved, note, origin)

	return s.refresh(ctx, uow, id)
}

func (s *approvalService) MonitorAction(ctx context.Context, actor *entity.Actor, id uuid.UUID, req *dto.MonitorActionRequest, origin dto.RequestOrigin) (*dto.RequestResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	request, err := uow.RequestRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, entity.NewNotFoundError("request")
	}

	if request.FinalStatus != entity.FinalApproved {
		return nil, entity.NewPreconditionError("request is not fully approved", request.GeneralStatus)
	}

	now := time.Now()
	var newStatus entity.MonitorStatus
	var requiredStatus entity.MonitorStatus
	updates := map[string]interface{}{"updated_at": now}

	switch req.Action {
	case "confirm_departure":
		requiredStatus, newStatus = entity.MonitorPending, entity.MonitorDeparted
		updates["departure_confirmed_at"] = now
	case "confirm_return":
		requiredStatus, newStatus = entity.MonitorDeparted, entity.MonitorReturned
		updates["return_confirmed_at"] = now
	case "archive":
		// Archiving requires a confirmed return. A request that is still
		// out cannot be closed from the monitor desk.
		requiredStatus, newStatus = entity.MonitorReturned, entity.MonitorArchived
		updates["archived_at"] = now
		if note := strings.TrimSpace(req.Note); note != "" {
			updates["monitor_note"] = note
		}
	default:
		return nil, entity.NewValidationError("action", "unknown monitor action")
	}

	if request.MonitorStatus != requiredStatus {
		return nil, entity.NewPreconditionError(
			fmt.Sprintf("action %s is not legal from monitor status %s", req.Action, request.MonitorStatus),
			request.GeneralStatus)
	}

	general := entity.DeriveGeneralStatus(request.SupervisorStatus, request.ParentStatus, request.SocialWorkStatus, newStatus)
	final := entity.DeriveFinalStatus(request.SupervisorStatus, request.ParentStatus, request.SocialWorkStatus, newStatus)
	updates["status_monitor"] = string(newStatus)
	updates["general_status"] = general
	updates["final_status"] = string(final)

	rows, err := uow.RequestRepository().UpdateFields(ctx, id, updates,
		specification.Filter("status_monitor", requiredStatus))
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, entity.NewConflictError("monitor action was applied concurrently")
	}

	subject := request.PublicCode
	originIP := origin.IP
	s.auditPublisher.Emit(dto.AuditTrailMessage{
		Kind:            entity.AuditMonitorAction,
		Actor:           actor.Email,
		AffectedSubject: &subject,
		Detail:          map[string]interface{}{"action": req.Action, "note": req.Note},
		OriginIP:        &originIP,
	})

	return s.refresh(ctx, uow, id)
}

func (s *approvalService) IssueParentLink(ctx context.Context, actor *entity.Actor, id uuid.UUID, origin dto.RequestOrigin) (*dto.ParentLinkResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	request, err := uow.RequestRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, entity.NewNotFoundError("request")
	}

	if request.SupervisorStatus != entity.ApprovalApproved {
		return nil, entity.NewPreconditionError("supervisor approval is required first", request.GeneralStatus)
	}
	if request.ParentStatus != entity.ApprovalPending {
		return nil, entity.NewPreconditionError("parent stage already decided", request.GeneralStatus)
	}

	rawToken, err := token.NewParentApprovalToken()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().Add(parentTokenTTL)

	// Reissuing replaces the previous token on the row; the old cache key
	// dies on its own TTL and the row only honors the current one.
	rows, err := uow.RequestRepository().UpdateFields(ctx, id, map[string]interface{}{
		"parent_token":            rawToken,
		"parent_token_expires_at": expiresAt,
		"updated_at":              time.Now(),
	}, specification.Filter("status_parent", entity.ApprovalPending))
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, entity.NewConflictError("parent stage was decided concurrently")
	}

	if err := s.store.Set(ctx, kv.PrefixParentApprovalToken+rawToken, request.Id.String(), parentTokenTTL); err != nil {
		return nil, err
	}

	link := fmt.Sprintf("%s/parent-approval/%s", s.clientURL, rawToken)
	message := whatsapp.ParentApprovalMessage(request.AthleteName, request.DepartureDate, request.DepartureTime, request.ReasonDestination, link)

	subject := request.PublicCode
	originIP := origin.IP
	s.auditPublisher.Emit(dto.AuditTrailMessage{
		Kind:            entity.AuditParentLinkIssued,
		Actor:           actor.Email,
		AffectedSubject: &subject,
		Detail:          map[string]interface{}{"guardian": request.GuardianName, "expires_at": expiresAt},
		OriginIP:        &originIP,
	})

	return &dto.ParentLinkResponse{
		Token:        rawToken,
		Link:         link,
		WhatsappLink: whatsapp.BuildLink(request.GuardianPhone, message),
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *approvalService) ParentSummary(ctx context.Context, rawToken string) (*dto.ParentRequestSummary, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	request, err := s.resolveParentToken(ctx, uow, rawToken)
	if err != nil {
		return nil, err
	}

	return &dto.ParentRequestSummary{
		PublicCode:        request.PublicCode,
		AthleteName:       request.AthleteName,
		Category:          string(request.Category),
		DepartureDate:     request.DepartureDate,
		DepartureTime:     request.DepartureTime,
		ReturnDate:        request.ReturnDate,
		ReturnTime:        request.ReturnTime,
		ReasonDestination: request.ReasonDestination,
		ParentStatus:      string(request.ParentStatus),
	}, nil
}

func (s *approvalService) DecideParent(ctx context.Context, rawToken string, req *dto.StageDecisionRequest, origin dto.RequestOrigin) (*dto.PublicRequestResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	request, err := s.resolveParentToken(ctx, uow, rawToken)
	if err != nil {
		return nil, err
	}

	approved := *req.Approved
	note := strings.TrimSpace(req.Note)
	if !approved && note == "" {
		return nil, entity.NewValidationError("note", "is required when rejecting")
	}

	newStatus := decisionStatus(approved)
	general := entity.DeriveGeneralStatus(request.SupervisorStatus, newStatus, request.SocialWorkStatus, request.MonitorStatus)
	final := entity.DeriveFinalStatus(request.SupervisorStatus, newStatus, request.SocialWorkStatus, request.MonitorStatus)

	now := time.Now()
	updates := map[string]interface{}{
		"status_parent":     string(newStatus),
		"parent_note":       optionalString(note),
		"parent_decided_at": now,
		"parent_ip":         optionalString(origin.IP),
		"parent_device":     optionalString(origin.Device),
		"general_status":    general,
		"final_status":      string(final),
		"updated_at":        now,
	}

	rows, err := uow.RequestRepository().UpdateFields(ctx, request.Id, updates,
		specification.Filter("status_parent", entity.ApprovalPending))
	if err != nil {
		return nil, err
	}

	// Single use: once a decision lands (ours or a concurrent one) the
	// cache entry goes away, so a replayed link reads as never existed.
	_ = s.store.Delete(ctx, kv.PrefixParentApprovalToken+rawToken)

	if rows == 0 {
		return nil, entity.NewConflictError("parent decision was applied concurrently")
	}

	s.emitDecision(entity.AuditParentDecided, "guardian:"+request.GuardianName, request.PublicCode, approved, note, origin)

	refreshed, err := uow.RequestRepository().FindOne(ctx, specification.ByID{ID: request.Id})
	if err != nil {
		return nil, err
	}
	if refreshed == nil {
		return nil, entity.NewNotFoundError("request")
	}
	return &dto.PublicRequestResponse{
		PublicCode:    refreshed.PublicCode,
		AthleteName:   refreshed.AthleteName,
		Category:      string(refreshed.Category),
		DepartureDate: refreshed.DepartureDate,
		DepartureTime: refreshed.DepartureTime,
		ReturnDate:    refreshed.ReturnDate,
		ReturnTime:    refreshed.ReturnTime,
		GeneralStatus: refreshed.GeneralStatus,
		FinalStatus:   string(refreshed.FinalStatus),
		CreatedAt:     refreshed.CreatedAt,
	}, nil
}

// resolveParentToken turns a raw token into a request with the parent
// stage still open. Unknown, expired and redeemed tokens are all the same
// NotFoundError so callers learn nothing about token validity.
func (s *approvalService) resolveParentToken(ctx context.Context, uow unitofwork.UnitOfWork, rawToken string) (*entity.AuthorizationRequest, error) {
	var request *entity.AuthorizationRequest

	value, found, err := s.store.Get(ctx, kv.PrefixParentApprovalToken+rawToken)
	if err == nil && found {
		if id, parseErr := uuid.Parse(value); parseErr == nil {
			request, err = uow.RequestRepository().FindOne(ctx, specification.ByID{ID: id})
			if err != nil {
				return nil, err
			}
		}
	}

	// Cache miss falls back to the durable row; the cache is a derived
	// index, not the source of truth.
	if request == nil {
		request, err = uow.RequestRepository().FindOne(ctx, specification.Filter("parent_token", rawToken))
		if err != nil {
			return nil, err
		}
		if request == nil || request.ParentTokenExpiresAt == nil || time.Now().After(*request.ParentTokenExpiresAt) {
			return nil, entity.NewNotFoundError("approval link")
		}
	}

	if request.ParentToken == nil || *request.ParentToken != rawToken {
		return nil, entity.NewNotFoundError("approval link")
	}
	if request.ParentStatus != entity.ApprovalPending {
		return nil, entity.NewNotFoundError("approval link")
	}
	return request, nil
}

func (s *approvalService) refresh(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*dto.RequestResponse, error) {
	request, err := uow.RequestRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, entity.NewNotFoundError("request")
	}
	return toRequestResponse(request), nil
}

func (s *approvalService) emitDecision(kind, actor, publicCode string, approved bool, note string, origin dto.RequestOrigin) {
	subject := publicCode
	originIP := origin.IP
	s.auditPublisher.Emit(dto.AuditTrailMessage{
		Kind:            kind,
		Actor:           actor,
		AffectedSubject: &subject,
		Detail:          map[string]interface{}{"approved": approved, "note": note},
		OriginIP:        &originIP,
	})
}

func decisionStatus(approved bool) entity.ApprovalStatus {
	if approved {
		return entity.ApprovalApproved
	}
	return entity.ApprovalRejected
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
