package mapper

import (
	"leave-auth-be/internal/entity"
	"leave-auth-be/internal/model"

	"gorm.io/datatypes"
)

type RequestMapper struct{}

func NewRequestMapper() *RequestMapper {
	return &RequestMapper{}
}

func (m *RequestMapper) ToEntity(r *model.AuthorizationRequest) *entity.AuthorizationRequest {
	if r == nil {
		return nil
	}
	var deviceInfo *string
	if len(r.DeviceInfo) > 0 {
		s := string(r.DeviceInfo)
		deviceInfo = &s
	}
	return &entity.AuthorizationRequest{
		Id:         r.Id,
		PublicCode: r.PublicCode,

		AthleteName:   r.AthleteName,
		Email:         r.Email,
		BirthDate:     r.BirthDate,
		Phone:         r.Phone,
		Category:      entity.Category(r.Category),
		GuardianName:  r.GuardianName,
		GuardianPhone: r.GuardianPhone,

		DepartureDate:     r.DepartureDate,
		DepartureTime:     r.DepartureTime,
		ReturnDate:        r.ReturnDate,
		ReturnTime:        r.ReturnTime,
		ReasonDestination: r.ReasonDestination,
		DeviceInfo:        deviceInfo,

		SupervisorStatus:    entity.ApprovalStatus(r.StatusSupervisor),
		SupervisorNote:      r.SupervisorNote,
		SupervisorDecidedAt: r.SupervisorDecidedAt,
		SupervisorDecidedBy: r.SupervisorDecidedBy,
		SupervisorIP:        r.SupervisorIp,
		SupervisorDevice:    r.SupervisorDevice,

		ParentStatus:         entity.ApprovalStatus(r.StatusParent),
		ParentNote:           r.ParentNote,
		ParentDecidedAt:      r.ParentDecidedAt,
		ParentIP:             r.ParentIp,
		ParentDevice:         r.ParentDevice,
		ParentToken:          r.ParentToken,
		ParentTokenExpiresAt: r.ParentTokenExpiresAt,

		SocialWorkStatus:    entity.ApprovalStatus(r.StatusSocialWork),
		SocialWorkNote:      r.SocialWorkNote,
		SocialWorkDecidedAt: r.SocialWorkDecidedAt,
		SocialWorkDecidedBy: r.SocialWorkDecidedBy,
		SocialWorkIP:        r.SocialWorkIp,
		SocialWorkDevice:    r.SocialWorkDevice,

		MonitorStatus:        entity.MonitorStatus(r.StatusMonitor),
		MonitorNote:          r.MonitorNote,
		DepartureConfirmedAt: r.DepartureConfirmedAt,
		ReturnConfirmedAt:    r.ReturnConfirmedAt,
		ArchivedAt:           r.ArchivedAt,

		GeneralStatus: r.GeneralStatus,
		FinalStatus:   entity.FinalStatus(r.FinalStatus),

		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (m *RequestMapper) ToModel(r *entity.AuthorizationRequest) *model.AuthorizationRequest {
	if r == nil {
		return nil
	}
	var deviceInfo datatypes.JSON
	if r.DeviceInfo != nil {
		deviceInfo = datatypes.JSON(*r.DeviceInfo)
	}
	return &model.AuthorizationRequest{
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
		DeviceInfo:        deviceInfo,

		StatusSupervisor:    string(r.SupervisorStatus),
		SupervisorNote:      r.SupervisorNote,
		SupervisorDecidedAt: r.SupervisorDecidedAt,
		SupervisorDecidedBy: r.SupervisorDecidedBy,
		SupervisorIp:        r.SupervisorIP,
		SupervisorDevice:    r.SupervisorDevice,

		StatusParent:         string(r.ParentStatus),
		ParentNote:           r.ParentNote,
		ParentDecidedAt:      r.ParentDecidedAt,
		ParentIp:             r.ParentIP,
		ParentDevice:         r.ParentDevice,
		ParentToken:          r.ParentToken,
		ParentTokenExpiresAt: r.ParentTokenExpiresAt,

		StatusSocialWork:    string(r.SocialWorkStatus),
		SocialWorkNote:      r.SocialWorkNote,
		SocialWorkDecidedAt: r.SocialWorkDecidedAt,
		SocialWorkDecidedBy: r.SocialWorkDecidedBy,
		SocialWorkIp:        r.SocialWorkIP,
		SocialWorkDevice:    r.SocialWorkDevice,

		StatusMonitor:        string(r.MonitorStatus),
		MonitorNote:          r.MonitorNote,
		DepartureConfirmedAt: r.DepartureConfirmedAt,
		ReturnConfirmedAt:    r.ReturnConfirmedAt,
		ArchivedAt:           r.ArchivedAt,

		GeneralStatus: r.GeneralStatus,
		FinalStatus:   string(r.FinalStatus),

		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (m *RequestMapper) ToEntities(models []*model.AuthorizationRequest) []*entity.AuthorizationRequest {
	entities := make([]*entity.AuthorizationRequest, 0, len(models))
	for _, r := range models {
		entities = append(entities, m.ToEntity(r))
	}
	return entities
}
