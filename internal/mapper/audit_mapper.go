package mapper

import (
	"encoding/json"

	"leave-auth-be/internal/entity"
	"leave-auth-be/internal/model"

	"gorm.io/datatypes"
)

type AuditMapper struct{}

func NewAuditMapper() *AuditMapper {
	return &AuditMapper{}
}

func (m *AuditMapper) ToEntity(l *model.AuditLog) *entity.AuditLog {
	if l == nil {
		return nil
	}
	var detail map[string]interface{}
	if len(l.Detail) > 0 {
		// Malformed rows keep a nil detail rather than failing the read.
		_ = json.Unmarshal(l.Detail, &detail)
	}
	return &entity.AuditLog{
		Id:              l.Id,
		Kind:            l.Kind,
		Actor:           l.Actor,
		AffectedSubject: l.AffectedSubject,
		Detail:          detail,
		OriginIP:        l.OriginIp,
		CreatedAt:       l.CreatedAt,
	}
}

func (m *AuditMapper) ToModel(l *entity.AuditLog) (*model.AuditLog, error) {
	if l == nil {
		return nil, nil
	}
	var detail datatypes.JSON
	if l.Detail != nil {
		raw, err := json.Marshal(l.Detail)
		if err != nil {
			return nil, err
		}
		detail = raw
	}
	return &model.AuditLog{
		Id:              l.Id,
		Kind:            l.Kind,
		Actor:           l.Actor,
		AffectedSubject: l.AffectedSubject,
		Detail:          detail,
		OriginIp:        l.OriginIP,
		CreatedAt:       l.CreatedAt,
	}, nil
}

func (m *AuditMapper) ToEntities(models []*model.AuditLog) []*entity.AuditLog {
	entities := make([]*entity.AuditLog, 0, len(models))
	for _, l := range models {
		entities = append(entities, m.ToEntity(l))
	}
	return entities
}
