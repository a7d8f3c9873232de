package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required,min=3"`
	Phone    string `json:"phone" validate:"omitempty,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin supervisor social_work monitor"`
	Category string `json:"category" validate:"omitempty,oneof=Sub14 Sub15 Sub16 Sub17 Sub20"`
}

type UpdateUserRequest struct {
	FullName string `json:"full_name" validate:"required,min=3"`
	Phone    string `json:"phone" validate:"omitempty,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin supervisor social_work monitor"`
	Category string `json:"category" validate:"omitempty,oneof=Sub14 Sub15 Sub16 Sub17 Sub20"`
	Active   *bool  `json:"active"`
}

type ResetLinkResponse struct {
	Token        string    `json:"token"`
	Link         string    `json:"link"`
	WhatsappLink string    `json:"whatsapp_link"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type UpdateSettingRequest struct {
	Value string `json:"value" validate:"required"`
}

type SettingResponse struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description,omitempty"`
	UpdatedBy   string    `json:"updated_by,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type AuditLogResponse struct {
	Id              uuid.UUID              `json:"id"`
	Kind            string                 `json:"kind"`
	Actor           string                 `json:"actor"`
	AffectedSubject *string                `json:"affected_subject,omitempty"`
	Detail          map[string]interface{} `json:"detail,omitempty"`
	OriginIP        *string                `json:"origin_ip,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

type ListAuditQuery struct {
	Kind   string `query:"kind"`
	User   string `query:"user"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}
