package dto

import "time"

// StageDecisionRequest is the body for supervisor, parent and social-work
// decisions. Approved is a pointer so an omitted field can be told apart
// from an explicit reject.
type StageDecisionRequest struct {
	Approved *bool  `json:"approved" validate:"required"`
	Note     string `json:"note"`
}

type MonitorActionRequest struct {
	Action string `json:"action" validate:"required,oneof=confirm_departure confirm_return archive"`
	Note   string `json:"note"`
}

type ParentLinkResponse struct {
	Token        string    `json:"token"`
	Link         string    `json:"link"`
	WhatsappLink string    `json:"whatsapp_link"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ParentRequestSummary is what a guardian sees when opening the approval
// link, before deciding.
type ParentRequestSummary struct {
	PublicCode        string `json:"public_code"`
	AthleteName       string `json:"athlete_name"`
	Category          string `json:"category"`
	DepartureDate     string `json:"departure_date"`
	DepartureTime     string `json:"departure_time"`
	ReturnDate        string `json:"return_date"`
	ReturnTime        string `json:"return_time"`
	ReasonDestination string `json:"reason_destination"`
	ParentStatus      string `json:"parent_status"`
}
