package entity

import (
	"time"

	"github.com/google/uuid"
)

// Category is the athlete's age bracket. Supervisors are assigned to
// exactly one category and may only decide requests inside it.
type Category string

const (
	CategorySub14 Category = "Sub14"
	CategorySub15 Category = "Sub15"
	CategorySub16 Category = "Sub16"
	CategorySub17 Category = "Sub17"
	CategorySub20 Category = "Sub20"
)

func ValidCategory(c string) bool {
	switch Category(c) {
	case CategorySub14, CategorySub15, CategorySub16, CategorySub17, CategorySub20:
		return true
	}
	return false
}

// AuthorizationRequest is one leave request moving through the four
// approval stages. The derived GeneralStatus and FinalStatus fields are
// recomputed and persisted on every transition, never computed at read
// time, so historical rows always show what each actor saw when deciding.
type AuthorizationRequest struct {
	Id         uuid.UUID
	PublicCode string

	AthleteName   string
	Email         string
	BirthDate     string
	Phone         string
	Category      Category
	GuardianName  string
	GuardianPhone string

	DepartureDate     string
	DepartureTime     string
	ReturnDate        string
	ReturnTime        string
	ReasonDestination string
	DeviceInfo        *string

	SupervisorStatus    ApprovalStatus
	SupervisorNote      *string
	SupervisorDecidedAt *time.Time
	SupervisorDecidedBy *string
	SupervisorIP        *string
	SupervisorDevice    *string

	ParentStatus         ApprovalStatus
	ParentNote           *string
	ParentDecidedAt      *time.Time
	ParentIP             *string
	ParentDevice         *string
	ParentToken          *string
	ParentTokenExpiresAt *time.Time

	SocialWorkStatus    ApprovalStatus
	SocialWorkNote      *string
	SocialWorkDecidedAt *time.Time
	SocialWorkDecidedBy *string
	SocialWorkIP        *string
	SocialWorkDevice    *string

	MonitorStatus        MonitorStatus
	MonitorNote          *string
	DepartureConfirmedAt *time.Time
	ReturnConfirmedAt    *time.Time
	ArchivedAt           *time.Time

	GeneralStatus string
	FinalStatus   FinalStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

const tripTimeLayout = "2006-01-02 15:04"

// DepartureAt combines the stored date and time strings. Returns an error
// when the stored values do not parse, which only happens for rows written
// before validation existed.
func (r *AuthorizationRequest) DepartureAt() (time.Time, error) {
	return time.Parse(tripTimeLayout, r.DepartureDate+" "+r.DepartureTime)
}

func (r *AuthorizationRequest) ReturnAt() (time.Time, error) {
	return time.Parse(tripTimeLayout, r.ReturnDate+" "+r.ReturnTime)
}
