package entity

// ApprovalStatus is the state of one approval stage (supervisor, parent,
// social work). Transitions only go forward: Pending to Approved or
// Rejected, never back.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "Pending"
	ApprovalApproved ApprovalStatus = "Approved"
	ApprovalRejected ApprovalStatus = "Rejected"
)

// MonitorStatus tracks the physical custody stage after the three
// approvals are done.
type MonitorStatus string

const (
	MonitorPending  MonitorStatus = "Pending"
	MonitorDeparted MonitorStatus = "DepartedFacility"
	MonitorReturned MonitorStatus = "Returned"
	MonitorArchived MonitorStatus = "Archived"
)

// FinalStatus is the terminal classification of the whole request.
type FinalStatus string

const (
	FinalInReview FinalStatus = "in_review"
	FinalApproved FinalStatus = "approved"
	FinalRejected FinalStatus = "rejected"
	FinalArchived FinalStatus = "archived"
)

// General status values produced by DeriveGeneralStatus.
const (
	GeneralRejectedBySupervisor = "rejected_by_supervisor"
	GeneralPendingSupervisor    = "pending_supervisor"
	GeneralRejectedByParent     = "rejected_by_parent"
	GeneralPendingParent        = "pending_parent"
	GeneralRejectedBySocialWork = "rejected_by_social_work"
	GeneralPendingSocialWork    = "pending_social_work"
	GeneralArchived             = "archived"
	GeneralReturned             = "returned"
	GeneralDeparted             = "departed"
	GeneralPendingMonitor       = "pending_monitor"
	GeneralApproved             = "approved"
)

// DeriveGeneralStatus maps the four sub-statuses onto a single composite
// status. First match wins: an earlier stage's rejection or pending state
// masks everything downstream, so a reader always sees the stage the
// request is actually stuck at.
func DeriveGeneralStatus(supervisor, parent, socialWork ApprovalStatus, monitor MonitorStatus) string {
	switch {
	case supervisor == ApprovalRejected:
		return GeneralRejectedBySupervisor
	case supervisor == ApprovalPending:
		return GeneralPendingSupervisor
	case parent == ApprovalRejected:
		return GeneralRejectedByParent
	case parent == ApprovalPending:
		return GeneralPendingParent
	case socialWork == ApprovalRejected:
		return GeneralRejectedBySocialWork
	case socialWork == ApprovalPending:
		return GeneralPendingSocialWork
	case monitor == MonitorArchived:
		return GeneralArchived
	case monitor == MonitorReturned:
		return GeneralReturned
	case monitor == MonitorDeparted:
		return GeneralDeparted
	case monitor == MonitorPending:
		return GeneralPendingMonitor
	}
	return GeneralApproved
}

// DeriveFinalStatus classifies the request lifecycle. A rejection at any
// approval stage is permanent. Archived overrides Approved so a closed
// request never reads as actionable.
func DeriveFinalStatus(supervisor, parent, socialWork ApprovalStatus, monitor MonitorStatus) FinalStatus {
	if supervisor == ApprovalRejected || parent == ApprovalRejected || socialWork == ApprovalRejected {
		return FinalRejected
	}
	if monitor == MonitorArchived {
		return FinalArchived
	}
	if supervisor == ApprovalApproved && parent == ApprovalApproved && socialWork == ApprovalApproved {
		return FinalApproved
	}
	return FinalInReview
}
