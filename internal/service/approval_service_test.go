package service

import (
	"context"
	"testing"

	"leave-auth-be/internal/dto"
	"leave-auth-be/internal/entity"
	"leave-auth-be/pkg/kv"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApprovalFixture() (*fixture, IApprovalService) {
	f := newFixture()
	svc := NewApprovalService(f.factory, f.store, f.audit, "https://leave.example.com")
	return f, svc
}

func TestDecideSupervisorApprove(t *testing.T) {
	f, svc := newApprovalFixture()
	seeded := f.seedRequest(entity.CategorySub15, nil)

	resp, err := svc.DecideSupervisor(context.Background(), supervisorActor(entity.CategorySub15), seeded.Id,
		&dto.StageDecisionRequest{Approved: boolPtr(true)}, dto.RequestOrigin{IP: "10.0.0.1", Device: "test-agent"})

	require.NoError(t, err)
	assert.Equal(t, string(entity.ApprovalApproved), resp.Supervisor.Status)
	assert.Equal(t, entity.GeneralPendingParent, resp.GeneralStatus)
	assert.Equal(t, string(entity.FinalInReview), resp.FinalStatus)
	assert.NotNil(t, resp.Supervisor.DecidedAt)
	require.NotNil(t, resp.Supervisor.DecidedBy)
	assert.Equal(t, "supervisor@facility.local", *resp.Supervisor.DecidedBy)
	assert.Contains(t, f.audit.kinds(), entity.AuditSupervisorDecided)
}

func TestDecideSupervisorRejectRequiresNote(t *testing.T) {
	f, svc := newApprovalFixture()
	seeded := f.seedRequest(entity.CategorySub15, nil)

	_, err := svc.DecideSupervisor(context.Background(), supervisorActor(entity.CategorySub15), seeded.Id,
		&dto.StageDecisionRequest{Approved: boolPtr(false)}, dto.RequestOrigin{})

	var vErr *entity.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "note", vErr.Field)

	// With a note the rejection lands and masks everything downstream.
	resp, err := svc.DecideSupervisor(context.Background(), supervisorActor(entity.CategorySub15), seeded.Id,
		&dto.StageDecisionRequest{Approved: boolPtr(false), Note: "trip overlaps training"}, dto.RequestOrigin{})
	require.NoError(t, err)
	assert.Equal(t, entity.GeneralRejectedBySupervisor, resp.GeneralStatus)
	assert.Equal(t, string(entity.FinalRejected), resp.FinalStatus)
}

func TestDecideSupervisorCategoryMismatch(t *testing.T) {
	f, svc := newApprovalFixture()
	seeded := f.seedRequest(entity.CategorySub15, nil)

	_, err := svc.DecideSupervisor(context.Background(), supervisorActor(entity.CategorySub17), seeded.Id,
		&dto.StageDecisionRequest{Approved: boolPtr(true)}, dto.RequestOrigin{})

	var pErr *entity.PreconditionError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, entity.GeneralPendingSupervisor, pErr.CurrentStatus)
}

func TestDecideSupervisorAlreadyDecided(t *testing.T) {
	f, svc := newApprovalFixture()
	seeded := f.seedRequest(entity.CategorySub15, func(r *entity.AuthorizationRequest) {
		r.SupervisorStatus = entity.ApprovalApproved
	})

	_, err := svc.DecideSupervisor(context.Background(), supervisorActor(entity.CategorySub15), seeded.Id,
		&dto.StageDecisionRequest{Approved: boolPtr(true)}, dto.RequestOrigin{})

	var pErr *entity.PreconditionError
	require.ErrorAs(t, err, &pErr)
}

func TestDecideSupervisorConcurrentWriterLoses(t *testing.T) {
	f, svc := newApprovalFixture()
	seeded := f.seedRequest(entity.CategorySub15, nil)

	// Another decision sneaks in between the read and the guarded write.
	f.requests.beforeUpdate = func() {
		f.requests.mu.Lock()
		f.requests.requests[seeded.Id].SupervisorStatus = entity.ApprovalRejected
		f.requests.mu.Unlock()
		f.requests.beforeUpdate = nil
	}

	_, err := svc.DecideSupervisor(context.Background(), supervisorActor(entity.CategorySub15), seeded.Id,
		&dto.StageDecisionRequest{Approved: boolPtr(true)}, dto.RequestOrigin{})

	var cErr *entity.ConflictError
	require.ErrorAs(t, err, &cErr)

	stored := f.requests.get(seeded.Id)
	assert.Equal(t, entity.ApprovalRejected, stored.SupervisorStatus)
}

func TestDecideSupervisorUnknownRequest(t *testing.T) {
	_, svc := newApprovalFixture()

	_, err := svc.DecideSupervisor(context.Background(), supervisorActor(entity.CategorySub15), uuid.New(),
		&dto.StageDecisionRequest{Approved: boolPtr(true)}, dto.RequestOrigin{})

	var nfErr *entity.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestIssueParentLinkAndDecide(t *testing.T) {
	f, svc := newApprovalFixture()
	seeded := f.seedRequest(entity.CategorySub15, func(r *entity.AuthorizationRequest) {
		r.SupervisorStatus = entity.ApprovalApproved
	})

	link, err := svc.IssueParentLink(context.Background(), socialWorkActor(), seeded.Id, dto.RequestOrigin{IP: "10.0.0.2"})
	require.NoError(t, err)
	assert.Regexp(t, `^PA-`, link.Token)
	assert.Equal(t, "https://leave.example.com/parent-approval/"+link.Token, link.Link)
	assert.Contains(t, link.WhatsappLink, "wa.me")

	// The cache entry points back at the request row.
	value, found, err := f.store.Get(context.Background(), kv.PrefixParentApprovalToken+link.Token)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, seeded.Id.String(), value)

	summary, err := svc.ParentSummary(context.Background(), link.Token)
	require.NoError(t, err)
	assert.Equal(t, seeded.AthleteName, summary.AthleteName)
	assert.Equal(t, string(entity.ApprovalPending), summary.ParentStatus)

	resp, err := svc.DecideParent(context.Background(), link.Token,
		&dto.StageDecisionRequest{Approved: boolPtr(true)}, dto.RequestOrigin{IP: "177.10.1.1", Device: "guardian-phone"})
	require.NoError(t, err)
	assert.Equal(t, entity.GeneralPendingSocialWork, resp.GeneralStatus)

	// Single use: the redeemed link no longer resolves.
	_, found, err = f.store.Get(context.Background(), kv.PrefixParentApprovalToken+link.Token)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = svc.DecideParent(context.Background(), link.Token,
		&dto.StageDecisionRequest{Approved: boolPtr(true)}, dto.RequestOrigin{})
	var nfErr *entity.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestDecideParentRowGoneAfterDecision(t *testing.T) {
	f, svc := newApprovalFixture()
	seeded := f.seedRequest(entity.CategorySub15, func(r *entity.AuthorizationRequest) {
		r.SupervisorStatus = entity.ApprovalApproved
	})

	link, err := svc.IssueParentLink(context.Background(), socialWorkActor(), seeded.Id, dto.RequestOrigin{})
	require.NoError(t, err)

	// The row disappears right after the decision lands, before the
	// service re-reads it for the response.
	f.requests.afterUpdate = func() {
		delete(f.requests.requests, seeded.Id)
	}

	resp, err := svc.DecideParent(context.Background(), link.Token,
		&dto.StageDecisionRequest{Approved: boolPtr(true)}, dto.RequestOrigin{})
	assert.Nil(t, resp)
	var nfErr *entity.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestIssueParentLinkRequiresSupervisorApproval(t *testing.T) {
	f, svc := newApprovalFixture()
	seeded := f.seedRequest(entity.CategorySub15, nil)

	_, err := svc.IssueParentLink(context.Background(), socialWorkActor(), seeded.Id, dto.RequestOrigin{})

	var pErr *entity.PreconditionError
	require.ErrorAs(t, err, &pErr)
}

func TestDecideParentRejectRequiresNote(t *testing.T) {
	f, svc := newApprovalFixture()
	seeded := f.seedRequest(entity.CategorySub15, func(r *entity.AuthorizationRequest) {
		r.SupervisorStatus = entity.ApprovalApproved
	})

	link, err := svc.IssueParentLink(context.Background(), socialWorkActor(), seeded.Id, dto.RequestOrigin{})
	require.NoError(t, err)

	_, err = svc.DecideParent(context.Background(), link.Token,
		&dto.StageDecisionRequest{Approved: boolPtr(false)}, dto.RequestOrigin{})
	var vErr *entity.ValidationError
	require.ErrorAs(t, err, &vErr)

	// A validation failure must not burn the single-use token.
	_, found, getErr := f.store.Get(context.Background(), kv.PrefixParentApprovalToken+link.Token)
	require.NoError(t, getErr)
	assert.True(t, found)

	resp, err := svc.DecideParent(context.Background(), link.Token,
		&dto.StageDecisionRequest{Approved: boolPtr(false), Note: "not this weekend"}, dto.RequestOrigin{})
	require.NoError(t, err)
	assert.Equal(t, entity.GeneralRejectedByParent, resp.GeneralStatus)
	assert.Equal(t, string(entity.FinalRejected), resp.FinalStatus)
}

func TestParentTokenDurableFallback(t *testing.T) {
	f, svc := newApprovalFixture()
	seeded := f.seedRequest(entity.CategorySub15, func(r *entity.AuthorizationRequest) {
		r.SupervisorStatus = entity.ApprovalApproved
	})

	link, err := svc.IssueParentLink(context.Background(), socialWorkActor(), seeded.Id, dto.RequestOrigin{})
	require.NoError(t, err)

	// Simulate a cache wipe. The durable row still honors the token.
	require.NoError(t, f.store.Delete(context.Background(), kv.PrefixParentApprovalToken+link.Token))

	summary, err := svc.ParentSummary(context.Background(), link.Token)
	require.NoError(t, err)
	assert.Equal(t, seeded.PublicCode, summary.PublicCode)
}

func TestParentTokenUnknown(t *testing.T) {
	_, svc := newApprovalFixture()

	_, err := svc.ParentSummary(context.Background(), "PA-bogus-token")

	var nfErr *entity.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestDecideSocialWorkRequiresUpstreamApprovals(t *testing.T) {
	f, svc := newApprovalFixture()
	seeded := f.seedRequest(entity.CategorySub15, func(r *entity.AuthorizationRequest) {
		r.SupervisorStatus = entity.ApprovalApproved
	})

	_, err := svc.DecideSocialWork(context.Background(), socialWorkActor(), seeded.Id,
		&dto.StageDecisionRequest{Approved: boolPtr(true)}, dto.RequestOrigin{})

	var pErr *entity.PreconditionError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, entity.GeneralPendingParent, pErr.CurrentStatus)
}

func TestDecideSocialWorkApprove(t *testing.T) {
	f, svc := newApprovalFixture()
	seeded := f.seedRequest(entity.CategorySub15, func(r *entity.AuthorizationRequest) {
		r.SupervisorStatus = entity.ApprovalApproved
		r.ParentStatus = entity.ApprovalApproved
	})

	resp, err := svc.DecideSocialWork(context.Background(), socialWorkActor(), seeded.Id,
		&dto.StageDecisionRequest{Approved: boolPtr(true), Note: "cleared with family"}, dto.RequestOrigin{})

	require.NoError(t, err)
	assert.Equal(t, entity.GeneralPendingMonitor, resp.GeneralStatus)
	assert.Equal(t, string(entity.FinalApproved), resp.FinalStatus)
	require.NotNil(t, resp.SocialWork.Note)
	assert.Equal(t, "cleared with family", *resp.SocialWork.Note)
	assert.Contains(t, f.audit.kinds(), entity.AuditSocialWorkDecided)
}

func TestMonitorFlow(t *testing.T) {
	f, svc := newApprovalFixture()
	seeded := f.seedRequest(entity.CategorySub15, func(r *entity.AuthorizationRequest) {
		r.SupervisorStatus = entity.ApprovalApproved
		r.ParentStatus = entity.ApprovalApproved
		r.SocialWorkStatus = entity.ApprovalApproved
	})
	actor := monitorActor()

	resp, err := svc.MonitorAction(context.Background(), actor, seeded.Id,
		&dto.MonitorActionRequest{Action: "confirm_departure"}, dto.RequestOrigin{})
	require.NoError(t, err)
	assert.Equal(t, entity.GeneralDeparted, resp.GeneralStatus)
	assert.NotNil(t, resp.DepartureConfirmedAt)

	resp, err = svc.MonitorAction(context.Background(), actor, seeded.Id,
		&dto.MonitorActionRequest{Action: "confirm_return"}, dto.RequestOrigin{})
	require.NoError(t, err)
	assert.Equal(t, entity.GeneralReturned, resp.GeneralStatus)
	assert.NotNil(t, resp.ReturnConfirmedAt)

	resp, err = svc.MonitorAction(context.Background(), actor, seeded.Id,
		&dto.MonitorActionRequest{Action: "archive", Note: "returned on time"}, dto.RequestOrigin{})
	require.NoError(t, err)
	assert.Equal(t, entity.GeneralArchived, resp.GeneralStatus)
	assert.Equal(t, string(entity.FinalArchived), resp.FinalStatus)
	assert.NotNil(t, resp.ArchivedAt)
	require.NotNil(t, resp.MonitorNote)
	assert.Equal(t, "returned on time", *resp.MonitorNote)
}

func TestMonitorArchiveBeforeReturn(t *testing.T) {
	f, svc := newApprovalFixture()
	seeded := f.seedRequest(entity.CategorySub15, func(r *entity.AuthorizationRequest) {
		r.SupervisorStatus = entity.ApprovalApproved
		r.ParentStatus = entity.ApprovalApproved
		r.SocialWorkStatus = entity.ApprovalApproved
		r.MonitorStatus = entity.MonitorDeparted
	})

	_, err := svc.MonitorAction(context.Background(), monitorActor(), seeded.Id,
		&dto.MonitorActionRequest{Action: "archive"}, dto.RequestOrigin{})

	var pErr *entity.PreconditionError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, entity.GeneralDeparted, pErr.CurrentStatus)
}

func TestMonitorActionRequiresFullApproval(t *testing.T) {
	f, svc := newApprovalFixture()
	seeded := f.seedRequest(entity.CategorySub15, func(r *entity.AuthorizationRequest) {
		r.SupervisorStatus = entity.ApprovalApproved
		r.ParentStatus = entity.ApprovalApproved
	})

	_, err := svc.MonitorAction(context.Background(), monitorActor(), seeded.Id,
		&dto.MonitorActionRequest{Action: "confirm_departure"}, dto.RequestOrigin{})

	var pErr *entity.PreconditionError
	require.ErrorAs(t, err, &pErr)
}
