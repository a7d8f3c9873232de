package controller

import (
	"context"

	"leave-auth-be/internal/dto"
	"leave-auth-be/internal/entity"
	"leave-auth-be/internal/pkg/serverutils"
	"leave-auth-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IRequestController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	List(ctx *fiber.Ctx) error
	AttendanceReport(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	DecideSupervisor(ctx *fiber.Ctx) error
	DecideSocialWork(ctx *fiber.Ctx) error
	MonitorAction(ctx *fiber.Ctx) error
	IssueParentLink(ctx *fiber.Ctx) error
}

type requestController struct {
	requestService  service.IRequestService
	approvalService service.IApprovalService
}

func NewRequestController(requestService service.IRequestService, approvalService service.IApprovalService) IRequestController {
	return &requestController{
		requestService:  requestService,
		approvalService: approvalService,
	}
}

func (c *requestController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/requests")
	h.Use(auth)
	h.Get("", c.List)
	h.Get("attendance-report", serverutils.RequireRole(entity.UserRoleMonitor, entity.UserRoleSocialWork), c.AttendanceReport)
	h.Get(":id", c.Show)
	h.Put(":id/supervisor", serverutils.RequireRole(entity.UserRoleSupervisor), c.DecideSupervisor)
	h.Put(":id/social-work", serverutils.RequireRole(entity.UserRoleSocialWork), c.DecideSocialWork)
	h.Put(":id/monitor", serverutils.RequireRole(entity.UserRoleMonitor), c.MonitorAction)
	h.Post(":id/parent-link", serverutils.RequireRole(entity.UserRoleSocialWork), c.IssueParentLink)
}

func (c *requestController) List(ctx *fiber.Ctx) error {
	actor := serverutils.ActorFromCtx(ctx)

	var query dto.ListRequestsQuery
	if err := ctx.QueryParser(&query); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")
	}

	res, err := c.requestService.List(ctx.Context(), actor, &query)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *requestController) AttendanceReport(ctx *fiber.Ctx) error {
	var query dto.AttendanceReportQuery
	if err := ctx.QueryParser(&query); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	res, err := c.requestService.AttendanceReport(ctx.Context(), &query)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *requestController) Show(ctx *fiber.Ctx) error {
	actor := serverutils.ActorFromCtx(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request id")
	}

	res, err := c.requestService.FindByID(ctx.Context(), actor, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

type stageDecider func(ctx context.Context, actor *entity.Actor, id uuid.UUID, req *dto.StageDecisionRequest, origin dto.RequestOrigin) (*dto.RequestResponse, error)

func (c *requestController) DecideSupervisor(ctx *fiber.Ctx) error {
	return c.decideStage(ctx, c.approvalService.DecideSupervisor)
}

func (c *requestController) DecideSocialWork(ctx *fiber.Ctx) error {
	return c.decideStage(ctx, c.approvalService.DecideSocialWork)
}

func (c *requestController) decideStage(ctx *fiber.Ctx, decide stageDecider) error {
	actor := serverutils.ActorFromCtx(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request id")
	}

	var req dto.StageDecisionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := decide(ctx.Context(), actor, id, &req, requestOrigin(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Decision recorded", res))
}

func (c *requestController) MonitorAction(ctx *fiber.Ctx) error {
	actor := serverutils.ActorFromCtx(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request id")
	}

	var req dto.MonitorActionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.approvalService.MonitorAction(ctx.Context(), actor, id, &req, requestOrigin(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Action recorded", res))
}

func (c *requestController) IssueParentLink(ctx *fiber.Ctx) error {
	actor := serverutils.ActorFromCtx(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request id")
	}

	res, err := c.approvalService.IssueParentLink(ctx.Context(), actor, id, requestOrigin(ctx))
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Parent link issued", res))
}
