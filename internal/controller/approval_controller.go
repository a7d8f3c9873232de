package controller

import (
	"leave-auth-be/internal/dto"
	"leave-auth-be/internal/pkg/serverutils"
	"leave-auth-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// IApprovalController serves the guardian-facing token routes. A valid
// single-use token is the only credential here.
type IApprovalController interface {
	RegisterRoutes(r fiber.Router)
	Summary(ctx *fiber.Ctx) error
	Decide(ctx *fiber.Ctx) error
}

type approvalController struct {
	approvalService service.IApprovalService
}

func NewApprovalController(approvalService service.IApprovalService) IApprovalController {
	return &approvalController{approvalService: approvalService}
}

func (c *approvalController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/approval")
	h.Get(":token", c.Summary)
	h.Post(":token", c.Decide)
}

func (c *approvalController) Summary(ctx *fiber.Ctx) error {
	res, err := c.approvalService.ParentSummary(ctx.Context(), ctx.Params("token"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *approvalController) Decide(ctx *fiber.Ctx) error {
	var req dto.StageDecisionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.approvalService.DecideParent(ctx.Context(), ctx.Params("token"), &req, requestOrigin(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Decision recorded", res))
}
