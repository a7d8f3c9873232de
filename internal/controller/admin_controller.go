package controller

import (
	"leave-auth-be/internal/dto"
	"leave-auth-be/internal/pkg/serverutils"
	"leave-auth-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
}

type adminController struct {
	adminService service.IAdminService
}

func NewAdminController(adminService service.IAdminService) IAdminController {
	return &adminController{adminService: adminService}
}

func (c *adminController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/admin")
	h.Use(auth)
	h.Use(serverutils.RequireRole()) // admin only

	h.Get("users", c.ListUsers)
	h.Post("users", c.CreateUser)
	h.Put("users/:id", c.UpdateUser)
	h.Delete("users/:id", c.DeactivateUser)
	h.Post("users/:id/reset-link", c.IssueResetLink)

	h.Get("settings", c.GetSettings)
	h.Put("settings/:key", c.UpdateSetting)

	h.Get("logs", c.ListAuditLogs)
}

func (c *adminController) ListUsers(ctx *fiber.Ctx) error {
	res, err := c.adminService.ListUsers(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *adminController) CreateUser(ctx *fiber.Ctx) error {
	actor := serverutils.ActorFromCtx(ctx)

	var req dto.CreateUserRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.adminService.CreateUser(ctx.Context(), actor, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("User created", res))
}

func (c *adminController) UpdateUser(ctx *fiber.Ctx) error {
	actor := serverutils.ActorFromCtx(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}

	var req dto.UpdateUserRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.adminService.UpdateUser(ctx.Context(), actor, id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("User updated", res))
}

func (c *adminController) DeactivateUser(ctx *fiber.Ctx) error {
	actor := serverutils.ActorFromCtx(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}

	if err := c.adminService.DeactivateUser(ctx.Context(), actor, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("User deactivated", nil))
}

func (c *adminController) IssueResetLink(ctx *fiber.Ctx) error {
	actor := serverutils.ActorFromCtx(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}

	res, err := c.adminService.IssueResetLink(ctx.Context(), actor, id)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Reset link issued", res))
}

func (c *adminController) GetSettings(ctx *fiber.Ctx) error {
	res, err := c.adminService.GetSettings(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *adminController) UpdateSetting(ctx *fiber.Ctx) error {
	actor := serverutils.ActorFromCtx(ctx)

	var req dto.UpdateSettingRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.adminService.UpdateSetting(ctx.Context(), actor, ctx.Params("key"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Setting updated", res))
}

func (c *adminController) ListAuditLogs(ctx *fiber.Ctx) error {
	var query dto.ListAuditQuery
	if err := ctx.QueryParser(&query); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")
	}

	res, err := c.adminService.ListAuditLogs(ctx.Context(), &query)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}
