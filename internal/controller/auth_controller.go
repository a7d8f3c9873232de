package controller

import (
	"leave-auth-be/internal/dto"
	"leave-auth-be/internal/pkg/serverutils"
	"leave-auth-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Login(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
	ChangePassword(ctx *fiber.Ctx) error
	ValidateResetToken(ctx *fiber.Ctx) error
	ResetPassword(ctx *fiber.Ctx) error
}

type authController struct {
	authService service.IAuthService
}

func NewAuthController(authService service.IAuthService) IAuthController {
	return &authController{authService: authService}
}

func (c *authController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/auth")
	h.Post("login", c.Login)
	h.Post("logout", auth, c.Logout)
	h.Put("password", auth, c.ChangePassword)

	// Reset-password routes are token-authenticated, not session-authenticated.
	reset := r.Group("/reset-password")
	reset.Get("validate/:token", c.ValidateResetToken)
	reset.Post(":token", c.ResetPassword)
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.authService.Login(ctx.Context(), &req, requestOrigin(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

func (c *authController) Logout(ctx *fiber.Ctx) error {
	actor := serverutils.ActorFromCtx(ctx)
	if err := c.authService.Logout(ctx.Context(), actor); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Logged out", nil))
}

func (c *authController) ChangePassword(ctx *fiber.Ctx) error {
	actor := serverutils.ActorFromCtx(ctx)

	var req dto.ChangePasswordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.authService.ChangePassword(ctx.Context(), actor, &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Password changed", nil))
}

func (c *authController) ValidateResetToken(ctx *fiber.Ctx) error {
	res, err := c.authService.ValidateResetToken(ctx.Context(), ctx.Params("token"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *authController) ResetPassword(ctx *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.authService.ResetPassword(ctx.Context(), ctx.Params("token"), &req, requestOrigin(ctx)); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Password reset", nil))
}
