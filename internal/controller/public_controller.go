package controller

import (
	"leave-auth-be/internal/dto"
	"leave-auth-be/internal/pkg/serverutils"
	"leave-auth-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPublicController interface {
	RegisterRoutes(r fiber.Router)
	CreateRequest(ctx *fiber.Ctx) error
	LookupByCode(ctx *fiber.Ctx) error
}

type publicController struct {
	requestService service.IRequestService
}

func NewPublicController(requestService service.IRequestService) IPublicController {
	return &publicController{requestService: requestService}
}

func (c *publicController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/public")
	h.Post("requests", c.CreateRequest)
	h.Get("requests/:code", c.LookupByCode)
}

func (c *publicController) CreateRequest(ctx *fiber.Ctx) error {
	var req dto.CreateRequestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.requestService.Create(ctx.Context(), &req, requestOrigin(ctx))
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Request created", res))
}

func (c *publicController) LookupByCode(ctx *fiber.Ctx) error {
	res, err := c.requestService.FindByCode(ctx.Context(), ctx.Params("code"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func requestOrigin(ctx *fiber.Ctx) dto.RequestOrigin {
	return dto.RequestOrigin{
		IP:     ctx.IP(),
		Device: ctx.Get("User-Agent"),
	}
}
