package controller

import (
	"bpmn-interview-be/internal/dto"
	"bpmn-interview-be/internal/pkg/serverutils"
	"bpmn-interview-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IGenerationController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type generationController struct {
	service   service.IGenerationService
	jwtSecret string
}

func NewGenerationController(service service.IGenerationService, jwtSecret string) IGenerationController {
	return &generationController{service: service, jwtSecret: jwtSecret}
}

func (c *generationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/generation/v1")
	h.Use(serverutils.NewJwtMiddleware(c.jwtSecret))
	h.Get("", c.List)
	h.Get("/stats", c.Stats)
	h.Get("/:id", c.Show)
}

func (c *generationController) List(ctx *fiber.Ctx) error {
	var req dto.ListGenerationsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.List(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get generations", res))
}

func (c *generationController) Show(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid generation id")
	}

	res, err := c.service.Show(ctx.UserContext(), uint(id))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show generation", res))
}

func (c *generationController) Stats(ctx *fiber.Ctx) error {
	res, err := c.service.Stats(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get generation stats", res))
}
