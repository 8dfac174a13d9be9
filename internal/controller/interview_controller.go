package controller

import (
	"bpmn-interview-be/internal/dto"
	"bpmn-interview-be/internal/pkg/serverutils"
	"bpmn-interview-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IInterviewController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Start(ctx *fiber.Ctx) error
	Answer(ctx *fiber.Ctx) error
	AnswerAudio(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
	Generate(ctx *fiber.Ctx) error
	Download(ctx *fiber.Ctx) error
	Topics(ctx *fiber.Ctx) error
	ProcessTypes(ctx *fiber.Ctx) error
}

type interviewController struct {
	service service.IInterviewService
}

func NewInterviewController(service service.IInterviewService) IInterviewController {
	return &interviewController{service: service}
}

func (c *interviewController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/interview/v1")
	// static paths first so they are not captured by :id
	h.Get("/topics", c.Topics)
	h.Get("/process-types", c.ProcessTypes)

	h.Post("", c.Create)
	h.Get("/:id", c.Show)
	h.Post("/:id/start", c.Start)
	h.Post("/:id/answer", c.Answer)
	h.Post("/:id/audio", c.AnswerAudio)
	h.Post("/:id/reset", c.Reset)
	h.Post("/:id/generate", c.Generate)
	h.Get("/:id/bpmn", c.Download)
}

func (c *interviewController) Create(ctx *fiber.Ctx) error {
	res, err := c.service.Create(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create interview session", res))
}

func (c *interviewController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Show(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show interview session", res))
}

func (c *interviewController) Start(ctx *fiber.Ctx) error {
	var req dto.StartInterviewRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Start(ctx.UserContext(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success start interview", res))
}

func (c *interviewController) Answer(ctx *fiber.Ctx) error {
	var req dto.AnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Answer(ctx.UserContext(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success submit answer", res))
}

func (c *interviewController) AnswerAudio(ctx *fiber.Ctx) error {
	var req dto.AudioAnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.AudioData == "" && req.Error == "" {
		return fiber.NewError(fiber.StatusBadRequest, "audio_data is required")
	}

	res, err := c.service.AnswerAudio(ctx.UserContext(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success submit audio answer", res))
}

func (c *interviewController) Reset(ctx *fiber.Ctx) error {
	res, err := c.service.Reset(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success reset interview", res))
}

func (c *interviewController) Generate(ctx *fiber.Ctx) error {
	res, err := c.service.Generate(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success generate BPMN model", res))
}

func (c *interviewController) Download(ctx *fiber.Ctx) error {
	xml, err := c.service.DownloadBpmn(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	ctx.Attachment("process.bpmn")
	return ctx.SendString(xml)
}

func (c *interviewController) Topics(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get topics", c.service.Topics()))
}

func (c *interviewController) ProcessTypes(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get process types", c.service.ProcessTypes()))
}
