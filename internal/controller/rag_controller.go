package controller

import (
	"docbox-be/internal/dto"
	"docbox-be/internal/pkg/serverutils"
	"docbox-be/internal/service"
	"docbox-be/pkg/rag"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IRagController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	ShowCitation(ctx *fiber.Ctx) error
}

type ragController struct {
	service   service.IRagService
	rateLimit fiber.Handler
}

func NewRagController(service service.IRagService, rateLimit fiber.Handler) IRagController {
	return &ragController{service: service, rateLimit: rateLimit}
}

func (c *ragController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/rag/v1")
	h.Use(serverutils.JwtMiddleware)
	if c.rateLimit != nil {
		h.Use(c.rateLimit)
	}
	h.Post("/query", c.Query)
	h.Post("/search", c.Search)
	h.Get("/citations/:id", c.ShowCitation)
}

// scopeFromLocals builds the access scope from the authenticated claims.
// The subject binding comes from the request body, everything else from
// the token. The body can narrow a scope, never widen it.
func scopeFromLocals(ctx *fiber.Ctx) rag.Scope {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	orgIdStr, _ := ctx.Locals("organization_id").(string)
	orgId, _ := uuid.Parse(orgIdStr)
	role, _ := ctx.Locals("role").(string)

	return rag.Scope{
		OrganizationID: orgId,
		RequesterID:    userId,
		RequesterRole:  role,
	}
}

func (c *ragController) Query(ctx *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Query(ctx.Context(), scopeFromLocals(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success run query", res))
}

func (c *ragController) ShowCitation(ctx *fiber.Ctx) error {
	idParam := ctx.Params("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid passage id")
	}

	s := scopeFromLocals(ctx)
	// Subject-bound passages need the same subject scope the query ran with.
	if subjectParam := ctx.Query("subject_id"); subjectParam != "" {
		subjectId, err := uuid.Parse(subjectParam)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid subject id")
		}
		s.SubjectID = &subjectId
	}

	res, err := c.service.ResolveCitation(ctx.Context(), s, id)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "passage not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success resolve citation", res))
}

func (c *ragController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Search(ctx.Context(), scopeFromLocals(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search passages", res))
}
