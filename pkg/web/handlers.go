// Package web provides HTTP handlers and REST API endpoints for the automation builder.
package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dukex/area/pkg/areaapi"
	"github.com/dukex/area/pkg/graph"
	"github.com/dukex/area/pkg/models"
	"github.com/dukex/area/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	builder   *services.Builder
	validator *validator.Validate
}

func NewAPIHandlers(builder *services.Builder, validator *validator.Validate) *APIHandlers {
	return &APIHandlers{
		builder:   builder,
		validator: validator,
	}
}

// requestContext carries the caller's bearer token to the Area API client.
func requestContext(c fiber.Ctx) context.Context {
	ctx := c.Context()

	token, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if ok && token != "" {
		ctx = areaapi.WithToken(ctx, strings.TrimSpace(token))
	}

	return ctx
}

// bind decodes and validates the JSON body into req. It writes the error response itself and reports
// whether the handler should continue.
func (h *APIHandlers) bind(c fiber.Ctx, req any) (bool, error) {
	if err := c.Bind().JSON(req); err != nil {
		return false, badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return false, badRequest(c, err.Error())
	}

	return true, nil
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.builder.HealthCheck(c.Context())

	catalogCheck := "Catalog loaded"
	catOk := h.builder.Catalog() != nil && len(h.builder.Catalog().Services()) > 0

	if !catOk {
		catalogCheck = "Catalog is empty"
	}

	status := "unhealthy"
	message := "Area builder is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk && catOk {
		status = "healthy"
		message = "Area builder is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"catalog":    catalogCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetServices(c fiber.Ctx) error {
	return c.JSON(h.builder.Catalog().Services())
}

func (h *APIHandlers) CreateSession(c fiber.Ctx) error {
	var req CreateSessionRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	session, err := h.builder.CreateSession(c.Context(), services.CreateSessionRequest{
		Name:        req.Name,
		Description: req.Description,
		Owner:       req.Owner,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *APIHandlers) LoadArea(c fiber.Ctx) error {
	areaID := c.Params("areaId")
	if areaID == "" {
		return badRequest(c, "Area ID is required")
	}

	var req LoadAreaRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	session, err := h.builder.LoadArea(requestContext(c), areaID, req.Owner)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *APIHandlers) GetSession(c fiber.Ctx) error {
	session, err := h.builder.Session(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(session)
}

func (h *APIHandlers) DeleteSession(c fiber.Ctx) error {
	if err := h.builder.DeleteSession(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) AddStep(c fiber.Ctx) error {
	var req AddStepRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	step, err := h.builder.AddStep(c.Context(), c.Params("id"), models.StepKind(req.Kind))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(step)
}

func (h *APIHandlers) PatchStep(c fiber.Ctx) error {
	var patch graph.Patch
	if err := c.Bind().JSON(&patch); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	step, err := h.builder.PatchStep(c.Context(), c.Params("id"), c.Params("stepId"), patch)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(step)
}

func (h *APIHandlers) DeleteStep(c fiber.Ctx) error {
	session, err := h.builder.DeleteStep(c.Context(), c.Params("id"), c.Params("stepId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(session)
}

func (h *APIHandlers) MoveStep(c fiber.Ctx) error {
	var req MoveStepRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	session, moved, err := h.builder.MoveStep(c.Context(), c.Params("id"), c.Params("stepId"), graph.Direction(req.Direction))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(MoveStepResponse{Moved: moved, Session: session})
}

func (h *APIHandlers) SelectAction(c fiber.Ctx) error {
	var req SelectActionRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	result, err := h.builder.SelectAction(requestContext(c), c.Params("id"), c.Params("stepId"), req.ServiceID, req.ActionID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) Connect(c fiber.Ctx) error {
	var req ConnectionRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	session, err := h.builder.Connect(c.Context(), c.Params("id"), req.Source, req.Target)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(session)
}

func (h *APIHandlers) Disconnect(c fiber.Ctx) error {
	var req ConnectionRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	session, err := h.builder.Disconnect(c.Context(), c.Params("id"), req.Source, req.Target)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(session)
}

func (h *APIHandlers) GetStepVariables(c fiber.Ctx) error {
	sessionID, stepID := c.Params("id"), c.Params("stepId")

	variables, err := h.builder.Variables(c.Context(), sessionID, stepID)
	if err != nil {
		return handleServiceError(c, err)
	}

	fields, err := h.builder.Fields(c.Context(), sessionID, stepID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(StepVariablesResponse{StepID: stepID, Variables: variables, Fields: fields})
}

func (h *APIHandlers) SetFocus(c fiber.Ctx) error {
	var req FocusRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	session, err := h.builder.SetFocus(c.Context(), c.Params("id"), req.Focus())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(session)
}

func (h *APIHandlers) InsertVariable(c fiber.Ctx) error {
	var req InsertVariableRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	result, err := h.builder.InsertVariable(c.Context(), c.Params("id"), req.VariableID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) GetUnresolvedVariables(c fiber.Ctx) error {
	refs, err := h.builder.UnresolvedVariables(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(refs)
}

func (h *APIHandlers) Preview(c fiber.Ctx) error {
	request, err := h.builder.Preview(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(request)
}

func (h *APIHandlers) Save(c fiber.Ctx) error {
	area, err := h.builder.Save(requestContext(c), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(area)
}
