package web

import (
	"errors"

	"github.com/dukex/area/pkg/serializer"
	"github.com/dukex/area/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

// validationProblem is a problem document that also names the offending steps.
type validationProblem struct {
	Type     string   `json:"type"`
	Title    string   `json:"title"`
	Status   int      `json:"status"`
	Detail   string   `json:"detail,omitempty"`
	Instance string   `json:"instance,omitempty"`
	Steps    []string `json:"steps,omitempty"`
}

func newValidationProblem(c fiber.Ctx, err error) validationProblem {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(err.Error())

	return validationProblem{
		Type:     problem.Type,
		Title:    problem.Title,
		Status:   problem.Status,
		Detail:   problem.Detail,
		Instance: problem.Instance,
		Steps:    serializer.Steps(err),
	}
}

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsValidationError(err):
		return c.Status(fiber.StatusBadRequest).JSON(newValidationProblem(c, err))

	case services.IsNotFoundError(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType(notFoundType(err)).
			WithDetail(err.Error())

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case services.IsUpstreamError(err):
		problem := problems.NewStatusProblem(502).
			WithInstance(c.Path()).
			WithType("upstream_error").
			WithError(err)

		return c.Status(fiber.StatusBadGateway).JSON(problem)

	default:
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithError(err)

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	}
}

func notFoundType(err error) string {
	switch {
	case errors.Is(err, services.ErrStepNotFound):
		return "step_not_found"
	case errors.Is(err, services.ErrAreaNotFound):
		return "area_not_found"
	default:
		return "session_not_found"
	}
}
