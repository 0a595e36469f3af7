package web

import "github.com/gofiber/fiber/v3"

// Register mounts the builder endpoints on router.
func (h *APIHandlers) Register(router fiber.Router) {
	router.Get("/health", h.HealthCheck)
	router.Get("/catalog/services", h.GetServices)

	s := router.Group("/sessions")
	s.Post("/", h.CreateSession)
	s.Post("/from-area/:areaId", h.LoadArea)
	s.Get("/:id", h.GetSession)
	s.Delete("/:id", h.DeleteSession)

	s.Post("/:id/steps", h.AddStep)
	s.Patch("/:id/steps/:stepId", h.PatchStep)
	s.Delete("/:id/steps/:stepId", h.DeleteStep)
	s.Post("/:id/steps/:stepId/move", h.MoveStep)
	s.Post("/:id/steps/:stepId/select", h.SelectAction)
	s.Get("/:id/steps/:stepId/variables", h.GetStepVariables)

	s.Post("/:id/connections", h.Connect)
	s.Delete("/:id/connections", h.Disconnect)

	s.Put("/:id/focus", h.SetFocus)
	s.Post("/:id/insert", h.InsertVariable)
	s.Get("/:id/unresolved", h.GetUnresolvedVariables)
	s.Get("/:id/preview", h.Preview)
	s.Post("/:id/save", h.Save)
}
