package search

import (
	"go-bizops/internal/common/apperr"
	"go-bizops/internal/features/schema"

	"github.com/gofiber/fiber/v2"
)

type SearchController struct {
	Executor Executor
	Registry *schema.Registry
}

func NewSearchController(executor Executor, registry *schema.Registry) *SearchController {
	return &SearchController{
		Executor: executor,
		Registry: registry,
	}
}

// Search executes one SearchQuery against a module
func (ctrl *SearchController) Search(c *fiber.Ctx) error {
	moduleName := c.Params("module")

	var query SearchQuery
	if err := c.BodyParser(&query); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if query.Page == 0 {
		query.Page = 1
	}
	if query.PageSize == 0 {
		query.PageSize = DefaultPageSize
	}
	if query.SortOrder == "" {
		query.SortOrder = "desc"
	}

	if query.IsEmpty() {
		// Empty queries never touch the store
		return c.JSON(&SearchResult{Data: []map[string]any{}, Page: query.Page, PageSize: query.PageSize})
	}

	result, err := ctrl.Executor.Execute(c.UserContext(), query, moduleName)
	if err != nil {
		return c.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(result)
}

// Schema returns the module's field descriptor table plus the operator set
// legal for each field, for filter builders
func (ctrl *SearchController) Schema(c *fiber.Ctx) error {
	moduleName := c.Params("module")

	mod, ok := ctrl.Registry.Module(moduleName)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown module"})
	}

	type fieldInfo struct {
		schema.Field
		Operators []SearchOperator `json:"operators"`
	}
	fields := make([]fieldInfo, 0, len(mod.Fields))
	for _, f := range mod.Fields {
		fields = append(fields, fieldInfo{Field: f, Operators: OperatorsForType(f.Type)})
	}

	return c.JSON(fiber.Map{
		"module": mod.Name,
		"label":  mod.Label,
		"fields": fields,
	})
}

// Modules lists the registered module catalogue
func (ctrl *SearchController) Modules(c *fiber.Ctx) error {
	mods := ctrl.Registry.Modules()
	out := make([]fiber.Map, 0, len(mods))
	for _, m := range mods {
		out = append(out, fiber.Map{"name": m.Name, "label": m.Label})
	}
	return c.JSON(out)
}
