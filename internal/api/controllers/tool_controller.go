package apicontrollers

import (
	"io"
	"net/http"

	"github.com/solstice-ai/artemis-connectors/internal/domain/errs"
	"github.com/solstice-ai/artemis-connectors/internal/impl/registry"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ToolController struct {
	logger   *zap.Logger
	registry *registry.ToolRegistry
}

func NewToolController(logger *zap.Logger, reg *registry.ToolRegistry) *ToolController {
	return &ToolController{
		logger:   logger,
		registry: reg,
	}
}

// RegisterRoutes registers all tool-related routes with Echo
func (c *ToolController) RegisterRoutes(e *echo.Group) {
	e.GET("/tools", c.ListTools)
	e.GET("/tools/:name", c.GetTool)
	e.POST("/tools/:name", c.InvokeTool)
}

// ListTools handles the GET request to list all tool schemas
func (c *ToolController) ListTools(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.registry.Schemas())
}

// GetTool handles the GET request to retrieve a single tool schema
func (c *ToolController) GetTool(ctx echo.Context) error {
	name := ctx.Param("name")
	if name == "" {
		return c.handleError(ctx, "Missing tool name", http.StatusBadRequest)
	}

	entry, err := c.registry.Get(name)
	if err != nil {
		return c.handleError(ctx, "Tool not found", http.StatusNotFound)
	}
	return ctx.JSON(http.StatusOK, entry.Schema)
}

// InvokeTool handles the POST request to invoke a tool. The request body is
// passed through as the tool's JSON arguments.
func (c *ToolController) InvokeTool(ctx echo.Context) error {
	name := ctx.Param("name")
	if name == "" {
		return c.handleError(ctx, "Missing tool name", http.StatusBadRequest)
	}

	arguments, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return c.handleError(ctx, "Failed to read request body", http.StatusBadRequest)
	}

	result, err := c.registry.Invoke(name, string(arguments))
	if err != nil {
		switch {
		case errs.IsNotFound(err):
			return c.handleError(ctx, err.Error(), http.StatusNotFound)
		case errs.IsValidation(err):
			return c.handleError(ctx, err.Error(), http.StatusBadRequest)
		case errs.IsUnauthorized(err):
			return c.handleError(ctx, err.Error(), http.StatusUnauthorized)
		default:
			return c.handleError(ctx, err.Error(), http.StatusInternalServerError)
		}
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"tool":   name,
		"result": result,
	})
}

// handleError handles errors and returns them in a consistent format
func (c *ToolController) handleError(ctx echo.Context, err interface{}, statusCode int) error {
	c.logger.Error("Error occurred", zap.Any("error", err))
	return ctx.JSON(statusCode, map[string]interface{}{
		"error": err,
	})
}
