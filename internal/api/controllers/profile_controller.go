package apicontrollers

import (
	"net/http"

	"github.com/solstice-ai/artemis-connectors/internal/domain/entities"
	"github.com/solstice-ai/artemis-connectors/internal/domain/errs"
	"github.com/solstice-ai/artemis-connectors/internal/domain/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ProfileController struct {
	logger         *zap.Logger
	profileService services.ProfileService
}

func NewProfileController(logger *zap.Logger, profileService services.ProfileService) *ProfileController {
	return &ProfileController{
		logger:         logger,
		profileService: profileService,
	}
}

// RegisterRoutes registers all profile-related routes with Echo
func (c *ProfileController) RegisterRoutes(e *echo.Group) {
	e.GET("/profiles", c.ListProfiles)
	e.GET("/profiles/:id", c.GetProfile)
	e.POST("/profiles", c.CreateProfile)
	e.PUT("/profiles/:id", c.UpdateProfile)
	e.DELETE("/profiles/:id", c.DeleteProfile)
}

// ListProfiles handles the GET request to list all connection profiles
func (c *ProfileController) ListProfiles(ctx echo.Context) error {
	profiles, err := c.profileService.ListProfiles(ctx.Request().Context())
	if err != nil {
		return c.handleError(ctx, err, http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, profiles)
}

// GetProfile handles the GET request to retrieve a specific profile
func (c *ProfileController) GetProfile(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return c.handleError(ctx, "Missing profile ID", http.StatusBadRequest)
	}

	profile, err := c.profileService.GetProfile(ctx.Request().Context(), id)
	if err != nil {
		if errs.IsNotFound(err) {
			return c.handleError(ctx, "Profile not found", http.StatusNotFound)
		}
		return c.handleError(ctx, err, http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, profile)
}

// CreateProfile handles the POST request to create a new profile
func (c *ProfileController) CreateProfile(ctx echo.Context) error {
	var profile entities.ConnectionProfile
	if err := ctx.Bind(&profile); err != nil {
		return c.handleError(ctx, "Invalid request body", http.StatusBadRequest)
	}

	created := entities.NewConnectionProfile(profile.Connector, profile.Name, profile.Configuration)
	if err := c.profileService.CreateProfile(ctx.Request().Context(), created); err != nil {
		switch {
		case errs.IsValidation(err) || errs.IsNotFound(err):
			return c.handleError(ctx, err.Error(), http.StatusBadRequest)
		case errs.IsDuplicate(err):
			return c.handleError(ctx, err.Error(), http.StatusConflict)
		default:
			return c.handleError(ctx, err, http.StatusInternalServerError)
		}
	}

	return ctx.JSON(http.StatusCreated, created)
}

// UpdateProfile handles the PUT request to update an existing profile
func (c *ProfileController) UpdateProfile(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return c.handleError(ctx, "Missing profile ID", http.StatusBadRequest)
	}

	var profile entities.ConnectionProfile
	if err := ctx.Bind(&profile); err != nil {
		return c.handleError(ctx, "Invalid request body", http.StatusBadRequest)
	}
	profile.ID = id

	if err := c.profileService.UpdateProfile(ctx.Request().Context(), &profile); err != nil {
		switch {
		case errs.IsNotFound(err):
			return c.handleError(ctx, "Profile not found", http.StatusNotFound)
		case errs.IsValidation(err):
			return c.handleError(ctx, err.Error(), http.StatusBadRequest)
		default:
			return c.handleError(ctx, err, http.StatusInternalServerError)
		}
	}

	return ctx.JSON(http.StatusOK, profile)
}

// DeleteProfile handles the DELETE request to delete a profile
func (c *ProfileController) DeleteProfile(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return c.handleError(ctx, "Missing profile ID", http.StatusBadRequest)
	}

	if err := c.profileService.DeleteProfile(ctx.Request().Context(), id); err != nil {
		if errs.IsNotFound(err) {
			return c.handleError(ctx, "Profile not found", http.StatusNotFound)
		}
		return c.handleError(ctx, err, http.StatusInternalServerError)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// handleError handles errors and returns them in a consistent format
func (c *ProfileController) handleError(ctx echo.Context, err interface{}, statusCode int) error {
	c.logger.Error("Error occurred", zap.Any("error", err))
	return ctx.JSON(statusCode, map[string]interface{}{
		"error": err,
	})
}
