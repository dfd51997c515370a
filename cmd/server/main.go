package main

import (
	"context"
	"os"

	apicontrollers "github.com/solstice-ai/artemis-connectors/internal/api/controllers"
	"github.com/solstice-ai/artemis-connectors/internal/domain/events"
	"github.com/solstice-ai/artemis-connectors/internal/domain/repositories"
	"github.com/solstice-ai/artemis-connectors/internal/domain/services"
	"github.com/solstice-ai/artemis-connectors/internal/impl/config"
	"github.com/solstice-ai/artemis-connectors/internal/impl/connectors"
	"github.com/solstice-ai/artemis-connectors/internal/impl/database"
	"github.com/solstice-ai/artemis-connectors/internal/impl/registry"
	repositories_json "github.com/solstice-ai/artemis-connectors/internal/impl/repositories/json"
	repositories_mongo "github.com/solstice-ai/artemis-connectors/internal/impl/repositories/mongo"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.InitConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Persist profiles in MongoDB when configured, otherwise in a local
	// JSON file next to the user's home directory.
	var profileRepo repositories.ProfileRepository
	if cfg.MongoURI != "" {
		db, err := database.NewMongoDB(cfg.MongoURI, "artemis", logger)
		if err != nil {
			logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		defer db.Disconnect(context.Background())
		profileRepo = repositories_mongo.NewProfileRepository(db.Collection("profiles"), logger)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		profileRepo, err = repositories_json.NewJSONProfileRepository(home, logger)
		if err != nil {
			logger.Fatal("Failed to initialize profile repository", zap.Error(err))
		}
	}

	profileService := services.NewProfileService(profileRepo, cfg, logger)

	reg := registry.NewToolRegistry(logger)
	if err := profileService.RegisterProfiles(context.Background(), reg); err != nil {
		logger.Fatal("Failed to register profile tools", zap.Error(err))
	}
	if len(reg.List()) == 0 {
		// No stored profiles yet: expose every connector with the
		// configuration from the connectors file, if any.
		configurations := map[string]map[string]string{}
		if cfg.ConnectorsFile != "" {
			profiles, err := config.LoadConnectorsFile(cfg.ConnectorsFile)
			if err != nil {
				logger.Fatal("Failed to load connectors file", zap.Error(err))
			}
			for _, profile := range profiles {
				resolved, err := cfg.ResolveConfiguration(profile.Configuration)
				if err != nil {
					logger.Fatal("Failed to resolve connector configuration",
						zap.String("profile", profile.Name), zap.Error(err))
				}
				configurations[profile.Connector] = resolved
			}
		}
		if err := connectors.RegisterAll(reg, configurations, logger); err != nil {
			logger.Fatal("Failed to register connector tools", zap.Error(err))
		}
	}
	logger.Info("Tool registry ready", zap.Int("tools", len(reg.List())))

	// Audit every tool call.
	unsubscribe := events.SubscribeToToolCallEvents(func(data events.ToolCallEventData) {
		logger.Info("Tool call event",
			zap.String("id", data.Event.ID),
			zap.String("tool", data.Event.ToolName),
			zap.Bool("failed", data.Event.Error != ""))
	})
	defer unsubscribe()

	toolController := apicontrollers.NewToolController(logger, reg)
	profileController := apicontrollers.NewProfileController(logger, profileService)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	api := e.Group("/api")
	toolController.RegisterRoutes(api)
	profileController.RegisterRoutes(api)

	logger.Info("Starting HTTP server", zap.String("addr", cfg.HTTPAddr))
	if err := e.Start(cfg.HTTPAddr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
