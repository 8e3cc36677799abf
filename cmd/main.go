package main

import (
	"context"

	"github.com/antinvestor/service-fileshare/config"
	"github.com/antinvestor/service-fileshare/service/business"
	"github.com/antinvestor/service-fileshare/service/handler/routing"
	"github.com/antinvestor/service-fileshare/service/repository"
	"github.com/antinvestor/service-fileshare/service/storage/provider"
	"github.com/gorilla/handlers"
	"github.com/pitabwire/frame"
	"github.com/pitabwire/util"
)

func main() {

	serviceName := "service_fileshare"
	ctx := context.Background()

	cfg, err := frame.ConfigFromEnv[config.FileshareConfig]()
	if err != nil {
		util.Log(ctx).With("err", err).Error("could not process configs")
		return
	}

	ctx, svc := frame.NewService(serviceName, frame.WithConfig(&cfg))

	log := svc.Log(ctx)

	serviceOptions := []frame.Option{frame.WithDatastore()}

	// Handle database migration if requested
	if handleDatabaseMigration(ctx, svc, cfg, log) {
		return
	}

	storageProvider, err := provider.GetStorageProvider(ctx, &cfg)
	if err != nil {
		log.WithError(err).Fatal("main -- Could not setup or access storage")
	}

	jwtAudience := cfg.Oauth2JwtVerifyAudience
	if jwtAudience == "" {
		jwtAudience = serviceName
	}

	fileRepo := repository.NewFileRepository(svc)
	userRepo := repository.NewUserRepository(svc)
	grantRepo := repository.NewGrantRepository(svc)
	auditRepo := repository.NewAuditRepository(svc)

	authzEngine := business.NewAuthorizationEngine(fileRepo, grantRepo)
	shareService := business.NewShareService(authzEngine, grantRepo, userRepo)
	gateway := business.NewAccessGateway(&cfg, authzEngine, fileRepo, userRepo, grantRepo, auditRepo, storageProvider)

	router := routing.NewRouter(&routing.ApiServer{
		Service:  svc,
		Gateway:  gateway,
		Shares:   shareService,
		UserRepo: userRepo,
	})

	serviceHandlers := handlers.RecoveryHandler(
		handlers.PrintRecoveryStack(true))(
		svc.AuthenticationMiddleware(router, jwtAudience, cfg.Oauth2JwtVerifyIssuer))

	defaultServer := frame.WithHTTPHandler(serviceHandlers)
	serviceOptions = append(serviceOptions, defaultServer)

	svc.Init(ctx, serviceOptions...)

	log.WithField("server http port", cfg.HTTPPort()).
		Info(" Initiating server operations")

	err = svc.Run(ctx, "")
	if err != nil {
		log.WithError(err).Fatal("main -- Could not run Server : %v", err)
	}

}

// handleDatabaseMigration performs database migration if configured to do so.
func handleDatabaseMigration(
	ctx context.Context,
	svc *frame.Service,
	cfg config.FileshareConfig,
	log *util.LogEntry,
) bool {
	serviceOptions := []frame.Option{frame.WithDatastore()}

	if cfg.DoDatabaseMigrate() {
		svc.Init(ctx, serviceOptions...)

		err := repository.Migrate(ctx, svc, cfg.GetDatabaseMigrationPath())
		if err != nil {
			log.WithError(err).Fatal("main -- Could not migrate successfully")
		}
		return true
	}
	return false
}
