package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/meetup-api/internal/application"
	"github.com/oksasatya/meetup-api/internal/container"
	handlers "github.com/oksasatya/meetup-api/internal/interface/http"
	"github.com/oksasatya/meetup-api/internal/interface/middleware"
	"github.com/oksasatya/meetup-api/internal/router/modules"
)

type AuthModuleDeps struct {
	Service *application.AuthService
	Handler *handlers.AuthHandler
}

type UserModuleDeps struct {
	Service *application.UserService
	Handler *handlers.UserHandler
}

func userIndex() *application.UserIndex {
	cfg := container.GetConfig()
	if !cfg.SearchEnabled {
		return nil
	}
	return application.NewUserIndex(container.GetES(), cfg.ESUsersIndex)
}

func buildAuthDeps(index *application.UserIndex) AuthModuleDeps {
	cfg := container.GetConfig()
	service := application.NewAuthService(
		container.GetUserRepo(),
		container.GetHasher(),
		container.GetTokens(),
		container.GetLogger(),
	)
	service.Index = index
	service.AppName = cfg.AppName
	// a nil *RabbitPublisher must not end up inside the interface
	if pub := container.GetRabbitPub(); pub != nil && cfg.MailSendEnabled {
		service.Mail = pub
	}

	return AuthModuleDeps{
		Service: service,
		Handler: handlers.NewAuthHandler(service, container.GetLogger()),
	}
}

func buildUserDeps(index *application.UserIndex) UserModuleDeps {
	var cache redis.Cmdable
	if rdb := container.GetRedis(); rdb != nil {
		cache = rdb
	}
	service := application.NewUserService(
		container.GetUserRepo(),
		cache,
		container.GetConfig().ProfileCacheTTL,
		index,
		container.GetLogger(),
	)
	return UserModuleDeps{
		Service: service,
		Handler: handlers.NewUserHandler(service, container.GetLogger()),
	}
}

func healthHandler() *handlers.HealthHandler {
	var db handlers.Pinger
	if pool := container.GetPGPool(); pool != nil {
		db = pool
	}
	return handlers.NewHealthHandler(db, container.GetLogger())
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	index := userIndex()
	authDeps := buildAuthDeps(index)
	userDeps := buildUserDeps(index)

	r.Add(modules.NewHealthModule(healthHandler()))
	r.Add(modules.NewAuthModule(authDeps.Handler))
	r.Add(modules.NewUserModule(userDeps.Handler, authDeps.Service, container.GetLogger()))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}

// NewEngine builds the Gin engine with global middleware and every module
// registered from the container.
func NewEngine() *gin.Engine {
	cfg := container.GetConfig()

	r := gin.New()
	r.Use(gin.Recovery())
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  origins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}

	reg := NewRegistry(r, cfg.APIBasePath)
	reg.Use(middleware.RequestID(), middleware.RealIP())
	if cfg.HTTPLogEnabled {
		reg.Use(middleware.AccessLog(container.GetLogger()))
	}
	InitModules(reg)
	reg.RegisterAll()
	return r
}
