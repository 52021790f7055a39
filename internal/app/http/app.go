package httpapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "lifecursor/internal/http-server/handlers/auth"
	"lifecursor/internal/http-server/handlers/health"
	memoshandler "lifecursor/internal/http-server/handlers/memos"
	taskshandler "lifecursor/internal/http-server/handlers/tasks"
	"lifecursor/internal/http-server/middleware/authn"
	mwlogger "lifecursor/internal/http-server/middleware/logger"
)

type Config struct {
	Address     string
	Timeout     time.Duration
	IdleTimeout time.Duration
	CORSOrigins []string
}

type Services struct {
	Auth     authhandler.Auth
	Resolver authn.Resolver
	Tasks    taskshandler.Tasks
	Memos    memoshandler.Memos
}

type App struct {
	log     *slog.Logger
	server  *http.Server
	address string
}

func New(log *slog.Logger, cfg Config, svc Services) *App {
	return &App{
		log: log,
		server: &http.Server{
			Addr:         cfg.Address,
			Handler:      NewRouter(log, cfg.CORSOrigins, svc),
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		address: cfg.Address,
	}
}

// NewRouter builds the gin engine serving the /api routes.
func NewRouter(log *slog.Logger, corsOrigins []string, svc Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(mwlogger.New(log))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = corsOrigins
	corsCfg.AllowCredentials = true
	corsCfg.AddAllowHeaders("Authorization")
	router.Use(cors.New(corsCfg))

	authH := authhandler.New(log, svc.Auth)
	tasksH := taskshandler.New(log, svc.Tasks)
	memosH := memoshandler.New(log, svc.Memos)

	requireUser := authn.New(log, svc.Resolver)

	router.GET("/", health.Handle)

	api := router.Group("/api")
	{
		api.POST("/auth/register", authH.Register)
		api.POST("/auth/login", authH.Login)
		api.POST("/auth/logout", authn.RequireBearer(), authH.Logout)
		api.GET("/auth/me", requireUser, authH.Me)
	}

	protected := api.Group("", requireUser)
	{
		protected.POST("/tasks", tasksH.Create)
		protected.GET("/tasks", tasksH.List)
		protected.GET("/home/tasks", tasksH.ListRange)
		protected.DELETE("/tasks/:id", tasksH.Delete)

		protected.POST("/memos", memosH.Create)
		protected.GET("/memos", memosH.List)
		protected.DELETE("/memos", memosH.DeleteMany)
		protected.PUT("/memos/:id", memosH.Update)
	}

	return router
}

func (a *App) MustRun() {
	if err := a.Run(); err != nil {
		panic(err)
	}
}

func (a *App) Run() error {
	const op = "httpapp.Run"

	log := a.log.With(
		slog.String("op", op),
		slog.String("address", a.address),
	)

	log.Info("http server is running")

	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Stop waits for in-flight requests until ctx is done.
func (a *App) Stop(ctx context.Context) error {
	const op = "httpapp.Stop"

	a.log.With(slog.String("op", op)).
		Info("stopping http server", slog.String("address", a.address))

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
