package app

import (
	"Tracker/internal/auth"
	"Tracker/internal/cache"
	"Tracker/internal/config"
	"Tracker/internal/handlers"
	"Tracker/internal/repo"
	"Tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Deps are the wired components the router needs. Kept behind
// interfaces where possible so tests can run the full route table
// against in-memory fakes.
type Deps struct {
	Cfg      config.Config
	Sessions auth.Sessions
	Users    *service.UserService
	Ledger   *service.LedgerService
}

func buildDeps(cfg config.Config, db *pgxpool.Pool, rdb *redis.Client) Deps {
	return Deps{
		Cfg:      cfg,
		Sessions: auth.NewStore(rdb, cfg.Session.TTL.Duration()),
		Users:    service.NewUserService(repo.NewPGUserRepo(db)),
		Ledger: service.NewLedgerService(
			repo.NewPGLedgerRepo(db),
			cache.NewLedgerCache(rdb, cfg.Redis.DefaultTTL.Duration()),
		),
	}
}

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, d Deps) {
	r.GET("/health", healthHandler(d.Cfg))
	r.GET("/version", versionHandler(d.Cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	authHandler := handlers.NewAuthHandler(d.Sessions, d.Users, d.Cfg.Session)
	r.GET("/register", authHandler.ShowRegister)
	r.POST("/register", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	ledgerHandler := handlers.NewLedgerHandler(d.Ledger)
	protected := r.Group("", auth.RequireSession(d.Sessions))
	protected.GET("/", ledgerHandler.Index)
	protected.GET("/add", ledgerHandler.ShowAdd)
	protected.POST("/add", ledgerHandler.Add)
	protected.GET("/history", ledgerHandler.History)
	protected.GET("/delete/:id", ledgerHandler.Delete)
	protected.GET("/edit/:id", ledgerHandler.ShowEdit)
	protected.POST("/edit/:id", ledgerHandler.Edit)
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}
