package routes

import (
	"time"

	"musteat-service/internal/api/handlers"
	"musteat-service/internal/api/middleware"
	"musteat-service/internal/config"
	"musteat-service/internal/database"
	"musteat-service/internal/repositories/postgres"
	"musteat-service/internal/services"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

type Router struct {
	engine             *gin.Engine
	userHandler        *handlers.UserHandler
	entryHandler       *handlers.EntryHandler
	voteHandler        *handlers.VoteHandler
	commentHandler     *handlers.CommentHandler
	messageHandler     *handlers.MessageHandler
	achievementHandler *handlers.AchievementHandler
	soundHandler       *handlers.SoundHandler
	rateLimitMW        *middleware.RateLimitMiddleware
	authMW             *middleware.AuthMiddleware
	voteService        services.VoteService
}

func NewRouter(
	db *gorm.DB,
	redisService *services.RedisService,
	storage *database.MinIOClient,
	notifier *services.Notifier,
	events services.VoteEventPublisher,
	cfg *config.Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.LogApi())

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	entryRepo := postgres.NewEntryRepository(db)
	commentRepo := postgres.NewCommentRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	achievementRepo := postgres.NewAchievementRepository(db)
	soundRepo := postgres.NewSoundRepository(db)

	// Services
	userService := services.NewUserService(userRepo, cfg.JWT.Secret)
	entryService := services.NewEntryService(entryRepo, redisService)
	voteService := services.NewVoteService(db, notifier, events, redisService)
	commentService := services.NewCommentService(commentRepo, entryRepo, userRepo, notifier)
	messageService := services.NewMessageService(messageRepo)
	achievementService := services.NewAchievementService(achievementRepo, userRepo)
	soundService := services.NewSoundService(soundRepo, storage)

	return &Router{
		engine:             engine,
		userHandler:        handlers.NewUserHandler(userService),
		entryHandler:       handlers.NewEntryHandler(entryService),
		voteHandler:        handlers.NewVoteHandler(voteService),
		commentHandler:     handlers.NewCommentHandler(commentService),
		messageHandler:     handlers.NewMessageHandler(messageService),
		achievementHandler: handlers.NewAchievementHandler(achievementService),
		soundHandler:       handlers.NewSoundHandler(soundService),
		rateLimitMW:        middleware.NewRateLimitMiddleware(redisService),
		authMW:             middleware.NewAuthMiddleware(cfg.JWT.Secret),
		voteService:        voteService,
	}
}

// Drain blocks until detached vote side effects still in flight have landed.
func (r *Router) Drain() {
	r.voteService.Wait()
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.engine.Group("/api/v1")

	// Public routes
	public := api.Group("/")
	{
		authRoutes := public.Group("/auth")
		authRoutes.Use(r.rateLimitMW.RateLimitIP(50, time.Minute))
		{
			authRoutes.POST("/register", r.userHandler.Register)
			authRoutes.POST("/login", r.userHandler.Login)
		}

		entries := public.Group("/entries")
		entries.Use(r.rateLimitMW.RateLimitIP(200, time.Minute))
		{
			entries.GET("/ranking", r.entryHandler.Ranking)
			entries.GET("/:id", r.entryHandler.Get)
		}

		comments := public.Group("/comments")
		comments.Use(r.rateLimitMW.RateLimitIP(200, time.Minute))
		{
			comments.GET("/entry/:id", r.commentHandler.List)
			comments.GET("/:id/replies", r.commentHandler.Replies)
		}

		achievements := public.Group("/achievements")
		achievements.Use(r.rateLimitMW.RateLimitIP(200, time.Minute))
		{
			achievements.GET("/user/:id", r.achievementHandler.ListByUser)
		}
	}

	// Authenticated routes
	auth := api.Group("/")
	auth.Use(r.authMW.RequireAuth())
	{
		users := auth.Group("/users")
		users.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			users.GET("/profile", r.userHandler.GetProfile)
			users.PUT("/profile", r.userHandler.UpdateProfile)
		}

		entries := auth.Group("/entries")
		entries.Use(r.rateLimitMW.RateLimit(60, time.Minute))
		{
			entries.POST("/", r.entryHandler.Create)
		}

		// The vote limit itself lives in the engine; the rate limit here only
		// blunts abusive clients.
		votes := auth.Group("/votes")
		votes.Use(r.rateLimitMW.RateLimit(120, time.Minute))
		{
			votes.POST("/up", r.voteHandler.CastUpvote)
			votes.POST("/down", r.voteHandler.CastDownvote)
			votes.POST("/share-reward", r.voteHandler.RedeemShareReward)
			votes.GET("/status/:id", r.voteHandler.TodayStatus)
			votes.GET("/mine", r.voteHandler.MyVotes)
			votes.GET("/summary/:id", r.voteHandler.Summary)
		}

		comments := auth.Group("/comments")
		comments.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			comments.POST("/", r.commentHandler.Add)
			comments.POST("/reply", r.commentHandler.Reply)
			comments.POST("/:id/like", r.commentHandler.ToggleLike)
			comments.DELETE("/:id", r.commentHandler.Delete)
		}

		messages := auth.Group("/messages")
		messages.Use(r.rateLimitMW.RateLimit(200, time.Minute))
		{
			messages.GET("/", r.messageHandler.List)
			messages.GET("/unread", r.messageHandler.UnreadCount)
			messages.PUT("/read-all", r.messageHandler.MarkAllRead)
			messages.PUT("/:id/read", r.messageHandler.MarkRead)
			messages.DELETE("/:id", r.messageHandler.Delete)
		}

		achievements := auth.Group("/achievements")
		achievements.Use(r.rateLimitMW.RateLimit(60, time.Minute))
		{
			achievements.POST("/", r.achievementHandler.Add)
			achievements.DELETE("/:id", r.achievementHandler.Delete)
		}

		sounds := auth.Group("/sounds")
		sounds.Use(r.rateLimitMW.RateLimit(30, time.Minute))
		{
			sounds.POST("/", r.soundHandler.Upload)
			sounds.GET("/", r.soundHandler.List)
			sounds.DELETE("/:id", r.soundHandler.Delete)
		}
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
