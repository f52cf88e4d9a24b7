package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"anoa.com/wanderhub/internal/config"
	"anoa.com/wanderhub/internal/middleware"
	"anoa.com/wanderhub/internal/scheduler"
	"anoa.com/wanderhub/pkg/broker"
	"anoa.com/wanderhub/pkg/hashid"
	"anoa.com/wanderhub/pkg/llm"
	"anoa.com/wanderhub/pkg/ratelimit"
	"anoa.com/wanderhub/pkg/realtime"
	"anoa.com/wanderhub/pkg/scraper"
	"anoa.com/wanderhub/pkg/storage"

	adHttp "anoa.com/wanderhub/internal/modules/ad/delivery/http"
	adRepo "anoa.com/wanderhub/internal/modules/ad/repository"
	adService "anoa.com/wanderhub/internal/modules/ad/service"

	commentHttp "anoa.com/wanderhub/internal/modules/comment/delivery/http"
	commentRepo "anoa.com/wanderhub/internal/modules/comment/repository"
	commentService "anoa.com/wanderhub/internal/modules/comment/service"

	eventHttp "anoa.com/wanderhub/internal/modules/event/delivery/http"
	eventRepo "anoa.com/wanderhub/internal/modules/event/repository"
	eventService "anoa.com/wanderhub/internal/modules/event/service"

	feedHttp "anoa.com/wanderhub/internal/modules/feed/delivery/http"
	feedService "anoa.com/wanderhub/internal/modules/feed/service"

	friendHttp "anoa.com/wanderhub/internal/modules/friend/delivery/http"
	friendRepo "anoa.com/wanderhub/internal/modules/friend/repository"
	friendService "anoa.com/wanderhub/internal/modules/friend/service"

	likeHttp "anoa.com/wanderhub/internal/modules/like/delivery/http"
	likeRepo "anoa.com/wanderhub/internal/modules/like/repository"
	likeService "anoa.com/wanderhub/internal/modules/like/service"

	msgHttp "anoa.com/wanderhub/internal/modules/message/delivery/http"
	msgRepo "anoa.com/wanderhub/internal/modules/message/repository"
	msgService "anoa.com/wanderhub/internal/modules/message/service"

	notifHttp "anoa.com/wanderhub/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/wanderhub/internal/modules/notification/repository"
	notifService "anoa.com/wanderhub/internal/modules/notification/service"

	placeHttp "anoa.com/wanderhub/internal/modules/place/delivery/http"
	placeRepo "anoa.com/wanderhub/internal/modules/place/repository"
	placeService "anoa.com/wanderhub/internal/modules/place/service"

	ratingHttp "anoa.com/wanderhub/internal/modules/rating/delivery/http"
	ratingRepo "anoa.com/wanderhub/internal/modules/rating/repository"
	ratingService "anoa.com/wanderhub/internal/modules/rating/service"

	searchHttp "anoa.com/wanderhub/internal/modules/search/delivery/http"
	searchService "anoa.com/wanderhub/internal/modules/search/service"

	statHttp "anoa.com/wanderhub/internal/modules/stat/delivery/http"
	statService "anoa.com/wanderhub/internal/modules/stat/service"

	userHttp "anoa.com/wanderhub/internal/modules/user/delivery/http"
	userRepo "anoa.com/wanderhub/internal/modules/user/repository"
	userService "anoa.com/wanderhub/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the connections opened by main. Redis, Storage and LLM may be nil.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Redis     *redis.Client
	Meili     meilisearch.ServiceManager
	Storage   storage.MediaStorage
	LLM       llm.Provider
	Publisher broker.Publisher
	Log       *zap.SugaredLogger
}

type Server struct {
	engine    *gin.Engine
	http      *http.Server
	scheduler *scheduler.Scheduler
	log       *zap.SugaredLogger
}

func NewServer(deps Deps) (*Server, error) {
	cfg := deps.Config
	log := deps.Log

	codec, err := hashid.New(cfg.HashIDSalt, cfg.HashIDMinLength)
	if err != nil {
		return nil, fmt.Errorf("failed to init hashid codec: %w", err)
	}

	// Without Redis, websocket fan-out stays inside this process.
	var pubsub realtime.PubSub = realtime.NewHub()
	if deps.Redis != nil {
		pubsub = realtime.NewRedisPubSub(deps.Redis)
	}
	upgrader := realtime.NewUpgrader(cfg.AllowedOrigins)
	limiter := ratelimit.New(deps.Redis)

	userRepository := userRepo.NewUserRepository(deps.DB)
	profileSvc := userService.NewProfileService(userRepository, deps.Storage)
	profileHandler := userHttp.NewProfileHandler(profileSvc)

	notificationRepository := notifRepo.NewNotificationRepository(deps.DB)
	notificationSvc := notifService.NewNotificationService(notificationRepository, pubsub, log)
	notificationHandler := notifHttp.NewNotificationHandler(notificationSvc, pubsub, upgrader, log)

	searchSvc := searchService.NewMeiliSearchService(deps.Meili, log)
	searchHandler := searchHttp.NewSearchHandler(searchSvc)

	adRepository := adRepo.NewRepository(deps.DB)
	adCounter := adService.NewCounter(adRepository, deps.Redis, log)
	adSvc := adService.NewAdService(adRepository, adCounter, deps.Storage, codec, deps.Publisher, log)
	adHandler := adHttp.NewAdHandler(adSvc, codec)

	placeRepository := placeRepo.NewPlaceRepository(deps.DB)
	placeSvc := placeService.NewPlaceService(placeRepository, deps.Storage, searchSvc, adSvc, log)
	placeHandler := placeHttp.NewPlaceHandler(placeSvc)

	eventRepository := eventRepo.NewEventRepository(deps.DB)
	eventSvc := eventService.NewEventService(eventRepository, searchSvc, adSvc, log)
	feedImporter := eventService.NewFeedImporter(eventRepository, userRepository, searchSvc, cfg.EventFeedURLs, cfg.AdminUsername, log)
	if cfg.EventScrapePages {
		feedImporter.WithDescriber(eventService.NewPageDescriber(scraper.New(), deps.LLM))
	}
	eventHandler := eventHttp.NewEventHandler(eventSvc, feedImporter)

	feedSvc := feedService.NewFeedService(placeSvc, eventSvc, adSvc, log)
	feedHandler := feedHttp.NewFeedHandler(feedSvc)

	friendRepository := friendRepo.NewFriendRepository(deps.DB)
	friendSvc := friendService.NewFriendService(friendRepository, userRepository, notificationSvc, limiter, cfg.RateLimitFriendRequest, deps.Publisher, log)
	friendHandler := friendHttp.NewFriendHandler(friendSvc)

	messageRepository := msgRepo.NewMessageRepository(deps.DB)
	messageSvc := msgService.NewMessageService(messageRepository, friendSvc, deps.Storage, notificationSvc, pubsub, limiter, cfg.RateLimitMessage, deps.Publisher, log)
	messageHandler := msgHttp.NewMessageHandler(messageSvc, pubsub, upgrader, log)

	ratingRepository := ratingRepo.NewRatingRepository(deps.DB)
	ratingSvc := ratingService.NewRatingService(ratingRepository, log)
	ratingHandler := ratingHttp.NewRatingHandler(ratingSvc)

	likeRepository := likeRepo.NewLikeRepository(deps.DB)
	likeSvc := likeService.NewLikeService(likeRepository, deps.Redis, log)
	likeHandler := likeHttp.NewLikeHandler(likeSvc)

	commentRepository := commentRepo.NewCommentRepository(deps.DB)
	commentSvc := commentService.NewCommentService(commentRepository, deps.Publisher, log)
	commentHandler := commentHttp.NewCommentHandler(commentSvc)

	statSvc := statService.NewStatService(statService.Counters{
		Users:    userRepository,
		Places:   placeRepository,
		Events:   eventRepository,
		Ads:      adRepository,
		Comments: commentRepository,
		Ratings:  ratingRepository,
	})
	statHandler := statHttp.NewStatHandler(statSvc)

	sched := scheduler.New(log)
	for _, job := range scheduler.DefaultJobs(adSvc, feedImporter, scheduler.Schedules{
		AdFlush:     cfg.AdFlushSchedule,
		AdExpiry:    cfg.AdExpirySchedule,
		EventImport: cfg.EventFeedSchedule,
	}, log) {
		if err := sched.Register(job); err != nil {
			return nil, err
		}
	}
	jobHandler := newJobHandler(sched)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := middleware.NewAuthMiddleware(userRepository, cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes; a token, when present, personalises likes and ratings.
	public := api.Group("")
	public.Use(authMiddleware.OptionalAuth())
	{
		public.GET("/feed", feedHandler.Home)
		public.GET("/search", searchHandler.Search)

		public.GET("/places", placeHandler.List)
		public.GET("/places/markers", placeHandler.Markers)
		public.GET("/places/:id", placeHandler.Get)

		public.GET("/events", eventHandler.List)
		public.GET("/events/markers", eventHandler.Markers)
		public.GET("/events/:id", eventHandler.Get)

		public.GET("/ads", adHandler.SelectActive)
		public.GET("/ads/detail/:position", adHandler.PickForDetail)
		public.POST("/ads/:hid/click", adHandler.Click)
		public.POST("/ads/:hid/impression", adHandler.Impression)

		public.GET("/likes/:kind/:id", likeHandler.Status)
		public.GET("/ratings/:kind/:id", ratingHandler.Summary)
		public.GET("/comments/:kind/:id", commentHandler.List)

		public.GET("/users/:id", profileHandler.GetProfile)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth(), authMiddleware.LoadRole())
	{
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.GET("/stats", statHandler.GetStats)
			adminGroup.GET("/ads", adHandler.List)
			adminGroup.GET("/ads/analytics", adHandler.Analytics)
			adminGroup.POST("/ads", adHandler.Create)
			adminGroup.GET("/ads/:hid", adHandler.Get)
			adminGroup.PUT("/ads/:hid", adHandler.Update)
			adminGroup.DELETE("/ads/:hid", adHandler.Delete)
			adminGroup.PATCH("/ads/:hid/active", adHandler.SetActive)
			adminGroup.POST("/ads/flush", adHandler.Flush)
			adminGroup.POST("/events/import", eventHandler.Import)
			adminGroup.GET("/jobs", jobHandler.List)
			adminGroup.POST("/jobs/:name/run", jobHandler.Run)
		}

		protected.GET("/users/count", statHandler.GetTotalUsers)

		protected.GET("/profile", profileHandler.GetCurrentProfile)
		protected.POST("/profile", profileHandler.UpsertProfile)

		protected.POST("/places", placeHandler.Create)
		protected.DELETE("/places/:id", placeHandler.Delete)

		protected.POST("/events", eventHandler.Create)
		protected.DELETE("/events/:id", eventHandler.Delete)

		protected.POST("/likes/:kind/:id", likeHandler.Toggle)
		protected.PUT("/ratings/:kind/:id", ratingHandler.Rate)
		protected.DELETE("/ratings/:kind/:id", ratingHandler.Remove)
		protected.POST("/comments/:kind/:id", commentHandler.Create)
		protected.DELETE("/comments/:id", commentHandler.Delete)

		protected.GET("/friends", friendHandler.ListFriends)
		protected.GET("/friends/pending", friendHandler.ListPending)
		protected.GET("/friends/outgoing", friendHandler.ListOutgoing)
		protected.GET("/friends/search", friendHandler.SearchUsers)
		protected.POST("/friends/requests", friendHandler.SendRequest)
		protected.POST("/friends/requests/:id/accept", friendHandler.AcceptRequest)
		protected.POST("/friends/requests/:id/reject", friendHandler.RejectRequest)
		protected.DELETE("/friends/:friend_id", friendHandler.RemoveFriend)

		protected.GET("/messages", messageHandler.ListChats)
		protected.GET("/messages/:friend_id", messageHandler.ListConversation)
		protected.POST("/messages/:friend_id", messageHandler.SendMessage)
		protected.PUT("/messages/:friend_id/read", messageHandler.MarkRead)
		protected.GET("/messages/:friend_id/ws", messageHandler.HandleWebSocket)

		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{
		engine:    router,
		scheduler: sched,
		log:       log,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the scheduler and serves until Shutdown is called.
func (s *Server) Run() error {
	s.scheduler.Start()

	s.log.Infow("server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.scheduler.Stop(ctx)
	return s.http.Shutdown(ctx)
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
