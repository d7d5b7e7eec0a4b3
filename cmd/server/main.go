package main

import (
	"log"
	"net/http"

	"github.com/cmsgraham/secret-santa/internal/config"
	"github.com/cmsgraham/secret-santa/internal/database"
	"github.com/cmsgraham/secret-santa/internal/email"
	"github.com/cmsgraham/secret-santa/internal/handlers"
	"github.com/cmsgraham/secret-santa/internal/middleware"
	"github.com/cmsgraham/secret-santa/internal/services"
	"github.com/cmsgraham/secret-santa/internal/ws"

	_ "github.com/cmsgraham/secret-santa/docs"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Secret Santa API
// @version         1.0
// @description     API for Secret Santa event coordination with magic link login and anonymous wall
// @host            localhost:8080
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter "Bearer {token}"

func main() {
	cfg := config.Load()

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	hub := ws.NewHub()

	var mailer email.Mailer
	if cfg.SMTPConfigured() {
		mailer = email.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SenderEmail)
	} else {
		log.Println("SMTP_HOST not set, outbound email will be logged")
		mailer = email.LogMailer{}
	}

	authService := services.NewAuthService(services.NewGormTokenStore(db), mailer, cfg.JWTSecret, cfg.BaseURL)
	drawService := services.NewDrawService()
	eventService := services.NewEventService(db, drawService, mailer)
	feedService := services.NewFeedService(db)
	resolver := services.NewIdentityResolver(services.NewGormParticipantLookup(db))

	authHandler := handlers.NewAuthHandler(authService)
	eventHandler := handlers.NewEventHandler(eventService, hub)
	participantHandler := handlers.NewParticipantHandler(eventService, hub)
	feedHandler := handlers.NewFeedHandler(eventService, feedService, resolver, authService, hub)
	wsHandler := handlers.NewWSHandler(eventService, hub)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Participant-ID", "X-Participant-Email"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/ws/events/:code", wsHandler.HandleEventWebSocket)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.GET("/verify/:token", authHandler.Verify)
		}

		api.GET("/suggestions/names", eventHandler.NameSuggestions)

		events := api.Group("/events")
		{
			events.POST("", middleware.JWTAuth(authService), eventHandler.Create)
			events.GET("", middleware.JWTAuth(authService), eventHandler.List)
			events.GET("/:code", eventHandler.Get)
			events.DELETE("/:code", middleware.JWTAuth(authService), eventHandler.Delete)
			events.GET("/:code/manage", middleware.JWTAuth(authService), eventHandler.Manage)
			events.POST("/:code/draw", middleware.JWTAuth(authService), eventHandler.RunDraw)
			events.POST("/:code/reopen", middleware.JWTAuth(authService), eventHandler.Reopen)
			events.POST("/:code/close", middleware.JWTAuth(authService), eventHandler.Close)
			events.POST("/:code/guessing", middleware.JWTAuth(authService), eventHandler.SetGuessing)

			events.POST("/:code/participants", participantHandler.Register)
			events.GET("/:code/participants", participantHandler.List)
			events.DELETE("/:code/participants/:id", middleware.JWTAuth(authService), participantHandler.Remove)

			member := events.Group("/:code", middleware.OptionalJWT(authService))
			{
				member.GET("/me", feedHandler.Me)
				member.PUT("/me", feedHandler.UpdateMe)
				member.POST("/guess", feedHandler.Guess)
				member.GET("/feed", feedHandler.Wall)
				member.POST("/feed/posts", feedHandler.CreatePost)
				member.POST("/feed/comments", feedHandler.AddComment)
				member.POST("/feed/likes", feedHandler.ToggleLike)
			}
		}
	}

	log.Printf("server starting on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
