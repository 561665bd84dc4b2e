package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"authway/internal/config"
	"authway/internal/handlers"
	"authway/internal/repositories"
	"authway/internal/routes"
	"authway/internal/services"
	"authway/internal/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "authway/docs"
)

func Run() {
	cfg := config.LoadConfig()

	if cfg.JWT.Secret != "" {
		services.JWTKey = []byte(cfg.JWT.Secret)
	}

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("db connect: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("db close: %v", err)
		}
	}()

	// === Repos ===
	accountRepo := repositories.NewAccountRepository(db)
	verificationRepo := repositories.NewVerificationRepository(db)

	// === Notification dispatcher (фоновая очередь доставки кодов) ===
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	mobizonClient := utils.NewClient(
		cfg.Mobizon.APIKey,
		cfg.Mobizon.SenderID,
		cfg.Mobizon.DryRun,
	)
	smsService := services.NewSMSService(mobizonClient)

	dispatcher := services.NewDispatcher(emailService, smsService)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	// === Services ===
	verificationService := services.NewVerificationService(verificationRepo, dispatcher)
	tokenService := services.NewTokenService(accountRepo)
	authService := services.NewAuthService(accountRepo, verificationService, tokenService)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(authService)
	verifyHandler := handlers.NewVerifyHandler(authService)
	profileHandler := handlers.NewProfileHandler(authService, cfg.Files.RootDir)

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(router, authHandler, verifyHandler, profileHandler)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("server run: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
