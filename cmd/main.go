package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"bolada-backend/internal/auth"
	"bolada-backend/internal/blockchain"
	"bolada-backend/internal/config"
	"bolada-backend/internal/database"
	"bolada-backend/internal/handlers"
	"bolada-backend/internal/jobs"
	"bolada-backend/internal/repository"
	"bolada-backend/internal/services"
	"bolada-backend/internal/ws"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()
	repo := repository.NewRepository(db)

	// Websocket hub doubles as the event notifier for all game services
	hub := ws.NewHub()
	go hub.Run()

	// Initialize Solana client
	solanaClient := blockchain.NewSolanaClient(cfg.Solana.Network, cfg.Solana.RPCEndpoint)

	// Initialize services
	levelService := services.NewLevelService(db)
	referralService := services.NewReferralService(db, cfg.App.CommissionRate)
	chatService := services.NewChatService(db, hub)
	authService := services.NewAuthService(db, referralService, chatService)
	adminService := services.NewAdminService(db, cfg.App.OwnerWallet)
	jackpotService := services.NewJackpotService(repo, hub, levelService, referralService, cfg.Jackpot)
	coinflipService := services.NewCoinflipService(db, hub, levelService, referralService)
	raffleService := services.NewRaffleService(repo, hub)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, referralService)
	userHandler := handlers.NewUserHandler(authService, levelService)
	jackpotHandler := handlers.NewJackpotHandler(jackpotService, adminService)
	coinflipHandler := handlers.NewCoinflipHandler(coinflipService)
	raffleHandler := handlers.NewRaffleHandler(raffleService)
	chatHandler := handlers.NewChatHandler(chatService)
	referralHandler := handlers.NewReferralHandler(referralService)
	adminHandler := handlers.NewAdminHandler(adminService, raffleService)
	walletHandler := handlers.NewWalletHandler(solanaClient)

	// Start the round scheduler: draws expired rounds and opens new ones
	scheduler := jobs.NewRoundScheduler(jackpotService, cfg.Jackpot.DrawInterval)
	go scheduler.Start()
	log.Println("Round scheduler started")

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Websocket feed (public)
	router.GET("/ws", hub.HandleWebSocket)

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/wallet", authHandler.WalletLogin)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	// Authenticated /auth/me route
	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.GetMe)
	}

	// Public read routes
	router.GET("/api/jackpot/current", jackpotHandler.GetCurrentRound)
	router.GET("/api/jackpot/history", jackpotHandler.GetHistory)
	router.GET("/api/jackpot/rounds/:id/bets", jackpotHandler.GetRoundBets)
	router.GET("/api/coinflip/rooms", coinflipHandler.GetOpenRooms)
	router.GET("/api/raffle", raffleHandler.GetStatus)
	router.GET("/api/raffle/winners", raffleHandler.GetWinners)
	router.GET("/api/chat/messages", chatHandler.GetMessages)
	router.GET("/api/users/:wallet", userHandler.GetProfile)
	router.GET("/api/wallet/:address/balance", walletHandler.GetBalance)
	router.GET("/api/wallet/transactions/:signature", walletHandler.VerifyTransaction)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// Jackpot endpoints
		api.POST("/jackpot/bet", jackpotHandler.PlaceBet)
		api.POST("/jackpot/rounds/:id/draw", jackpotHandler.DrawWinner)

		// Coinflip endpoints
		api.POST("/coinflip/rooms", coinflipHandler.CreateRoom)
		api.POST("/coinflip/rooms/:id/join", coinflipHandler.JoinRoom)
		api.DELETE("/coinflip/rooms/:id", coinflipHandler.CancelRoom)
		api.GET("/coinflip/history", coinflipHandler.GetHistory)

		// Raffle endpoints
		api.POST("/raffle/tickets", raffleHandler.BuyTicket)
		api.GET("/raffle/tickets", raffleHandler.GetMyTickets)

		// Chat endpoints
		api.POST("/chat/messages", chatHandler.SendMessage)

		// User endpoints
		api.GET("/users/me/level", userHandler.GetMyLevel)
		api.PUT("/users/me/nickname", userHandler.UpdateNickname)

		// Referral endpoints
		api.GET("/referrals", referralHandler.GetMyReferrals)
		api.GET("/referrals/code", referralHandler.GetMyCode)
		api.POST("/referrals/apply", referralHandler.ApplyCode)
		api.GET("/referrals/earnings", referralHandler.GetMyEarnings)
	}

	// Admin routes (protected + owner only)
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware())
	admin.Use(adminHandler.RequireOwner())
	{
		admin.POST("/ban", adminHandler.BanUser)
		admin.POST("/unban", adminHandler.UnbanUser)
		admin.POST("/mute", adminHandler.MuteUser)
		admin.POST("/unmute", adminHandler.UnmuteUser)
		admin.PUT("/settings", adminHandler.SetSetting)
		admin.POST("/raffle/draw", adminHandler.DrawRaffleWinner)
		admin.GET("/logs", adminHandler.GetLogs)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)
		log.Printf("Wallet auth: POST http://localhost:%s/auth/wallet", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	scheduler.Stop()

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
