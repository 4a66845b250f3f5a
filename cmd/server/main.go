package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/miyakawa-dev/salonflow/configs"
	"github.com/miyakawa-dev/salonflow/internal/api/handlers"
	"github.com/miyakawa-dev/salonflow/internal/api/middleware"
	job "github.com/miyakawa-dev/salonflow/internal/jobs"
	"github.com/miyakawa-dev/salonflow/internal/queue"
	"github.com/miyakawa-dev/salonflow/internal/repository"
	"github.com/miyakawa-dev/salonflow/internal/service"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	if err := runMigrations(db, cfg.MigrationsDir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		BodyLimit:    16 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	shopRepo := repository.NewShopRepository(db)
	postRepo := repository.NewPostRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)

	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo)
	shopService := service.NewShopService(shopRepo)
	aiService := service.NewAIService(*cfg)
	mediaService := service.NewMediaService(*cfg)
	instagramService := service.NewInstagramService(*cfg, socialAccountRepo)
	defer instagramService.Close()
	postService := service.NewPostService(shopRepo, postRepo, instagramService)
	reviewService := service.NewReviewService(shopRepo, reviewRepo, aiService)
	dashboardService := service.NewDashboardService(shopRepo, postRepo, reviewRepo, instagramService)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Get("/login", auth.Login)
	app.Get("/login/callback", auth.LoginCallbackHandler)

	instagram := handlers.NewInstagramHandler(*cfg, instagramService)
	app.Get("/auth/instagram/callback", instagram.CallbackHandler)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)
	api.Delete("/user", user.RemoveUser)

	api.Get("/instagram/connect", instagram.Connect)
	api.Get("/instagram/status", instagram.Status)
	api.Post("/instagram/disconnect", instagram.Disconnect)

	shop := handlers.NewShopHandler(shopService)
	api.Post("/shops", shop.CreateShop)
	api.Get("/shops", shop.ListShops)
	api.Get("/shops/:shopID", shop.GetShop)
	api.Put("/shops/:shopID", shop.UpdateShop)
	api.Delete("/shops/:shopID", shop.RemoveShop)

	post := handlers.NewPostHandler(postService, client)
	api.Post("/shops/:shopID/posts", post.CreatePost)
	api.Get("/shops/:shopID/posts", post.ListPosts)
	api.Get("/shops/:shopID/posts/stats", post.PostStats)
	api.Get("/shops/:shopID/posts/:postID", post.GetPost)
	api.Put("/shops/:shopID/posts/:postID", post.UpdatePost)
	api.Delete("/shops/:shopID/posts/:postID", post.RemovePost)
	api.Post("/shops/:shopID/posts/:postID/publish", post.PublishPost)
	api.Get("/shops/:shopID/posts/:postID/insights", post.PostInsights)

	review := handlers.NewReviewHandler(reviewService)
	api.Post("/shops/:shopID/reviews", review.CreateReview)
	api.Get("/shops/:shopID/reviews", review.ListReviews)
	api.Get("/shops/:shopID/reviews/stats", review.ReviewStats)
	api.Get("/shops/:shopID/reviews/:reviewID", review.GetReview)
	api.Post("/shops/:shopID/reviews/:reviewID/reply", review.ReplyReview)
	api.Get("/shops/:shopID/reviews/:reviewID/suggest-reply", review.SuggestReply)

	dashboard := handlers.NewDashboardHandler(dashboardService)
	api.Get("/shops/:shopID/dashboard", dashboard.Summary)

	media := handlers.NewMediaHandler(mediaService, aiService)
	api.Post("/media/images", media.UploadImage)
	api.Post("/captions/suggest", media.SuggestCaption)

	// cron jobs
	engagementJob := job.NewEngagementSyncJob(postRepo, postService)

	// queue
	queueW := queue.NewQueue(postService)

	c := cron.New()
	c.AddFunc("@every 01h00m00s", engagementJob.SyncEngagement)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, queueW.HandlePublishPostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func runMigrations(db *sql.DB, dir string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
