package router

import (
	"log"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/debatify/backend/internal/engagement"
	"github.com/debatify/backend/internal/handlers"
	"github.com/debatify/backend/internal/mailer"
	"github.com/debatify/backend/internal/middleware"
	"github.com/debatify/backend/internal/models"
	"github.com/debatify/backend/internal/notify"
	"github.com/debatify/backend/internal/repositories"
	"github.com/debatify/backend/internal/storage"
	"github.com/debatify/backend/pkg/config"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// SetupRouter wires repositories, the engagement engine, the
// notification dispatcher and every handler onto the Echo instance.
// It returns the dispatcher so the caller can flush pending fanouts on
// shutdown.
func SetupRouter(e *echo.Echo, db *config.DB, cfg *config.Config, firebaseAuth *firebaseauth.Client) (*notify.Dispatcher, error) {
	if err := db.Postgres.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Notification{},
		&models.Otp{},
	); err != nil {
		return nil, err
	}
	log.Println("Database migration completed")

	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	followRepo := repositories.NewPostgresFollowRepository(db.Postgres)
	notifRepo := repositories.NewPostgresNotificationRepository(db.Postgres)
	otpRepo := repositories.NewPostgresOtpRepository(db.Postgres)
	contentRepo := repositories.NewMongoContentRepository(db.Mongo.Database(cfg.MongoDatabase))

	dispatcher := notify.NewDispatcher(notifRepo)
	engine := engagement.NewEngine(contentRepo, userRepo, dispatcher)

	mailSender := mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	uploader, err := storage.NewLocalUploader(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	authMW := middleware.JWTAuth(cfg.JWTSecret)
	optionalAuthMW := middleware.OptionalJWTAuth(cfg.JWTSecret)

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	e.GET("/health", handlers.HealthCheck)
	e.Static("/uploads", cfg.UploadDir)

	api := e.Group("/api")

	authHandler := handlers.NewAuthHandler(userRepo, otpRepo, mailSender, firebaseAuth, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(api.Group("/auth"), authMW)

	userHandler := handlers.NewUserHandler(userRepo, followRepo, contentRepo, dispatcher, uploader)
	userHandler.RegisterUserRoutes(api.Group("/users"), authMW)

	kinds := map[models.Kind]string{
		models.KindDiscussion: "/discussions",
		models.KindDebate:     "/debates",
		models.KindBlog:       "/blogs",
	}
	for kind, prefix := range kinds {
		h := handlers.NewContentHandler(kind, engine, contentRepo, userRepo, followRepo, notifRepo, uploader)
		h.RegisterContentRoutes(api.Group(prefix), authMW, optionalAuthMW)
	}

	bookmarkHandler := handlers.NewBookmarkHandler(contentRepo, userRepo)
	bookmarkHandler.RegisterBookmarkRoutes(api.Group("/bookmarks"), authMW)

	notificationHandler := handlers.NewNotificationHandler(notifRepo, userRepo)
	notificationHandler.RegisterNotificationRoutes(api.Group("/notifications"), authMW)

	supportHandler := handlers.NewSupportHandler(userRepo, mailSender, cfg.SupportEmail)
	supportHandler.RegisterSupportRoutes(api.Group("/support"), authMW)

	return dispatcher, nil
}
