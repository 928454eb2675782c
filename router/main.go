package router

import (
	"log"
	"os"
	"time"

	"github.com/derslig/teacher-panel-api/config"
	"github.com/derslig/teacher-panel-api/database"
	"github.com/derslig/teacher-panel-api/handlers"
	auth_handlers "github.com/derslig/teacher-panel-api/handlers/auth"
	course_handlers "github.com/derslig/teacher-panel-api/handlers/course"
	document_handlers "github.com/derslig/teacher-panel-api/handlers/document"
	reklam_handlers "github.com/derslig/teacher-panel-api/handlers/reklam"
	student_handlers "github.com/derslig/teacher-panel-api/handlers/student"
	video_handlers "github.com/derslig/teacher-panel-api/handlers/video"
	"github.com/derslig/teacher-panel-api/services/bunny"
	"github.com/derslig/teacher-panel-api/services/media"
	"github.com/derslig/teacher-panel-api/services/storage"
	"github.com/derslig/teacher-panel-api/utils"
	"github.com/derslig/teacher-panel-api/utils/auth"
	"github.com/derslig/teacher-panel-api/utils/cache"
	"github.com/derslig/teacher-panel-api/utils/middleware"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	getEnv, err := config.Get()
	if err != nil {
		log.Fatal("Failed to load environment configuration")
	}

	jwtSecret := getEnv.JWT_SECRET
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := getEnv.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "teacher-panel-api"
	}

	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Redis cache backs the brute force protection; without it logins are
	// still served, just unprotected.
	redisURL := getEnv.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	// Object storage and the video host are both optional at boot. Handlers
	// that need a missing one answer 503 instead of failing at startup.
	storageClient, err := storage.NewSpacesClient(storage.SpacesConfig{
		AccessKey: getEnv.SPACES_KEY,
		SecretKey: getEnv.SPACES_SECRET,
		Bucket:    getEnv.SPACES_BUCKET,
		Region:    getEnv.SPACES_REGION,
		Endpoint:  getEnv.SPACES_ENDPOINT,
		CDNURL:    getEnv.SPACES_CDN_URL,
	})
	if err != nil {
		log.Printf("Warning: object storage disabled: %v", err)
		storageClient = nil
	}

	bunnyClient, err := bunny.NewClient(bunny.Config{
		LibraryID:   getEnv.BUNNY_LIBRARY_ID,
		APIKey:      getEnv.BUNNY_API_KEY,
		CDNHostname: getEnv.BUNNY_CDN_HOSTNAME,
	})
	if err != nil {
		log.Printf("Warning: video hosting disabled: %v", err)
		bunnyClient = nil
	}

	mediaService := media.NewService(db, storageClient, bunnyClient)

	// Initialize auth middleware with DB for blacklist checking
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection, mediaService)
	courseHandler := course_handlers.NewCourseHandler(db, mediaService)
	videoHandler := video_handlers.NewVideoHandler(db, mediaService)
	documentHandler := document_handlers.NewDocumentHandler(db, mediaService)
	studentHandler := student_handlers.NewStudentHandler(db)
	reklamHandler := reklam_handlers.NewReklamHandler(db, mediaService)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/health", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Get("/profile", authMiddleware.Required(), authHandler.GetProfile)
	authGroup.Put("/profile", authMiddleware.Required(), authHandler.UpdateProfile)

	// Courses (owner-scoped)
	courses := api.Group("/courses", authMiddleware.Required())
	courses.Get("/", courseHandler.ListCourses)
	courses.Get("/:id", courseHandler.GetCourse)
	courses.Post("/", courseHandler.CreateCourse)
	courses.Put("/:id", courseHandler.UpdateCourse)
	courses.Delete("/:id", courseHandler.DeleteCourse)

	// Videos (scoped through the owning course)
	videos := api.Group("/videos", authMiddleware.Required())
	videos.Get("/", videoHandler.ListVideos)
	videos.Get("/:id", videoHandler.GetVideo)
	videos.Post("/", videoHandler.CreateVideo)
	videos.Put("/:id", videoHandler.UpdateVideo)
	videos.Delete("/:id", videoHandler.DeleteVideo)

	// Documents (owner-scoped)
	documents := api.Group("/documents", authMiddleware.Required())
	documents.Get("/", documentHandler.ListDocuments)
	documents.Get("/:id", documentHandler.GetDocument)
	documents.Post("/", documentHandler.CreateDocument)
	documents.Put("/:id", documentHandler.UpdateDocument)
	documents.Delete("/:id", documentHandler.DeleteDocument)

	// Students (shared collection)
	students := api.Group("/students", authMiddleware.Required())
	students.Get("/", studentHandler.ListStudents)
	students.Get("/:id", studentHandler.GetStudent)
	students.Post("/", studentHandler.CreateStudent)
	students.Put("/:id", studentHandler.UpdateStudent)
	students.Patch("/:id/verify", studentHandler.VerifyStudent)
	students.Delete("/:id", studentHandler.DeleteStudent)

	// Reklams (owner-scoped promotional banners)
	reklams := api.Group("/reklams", authMiddleware.Required())
	reklams.Get("/", reklamHandler.ListReklams)
	reklams.Get("/:id", reklamHandler.GetReklam)
	reklams.Post("/", reklamHandler.CreateReklam)
	reklams.Put("/:id", reklamHandler.UpdateReklam)
	reklams.Delete("/:id", reklamHandler.DeleteReklam)
}
