package app

import (
	"fmt"
	"os"

	"github.com/derslig/teacher-panel-api/api"
	"github.com/derslig/teacher-panel-api/config"
	"github.com/derslig/teacher-panel-api/database"
	"github.com/derslig/teacher-panel-api/router"
	"github.com/derslig/teacher-panel-api/services/bunny"
	"github.com/derslig/teacher-panel-api/services/cron"
	"gorm.io/gorm"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		print("If not running, run the following command:\n")
		print("  make docker-up   (for Docker setup)\n")
		print("  make db-up       (for local PostgreSQL)\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		print("Error running migrations:\n")
		return err
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		db, ok := store.GetDB().(*gorm.DB)
		if !ok {
			print("Warning: Failed to get database connection for cron jobs\n")
		} else {
			// The sweeper needs the video host client to delete orphaned
			// placeholders; without credentials it only logs what it finds.
			bunnyClient, bunnyErr := bunny.NewClient(bunny.Config{
				LibraryID:   getEnv.BUNNY_LIBRARY_ID,
				APIKey:      getEnv.BUNNY_API_KEY,
				CDNHostname: getEnv.BUNNY_CDN_HOSTNAME,
			})
			if bunnyErr != nil {
				bunnyClient = nil
			}

			cronManager = cron.NewCronManager(db, bunnyClient)
			if err := cronManager.Start(); err != nil {
				print("Warning: Failed to start cron jobs\n")
				print("Error: ", err.Error(), "\n")
				// Don't fail the app, just log the warning
			}
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	// Init API
	var server *api.APIServer = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Setup Routes (middleware is attached inside)
	router.SetupRoutes(app, store)

	// Get the PORT & Start the Server
	return server.Run()

}
