package db

import (
	"log"
	"os"

	"github.com/manankohlii/manage-my-parents-sub000/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=manage_my_parents port=5432 sslmode=disable"
	}

	var err error
	// TranslateError lets the vote ledger detect unique-index collisions
	// as gorm.ErrDuplicatedKey instead of driver-specific errors
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	seedTags()
}

// Migrate runs AutoMigrate for every model. Exported so tests can build
// the same schema on their own database handle.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Challenge{},
		&models.Solution{},
		&models.Group{},
		&models.GroupMember{},
		&models.GroupInvitation{},
		&models.GroupChallenge{},
		&models.GroupSolution{},
		&models.Vote{},
		&models.Tag{},
		&models.ChallengeTag{},
		&models.Bookmark{},
		&models.GroupMessage{},
		&models.Notification{},
	)
}

func seedTags() {
	var count int64
	DB.Model(&models.Tag{}).Count(&count)
	if count > 0 {
		log.Println("Tags already seeded, skipping")
		return
	}

	tags := []models.Tag{
		{Name: "Communication"},
		{Name: "Health"},
		{Name: "Caregiving"},
		{Name: "Boundaries"},
		{Name: "Finances"},
		{Name: "Mobility"},
		{Name: "Living Arrangements"},
	}

	for _, tag := range tags {
		if err := DB.Create(&tag).Error; err != nil {
			log.Printf("Failed to create tag %s: %v", tag.Name, err)
		}
	}
	log.Println("Initial tags created successfully")
}
