package storage

import (
	"log"
	"os"

	"standwithnepal-server/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func connectToDB() *gorm.DB {
	// Only load .env in development (when RENDER env var is not set)
	if os.Getenv("RENDER") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Could not load .env file (this is normal in production)")
		}
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Panic("DB_CONNECTION_STRING environment variable is required")
	}

	db, dbError := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if dbError != nil {
		log.Panic("error connection to db: " + dbError.Error())
	}

	DB = db
	return db
}

func performMigrations(db *gorm.DB) {
	db.AutoMigrate(
		&models.User{},
		&models.Issue{},
		&models.IssueUpdate{},
		&models.IssueUpvote{},
		&models.IssueComment{},
		&models.Notification{},
		&models.Province{},
		&models.District{},
		&models.Municipality{},
		&models.ActivityLog{},
		&models.SystemSetting{},
	)
}

// seedLocations loads the fixed Nepal administrative hierarchy. Idempotent:
// rows are only written while the tables are empty.
func seedLocations(db *gorm.DB) {
	var count int64
	db.Model(&models.Province{}).Count(&count)
	if count > 0 {
		return
	}

	provinces := []models.Province{
		{ID: 1, Name: "Province 1", NameNepali: "प्रदेश १"},
		{ID: 2, Name: "Madhesh Province", NameNepali: "मधेश प्रदेश"},
		{ID: 3, Name: "Bagmati Province", NameNepali: "बागमती प्रदेश"},
		{ID: 4, Name: "Gandaki Province", NameNepali: "गण्डकी प्रदेश"},
		{ID: 5, Name: "Lumbini Province", NameNepali: "लुम्बिनी प्रदेश"},
		{ID: 6, Name: "Karnali Province", NameNepali: "कर्णाली प्रदेश"},
		{ID: 7, Name: "Sudurpashchim Province", NameNepali: "सुदूरपश्चिम प्रदेश"},
	}
	db.Create(&provinces)

	districts := []models.District{
		{ID: 1, Name: "Kathmandu", NameNepali: "काठमाडौं", ProvinceID: 3},
		{ID: 2, Name: "Lalitpur", NameNepali: "ललितपुर", ProvinceID: 3},
		{ID: 3, Name: "Bhaktapur", NameNepali: "भक्तपुर", ProvinceID: 3},
		{ID: 4, Name: "Kaski", NameNepali: "कास्की", ProvinceID: 4},
		{ID: 5, Name: "Chitwan", NameNepali: "चितवन", ProvinceID: 3},
	}
	db.Create(&districts)

	municipalities := []models.Municipality{
		{ID: 1, Name: "Kathmandu Metropolitan City", NameNepali: "काठमाडौं महानगरपालिका", DistrictID: 1, Type: "metropolitan", TotalWards: 32},
		{ID: 2, Name: "Lalitpur Metropolitan City", NameNepali: "ललितपुर महानगरपालिका", DistrictID: 2, Type: "metropolitan", TotalWards: 29},
		{ID: 3, Name: "Bhaktapur Municipality", NameNepali: "भक्तपुर नगरपालिका", DistrictID: 3, Type: "municipality", TotalWards: 10},
		{ID: 4, Name: "Pokhara Metropolitan City", NameNepali: "पोखरा महानगरपालिका", DistrictID: 4, Type: "metropolitan", TotalWards: 33},
		{ID: 5, Name: "Bharatpur Metropolitan City", NameNepali: "भरतपुर महानगरपालिका", DistrictID: 5, Type: "metropolitan", TotalWards: 29},
	}
	db.Create(&municipalities)
}

func InitializeDB() *gorm.DB {
	db := connectToDB()
	performMigrations(db)
	seedLocations(db)
	return db
}
