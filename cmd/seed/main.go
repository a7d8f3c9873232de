package main

import (
	"log"
	"os"

	"leave-auth-be/internal/entity"
	"leave-auth-be/internal/model"
	"leave-auth-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"
)

// Seeds one account per role plus the default runtime settings. Safe to
// run repeatedly: existing rows are left alone.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("🌱 Seeding staff accounts and settings\n")

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "changeme123"
		color.Yellow("SEED_PASSWORD not set, using the default development password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Error: failed to hash seed password: %v", err)
	}

	sub15 := string(entity.CategorySub15)
	users := []model.User{
		{Email: "admin@facility.local", FullName: "Facility Admin", Role: string(entity.UserRoleAdmin)},
		{Email: "supervisor.sub15@facility.local", FullName: "Sub15 Supervisor", Role: string(entity.UserRoleSupervisor), Category: &sub15},
		{Email: "socialwork@facility.local", FullName: "Social Work Desk", Role: string(entity.UserRoleSocialWork)},
		{Email: "monitor@facility.local", FullName: "Gate Monitor", Role: string(entity.UserRoleMonitor)},
	}

	for i := range users {
		users[i].PasswordHash = string(hash)
		users[i].Active = true
		result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&users[i])
		if result.Error != nil {
			color.Red("Failed to seed %s: %v", users[i].Email, result.Error)
			continue
		}
		if result.RowsAffected == 0 {
			color.Yellow("Skipped %s (already exists)", users[i].Email)
		} else {
			color.Green("Created %s (%s)", users[i].Email, users[i].Role)
		}
	}

	settings := []model.AppSetting{
		{Key: entity.SettingWeeklyRequestLimit, Value: "5", Description: "Max new requests per athlete name per rolling week"},
		{Key: entity.SettingResetTokenTTLHours, Value: "1", Description: "Password reset link validity in hours"},
	}
	for _, setting := range settings {
		result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&setting)
		if result.Error != nil {
			color.Red("Failed to seed setting %s: %v", setting.Key, result.Error)
			continue
		}
		if result.RowsAffected == 0 {
			color.Yellow("Skipped setting %s (already exists)", setting.Key)
		} else {
			color.Green("Created setting %s=%s", setting.Key, setting.Value)
		}
	}

	color.Cyan("\n✅ Seed complete")
}
