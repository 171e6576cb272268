package database

import (
	"log"
	"os"
	"time"

	"backend/internal/model"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed populates an empty database with a default admin account and a small
// demo dataset. Non-empty tables are left alone, so repeated startups are
// safe.
func Seed(db *gorm.DB) error {
	if err := seedAdmin(db); err != nil {
		return err
	}
	return seedDemoData(db)
}

func seedAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := model.User{
		Username: "admin",
		Email:    "admin@liquidation.local",
		Password: string(hashed),
		Role:     model.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Println("Seeded default admin account")
	return nil
}

func seedDemoData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Customer{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	customers := []model.Customer{
		{LastName: "KONE", FirstName: "Amadou", Address: "Cocody, Abidjan", IFU: "IFU-0001-2024", Phone: "+2250701020304", Email: "amadou.kone@example.ci"},
		{LastName: "TRAORE", FirstName: "Fatou", Address: "Plateau, Abidjan", IFU: "IFU-0002-2024", Phone: "+2250705060708", Email: "fatou.traore@example.ci"},
		{LastName: "DIABATE", FirstName: "Issa", Address: "Bouaké", IFU: "IFU-0003-2024", Phone: "+2250709101112", Email: "issa.diabate@example.ci"},
	}
	if err := db.Create(&customers).Error; err != nil {
		return err
	}

	today := time.Now().Truncate(24 * time.Hour)
	liquidations := []model.Liquidation{
		{
			CustomerID: customers[0].ID,
			TaxType:    "TVA",
			Amount:     decimal.NewFromInt(50000),
			IssueDate:  today,
			DueDate:    today.AddDate(0, 0, 30),
			Status:     model.StatusPending,
		},
		{
			CustomerID: customers[1].ID,
			TaxType:    "PATENTE",
			Amount:     decimal.NewFromInt(125000),
			IssueDate:  today.AddDate(0, 0, -45),
			DueDate:    today.AddDate(0, 0, -15),
			Status:     model.StatusOverdue,
		},
		{
			CustomerID: customers[2].ID,
			TaxType:    "IMPOT_FONCIER",
			Amount:     decimal.NewFromInt(75000),
			IssueDate:  today.AddDate(0, 0, -60),
			DueDate:    today.AddDate(0, 0, -30),
			Status:     model.StatusOverdue,
		},
	}
	if err := db.Create(&liquidations).Error; err != nil {
		return err
	}

	log.Printf("Seeded %d demo customers and %d liquidations", len(customers), len(liquidations))
	return nil
}
