package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"darlingdetails/models"
	"darlingdetails/pkg/config"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	name := flag.String("name", "Admin User", "display name")
	flag.Parse()
	if flag.NArg() < 2 {
		fmt.Println("usage: go run ./cmd/create_user [-name NAME] <email> <password>")
		os.Exit(2)
	}
	email := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	password := flag.Arg(1)

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		log.Fatal().Msg("DB_DSN not set in environment")
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open db")
	}

	hpw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt failed")
	}

	// an existing account gets the new password and name
	var existing models.User
	err = db.Where("lower(email) = ?", email).First(&existing).Error
	switch {
	case err == nil:
		existing.Name = *name
		existing.HashedPassword = hpw
		if err := db.Save(&existing).Error; err != nil {
			log.Fatal().Err(err).Msg("failed to update user")
		}
		fmt.Printf("updated user %s id=%d\n", email, existing.ID)
	case errors.Is(err, gorm.ErrRecordNotFound):
		user := models.User{Name: *name, Email: email, HashedPassword: hpw}
		if err := db.Create(&user).Error; err != nil {
			log.Fatal().Err(err).Msg("failed to create user")
		}
		fmt.Printf("created user %s id=%d\n", email, user.ID)
	default:
		log.Fatal().Err(err).Msg("failed to look up user")
	}
}
