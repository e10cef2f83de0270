package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"darlingdetails/pkg/catalog"
	"darlingdetails/pkg/config"
	"darlingdetails/pkg/media"
	"darlingdetails/process/orphans"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	yes := flag.Bool("yes", false, "remove the orphans instead of only listing them")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if cfg.DSN == "" {
		log.Fatal().Msg("DB_DSN not set in env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("open db")
	}
	store, err := media.OpenStore(ctx, cfg.Storage.Driver, cfg.Upload.BaseDir, cfg.MinIO())
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	enc, err := media.EncoderFor(cfg.Upload.TargetFormat)
	if err != nil {
		log.Fatal().Err(err).Msg("target format")
	}

	names, err := catalog.NewRepository(db).ImageNames(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load product images")
	}
	found, err := orphans.Find(ctx, store, media.NewResolver("/uploads", enc.Extension()), names)
	if err != nil {
		log.Fatal().Err(err).Msg("find orphans")
	}
	for _, ref := range found {
		fmt.Printf("%s/%s\n", ref.Area, ref.Name)
	}
	fmt.Printf("%d referenced images, %d orphaned derivatives\n", len(names), len(found))
	if !*yes {
		if len(found) > 0 {
			fmt.Println("dry run; pass -yes to remove them")
		}
		return
	}
	removed, err := orphans.Remove(ctx, store, found, log)
	fmt.Printf("removed %d of %d\n", removed, len(found))
	if err != nil {
		os.Exit(1)
	}
}
