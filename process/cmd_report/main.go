package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"darlingdetails/pkg/config"
	"darlingdetails/process/report"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	list := flag.Bool("list", false, "list every product")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	if cfg.DSN == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export DB_DSN and retry")
		os.Exit(2)
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	if err := report.Run(context.Background(), db, os.Stdout, *list); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
