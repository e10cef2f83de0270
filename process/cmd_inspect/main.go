package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"darlingdetails/pkg/config"
	"darlingdetails/pkg/media"
	"darlingdetails/process/inspect"
)

func main() {
	fks := flag.Bool("fks", false, "also print foreign key constraints")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	enc, err := media.EncoderFor(cfg.Upload.TargetFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "target format: %v\n", err)
		os.Exit(2)
	}
	db, err := inspect.Open(cfg.DSN)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer db.Close()

	ctx := context.Background()
	bad, err := inspect.ImageStates(ctx, db, media.NewResolver("/uploads", enc.Extension()), os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *fks {
		if err := inspect.ForeignKeys(ctx, db, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if bad > 0 {
		os.Exit(3)
	}
}
