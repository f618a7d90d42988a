package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/xuri/excelize/v2"

	"github.com/EzraBr1dger/space-map-admin/internal/config"
	"github.com/EzraBr1dger/space-map-admin/internal/database"
	"github.com/EzraBr1dger/space-map-admin/internal/models"
	"github.com/EzraBr1dger/space-map-admin/internal/services"
	"github.com/EzraBr1dger/space-map-admin/internal/spreadsheet"
	"github.com/EzraBr1dger/space-map-admin/internal/store"
)

// Imports the Planets sheet of a workbook (the same layout /api/export/xlsx
// produces) into the map. Rows that fail to parse are reported and skipped.
func main() {
	path := flag.String("file", "", "path to the .xlsx workbook")
	merge := flag.Bool("merge", false, "overlay onto existing planets instead of replacing the set")
	dryRun := flag.Bool("dry-run", false, "parse and report without writing")
	flag.Parse()

	if *path == "" {
		log.Fatal("usage: import_planets -file planets.xlsx [-merge] [-dry-run]")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	f, err := excelize.OpenFile(*path)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	planets, rowErrs := spreadsheet.ReadPlanets(f)
	for _, re := range rowErrs {
		fmt.Printf("skipped %v\n", re)
	}
	fmt.Printf("Parsed %d planets (%d rows skipped)\n", len(planets), len(rowErrs))
	if *dryRun || len(planets) == 0 {
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("failed to connect database:", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	svc := services.New(store.NewGormStore(db), services.Options{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.GetTokenTTL(),
	})
	importer := models.Principal{Username: "import_planets", Role: models.RoleAdmin}

	if *merge {
		existing, err := svc.Planets.List(ctx)
		if err != nil {
			log.Fatal(err)
		}
		if existing == nil {
			existing = map[string]*models.Planet{}
		}
		for name, p := range planets {
			if old, ok := existing[name]; ok {
				p.CurrentBuilding = old.CurrentBuilding
			}
			existing[name] = p
		}
		planets = existing
	}

	n, err := svc.Planets.BulkReplace(ctx, importer, planets)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Imported %d planets\n", n)
}
