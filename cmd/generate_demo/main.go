// Command generate_demo creates a demo logbook with sample gear, rolls and frames.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/exifnotes/logbook/internal/config"
	"github.com/exifnotes/logbook/internal/entities"
	"github.com/exifnotes/logbook/internal/entrypoint"
	"github.com/exifnotes/logbook/internal/logging"
)

const defaultDemoDatabasePath = "./demo/demo.db"

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	logger, err := logging.NewLogger("info")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := generate(*dbPath, logger); err != nil {
		logger.Fatal("Failed to generate demo database", zap.Error(err))
	}
	logger.Info("Demo database ready", zap.String("path", *dbPath))
}

func generate(dbPath string, logger *zap.Logger) error {
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return err
	}

	cfg := config.NewConfig()
	cfg.Database.Path = dbPath
	cfg.Pictures.Dir = filepath.Join(filepath.Dir(dbPath), "pictures")
	cfg.Geocoding.Enabled = false

	app, err := entrypoint.NewApp(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()
	if err := app.Load(); err != nil {
		return err
	}

	summicron := &entities.Lens{
		Make: "Leica", Model: "Summicron-M 35mm f/2",
		MinAperture: "16", MaxAperture: "2",
		MinFocalLength: 35, MaxFocalLength: 35,
		ApertureIncrements: entities.IncrementHalf,
	}
	elmar := &entities.Lens{
		Make: "Leica", Model: "Elmar-M 50mm f/2.8",
		MinAperture: "16", MaxAperture: "2.8",
		MinFocalLength: 50, MaxFocalLength: 50,
		ApertureIncrements: entities.IncrementHalf,
	}
	for _, lens := range []*entities.Lens{summicron, elmar} {
		if err := app.Gear.SaveLens(lens); err != nil {
			return err
		}
	}
	yellow := &entities.Filter{Make: "B+W", Model: "022 Yellow"}
	if err := app.Gear.SaveFilter(yellow); err != nil {
		return err
	}
	m6 := &entities.Camera{
		Make: "Leica", Model: "M6",
		MinShutter: "1/1000", MaxShutter: "1",
		ShutterIncrements:      entities.IncrementFull,
		ExposureCompIncrements: entities.IncrementThird,
		Format:                 entities.Format35mm,
	}
	if err := app.Gear.SaveCamera(m6); err != nil {
		return err
	}
	if err := app.Gear.SetCameraLenses(m6.ID, []int64{summicron.ID, elmar.ID}); err != nil {
		return err
	}
	if err := app.Gear.SetLensFilters(summicron.ID, []int64{yellow.ID}); err != nil {
		return err
	}

	travel := &entities.Label{Name: "Travel"}
	if err := app.Rolls.SaveLabel(travel); err != nil {
		return err
	}

	var filmStockID *int64
	if stocks := app.FilmStocks.Snapshot().FilmStocks; len(stocks) > 0 {
		filmStockID = &stocks[0].ID
	}

	start := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	rolls := []*entities.Roll{
		{Name: "Lisbon walks", Date: start, ISO: 400, Format: entities.Format35mm, Labels: []entities.Label{*travel}, Favorite: true},
		{Name: "Back garden", Date: start.AddDate(0, 1, 0), ISO: 100, Format: entities.Format35mm},
	}
	for _, roll := range rolls {
		roll.CameraID = &m6.ID
		roll.FilmStockID = filmStockID
		if err := app.Rolls.SaveRoll(roll); err != nil {
			return err
		}
		if err := addFrames(app, roll, summicron, yellow); err != nil {
			return err
		}
		logger.Info("Saved roll", zap.String("name", roll.Name))
	}
	return nil
}

func addFrames(app *entrypoint.App, roll *entities.Roll, lens *entities.Lens, filter *entities.Filter) error {
	lat, lng := 38.7139, -9.1394
	shutters := []string{"1/125", "1/250", "1/500", "1/60"}
	apertures := []string{"8", "5.6", "4", "11"}
	for i := range shutters {
		frame := &entities.Frame{
			RollID:           roll.ID,
			Count:            i + 1,
			Date:             roll.Date.Add(time.Duration(i*7) * time.Minute),
			Shutter:          shutters[i],
			Aperture:         apertures[i],
			LensID:           &lens.ID,
			FocalLength:      lens.MinFocalLength,
			NoOfExposures:    1,
			MeteringMode:     entities.MeteringModeCenterWeighted,
			LightSource:      entities.LightSourceSunny,
			Latitude:         &lat,
			Longitude:        &lng,
			FormattedAddress: "Praça do Comércio, Lisboa, Portugal",
		}
		if i%2 == 0 {
			frame.Filters = []entities.Filter{*filter}
		}
		if err := app.Frames.SaveFrame(context.Background(), frame); err != nil {
			return err
		}
	}
	return nil
}
