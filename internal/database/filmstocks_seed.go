package database

import "github.com/exifnotes/logbook/internal/entities"

type seedStock struct {
	make, model string
	iso         int
	filmType    entities.FilmType
	process     entities.FilmProcess
}

var bundledFilmStocks = []seedStock{
	{"Kodak", "Portra 160", 160, entities.FilmTypeColorNegative, entities.FilmProcessC41},
	{"Kodak", "Portra 400", 400, entities.FilmTypeColorNegative, entities.FilmProcessC41},
	{"Kodak", "Portra 800", 800, entities.FilmTypeColorNegative, entities.FilmProcessC41},
	{"Kodak", "Ektar 100", 100, entities.FilmTypeColorNegative, entities.FilmProcessC41},
	{"Kodak", "Gold 200", 200, entities.FilmTypeColorNegative, entities.FilmProcessC41},
	{"Kodak", "Ultramax 400", 400, entities.FilmTypeColorNegative, entities.FilmProcessC41},
	{"Kodak", "ColorPlus 200", 200, entities.FilmTypeColorNegative, entities.FilmProcessC41},
	{"Kodak", "Ektachrome E100", 100, entities.FilmTypeColorReversal, entities.FilmProcessE6},
	{"Kodak", "Tri-X 400", 400, entities.FilmTypeBWNegative, entities.FilmProcessBWNegative},
	{"Kodak", "T-Max 100", 100, entities.FilmTypeBWNegative, entities.FilmProcessBWNegative},
	{"Kodak", "T-Max 400", 400, entities.FilmTypeBWNegative, entities.FilmProcessBWNegative},
	{"Kodak", "T-Max P3200", 3200, entities.FilmTypeBWNegative, entities.FilmProcessBWNegative},
	{"Kodak", "Vision3 250D", 250, entities.FilmTypeMotionPictureColorNegative, entities.FilmProcessECN2},
	{"Kodak", "Vision3 500T", 500, entities.FilmTypeMotionPictureColorNegative, entities.FilmProcessECN2},
	{"Ilford", "Pan F Plus 50", 50, entities.FilmTypeBWNegative, entities.FilmProcessBWNegative},
	{"Ilford", "FP4 Plus 125", 125, entities.FilmTypeBWNegative, entities.FilmProcessBWNegative},
	{"Ilford", "HP5 Plus 400", 400, entities.FilmTypeBWNegative, entities.FilmProcessBWNegative},
	{"Ilford", "Delta 100", 100, entities.FilmTypeBWNegative, entities.FilmProcessBWNegative},
	{"Ilford", "Delta 400", 400, entities.FilmTypeBWNegative, entities.FilmProcessBWNegative},
	{"Ilford", "Delta 3200", 3200, entities.FilmTypeBWNegative, entities.FilmProcessBWNegative},
	{"Ilford", "XP2 Super 400", 400, entities.FilmTypeChromogenicBW, entities.FilmProcessC41},
	{"Ilford", "SFX 200", 200, entities.FilmTypeBWNegative, entities.FilmProcessBWNegative},
	{"Ilford", "Kentmere 100", 100, entities.FilmTypeBWNegative, entities.FilmProcessBWNegative},
	{"Ilford", "Kentmere 400", 400, entities.FilmTypeBWNegative, entities.FilmProcessBWNegative},
	{"Fujifilm", "Fujicolor C200", 200, entities.FilmTypeColorNegative, entities.FilmProcessC41},
	{"Fujifilm", "Superia X-TRA 400", 400, entities.FilmTypeColorNegative, entities.FilmProcessC41},
	{"Fujifilm", "Velvia 50", 50, entities.FilmTypeColorReversal, entities.FilmProcessE6},
	{"Fujifilm", "Velvia 100", 100, entities.FilmTypeColorReversal, entities.FilmProcessE6},
	{"Fujifilm", "Provia 100F", 100, entities.FilmTypeColorReversal, entities.FilmProcessE6},
	{"Fujifilm", "Neopan Acros 100 II", 100, entities.FilmTypeBWNegative, entities.FilmProcessBWNegative},
	{"Fujifilm", "Instax Mini", 800, entities.FilmTypeInstant, entities.FilmProcessInstant},
	{"Foma", "Fomapan 100 Classic", 100, entities.FilmTypeBWNegative, entities.FilmProcessBWNegative},
	{"Foma", "Fomapan 200 Creative", 200, entities.FilmTypeBWNegative, entities.FilmProcessBWNegative},
	{"Foma", "Fomapan 400 Action", 400, entities.FilmTypeBWNegative, entities.FilmProcessBWNegative},
	{"Foma", "Fomapan R 100", 100, entities.FilmTypeBWReversal, entities.FilmProcessBWReversal},
	{"CineStill", "800T", 800, entities.FilmTypeColorNegative, entities.FilmProcessC41},
	{"CineStill", "50D", 50, entities.FilmTypeColorNegative, entities.FilmProcessC41},
	{"Lomography", "Color Negative 400", 400, entities.FilmTypeColorNegative, entities.FilmProcessC41},
	{"Rollei", "Retro 400S", 400, entities.FilmTypeBWNegative, entities.FilmProcessBWNegative},
	{"Polaroid", "600 Color", 640, entities.FilmTypeInstant, entities.FilmProcessInstant},
}

// PreaddedFilmStocks returns the film stocks bundled with the application.
func PreaddedFilmStocks() []entities.FilmStock {
	stocks := make([]entities.FilmStock, 0, len(bundledFilmStocks))
	for _, s := range bundledFilmStocks {
		stocks = append(stocks, entities.FilmStock{
			Make:     s.make,
			Model:    s.model,
			ISO:      s.iso,
			Type:     s.filmType,
			Process:  s.process,
			Preadded: true,
		})
	}
	return stocks
}
