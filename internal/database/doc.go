// Package database provides the data access layer for the logbook.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go        # Connection setup, migrations, film stock seeding
//	├── schema/            # Table and column names
//	├── cameras/           # Cameras, fixed lenses removed with their camera
//	├── lenses/            # Interchangeable lenses
//	├── filters/           # Filters
//	├── filmstocks/        # Film stocks
//	├── rolls/             # Rolls with their labels and filter modes
//	├── frames/            # Frames with their filters
//	├── labels/            # Roll labels
//	└── links/             # Camera-lens, lens-filter, frame-filter, roll-label links
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./exif_notes.db", logger)
//
//	camerasRepo := cameras.NewRepository(db.DB)
//	rollsRepo := rolls.NewRepository(db.DB)
//
//	camera, err := camerasRepo.GetCamera(1) // nil, nil when missing
//	list, err := rollsRepo.GetRolls(rolls.RollFilter{Mode: rolls.FilterActive})
//
// Update methods report the number of affected rows, so updating a missing
// ID returns 0 without an error. Upsert methods insert or overwrite in one
// statement.
//
// # Adding a New Domain
//
//  1. Create a new sub-package under internal/database/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Register the entity in entities.All so it is migrated
package database
