// Package schema holds the table and column names of the logbook database.
//
// Entity structs carry the same names in their gorm tags; repositories use
// these constants whenever they build SQL by hand (link tables, guarded
// inserts, joins and in-use checks).
package schema

// Tables
const (
	TableCameras    = "cameras"
	TableLenses     = "lenses"
	TableFilters    = "filters"
	TableFilmStocks = "film_stocks"
	TableFrames     = "frames"
	TableRolls      = "rolls"
	TableLabels     = "labels"
	TableSettings   = "settings"

	TableCameraLens  = "link_camera_lens"
	TableLensFilter  = "link_lens_filter"
	TableFrameFilter = "link_frame_filter"
	TableRollLabel   = "link_roll_label"
)

// Cameras
const (
	ColCameraID               = "camera_id"
	ColCameraMake             = "camera_make"
	ColCameraModel            = "camera_model"
	ColCameraSerialNo         = "camera_serial_no"
	ColCameraMinShutter       = "camera_min_shutter"
	ColCameraMaxShutter       = "camera_max_shutter"
	ColCameraShutterIncrement = "shutter_increments"
	ColCameraExpCompIncrement = "exposure_comp_increments"
	ColCameraFormat           = "format"
	ColCameraLensID           = "lens_id"
)

// Lenses
const (
	ColLensID                = "lens_id"
	ColLensMake              = "lens_make"
	ColLensModel             = "lens_model"
	ColLensSerialNo          = "lens_serial_no"
	ColLensMinAperture       = "lens_min_aperture"
	ColLensMaxAperture       = "lens_max_aperture"
	ColLensMinFocalLength    = "lens_min_focal_length"
	ColLensMaxFocalLength    = "lens_max_focal_length"
	ColLensApertureIncrement = "aperture_increments"
	ColLensCustomApertures   = "custom_aperture_values"
)

// Filters
const (
	ColFilterID    = "filter_id"
	ColFilterMake  = "filter_make"
	ColFilterModel = "filter_model"
)

// Film stocks
const (
	ColFilmStockID       = "film_stock_id"
	ColFilmStockMake     = "film_manufacturer_name"
	ColFilmStockModel    = "film_stock_name"
	ColFilmStockISO      = "film_iso"
	ColFilmStockType     = "film_type"
	ColFilmStockProcess  = "film_process"
	ColFilmStockPreadded = "film_is_preadded"
)

// Frames
const (
	ColFrameID               = "frame_id"
	ColFrameRollID           = "roll_id"
	ColFrameCount            = "count"
	ColFrameDate             = "date"
	ColFrameShutter          = "shutter"
	ColFrameAperture         = "aperture"
	ColFrameLensID           = "lens_id"
	ColFrameNote             = "frame_note"
	ColFrameFocalLength      = "focal_length"
	ColFrameExposureComp     = "exposure_comp"
	ColFrameNoOfExposures    = "no_of_exposures"
	ColFrameFlashUsed        = "flash_used"
	ColFrameFlashPower       = "flash_power"
	ColFrameFlashComp        = "flash_comp"
	ColFrameMeteringMode     = "metering_mode"
	ColFrameLatitude         = "latitude"
	ColFrameLongitude        = "longitude"
	ColFrameFormattedAddress = "formatted_address"
	ColFramePictureFilename  = "picture_filename"
	ColFrameLightSource      = "light_source"
)

// Rolls
const (
	ColRollID          = "roll_id"
	ColRollName        = "rollname"
	ColRollDate        = "roll_date"
	ColRollUnloaded    = "roll_unloaded"
	ColRollDeveloped   = "roll_developed"
	ColRollNote        = "roll_note"
	ColRollCameraID    = "camera_id"
	ColRollISO         = "roll_iso"
	ColRollPushPull    = "roll_push"
	ColRollFormat      = "roll_format"
	ColRollArchived    = "roll_archived"
	ColRollFavorite    = "roll_favorite"
	ColRollFilmStockID = "film_stock_id"
)

// Labels
const (
	ColLabelID   = "label_id"
	ColLabelName = "label_name"
)

// Settings
const (
	ColSettingKey   = "setting_key"
	ColSettingValue = "setting_value"

	// SettingFilmStocksSeeded is present once the bundled film stocks have
	// been inserted.
	SettingFilmStocksSeeded = "film_stocks_seeded"
)
