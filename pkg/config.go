package phconvert

type Configuration struct {
	MaxRecords       int    `json:"max_records" mapstructure:"max_records"`
	Verbosity        int    `json:"verbosity" mapstructure:"verbosity"`
	FileIn           string `json:"file_in" mapstructure:"file_in"`
	FileOut          string `json:"file_out" mapstructure:"file_out"`
	KeepOverflow     bool   `json:"keep_overflow" mapstructure:"keep_overflow"`
	DropInvalidUser  bool   `json:"drop_invalid_user" mapstructure:"drop_invalid_user"`
	Strict           bool   `json:"strict" mapstructure:"strict"`
	NumWorkers       int    `json:"num_workers" mapstructure:"num_workers"`
	CompressionLevel int    `json:"compression_level" mapstructure:"compression_level"`

	// Catalog connection. Driver is "sqlite3" or "mysql".
	CatalogDriver string `json:"catalog_driver" mapstructure:"catalog_driver"`
	CatalogDSN    string `json:"catalog_dsn" mapstructure:"catalog_dsn"`
	SetupName     string `json:"setup_name" mapstructure:"setup_name"`

	// Descriptive metadata attached to the output file.
	Description       string `json:"description" mapstructure:"description"`
	Comment           string `json:"comment" mapstructure:"comment"`
	Author            string `json:"author" mapstructure:"author"`
	AuthorAffiliation string `json:"author_affiliation" mapstructure:"author_affiliation"`
	SampleName        string `json:"sample_name" mapstructure:"sample_name"`
	DyeNames          string `json:"dye_names" mapstructure:"dye_names"`
	BufferName        string `json:"buffer_name" mapstructure:"buffer_name"`
	NumDyes           int64  `json:"num_dyes" mapstructure:"num_dyes"`

	// Instrument setup, either filled inline or loaded from the catalog
	// when SetupName is set.
	Setup SetupPreset `json:"setup" mapstructure:"setup"`
}

// DefaultConfiguration mirrors the values a bare conversion needs. The CLI
// overlays config file, environment and flags on top of it.
func DefaultConfiguration() Configuration {
	return Configuration{
		MaxRecords:       0,
		Verbosity:        0,
		NumWorkers:       1,
		CompressionLevel: 6,
		CatalogDriver:    "sqlite3",
		NumDyes:          2,
		Setup:            DefaultSetup(),
	}
}

var configuration = DefaultConfiguration()

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}
