package phconvert

import (
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	sqlx "github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// SetupPreset holds the per-instrument constants a conversion needs:
// detector channel assignment, alternation period windows and optical
// parameters. Presets are stored in the catalog and fetched by name, or
// filled inline in the configuration file.
type SetupPreset struct {
	Name                 string  `db:"name" json:"name" mapstructure:"name"`
	SpectralCh1          int64   `db:"spectral_ch1" json:"spectral_ch1" mapstructure:"spectral_ch1"`
	SpectralCh2          int64   `db:"spectral_ch2" json:"spectral_ch2" mapstructure:"spectral_ch2"`
	DonorStart           int64   `db:"donor_start" json:"donor_start" mapstructure:"donor_start"`
	DonorStop            int64   `db:"donor_stop" json:"donor_stop" mapstructure:"donor_stop"`
	AcceptorStart        int64   `db:"acceptor_start" json:"acceptor_start" mapstructure:"acceptor_start"`
	AcceptorStop         int64   `db:"acceptor_stop" json:"acceptor_stop" mapstructure:"acceptor_stop"`
	AlexPeriod           int64   `db:"alex_period" json:"alex_period" mapstructure:"alex_period"`
	LaserPulseRate       float64 `db:"laser_pulse_rate" json:"laser_pulse_rate" mapstructure:"laser_pulse_rate"`
	ExcitationWl1        float64 `db:"excitation_wl1" json:"excitation_wl1" mapstructure:"excitation_wl1"`
	ExcitationWl2        float64 `db:"excitation_wl2" json:"excitation_wl2" mapstructure:"excitation_wl2"`
	DetectionWl1         float64 `db:"detection_wl1" json:"detection_wl1" mapstructure:"detection_wl1"`
	DetectionWl2         float64 `db:"detection_wl2" json:"detection_wl2" mapstructure:"detection_wl2"`
	NumPixels            int64   `db:"num_pixels" json:"num_pixels" mapstructure:"num_pixels"`
	NumSpots             int64   `db:"num_spots" json:"num_spots" mapstructure:"num_spots"`
	NumSpectralCh        int64   `db:"num_spectral_ch" json:"num_spectral_ch" mapstructure:"num_spectral_ch"`
	NumPolarizationCh    int64   `db:"num_polarization_ch" json:"num_polarization_ch" mapstructure:"num_polarization_ch"`
	NumSplitCh           int64   `db:"num_split_ch" json:"num_split_ch" mapstructure:"num_split_ch"`
	ModulatedExcitation  bool    `db:"modulated_excitation" json:"modulated_excitation" mapstructure:"modulated_excitation"`
	Lifetime             bool    `db:"lifetime" json:"lifetime" mapstructure:"lifetime"`
	MeasurementType      string  `db:"measurement_type" json:"measurement_type" mapstructure:"measurement_type"`
}

// DefaultSetup is a two-channel nsALEX confocal setup, the configuration the
// PicoHarp router is most commonly wired for.
func DefaultSetup() SetupPreset {
	return SetupPreset{
		Name:                "default",
		SpectralCh1:         1,
		SpectralCh2:         2,
		DonorStart:          150,
		DonorStop:           1500,
		AcceptorStart:       1540,
		AcceptorStop:        3000,
		LaserPulseRate:      40e6,
		ExcitationWl1:       532e-9,
		ExcitationWl2:       635e-9,
		DetectionWl1:        580e-9,
		DetectionWl2:        680e-9,
		NumPixels:           2,
		NumSpots:            1,
		NumSpectralCh:       2,
		NumPolarizationCh:   1,
		NumSplitCh:          1,
		ModulatedExcitation: true,
		Lifetime:            true,
		MeasurementType:     "smFRET-nsALEX",
	}
}

// ConversionEntry is one row of the conversion log.
type ConversionEntry struct {
	ID        string    `db:"id"`
	FileIn    string    `db:"file_in"`
	FileOut   string    `db:"file_out"`
	Photons   int64     `db:"photons"`
	Dropped   int64     `db:"dropped"`
	SetupName string    `db:"setup_name"`
	CreatedAt time.Time `db:"created_at"`
}

// Catalog stores setup presets and the conversion log. It runs on a local
// sqlite3 file or on a shared mysql server, selected in the configuration.
type Catalog struct {
	db     *sqlx.DB
	driver string
}

const catalogSchema = `
CREATE TABLE IF NOT EXISTS setups (
	name                 VARCHAR(64) PRIMARY KEY,
	spectral_ch1         BIGINT NOT NULL,
	spectral_ch2         BIGINT NOT NULL,
	donor_start          BIGINT NOT NULL DEFAULT 0,
	donor_stop           BIGINT NOT NULL DEFAULT 0,
	acceptor_start       BIGINT NOT NULL DEFAULT 0,
	acceptor_stop        BIGINT NOT NULL DEFAULT 0,
	alex_period          BIGINT NOT NULL DEFAULT 0,
	laser_pulse_rate     DOUBLE PRECISION NOT NULL DEFAULT 0,
	excitation_wl1       DOUBLE PRECISION NOT NULL DEFAULT 0,
	excitation_wl2       DOUBLE PRECISION NOT NULL DEFAULT 0,
	detection_wl1        DOUBLE PRECISION NOT NULL DEFAULT 0,
	detection_wl2        DOUBLE PRECISION NOT NULL DEFAULT 0,
	num_pixels           BIGINT NOT NULL DEFAULT 2,
	num_spots            BIGINT NOT NULL DEFAULT 1,
	num_spectral_ch      BIGINT NOT NULL DEFAULT 2,
	num_polarization_ch  BIGINT NOT NULL DEFAULT 1,
	num_split_ch         BIGINT NOT NULL DEFAULT 1,
	modulated_excitation BOOLEAN NOT NULL DEFAULT TRUE,
	lifetime             BOOLEAN NOT NULL DEFAULT TRUE,
	measurement_type     VARCHAR(32) NOT NULL DEFAULT 'smFRET-nsALEX'
);
CREATE TABLE IF NOT EXISTS conversions (
	id         VARCHAR(36) PRIMARY KEY,
	file_in    TEXT NOT NULL,
	file_out   TEXT NOT NULL,
	photons    BIGINT NOT NULL,
	dropped    BIGINT NOT NULL,
	setup_name VARCHAR(64) NOT NULL,
	created_at TIMESTAMP NOT NULL
);
`

// OpenCatalog connects to the catalog database. For sqlite3 the schema is
// created on first use; a shared mysql catalog is expected to be provisioned
// already.
func OpenCatalog(driver string, dsn string) (*Catalog, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error connecting to catalog: %w", err)
	}
	c := &Catalog{db: db, driver: driver}
	if driver == "sqlite3" {
		if _, err := db.Exec(catalogSchema); err != nil {
			db.Close()
			return nil, fmt.Errorf("error creating catalog schema: %w", err)
		}
	}
	return c, nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

// GetSetup fetches one preset by name.
func (c *Catalog) GetSetup(name string) (SetupPreset, error) {
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Reading setup preset %q from catalog", name), "catalog")
	}
	rows, err := c.db.Queryx("SELECT * FROM setups WHERE name = ?", name)
	if err != nil {
		return SetupPreset{}, fmt.Errorf("error querying catalog: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return SetupPreset{}, fmt.Errorf("setup preset %q not found in catalog", name)
	}
	var preset SetupPreset
	if err := rows.StructScan(&preset); err != nil {
		return SetupPreset{}, fmt.Errorf("error scanning catalog row: %w", err)
	}
	return preset, nil
}

// ListSetups returns every preset, ordered by name.
func (c *Catalog) ListSetups() ([]SetupPreset, error) {
	rows, err := c.db.Queryx("SELECT * FROM setups ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("error querying catalog: %w", err)
	}
	defer rows.Close()

	var presets []SetupPreset
	for rows.Next() {
		var preset SetupPreset
		if err := rows.StructScan(&preset); err != nil {
			return nil, fmt.Errorf("error scanning catalog row: %w", err)
		}
		presets = append(presets, preset)
	}
	return presets, rows.Err()
}

// SaveSetup inserts or replaces a preset.
func (c *Catalog) SaveSetup(preset SetupPreset) error {
	if preset.Name == "" {
		return fmt.Errorf("setup preset needs a name")
	}
	_, err := c.db.NamedExec(`REPLACE INTO setups (
		name, spectral_ch1, spectral_ch2,
		donor_start, donor_stop, acceptor_start, acceptor_stop,
		alex_period, laser_pulse_rate,
		excitation_wl1, excitation_wl2, detection_wl1, detection_wl2,
		num_pixels, num_spots, num_spectral_ch, num_polarization_ch, num_split_ch,
		modulated_excitation, lifetime, measurement_type
	) VALUES (
		:name, :spectral_ch1, :spectral_ch2,
		:donor_start, :donor_stop, :acceptor_start, :acceptor_stop,
		:alex_period, :laser_pulse_rate,
		:excitation_wl1, :excitation_wl2, :detection_wl1, :detection_wl2,
		:num_pixels, :num_spots, :num_spectral_ch, :num_polarization_ch, :num_split_ch,
		:modulated_excitation, :lifetime, :measurement_type
	)`, preset)
	if err != nil {
		return fmt.Errorf("error saving setup preset: %w", err)
	}
	return nil
}

// LogConversion appends one row to the conversion log and returns its id.
func (c *Catalog) LogConversion(entry ConversionEntry) (string, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := c.db.NamedExec(`INSERT INTO conversions (
		id, file_in, file_out, photons, dropped, setup_name, created_at
	) VALUES (
		:id, :file_in, :file_out, :photons, :dropped, :setup_name, :created_at
	)`, entry)
	if err != nil {
		return "", fmt.Errorf("error logging conversion: %w", err)
	}
	return entry.ID, nil
}

// ListConversions returns the conversion log, newest first.
func (c *Catalog) ListConversions() ([]ConversionEntry, error) {
	rows, err := c.db.Queryx("SELECT * FROM conversions ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("error querying conversion log: %w", err)
	}
	defer rows.Close()

	var entries []ConversionEntry
	for rows.Next() {
		var entry ConversionEntry
		if err := rows.StructScan(&entry); err != nil {
			return nil, fmt.Errorf("error scanning conversion row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
