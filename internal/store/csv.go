package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/i474232898/weather-insight/internal/weather"
)

// Header is the fixed column header of the persisted table.
var Header = []string{"Timestamp", "City", "State", "Temperature (°C)", "Humidity (%)"}

// legacyHeader is the header of tables recorded in °F. Such tables are read as °C
// and rewritten under Header on the next upsert.
var legacyHeader = []string{"Timestamp", "City", "State", "Temperature (°F)", "Humidity (%)"}

// ErrHeaderMismatch is returned when the table's header is neither Header nor the °F layout.
// The file is left untouched.
var ErrHeaderMismatch = fmt.Errorf("%w: unrecognized table header", ErrIO)

// row is one table line. Lines that do not parse keep their raw fields so they
// survive rewrites; they never take part in deduplication.
type row struct {
	raw   []string
	obs   weather.Observation
	valid bool
}

// CSVStore persists observations in a single CSV table, rewriting the whole file on every upsert.
type CSVStore struct {
	mu   sync.Mutex
	path string
}

// NewCSVStore returns a store backed by the table at path. The file is created on first upsert.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the location of the backing table.
func (s *CSVStore) Path() string {
	return s.path
}

// Upsert writes obs, replacing the first row for the same location collected
// within weather.FreshWindow of obs, or appending a new row otherwise.
func (s *CSVStore) Upsert(obs weather.Observation) (weather.UpsertResult, error) {
	obs = weather.Normalize(obs)

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, exists, err := s.load()
	if err != nil {
		return 0, err
	}

	incoming := row{raw: encode(obs), obs: obs, valid: true}
	if !exists {
		if err := s.rewrite([]row{incoming}); err != nil {
			return 0, err
		}
		return weather.UpsertCreated, nil
	}

	result := weather.UpsertAppended
	replaced := false
	for i := range rows {
		if rows[i].valid && weather.Supersedes(rows[i].obs, obs) {
			rows[i] = incoming
			replaced = true
			break
		}
	}
	if replaced {
		result = weather.UpsertReplaced
	} else {
		rows = append(rows, incoming)
	}

	if err := s.rewrite(rows); err != nil {
		return 0, err
	}
	return result, nil
}

// All returns every parseable observation in table order.
func (s *CSVStore) All() ([]weather.Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, _, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]weather.Observation, 0, len(rows))
	for _, r := range rows {
		if r.valid {
			out = append(out, r.obs)
		}
	}
	return out, nil
}

// GetLatest returns the most recently collected observation for a location.
func (s *CSVStore) GetLatest(loc weather.Location) (weather.Observation, error) {
	all, err := s.All()
	if err != nil {
		return weather.Observation{}, err
	}
	return latest(all, loc)
}

// GetRange returns all observations for a location between from and to (inclusive).
func (s *CSVStore) GetRange(loc weather.Location, from, to time.Time) ([]weather.Observation, error) {
	all, err := s.All()
	if err != nil {
		return nil, err
	}
	return inRange(all, loc, from, to)
}

// load reads the table. exists is false when the file is missing or empty.
// Rows of a °F table are converted to °C.
func (s *CSVStore) load() ([]row, bool, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: open %s: %w", ErrIO, s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: read %s: %w", ErrIO, s.path, err)
	}
	units, err := headerUnits(header)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %q", err, s.path, strings.Join(header, ","))
	}

	var rows []row
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, false, fmt.Errorf("%w: read %s: %w", ErrIO, s.path, err)
		}
		obs, ok := decode(rec)
		if ok && units != weather.Metric {
			obs.TemperatureC = units.ToCelsius(obs.TemperatureC)
			rec = encode(obs)
		}
		rows = append(rows, row{raw: rec, obs: obs, valid: ok})
	}
	return rows, true, nil
}

// headerUnits reports the temperature unit a table header declares.
func headerUnits(header []string) (weather.Units, error) {
	switch {
	case sameHeader(header, Header):
		return weather.Metric, nil
	case sameHeader(header, legacyHeader):
		return weather.Imperial, nil
	default:
		return "", ErrHeaderMismatch
	}
}

func sameHeader(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if strings.TrimSpace(strings.TrimPrefix(got[i], "\ufeff")) != want[i] {
			return false
		}
	}
	return true
}

// rewrite replaces the table with header + rows via a temp file and rename.
// The table keeps its permissions; a new table is created 0644.
func (s *CSVStore) rewrite(rows []row) (err error) {
	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(s.path); statErr == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp table: %w", ErrIO, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err = w.Write(Header); err != nil {
		return fmt.Errorf("%w: write header: %w", ErrIO, err)
	}
	for _, r := range rows {
		if err = w.Write(r.raw); err != nil {
			return fmt.Errorf("%w: write row: %w", ErrIO, err)
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return fmt.Errorf("%w: flush table: %w", ErrIO, err)
	}
	if err = tmp.Chmod(mode); err != nil {
		return fmt.Errorf("%w: chmod table: %w", ErrIO, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w: sync table: %w", ErrIO, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: close table: %w", ErrIO, err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: replace %s: %w", ErrIO, s.path, err)
	}
	return nil
}

func encode(obs weather.Observation) []string {
	return []string{
		obs.CollectedAt.UTC().Format(weather.TimestampLayout),
		obs.City,
		obs.State,
		strconv.FormatFloat(obs.TemperatureC, 'f', -1, 64),
		strconv.FormatFloat(obs.HumidityPct, 'f', -1, 64),
	}
}

func decode(rec []string) (weather.Observation, bool) {
	if len(rec) < len(Header) {
		return weather.Observation{}, false
	}
	ts, err := time.ParseInLocation(weather.TimestampLayout, strings.TrimSpace(rec[0]), time.UTC)
	if err != nil {
		return weather.Observation{}, false
	}
	temp, err := strconv.ParseFloat(strings.TrimSpace(rec[3]), 64)
	if err != nil {
		return weather.Observation{}, false
	}
	hum, err := strconv.ParseFloat(strings.TrimSpace(rec[4]), 64)
	if err != nil {
		return weather.Observation{}, false
	}
	return weather.Observation{
		CollectedAt:  ts,
		City:         rec[1],
		State:        rec[2],
		TemperatureC: temp,
		HumidityPct:  hum,
	}, true
}
