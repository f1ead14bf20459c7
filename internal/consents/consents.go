// Package consents looks up resource-consent conditions for abstraction
// sites in the council data warehouse. The conditions feed reference lines
// and the rolling-mean window of the time-series plots; sites without
// consents run through the plain pipeline unchanged.
package consents

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// statusActive marks a consent currently in force.
const statusActive = "Issued - Active"

// Conditions summarises the consent limits that apply to one site.
type Conditions struct {
	// MaxRateLPS is the total consented take in litres per second.
	MaxRateLPS float64
	// MaxDailyVolumeM3 is the daily volume implied by the consented rate
	// (rate in L/s over a day is rate x 86.4 m3).
	MaxDailyVolumeM3 float64
	// MultiDayVolumeM3 is the consented volume over the return period.
	MultiDayVolumeM3 float64
	// ReturnPeriodDays is the multi-day averaging period.
	ReturnPeriodDays int
}

// Row is one consent record for a site.
type Row struct {
	ConsentID          string
	Status             string
	ToDate             time.Time
	RateLPS            float64
	MultiDayVolumeM3   float64
	MultiDayPeriodDays int
}

// Provider supplies consent conditions per site. A nil Conditions with a nil
// error means the site has no consent on record.
type Provider interface {
	Conditions(ctx context.Context, siteID string) (*Conditions, error)
}

// SiteID derives the consent lookup key from a WAP identifier: the portion
// before the first hyphen suffix.
func SiteID(site string) string {
	if i := strings.Index(site, "-"); i >= 0 {
		return site[:i]
	}
	return site
}

// Summarize folds a site's consent records into one set of conditions:
// rates and multi-day volumes sum across consents, the return period takes
// the maximum. Nil for an empty set.
func Summarize(rows []Row) *Conditions {
	if len(rows) == 0 {
		return nil
	}
	c := &Conditions{}
	for _, r := range rows {
		c.MaxRateLPS += r.RateLPS
		c.MultiDayVolumeM3 += r.MultiDayVolumeM3
		if r.MultiDayPeriodDays > c.ReturnPeriodDays {
			c.ReturnPeriodDays = r.MultiDayPeriodDays
		}
	}
	c.MaxDailyVolumeM3 = math.Round(c.MaxRateLPS*86.4*100) / 100
	return c
}

// Select picks the consent records that govern a site: the active ones, or
// when none are active, the records sharing the most recent end date.
func Select(rows []Row) []Row {
	var active []Row
	for _, r := range rows {
		if r.Status == statusActive {
			active = append(active, r)
		}
	}
	if len(active) > 0 {
		return active
	}

	var latest time.Time
	for _, r := range rows {
		if r.ToDate.After(latest) {
			latest = r.ToDate
		}
	}
	var recent []Row
	for _, r := range rows {
		if r.ToDate.Equal(latest) {
			recent = append(recent, r)
		}
	}
	return recent
}

// Store reads consent records from the warehouse.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open connects to the warehouse with the given DSN.
func Open(dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open warehouse connection: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close releases the warehouse connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Conditions implements Provider against the consent summary table.
func (s *Store) Conditions(ctx context.Context, siteID string) (*Conditions, error) {
	const query = `
		SELECT consent_id, consent_status, to_date,
		       consented_rate, consented_multi_day_volume, consented_multi_day_period
		FROM reporting.crc_act_site_summ
		WHERE ext_site_id = $1`

	dbRows, err := s.db.QueryContext(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("query consents for %s: %w", siteID, err)
	}
	defer dbRows.Close()

	var rows []Row
	for dbRows.Next() {
		var r Row
		if err := dbRows.Scan(&r.ConsentID, &r.Status, &r.ToDate,
			&r.RateLPS, &r.MultiDayVolumeM3, &r.MultiDayPeriodDays); err != nil {
			return nil, fmt.Errorf("scan consent row for %s: %w", siteID, err)
		}
		rows = append(rows, r)
	}
	if err := dbRows.Err(); err != nil {
		return nil, fmt.Errorf("read consents for %s: %w", siteID, err)
	}

	conditions := Summarize(Select(rows))
	if conditions == nil {
		s.logger.DebugContext(ctx, "no consents on record", "site_id", siteID)
	}
	return conditions, nil
}
