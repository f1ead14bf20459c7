// Package sitelist reads the analyst's WAP list files.
package sitelist

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/gosimple/slug"
)

// Read loads a WAP list CSV: one site per row, first column, blank rows
// skipped. The file has no header.
func Read(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open WAP list: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read WAP list: %w", err)
	}

	var sites []string
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		site := strings.TrimSpace(row[0])
		if site == "" {
			continue
		}
		sites = append(sites, site)
	}
	if len(sites) == 0 {
		return nil, fmt.Errorf("WAP list %s contains no sites", path)
	}
	return sites, nil
}

// FileSlug renders a site identifier safe for use in output filenames.
// WAP identifiers carry slashes ("BY20/0042") that cannot appear in paths.
func FileSlug(site string) string {
	return slug.Make(site)
}
