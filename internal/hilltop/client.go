// Package hilltop is a thin client for a Hilltop-style time-series web
// service. It owns no cleaning logic: it fetches measurement lists and raw
// readings and maps the service's error conventions onto the typed errors
// the extraction layer recovers from.
package hilltop

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Data-to-Knowledge/WaterUseQA/internal/wateruse"
)

const (
	timeLayout = "2006-01-02T15:04:05"
	dateLayout = "2006-01-02"
)

// Client calls the Hilltop web service for one .hts file.
type Client struct {
	baseURL string
	hts     string
	httpc   *http.Client
	logger  *slog.Logger
}

// NewClient creates a client for the service at baseURL serving the given
// .hts file.
func NewClient(baseURL, hts string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hts:     hts,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type measurementListResponse struct {
	XMLName     xml.Name `xml:"HilltopServer"`
	Error       string   `xml:"Error"`
	DataSources []struct {
		Name         string `xml:"Name,attr"`
		From         string `xml:"From"`
		To           string `xml:"To"`
		Measurements []struct {
			Name string `xml:"Name,attr"`
		} `xml:"Measurement"`
	} `xml:"DataSource"`
}

type getDataResponse struct {
	XMLName     xml.Name `xml:"Hilltop"`
	Error       string   `xml:"Error"`
	Measurement struct {
		Data struct {
			Events []struct {
				T  string `xml:"T"`
				I1 string `xml:"I1"`
			} `xml:"E"`
		} `xml:"Data"`
	} `xml:"Measurement"`
}

// MeasurementList returns every measurement series the service holds for the
// site, with the availability range recorded per data source.
func (c *Client) MeasurementList(ctx context.Context, site string) ([]wateruse.MeasurementInfo, error) {
	params := url.Values{
		"Service": {"Hilltop"},
		"Request": {"MeasurementList"},
		"Site":    {site},
	}
	var resp measurementListResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("measurement list for %s: %s: %w", site, resp.Error, wateruse.ErrSiteNotFound)
	}

	var list []wateruse.MeasurementInfo
	for _, ds := range resp.DataSources {
		from, _ := time.Parse(timeLayout, ds.From)
		to, _ := time.Parse(timeLayout, ds.To)
		for _, m := range ds.Measurements {
			list = append(list, wateruse.MeasurementInfo{Name: m.Name, From: from, To: to})
		}
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("no measurements for %s: %w", site, wateruse.ErrSiteNotFound)
	}
	return list, nil
}

// Readings returns the raw observations for one site and measurement over
// the inclusive date range. Measurement and Kind are left for the caller to
// assign; the service reports only timestamp and value.
func (c *Client) Readings(ctx context.Context, site, measurement string, from, to time.Time) ([]wateruse.Reading, error) {
	params := url.Values{
		"Service":     {"Hilltop"},
		"Request":     {"GetData"},
		"Site":        {site},
		"Measurement": {measurement},
		"From":        {from.Format(dateLayout)},
		"To":          {to.Format(dateLayout)},
	}
	var resp getDataResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		if strings.Contains(strings.ToLower(resp.Error), "no data") {
			return nil, fmt.Errorf("%s %q %s..%s: %w",
				site, measurement, from.Format(dateLayout), to.Format(dateLayout), wateruse.ErrNoData)
		}
		return nil, fmt.Errorf("get data for %s %q: service error: %s", site, measurement, resp.Error)
	}

	events := resp.Measurement.Data.Events
	if len(events) == 0 {
		return nil, fmt.Errorf("%s %q: empty response: %w", site, measurement, wateruse.ErrNoData)
	}

	readings := make([]wateruse.Reading, 0, len(events))
	for _, e := range events {
		ts, err := time.Parse(timeLayout, e.T)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", e.T, err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(e.I1), 64)
		if err != nil {
			return nil, fmt.Errorf("parse value %q at %s: %w", e.I1, e.T, err)
		}
		readings = append(readings, wateruse.Reading{Time: ts, Value: v})
	}
	return readings, nil
}

// get performs one service request and decodes the XML payload into out.
func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, c.hts, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("hilltop service unreachable: %w", err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "hilltop request",
		"request", params.Get("Request"),
		"site", params.Get("Site"),
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("hilltop service returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := xml.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
