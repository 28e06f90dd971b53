// Package bcra reads the BCRA statistics API (estadisticas v2.0).
package bcra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"bcrawatch/config"
	"bcrawatch/internal/model"
	"bcrawatch/internal/source"
	"bcrawatch/logger"
)

const sourceName = "bcra"

type response struct {
	Status  int               `json:"status"`
	Results []model.RawRecord `json:"results"`
}

// Client reads principal variables and per-variable series.
type Client struct {
	baseURL string
	http    *resty.Client
	limiter *rate.Limiter
	log     *logger.Log
}

// New builds a client from the bcra section of the configuration.
func New(cfg config.BCRASourceConfig, userAgent string, log *logger.Log) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	rps := cfg.SeriesRatePerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.SeriesBurst
	if burst <= 0 {
		burst = 1
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultBCRABaseURL
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    source.NewClient(source.ClientConfig{Timeout: cfg.Timeout, UserAgent: userAgent}),
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		log:     log,
	}
}

// PrincipalVariables returns the latest value of every published variable.
func (c *Client) PrincipalVariables(ctx context.Context) ([]model.RawRecord, error) {
	url := c.baseURL + "/estadisticas/v2.0/principalesvariables"
	records, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	c.log.WithComponent("bcra_source").WithFields(logger.Fields{
		"records": len(records),
	}).Debug("fetched principal variables")
	return records, nil
}

// VariableSeries returns the observations of id between from and to, both
// inclusive calendar dates. Calls are throttled by the series rate limit.
func (c *Client) VariableSeries(ctx context.Context, id int, from, to time.Time) ([]model.RawRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, source.TransportError(sourceName, err)
	}

	url := fmt.Sprintf("%s/estadisticas/v2.0/datosvariable/%d/%s/%s",
		c.baseURL, id, from.Format(model.DateLayout), to.Format(model.DateLayout))

	start := time.Now()
	records, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	logger.LogPerformanceEntry(c.log.WithComponent("bcra_source"), "bcra_source", "variable_series", time.Since(start), logger.Fields{
		"variable_id": id,
		"points":      len(records),
	})
	return records, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]model.RawRecord, error) {
	body, err := source.GetJSON(ctx, c.http, sourceName, url)
	if err != nil {
		return nil, err
	}

	var resp response
	if err := source.Decode(sourceName, body, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return nil, source.DecodeError(sourceName, fmt.Errorf("response has no results field"))
	}
	return resp.Results, nil
}
