// Package dolar reads the CriptoYa dollar board.
package dolar

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"bcrawatch/config"
	"bcrawatch/internal/model"
	"bcrawatch/internal/source"
	"bcrawatch/logger"
)

const sourceName = "dolar"

// Surcharges applied to the official rate.
var (
	CardSurcharge     = decimal.RequireFromString("0.60")
	ImporterSurcharge = decimal.RequireFromString("0.175")
)

// instrument maps a dotted path of the payload to a board entry.
type instrument struct {
	name string
	path string
}

var instruments = []instrument{
	{name: "Mayorista", path: "mayorista"},
	{name: "Oficial", path: "oficial"},
	{name: "Blue", path: "blue"},
	{name: "MEP", path: "mep.al30.ci"},
	{name: "CCL", path: "ccl.al30.ci"},
	{name: "Cripto USDT", path: "cripto.usdt"},
}

const OfficialQuote = "Oficial"

type quotePayload struct {
	Price     decimal.NullDecimal `json:"price"`
	Ask       decimal.NullDecimal `json:"ask"`
	Bid       decimal.NullDecimal `json:"bid"`
	Variation decimal.NullDecimal `json:"variation"`
	Timestamp decimal.NullDecimal `json:"timestamp"`
}

type Client struct {
	url  string
	http *resty.Client
	log  *logger.Log
	now  func() time.Time
}

func New(cfg config.EndpointConfig, userAgent string, log *logger.Log) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	url := cfg.URL
	if url == "" {
		url = config.DefaultDolarURL
	}
	return &Client{
		url:  url,
		http: source.NewClient(source.ClientConfig{Timeout: cfg.Timeout, UserAgent: userAgent}),
		log:  log,
		now:  time.Now,
	}
}

// Board returns every instrument of the board. Instruments missing from the
// payload are listed with unavailable values.
func (c *Client) Board(ctx context.Context) (model.QuoteBoard, error) {
	body, err := source.GetJSON(ctx, c.http, sourceName, c.url)
	if err != nil {
		return model.QuoteBoard{}, err
	}

	log := c.log.WithComponent("dolar_source")
	board, err := parseBoard(body, func(name string, err error) {
		log.WithError(err).WithFields(logger.Fields{"quote": name}).Debug("unreadable quote; listing as unavailable")
	})
	if err != nil {
		return model.QuoteBoard{}, err
	}
	board.FetchedAt = c.now()

	log.WithFields(logger.Fields{
		"quotes": len(board.Quotes),
	}).Debug("fetched dollar board")
	return board, nil
}

// ParseBoard decodes a board payload and derives the card and importer rates.
// An instrument whose entry cannot be decoded is listed as unavailable.
func ParseBoard(body []byte) (model.QuoteBoard, error) {
	return parseBoard(body, nil)
}

func parseBoard(body []byte, unreadable func(name string, err error)) (model.QuoteBoard, error) {
	var root map[string]json.RawMessage
	if err := source.Decode(sourceName, body, &root); err != nil {
		return model.QuoteBoard{}, err
	}

	board := model.QuoteBoard{Quotes: make([]model.Quote, 0, len(instruments))}
	for _, inst := range instruments {
		q := model.Quote{Name: inst.name}
		if raw, ok := lookup(root, inst.path); ok {
			var p quotePayload
			if err := json.Unmarshal(raw, &p); err != nil {
				if unreadable != nil {
					unreadable(inst.name, err)
				}
			} else {
				q.Price, q.Ask, q.Bid, q.Variation = p.Price, p.Ask, p.Bid, p.Variation
				q.Timestamp = unixTime(p.Timestamp)
			}
		}
		board.Quotes = append(board.Quotes, q)
	}

	if official, ok := board.Quote(OfficialQuote); ok && official.Price.Valid {
		base := official.Price.Decimal
		board.CardRate = decimal.NewNullDecimal(base.Add(base.Mul(CardSurcharge)))
		board.ImporterRate = decimal.NewNullDecimal(base.Add(base.Mul(ImporterSurcharge)).Truncate(0))
	}
	return board, nil
}

// unixTime converts seconds since the epoch, fractional or not, to UTC.
func unixTime(sec decimal.NullDecimal) time.Time {
	if !sec.Valid {
		return time.Time{}
	}
	whole := sec.Decimal.Truncate(0)
	nanos := sec.Decimal.Sub(whole).Shift(9).IntPart()
	return time.Unix(whole.IntPart(), nanos).UTC()
}

func lookup(root map[string]json.RawMessage, path string) (json.RawMessage, bool) {
	parts := strings.Split(path, ".")
	node := root
	for i, part := range parts {
		raw, ok := node[part]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return raw, true
		}
		node = nil
		if err := json.Unmarshal(raw, &node); err != nil || node == nil {
			return nil, false
		}
	}
	return nil, false
}
