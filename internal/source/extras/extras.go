// Package extras reads the secondary finanzas record.
package extras

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"bcrawatch/config"
	"bcrawatch/internal/catalog"
	"bcrawatch/internal/model"
	"bcrawatch/internal/source"
	"bcrawatch/logger"
)

const sourceName = "extras"

// Field names of the upstream record.
const (
	FieldGovernmentDeposits = "depositosBCRA"
	FieldLefiBCRA           = "lefiBCRA"
	FieldLefiBanks          = "lefiBancos"
	FieldBopreal            = "bopreal"
	FieldReserves           = "reservasBCRA"
	FieldBoprealLabel       = "boprealDato"
	FieldDepositsAsOf       = "lefiDepositosDato"
	FieldReservesAsOf       = "reservasBCRADato"
)

type Client struct {
	url  string
	http *resty.Client
	log  *logger.Log
}

func New(cfg config.EndpointConfig, userAgent string, log *logger.Log) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	url := cfg.URL
	if url == "" {
		url = config.DefaultExtrasURL
	}
	return &Client{
		url:  url,
		http: source.NewClient(source.ClientConfig{Timeout: cfg.Timeout, UserAgent: userAgent}),
		log:  log,
	}
}

// Fetch returns the current record. The endpoint has served both a single
// object and an array of records; for arrays the last element wins and an
// empty array yields a record with every field missing.
func (c *Client) Fetch(ctx context.Context) (model.RawExtra, error) {
	body, err := source.GetJSON(ctx, c.http, sourceName, c.url)
	if err != nil {
		return model.RawExtra{}, err
	}

	extra, err := Parse(body)
	if err != nil {
		return model.RawExtra{}, source.DecodeError(sourceName, err)
	}

	c.log.WithComponent("extras_source").WithFields(logger.Fields{
		"values": len(extra.Values),
		"labels": len(extra.Labels),
	}).Debug("fetched extras record")
	return extra, nil
}

// Parse decodes an extras payload.
func Parse(body []byte) (model.RawExtra, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return model.RawExtra{}, fmt.Errorf("empty body")
	}

	var fields map[string]json.RawMessage
	switch body[0] {
	case '[':
		var records []map[string]json.RawMessage
		if err := json.Unmarshal(body, &records); err != nil {
			return model.RawExtra{}, err
		}
		if len(records) == 0 {
			return model.RawExtra{}, nil
		}
		fields = records[len(records)-1]
	case '{':
		if err := json.Unmarshal(body, &fields); err != nil {
			return model.RawExtra{}, err
		}
	default:
		return model.RawExtra{}, fmt.Errorf("unexpected payload starting with %q", body[0])
	}

	return fromFields(fields), nil
}

func fromFields(fields map[string]json.RawMessage) model.RawExtra {
	extra := model.RawExtra{
		Values: make(map[string]decimal.NullDecimal, len(fields)),
		Labels: make(map[string]string),
	}
	for name, raw := range fields {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			continue
		}
		switch {
		case bytes.Equal(raw, []byte("null")):
			extra.Values[name] = decimal.NullDecimal{}
		case raw[0] == '"':
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				extra.Labels[name] = s
			}
		case raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9'):
			d, err := decimal.NewFromString(string(raw))
			if err == nil {
				extra.Values[name] = decimal.NewNullDecimal(d)
			}
		}
	}
	return extra
}

// ToExtras maps a raw record to its typed view. Missing or null fields stay
// invalid; unparsable dates are left zero.
func ToExtras(raw model.RawExtra) model.Extras {
	return model.Extras{
		GovernmentDeposits: raw.Value(FieldGovernmentDeposits),
		LefiBCRA:           raw.Value(FieldLefiBCRA),
		LefiBanks:          raw.Value(FieldLefiBanks),
		Bopreal:            raw.Value(FieldBopreal),
		Reserves:           raw.Value(FieldReserves),
		BoprealLabel:       raw.Label(FieldBoprealLabel),
		DepositsAsOf:       parseOptionalDate(raw.Label(FieldDepositsAsOf)),
		ReservesAsOf:       parseOptionalDate(raw.Label(FieldReservesAsOf)),
	}
}

func parseOptionalDate(s string) (t time.Time) {
	if s == "" {
		return t
	}
	t, _ = catalog.ParseDate(s)
	return t
}
