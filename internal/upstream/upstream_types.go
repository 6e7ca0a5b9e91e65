package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// restCountry mirrors the restcountries v3.1 fields the service asks for.
// Every field is optional; absent values decode to zero.
type restCountry struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	Capital     []string  `json:"capital"`
	Population  int64     `json:"population"`
	LatLng      []float64 `json:"latlng"`
	CapitalInfo struct {
		LatLng []float64 `json:"latlng"`
	} `json:"capitalInfo"`
	Flags struct {
		PNG string `json:"png"`
		SVG string `json:"svg"`
	} `json:"flags"`
	Currencies orderedCurrencies `json:"currencies"`
	Languages  map[string]string `json:"languages"`
	Car        struct {
		Side string `json:"side"`
	} `json:"car"`
	Maps struct {
		GoogleMaps string `json:"googleMaps"`
	} `json:"maps"`
}

func (c restCountry) capital() string {
	if len(c.Capital) == 0 {
		return ""
	}
	return c.Capital[0]
}

func (c restCountry) position() (lat, lng float64) {
	return pair(c.LatLng)
}

func (c restCountry) capitalPosition() (lat, lng float64) {
	return pair(c.CapitalInfo.LatLng)
}

func pair(values []float64) (float64, float64) {
	var a, b float64
	if len(values) > 0 {
		a = values[0]
	}
	if len(values) > 1 {
		b = values[1]
	}
	return a, b
}

type currency struct {
	Code   string `json:"-"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// orderedCurrencies keeps the currencies object in document order so that
// "the first currency" is stable across decodes.
type orderedCurrencies []currency

func (o *orderedCurrencies) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("currencies: expected object, got %v", tok)
	}
	var out orderedCurrencies
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("currencies: unexpected key %v", keyTok)
		}
		var cur currency
		if err := dec.Decode(&cur); err != nil {
			return fmt.Errorf("currencies[%s]: %w", key, err)
		}
		cur.Code = key
		out = append(out, cur)
	}
	*o = out
	return nil
}

func (o orderedCurrencies) first() currency {
	if len(o) == 0 {
		return currency{}
	}
	return o[0]
}

// sunResponse is the api.sunrise-sunset.org envelope.
type sunResponse struct {
	Results struct {
		Sunrise string `json:"sunrise"`
		Sunset  string `json:"sunset"`
	} `json:"results"`
	Status string `json:"status"`
}
