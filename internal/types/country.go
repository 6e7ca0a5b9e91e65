package types

// Country is one entry of the country catalogue.
type Country struct {
	Name       string  `json:"name"`
	Capital    string  `json:"capital"`
	Population int64   `json:"population"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// InSouthernHemisphere reports whether the country lies strictly south of the equator.
func (c Country) InSouthernHemisphere() bool {
	return c.Latitude < 0
}

// CountrySummary extends Country with the facts a traveller cares about.
// Latitude and Longitude hold the capital's coordinate.
type CountrySummary struct {
	Country
	Sunrise                      string  `json:"sunrise"`
	Sunset                       string  `json:"sunset"`
	TotalLanguages               int     `json:"totalLanguages"`
	DriveSide                    string  `json:"driveSide"`
	Currency                     string  `json:"currency"`
	CurrencyCode                 string  `json:"currencyCode"`
	FlagURL                      string  `json:"flagUrl"`
	MapURL                       string  `json:"mapUrl"`
	DistanceFromReferencePointKm float64 `json:"distanceFromReferencePointKm"`
}

// CapitalCoordinate is the position of a country's capital city.
type CapitalCoordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SunTimes holds UTC sunrise and sunset timestamps as returned upstream.
type SunTimes struct {
	Sunrise string `json:"sunrise"`
	Sunset  string `json:"sunset"`
}

// CountryDetail is the full detail payload of a single country lookup.
type CountryDetail struct {
	Name           string
	Capital        string
	Population     int64
	Latitude       float64
	Longitude      float64
	CapitalInfo    CapitalCoordinate
	FlagURL        string
	Currency       string
	CurrencyCode   string
	TotalLanguages int
	DriveSide      string
	MapURL         string
}
