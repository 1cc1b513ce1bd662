// Package geo holds the location label tables used by the locations table.
package geo

import "locations-dashboard/internal/models"

// OtherLocation is the display name for activity with no location key.
const OtherLocation = "Other"

// Lookup resolves a row name to a display label and a two-letter flag code.
// The flag code is empty when no flag should be shown.
type Lookup interface {
	Label(name string) (label, flagCode string)
}

// ForMode returns the lookup for rows aggregated in mode.
func ForMode(mode models.LocationMode) Lookup {
	if mode == models.ModeState {
		return StateLookup
	}
	return CountryLookup
}

// DisplayName adapts l to the label-only form used for sorting.
func DisplayName(l Lookup) func(name string) string {
	return func(name string) string {
		label, _ := l.Label(name)
		return label
	}
}

type countryLookup struct{}

// CountryLookup labels rows keyed by ISO 3166 alpha-2 code.
var CountryLookup Lookup = countryLookup{}

func (countryLookup) Label(name string) (string, string) {
	if label, ok := Countries[name]; ok {
		return label, name
	}
	return name, ""
}

type stateLookup struct{}

// StateLookup labels rows keyed by state name. States carry no flag.
var StateLookup Lookup = stateLookup{}

func (stateLookup) Label(name string) (string, string) {
	return name, ""
}

// Countries maps ISO 3166 alpha-2 codes to English names.
var Countries = map[string]string{
	"AE": "United Arab Emirates",
	"AR": "Argentina",
	"AT": "Austria",
	"AU": "Australia",
	"BE": "Belgium",
	"BG": "Bulgaria",
	"BR": "Brazil",
	"CA": "Canada",
	"CH": "Switzerland",
	"CL": "Chile",
	"CN": "China",
	"CO": "Colombia",
	"CZ": "Czechia",
	"DE": "Germany",
	"DK": "Denmark",
	"EE": "Estonia",
	"EG": "Egypt",
	"ES": "Spain",
	"FI": "Finland",
	"FR": "France",
	"GB": "United Kingdom",
	"GR": "Greece",
	"HK": "Hong Kong",
	"HR": "Croatia",
	"HU": "Hungary",
	"ID": "Indonesia",
	"IE": "Ireland",
	"IL": "Israel",
	"IN": "India",
	"IS": "Iceland",
	"IT": "Italy",
	"JP": "Japan",
	"KE": "Kenya",
	"KR": "South Korea",
	"LT": "Lithuania",
	"LU": "Luxembourg",
	"LV": "Latvia",
	"MX": "Mexico",
	"MY": "Malaysia",
	"NG": "Nigeria",
	"NL": "Netherlands",
	"NO": "Norway",
	"NZ": "New Zealand",
	"PE": "Peru",
	"PH": "Philippines",
	"PK": "Pakistan",
	"PL": "Poland",
	"PT": "Portugal",
	"RO": "Romania",
	"RS": "Serbia",
	"SA": "Saudi Arabia",
	"SE": "Sweden",
	"SG": "Singapore",
	"SI": "Slovenia",
	"SK": "Slovakia",
	"TH": "Thailand",
	"TR": "Turkey",
	"TW": "Taiwan",
	"UA": "Ukraine",
	"US": "United States",
	"VN": "Vietnam",
	"ZA": "South Africa",
}

// USStates is positional: index i names the i-th entry of a state series.
var USStates = []string{
	"Alabama",
	"Alaska",
	"Arizona",
	"Arkansas",
	"California",
	"Colorado",
	"Connecticut",
	"Delaware",
	"District of Columbia",
	"Florida",
	"Georgia",
	"Hawaii",
	"Idaho",
	"Illinois",
	"Indiana",
	"Iowa",
	"Kansas",
	"Kentucky",
	"Louisiana",
	"Maine",
	"Maryland",
	"Massachusetts",
	"Michigan",
	"Minnesota",
	"Mississippi",
	"Missouri",
	"Montana",
	"Nebraska",
	"Nevada",
	"New Hampshire",
	"New Jersey",
	"New Mexico",
	"New York",
	"North Carolina",
	"North Dakota",
	"Ohio",
	"Oklahoma",
	"Oregon",
	"Pennsylvania",
	"Rhode Island",
	"South Carolina",
	"South Dakota",
	"Tennessee",
	"Texas",
	"Utah",
	"Vermont",
	"Virginia",
	"Washington",
	"West Virginia",
	"Wisconsin",
	"Wyoming",
}
