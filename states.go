package citymap

import (
	"strings"
	"sync"
)

// UsStateCodes maps US state and territory codes (the state_id column) to full names.
var UsStateCodes = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"FL": "Florida", "GA": "Georgia", "HI": "Hawaii", "ID": "Idaho",
	"IL": "Illinois", "IN": "Indiana", "IA": "Iowa", "KS": "Kansas",
	"KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi",
	"MO": "Missouri", "MT": "Montana", "NE": "Nebraska", "NV": "Nevada",
	"NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico", "NY": "New York",
	"NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma",
	"OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah",
	"VT": "Vermont", "VA": "Virginia", "WA": "Washington", "WV": "West Virginia",
	"WI": "Wisconsin", "WY": "Wyoming",
	// Territories
	"AS": "American Samoa", "DC": "District of Columbia",
	"FM": "Federated States of Micronesia", "GU": "Guam",
	"MH": "Marshall Islands", "MP": "Northern Mariana Islands",
	"PW": "Palau", "PR": "Puerto Rico", "VI": "Virgin Islands",
}

// stateCodesByName is the lowercase-name -> code inverse of UsStateCodes.
var stateCodesByName = sync.OnceValue(func() map[string]string {
	byName := make(map[string]string, len(UsStateCodes))
	for code, name := range UsStateCodes {
		byName[strings.ToLower(name)] = code
	}
	return byName
})

// StateName returns the full name for a state code ("TX" -> "Texas"), or "" if unknown.
func StateName(code string) string {
	return UsStateCodes[strings.ToUpper(strings.TrimSpace(code))]
}

// StateCode returns the code for a full state name ("texas" -> "TX").
// A value that already is a known code is returned upper-cased.
// Unknown values return "".
func StateCode(name string) string {
	name = strings.TrimSpace(name)
	if code := strings.ToUpper(name); UsStateCodes[code] != "" {
		return code
	}
	return stateCodesByName()[strings.ToLower(name)]
}

// splitKey splits "City, ST" at the last comma and trims spaces around both
// parts, so "Austin,TX" and "Austin , TX" split like "Austin, TX". ok is false
// when there is no comma.
func splitKey(key string) (city, state string, ok bool) {
	i := strings.LastIndex(key, ",")
	if i < 0 {
		return key, "", false
	}
	return strings.TrimSpace(key[:i]), strings.TrimSpace(key[i+1:]), true
}
