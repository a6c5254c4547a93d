package destination

// conditions maps WMO weather interpretation codes (as reported by the
// weather service) to display labels.
var conditions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
}

// Condition returns the display label for a weather code, or "Unknown"
// for codes outside the table.
func Condition(code int) string {
	if c, ok := conditions[code]; ok {
		return c
	}
	return "Unknown"
}
