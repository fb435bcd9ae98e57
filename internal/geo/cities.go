package geo

import (
	"sort"
	"strings"
)

// CityData holds the coordinates and IANA timezone of a known city.
type CityData struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	Tz  string  `json:"tz"`
}

// maxSearchResults ограничивает выдачу автодополнения.
const maxSearchResults = 8

// cities - статическая таблица поддерживаемых городов.
// Разрешение имени города выполняется точным совпадением по ключу.
var cities = map[string]CityData{
	// New Zealand
	"Wellington, New Zealand":       {Lat: -41.2866, Lon: 174.7762, Tz: "Pacific/Auckland"},
	"Auckland, New Zealand":         {Lat: -36.8485, Lon: 174.7633, Tz: "Pacific/Auckland"},
	"Christchurch, New Zealand":     {Lat: -43.5321, Lon: 172.6362, Tz: "Pacific/Auckland"},
	"Dunedin, New Zealand":          {Lat: -45.8788, Lon: 170.5028, Tz: "Pacific/Auckland"},
	"Hamilton, New Zealand":         {Lat: -37.787, Lon: 175.2793, Tz: "Pacific/Auckland"},
	"Tauranga, New Zealand":         {Lat: -37.6878, Lon: 176.1651, Tz: "Pacific/Auckland"},
	"Napier, New Zealand":           {Lat: -39.4928, Lon: 176.912, Tz: "Pacific/Auckland"},
	"Nelson, New Zealand":           {Lat: -41.2706, Lon: 173.284, Tz: "Pacific/Auckland"},
	"Queenstown, New Zealand":       {Lat: -45.0312, Lon: 168.6626, Tz: "Pacific/Auckland"},
	"Palmerston North, New Zealand": {Lat: -40.3523, Lon: 175.6082, Tz: "Pacific/Auckland"},
	"Rotorua, New Zealand":          {Lat: -38.1368, Lon: 176.2497, Tz: "Pacific/Auckland"},
	"Whangarei, New Zealand":        {Lat: -35.7275, Lon: 174.3166, Tz: "Pacific/Auckland"},
	"New Plymouth, New Zealand":     {Lat: -39.0556, Lon: 174.0752, Tz: "Pacific/Auckland"},
	"Invercargill, New Zealand":     {Lat: -46.4132, Lon: 168.3538, Tz: "Pacific/Auckland"},
	// Australia
	"Sydney, Australia":     {Lat: -33.8688, Lon: 151.2093, Tz: "Australia/Sydney"},
	"Melbourne, Australia":  {Lat: -37.8136, Lon: 144.9631, Tz: "Australia/Melbourne"},
	"Brisbane, Australia":   {Lat: -27.4698, Lon: 153.0251, Tz: "Australia/Brisbane"},
	"Perth, Australia":      {Lat: -31.9505, Lon: 115.8605, Tz: "Australia/Perth"},
	"Adelaide, Australia":   {Lat: -34.9285, Lon: 138.6007, Tz: "Australia/Adelaide"},
	"Gold Coast, Australia": {Lat: -28.0167, Lon: 153.4, Tz: "Australia/Brisbane"},
	"Canberra, Australia":   {Lat: -35.2809, Lon: 149.13, Tz: "Australia/Sydney"},
	"Hobart, Australia":     {Lat: -42.8821, Lon: 147.3272, Tz: "Australia/Hobart"},
	"Darwin, Australia":     {Lat: -12.4634, Lon: 130.8456, Tz: "Australia/Darwin"},
	// UK & Ireland
	"London, UK":      {Lat: 51.5074, Lon: -0.1278, Tz: "Europe/London"},
	"Edinburgh, UK":   {Lat: 55.9533, Lon: -3.1883, Tz: "Europe/London"},
	"Manchester, UK":  {Lat: 53.4808, Lon: -2.2426, Tz: "Europe/London"},
	"Dublin, Ireland": {Lat: 53.3498, Lon: -6.2603, Tz: "Europe/Dublin"},
	"Glasgow, UK":     {Lat: 55.8642, Lon: -4.2518, Tz: "Europe/London"},
	"Birmingham, UK":  {Lat: 52.4862, Lon: -1.8904, Tz: "Europe/London"},
	// Europe
	"Paris, France":          {Lat: 48.8566, Lon: 2.3522, Tz: "Europe/Paris"},
	"Berlin, Germany":        {Lat: 52.52, Lon: 13.405, Tz: "Europe/Berlin"},
	"Amsterdam, Netherlands": {Lat: 52.3676, Lon: 4.9041, Tz: "Europe/Amsterdam"},
	"Rome, Italy":            {Lat: 41.9028, Lon: 12.4964, Tz: "Europe/Rome"},
	"Madrid, Spain":          {Lat: 40.4168, Lon: -3.7038, Tz: "Europe/Madrid"},
	"Lisbon, Portugal":       {Lat: 38.7223, Lon: -9.1393, Tz: "Europe/Lisbon"},
	"Barcelona, Spain":       {Lat: 41.3874, Lon: 2.1686, Tz: "Europe/Madrid"},
	"Vienna, Austria":        {Lat: 48.2082, Lon: 16.3738, Tz: "Europe/Vienna"},
	"Prague, Czech Republic": {Lat: 50.0755, Lon: 14.4378, Tz: "Europe/Prague"},
	"Copenhagen, Denmark":    {Lat: 55.6761, Lon: 12.5683, Tz: "Europe/Copenhagen"},
	"Stockholm, Sweden":      {Lat: 59.3293, Lon: 18.0686, Tz: "Europe/Stockholm"},
	"Oslo, Norway":           {Lat: 59.9139, Lon: 10.7522, Tz: "Europe/Oslo"},
	"Helsinki, Finland":      {Lat: 60.1699, Lon: 24.9384, Tz: "Europe/Helsinki"},
	"Zurich, Switzerland":    {Lat: 47.3769, Lon: 8.5417, Tz: "Europe/Zurich"},
	"Athens, Greece":         {Lat: 37.9838, Lon: 23.7275, Tz: "Europe/Athens"},
	"Istanbul, Turkey":       {Lat: 41.0082, Lon: 28.9784, Tz: "Europe/Istanbul"},
	// North America
	"New York, USA":        {Lat: 40.7128, Lon: -74.006, Tz: "America/New_York"},
	"Los Angeles, USA":     {Lat: 34.0522, Lon: -118.2437, Tz: "America/Los_Angeles"},
	"Chicago, USA":         {Lat: 41.8781, Lon: -87.6298, Tz: "America/Chicago"},
	"Houston, USA":         {Lat: 29.7604, Lon: -95.3698, Tz: "America/Chicago"},
	"San Francisco, USA":   {Lat: 37.7749, Lon: -122.4194, Tz: "America/Los_Angeles"},
	"Seattle, USA":         {Lat: 47.6062, Lon: -122.3321, Tz: "America/Los_Angeles"},
	"Miami, USA":           {Lat: 25.7617, Lon: -80.1918, Tz: "America/New_York"},
	"Denver, USA":          {Lat: 39.7392, Lon: -104.9903, Tz: "America/Denver"},
	"Austin, USA":          {Lat: 30.2672, Lon: -97.7431, Tz: "America/Chicago"},
	"Boston, USA":          {Lat: 42.3601, Lon: -71.0589, Tz: "America/New_York"},
	"Toronto, Canada":      {Lat: 43.6532, Lon: -79.3832, Tz: "America/Toronto"},
	"Vancouver, Canada":    {Lat: 49.2827, Lon: -123.1207, Tz: "America/Vancouver"},
	"Montreal, Canada":     {Lat: 45.5017, Lon: -73.5673, Tz: "America/Toronto"},
	"Mexico City, Mexico":  {Lat: 19.4326, Lon: -99.1332, Tz: "America/Mexico_City"},
	// South America
	"Sao Paulo, Brazil":        {Lat: -23.5505, Lon: -46.6333, Tz: "America/Sao_Paulo"},
	"Buenos Aires, Argentina":  {Lat: -34.6037, Lon: -58.3816, Tz: "America/Argentina/Buenos_Aires"},
	"Bogota, Colombia":         {Lat: 4.711, Lon: -74.0721, Tz: "America/Bogota"},
	"Lima, Peru":               {Lat: -12.0464, Lon: -77.0428, Tz: "America/Lima"},
	"Santiago, Chile":          {Lat: -33.4489, Lon: -70.6693, Tz: "America/Santiago"},
	// Asia
	"Tokyo, Japan":            {Lat: 35.6762, Lon: 139.6503, Tz: "Asia/Tokyo"},
	"Beijing, China":          {Lat: 39.9042, Lon: 116.4074, Tz: "Asia/Shanghai"},
	"Shanghai, China":         {Lat: 31.2304, Lon: 121.4737, Tz: "Asia/Shanghai"},
	"Hong Kong":               {Lat: 22.3193, Lon: 114.1694, Tz: "Asia/Hong_Kong"},
	"Singapore":               {Lat: 1.3521, Lon: 103.8198, Tz: "Asia/Singapore"},
	"Mumbai, India":           {Lat: 19.076, Lon: 72.8777, Tz: "Asia/Kolkata"},
	"Delhi, India":            {Lat: 28.7041, Lon: 77.1025, Tz: "Asia/Kolkata"},
	"Bangkok, Thailand":       {Lat: 13.7563, Lon: 100.5018, Tz: "Asia/Bangkok"},
	"Seoul, South Korea":      {Lat: 37.5665, Lon: 126.978, Tz: "Asia/Seoul"},
	"Dubai, UAE":              {Lat: 25.2048, Lon: 55.2708, Tz: "Asia/Dubai"},
	"Taipei, Taiwan":          {Lat: 25.033, Lon: 121.5654, Tz: "Asia/Taipei"},
	"Kuala Lumpur, Malaysia":  {Lat: 3.139, Lon: 101.6869, Tz: "Asia/Kuala_Lumpur"},
	"Jakarta, Indonesia":      {Lat: -6.2088, Lon: 106.8456, Tz: "Asia/Jakarta"},
	"Manila, Philippines":     {Lat: 14.5995, Lon: 120.9842, Tz: "Asia/Manila"},
	// Africa
	"Cape Town, South Africa":    {Lat: -33.9249, Lon: 18.4241, Tz: "Africa/Johannesburg"},
	"Johannesburg, South Africa": {Lat: -26.2041, Lon: 28.0473, Tz: "Africa/Johannesburg"},
	"Nairobi, Kenya":             {Lat: -1.2921, Lon: 36.8219, Tz: "Africa/Nairobi"},
	"Cairo, Egypt":               {Lat: 30.0444, Lon: 31.2357, Tz: "Africa/Cairo"},
	"Lagos, Nigeria":             {Lat: 6.5244, Lon: 3.3792, Tz: "Africa/Lagos"},
	// Pacific
	"Honolulu, USA": {Lat: 21.3069, Lon: -157.8583, Tz: "Pacific/Honolulu"},
	"Suva, Fiji":    {Lat: -18.1416, Lon: 178.4419, Tz: "Pacific/Fiji"},
}

// cityNames - отсортированный список имен для детерминированной выдачи поиска.
var cityNames = func() []string {
	names := make([]string, 0, len(cities))
	for name := range cities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}()

// Lookup returns the data for an exact city name, or false if unknown.
func Lookup(name string) (CityData, bool) {
	data, ok := cities[name]
	return data, ok
}

// Search returns up to 8 city names containing the query, case-insensitive.
// Queries shorter than two characters return nothing.
func Search(query string) []string {
	if len(query) < 2 {
		return nil
	}
	lower := strings.ToLower(query)
	var matches []string
	for _, name := range cityNames {
		if strings.Contains(strings.ToLower(name), lower) {
			matches = append(matches, name)
			if len(matches) == maxSearchResults {
				break
			}
		}
	}
	return matches
}
