package models

// PlanetPlacement describes a single point in the computed chart.
type PlanetPlacement struct {
	Sign       string `json:"sign"`
	House      int    `json:"house"`
	DegStr     string `json:"deg_str"`
	Retrograde bool   `json:"retrograde"`
}

// ChartData - ответ внешнего сервиса расчета натальной карты.
// Имена полей соответствуют wire-контракту сервиса (snake_case).
type ChartData struct {
	FormattedOutput string                     `json:"formatted_output"`
	SunSign         string                     `json:"sun_sign"`
	MoonSign        string                     `json:"moon_sign"`
	RisingSign      string                     `json:"rising_sign"`
	MercurySign     string                     `json:"mercury_sign"`
	VenusSign       string                     `json:"venus_sign"`
	MarsSign        string                     `json:"mars_sign"`
	JupiterSign     string                     `json:"jupiter_sign"`
	SaturnSign      string                     `json:"saturn_sign"`
	Planets         map[string]PlanetPlacement `json:"planets"`
}

// BirthDetails - разложенные параметры рождения для расчета карты.
type BirthDetails struct {
	Name   string  `json:"name"`
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Day    int     `json:"day"`
	Hour   int     `json:"hour"`
	Minute int     `json:"minute"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Tz     string  `json:"tz"`
}
