package domain

// LabelLocation is a WGS-84 latitude/longitude pair used for area labels and
// station positions.
type LabelLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AreaMetadata names a forecast area and where its label is drawn on a map.
type AreaMetadata struct {
	Name          string        `json:"name"`
	LabelLocation LabelLocation `json:"label_location"`
}

// ForecastPeriod is the validity window of a forecast, with a display text
// such as "6 pm to 12 am".
type ForecastPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Text  string `json:"text"`
}

// Forecast is a single area's forecast text, e.g. "Ang Mo Kio: Cloudy".
type Forecast struct {
	Area     string `json:"area"`
	Forecast string `json:"forecast"`
}

// WeatherItem is one two-hour forecast issue.
type WeatherItem struct {
	UpdatedTimestamp string         `json:"updated_timestamp"`
	Timestamp        string         `json:"timestamp"`
	ValidPeriod      ForecastPeriod `json:"valid_period"`
	Forecasts        []Forecast     `json:"forecasts"`
}

// WeatherData is the data section of a two-hour forecast response.
type WeatherData struct {
	AreaMetadata    []AreaMetadata `json:"area_metadata"`
	Items           []WeatherItem  `json:"items"`
	PaginationToken string         `json:"pagination_token,omitempty"`
}

// WeatherResponse is the canonical two-hour forecast envelope.
type WeatherResponse struct {
	Code     int          `json:"code"`
	ErrorMsg string       `json:"error_msg,omitempty"`
	Data     *WeatherData `json:"data,omitempty"`
}

// Station is a physical weather station. DeviceID is absent from some older
// payloads; when upstream sends it under its legacy wire name it is restored
// by normalization.
type Station struct {
	ID       string        `json:"id"`
	DeviceID string        `json:"device_id,omitempty"`
	Name     string        `json:"name"`
	Location LabelLocation `json:"location"`
}

// Reading is one station measurement. StationID and Value are pointers in the
// canonical output only in the sense of being omittable; decode treats them as
// required so their absence triggers the documented repairs.
type Reading struct {
	StationID string   `json:"station_id,omitempty"`
	Value     *float64 `json:"value,omitempty"`
	Timestamp string   `json:"timestamp"`
}

// ReadingData is the data section shared by station-reading endpoints
// (air temperature, wind direction).
type ReadingData struct {
	Stations        []Station `json:"stations"`
	Readings        []Reading `json:"readings"`
	ReadingType     string    `json:"reading_type"`
	ReadingUnit     string    `json:"reading_unit"`
	PaginationToken string    `json:"pagination_token,omitempty"`
}

// AirTemperatureResponse is the canonical air-temperature envelope.
type AirTemperatureResponse struct {
	Code     int          `json:"code"`
	ErrorMsg string       `json:"error_msg,omitempty"`
	Data     *ReadingData `json:"data,omitempty"`
}

// WindDirectionResponse is the canonical wind-direction envelope.
type WindDirectionResponse struct {
	Code     int          `json:"code"`
	ErrorMsg string       `json:"error_msg,omitempty"`
	Data     *ReadingData `json:"data,omitempty"`
}

// Record is one dated observation from the record-shaped endpoints
// (lightning, WBGT). Item carries the endpoint-specific payload opaquely;
// the gateway does not interpret it.
type Record struct {
	Datetime         string         `json:"datetime"`
	Item             map[string]any `json:"item"`
	UpdatedTimestamp string         `json:"updated_timestamp,omitempty"`
}

// RecordData is the data section shared by the record-shaped endpoints.
type RecordData struct {
	Records         []Record `json:"records"`
	PaginationToken string   `json:"pagination_token,omitempty"`
}

// LightningResponse is the canonical lightning envelope.
type LightningResponse struct {
	Code     int         `json:"code"`
	ErrorMsg string      `json:"error_msg,omitempty"`
	Data     *RecordData `json:"data,omitempty"`
}

// WBGTResponse is the canonical wet-bulb globe temperature envelope.
type WBGTResponse struct {
	Code     int         `json:"code"`
	ErrorMsg string      `json:"error_msg,omitempty"`
	Data     *RecordData `json:"data,omitempty"`
}

// ForecastItem is one twenty-four-hour forecast record. General holds the
// island-wide outlook and Periods the per-period regional forecasts; both are
// passed through opaquely.
type ForecastItem struct {
	Date             string         `json:"date"`
	UpdatedTimestamp string         `json:"updated_timestamp"`
	Timestamp        string         `json:"timestamp"`
	General          map[string]any `json:"general"`
	Periods          []any          `json:"periods,omitempty"`
}

// TwentyFourHourData is the data section of a twenty-four-hour forecast
// response. AreaMetadata is occasionally missing upstream and defaulted to an
// empty list by normalization.
type TwentyFourHourData struct {
	AreaMetadata    []AreaMetadata `json:"area_metadata"`
	Records         []ForecastItem `json:"records"`
	PaginationToken string         `json:"pagination_token,omitempty"`
}

// TwentyFourHourForecastResponse is the canonical twenty-four-hour envelope.
type TwentyFourHourForecastResponse struct {
	Code     int                 `json:"code"`
	ErrorMsg string              `json:"error_msg,omitempty"`
	Data     *TwentyFourHourData `json:"data,omitempty"`
}

// FourDayForecastItem is one day of the four-day outlook.
type FourDayForecastItem struct {
	Date             string `json:"date"`
	UpdatedTimestamp string `json:"updated_timestamp"`
	Timestamp        string `json:"timestamp"`
	Forecasts        []any  `json:"forecasts"`
}

// FourDayData is the data section of a four-day outlook response.
type FourDayData struct {
	Records         []FourDayForecastItem `json:"records"`
	PaginationToken string                `json:"pagination_token,omitempty"`
}

// FourDayForecastResponse is the canonical four-day outlook envelope.
type FourDayForecastResponse struct {
	Code     int          `json:"code"`
	ErrorMsg string       `json:"error_msg,omitempty"`
	Data     *FourDayData `json:"data,omitempty"`
}

// APIError is the envelope upstream returns on non-2xx status.
type APIError struct {
	Code     int            `json:"code"`
	Name     string         `json:"name"`
	Data     map[string]any `json:"data,omitempty"`
	ErrorMsg string         `json:"error_msg"`
}
