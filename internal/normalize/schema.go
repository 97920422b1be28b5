package normalize

// Schema identifies which canonical shape a raw upstream document is
// normalized into. The values double as the upstream endpoint names used in
// metrics and diagnostics.
type Schema string

const (
	TwoHourForecast        Schema = "two-hour-forecast"
	TwentyFourHourForecast Schema = "twenty-four-hour-forecast"
	FourDayForecast        Schema = "four-day-forecast"
	AirTemperature         Schema = "air-temperature"
	WindDirection          Schema = "wind-direction"
	Lightning              Schema = "lightning"
	WBGT                   Schema = "wbgt"
)

// Schemas lists every supported schema tag.
func Schemas() []Schema {
	return []Schema{
		TwoHourForecast,
		TwentyFourHourForecast,
		FourDayForecast,
		AirTemperature,
		WindDirection,
		Lightning,
		WBGT,
	}
}

// kind is the JSON type a schema field must hold.
type kind int

const (
	kindString kind = iota
	kindNumber
	kindObject    // typed object validated against fields
	kindArray     // array of typed objects validated against elem
	kindRawObject // opaque object, passed through unvalidated
	kindRawArray  // opaque array, passed through unvalidated
)

// field is one node of a schema tree. Every field has a dual identity: the
// wire name upstream sends and the canonical name the gateway emits. For most
// fields the two coincide and canonical is left empty.
//
// Required here means required at decode time. A handful of fields the repair
// table can supply (device_id, station_id, reading value, record
// updated_timestamp) are decode-required precisely so their absence surfaces
// as the field-path failure that triggers the matching repair; the canonical
// structs still serialize them omitempty.
type field struct {
	wire      string
	canonical string // output name; empty means same as wire
	kind      kind
	required  bool
	fields    []field // object members, for kindObject
	elem      []field // element members, for kindArray
}

// out returns the canonical output name for the field.
func (f *field) out() string {
	if f.canonical != "" {
		return f.canonical
	}
	return f.wire
}

var (
	labelLocation = []field{
		{wire: "latitude", kind: kindNumber, required: true},
		{wire: "longitude", kind: kindNumber, required: true},
	}

	areaMetadata = field{wire: "area_metadata", kind: kindArray, required: true, elem: []field{
		{wire: "name", kind: kindString, required: true},
		{wire: "label_location", kind: kindObject, required: true, fields: labelLocation},
	}}

	paginationToken = field{wire: "pagination_token", kind: kindString}

	twoHourData = []field{
		areaMetadata,
		{wire: "items", kind: kindArray, required: true, elem: []field{
			{wire: "updated_timestamp", kind: kindString, required: true},
			{wire: "timestamp", kind: kindString, required: true},
			{wire: "valid_period", kind: kindObject, required: true, fields: []field{
				{wire: "start", kind: kindString, required: true},
				{wire: "end", kind: kindString, required: true},
				{wire: "text", kind: kindString, required: true},
			}},
			{wire: "forecasts", kind: kindArray, required: true, elem: []field{
				{wire: "area", kind: kindString, required: true},
				{wire: "forecast", kind: kindString, required: true},
			}},
		}},
		paginationToken,
	}

	readingData = []field{
		{wire: "stations", kind: kindArray, required: true, elem: []field{
			{wire: "id", kind: kindString, required: true},
			{wire: "device_id", kind: kindString, required: true},
			{wire: "name", kind: kindString, required: true},
			{wire: "location", kind: kindObject, required: true, fields: labelLocation},
		}},
		{wire: "readings", kind: kindArray, required: true, elem: []field{
			{wire: "station_id", kind: kindString, required: true},
			{wire: "value", kind: kindNumber, required: true},
			{wire: "timestamp", kind: kindString, required: true},
		}},
		{wire: "reading_type", kind: kindString, required: true},
		{wire: "reading_unit", kind: kindString, required: true},
		paginationToken,
	}

	recordData = []field{
		{wire: "records", kind: kindArray, required: true, elem: []field{
			{wire: "datetime", kind: kindString, required: true},
			{wire: "item", kind: kindRawObject, required: true},
			{wire: "updated_timestamp", kind: kindString, required: true},
		}},
		paginationToken,
	}

	twentyFourHourData = []field{
		areaMetadata,
		{wire: "records", kind: kindArray, required: true, elem: []field{
			{wire: "date", kind: kindString, required: true},
			{wire: "updated_timestamp", kind: kindString, required: true},
			{wire: "timestamp", kind: kindString, required: true},
			{wire: "general", kind: kindRawObject, required: true},
			{wire: "periods", kind: kindRawArray},
		}},
		paginationToken,
	}

	fourDayData = []field{
		{wire: "records", kind: kindArray, required: true, elem: []field{
			{wire: "date", kind: kindString, required: true},
			{wire: "updated_timestamp", kind: kindString, required: true},
			{wire: "timestamp", kind: kindString, required: true},
			{wire: "forecasts", kind: kindRawArray, required: true},
		}},
		paginationToken,
	}
)

// envelope wraps a data section in the {code, errorMsg, data} shape every
// upstream response shares. errorMsg is the one top-level field whose wire
// name differs from its canonical name.
func envelope(data []field) []field {
	return []field{
		{wire: "code", kind: kindNumber, required: true},
		{wire: "errorMsg", canonical: "error_msg", kind: kindString},
		{wire: "data", kind: kindObject, fields: data},
	}
}

// schemas maps each tag to its root schema tree.
var schemas = map[Schema][]field{
	TwoHourForecast:        envelope(twoHourData),
	TwentyFourHourForecast: envelope(twentyFourHourData),
	FourDayForecast:        envelope(fourDayData),
	AirTemperature:         envelope(readingData),
	WindDirection:          envelope(readingData),
	Lightning:              envelope(recordData),
	WBGT:                   envelope(recordData),
}
