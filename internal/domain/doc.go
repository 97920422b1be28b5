// Package domain models the canonical shapes served by the weather gateway:
// the account entities (users, items) persisted in PostgreSQL, and the
// normalized weather payloads proxied from the data.gov.sg v2 real-time API.
//
// # Upstream Data Source
//
// Weather data originates from the data.gov.sg real-time weather endpoints at
// https://api-open.data.gov.sg/v2/real-time/api/. Seven endpoints are proxied:
// two-hr-forecast, twenty-four-hr-forecast, four-day-outlook, air-temperature,
// wind-direction, lightning, and wbgt. All accept an optional SGT `date`
// parameter (YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS) and `paginationToken`;
// lightning and wbgt additionally require an `api` parameter naming the
// dataset.
//
// # Upstream Naming Drift
//
// Field naming in upstream payloads has drifted across endpoint versions:
//
//	update_timestamp  vs  updated_timestamp   (two-hour forecast items)
//	updatedTimestamp  vs  updated_timestamp   (forecast/lightning/wbgt records)
//	tiemstamp         vs  timestamp           (misspelling on some records)
//	deviceId          vs  device_id           (station objects)
//	stationId / id    vs  station_id          (reading entries)
//
// Some air-temperature and wind-direction responses batch readings as a single
// envelope holding a nested `data` list of per-station pairs instead of a flat
// list, and twenty-four-hour forecast responses occasionally omit
// `area_metadata` entirely.
//
// The structs in this package commit to the canonical snake_case names on the
// right-hand side above. Reconciling non-conforming upstream documents is the
// job of the internal/normalize package, which repairs exactly the known
// discrepancies listed here and nothing else.
//
// # Error Taxonomy
//
// Failures talking to upstream fall into three kinds, each a distinct type so
// the HTTP layer can branch with errors.As: TransportError (fetch never
// completed), UpstreamError (non-2xx with a decodable APIError envelope), and
// OpaqueUpstreamError (non-2xx with an undecodable body). A fourth kind, a
// success status whose body cannot be normalized, is reported by
// internal/normalize as a *normalize.Failure.
package domain
