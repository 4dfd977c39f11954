// Package telemetry defines the per-timestep record emitted by the
// simulation and the in-memory store serving exports and the API.
package telemetry

// SchemaVersion identifies the record layout. Field order below is the
// canonical column order for CSV export.
const SchemaVersion = 1

// Record is one timestep of site telemetry. Powers follow the feeder
// convention: positive = import/consumption, negative = export.
type Record struct {
	Timestep        int     `json:"timestep"`
	TimeHr          float64 `json:"time_hr"`
	TargetKW        float64 `json:"target_kw"`
	FeederKW        float64 `json:"feeder_kw"`
	TrackingErrorKW float64 `json:"tracking_error_kw"`
	BaseloadKW      float64 `json:"baseload_kw"`
	SolarKW         float64 `json:"solar_kw"`
	EVRequestedKW   float64 `json:"ev_requested_kw"`
	EVDispatchedKW  float64 `json:"ev_dispatched_kw"`
	BatteryKW       float64 `json:"battery_kw"`
	BatterySoC      float64 `json:"battery_soc"`
	DRRequestedKW   float64 `json:"dr_requested_kw"`
	DRAchievedKW    float64 `json:"dr_achieved_kw"`
	LimitOK         bool    `json:"limit_ok"`
}

// Columns is the schema v1 CSV header, in canonical order.
func Columns() []string {
	return []string{
		"timestep",
		"time_hr",
		"target_kw",
		"feeder_kw",
		"tracking_error_kw",
		"baseload_kw",
		"solar_kw",
		"ev_requested_kw",
		"ev_dispatched_kw",
		"battery_kw",
		"battery_soc",
		"dr_requested_kw",
		"dr_achieved_kw",
		"limit_ok",
	}
}
