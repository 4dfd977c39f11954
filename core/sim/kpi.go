package sim

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/jdhoffa/vpp-sim/core/telemetry"
)

// Report is the end-of-run KPI summary.
type Report struct {
	// NoData marks a report over zero records; every numeric field is
	// then meaningless and must not be read as a real zero.
	NoData bool `json:"no_data"`
	Steps  int  `json:"steps"`

	MAEKW  float64 `json:"mae_kw"`
	RMSEKW float64 `json:"rmse_kw"`

	PeakImportKW float64 `json:"peak_import_kw"`
	PeakExportKW float64 `json:"peak_export_kw"`

	ImportedKWh float64 `json:"imported_kwh"`
	ExportedKWh float64 `json:"exported_kwh"`

	BatteryThroughputKWh float64 `json:"battery_throughput_kwh"`
	BatteryCycles        float64 `json:"battery_cycles"`
	FinalSoC             float64 `json:"final_soc"`

	LimitViolations int `json:"limit_violations"`

	// DRRequested is false when no event asked for curtailment; the
	// delivered fraction is then reported as 1 by convention but the
	// flag is what consumers should branch on.
	DRRequested     bool    `json:"dr_requested"`
	DRDeliveredFrac float64 `json:"dr_delivered_frac"`

	ImbalanceCost float64 `json:"imbalance_cost"`
}

// BuildReport computes KPIs over recorded telemetry. Battery cycle
// counting needs the pack capacity; an empty record set yields a
// NoData report.
func BuildReport(cfg Config, batteryCapacityKWh float64, records []telemetry.Record) Report {
	if len(records) == 0 {
		return Report{NoData: true, DRDeliveredFrac: 1}
	}

	dt := cfg.DtHours()
	absErr := make([]float64, len(records))
	sqErr := make([]float64, len(records))
	feeder := make([]float64, len(records))

	r := Report{Steps: len(records)}
	drRequestedKWh, drAchievedKWh := 0.0, 0.0

	for i, rec := range records {
		e := rec.TrackingErrorKW
		absErr[i] = math.Abs(e)
		sqErr[i] = e * e
		feeder[i] = rec.FeederKW

		if rec.FeederKW > 0 {
			r.ImportedKWh += rec.FeederKW * dt
		} else {
			r.ExportedKWh += -rec.FeederKW * dt
		}

		r.BatteryThroughputKWh += math.Abs(rec.BatteryKW) * dt
		if !rec.LimitOK {
			r.LimitViolations++
		}

		drRequestedKWh += rec.DRRequestedKW * dt
		drAchievedKWh += rec.DRAchievedKW * dt
	}

	r.PeakImportKW = math.Max(floats.Max(feeder), 0)
	r.PeakExportKW = math.Max(-floats.Min(feeder), 0)
	r.MAEKW = stat.Mean(absErr, nil)
	r.RMSEKW = math.Sqrt(stat.Mean(sqErr, nil))
	r.ImbalanceCost = cfg.ImbalancePricePerKWh * floats.Sum(absErr) * dt
	r.FinalSoC = records[len(records)-1].BatterySoC

	if batteryCapacityKWh > 0 {
		r.BatteryCycles = r.BatteryThroughputKWh / (2 * batteryCapacityKWh)
	}

	if drRequestedKWh > 0 {
		r.DRRequested = true
		r.DRDeliveredFrac = drAchievedKWh / drRequestedKWh
	} else {
		r.DRDeliveredFrac = 1
	}
	return r
}
