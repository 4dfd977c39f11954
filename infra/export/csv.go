// Package export writes recorded telemetry to external formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jdhoffa/vpp-sim/core/telemetry"
)

// WriteCSV streams records in schema v1 column order, header first.
func WriteCSV(w io.Writer, records []telemetry.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(telemetry.Columns()); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.Timestep),
			formatFloat(r.TimeHr),
			formatFloat(r.TargetKW),
			formatFloat(r.FeederKW),
			formatFloat(r.TrackingErrorKW),
			formatFloat(r.BaseloadKW),
			formatFloat(r.SolarKW),
			formatFloat(r.EVRequestedKW),
			formatFloat(r.EVDispatchedKW),
			formatFloat(r.BatteryKW),
			formatFloat(r.BatterySoC),
			formatFloat(r.DRRequestedKW),
			formatFloat(r.DRAchievedKW),
			strconv.FormatBool(r.LimitOK),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write row %d: %w", r.Timestep, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes records to path, creating or truncating it.
func WriteCSVFile(path string, records []telemetry.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	if err := WriteCSV(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
