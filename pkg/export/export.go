// Package export serializes search results for offline plotting.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/feasnet/core/search"
)

// WriteJSON writes all trial histories to w in JSON format.
func WriteJSON(w io.Writer, results []search.TrialResult) error {
	enc := json.NewEncoder(w)
	return enc.Encode(results)
}

// ReadJSON loads trial histories previously written with WriteJSON.
func ReadJSON(r io.Reader) ([]search.TrialResult, error) {
	var results []search.TrialResult
	dec := json.NewDecoder(r)
	if err := dec.Decode(&results); err != nil {
		return nil, err
	}
	return results, nil
}

// WriteFrontierCSV writes the frontier to w in CSV format.
func WriteFrontierCSV(w io.Writer, points []search.FrontierPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"electrified_station_count", "split_rotation_count", "rotations_below_zero"}); err != nil {
		return err
	}
	for _, p := range points {
		rec := []string{
			strconv.Itoa(p.ElectrifiedStationCount),
			strconv.Itoa(p.SplitRotationCount),
			strconv.Itoa(p.RotationsBelowZero),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
