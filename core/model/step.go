package model

// StepRecord is the immutable log entry appended after each accepted search
// step. The JSON field names match the persisted results schema.
type StepRecord struct {
	ElectrifiedStationCount int     `json:"electrified_station_count"`
	ChargingStationIDs      []int64 `json:"charging_station_ids"`
	SplitRotationCount      int     `json:"split_rotation_count"`
	SplitRotationIDs        []int64 `json:"split_rotation_ids"`
	RotationsBelowZero      int     `json:"rotations_below_zero"`
}
