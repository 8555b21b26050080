package search

import "sort"

// FrontierPoint is one cell of the cost frontier: the minimal observed
// infeasibility for a given number of electrified stations and split
// rotations.
type FrontierPoint struct {
	ElectrifiedStationCount int `json:"electrified_station_count"`
	SplitRotationCount      int `json:"split_rotation_count"`
	RotationsBelowZero      int `json:"rotations_below_zero"`
}

// BuildFrontier merges all step records of all trials, groups them by
// (electrified count, split count) and keeps the minimum infeasibility per
// group. Points are returned sorted by electrified count, then split count.
func BuildFrontier(results []TrialResult) []FrontierPoint {
	type cell struct{ electrified, split int }
	best := make(map[cell]int)
	for _, tr := range results {
		for _, rec := range tr.Records() {
			c := cell{rec.ElectrifiedStationCount, rec.SplitRotationCount}
			if prev, ok := best[c]; !ok || rec.RotationsBelowZero < prev {
				best[c] = rec.RotationsBelowZero
			}
		}
	}
	points := make([]FrontierPoint, 0, len(best))
	for c, score := range best {
		points = append(points, FrontierPoint{
			ElectrifiedStationCount: c.electrified,
			SplitRotationCount:      c.split,
			RotationsBelowZero:      score,
		})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].ElectrifiedStationCount != points[j].ElectrifiedStationCount {
			return points[i].ElectrifiedStationCount < points[j].ElectrifiedStationCount
		}
		return points[i].SplitRotationCount < points[j].SplitRotationCount
	})
	return points
}

// Pareto reduces the frontier to its non-dominated points. A point dominates
// another when it is at least as good in all three dimensions and strictly
// better in one.
func Pareto(points []FrontierPoint) []FrontierPoint {
	var front []FrontierPoint
	for i, p := range points {
		dominated := false
		for j, q := range points {
			if i == j {
				continue
			}
			if dominates(q, p) {
				dominated = true
				break
			}
		}
		if !dominated {
			front = append(front, p)
		}
	}
	return front
}

func dominates(a, b FrontierPoint) bool {
	if a.ElectrifiedStationCount > b.ElectrifiedStationCount ||
		a.SplitRotationCount > b.SplitRotationCount ||
		a.RotationsBelowZero > b.RotationsBelowZero {
		return false
	}
	return a.ElectrifiedStationCount < b.ElectrifiedStationCount ||
		a.SplitRotationCount < b.SplitRotationCount ||
		a.RotationsBelowZero < b.RotationsBelowZero
}
