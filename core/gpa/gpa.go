// Package gpa computes credit-weighted grade-point averages.
//
// Everything here is pure: the grade table is injected by the caller
// (it lives on core.Config) and functions never touch shared state, so
// the same input always yields the same output.
package gpa

import (
	"math"
	"sort"
	"strconv"
)

// Table maps a grade label to its point value.
type Table map[string]float64

// PointsOf returns the point value for a grade label. An unknown label
// scores 0 points; it is not an error. Courses recorded before a grade
// scale change still aggregate, they just pull the average down.
func (t Table) PointsOf(grade string) float64 {
	return t[grade]
}

// Labels returns the table's grade labels ordered by descending points,
// ties broken alphabetically. Used to populate grade selects.
func (t Table) Labels() []string {
	labels := make([]string, 0, len(t))
	for label := range t {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		pi, pj := t[labels[i]], t[labels[j]]
		if pi != pj {
			return pi > pj
		}
		return labels[i] < labels[j]
	})
	return labels
}

// Course is the minimal course shape the engine aggregates over.
type Course struct {
	Grade   string
	Credits int
}

// ComputeAverage returns the credit-weighted grade-point average of
// courses as a fixed-point string with 2 decimal places, rounded
// half-up. An empty list, or a list whose credits sum to zero, yields
// "0.00" rather than an error.
//
// The same function produces both figures the dashboard shows: SGPA
// when fed one semester's courses, CGPA when fed the flattened list of
// every semester's courses. CGPA must be computed over the flattened
// list; an average of per-semester averages weights semesters equally
// regardless of credit load and is wrong whenever those loads differ.
func ComputeAverage(table Table, courses []Course) string {
	var totalPoints float64
	var totalCredits int
	for _, c := range courses {
		totalPoints += table.PointsOf(c.Grade) * float64(c.Credits)
		totalCredits += c.Credits
	}
	if totalCredits <= 0 {
		return "0.00"
	}
	return formatFixed(totalPoints / float64(totalCredits))
}

// TotalCredits sums course credits with no grade weighting.
func TotalCredits(courses []Course) int {
	var total int
	for _, c := range courses {
		total += c.Credits
	}
	return total
}

// Distribution counts courses per grade label. Keys are the raw grade
// strings as stored, not normalized; display-only data.
func Distribution(courses []Course) map[string]int {
	dist := make(map[string]int, len(courses))
	for _, c := range courses {
		dist[c.Grade]++
	}
	return dist
}

// formatFixed rounds half-up to 2 decimal places and renders the result
// as a fixed-point string to avoid floating-point display artifacts.
func formatFixed(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', 2, 64)
}
