// Package util contains misc internal utilities shared across the
// controller's packages.
package util

import (
	"strconv"
	"strings"
	"time"
)

// IntSliceToCSV converts a slice of ints to CSV formatted data.
// e.g., []int{1,2,3,4,5} => "1,2,3,4,5"
func IntSliceToCSV(is []int) string {
	s := make([]string, len(is))
	for i, v := range is {
		s[i] = strconv.Itoa(v)
	}

	return strings.Join(s, ",")
}

// Float64SliceToCSV converts a slice of f64s to CSV formatted data.
// sensible default values for fmt and prec are 'G' and 3 to print with
// 3 significant digits, and 'ordinary' notation
func Float64SliceToCSV(fs []float64, fmt byte, prec int) string {
	s := make([]string, len(fs))
	for i, v := range fs {
		s[i] = strconv.FormatFloat(v, fmt, prec, 64)
	}
	return strings.Join(s, ",")
}

// UniqueString reduces a slice of strings to the unique values.
func UniqueString(slice []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, v := range slice {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Clamp limits min <= input <= max.
func Clamp(input, min, max float64) float64 {
	if input < min {
		return min
	}
	if input > max {
		return max
	}
	return input
}

// Limiter represents a basic set of min/max soft limits.
type Limiter struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Clamp limits min <= input <= max.
func (l *Limiter) Clamp(input float64) float64 {
	return Clamp(input, l.Min, l.Max)
}

// Check reports whether min <= input <= max.
func (l *Limiter) Check(input float64) bool {
	return input >= l.Min && input <= l.Max
}

// SecsToDuration converts floating point seconds to a time.Duration.
func SecsToDuration(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}
