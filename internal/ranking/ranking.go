// Package ranking turns a probability vector into the ordered, thresholded
// result shown to the user. It has no I/O and no knowledge of the model.
package ranking

import (
	"fmt"
	"math"
	"sort"
)

// Threshold is the minimum top-class percentage for a positive identification.
const Threshold = 20

// NotRecognized is the status shown when the top class is below Threshold.
const NotRecognized = "Style not recognized in the AnalyArt system."

// Entry is one class with its rounded percentage.
type Entry struct {
	Label   string `json:"label"`
	Percent int    `json:"percent"`
}

// Result is a ranked classification.
type Result struct {
	Entries    []Entry `json:"rankings"`
	Top        Entry   `json:"top"`
	Recognized bool    `json:"recognized"`
	Status     string  `json:"status"`
}

// Percent converts a score in [0,1] to a whole percentage, rounding halves up.
func Percent(score float32) int {
	return int(math.Floor(float64(score)*100 + 0.5))
}

// Rank zips scores with labels by position, sorts by descending percentage
// and applies the Threshold. Ties keep label order. Extra scores or labels
// beyond the shorter of the two are ignored.
func Rank(scores []float32, labels []string) Result {
	n := len(scores)
	if len(labels) < n {
		n = len(labels)
	}

	entries := make([]Entry, n)
	for i := 0; i < n; i++ {
		entries[i] = Entry{Label: labels[i], Percent: Percent(scores[i])}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Percent > entries[j].Percent
	})

	res := Result{Entries: entries, Status: NotRecognized}
	if n == 0 {
		return res
	}
	res.Top = entries[0]
	if res.Top.Percent >= Threshold {
		res.Recognized = true
		res.Status = fmt.Sprintf("Identified Movement: %s", res.Top.Label)
	}
	return res
}

// Visible returns the entries to display: all of them for a recognized
// result, none otherwise.
func (r Result) Visible() []Entry {
	if !r.Recognized {
		return nil
	}
	return r.Entries
}
