package stats

import (
	"math"
	"strconv"
)

// DefaultBins is the bin count used for decimal-valued events.
const DefaultBins = 30

// Integer-valued data picks its bin width from the value range.
const (
	unitBinRange   = 30
	fiveBinRange   = 100
	fiveBinWidth   = 5
	tenBinWidth    = 10
	labelPrecision = 1
)

// Bin is one histogram bar.
type Bin struct {
	Label string  `json:"label"`
	Start float64 `json:"start"`
	Count int     `json:"count"`
}

// Histogram buckets values for a chart renderer. Integer-valued data gets
// whole-number bins, decimal data gets `bins` equal-width bins. The last bin
// is closed on the right.
func Histogram(values []float64, bins int) []Bin {
	if len(values) == 0 {
		return []Bin{}
	}
	if bins <= 0 {
		bins = DefaultBins
	}
	lo, hi := values[0], values[0]
	allInt := true
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		if v != math.Trunc(v) {
			allInt = false
		}
	}
	span := hi - lo

	var count int
	var width float64
	switch {
	case allInt && span <= unitBinRange:
		count, width = int(span)+1, 1
	case allInt && span <= fiveBinRange:
		count, width = int(math.Ceil(span/fiveBinWidth)), fiveBinWidth
	case allInt:
		count, width = int(math.Ceil(span/tenBinWidth)), tenBinWidth
	case span == 0:
		count, width = 1, 1
	default:
		count, width = bins, span/float64(bins)
	}
	if count < 1 {
		count = 1
	}

	out := make([]Bin, count)
	for i := range out {
		start := lo + float64(i)*width
		out[i].Start = start
		if allInt {
			out[i].Label = strconv.Itoa(int(math.Round(start)))
		} else {
			out[i].Label = strconv.FormatFloat(start, 'f', labelPrecision, 64)
		}
	}
	for _, v := range values {
		i := int(math.Floor((v - lo) / width))
		if i >= count {
			i = count - 1
		}
		out[i].Count++
	}
	return out
}
