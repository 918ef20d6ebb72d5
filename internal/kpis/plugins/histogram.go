// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package plugins

// Bucket a list of records into per-key histograms, for exposure via
// prometheus.MustNewConstHistogram. keysFunc may assign one record to
// several keys; valueFunc extracts the observed value.
func Histogram[R any](
	records []R,
	buckets []float64,
	keysFunc func(R) []string,
	valueFunc func(R) float64,
) (
	hists map[string]map[float64]uint64, // By key
	counts map[string]uint64, // By key
	sums map[string]float64, // By key
) {

	hists = map[string]map[float64]uint64{}
	counts = map[string]uint64{}
	sums = map[string]float64{}
	for _, record := range records {
		value := valueFunc(record)
		for _, key := range keysFunc(record) {
			if _, ok := hists[key]; !ok {
				hists[key] = make(map[float64]uint64, len(buckets))
			}
			for _, bucket := range buckets {
				if value <= bucket {
					hists[key][bucket]++
				}
			}
			counts[key]++
			sums[key] += value
		}
	}
	// Fill up empty buckets
	for key, hist := range hists {
		for _, bucket := range buckets {
			if _, ok := hist[bucket]; !ok {
				hists[key][bucket] = 0
			}
		}
	}
	return hists, counts, sums
}
