package ircrawl

import "sort"

// SortReports orders reports in place: dated reports first by year
// descending; within a year, reports with a quarter come first by quarter
// descending, followed by quarter-less ones. Undated reports go last. Ties
// keep encounter order.
func SortReports(reports []ClassifiedReport) {
	sort.SliceStable(reports, func(i, j int) bool {
		return reportLess(reports[i], reports[j])
	})
}

func reportLess(a, b ClassifiedReport) bool {
	if (a.Year != 0) != (b.Year != 0) {
		return a.Year != 0
	}
	if a.Year != b.Year {
		return a.Year > b.Year
	}
	if (a.Quarter != 0) != (b.Quarter != 0) {
		return a.Quarter != 0
	}
	return a.Quarter > b.Quarter
}
