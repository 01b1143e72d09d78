package verify

import "sort"

// DiffURLs compares the expected leaf URL set of a section against the
// URLs actually persisted for it. Missing URLs were never recorded; extra
// URLs are records the live navigation no longer reaches. Both slices come
// back sorted for stable reporting.
func DiffURLs(expected, actual map[string]struct{}) (missing, extra []string) {
	for url := range expected {
		if _, ok := actual[url]; !ok {
			missing = append(missing, url)
		}
	}
	for url := range actual {
		if _, ok := expected[url]; !ok {
			extra = append(extra, url)
		}
	}
	sort.Strings(missing)
	sort.Strings(extra)
	return missing, extra
}
