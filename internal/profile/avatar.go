package profile

import (
	"sort"
	"strconv"
	"strings"
)

// LargestVariant picks the URL whose "size_<n>" key has the largest numeric
// suffix. Keys are visited in sorted order so the choice is deterministic
// for equal sizes. An empty or unparseable map yields "".
func LargestVariant(urls map[string]string) string {
	if len(urls) == 0 {
		return ""
	}

	keys := make([]string, 0, len(urls))
	for k := range urls {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best := ""
	bestSize := -1
	for _, k := range keys {
		size := variantSize(k)
		if size > bestSize {
			bestSize = size
			best = k
		}
	}

	return urls[best]
}

func variantSize(key string) int {
	_, suffix, found := strings.Cut(key, "_")
	if !found {
		return 0
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0
	}
	return n
}
