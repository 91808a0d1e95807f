package pdf

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParsePageSpecifier parses a page specification string into a sorted,
// deduplicated list of 1-based page numbers.
// Supports formats: "1", "1,3", "1-5", "1,3-5,7"
func ParsePageSpecifier(pages string) ([]int, error) {
	pages = strings.Join(strings.Fields(pages), "")
	if pages == "" {
		return nil, fmt.Errorf("empty page specification")
	}

	var pageList []int
	for _, part := range strings.Split(pages, ",") {
		start, end, ok := strings.Cut(part, "-")
		if !ok {
			pageNum, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid page number: %s", part)
			}
			pageList = append(pageList, pageNum)
			continue
		}

		// Range like "1-5"
		lo, err := strconv.Atoi(start)
		if err != nil {
			return nil, fmt.Errorf("invalid start page: %s", start)
		}
		hi, err := strconv.Atoi(end)
		if err != nil {
			return nil, fmt.Errorf("invalid end page: %s", end)
		}
		if lo > hi {
			return nil, fmt.Errorf("invalid range: start > end (%d > %d)", lo, hi)
		}
		for i := lo; i <= hi; i++ {
			pageList = append(pageList, i)
		}
	}

	sort.Ints(pageList)
	deduped := []int{}
	for i, page := range pageList {
		if i == 0 || page != pageList[i-1] {
			deduped = append(deduped, page)
		}
	}

	return deduped, nil
}

// ValidatePageNumbers checks that every page number falls within 1..totalPages.
func ValidatePageNumbers(pages []int, totalPages int) error {
	for _, page := range pages {
		if page < 1 {
			return fmt.Errorf("page numbers must be positive, got %d", page)
		}
		if page > totalPages {
			return fmt.Errorf("page %d exceeds total pages (%d)", page, totalPages)
		}
	}
	return nil
}
