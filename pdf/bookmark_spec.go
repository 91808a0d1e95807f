package pdf

import (
	"fmt"
	"strconv"
	"strings"
)

// AddBookmarksFromSpec adds bookmarks described by a plain-text outline, one
// bookmark per line in the form "title|page" with a 1-based page number.
// Leading spaces give nesting depth: a line indented one level deeper than
// the previous line becomes a child of it. Blank lines are ignored.
//
//	Introduction|1
//	 Motivation|2
//	 Results|5
//	Appendix|9
func (d *Document) AddBookmarksFromSpec(spec string) error {
	var stack []*Bookmark // stack[i] holds the last bookmark seen at depth i

	for i, line := range strings.Split(spec, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		depth := len(line) - len(strings.TrimLeft(line, " "))
		title, page, err := parseBookmarkLine(strings.TrimSpace(line))
		if err != nil {
			return fmt.Errorf("line %d: %v", i+1, err)
		}
		if err := ValidatePageNumbers([]int{page}, d.PageCount()); err != nil {
			return fmt.Errorf("line %d: %v", i+1, err)
		}
		if depth > len(stack) {
			return fmt.Errorf("line %d: indentation skips a level", i+1)
		}

		var parent *Bookmark
		if depth > 0 {
			parent = stack[depth-1]
		}
		b, err := d.AddBookmark(title, page-1, parent)
		if err != nil {
			return err
		}
		stack = append(stack[:depth], b)
	}

	return nil
}

func parseBookmarkLine(line string) (string, int, error) {
	sep := strings.LastIndex(line, "|")
	if sep < 0 {
		return "", 0, fmt.Errorf("expected \"title|page\", got %q", line)
	}
	title := strings.TrimSpace(line[:sep])
	if title == "" {
		return "", 0, fmt.Errorf("empty title in %q", line)
	}
	page, err := strconv.Atoi(strings.TrimSpace(line[sep+1:]))
	if err != nil {
		return "", 0, fmt.Errorf("invalid page number in %q", line)
	}
	return title, page, nil
}
