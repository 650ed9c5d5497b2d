package errs

import (
	"sort"
	"strings"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zconst"
)

// FromIssues turns zog issues into one ValidationError listing every
// problem, ordered by path. Issues on the validated value itself carry no
// path prefix.
func FromIssues(issues z.ZogIssueMap) error {
	if len(issues) == 0 {
		return nil
	}
	paths := make([]string, 0, len(issues))
	for path := range issues {
		if path == zconst.ISSUE_KEY_FIRST {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var lines []string
	for _, path := range paths {
		for _, issue := range issues[path] {
			if path == zconst.ISSUE_KEY_ROOT || path == "" {
				lines = append(lines, issue.Message)
				continue
			}
			lines = append(lines, path+": "+issue.Message)
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return Validation("%s", strings.Join(lines, "; "))
}
