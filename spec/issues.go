package spec

import (
	"sort"

	tsspec "github.com/reoring/tsspec"
)

func sortIssues(iss tsspec.Issues) tsspec.Issues {
	sort.SliceStable(iss, func(i, j int) bool { return iss[i].Path < iss[j].Path })
	return iss
}
