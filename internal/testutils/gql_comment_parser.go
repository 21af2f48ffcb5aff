package testutils

import (
	"fmt"
	"regexp"
	"strings"
)

var subgraphHeaderRe = regexp.MustCompile(`(?m)^# subgraph:\s*([^\s]+)\s*$`)

// Subgraph is one source schema cut out of a multi-subgraph test asset.
type Subgraph struct {
	Name string
	SDL  string
}

// SplitSubgraphs cuts source at every "# subgraph: <name>" line.
// Text before the first header holds options and is ignored.
func SplitSubgraphs(t TestingT, source string) []*Subgraph {
	t.Helper()

	locs := subgraphHeaderRe.FindAllStringSubmatchIndex(source, -1)
	if len(locs) == 0 {
		t.Fatal("no subgraph header found")
	}

	result := make([]*Subgraph, 0, len(locs))
	for i, loc := range locs {
		end := len(source)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		result = append(result, &Subgraph{
			Name: source[loc[2]:loc[3]],
			SDL:  source[loc[1]:end],
		})
	}

	return result
}

func FindOptionString(t TestingT, optionName, source string) string {
	t.Helper()

	pattern := fmt.Sprintf("(?m)^# option:%s:\\s*([^\\s]+)$", optionName)
	re, err := regexp.Compile(pattern)
	if err != nil {
		t.Fatal(err)
	}

	ss := re.FindStringSubmatch(source)
	if len(ss) != 2 {
		t.Logf("option %s value is not found", optionName)
		return ""
	}

	return ss[1]
}

func FindOptionBool(t TestingT, optionName, source string) bool {
	t.Helper()

	return FindOptionString(t, optionName, source) == "true"
}

// FindOptionList reads a comma separated option value.
func FindOptionList(t TestingT, optionName, source string) []string {
	t.Helper()

	value := FindOptionString(t, optionName, source)
	if value == "" {
		return nil
	}

	return strings.Split(value, ",")
}
