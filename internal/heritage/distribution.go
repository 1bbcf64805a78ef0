package heritage

import (
	"sort"
	"strings"

	"github.com/Eigenbraid/Dice/internal/core"
)

// HeritageCount is the number of names of one heritage, per position.
type HeritageCount struct {
	Heritage string
	First    int
	Last     int
	Nickname int
}

// Total sums the positions.
func (c HeritageCount) Total() int {
	return c.First + c.Last + c.Nickname
}

// Distribution counts first, last and nickname rows per heritage tag,
// sorted by heritage. A row with several heritage tags counts toward each.
func Distribution(rows []core.Row) []HeritageCount {
	counts := make(map[string]*HeritageCount)

	for _, row := range rows {
		if !eligible(row.Position) {
			continue
		}
		for _, tag := range row.TagList() {
			heritage, ok := strings.CutPrefix(tag, TagPrefix)
			if !ok {
				continue
			}
			c, ok := counts[heritage]
			if !ok {
				c = &HeritageCount{Heritage: heritage}
				counts[heritage] = c
			}
			switch row.Position {
			case core.PositionFirst:
				c.First++
			case core.PositionLast:
				c.Last++
			case core.PositionNickname:
				c.Nickname++
			}
		}
	}

	out := make([]HeritageCount, 0, len(counts))
	for _, c := range counts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Heritage < out[j].Heritage })
	return out
}
