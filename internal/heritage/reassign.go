package heritage

import (
	"fmt"

	"github.com/Eigenbraid/Dice/internal/core"
)

// Change records one reassigned name.
type Change struct {
	Name     string
	Position string
	From     string // heritage, without the tag prefix
	To       string
}

func (c Change) String() string {
	return fmt.Sprintf("%s (%s): %s -> %s", c.Name, c.Position, c.From, c.To)
}

// eligible reports whether a position takes part in heritage reassignment.
// Titles are universal and carry no heritage.
func eligible(position string) bool {
	switch position {
	case core.PositionFirst, core.PositionLast, core.PositionNickname:
		return true
	}
	return false
}

// Reassign moves names tagged with the default heritage to the first
// heritage whose rule matches. The default tag is removed and the new tag
// appended unless already present. rows is not modified.
func Reassign(rows []core.Row, rules *RuleSet) ([]core.Row, []Change) {
	out := make([]core.Row, len(rows))
	copy(out, rows)

	defaultTag := rules.DefaultTag()
	var changes []Change

	for i := range out {
		row := &out[i]
		if !eligible(row.Position) || !row.HasTag(defaultTag) {
			continue
		}

		heritage := rules.Match(row.Name)
		if heritage == "" {
			continue
		}
		newTag := rules.Tag(heritage)

		tags := row.TagList()
		kept := make([]string, 0, len(tags)+1)
		hasNew := false
		for _, t := range tags {
			if t == defaultTag {
				continue
			}
			if t == newTag {
				hasNew = true
			}
			kept = append(kept, t)
		}
		if !hasNew {
			kept = append(kept, newTag)
		}
		row.SetTags(kept)

		changes = append(changes, Change{
			Name:     row.Name,
			Position: row.Position,
			From:     rules.Default,
			To:       heritage,
		})
	}

	return out, changes
}
