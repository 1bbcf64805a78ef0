package heritage

import "github.com/Eigenbraid/Dice/internal/core"

// TitleChange records a title whose tags were replaced.
type TitleChange struct {
	Name    string
	OldTags string
}

// CleanTitles sets the Tags of every title row to exactly the default tag.
// rows is not modified.
func CleanTitles(rows []core.Row) ([]core.Row, []TitleChange) {
	out := make([]core.Row, len(rows))
	copy(out, rows)

	var changes []TitleChange
	for i := range out {
		if out[i].Position != core.PositionTitle || out[i].Tags == core.DefaultTag {
			continue
		}
		changes = append(changes, TitleChange{Name: out[i].Name, OldTags: out[i].Tags})
		out[i].Tags = core.DefaultTag
	}
	return out, changes
}
