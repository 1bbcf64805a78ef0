package core

// Columns is the CSV header, in file order.
var Columns = []string{"Name", "Position", "Gender", "Weight", "Tags"}

// TagSeparator joins tag names inside the Tags column.
const TagSeparator = "|"

// DefaultWeight is used when the Weight column is absent or empty.
const DefaultWeight = 1.0

// Known positions. The authoritative vocabulary lives in the positions table;
// these constants name the values the tooling itself reasons about.
const (
	PositionFirst    = "first"
	PositionLast     = "last"
	PositionTitle    = "title"
	PositionNickname = "nickname"
)

// Known genders.
const (
	GenderAny       = "any"
	GenderMale      = "male"
	GenderFemale    = "female"
	GenderAmbiguous = "ambiguous"
	GenderQueer     = "queer"
)

// Positions and Genders list the seeded vocabularies in seed order.
var (
	Positions = []string{PositionFirst, PositionLast, PositionTitle, PositionNickname}
	Genders   = []string{GenderAny, GenderMale, GenderFemale, GenderAmbiguous, GenderQueer}
)

// DefaultTag is the only tag a title carries once cleaned.
const DefaultTag = "Default"

// Row is one raw CSV record. Values are kept as text so a row can be
// loaded, rewritten and saved without reformatting untouched fields.
type Row struct {
	Name     string
	Position string
	Gender   string
	Weight   string
	Tags     string
}

// TagList returns the row's tags: split on the separator, trimmed,
// empty pieces dropped. Order is preserved.
func (r Row) TagList() []string {
	return SplitTags(r.Tags)
}

// HasTag reports whether tag is one of the row's tags.
func (r Row) HasTag(tag string) bool {
	for _, t := range r.TagList() {
		if t == tag {
			return true
		}
	}
	return false
}

// SetTags replaces the row's tags.
func (r *Row) SetTags(tags []string) {
	r.Tags = JoinTags(tags)
}

// Values returns the row as a CSV record in Columns order.
func (r Row) Values() []string {
	return []string{r.Name, r.Position, r.Gender, r.Weight, r.Tags}
}

// HeaderIndex maps column names (lowercase) to their position in the CSV row.
type HeaderIndex map[string]int

// Vocabulary holds the reference data a row is validated against,
// keyed by label with the database id as value. Built once per run.
type Vocabulary struct {
	Positions map[string]int64
	Genders   map[string]int64
	Tags      map[string]int64
}

// NewVocabulary returns an empty vocabulary ready to be filled.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		Positions: make(map[string]int64),
		Genders:   make(map[string]int64),
		Tags:      make(map[string]int64),
	}
}

// NameEntry is a validated row, resolved to database ids.
type NameEntry struct {
	Name       string
	Position   string
	PositionID int64
	Gender     string
	GenderID   int64
	Weight     float64
	Tags       []string
	TagIDs     []int64
}

// ExportedName is a name read back from the store.
type ExportedName struct {
	ID       int64
	Name     string
	Position string
	Gender   string
	Weight   float64
	Tags     []string
}

// Row flattens the exported name into a CSV record.
func (n ExportedName) Row() Row {
	return Row{
		Name:     n.Name,
		Position: n.Position,
		Gender:   n.Gender,
		Weight:   FormatWeight(n.Weight),
		Tags:     JoinTags(n.Tags),
	}
}
