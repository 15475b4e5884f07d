package seventv

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	// MaxIDsPerQuery caps the aliased emote(id) sub-queries in one document.
	MaxIDsPerQuery = 10

	nameSearchLimit = 10
)

var (
	ErrTooManyIDs = errors.Errorf("more than %d ids in one query", MaxIDsPerQuery)
	ErrEmptyBatch = errors.New("query without sub-queries")
)

// Document is a serialized GraphQL request plus the alias -> input table
// needed to read the response back.
type Document struct {
	Query     string
	Variables map[string]any
	Subs      []Subquery
}

// Subquery ties a response alias to the input it was built from.
type Subquery struct {
	Alias string
	Key   string
}

type (
	value interface {
		write(sb *strings.Builder)
	}

	intValue    int
	boolValue   bool
	enumValue   string
	stringValue string
	varRef      string
	objectValue []argument

	argument struct {
		name  string
		value value
	}

	field struct {
		alias     string
		name      string
		args      []argument
		selection []field
	}

	variable struct {
		name     string
		typeName string
	}
)

func (v intValue) write(sb *strings.Builder)  { sb.WriteString(strconv.Itoa(int(v))) }
func (v boolValue) write(sb *strings.Builder) { sb.WriteString(strconv.FormatBool(bool(v))) }
func (v enumValue) write(sb *strings.Builder) { sb.WriteString(string(v)) }
func (v varRef) write(sb *strings.Builder)    { sb.WriteString("$" + string(v)) }

func (v stringValue) write(sb *strings.Builder) {
	// JSON string escapes are a subset of GraphQL's.
	b, _ := json.Marshal(string(v))
	sb.Write(b)
}

func (v objectValue) write(sb *strings.Builder) {
	sb.WriteString("{")
	writeArgs(sb, v)
	sb.WriteString("}")
}

func writeArgs(sb *strings.Builder, args []argument) {
	for i, a := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.name)
		sb.WriteString(": ")
		a.value.write(sb)
	}
}

func (f field) write(sb *strings.Builder) {
	if f.alias != "" {
		sb.WriteString(f.alias)
		sb.WriteString(": ")
	}
	sb.WriteString(f.name)

	if len(f.args) > 0 {
		sb.WriteString("(")
		writeArgs(sb, f.args)
		sb.WriteString(")")
	}

	if len(f.selection) > 0 {
		sb.WriteString(" {")
		for _, s := range f.selection {
			sb.WriteString(" ")
			s.write(sb)
		}
		sb.WriteString(" }")
	}
}

func serialize(vars []variable, fields []field) string {
	var sb strings.Builder

	sb.WriteString("query")
	if len(vars) > 0 {
		sb.WriteString("(")
		for i, v := range vars {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("$" + v.name + ": " + v.typeName)
		}
		sb.WriteString(")")
	}

	sb.WriteString(" {")
	for _, f := range fields {
		sb.WriteString(" ")
		f.write(&sb)
	}
	sb.WriteString(" }")

	return sb.String()
}

func emoteSelection() []field {
	return []field{
		{name: "id"},
		{name: "name"},
		{name: "animated"},
		{name: "host", selection: []field{
			{name: "files", selection: []field{{name: "format"}}},
		}},
	}
}

func itemsSelection() []field {
	return []field{{name: "items", selection: emoteSelection()}}
}

// CategoryQuery requests pages offset+1..offset+pages of a ranked category,
// each aliased page<N>.
func CategoryQuery(pages int, category string, pageOffset, limit int) Document {
	doc := Document{}
	fields := make([]field, 0, pages)

	for page := pageOffset + 1; page <= pageOffset+pages; page++ {
		alias := fmt.Sprintf("page%d", page)

		fields = append(fields, field{
			alias: alias,
			name:  "emotes",
			args: []argument{
				{"query", stringValue("")},
				{"page", intValue(page)},
				{"limit", intValue(limit)},
				{"filter", objectValue{
					{"category", enumValue(category)},
					{"exact_match", boolValue(false)},
					{"case_sensitive", boolValue(false)},
					{"ignore_tags", boolValue(false)},
				}},
			},
			selection: itemsSelection(),
		})
		doc.Subs = append(doc.Subs, Subquery{Alias: alias, Key: strconv.Itoa(page)})
	}

	doc.Query = serialize(nil, fields)

	return doc
}

// NameQuery searches every name with an exact, case-sensitive filter. Names
// travel as variables; aliases are positional.
func NameQuery(names []string) (Document, error) {
	return positional(names, "emote", "String!", func(alias, v string) field {
		return field{
			alias: alias,
			name:  "emotes",
			args: []argument{
				{"query", varRef(v)},
				{"page", intValue(1)},
				{"limit", intValue(nameSearchLimit)},
				{"filter", objectValue{
					{"exact_match", boolValue(true)},
					{"case_sensitive", boolValue(true)},
					{"ignore_tags", boolValue(true)},
				}},
			},
			selection: itemsSelection(),
		}
	})
}

// IDQuery looks up at most MaxIDsPerQuery emotes by id.
func IDQuery(ids []string) (Document, error) {
	if len(ids) > MaxIDsPerQuery {
		return Document{}, errors.Wrap(ErrTooManyIDs, "IDQuery")
	}

	return positional(ids, "emote", "ObjectID!", func(alias, v string) field {
		return field{
			alias:     alias,
			name:      "emote",
			args:      []argument{{"id", varRef(v)}},
			selection: emoteSelection(),
		}
	})
}

// ChannelQuery fetches the emote sets of Twitch channels.
func ChannelQuery(channelIDs []string) (Document, error) {
	return positional(channelIDs, "channel", "String!", func(alias, v string) field {
		return field{
			alias: alias,
			name:  "userByConnection",
			args: []argument{
				{"platform", enumValue("TWITCH")},
				{"id", varRef(v)},
			},
			selection: []field{
				{name: "emote_sets", selection: []field{
					{name: "emotes", selection: []field{
						{name: "data", selection: emoteSelection()},
					}},
				}},
			},
		}
	})
}

func positional(inputs []string, prefix, varType string, build func(alias, v string) field) (Document, error) {
	if len(inputs) == 0 {
		return Document{}, errors.Wrap(ErrEmptyBatch, prefix)
	}

	doc := Document{Variables: make(map[string]any, len(inputs))}
	vars := make([]variable, 0, len(inputs))
	fields := make([]field, 0, len(inputs))

	for i, in := range inputs {
		alias := fmt.Sprintf("%s_%d", prefix, i)
		v := fmt.Sprintf("v%d", i)

		vars = append(vars, variable{name: v, typeName: varType})
		fields = append(fields, build(alias, v))
		doc.Variables[v] = in
		doc.Subs = append(doc.Subs, Subquery{Alias: alias, Key: in})
	}

	doc.Query = serialize(vars, fields)

	return doc, nil
}
