package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/jobs-observatory/internal/record"
)

func TestList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "nil", in: nil, want: []string{}},
		{name: "empty string", in: "", want: []string{}},
		{name: "postgres array", in: "{Python,SQL,Go}", want: []string{"Python", "SQL", "Go"}},
		{name: "mixed quotes and spaces", in: "{Python, SQL,'Go'}", want: []string{"Python", "SQL", "Go"}},
		{name: "python repr", in: "['Spark', 'Airflow']", want: []string{"Spark", "Airflow"}},
		{name: "double quoted", in: `{"Machine Learning","NLP"}`, want: []string{"Machine Learning", "NLP"}},
		{name: "empty brackets", in: "[]", want: []string{}},
		{name: "empty braces", in: "{}", want: []string{}},
		{name: "only separators", in: " , ,, ", want: []string{}},
		{name: "single value", in: "Excel", want: []string{"Excel"}},
		{name: "quotes inside value", in: "{O'Reilly}", want: []string{"OReilly"}},
		{name: "string slice passthrough", in: []string{" a ", "b"}, want: []string{" a ", "b"}},
		{name: "any slice passthrough", in: []any{"a", 1}, want: []any{"a", 1}},
		{name: "number", in: 42, want: []string{}},
		{name: "bool", in: true, want: []string{}},
		{name: "map", in: map[string]any{"a": 1}, want: []string{}},
		{name: "time", in: time.Unix(0, 0), want: []string{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, List(tt.in))
		})
	}
}

func TestListIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []any{nil, "", "{A, B}", "['x','y']", []string{"k"}, 3.5}
	for _, in := range inputs {
		once := List(in)
		assert.Equal(t, once, List(once), "input %#v", in)
	}
}

func TestRowNormalizesOnlyListedFields(t *testing.T) {
	t.Parallel()

	in := record.FromPairs(
		"id", int64(3),
		"technical_skills", "{Python, SQL}",
		"tools_used", nil,
		"company", nil,
		"title", "{not a list}",
	)

	out := Row(in, []string{"technical_skills", "tools_used", "benefits"})

	skills, _ := out.Get("technical_skills")
	assert.Equal(t, []string{"Python", "SQL"}, skills)
	tools, _ := out.Get("tools_used")
	assert.Equal(t, []string{}, tools)
	benefits, ok := out.Get("benefits")
	require.True(t, ok)
	assert.Equal(t, []string{}, benefits)

	company, ok := out.Get("company")
	require.True(t, ok)
	assert.Nil(t, company)
	title, _ := out.Get("title")
	assert.Equal(t, "{not a list}", title)

	original, _ := in.Get("technical_skills")
	assert.Equal(t, "{Python, SQL}", original, "input row must not be mutated")
}

func TestRowWithoutFieldsReturnsInput(t *testing.T) {
	t.Parallel()

	in := record.FromPairs("domains", "{A}")
	out := Row(in, nil)
	v, _ := out.Get("domains")
	assert.Equal(t, "{A}", v)
}

func TestRows(t *testing.T) {
	t.Parallel()

	rows := []record.Row{
		record.FromPairs("domains", "{Health}"),
		record.FromPairs("domains", nil),
	}
	out := Rows(rows, []string{"domains"})
	require.Len(t, out, 2)
	first, _ := out[0].Get("domains")
	second, _ := out[1].Get("domains")
	assert.Equal(t, []string{"Health"}, first)
	assert.Equal(t, []string{}, second)
}
