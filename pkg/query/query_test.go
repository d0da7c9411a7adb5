package query_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/proprio/docintake/pkg/query"
)

func testProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "documents", "d").
		Project("id", "id").
		Project("filename", "filename").
		Project("status", "status").
		Project("uploaded_at", "uploadedAt")
}

func TestProjectionMapFrom(t *testing.T) {
	p := testProjection()
	if got, want := p.From(), "public.documents d"; got != want {
		t.Errorf("From() = %q, want %q", got, want)
	}
}

func TestProjectionMapColumn(t *testing.T) {
	p := testProjection()

	if got, want := p.Column("uploadedAt"), "d.uploaded_at"; got != want {
		t.Errorf("Column(uploadedAt) = %q, want %q", got, want)
	}
	if got, want := p.Column("unmapped"), "unmapped"; got != want {
		t.Errorf("Column(unmapped) = %q, want %q", got, want)
	}
}

func TestProjectionMapColumns(t *testing.T) {
	p := testProjection()
	want := "d.id, d.filename, d.status, d.uploaded_at"
	if got := p.Columns(); got != want {
		t.Errorf("Columns() = %q, want %q", got, want)
	}
}

func TestBuilderBuildNoConditions(t *testing.T) {
	sql, args := query.NewBuilder(testProjection()).Build()

	want := "SELECT d.id, d.filename, d.status, d.uploaded_at FROM public.documents d"
	if sql != want {
		t.Errorf("Build() sql = %q, want %q", sql, want)
	}
	if len(args) != 0 {
		t.Errorf("Build() args = %v, want none", args)
	}
}

func TestBuilderWhereEquals(t *testing.T) {
	status := "active"
	sql, args := query.NewBuilder(testProjection()).
		WhereEquals("status", status).
		Build()

	want := "SELECT d.id, d.filename, d.status, d.uploaded_at FROM public.documents d WHERE d.status = $1"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"active"}) {
		t.Errorf("args = %v, want [active]", args)
	}
}

func TestBuilderWhereEqualsNilPointerSkipped(t *testing.T) {
	var status *string
	sql, _ := query.NewBuilder(testProjection()).
		WhereEquals("status", status).
		Build()

	if got := sql; got != "SELECT d.id, d.filename, d.status, d.uploaded_at FROM public.documents d" {
		t.Errorf("nil WhereEquals should be a no-op, got %q", got)
	}
}

func TestBuilderWhereInNumbersParams(t *testing.T) {
	sql, args := query.NewBuilder(testProjection()).
		WhereIn("status", []any{"draft", "active"}).
		Build()

	want := "SELECT d.id, d.filename, d.status, d.uploaded_at FROM public.documents d WHERE d.status IN ($1, $2)"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"draft", "active"}) {
		t.Errorf("args = %v", args)
	}
}

func TestBuilderConditionsCombineWithAnd(t *testing.T) {
	search := "quittance"
	sql, args := query.NewBuilder(testProjection()).
		WhereEquals("status", "active").
		WhereSearch(&search, "filename").
		Build()

	want := "SELECT d.id, d.filename, d.status, d.uploaded_at FROM public.documents d" +
		" WHERE d.status = $1 AND (d.filename ILIKE $2)"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"active", "%quittance%"}) {
		t.Errorf("args = %v", args)
	}
}

func TestBuilderWhereSearchMultipleFields(t *testing.T) {
	search := "juin"
	sql, args := query.NewBuilder(testProjection()).
		WhereSearch(&search, "filename", "status").
		Build()

	want := "SELECT d.id, d.filename, d.status, d.uploaded_at FROM public.documents d" +
		" WHERE (d.filename ILIKE $1 OR d.status ILIKE $2)"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 2 {
		t.Errorf("args = %v, want 2 entries", args)
	}
}

func TestBuilderDefaultSortAndOverride(t *testing.T) {
	builder := query.NewBuilder(
		testProjection(),
		query.SortField{Field: "uploadedAt", Descending: true},
	)

	sql, _ := builder.Build()
	if want := " ORDER BY d.uploaded_at DESC"; !strings.HasSuffix(sql, want) {
		t.Errorf("default sort missing, sql = %q", sql)
	}

	sql, _ = builder.OrderByFields([]query.SortField{{Field: "filename"}}).Build()
	if want := " ORDER BY d.filename ASC"; !strings.HasSuffix(sql, want) {
		t.Errorf("override sort missing, sql = %q", sql)
	}
}

func TestBuilderBuildPage(t *testing.T) {
	sql, _ := query.NewBuilder(testProjection()).BuildPage(3, 25)

	want := "SELECT d.id, d.filename, d.status, d.uploaded_at FROM public.documents d LIMIT 25 OFFSET 50"
	if sql != want {
		t.Errorf("BuildPage(3, 25) = %q, want %q", sql, want)
	}
}

func TestBuilderBuildCount(t *testing.T) {
	sql, args := query.NewBuilder(testProjection()).
		WhereEquals("status", "active").
		BuildCount()

	want := "SELECT COUNT(*) FROM public.documents d WHERE d.status = $1"
	if sql != want {
		t.Errorf("BuildCount() = %q, want %q", sql, want)
	}
	if len(args) != 1 {
		t.Errorf("args = %v, want 1 entry", args)
	}
}

func TestBuilderBuildSingle(t *testing.T) {
	sql, args := query.NewBuilder(testProjection()).BuildSingle("id", "abc")

	want := "SELECT d.id, d.filename, d.status, d.uploaded_at FROM public.documents d WHERE d.id = $1"
	if sql != want {
		t.Errorf("BuildSingle() = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"abc"}) {
		t.Errorf("args = %v, want [abc]", args)
	}
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []query.SortField
	}{
		{"empty", "", nil},
		{"single ascending", "filename", []query.SortField{{Field: "filename"}}},
		{"single descending", "-uploadedAt", []query.SortField{{Field: "uploadedAt", Descending: true}}},
		{
			"mixed with spaces",
			"filename, -uploadedAt",
			[]query.SortField{
				{Field: "filename"},
				{Field: "uploadedAt", Descending: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := query.ParseSortFields(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSortFields(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
