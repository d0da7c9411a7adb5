package pagination_test

import (
	"net/url"
	"testing"

	"github.com/proprio/docintake/pkg/pagination"
	"github.com/proprio/docintake/pkg/query"
)

func testConfig() pagination.Config {
	return pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
}

func TestConfigFinalizeDefaults(t *testing.T) {
	var cfg pagination.Config
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if cfg.DefaultPageSize != 20 {
		t.Errorf("DefaultPageSize = %d, want 20", cfg.DefaultPageSize)
	}
	if cfg.MaxPageSize != 100 {
		t.Errorf("MaxPageSize = %d, want 100", cfg.MaxPageSize)
	}
}

func TestConfigFinalizeEnvOverride(t *testing.T) {
	t.Setenv("TEST_PAGE_DEFAULT", "10")
	t.Setenv("TEST_PAGE_MAX", "50")

	var cfg pagination.Config
	err := cfg.Finalize(&pagination.ConfigEnv{
		DefaultPageSize: "TEST_PAGE_DEFAULT",
		MaxPageSize:     "TEST_PAGE_MAX",
	})
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if cfg.DefaultPageSize != 10 {
		t.Errorf("DefaultPageSize = %d, want 10", cfg.DefaultPageSize)
	}
	if cfg.MaxPageSize != 50 {
		t.Errorf("MaxPageSize = %d, want 50", cfg.MaxPageSize)
	}
}

func TestConfigFinalizeRejectsDefaultAboveMax(t *testing.T) {
	cfg := pagination.Config{DefaultPageSize: 200, MaxPageSize: 100}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("Finalize() expected error when default exceeds max")
	}
}

func TestPageRequestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		page         int
		pageSize     int
		wantPage     int
		wantPageSize int
	}{
		{"zero values", 0, 0, 1, 20},
		{"negative page", -3, 10, 1, 10},
		{"oversized page size clamped", 2, 500, 2, 100},
		{"valid untouched", 4, 25, 4, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := pagination.PageRequest{Page: tt.page, PageSize: tt.pageSize}
			req.Normalize(testConfig())

			if req.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", req.Page, tt.wantPage)
			}
			if req.PageSize != tt.wantPageSize {
				t.Errorf("PageSize = %d, want %d", req.PageSize, tt.wantPageSize)
			}
		})
	}
}

func TestFromQuery(t *testing.T) {
	values := url.Values{}
	values.Set("page", "2")
	values.Set("page_size", "30")
	values.Set("search", "quittance")
	values.Set("sort", "-uploadedAt,filename")

	req := pagination.FromQuery(values, testConfig())

	if req.Page != 2 {
		t.Errorf("Page = %d, want 2", req.Page)
	}
	if req.PageSize != 30 {
		t.Errorf("PageSize = %d, want 30", req.PageSize)
	}
	if req.Search == nil || *req.Search != "quittance" {
		t.Errorf("Search = %v, want quittance", req.Search)
	}

	wantSort := pagination.SortFields{
		{Field: "uploadedAt", Descending: true},
		{Field: "filename"},
	}
	if len(req.Sort) != len(wantSort) {
		t.Fatalf("Sort = %v, want %v", req.Sort, wantSort)
	}
	for i := range wantSort {
		if req.Sort[i] != wantSort[i] {
			t.Errorf("Sort[%d] = %v, want %v", i, req.Sort[i], wantSort[i])
		}
	}
}

func TestFromQueryEmptyValues(t *testing.T) {
	req := pagination.FromQuery(url.Values{}, testConfig())

	if req.Page != 1 {
		t.Errorf("Page = %d, want 1", req.Page)
	}
	if req.PageSize != 20 {
		t.Errorf("PageSize = %d, want 20", req.PageSize)
	}
	if req.Search != nil {
		t.Errorf("Search = %v, want nil", req.Search)
	}
}

func TestSortFieldsUnmarshalString(t *testing.T) {
	var fields pagination.SortFields
	if err := fields.UnmarshalJSON([]byte(`"label,-createdAt"`)); err != nil {
		t.Fatalf("UnmarshalJSON error = %v", err)
	}

	want := []query.SortField{
		{Field: "label"},
		{Field: "createdAt", Descending: true},
	}
	if len(fields) != len(want) {
		t.Fatalf("fields = %v, want %v", fields, want)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("fields[%d] = %v, want %v", i, fields[i], want[i])
		}
	}
}

func TestSortFieldsUnmarshalArray(t *testing.T) {
	var fields pagination.SortFields
	data := []byte(`[{"Field":"label","Descending":false},{"Field":"createdAt","Descending":true}]`)
	if err := fields.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON error = %v", err)
	}
	if len(fields) != 2 || !fields[1].Descending {
		t.Errorf("fields = %v", fields)
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name           string
		total          int
		pageSize       int
		wantTotalPages int
	}{
		{"exact division", 100, 20, 5},
		{"remainder rounds up", 101, 20, 6},
		{"empty set still one page", 0, 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pagination.NewPageResult([]string{}, tt.total, 1, tt.pageSize)
			if result.TotalPages != tt.wantTotalPages {
				t.Errorf("TotalPages = %d, want %d", result.TotalPages, tt.wantTotalPages)
			}
		})
	}
}

func TestNewPageResultNilDataBecomesEmpty(t *testing.T) {
	result := pagination.NewPageResult[string](nil, 0, 1, 20)
	if result.Data == nil {
		t.Error("Data = nil, want empty slice")
	}
}
