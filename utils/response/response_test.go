package response

import "testing"

func TestCalculatePagination(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		total      int64
		wantPage   int
		wantLimit  int
		wantPages  int
	}{
		{"exact division", 1, 10, 30, 1, 10, 3},
		{"partial last page rounds up", 1, 10, 31, 1, 10, 4},
		{"empty collection", 1, 10, 0, 1, 10, 0},
		{"single row", 1, 10, 1, 1, 10, 1},
		{"zero page defaults to first", 0, 10, 10, 1, 10, 1},
		{"zero limit defaults to ten", 2, 0, 25, 2, 10, 3},
		{"limit clamped to hundred", 1, 500, 250, 1, 100, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := CalculatePagination(tt.page, tt.limit, tt.total)
			if meta.CurrentPage != tt.wantPage {
				t.Errorf("CurrentPage = %d, want %d", meta.CurrentPage, tt.wantPage)
			}
			if meta.PerPage != tt.wantLimit {
				t.Errorf("PerPage = %d, want %d", meta.PerPage, tt.wantLimit)
			}
			if meta.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", meta.TotalPages, tt.wantPages)
			}
			if meta.Total != tt.total {
				t.Errorf("Total = %d, want %d", meta.Total, tt.total)
			}
		})
	}
}
