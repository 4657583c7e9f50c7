package pagination

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = n - i
	}
	return out
}

func TestParsePage(t *testing.T) {
	assert.Equal(t, 1, ParsePage(""))
	assert.Equal(t, 1, ParsePage("abc"))
	assert.Equal(t, 1, ParsePage("2.5"))
	assert.Equal(t, 3, ParsePage("3"))
	assert.Equal(t, -1, ParsePage("-1"))
	assert.Equal(t, math.MaxInt, ParsePage("99999999999999999999"))
	assert.Equal(t, math.MinInt, ParsePage("-99999999999999999999"))

	assert.Equal(t, 2, New(13, 10, ParsePage("99999999999999999999")).Number)
	assert.Equal(t, 1, New(13, 10, ParsePage("-99999999999999999999")).Number)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		size      int
		requested int
		want      Page
	}{
		{"empty sequence has one page", 0, 10, 1, Page{Number: 1, Size: 10, TotalItems: 0, TotalPages: 1}},
		{"first of two", 13, 10, 1, Page{Number: 1, Size: 10, TotalItems: 13, TotalPages: 2, HasNext: true}},
		{"last holds remainder", 13, 10, 2, Page{Number: 2, Size: 10, TotalItems: 13, TotalPages: 2, HasPrev: true}},
		{"beyond last clamps", 13, 10, 3, Page{Number: 2, Size: 10, TotalItems: 13, TotalPages: 2, HasPrev: true}},
		{"zero clamps to first", 13, 10, 0, Page{Number: 1, Size: 10, TotalItems: 13, TotalPages: 2, HasNext: true}},
		{"negative clamps to first", 13, 10, -4, Page{Number: 1, Size: 10, TotalItems: 13, TotalPages: 2, HasNext: true}},
		{"evenly divisible", 20, 10, 2, Page{Number: 2, Size: 10, TotalItems: 20, TotalPages: 2, HasPrev: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.total, tt.size, tt.requested)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("New(%d, %d, %d) mismatch (-want +got):\n%s", tt.total, tt.size, tt.requested, diff)
			}
		})
	}
}

func TestOffsetLimit(t *testing.T) {
	p := New(13, 10, 2)
	assert.Equal(t, 10, p.Offset())
	assert.Equal(t, 3, p.Limit())

	p = New(20, 10, 2)
	assert.Equal(t, 10, p.Offset())
	assert.Equal(t, 10, p.Limit())

	p = New(0, 10, 5)
	assert.Equal(t, 0, p.Offset())
	assert.Equal(t, 0, p.Limit())
}

func TestPaginateThirteenItems(t *testing.T) {
	items := seq(13)

	first, p1 := Paginate(items, 10, 1)
	assert.Len(t, first, 10)
	assert.Equal(t, 13, first[0])
	assert.True(t, p1.HasNext)

	second, p2 := Paginate(items, 10, 2)
	assert.Len(t, second, 3)
	assert.Equal(t, []int{3, 2, 1}, second)
	assert.False(t, p2.HasNext)

	third, p3 := Paginate(items, 10, 3)
	assert.Equal(t, second, third)
	assert.Equal(t, p2, p3)
}

func TestPaginateEmpty(t *testing.T) {
	got, p := Paginate([]string{}, 10, 7)
	assert.Empty(t, got)
	assert.Equal(t, 1, p.Number)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)
}

func TestNewPanicsOnBadSize(t *testing.T) {
	assert.Panics(t, func() { New(5, 0, 1) })
}
