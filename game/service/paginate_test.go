package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crneirav-code/juegoBE/game/engine"
)

func historyOf(n int) []engine.EventRecord {
	history := make([]engine.EventRecord, n)
	for i := range history {
		history[i].Seq = i + 1
	}
	return history
}

func seqs(events []engine.EventRecord) []int {
	out := []int{}
	for _, e := range events {
		out = append(out, e.Seq)
	}
	return out
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name  string
		total int
		opts  HistoryOptions
		want  []int
		pages int
		next  bool
	}{
		{"asc first page", 5, HistoryOptions{Page: 1, Limit: 2, Order: "asc"}, []int{1, 2}, 3, true},
		{"asc last page", 5, HistoryOptions{Page: 3, Limit: 2, Order: "asc"}, []int{5}, 3, false},
		{"desc first page", 5, HistoryOptions{Page: 1, Limit: 2, Order: "desc"}, []int{5, 4}, 3, true},
		{"desc last page", 5, HistoryOptions{Page: 3, Limit: 2, Order: "desc"}, []int{1}, 3, false},
		{"defaults", 3, HistoryOptions{}, []int{3, 2, 1}, 1, false},
		{"empty history", 0, HistoryOptions{Page: 1, Limit: 10}, []int{}, 1, false},
		{"past the end", 5, HistoryOptions{Page: 4, Limit: 2, Order: "asc"}, []int{}, 3, false},
		{"huge page asc", 5, HistoryOptions{Page: 100000000000000001, Limit: 100, Order: "asc"}, []int{}, 1, false},
		{"huge page desc", 5, HistoryOptions{Page: 100000000000000001, Limit: 100, Order: "desc"}, []int{}, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := paginate(historyOf(tt.total), tt.opts)
			assert.Equal(t, tt.want, seqs(resp.Events))
			assert.Equal(t, tt.total, resp.TotalEvents)
			assert.Equal(t, tt.pages, resp.TotalPages)
			assert.Equal(t, tt.next, resp.HasNext)
		})
	}
}
