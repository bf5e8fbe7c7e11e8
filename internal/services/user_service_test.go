package services

import (
	"testing"
)

func TestMergeDistinct(t *testing.T) {
	tests := []struct {
		name     string
		a        []string
		b        []string
		expected []string
	}{
		{
			name:     "Overlapping sources count once",
			a:        []string{"A", "B"},
			b:        []string{"B", "C"},
			expected: []string{"A", "B", "C"},
		},
		{
			name:     "Both empty",
			a:        nil,
			b:        nil,
			expected: []string{},
		},
		{
			name:     "One side empty",
			a:        []string{"A"},
			b:        nil,
			expected: []string{"A"},
		},
		{
			name:     "Duplicates within one source",
			a:        []string{"A", "A", "B"},
			b:        []string{"A"},
			expected: []string{"A", "B"},
		},
		{
			name:     "Empty ids dropped",
			a:        []string{"", "A"},
			b:        []string{""},
			expected: []string{"A"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeDistinct(tt.a, tt.b)
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Expected %v at index %d, got %v", tt.expected[i], i, got[i])
				}
			}
		})
	}
}
