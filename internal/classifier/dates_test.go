package classifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeclarationDate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{
			name: "Ordinal Day",
			text: "results will be declared on 9th November 2025",
			want: time.Date(2025, time.November, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "Ordinal Day With Comma",
			text: "board meeting on 21st March, 2026 to approve results",
			want: time.Date(2026, time.March, 21, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "Abbreviated Month",
			text: "scheduled for 09-Nov-2025 at the registered office",
			want: time.Date(2025, time.November, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "Month Day Year",
			text: "to be held on November 9, 2025",
			want: time.Date(2025, time.November, 9, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := ParseDeclarationDate(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.want, d.Time)
			assert.NotEmpty(t, d.Source)
		})
	}
}

func TestParseDeclarationDate_NoMatch(t *testing.T) {
	tests := []string{
		"board meeting to consider financial results",
		"",
		"held on 31st February 2026", // impossible date rejected
	}

	for _, text := range tests {
		_, ok := ParseDeclarationDate(text)
		assert.False(t, ok, "text: %s", text)
	}
}
