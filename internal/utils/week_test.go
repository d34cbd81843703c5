package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfWeek(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "monday maps to itself",
			in:   time.Date(2024, 4, 29, 15, 30, 0, 0, time.UTC),
			want: time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "wednesday maps to preceding monday",
			in:   time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
			want: time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday belongs to the week that started six days earlier",
			in:   time.Date(2024, 5, 5, 23, 59, 0, 0, time.UTC),
			want: time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "week crossing a month boundary",
			in:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
			want: time.Date(2024, 5, 27, 0, 0, 0, 0, time.UTC),
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StartOfWeek(tc.in))
		})
	}
}
