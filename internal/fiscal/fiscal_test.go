package fiscal

import (
	"testing"
	"time"
)

func TestIsLeapYear(t *testing.T) {
	tests := []struct {
		year int
		want bool
	}{
		{2024, true},
		{2025, false},
		{2000, true},  // divisible by 400
		{1900, false}, // divisible by 100 but not 400
		{2028, true},
	}

	for _, tt := range tests {
		if got := IsLeapYear(tt.year); got != tt.want {
			t.Errorf("IsLeapYear(%d) = %v, want %v", tt.year, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{
			name: "well before Shrawan",
			date: time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC),
			want: "081-82",
		},
		{
			name: "leap year, day before transition",
			date: time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC),
			want: "080-81",
		},
		{
			name: "leap year, transition day",
			date: time.Date(2024, time.July, 16, 0, 0, 0, 0, time.UTC),
			want: "081-82",
		},
		{
			name: "non-leap year, July 16 is still the old year",
			date: time.Date(2025, time.July, 16, 0, 0, 0, 0, time.UTC),
			want: "081-82",
		},
		{
			name: "non-leap year, transition day",
			date: time.Date(2025, time.July, 17, 0, 0, 0, 0, time.UTC),
			want: "082-83",
		},
		{
			name: "late in the calendar year",
			date: time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC),
			want: "082-83",
		},
		{
			name: "time of day does not matter on the boundary",
			date: time.Date(2026, time.July, 17, 23, 59, 0, 0, time.UTC),
			want: "083-84",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.date); got != tt.want {
				t.Errorf("Resolve(%s) = %q, want %q", tt.date.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}
