package utils

import "testing"

func TestCalculateDayOffset(t *testing.T) {
	cases := []struct {
		original, updated string
		want              int
	}{
		{"2025-06-01", "2025-06-11", 10},
		{"2025-06-11", "2025-06-01", -10},
		{"2025-06-01", "2025-06-01", 0},
		{"2024-12-25", "2025-01-05", 11}, // across a year boundary
		{"2024-02-27", "2024-03-02", 4},  // across a leap day
	}

	for _, tc := range cases {
		got, err := CalculateDayOffset(tc.original, tc.updated)
		if err != nil {
			t.Fatalf("CalculateDayOffset(%q, %q) error = %v", tc.original, tc.updated, err)
		}
		if got != tc.want {
			t.Errorf("CalculateDayOffset(%q, %q) = %d, expected %d", tc.original, tc.updated, got, tc.want)
		}
	}
}

func TestCalculateDayOffset_InvalidDate(t *testing.T) {
	if _, err := CalculateDayOffset("not-a-date", "2025-06-01"); err == nil {
		t.Error("invalid original date should error")
	}
	if _, err := CalculateDayOffset("2025-06-01", "06/01/2025"); err == nil {
		t.Error("invalid new date should error")
	}
}

func TestShiftDate(t *testing.T) {
	cases := []struct {
		date string
		days int
		want string
	}{
		{"2025-06-01", 10, "2025-06-11"},
		{"2025-06-11", -10, "2025-06-01"},
		{"2025-06-01", 0, "2025-06-01"},
		{"2024-12-25", 11, "2025-01-05"},
	}

	for _, tc := range cases {
		got, err := ShiftDate(tc.date, tc.days)
		if err != nil {
			t.Fatalf("ShiftDate(%q, %d) error = %v", tc.date, tc.days, err)
		}
		if got != tc.want {
			t.Errorf("ShiftDate(%q, %d) = %q, expected %q", tc.date, tc.days, got, tc.want)
		}
	}
}

func TestValidDateRange(t *testing.T) {
	if !ValidDateRange("2025-06-01", "2025-06-30") {
		t.Error("a forward range should be valid")
	}
	if !ValidDateRange("2025-06-01", "2025-06-01") {
		t.Error("a single-day range should be valid")
	}
	if ValidDateRange("2025-06-30", "2025-06-01") {
		t.Error("end before start should be invalid")
	}
	if ValidDateRange("junk", "2025-06-01") {
		t.Error("unparseable start should be invalid")
	}
}
