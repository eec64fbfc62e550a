package services

import (
	"testing"

	"notare/internal/core"
)

func template(every core.RepetitionTypes, start, last core.Date) core.RecurringTask {
	return core.RecurringTask{
		ID:                "rec",
		Title:             "Revisão",
		Priority:          core.PriorityMedium,
		Category:          core.CategoryPersonal,
		StartDate:         start,
		Every:             every,
		LastExecutionDate: last,
	}
}

func TestDailyChecker_IsDue(t *testing.T) {
	checker := DailyChecker{}
	today := core.NewDate(2024, 1, 15)
	start := core.NewDate(2024, 1, 1)

	tests := []struct {
		name string
		last core.Date
		want bool
	}{
		{"never executed - is due", core.Date{}, true},
		{"executed today - not due", core.NewDate(2024, 1, 15), false},
		{"executed yesterday - is due", core.NewDate(2024, 1, 14), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checker.IsDue(template(core.Daily, start, tt.last), today)
			if got != tt.want {
				t.Errorf("DailyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeeklyChecker_IsDue(t *testing.T) {
	checker := WeeklyChecker{}
	today := core.NewDate(2024, 1, 15)
	start := core.NewDate(2024, 1, 1)

	tests := []struct {
		name string
		last core.Date
		want bool
	}{
		{"never executed - is due", core.Date{}, true},
		{"executed 3 days ago - not due", core.NewDate(2024, 1, 12), false},
		{"executed 6 days ago - not due", core.NewDate(2024, 1, 9), false},
		{"executed 7 days ago - is due", core.NewDate(2024, 1, 8), true},
		{"executed 10 days ago - is due", core.NewDate(2024, 1, 5), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checker.IsDue(template(core.Weekly, start, tt.last), today)
			if got != tt.want {
				t.Errorf("WeeklyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMonthlyChecker_IsDue(t *testing.T) {
	checker := MonthlyChecker{}

	tests := []struct {
		name  string
		last  core.Date
		today core.Date
		start core.Date
		want  bool
	}{
		{
			name:  "never executed - is due",
			today: core.NewDate(2024, 1, 15),
			start: core.NewDate(2024, 1, 10),
			want:  true,
		},
		{
			name:  "executed this month - not due",
			last:  core.NewDate(2024, 1, 10),
			today: core.NewDate(2024, 1, 15),
			start: core.NewDate(2024, 1, 10),
			want:  false,
		},
		{
			name:  "new month but before target day - not due",
			last:  core.NewDate(2024, 1, 15),
			today: core.NewDate(2024, 2, 10),
			start: core.NewDate(2024, 1, 15),
			want:  false,
		},
		{
			name:  "new month and on target day - is due",
			last:  core.NewDate(2024, 1, 15),
			today: core.NewDate(2024, 2, 15),
			start: core.NewDate(2024, 1, 15),
			want:  true,
		},
		{
			name:  "target day 31 in February - adjusts to 29",
			last:  core.NewDate(2024, 1, 31),
			today: core.NewDate(2024, 2, 29),
			start: core.NewDate(2024, 1, 31),
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checker.IsDue(template(core.Monthly, tt.start, tt.last), tt.today)
			if got != tt.want {
				t.Errorf("MonthlyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestYearlyChecker_IsDue(t *testing.T) {
	checker := YearlyChecker{}

	tests := []struct {
		name  string
		last  core.Date
		today core.Date
		start core.Date
		want  bool
	}{
		{
			name:  "never executed - is due",
			today: core.NewDate(2024, 6, 15),
			start: core.NewDate(2024, 3, 15),
			want:  true,
		},
		{
			name:  "executed this year - not due",
			last:  core.NewDate(2024, 3, 15),
			today: core.NewDate(2024, 6, 15),
			start: core.NewDate(2024, 3, 15),
			want:  false,
		},
		{
			name:  "new year but before target month - not due",
			last:  core.NewDate(2024, 6, 15),
			today: core.NewDate(2025, 3, 15),
			start: core.NewDate(2024, 6, 15),
			want:  false,
		},
		{
			name:  "new year and past target month - is due",
			last:  core.NewDate(2024, 3, 15),
			today: core.NewDate(2025, 6, 15),
			start: core.NewDate(2024, 3, 15),
			want:  true,
		},
		{
			name:  "new year same month before target day - not due",
			last:  core.NewDate(2024, 6, 15),
			today: core.NewDate(2025, 6, 10),
			start: core.NewDate(2024, 6, 15),
			want:  false,
		},
		{
			name:  "new year same month on target day - is due",
			last:  core.NewDate(2024, 6, 15),
			today: core.NewDate(2025, 6, 15),
			start: core.NewDate(2024, 6, 15),
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checker.IsDue(template(core.Yearly, tt.start, tt.last), tt.today)
			if got != tt.want {
				t.Errorf("YearlyChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRRuleChecker_IsDue(t *testing.T) {
	checker := RRuleChecker{}
	// Mondays, Wednesdays and Fridays from Monday 2024-01-01.
	gym := template(core.Custom, core.NewDate(2024, 1, 1), core.Date{})
	gym.RRule = "FREQ=WEEKLY;BYDAY=MO,WE,FR"

	tests := []struct {
		name  string
		last  core.Date
		today core.Date
		want  bool
	}{
		{"never executed on an occurrence - is due", core.Date{}, core.NewDate(2024, 1, 3), true},
		{"never executed off an occurrence - not due", core.Date{}, core.NewDate(2024, 1, 2), false},
		{"already executed today - not due", core.NewDate(2024, 1, 5), core.NewDate(2024, 1, 5), false},
		{"no occurrence since last run - not due", core.NewDate(2024, 1, 5), core.NewDate(2024, 1, 7), false},
		{"missed occurrence since last run - is due", core.NewDate(2024, 1, 5), core.NewDate(2024, 1, 9), true},
		{"before start - not due", core.Date{}, core.NewDate(2023, 12, 29), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := gym
			rt.LastExecutionDate = tt.last
			got := checker.IsDue(rt, tt.today)
			if got != tt.want {
				t.Errorf("RRuleChecker.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}

	bad := gym
	bad.RRule = "FREQ=SOMETIMES"
	if checker.IsDue(bad, core.NewDate(2024, 1, 3)) {
		t.Error("RRuleChecker.IsDue() with an invalid rule should not be due")
	}
}

func TestGetDuenessChecker(t *testing.T) {
	tests := []struct {
		name      string
		frequency core.RepetitionTypes
		wantErr   bool
	}{
		{"daily", core.Daily, false},
		{"weekly", core.Weekly, false},
		{"monthly", core.Monthly, false},
		{"yearly", core.Yearly, false},
		{"rrule", core.Custom, false},
		{"unknown", core.RepetitionTypes("biweekly"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker, err := GetDuenessChecker(tt.frequency)
			if (err != nil) != tt.wantErr {
				t.Errorf("GetDuenessChecker() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && checker == nil {
				t.Error("GetDuenessChecker() returned nil checker")
			}
		})
	}
}

func TestRegisterDuenessChecker(t *testing.T) {
	customFreq := core.RepetitionTypes("biweekly")
	RegisterDuenessChecker(customFreq, DailyChecker{})
	defer delete(duenessStrategies, customFreq)

	checker, err := GetDuenessChecker(customFreq)
	if err != nil {
		t.Errorf("GetDuenessChecker() after register error = %v", err)
	}
	if checker == nil {
		t.Error("GetDuenessChecker() returned nil after registration")
	}
}
