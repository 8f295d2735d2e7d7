package util

import "time"

const dayLayout = "2006-01-02"

var kstLocation *time.Location

func init() {
	var err error
	kstLocation, err = time.LoadLocation("Asia/Seoul")
	if err != nil {
		kstLocation = time.FixedZone("KST", 9*60*60)
	}
}

// DayKey returns the UTC calendar day of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// TodayKST is the chart date the TJ feed publishes under.
func TodayKST(now time.Time) string {
	return now.In(kstLocation).Format(dayLayout)
}

// FormatKST renders t for humans reading the CLI output.
func FormatKST(t time.Time, layout string) string {
	return t.In(kstLocation).Format(layout)
}
