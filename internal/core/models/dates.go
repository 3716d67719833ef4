package models

import "time"

// DateLayout 日期格式（ISO 8601）
const DateLayout = "2006-01-02"

// Day 截斷至 UTC 當日零點
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate 解析 YYYY-MM-DD 日期
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

// DaysBetween 回傳 from 到 to 的日曆天數差
func DaysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)).Hours() / 24)
}
