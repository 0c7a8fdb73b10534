package eventmodels

import "time"

type ScheduleInfo struct {
	CurrentTime      time.Time   `json:"current_time"`
	IsWeekday        bool        `json:"is_weekday"`
	IsTradingDay     bool        `json:"is_trading_day"`
	ShouldRunTonight bool        `json:"should_run_tonight"`
	NextTradingDay   time.Time   `json:"next_trading_day"`
	UpcomingHolidays []time.Time `json:"upcoming_holidays"`
}
