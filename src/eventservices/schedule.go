package eventservices

import (
	"context"
	"fmt"
	"time"

	"github.com/jiaming2012/forward-factor/src/eventmodels"
	"github.com/jiaming2012/forward-factor/src/utils"
)

const (
	nextTradingDayLookahead = 10
	UpcomingHolidayDays     = 30
)

// NextTradingDay returns the first trading day after date, looking at most ten
// days ahead. It falls back to the following calendar day.
func NextTradingDay(ctx context.Context, cal eventmodels.TradingCalendar, date time.Time) (time.Time, error) {
	day := utils.DateOf(date)

	for i := 1; i <= nextTradingDayLookahead; i++ {
		candidate := day.AddDate(0, 0, i)

		ok, err := cal.IsTradingDay(ctx, candidate)
		if err != nil {
			return time.Time{}, fmt.Errorf("NextTradingDay: %w", err)
		}

		if ok {
			return candidate, nil
		}
	}

	return day.AddDate(0, 0, 1), nil
}

// UpcomingHolidays lists the weekdays in [from, from+days] on which the market is closed.
func UpcomingHolidays(ctx context.Context, cal eventmodels.TradingCalendar, from time.Time, days int) ([]time.Time, error) {
	start := utils.DateOf(from)

	var holidays []time.Time
	for i := 0; i <= days; i++ {
		d := start.AddDate(0, 0, i)
		if !utils.IsWeekday(d) {
			continue
		}

		ok, err := cal.IsTradingDay(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("UpcomingHolidays: %w", err)
		}

		if !ok {
			holidays = append(holidays, d)
		}
	}

	return holidays, nil
}

// ShouldRunTonight is true on weekday evenings that precede a trading day.
func ShouldRunTonight(ctx context.Context, cal eventmodels.TradingCalendar, now time.Time) (bool, error) {
	if !utils.IsWeekday(now) {
		return false, nil
	}

	ok, err := cal.IsTradingDay(ctx, utils.DateOf(now).AddDate(0, 0, 1))
	if err != nil {
		return false, fmt.Errorf("ShouldRunTonight: %w", err)
	}

	return ok, nil
}

func GetScheduleInfo(ctx context.Context, cal eventmodels.TradingCalendar, now time.Time) (*eventmodels.ScheduleInfo, error) {
	isTradingDay, err := cal.IsTradingDay(ctx, utils.DateOf(now))
	if err != nil {
		return nil, fmt.Errorf("GetScheduleInfo: %w", err)
	}

	shouldRun, err := ShouldRunTonight(ctx, cal, now)
	if err != nil {
		return nil, fmt.Errorf("GetScheduleInfo: %w", err)
	}

	next, err := NextTradingDay(ctx, cal, now)
	if err != nil {
		return nil, fmt.Errorf("GetScheduleInfo: %w", err)
	}

	holidays, err := UpcomingHolidays(ctx, cal, now, UpcomingHolidayDays)
	if err != nil {
		return nil, fmt.Errorf("GetScheduleInfo: %w", err)
	}

	return &eventmodels.ScheduleInfo{
		CurrentTime:      now,
		IsWeekday:        utils.IsWeekday(now),
		IsTradingDay:     isTradingDay,
		ShouldRunTonight: shouldRun,
		NextTradingDay:   next,
		UpcomingHolidays: holidays,
	}, nil
}
