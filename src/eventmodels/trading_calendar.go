package eventmodels

import (
	"context"
	"time"
)

type TradingCalendar interface {
	IsTradingDay(ctx context.Context, date time.Time) (bool, error)
}
