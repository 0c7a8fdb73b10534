package eventmodels

type MarketCalendarDay struct {
	Date        string `json:"date"`
	Status      string `json:"status"`
	Description string `json:"description"`
	Premarket   struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"premarket"`
	Open struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"open"`
	Postmarket struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"postmarket"`
}

type MarketCalendar struct {
	Calendar struct {
		Month int `json:"month"`
		Year  int `json:"year"`
		Days  struct {
			Day []MarketCalendarDay `json:"day"`
		} `json:"days"`
	} `json:"calendar"`
}

// FindDay returns the calendar entry for a YYYY-MM-DD date.
func (c *MarketCalendar) FindDay(date string) (*MarketCalendarDay, bool) {
	for i := range c.Calendar.Days.Day {
		if c.Calendar.Days.Day[i].Date == date {
			return &c.Calendar.Days.Day[i], true
		}
	}

	return nil, false
}
