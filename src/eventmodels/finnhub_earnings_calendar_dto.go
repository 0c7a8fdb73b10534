package eventmodels

type FinnhubEarningsItemDTO struct {
	Date    string `json:"date"`
	Symbol  string `json:"symbol"`
	Hour    string `json:"hour"`
	Quarter int    `json:"quarter"`
	Year    int    `json:"year"`
}

type FinnhubEarningsCalendarDTO struct {
	EarningsCalendar []FinnhubEarningsItemDTO `json:"earningsCalendar"`
}
