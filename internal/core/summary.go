package core

// CategoryTotal is one row of a category breakdown.
type CategoryTotal struct {
	CategoryID int64         `json:"categoryId"`
	Name       string        `json:"name"`
	Icon       string        `json:"icon"`
	Color      string        `json:"color"`
	Group      CategoryGroup `json:"group"`
	Total      Money         `json:"total"`
	Count      int64         `json:"count"`
}

// GroupTotal aggregates expense by category group.
type GroupTotal struct {
	Group CategoryGroup `json:"group"`
	Total Money         `json:"total"`
	Count int64         `json:"count"`
}

// DailyTotal is the expense total for a single date that has at least one transaction.
type DailyTotal struct {
	Date  Date  `json:"date"`
	Total Money `json:"total"`
}

// PaymentModeTotal aggregates expense by payment mode.
type PaymentModeTotal struct {
	PaymentMode PaymentMode `json:"paymentMode"`
	Total       Money       `json:"total"`
	Count       int64       `json:"count"`
}

// MonthRef identifies a month that has data, with a display label.
type MonthRef struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Label string `json:"label"`
}

// Summary covers an arbitrary inclusive date range.
type Summary struct {
	StartDate         Date            `json:"startDate"`
	EndDate           Date            `json:"endDate"`
	TotalIncome       Money           `json:"totalIncome"`
	TotalExpense      Money           `json:"totalExpense"`
	Balance           Money           `json:"balance"`
	TransactionCount  int64           `json:"transactionCount"`
	CategoryBreakdown []CategoryTotal `json:"categoryBreakdown"`
	IncomeBreakdown   []CategoryTotal `json:"incomeBreakdown"`
	GroupBreakdown    []GroupTotal    `json:"groupBreakdown"`
	DailySpending     []DailyTotal    `json:"dailySpending"`
}

// MonthlySummary covers one calendar month of expenses.
type MonthlySummary struct {
	Year              int             `json:"year"`
	Month             int             `json:"month"`
	MonthName         string          `json:"monthName"`
	StartDate         Date            `json:"startDate"`
	EndDate           Date            `json:"endDate"`
	TotalExpense      Money           `json:"totalExpense"`
	TransactionCount  int64           `json:"transactionCount"`
	CategoryBreakdown []CategoryTotal `json:"categoryBreakdown"`
	GroupBreakdown    []GroupTotal    `json:"groupBreakdown"`
	DailySpending     []DailyTotal    `json:"dailySpending"`
	AvailableMonths   []MonthRef      `json:"availableMonths"`
}

// PaymentSummary is the household-wide cash and credit card position.
type PaymentSummary struct {
	CashOnHand        Money              `json:"cashOnHand"`
	CashWithdrawn     Money              `json:"cashWithdrawn"`
	CashSpent         Money              `json:"cashSpent"`
	CreditCardDue     Money              `json:"creditCardDue"`
	CreditCardCount   int64              `json:"creditCardCount"`
	BillingCycleStart Date               `json:"billingCycleStart"`
	BillingCycleEnd   Date               `json:"billingCycleEnd"`
	NextDueDate       Date               `json:"nextDueDate"`
	ByPaymentMode     []PaymentModeTotal `json:"byPaymentMode"`
}
