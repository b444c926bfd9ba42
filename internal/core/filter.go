package core

// TransactionFilter narrows transaction queries. Zero-valued fields do not filter.
type TransactionFilter struct {
	Range       *DateRange
	Type        TransactionType
	PaymentMode PaymentMode
	CategoryID  int64
}

// CategoryFilter narrows category queries. Zero-valued fields do not filter.
type CategoryFilter struct {
	Group CategoryGroup
	Type  CategoryType
}

// Aggregate is a sum with the number of rows behind it.
type Aggregate struct {
	Total Money `json:"total"`
	Count int64 `json:"count"`
}
