package model

import "github.com/shopspring/decimal"

// StatusCount is one bucket of the dashboard's status breakdown.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// DepartmentRanking ranks departments by requested value.
type DepartmentRanking struct {
	DepartmentID   string          `json:"department_id"`
	DepartmentName string          `json:"department_name"`
	RequestCount   int64           `json:"request_count"`
	TotalValue     decimal.Decimal `json:"total_value"`
}
