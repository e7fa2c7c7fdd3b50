package models

type DailySales struct {
	Date  string  `json:"date"`
	Sales float64 `json:"sales"`
}

type DashboardStats struct {
	TotalUsers    int64        `json:"total_users"`
	TotalProducts int64        `json:"total_products"`
	TotalOrders   int64        `json:"total_orders"`
	TotalRevenue  float64      `json:"total_revenue"`
	SalesByDay    []DailySales `json:"sales_by_day"`
}
