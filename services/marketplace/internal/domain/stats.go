package domain

type DailyPoint struct {
	Date     string  `bson:"_id" json:"date"` // YYYY-MM-DD, UTC
	Quantity int     `bson:"quantity" json:"quantity"`
	Price    float64 `bson:"price" json:"price"`
	Order    int     `bson:"order" json:"order"`
}

type OrderTotals struct {
	TotalOrders  int64   `bson:"totalOrders" json:"totalOrders"`
	TotalRevenue float64 `bson:"totalRevenue" json:"totalRevenue"`
}

type Stats struct {
	TotalUsers   int64          `json:"totalUsers,omitempty"`
	UsersByRole  map[Role]int64 `json:"usersByRole,omitempty"`
	TotalPlants  int64          `json:"totalPlants"`
	TotalOrders  int64          `json:"totalOrders"`
	TotalRevenue float64        `json:"totalRevenue"`
	AverageOrder float64        `json:"averageOrder"`
	ChartData    []DailyPoint   `json:"chartData"`
}
