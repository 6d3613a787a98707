package models

// RecentReviewsLimit caps LibraryStats.RecentReviews
const RecentReviewsLimit = 10

// LibraryStats is the body of GET /stats
type LibraryStats struct {
	TotalGames     int64           `json:"totalGames"`
	CompletedGames int64           `json:"completedGames"`
	TotalReviews   int64           `json:"totalReviews"`
	AverageScore   float64         `json:"averageScore"`
	ByGenre        map[Genre]int64 `json:"byGenre"`
	RecentReviews  []Review        `json:"recentReviews"`
}
