package dto

type StatsResponse struct {
	TotalUsers    int64 `json:"total_users"`
	TotalPlaces   int64 `json:"total_places"`
	TotalEvents   int64 `json:"total_events"`
	TotalAds      int64 `json:"total_ads"`
	TotalComments int64 `json:"total_comments"`
	TotalRatings  int64 `json:"total_ratings"`
}
