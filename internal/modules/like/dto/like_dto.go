package dto

type LikeResponse struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}
