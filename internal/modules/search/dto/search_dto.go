package dto

type SearchQuery struct {
	Q     string `form:"q" binding:"required,min=1,max=100"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

type Geo struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlaceDoc is the document stored in the "places" index.
type PlaceDoc struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Region      string `json:"region"`
	Geo         Geo    `json:"_geo"`
	CreatedAt   int64  `json:"created_at"`
}

// EventDoc is the document stored in the "events" index.
type EventDoc struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	EventType   string `json:"event_type"`
	Location    string `json:"location"`
	StartDate   int64  `json:"start_date"`
}

type SearchResponse struct {
	Query  string     `json:"query"`
	Places []PlaceDoc `json:"places"`
	Events []EventDoc `json:"events"`
}
