package service

import (
	"context"
	"encoding/json"
	"html"
	"strings"

	"anoa.com/wanderhub/internal/entity"
	searchDto "anoa.com/wanderhub/internal/modules/search/dto"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

const (
	PlacesIndex = "places"
	EventsIndex = "events"

	defaultLimit = 10
)

// Indexer keeps the discovery indexes in step with the database. Callers
// treat indexing as best effort and only log failures.
type Indexer interface {
	IndexPlace(place *entity.Place) error
	DeletePlace(id string) error
	IndexEvent(event *entity.Event) error
	DeleteEvent(id string) error
}

type SearchService interface {
	Indexer
	Search(ctx context.Context, query string, limit int) (*searchDto.SearchResponse, error)
}

type meiliSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
	log       *zap.SugaredLogger
}

func NewMeiliSearchService(client meilisearch.ServiceManager, log *zap.SugaredLogger) SearchService {
	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
		log:       log,
	}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	placeFilterable := []any{"category", "region", "_geo"}
	if _, err := s.client.Index(PlacesIndex).UpdateFilterableAttributes(&placeFilterable); err != nil {
		s.log.Warnw("failed to update places filterable attributes", "error", err)
	}
	placeSortable := []string{"created_at", "_geo"}
	if _, err := s.client.Index(PlacesIndex).UpdateSortableAttributes(&placeSortable); err != nil {
		s.log.Warnw("failed to update places sortable attributes", "error", err)
	}

	eventFilterable := []any{"event_type"}
	if _, err := s.client.Index(EventsIndex).UpdateFilterableAttributes(&eventFilterable); err != nil {
		s.log.Warnw("failed to update events filterable attributes", "error", err)
	}
	eventSortable := []string{"start_date"}
	if _, err := s.client.Index(EventsIndex).UpdateSortableAttributes(&eventSortable); err != nil {
		s.log.Warnw("failed to update events sortable attributes", "error", err)
	}

	s.log.Info("meilisearch indexes initialized")
}

func (s *meiliSearchService) cleanText(content *string) string {
	if content == nil {
		return ""
	}
	text := strings.ReplaceAll(*content, "</p>", " ")
	text = strings.ReplaceAll(text, "<br>", " ")
	text = html.UnescapeString(s.sanitizer.Sanitize(text))
	return strings.Join(strings.Fields(text), " ")
}

func (s *meiliSearchService) IndexPlace(place *entity.Place) error {
	doc := searchDto.PlaceDoc{
		ID:          place.ID.String(),
		Name:        place.Name,
		Description: s.cleanText(place.Description),
		Category:    place.Category,
		Region:      place.Region,
		Geo:         searchDto.Geo{Lat: place.Latitude, Lng: place.Longitude},
		CreatedAt:   place.CreatedAt.Unix(),
	}

	task, err := s.client.Index(PlacesIndex).AddDocuments([]searchDto.PlaceDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	s.log.Debugw("indexed place", "place_id", place.ID, "task_uid", task.TaskUID)
	return nil
}

func (s *meiliSearchService) IndexEvent(event *entity.Event) error {
	doc := searchDto.EventDoc{
		ID:          event.ID.String(),
		Name:        event.Name,
		Description: s.cleanText(event.Description),
		EventType:   event.EventType,
		Location:    event.Location,
		StartDate:   event.StartDate.Unix(),
	}

	task, err := s.client.Index(EventsIndex).AddDocuments([]searchDto.EventDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	s.log.Debugw("indexed event", "event_id", event.ID, "task_uid", task.TaskUID)
	return nil
}

func (s *meiliSearchService) DeletePlace(id string) error {
	_, err := s.client.Index(PlacesIndex).DeleteDocument(id)
	return err
}

func (s *meiliSearchService) DeleteEvent(id string) error {
	_, err := s.client.Index(EventsIndex).DeleteDocument(id)
	return err
}

// Search queries both indexes. A failing index yields no hits for that
// half of the response instead of failing the request.
func (s *meiliSearchService) Search(ctx context.Context, query string, limit int) (*searchDto.SearchResponse, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	req := &meilisearch.SearchRequest{Limit: int64(limit)}

	res := &searchDto.SearchResponse{
		Query:  query,
		Places: []searchDto.PlaceDoc{},
		Events: []searchDto.EventDoc{},
	}
	if err := s.searchIndex(PlacesIndex, query, req, &res.Places); err != nil {
		s.log.Warnw("place search failed", "query", query, "error", err)
	}
	if err := s.searchIndex(EventsIndex, query, req, &res.Events); err != nil {
		s.log.Warnw("event search failed", "query", query, "error", err)
	}
	return res, ctx.Err()
}

func (s *meiliSearchService) searchIndex(index, query string, req *meilisearch.SearchRequest, hits any) error {
	raw, err := s.client.Index(index).SearchRaw(query, req)
	if err != nil {
		return err
	}
	var body struct {
		Hits json.RawMessage `json:"hits"`
	}
	if err := json.Unmarshal(*raw, &body); err != nil {
		return err
	}
	if len(body.Hits) == 0 {
		return nil
	}
	return json.Unmarshal(body.Hits, hits)
}

func strPtr(s string) *string {
	return &s
}
