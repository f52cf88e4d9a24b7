package service

import (
	"context"
	"strings"
	"time"

	"anoa.com/wanderhub/internal/entity"
	eventDto "anoa.com/wanderhub/internal/modules/event/dto"
	eventRepo "anoa.com/wanderhub/internal/modules/event/repository"
	searchService "anoa.com/wanderhub/internal/modules/search/service"
	userRepo "anoa.com/wanderhub/internal/modules/user/repository"
	"anoa.com/wanderhub/pkg/apperror"
	"anoa.com/wanderhub/pkg/sanitize"
	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

const (
	feedTimeout      = 30 * time.Second
	defaultLocation  = "See event page"
	maxNameRunes     = 200
	maxLocationRunes = 255
)

// FeedImporter turns RSS/Atom items into events owned by the configured
// admin account. Items are keyed by their link, so re-importing a feed
// never duplicates events.
type FeedImporter struct {
	parser    *gofeed.Parser
	repo      eventRepo.EventRepository
	users     userRepo.UserRepository
	indexer   searchService.Indexer
	describer Describer
	urls      []string
	owner     string
	now       func() time.Time
	log       *zap.SugaredLogger
}

func NewFeedImporter(repo eventRepo.EventRepository, users userRepo.UserRepository, indexer searchService.Indexer, urls []string, owner string, log *zap.SugaredLogger) *FeedImporter {
	return &FeedImporter{
		parser:  gofeed.NewParser(),
		repo:    repo,
		users:   users,
		indexer: indexer,
		urls:    urls,
		owner:   owner,
		now:     time.Now,
		log:     log,
	}
}

// WithDescriber fills in descriptions for items whose feed entry has none.
func (i *FeedImporter) WithDescriber(d Describer) *FeedImporter {
	i.describer = d
	return i
}

// Import fetches every configured feed. A broken feed is logged and
// skipped; the remaining feeds are still imported.
func (i *FeedImporter) Import(ctx context.Context) (*eventDto.ImportResponse, error) {
	res := &eventDto.ImportResponse{}
	if len(i.urls) == 0 {
		return res, nil
	}
	if i.owner == "" {
		return nil, apperror.Wrap(apperror.ErrBadRequest, "ADMIN_USERNAME must be set to import event feeds")
	}
	owner, err := i.users.FindByUsername(ctx, i.owner)
	if err != nil {
		return nil, err
	}

	for _, url := range i.urls {
		n, err := i.importFeed(ctx, url, owner.ID)
		if err != nil {
			i.log.Warnw("event feed import failed", "url", url, "error", err)
			continue
		}
		res.Feeds++
		res.Inserted += n
	}

	i.log.Infow("event feeds imported", "feeds", res.Feeds, "inserted", res.Inserted)
	return res, nil
}

func (i *FeedImporter) importFeed(ctx context.Context, url string, owner uuid.UUID) (int64, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, feedTimeout)
	defer cancel()

	feed, err := i.parser.ParseURLWithContext(url, fetchCtx)
	if err != nil {
		return 0, err
	}

	location := truncate(sanitize.Text(feed.Title), maxLocationRunes)
	if location == "" {
		location = defaultLocation
	}

	links := make([]string, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link != "" {
			links = append(links, item.Link)
		}
	}
	known, err := i.repo.KnownSourceURLs(ctx, links)
	if err != nil {
		return 0, err
	}

	events := make([]entity.Event, 0, len(feed.Items))
	seen := make(map[string]bool, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" || known[item.Link] || seen[item.Link] {
			continue
		}
		seen[item.Link] = true

		name := truncate(sanitize.Text(item.Title), maxNameRunes)
		if name == "" {
			continue
		}
		link := item.Link
		ev := entity.Event{
			UserID:    owner,
			Name:      name,
			EventType: "other",
			StartDate: i.itemDate(item),
			Location:  location,
			SourceURL: &link,
		}
		if desc := sanitize.Text(item.Description); desc != "" {
			ev.Description = &desc
		} else if desc := i.describe(ctx, name, link); desc != "" {
			ev.Description = &desc
		}
		events = append(events, ev)
	}

	n, err := i.repo.InsertMissing(ctx, events)
	if err != nil {
		return 0, err
	}
	for idx := range events {
		if err := i.indexer.IndexEvent(&events[idx]); err != nil {
			i.log.Warnw("failed to index imported event", "source_url", *events[idx].SourceURL, "error", err)
		}
	}
	return n, nil
}

// describe is best effort; a failure leaves the event without a
// description.
func (i *FeedImporter) describe(ctx context.Context, name, link string) string {
	if i.describer == nil {
		return ""
	}
	desc, err := i.describer.Describe(ctx, name, link)
	if err != nil {
		i.log.Warnw("failed to describe imported event", "source_url", link, "error", err)
		return ""
	}
	return desc
}

func (i *FeedImporter) itemDate(item *gofeed.Item) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return *item.PublishedParsed
	case item.UpdatedParsed != nil:
		return *item.UpdatedParsed
	default:
		return i.now()
	}
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return strings.TrimSpace(string(r[:limit]))
}
