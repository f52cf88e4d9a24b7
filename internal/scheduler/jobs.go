package scheduler

import (
	"context"

	eventDto "anoa.com/wanderhub/internal/modules/event/dto"
	"go.uber.org/zap"
)

const (
	JobAdFlush     = "ad_counter_flush"
	JobAdExpiry    = "ad_expiry"
	JobEventImport = "event_feed_import"
)

type AdMaintainer interface {
	FlushCounters(ctx context.Context) (int, error)
	DeactivateExpired(ctx context.Context) (int64, error)
}

type EventImporter interface {
	Import(ctx context.Context) (*eventDto.ImportResponse, error)
}

type Schedules struct {
	AdFlush     string
	AdExpiry    string
	EventImport string
}

// DefaultJobs builds the background jobs of the app.
func DefaultJobs(ads AdMaintainer, importer EventImporter, schedules Schedules, log *zap.SugaredLogger) []Job {
	return []Job{
		NewJob(JobAdFlush, schedules.AdFlush, func(ctx context.Context) error {
			n, err := ads.FlushCounters(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				log.Debugw("flushed ad counters", "keys", n)
			}
			return nil
		}),
		NewJob(JobAdExpiry, schedules.AdExpiry, func(ctx context.Context) error {
			n, err := ads.DeactivateExpired(ctx)
			if err != nil {
				return err
			}
			log.Infow("deactivated expired ads", "count", n)
			return nil
		}),
		NewJob(JobEventImport, schedules.EventImport, func(ctx context.Context) error {
			res, err := importer.Import(ctx)
			if err != nil {
				return err
			}
			log.Infow("imported feed events", "feeds", res.Feeds, "inserted", res.Inserted)
			return nil
		}),
	}
}
