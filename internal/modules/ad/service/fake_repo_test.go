package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"anoa.com/wanderhub/internal/entity"
	adRepo "anoa.com/wanderhub/internal/modules/ad/repository"
	"anoa.com/wanderhub/pkg/apperror"
)

// fakeRepo keeps ads in memory. IncrementCounter adds under the lock, the
// same guarantee a single UPDATE ... SET col = col + n gives.
type fakeRepo struct {
	mu        sync.Mutex
	ads       map[int64]*entity.Ad
	nextID    int64
	findErr   error
	createErr error
	lastDay   time.Time
}

func newFakeRepo(ads ...entity.Ad) *fakeRepo {
	r := &fakeRepo{ads: map[int64]*entity.Ad{}}
	for i := range ads {
		ad := ads[i]
		r.ads[ad.ID] = &ad
		if ad.ID > r.nextID {
			r.nextID = ad.ID
		}
	}
	return r
}

func (r *fakeRepo) FindActive(_ context.Context, position, adType string, today time.Time) ([]entity.Ad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastDay = today
	if r.findErr != nil {
		return nil, r.findErr
	}

	var out []entity.Ad
	for _, ad := range r.ads {
		if ad.Position != position || (adType != "" && ad.Type != adType) || !ad.ActiveOn(today) {
			continue
		}
		out = append(out, *ad)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeRepo) FindByID(_ context.Context, id int64) (*entity.Ad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ad, ok := r.ads[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	cp := *ad
	return &cp, nil
}

func (r *fakeRepo) FindAll(context.Context) ([]entity.Ad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []entity.Ad
	for _, ad := range r.ads {
		out = append(out, *ad)
	}
	return out, nil
}

func (r *fakeRepo) Create(_ context.Context, ad *entity.Ad) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	ad.ID = r.nextID
	cp := *ad
	r.ads[ad.ID] = &cp
	return nil
}

func (r *fakeRepo) Update(_ context.Context, ad *entity.Ad) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ads[ad.ID]; !ok {
		return apperror.ErrNotFound
	}
	cp := *ad
	r.ads[ad.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ads[id]; !ok {
		return apperror.ErrNotFound
	}
	delete(r.ads, id)
	return nil
}

func (r *fakeRepo) SetActive(_ context.Context, id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ad, ok := r.ads[id]
	if !ok {
		return apperror.ErrNotFound
	}
	ad.Active = active
	return nil
}

func (r *fakeRepo) IncrementCounter(_ context.Context, id int64, counter entity.AdCounter, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ad, ok := r.ads[id]
	if !ok {
		return apperror.ErrNotFound
	}
	switch counter {
	case entity.AdCounterImpressions:
		ad.Impressions += delta
	case entity.AdCounterClicks:
		ad.Clicks += delta
	default:
		return errors.New("unknown counter")
	}
	return nil
}

func (r *fakeRepo) Analytics(context.Context) (*adRepo.Analytics, error) {
	return &adRepo.Analytics{}, nil
}

func (r *fakeRepo) DeactivateExpired(_ context.Context, today time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, ad := range r.ads {
		if ad.Active && ad.EndDate != nil && entity.DateOf(*ad.EndDate).Before(entity.DateOf(today)) {
			ad.Active = false
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) get(id int64) entity.Ad {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.ads[id]
}

func (r *fakeRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.ads)), nil
}
