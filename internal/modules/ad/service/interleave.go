package service

// FeedEvery is how many content items separate two feed ads.
const FeedEvery = 4

// FeedItem is either a content item or an ad.
type FeedItem[T, A any] struct {
	Item T
	Ad   *A
}

func (f FeedItem[T, A]) IsAd() bool {
	return f.Ad != nil
}

// Interleave places an ad after every content item at index i where i > 0
// and i%every == 0, cycling through ads by index. With no ads the items
// come back unchanged.
func Interleave[T, A any](items []T, ads []A, every int) []FeedItem[T, A] {
	if every <= 0 {
		every = FeedEvery
	}

	out := make([]FeedItem[T, A], 0, len(items)+len(items)/every)
	for i, item := range items {
		out = append(out, FeedItem[T, A]{Item: item})
		if len(ads) > 0 && i > 0 && i%every == 0 {
			ad := ads[(i/every)%len(ads)]
			out = append(out, FeedItem[T, A]{Ad: &ad})
		}
	}
	return out
}
