// Package hashid turns numeric ad ids into short opaque strings for public
// click-through links.
package hashid

import (
	"fmt"

	"github.com/speps/go-hashids/v2"
)

type Codec struct {
	h *hashids.HashID
}

func New(salt string, minLength int) (*Codec, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = minLength

	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("failed to init hashids: %w", err)
	}
	return &Codec{h: h}, nil
}

func (c *Codec) Encode(id int64) (string, error) {
	return c.h.EncodeInt64([]int64{id})
}

func (c *Codec) Decode(s string) (int64, error) {
	ids, err := c.h.DecodeInt64WithError(s)
	if err != nil {
		return 0, err
	}
	if len(ids) != 1 {
		return 0, fmt.Errorf("hashid %q does not hold a single id", s)
	}
	return ids[0], nil
}
