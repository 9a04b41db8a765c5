package worker

import (
	"encoding/json"

	"github.com/matzehuels/stormbolt/pkg/bolt"
)

// Default canvas size used when a request omits a dimension.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Request asks for one strike on a width by height canvas.
// A nil Seed draws a fresh random seed.
type Request struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Seed   *uint64 `json:"seed,omitempty"`
}

// NewRequest returns a request for the default canvas size.
func NewRequest() Request {
	return Request{Width: DefaultWidth, Height: DefaultHeight}
}

// WithSeed returns a copy of r with a fixed seed.
func (r Request) WithSeed(seed uint64) Request {
	r.Seed = &seed
	return r
}

// UnmarshalJSON applies the default size to absent fields. An explicit zero
// is kept and produces an empty canvas.
func (r *Request) UnmarshalJSON(b []byte) error {
	type plain Request
	p := plain(NewRequest())
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = Request(p)
	return nil
}

func (r Request) seed() uint64 {
	if r.Seed != nil {
		return *r.Seed
	}
	return bolt.RandomSeed()
}
