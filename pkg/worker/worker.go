package worker

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/stormbolt/pkg/bolt"
	apperr "github.com/matzehuels/stormbolt/pkg/errors"
	"github.com/matzehuels/stormbolt/pkg/observability"
	"github.com/matzehuels/stormbolt/pkg/render"
	"github.com/matzehuels/stormbolt/pkg/result"
	"github.com/matzehuels/stormbolt/pkg/surface"
)

// Response is the single reply to a Request.
//
// On success Image is set and Error is empty. A degraded response has no
// image, zero intensity, DidStrike false and Error set.
type Response struct {
	ID             string
	Image          *result.Image
	ShakeIntensity float64
	DidStrike      bool
	Seed           uint64
	Width, Height  int
	Segments       []bolt.Segment
	Branches       []bolt.Branch
	MaxWidth       float64
	Elapsed        time.Duration

	Error string
	// Err is the underlying error of a degraded response.
	Err error
}

// SurfaceFactory creates the surface a request is drawn on.
type SurfaceFactory func(width, height int) surface.Surface

// Worker executes strike requests. It is safe for concurrent use; it holds
// configuration only and shares nothing between requests.
type Worker struct {
	params   bolt.Params
	renderer *render.Renderer
	packager result.Packager
	factory  SurfaceFactory
	logger   *log.Logger
}

// Option configures a Worker.
type Option func(*Worker)

// WithParams sets the generator parameters.
func WithParams(p bolt.Params) Option {
	return func(w *Worker) { w.params = p }
}

// WithStyle sets the rendering style.
func WithStyle(s render.Style) Option {
	return func(w *Worker) { w.renderer = render.New(s) }
}

// WithSurfaceFactory replaces the default Canvas factory.
func WithSurfaceFactory(f SurfaceFactory) Option {
	return func(w *Worker) {
		if f != nil {
			w.factory = f
		}
	}
}

// WithLogger sets the logger. Strikes are logged at debug level.
func WithLogger(l *log.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// New returns a worker with default parameters, style and canvas surfaces.
func New(opts ...Option) *Worker {
	w := &Worker{
		params:   bolt.DefaultParams(),
		renderer: render.New(render.DefaultStyle()),
		factory:  func(width, height int) surface.Surface { return surface.NewCanvas(width, height) },
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Params returns the generator parameters.
func (w *Worker) Params() bolt.Params { return w.params }

// Style returns the rendering style.
func (w *Worker) Style() render.Style { return w.renderer.Style() }

// Submit starts req and returns a channel that receives exactly one Response
// and is then closed.
func (w *Worker) Submit(ctx context.Context, req Request) <-chan Response {
	out := make(chan Response, 1)
	go func() {
		defer close(out)
		out <- w.run(ctx, req)
	}()
	return out
}

// Strike runs req and waits for its response.
func (w *Worker) Strike(ctx context.Context, req Request) Response {
	return <-w.Submit(ctx, req)
}

func (w *Worker) run(ctx context.Context, req Request) (resp Response) {
	id := uuid.NewString()
	width, height := max(0, req.Width), max(0, req.Height)
	seed := req.seed()
	start := time.Now()

	hooks := observability.Strike()
	hooks.OnStrikeStart(ctx, id, width, height)
	defer func() {
		if r := recover(); r != nil {
			resp = degraded(id, seed, width, height,
				apperr.New(apperr.ErrCodeInternal, "strike panicked: %v", r))
		}
		resp.Elapsed = time.Since(start)
		hooks.OnStrikeComplete(ctx, id, len(resp.Segments), resp.ShakeIntensity, resp.Elapsed, resp.Err)
		if resp.Err != nil {
			w.logger.Warn("strike degraded", "id", id, "seed", seed, "err", resp.Err)
		}
	}()

	// Negative sizes clamp to an empty canvas; oversized ones are refused
	// before anything is allocated.
	if err := apperr.ValidateDimensions(width, height); err != nil {
		return degraded(id, seed, width, height, err)
	}

	gen := bolt.NewGenerator(w.params, bolt.NewRand(seed))
	acc := gen.Generate(float64(width), float64(height))

	s := w.factory(width, height)
	if s == nil {
		return degraded(id, seed, width, height, apperr.New(apperr.ErrCodeInternal, "no surface for %dx%d", width, height))
	}
	w.renderer.Draw(s, acc.Segments())
	res := w.packager.Package(ctx, s, acc)
	if res.Err != nil {
		return degraded(id, seed, width, height, res.Err)
	}

	w.logger.Debug("strike",
		"id", id,
		"segments", acc.Len(),
		"branches", len(acc.Branches()),
		"max_width", fmt.Sprintf("%.2f", acc.MaxWidth()),
		"image", res.Image.Kind,
		"duration", time.Since(start))

	return Response{
		ID:             id,
		Image:          res.Image,
		ShakeIntensity: res.ShakeIntensity,
		DidStrike:      res.DidStrike,
		Seed:           seed,
		Width:          width,
		Height:         height,
		Segments:       acc.Segments(),
		Branches:       acc.Branches(),
		MaxWidth:       acc.MaxWidth(),
	}
}

func degraded(id string, seed uint64, width, height int, err error) Response {
	return Response{
		ID:     id,
		Seed:   seed,
		Width:  width,
		Height: height,
		Error:  err.Error(),
		Err:    err,
	}
}
