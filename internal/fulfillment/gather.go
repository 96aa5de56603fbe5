package fulfillment

import (
	"context"
	"errors"

	"github.com/okian/fulfillment/internal/domain/lookup"
	"github.com/okian/fulfillment/internal/domain/model"
	"github.com/okian/fulfillment/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// gatherPlayers fetches every distinct id concurrently and waits for all of
// them. Missing players are left out of the result; any other failure aborts
// the whole gather.
func (h *Handlers) gatherPlayers(ctx context.Context, ids []string) (map[string]model.Player, error) {
	ids = distinct(ids)
	metrics.RecordFanout(len(ids))

	found := make([]*model.Player, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.fanout)
	for i, id := range ids {
		g.Go(func() error {
			p, err := h.players.Get(gctx, id)
			if errors.Is(err, lookup.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			found[i] = &p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]model.Player, len(ids))
	for i, p := range found {
		if p != nil {
			out[ids[i]] = *p
		}
	}
	return out, nil
}

// missingPlayer names the first player a gather could not find.
type missingPlayer struct {
	name string
	err  error
}

func (e *missingPlayer) Error() string { return e.err.Error() }
func (e *missingPlayer) Unwrap() error { return e.err }

// findPlayers looks names up concurrently and returns them in input order.
// A missing name surfaces as *missingPlayer once every lookup has finished.
func (h *Handlers) findPlayers(ctx context.Context, names ...string) ([]model.Player, error) {
	metrics.RecordFanout(len(names))

	out := make([]model.Player, len(names))
	errs := make([]error, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.fanout)
	for i, name := range names {
		g.Go(func() error {
			p, err := h.players.Find(gctx, name)
			if err != nil {
				errs[i] = err
				if errors.Is(err, lookup.ErrNotFound) {
					return nil
				}
				return err
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, err := range errs {
		if err != nil {
			return nil, &missingPlayer{name: names[i], err: err}
		}
	}
	return out, nil
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
