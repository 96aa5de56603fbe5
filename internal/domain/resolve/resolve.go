// Package resolve decides which subject a conversational turn is about.
//
// A turn names its subject explicitly through a parameter, or leans on what
// was said before through contexts replayed by the platform. Among the
// contexts an intent declares relevant, the one with the greatest remaining
// lifespan wins; on equal lifespans the context declared first wins.
package resolve

import (
	"github.com/okian/fulfillment/internal/domain/model"
)

// Source tells where a resolved subject came from.
type Source string

// Sources.
const (
	SourceExplicit Source = "explicit"
	SourceContext  Source = "context"
	SourceNone     Source = "none"
)

// Result is a resolved subject.
type Result struct {
	Name    string
	Source  Source
	Context model.ContextName // set when Source is SourceContext
}

// Resolver resolves one subject parameter for an intent.
type Resolver struct {
	key      string
	explicit []string
	relevant []model.ContextName
}

// New returns a Resolver reading the subject from param key, falling back to
// relevant contexts in declaration order.
func New(key string, relevant ...model.ContextName) Resolver {
	return Resolver{key: key, relevant: append([]model.ContextName(nil), relevant...)}
}

// Explicit returns a copy of r that reads the turn's own subject from keys,
// in order, before key. Context payloads are still read under key.
func (r Resolver) Explicit(keys ...string) Resolver {
	r.explicit = append(append([]string(nil), keys...), r.key)
	return r
}

// Key is the parameter context payloads carry the subject under.
func (r Resolver) Key() string { return r.key }

// Params lists the turn parameters consulted for an explicit subject.
func (r Resolver) Params() []string {
	if len(r.explicit) == 0 {
		return []string{r.key}
	}
	return append([]string(nil), r.explicit...)
}

// Relevant returns the declared contexts in tie-break order.
func (r Resolver) Relevant() []model.ContextName {
	return append([]model.ContextName(nil), r.relevant...)
}

// Resolve returns the subject for the turn or ErrNoSubject.
func (r Resolver) Resolve(params map[string]any, contexts []model.Context) (Result, error) {
	for _, key := range r.Params() {
		if name, ok := model.Subject(params, key); ok {
			return Result{Name: name, Source: SourceExplicit}, nil
		}
	}

	live := index(contexts)
	var (
		best  *model.Context
		found string
	)
	for _, name := range r.relevant {
		c, ok := live[name]
		if !ok {
			continue
		}
		subject, ok := model.Subject(c.Parameters, r.key)
		if !ok {
			continue
		}
		// strictly greater: the earlier declaration keeps ties
		if best == nil || c.Lifespan > best.Lifespan {
			best, found = c, subject
		}
	}
	if best == nil {
		return Result{Source: SourceNone}, ErrNoSubject
	}
	return Result{Name: found, Source: SourceContext, Context: best.Name}, nil
}

// index keeps the live contexts by name. When the platform repeats a name the
// longest-lived copy is kept.
func index(contexts []model.Context) map[model.ContextName]*model.Context {
	out := make(map[model.ContextName]*model.Context, len(contexts))
	for i := range contexts {
		c := &contexts[i]
		if c.Expired() {
			continue
		}
		if prev, ok := out[c.Name]; ok && prev.Lifespan >= c.Lifespan {
			continue
		}
		out[c.Name] = c
	}
	return out
}
