// Package lookup serves master-data dropdown options from a TTL cache.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"jobportal/internal/apiclient"
	"jobportal/internal/domain"
)

const keyPrefix = "lookup:"

// Source loads one full master-data collection from the API.
type Source interface {
	List(ctx context.Context, kind domain.MasterKind) ([]domain.MasterRecord, error)
}

// APISource reads collections through the REST client in one large page.
type APISource struct {
	Client *apiclient.Client
	Limit  int
}

func (s APISource) List(ctx context.Context, kind domain.MasterKind) ([]domain.MasterRecord, error) {
	limit := s.Limit
	if limit <= 0 {
		limit = 1000
	}
	page, err := s.Client.Master(kind).List(ctx, apiclient.ListQuery{Page: 1, Limit: limit})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

type Service struct {
	src   Source
	cache Cache
	ttl   time.Duration
}

func New(src Source, cache Cache, ttl time.Duration) *Service {
	return &Service{src: src, cache: cache, ttl: ttl}
}

func key(slug string) string { return keyPrefix + slug }

// Options returns the active records of a kind as dropdown entries sorted the way the API sent them.
// A cache failure degrades to a direct API call.
func (s *Service) Options(ctx context.Context, slug string) ([]domain.Option, error) {
	kind, ok := domain.LookupMasterKind(slug)
	if !ok {
		return nil, fmt.Errorf("unknown master data kind %q", slug)
	}

	if b, hit, err := s.cache.Get(ctx, key(slug)); err != nil {
		log.Printf("[lookup] cache get kind=%s err=%v", slug, err)
	} else if hit {
		var opts []domain.Option
		if err := json.Unmarshal(b, &opts); err == nil {
			return opts, nil
		}
	}

	return s.refresh(ctx, kind)
}

func (s *Service) refresh(ctx context.Context, kind domain.MasterKind) ([]domain.Option, error) {
	recs, err := s.src.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	opts := make([]domain.Option, 0, len(recs))
	for _, r := range recs {
		if !r.Active {
			continue
		}
		label := r.Name
		if r.Code != "" {
			label = r.Name + " (" + r.Code + ")"
		}
		opts = append(opts, domain.Option{ID: r.ID, Label: label})
	}
	if b, err := json.Marshal(opts); err == nil {
		if err := s.cache.Set(ctx, key(kind.Slug), b, s.ttl); err != nil {
			log.Printf("[lookup] cache set kind=%s err=%v", kind.Slug, err)
		}
	}
	return opts, nil
}

// Invalidate drops the cached options of a kind after a write.
func (s *Service) Invalidate(ctx context.Context, slug string) error {
	return s.cache.DeletePrefix(ctx, key(slug))
}

// Warm refreshes every kind; failures are collected, not fatal.
func (s *Service) Warm(ctx context.Context) error {
	var failed []string
	for _, k := range domain.MasterKinds() {
		if _, err := s.refresh(ctx, k); err != nil {
			failed = append(failed, k.Slug+": "+err.Error())
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("warm lookups: %s", strings.Join(failed, "; "))
	}
	return nil
}
