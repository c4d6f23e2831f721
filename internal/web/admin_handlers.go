package web

import (
	"context"
	"errors"
	"log"
	"net/http"

	"golang.org/x/sync/errgroup"

	"jobportal/internal/apiclient"
	"jobportal/internal/domain"
)

type AdminHandler struct{ base }

type counter struct {
	Label  string
	Link   string
	Value  int
	Failed bool
}

type dashboardData struct {
	Counters []counter
	Recent   []domain.JobRequest
}

func total[T any](ctx context.Context, res apiclient.Resource[T], filters map[string]string) (int, error) {
	page, err := res.List(ctx, apiclient.ListQuery{Page: 1, Limit: 1, Filters: filters})
	if err != nil {
		return 0, err
	}
	return page.Meta.Total, nil
}

// Dashboard loads its counters in parallel; a failed counter renders as a dash instead of failing the page.
func (h AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	api := h.d.API
	data := dashboardData{Counters: []counter{
		{Label: "Circulars", Link: "/circulars"},
		{Label: "Job requests", Link: "/admin/job-requests"},
		{Label: "Pending posts", Link: "/admin/requested-posts?status=pending"},
		{Label: "Applications", Link: "/admin/applicants"},
		{Label: "Examiners", Link: "/admin/examiners"},
	}}
	loaders := []func() (int, error){
		func() (int, error) { return total(ctx, api.Circulars(), nil) },
		func() (int, error) { return total(ctx, api.JobRequests(), nil) },
		func() (int, error) {
			return total(ctx, api.RequestedPosts(), map[string]string{"status": string(domain.PostPending)})
		},
		func() (int, error) { return total(ctx, api.Applications(), nil) },
		func() (int, error) { return total(ctx, api.Examiners(), nil) },
	}

	errs := make([]error, len(loaders)+1)
	var g errgroup.Group
	for i, load := range loaders {
		g.Go(func() error {
			n, err := load()
			if err != nil {
				errs[i] = err
				data.Counters[i].Failed = true
				return nil
			}
			data.Counters[i].Value = n
			return nil
		})
	}
	g.Go(func() error {
		page, err := api.JobRequests().List(ctx, apiclient.ListQuery{Page: 1, Limit: 5})
		if err != nil {
			errs[len(loaders)] = err
			return nil
		}
		data.Recent = page.Items
		return nil
	})
	_ = g.Wait()

	for _, err := range errs {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			h.expire(w, r)
			return
		}
		if err != nil {
			log.Printf("level=warn msg=\"dashboard load failed\" request_id=%s err=%v", RequestIDFrom(ctx), err)
		}
	}

	v := h.view(w, r, "Dashboard")
	v.Data = data
	h.render(w, r, http.StatusOK, "admin_dashboard", v)
}
