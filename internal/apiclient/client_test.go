package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"jobportal/internal/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc, serviceToken string) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL + "/api/v1/", ServiceToken: serviceToken})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func writeEnvelope(w http.ResponseWriter, status int, body any, meta *Meta, msg string) {
	b, _ := json.Marshal(body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Body: b, Meta: meta, Message: msg, Status: status})
}

func TestListDecodesEnvelopeAndQuery(t *testing.T) {
	var gotPath, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		writeEnvelope(w, 200, []domain.MasterRecord{{ID: 1, Name: "Go"}, {ID: 2, Name: "SQL"}},
			&Meta{Page: 2, Limit: 2, Total: 7}, "ok")
	}, "")

	kind, _ := domain.LookupMasterKind("skills")
	page, err := c.Master(kind).List(context.Background(), ListQuery{
		Page: 2, Limit: 2, Search: "go", Filters: map[string]string{"active": "true", "empty": ""},
	})
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/api/v1/skills" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "active=true&limit=2&page=2&search=go" {
		t.Errorf("query = %q", gotQuery)
	}
	if len(page.Items) != 2 || page.Items[1].Name != "SQL" {
		t.Errorf("items = %+v", page.Items)
	}
	if page.Meta.TotalPages != 4 {
		t.Errorf("totalPages = %d, want 4", page.Meta.TotalPages)
	}
}

func TestListWithoutMeta(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 200, []domain.Examiner{{ID: 1}}, nil, "")
	}, "")
	page, err := c.Examiners().List(context.Background(), ListQuery{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if page.Meta.Page != 1 || page.Meta.TotalPages != 1 || page.Meta.Total != 1 {
		t.Fatalf("meta = %+v", page.Meta)
	}
}

func TestBearerTokenSelection(t *testing.T) {
	var auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		writeEnvelope(w, 200, domain.Circular{ID: 3}, nil, "")
	}, "svc-token")

	if _, err := c.Circulars().Get(context.Background(), 3); err != nil {
		t.Fatal(err)
	}
	if auth != "Bearer svc-token" {
		t.Errorf("anonymous auth = %q", auth)
	}

	ctx := WithToken(context.Background(), "user-token")
	if _, err := c.Circulars().Get(ctx, 3); err != nil {
		t.Fatal(err)
	}
	if auth != "Bearer user-token" {
		t.Errorf("user auth = %q", auth)
	}
}

func TestSetServiceToken(t *testing.T) {
	var auth []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = append(auth, r.Header.Get("Authorization"))
		writeEnvelope(w, 200, domain.Circular{ID: 3}, nil, "")
	}, "")
	ctx := context.Background()

	c.SetServiceToken("rotated")
	if !c.HasServiceToken() {
		t.Fatal("token not recorded")
	}
	if _, err := c.Circulars().Get(ctx, 3); err != nil {
		t.Fatal(err)
	}
	c.SetServiceToken("")
	if c.HasServiceToken() {
		t.Fatal("token not cleared")
	}
	if _, err := c.Circulars().Get(ctx, 3); err != nil {
		t.Fatal(err)
	}
	if len(auth) != 2 || auth[0] != "Bearer rotated" || auth[1] != "" {
		t.Fatalf("auth headers = %q", auth)
	}
}

func TestNoTokenMeansNoHeader(t *testing.T) {
	var has bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, has = r.Header["Authorization"]
		writeEnvelope(w, 200, nil, nil, "")
	}, "")
	if err := c.Examiners().Delete(context.Background(), 9); err != nil {
		t.Fatal(err)
	}
	if has {
		t.Fatal("Authorization header sent without a token")
	}
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, nil, nil, "token expired")
	}, "")
	_, err := c.Profile(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatal("401 must not match ErrNotFound")
	}
}

func TestValidationErrorsAreExposed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["name"] != "Dhaka" {
			t.Errorf("body = %v", in)
		}
		writeEnvelope(w, http.StatusUnprocessableEntity,
			map[string]any{"errors": map[string]string{"code": "Code already exists"}}, nil, "Validation failed")
	}, "")

	kind, _ := domain.LookupMasterKind("zones")
	_, err := c.Master(kind).Create(context.Background(), domain.MasterRecord{Name: "Dhaka", Code: "DHK"})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := FieldErrors(err)["code"]; got != "Code already exists" {
		t.Errorf("field error = %q", got)
	}
	if UserMessage(err) != "Validation failed" {
		t.Errorf("UserMessage = %q", UserMessage(err))
	}
}

func TestServerErrorsUseFallbackMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>oops</html>"))
	}, "")
	_, err := c.JobRequests().Get(context.Background(), 1)
	var ae *APIError
	if !errors.As(err, &ae) || ae.StatusCode != 500 {
		t.Fatalf("err = %v", err)
	}
	if UserMessage(err) != FallbackMessage {
		t.Errorf("UserMessage = %q", UserMessage(err))
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: base})
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Circulars().List(context.Background(), ListQuery{})
	var ae *APIError
	if !errors.As(err, &ae) || ae.StatusCode != 0 || ae.Err == nil {
		t.Fatalf("err = %#v", err)
	}
	if UserMessage(err) != FallbackMessage {
		t.Errorf("UserMessage = %q", UserMessage(err))
	}
}

func TestStatusUpdatePath(t *testing.T) {
	var path string
	var body statusBody
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeEnvelope(w, 200, domain.RequestedPost{ID: 5, Status: domain.PostProcessing}, nil, "")
	}, "")
	rp, err := c.UpdateRequestedPostStatus(context.Background(), 5, domain.PostProcessing)
	if err != nil {
		t.Fatal(err)
	}
	if path != "/api/v1/requested-posts/5/status" || body.Status != "processing" || rp.Status != domain.PostProcessing {
		t.Fatalf("path=%q body=%+v rp=%+v", path, body, rp)
	}
}

func TestNewRejectsRelativeURL(t *testing.T) {
	if _, err := New(Options{BaseURL: "/api"}); err == nil {
		t.Fatal("relative base url accepted")
	}
}
