package web

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"jobportal/internal/domain"
)

func applyAPI(fake *fakeAPI, c domain.Circular, profile domain.Jobseeker) http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /api/v1/circulars/{id}", fake.wrap(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, c, nil, "ok")
	}))
	api.HandleFunc("GET /api/v1/jobseeker/profile", fake.wrap(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, profile, nil, "ok")
	}))
	api.HandleFunc("POST /api/v1/jobseeker/applications", fake.wrap(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusCreated, domain.Application{ID: 1, Roll: "WB-0042", Status: domain.ApplicationApplied}, nil, "ok")
	}))
	return api
}

func completeProfile() domain.Jobseeker {
	var p domain.Jobseeker
	p.Personal.FullName = "Nadia Islam"
	return p
}

func TestApplySubmitsApplication(t *testing.T) {
	fake := &fakeAPI{}
	app := newTestApp(t, applyAPI(fake, testCircular(testNow.AddDate(0, 0, 3)), completeProfile()))
	c, csrf := app.signIn("jobseeker", "seeker-token")

	rec := app.post("/jobseeker/applications", url.Values{"_csrf": {csrf}, "circular_id": {"4"}, "requested_post_id": {"12"}}, c)
	assertRedirect(t, rec, "/jobseeker/applications")

	if fake.called("POST /api/v1/jobseeker/applications") != 1 {
		t.Fatalf("calls = %v", fake.calls)
	}
	var sent map[string]int64
	if err := json.Unmarshal([]byte(fake.body[len(fake.body)-1]), &sent); err != nil {
		t.Fatal(err)
	}
	if sent["circularId"] != 4 || sent["requestedPostId"] != 12 {
		t.Fatalf("apply body = %v", sent)
	}
	fl := app.flashes(c.Value)
	if len(fl) != 1 || !strings.Contains(fl[0].Message, "WB-0042") {
		t.Fatalf("flashes = %+v", fl)
	}
}

func TestApplyGuards(t *testing.T) {
	cases := []struct {
		name     string
		circular domain.Circular
		profile  domain.Jobseeker
		postID   string
		want     string
		message  string
	}{
		{"closed", testCircular(testNow.AddDate(0, 0, -1)), completeProfile(), "11", "/circulars/4", "closed"},
		{"foreign post", testCircular(testNow.AddDate(0, 0, 3)), completeProfile(), "99", "/circulars/4", "not part of this circular"},
		{"empty profile", testCircular(testNow.AddDate(0, 0, 3)), domain.Jobseeker{}, "11", "/jobseeker/profile/personal", "personal information"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeAPI{}
			app := newTestApp(t, applyAPI(fake, tc.circular, tc.profile))
			c, csrf := app.signIn("jobseeker", "tok")

			rec := app.post("/jobseeker/applications", url.Values{"_csrf": {csrf}, "circular_id": {"4"}, "requested_post_id": {tc.postID}}, c)
			assertRedirect(t, rec, tc.want)
			if fake.called("POST /api/v1/jobseeker/applications") != 0 {
				t.Fatal("application reached the api")
			}
			fl := app.flashes(c.Value)
			if len(fl) != 1 || fl[0].Kind != "error" || !strings.Contains(fl[0].Message, tc.message) {
				t.Fatalf("flashes = %+v", fl)
			}
		})
	}
}

func TestAdminCannotApply(t *testing.T) {
	fake := &fakeAPI{}
	app := newTestApp(t, applyAPI(fake, testCircular(testNow.AddDate(0, 0, 3)), completeProfile()))
	c, csrf := app.signIn("admin", "tok")

	rec := app.post("/jobseeker/applications", url.Values{"_csrf": {csrf}, "circular_id": {"4"}, "requested_post_id": {"11"}}, c)
	assertRedirect(t, rec, "/admin")
	if len(fake.calls) != 0 {
		t.Fatalf("api called: %v", fake.calls)
	}
}

func TestUnknownProfileSectionIs404(t *testing.T) {
	app := newTestApp(t, http.NotFoundHandler())
	c, _ := app.signIn("jobseeker", "tok")
	if rec := app.get("/jobseeker/profile/hobbies", c); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func profileAPI(fake *fakeAPI) http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /api/v1/jobseeker/profile", fake.wrap(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, completeProfile(), nil, "ok")
	}))
	for _, pattern := range []string{
		"PUT /api/v1/jobseeker/profile/{section}",
		"POST /api/v1/jobseeker/profile/{section}",
		"DELETE /api/v1/jobseeker/profile/{section}/{id}",
	} {
		api.HandleFunc(pattern, fake.wrap(func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusOK, nil, nil, "ok")
		}))
	}
	return api
}

func TestSaveSingleSection(t *testing.T) {
	fake := &fakeAPI{}
	app := newTestApp(t, profileAPI(fake))
	c, csrf := app.signIn("jobseeker", "seeker-token")

	rec := app.post("/jobseeker/profile/personal", url.Values{
		"_csrf":       {csrf},
		"full_name":   {"Nadia Islam"},
		"father_name": {"Rafiq Islam"},
		"mother_name": {"Salma Begum"},
		"birth_date":  {"1998-04-12"},
		"gender":      {"female"},
		"nid":         {"1998123456"},
		"mobile":      {"01712345678"},
		"email":       {"nadia@example.com"},
	}, c)
	assertRedirect(t, rec, "/jobseeker/profile")

	if fake.called("PUT /api/v1/jobseeker/profile/personal") != 1 {
		t.Fatalf("calls = %v", fake.calls)
	}
	var sent map[string]any
	if err := json.Unmarshal([]byte(fake.body[len(fake.body)-1]), &sent); err != nil {
		t.Fatal(err)
	}
	if sent["fullName"] != "Nadia Islam" || sent["nid"] != "1998123456" {
		t.Fatalf("payload = %v", sent)
	}
	if fake.auth[len(fake.auth)-1] != "Bearer seeker-token" {
		t.Fatalf("auth = %q", fake.auth)
	}
	fl := app.flashes(c.Value)
	if len(fl) != 1 || fl[0].Message != "Personal information saved." {
		t.Fatalf("flashes = %+v", fl)
	}
}

func TestSaveSectionRejectsInvalidForm(t *testing.T) {
	fake := &fakeAPI{}
	app := newTestApp(t, profileAPI(fake))
	c, csrf := app.signIn("jobseeker", "seeker-token")

	rec := app.post("/jobseeker/profile/personal", url.Values{"_csrf": {csrf}, "full_name": {"Nadia Islam"}, "mobile": {"12345"}}, c)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	if fake.called("PUT /api/v1/jobseeker/profile/personal") != 0 {
		t.Fatal("invalid section sent to the API")
	}
	d := doc(t, rec)
	if v, _ := d.Find(`input[name="full_name"]`).Attr("value"); v != "Nadia Islam" {
		t.Fatalf("full_name not kept: %q", v)
	}
	if d.Find(".field-error").Length() == 0 {
		t.Fatal("no field errors rendered")
	}
}

func TestAddAndRemoveRepeatedEntry(t *testing.T) {
	fake := &fakeAPI{}
	app := newTestApp(t, profileAPI(fake))
	c, csrf := app.signIn("jobseeker", "seeker-token")

	rec := app.post("/jobseeker/profile/education", url.Values{
		"_csrf":           {csrf},
		"degree_level_id": {"2"},
		"institution_id":  {"5"},
		"subject":         {"Accounting"},
		"passing_year":    {"2018"},
		"result":          {"3.75"},
	}, c)
	assertRedirect(t, rec, "/jobseeker/profile/education")
	if fake.called("POST /api/v1/jobseeker/profile/education") != 1 {
		t.Fatalf("calls = %v", fake.calls)
	}
	var sent map[string]any
	if err := json.Unmarshal([]byte(fake.body[len(fake.body)-1]), &sent); err != nil {
		t.Fatal(err)
	}
	if sent["degreeLevelId"] != float64(2) || sent["passingYear"] != float64(2018) {
		t.Fatalf("payload = %v", sent)
	}

	rec = app.post("/jobseeker/profile/education/7/delete", url.Values{"_csrf": {csrf}}, c)
	assertRedirect(t, rec, "/jobseeker/profile/education")
	if fake.called("DELETE /api/v1/jobseeker/profile/education/7") != 1 {
		t.Fatalf("calls = %v", fake.calls)
	}

	fl := app.flashes(c.Value)
	if len(fl) != 2 || fl[0].Message != "Education entry added." || fl[1].Message != "Education entry removed." {
		t.Fatalf("flashes = %+v", fl)
	}
}

func TestDeleteEntryOnlyForRepeatedSections(t *testing.T) {
	fake := &fakeAPI{}
	app := newTestApp(t, profileAPI(fake))
	c, csrf := app.signIn("jobseeker", "seeker-token")

	rec := app.post("/jobseeker/profile/personal/7/delete", url.Values{"_csrf": {csrf}}, c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(fake.calls) != 0 {
		t.Fatalf("calls = %v", fake.calls)
	}
}

func passwordAPI(fake *fakeAPI, status int, msg string) http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("PUT /api/v1/auth/password", fake.wrap(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, status, nil, nil, msg)
	}))
	return api
}

func TestChangePassword(t *testing.T) {
	fake := &fakeAPI{}
	app := newTestApp(t, passwordAPI(fake, http.StatusOK, "ok"))
	c, csrf := app.signIn("jobseeker", "seeker-token")

	rec := app.post("/jobseeker/password", url.Values{
		"_csrf": {csrf}, "current_password": {"oldpass11"}, "new_password": {"newpass22"}, "confirm_password": {"newpass22"},
	}, c)
	assertRedirect(t, rec, "/jobseeker")

	var sent map[string]string
	if err := json.Unmarshal([]byte(fake.body[0]), &sent); err != nil {
		t.Fatal(err)
	}
	if sent["currentPassword"] != "oldpass11" || sent["newPassword"] != "newpass22" {
		t.Fatalf("payload = %v", sent)
	}
	fl := app.flashes(c.Value)
	if len(fl) != 1 || fl[0].Kind != "success" {
		t.Fatalf("flashes = %+v", fl)
	}
}

func TestChangePasswordFailures(t *testing.T) {
	t.Run("mismatch", func(t *testing.T) {
		fake := &fakeAPI{}
		app := newTestApp(t, passwordAPI(fake, http.StatusOK, "ok"))
		c, csrf := app.signIn("jobseeker", "seeker-token")
		rec := app.post("/jobseeker/password", url.Values{
			"_csrf": {csrf}, "current_password": {"oldpass11"}, "new_password": {"newpass22"}, "confirm_password": {"newpass23"},
		}, c)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d", rec.Code)
		}
		if len(fake.calls) != 0 {
			t.Fatal("mismatched passwords sent to the API")
		}
	})

	t.Run("wrong current password", func(t *testing.T) {
		fake := &fakeAPI{}
		app := newTestApp(t, passwordAPI(fake, http.StatusBadRequest, "Current password is incorrect."))
		c, csrf := app.signIn("jobseeker", "seeker-token")
		rec := app.post("/jobseeker/password", url.Values{
			"_csrf": {csrf}, "current_password": {"oldpass11"}, "new_password": {"newpass22"}, "confirm_password": {"newpass22"},
		}, c)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d", rec.Code)
		}
		if got := doc(t, rec).Find(".alert-error").Text(); got != "Current password is incorrect." {
			t.Fatalf("form error = %q", got)
		}
		// passwords are never echoed back
		if strings.Contains(rec.Body.String(), "oldpass11") {
			t.Fatal("current password rendered")
		}
	})
}
