package report

import (
	"io"
	"strconv"
	"time"

	"jobportal/internal/domain"
)

// JobRequestSummary writes the job request header and its requested posts.
func JobRequestSummary(w io.Writer, jr domain.JobRequest, generated time.Time) error {
	d := newDoc("Job Request Summary", generated)

	d.section("Request")
	d.field("Memo no.", jr.MemoNo)
	d.field("Organization", jr.Organization.Name)
	d.field("Request date", date(jr.RequestDate))
	d.field("Total vacancies", strconv.Itoa(jr.TotalQuantity()))
	if jr.Note != "" {
		d.field("Note", jr.Note)
	}

	d.section("Requested posts")
	rows := make([][]string, 0, len(jr.Posts))
	for i, p := range jr.Posts {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			p.Post.Name,
			p.Category.Name,
			p.Zone.Name,
			strconv.Itoa(p.Quantity),
			Money(p.Salary),
			p.Status.Label(),
		})
	}
	d.table(
		[]float64{10, 45, 35, 30, 18, 26, 26},
		[]string{"#", "Post", "Category", "Zone", "Qty", "Salary", "Status"},
		rows,
	)
	return d.write(w)
}

// ApplicantList writes every application received for one requested post.
func ApplicantList(w io.Writer, post domain.RequestedPost, apps []domain.Application, generated time.Time) error {
	d := newDoc("Applicant List", generated)

	d.section("Requested post")
	d.field("Post", post.Post.Name)
	d.field("Category", post.Category.Name)
	d.field("Zone", post.Zone.Name)
	d.field("Vacancies", strconv.Itoa(post.Quantity))
	d.field("Status", post.Status.Label())
	d.field("Applicants", strconv.Itoa(len(apps)))

	d.section("Applicants")
	rows := make([][]string, 0, len(apps))
	for i, a := range apps {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			a.Roll,
			a.Jobseeker.Name,
			date(a.AppliedAt),
			a.Status.Label(),
		})
	}
	d.table(
		[]float64{12, 35, 73, 35, 35},
		[]string{"#", "Roll", "Name", "Applied", "Status"},
		rows,
	)
	return d.write(w)
}

// ApplicationCopy is the jobseeker's printable copy of one application.
func ApplicationCopy(w io.Writer, app domain.Application, js domain.Jobseeker, generated time.Time) error {
	d := newDoc("Application Copy", generated)

	d.section("Application")
	d.field("Roll", app.Roll)
	d.field("Circular", app.Circular.Name)
	d.field("Post", app.RequestedPost.Post.Name)
	d.field("Zone", app.RequestedPost.Zone.Name)
	d.field("Applied on", date(app.AppliedAt))
	d.field("Status", app.Status.Label())

	p := js.Personal
	name := p.FullName
	if name == "" {
		name = js.User.Name
	}
	d.section("Applicant")
	d.field("Name", name)
	d.field("Father's name", p.FatherName)
	d.field("Mother's name", p.MotherName)
	d.field("Date of birth", date(p.BirthDate))
	d.field("NID", p.NID)
	d.field("Mobile", firstNonEmpty(p.Mobile, js.User.Mobile))
	d.field("Email", firstNonEmpty(p.Email, js.User.Email))
	d.field("Present address", js.Address.Present)
	d.field("Permanent address", js.Address.Permanent)

	if len(js.Education) > 0 {
		d.section("Education")
		rows := make([][]string, 0, len(js.Education))
		for _, e := range js.Education {
			rows = append(rows, []string{
				e.DegreeLevel.Name,
				e.Institution.Name,
				e.Subject,
				strconv.Itoa(e.PassingYear),
				strconv.FormatFloat(e.Result, 'f', 2, 64),
			})
		}
		d.table(
			[]float64{35, 65, 40, 25, 25},
			[]string{"Degree", "Institution", "Subject", "Year", "Result"},
			rows,
		)
	}

	if len(js.Experience) > 0 {
		d.section("Experience")
		rows := make([][]string, 0, len(js.Experience))
		for _, e := range js.Experience {
			to := "Present"
			if !e.Current() {
				to = date(*e.To)
			}
			rows = append(rows, []string{e.Organization, e.Designation, date(e.From), to})
		}
		d.table(
			[]float64{70, 50, 35, 35},
			[]string{"Organization", "Designation", "From", "To"},
			rows,
		)
	}
	return d.write(w)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
