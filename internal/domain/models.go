package domain

import "time"

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleJobseeker Role = "jobseeker"
)

// Home is the console landing path for a role.
func (r Role) Home() string {
	switch r {
	case RoleAdmin:
		return "/admin"
	case RoleJobseeker:
		return "/jobseeker"
	default:
		return "/"
	}
}

type User struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
	Role   Role   `json:"role"`
}

// Ref is a lightweight reference to another entity as the API embeds it.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Circular struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Organization Ref             `json:"organization"`
	Description  string          `json:"description"`
	Vacancies    int             `json:"vacancies"`
	PublishedAt  time.Time       `json:"publishedAt"`
	Deadline     time.Time       `json:"deadline"`
	Posts        []RequestedPost `json:"posts,omitempty"`
}

// Open reports whether applications are still accepted; the deadline day is inclusive.
func (c Circular) Open(now time.Time) bool {
	if c.Deadline.IsZero() {
		return true
	}
	y, m, d := c.Deadline.Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, c.Deadline.Location()).AddDate(0, 0, 1)
	return now.Before(end)
}

type JobRequest struct {
	ID           int64           `json:"id"`
	Organization Ref             `json:"organization"`
	MemoNo       string          `json:"memoNo"`
	RequestDate  time.Time       `json:"requestDate"`
	Note         string          `json:"note"`
	Posts        []RequestedPost `json:"posts,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// TotalQuantity sums the vacancies across all requested posts.
func (j JobRequest) TotalQuantity() int {
	n := 0
	for _, p := range j.Posts {
		n += p.Quantity
	}
	return n
}

type RequestedPost struct {
	ID             int64      `json:"id"`
	JobRequestID   int64      `json:"jobRequestId"`
	Post           Ref        `json:"post"`
	Category       Ref        `json:"category"`
	Zone           Ref        `json:"zone"`
	Quantity       int        `json:"quantity"`
	Salary         int64      `json:"salary"`
	Status         PostStatus `json:"status"`
	ApplicantCount int        `json:"applicantCount"`
}

type Application struct {
	ID            int64             `json:"id"`
	Roll          string            `json:"roll"`
	Jobseeker     Ref               `json:"jobseeker"`
	Circular      Ref               `json:"circular"`
	RequestedPost RequestedPost     `json:"requestedPost"`
	Status        ApplicationStatus `json:"status"`
	AppliedAt     time.Time         `json:"appliedAt"`
}

type Examiner struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Designation  string `json:"designation"`
	Organization string `json:"organization"`
	Email        string `json:"email"`
	Mobile       string `json:"mobile"`
	Active       bool   `json:"active"`
}

// Option is one entry of a dropdown.
type Option struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}
