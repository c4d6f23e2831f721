package domain

import "strings"

// PostStatus tracks a requested post through recruitment.
type PostStatus string

const (
	PostPending     PostStatus = "pending"
	PostProcessing  PostStatus = "processing"
	PostShortlisted PostStatus = "shortlisted"
	PostCompleted   PostStatus = "completed"
)

var postStatusOrder = []PostStatus{PostPending, PostProcessing, PostShortlisted, PostCompleted}

// PostStatuses returns the lifecycle in order.
func PostStatuses() []PostStatus {
	out := make([]PostStatus, len(postStatusOrder))
	copy(out, postStatusOrder)
	return out
}

func ParsePostStatus(s string) (PostStatus, bool) {
	st := PostStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range postStatusOrder {
		if v == st {
			return st, true
		}
	}
	return "", false
}

func (s PostStatus) index() int {
	for i, v := range postStatusOrder {
		if v == s {
			return i
		}
	}
	return -1
}

// Next returns the following status; ok is false for completed or unknown values.
func (s PostStatus) Next() (PostStatus, bool) {
	i := s.index()
	if i < 0 || i == len(postStatusOrder)-1 {
		return "", false
	}
	return postStatusOrder[i+1], true
}

// CanAdvanceTo reports whether to is the immediate successor of s.
func (s PostStatus) CanAdvanceTo(to PostStatus) bool {
	next, ok := s.Next()
	return ok && next == to
}

func (s PostStatus) Label() string {
	if s == "" {
		return "Unknown"
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// ApplicationStatus is the state of a jobseeker's application.
type ApplicationStatus string

const (
	ApplicationApplied     ApplicationStatus = "applied"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationRejected    ApplicationStatus = "rejected"
	ApplicationSelected    ApplicationStatus = "selected"
)

var applicationStatuses = []ApplicationStatus{
	ApplicationApplied, ApplicationShortlisted, ApplicationRejected, ApplicationSelected,
}

func ApplicationStatuses() []ApplicationStatus {
	out := make([]ApplicationStatus, len(applicationStatuses))
	copy(out, applicationStatuses)
	return out
}

func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	st := ApplicationStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range applicationStatuses {
		if v == st {
			return st, true
		}
	}
	return "", false
}

// Final is true once a decision has been recorded.
func (s ApplicationStatus) Final() bool {
	return s == ApplicationRejected || s == ApplicationSelected
}

func (s ApplicationStatus) Label() string {
	if s == "" {
		return "Unknown"
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}
