package domain

import "time"

type Jobseeker struct {
	ID         int64        `json:"id"`
	User       User         `json:"user"`
	Personal   PersonalInfo `json:"personal"`
	Address    Address      `json:"address"`
	Education  []Education  `json:"education"`
	Experience []Experience `json:"experience"`
	Skills     []Ref        `json:"skills"`
}

type PersonalInfo struct {
	FullName   string    `json:"fullName"`
	FatherName string    `json:"fatherName"`
	MotherName string    `json:"motherName"`
	BirthDate  time.Time `json:"birthDate"`
	Gender     string    `json:"gender"`
	NID        string    `json:"nid"`
	Mobile     string    `json:"mobile"`
	Email      string    `json:"email"`
}

type Address struct {
	Present   string `json:"present"`
	Permanent string `json:"permanent"`
	District  string `json:"district"`
	Zone      Ref    `json:"zone"`
}

type Education struct {
	ID          int64   `json:"id"`
	DegreeLevel Ref     `json:"degreeLevel"`
	Institution Ref     `json:"institution"`
	Subject     string  `json:"subject"`
	PassingYear int     `json:"passingYear"`
	Result      float64 `json:"result"`
}

type Experience struct {
	ID           int64      `json:"id"`
	Organization string     `json:"organization"`
	Designation  string     `json:"designation"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to,omitempty"`
}

// Current is true while the position has no end date.
func (e Experience) Current() bool { return e.To == nil || e.To.IsZero() }

// ProfileSection names an editable part of the jobseeker profile.
type ProfileSection string

const (
	SectionPersonal   ProfileSection = "personal"
	SectionAddress    ProfileSection = "address"
	SectionEducation  ProfileSection = "education"
	SectionExperience ProfileSection = "experience"
	SectionSkills     ProfileSection = "skills"
)

func ParseProfileSection(s string) (ProfileSection, bool) {
	switch sec := ProfileSection(s); sec {
	case SectionPersonal, SectionAddress, SectionEducation, SectionExperience, SectionSkills:
		return sec, true
	}
	return "", false
}

// Repeated sections hold a list of entries that are added and deleted one at a time.
func (s ProfileSection) Repeated() bool {
	return s == SectionEducation || s == SectionExperience
}

// Completion returns how many of the five sections carry data.
func (j Jobseeker) Completion() (done, total int) {
	total = 5
	if j.Personal.FullName != "" {
		done++
	}
	if j.Address.Present != "" {
		done++
	}
	if len(j.Education) > 0 {
		done++
	}
	if len(j.Experience) > 0 {
		done++
	}
	if len(j.Skills) > 0 {
		done++
	}
	return done, total
}
