package validation

import (
	"strings"

	"jobportal/internal/domain"
)

// DateLayout is the HTML date input format.
const DateLayout = "2006-01-02"

type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

type SignupForm struct {
	Name            string `form:"name" validate:"required,min=3,max=100"`
	Email           string `form:"email" validate:"required,email"`
	Mobile          string `form:"mobile" validate:"required,mobile"`
	Password        string `form:"password" validate:"required,password"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
	AcceptTerms     bool   `form:"accept_terms" validate:"required"`
}

type ChangePasswordForm struct {
	CurrentPassword string `form:"current_password" validate:"required"`
	NewPassword     string `form:"new_password" validate:"required,password,nefield=CurrentPassword"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=NewPassword"`
}

type MasterForm struct {
	Name        string `form:"name" validate:"required,min=2,max=150"`
	Code        string `form:"code" validate:"max=20"`
	Description string `form:"description" validate:"max=500"`
	SortOrder   int    `form:"sort_order" validate:"min=0,max=1000"`
	Active      bool   `form:"active"`
}

// CheckMaster applies the generic rules plus the kind's own requirements.
func CheckMaster(f *MasterForm, kind domain.MasterKind) Errors {
	f.Name = strings.TrimSpace(f.Name)
	f.Code = strings.ToUpper(strings.TrimSpace(f.Code))
	f.Description = strings.TrimSpace(f.Description)
	if !kind.UsesCode {
		f.Code = ""
	}
	if !kind.UsesDescription {
		f.Description = ""
	}
	if !kind.UsesSortOrder {
		f.SortOrder = 0
	}

	errs := Check(f)
	if kind.CodeRequired && f.Code == "" {
		if errs == nil {
			errs = Errors{}
		}
		errs.Add("code", "is required")
	}
	return errs
}

func (f MasterForm) Record() domain.MasterRecord {
	return domain.MasterRecord{
		Name:        f.Name,
		Code:        f.Code,
		Description: f.Description,
		SortOrder:   f.SortOrder,
		Active:      f.Active,
	}
}

func MasterFormFrom(r domain.MasterRecord) MasterForm {
	return MasterForm{Name: r.Name, Code: r.Code, Description: r.Description, SortOrder: r.SortOrder, Active: r.Active}
}

type JobRequestForm struct {
	OrganizationID int64  `form:"organization_id" validate:"required"`
	MemoNo         string `form:"memo_no" validate:"required,max=60"`
	RequestDate    string `form:"request_date" validate:"required,datetime=2006-01-02"`
	Note           string `form:"note" validate:"max=1000"`
}

type JobRequestPayload struct {
	OrganizationID int64  `json:"organizationId"`
	MemoNo         string `json:"memoNo"`
	RequestDate    string `json:"requestDate"`
	Note           string `json:"note"`
}

func (f JobRequestForm) Payload() JobRequestPayload {
	return JobRequestPayload{
		OrganizationID: f.OrganizationID,
		MemoNo:         strings.TrimSpace(f.MemoNo),
		RequestDate:    f.RequestDate,
		Note:           strings.TrimSpace(f.Note),
	}
}

func JobRequestFormFrom(j domain.JobRequest) JobRequestForm {
	f := JobRequestForm{OrganizationID: j.Organization.ID, MemoNo: j.MemoNo, Note: j.Note}
	if !j.RequestDate.IsZero() {
		f.RequestDate = j.RequestDate.Format(DateLayout)
	}
	return f
}

type RequestedPostForm struct {
	PostID     int64 `form:"post_id" validate:"required"`
	CategoryID int64 `form:"category_id" validate:"required"`
	ZoneID     int64 `form:"zone_id" validate:"required"`
	Quantity   int   `form:"quantity" validate:"min=1,max=500"`
	Salary     int64 `form:"salary" validate:"min=0,max=10000000"`
}

type StatusForm struct {
	Status string `form:"status" validate:"required"`
}

type ExaminerForm struct {
	Name         string `form:"name" validate:"required,min=3,max=100"`
	Designation  string `form:"designation" validate:"required,max=100"`
	Organization string `form:"organization" validate:"required,max=150"`
	Email        string `form:"email" validate:"required,email"`
	Mobile       string `form:"mobile" validate:"required,mobile"`
	Active       bool   `form:"active"`
}

func (f ExaminerForm) Examiner() domain.Examiner {
	return domain.Examiner{
		Name:         strings.TrimSpace(f.Name),
		Designation:  strings.TrimSpace(f.Designation),
		Organization: strings.TrimSpace(f.Organization),
		Email:        strings.TrimSpace(f.Email),
		Mobile:       strings.TrimSpace(f.Mobile),
		Active:       f.Active,
	}
}

func ExaminerFormFrom(e domain.Examiner) ExaminerForm {
	return ExaminerForm{
		Name: e.Name, Designation: e.Designation, Organization: e.Organization,
		Email: e.Email, Mobile: e.Mobile, Active: e.Active,
	}
}

type PersonalForm struct {
	FullName   string `form:"full_name" validate:"required,min=3,max=100"`
	FatherName string `form:"father_name" validate:"required,max=100"`
	MotherName string `form:"mother_name" validate:"required,max=100"`
	BirthDate  string `form:"birth_date" validate:"required,datetime=2006-01-02"`
	Gender     string `form:"gender" validate:"required,oneof=male female other"`
	NID        string `form:"nid" validate:"required,numeric,min=10,max=17"`
	Mobile     string `form:"mobile" validate:"required,mobile"`
	Email      string `form:"email" validate:"required,email"`
}

type PersonalPayload struct {
	FullName   string `json:"fullName"`
	FatherName string `json:"fatherName"`
	MotherName string `json:"motherName"`
	BirthDate  string `json:"birthDate"`
	Gender     string `json:"gender"`
	NID        string `json:"nid"`
	Mobile     string `json:"mobile"`
	Email      string `json:"email"`
}

func (f PersonalForm) Payload() PersonalPayload {
	return PersonalPayload(f)
}

func PersonalFormFrom(p domain.PersonalInfo) PersonalForm {
	f := PersonalForm{
		FullName: p.FullName, FatherName: p.FatherName, MotherName: p.MotherName,
		Gender: p.Gender, NID: p.NID, Mobile: p.Mobile, Email: p.Email,
	}
	if !p.BirthDate.IsZero() {
		f.BirthDate = p.BirthDate.Format(DateLayout)
	}
	return f
}

type AddressForm struct {
	Present   string `form:"present" validate:"required,max=300"`
	Permanent string `form:"permanent" validate:"required,max=300"`
	District  string `form:"district" validate:"required,max=60"`
	ZoneID    int64  `form:"zone_id" validate:"required"`
}

type AddressPayload struct {
	Present   string `json:"present"`
	Permanent string `json:"permanent"`
	District  string `json:"district"`
	ZoneID    int64  `json:"zoneId"`
}

func (f AddressForm) Payload() AddressPayload { return AddressPayload(f) }

func AddressFormFrom(a domain.Address) AddressForm {
	return AddressForm{Present: a.Present, Permanent: a.Permanent, District: a.District, ZoneID: a.Zone.ID}
}

type EducationForm struct {
	DegreeLevelID int64   `form:"degree_level_id" validate:"required"`
	InstitutionID int64   `form:"institution_id" validate:"required"`
	Subject       string  `form:"subject" validate:"required,max=100"`
	PassingYear   int     `form:"passing_year" validate:"required,year"`
	Result        float64 `form:"result" validate:"gte=0,lte=100"`
}

type EducationPayload struct {
	DegreeLevelID int64   `json:"degreeLevelId"`
	InstitutionID int64   `json:"institutionId"`
	Subject       string  `json:"subject"`
	PassingYear   int     `json:"passingYear"`
	Result        float64 `json:"result"`
}

func (f EducationForm) Payload() EducationPayload { return EducationPayload(f) }

type ExperienceForm struct {
	Organization string `form:"organization" validate:"required,max=150"`
	Designation  string `form:"designation" validate:"required,max=100"`
	From         string `form:"from" validate:"required,datetime=2006-01-02"`
	To           string `form:"to" validate:"omitempty,datetime=2006-01-02"`
}

type ExperiencePayload struct {
	Organization string `json:"organization"`
	Designation  string `json:"designation"`
	From         string `json:"from"`
	To           string `json:"to,omitempty"`
}

func (f ExperienceForm) Payload() ExperiencePayload { return ExperiencePayload(f) }

type SkillsForm struct {
	SkillIDs []int64 `form:"skill_ids" validate:"max=30,dive,gt=0"`
}

type SkillsPayload struct {
	SkillIDs []int64 `json:"skillIds"`
}

func (f SkillsForm) Payload() SkillsPayload {
	ids := f.SkillIDs
	if ids == nil {
		ids = []int64{}
	}
	return SkillsPayload{SkillIDs: ids}
}

type ApplyForm struct {
	CircularID      int64 `form:"circular_id" validate:"required"`
	RequestedPostID int64 `form:"requested_post_id" validate:"required"`
}
