package apiclient

import (
	"context"
	"net/http"
	"strconv"

	"jobportal/internal/domain"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (c *Client) Login(ctx context.Context, cred Credentials) (LoginResult, error) {
	var out LoginResult
	_, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/login", Body: cred}, &out)
	return out, err
}

func (c *Client) Signup(ctx context.Context, in SignupRequest) (LoginResult, error) {
	var out LoginResult
	_, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/signup", Body: in}, &out)
	return out, err
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/logout"}, nil)
	return err
}

func (c *Client) ChangePassword(ctx context.Context, in PasswordChange) error {
	_, err := c.Do(ctx, Request{Method: http.MethodPut, Path: "/auth/password", Body: in}, nil)
	return err
}

func (c *Client) Circulars() Resource[domain.Circular] {
	return NewResource[domain.Circular](c, "/circulars")
}

func (c *Client) JobRequests() Resource[domain.JobRequest] {
	return NewResource[domain.JobRequest](c, "/job-requests")
}

func (c *Client) RequestedPosts() Resource[domain.RequestedPost] {
	return NewResource[domain.RequestedPost](c, "/requested-posts")
}

func (c *Client) Applications() Resource[domain.Application] {
	return NewResource[domain.Application](c, "/applications")
}

func (c *Client) Examiners() Resource[domain.Examiner] {
	return NewResource[domain.Examiner](c, "/examiners")
}

func (c *Client) Master(kind domain.MasterKind) Resource[domain.MasterRecord] {
	return NewResource[domain.MasterRecord](c, kind.APIPath)
}

type RequestedPostInput struct {
	PostID     int64 `json:"postId"`
	CategoryID int64 `json:"categoryId"`
	ZoneID     int64 `json:"zoneId"`
	Quantity   int   `json:"quantity"`
	Salary     int64 `json:"salary"`
}

// AddRequestedPost appends a vacancy line to a job request.
func (c *Client) AddRequestedPost(ctx context.Context, jobRequestID int64, in RequestedPostInput) (domain.RequestedPost, error) {
	var out domain.RequestedPost
	path := "/job-requests/" + strconv.FormatInt(jobRequestID, 10) + "/posts"
	_, err := c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: in}, &out)
	return out, err
}

type statusBody struct {
	Status string `json:"status"`
}

func (c *Client) UpdateRequestedPostStatus(ctx context.Context, id int64, st domain.PostStatus) (domain.RequestedPost, error) {
	var out domain.RequestedPost
	path := "/requested-posts/" + strconv.FormatInt(id, 10) + "/status"
	_, err := c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: statusBody{Status: string(st)}}, &out)
	return out, err
}

func (c *Client) UpdateApplicationStatus(ctx context.Context, id int64, st domain.ApplicationStatus) (domain.Application, error) {
	var out domain.Application
	path := "/applications/" + strconv.FormatInt(id, 10) + "/status"
	_, err := c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: statusBody{Status: string(st)}}, &out)
	return out, err
}

// Profile returns the signed-in jobseeker's profile.
func (c *Client) Profile(ctx context.Context) (domain.Jobseeker, error) {
	var out domain.Jobseeker
	_, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/jobseeker/profile"}, &out)
	return out, err
}

// UpdateProfileSection replaces a single-valued section (personal, address, skills).
func (c *Client) UpdateProfileSection(ctx context.Context, sec domain.ProfileSection, in any) error {
	_, err := c.Do(ctx, Request{Method: http.MethodPut, Path: "/jobseeker/profile/" + string(sec), Body: in}, nil)
	return err
}

// AddProfileEntry appends to a repeated section (education, experience).
func (c *Client) AddProfileEntry(ctx context.Context, sec domain.ProfileSection, in any) error {
	_, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/jobseeker/profile/" + string(sec), Body: in}, nil)
	return err
}

func (c *Client) DeleteProfileEntry(ctx context.Context, sec domain.ProfileSection, id int64) error {
	path := "/jobseeker/profile/" + string(sec) + "/" + strconv.FormatInt(id, 10)
	_, err := c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, nil)
	return err
}

func (c *Client) MyApplications() Resource[domain.Application] {
	return NewResource[domain.Application](c, "/jobseeker/applications")
}

type ApplyRequest struct {
	CircularID      int64 `json:"circularId"`
	RequestedPostID int64 `json:"requestedPostId"`
}

func (c *Client) Apply(ctx context.Context, in ApplyRequest) (domain.Application, error) {
	return c.MyApplications().Create(ctx, in)
}

// MyApplication returns one of the signed-in jobseeker's applications; other users' ids are 404s upstream.
func (c *Client) MyApplication(ctx context.Context, id int64) (domain.Application, error) {
	return c.MyApplications().Get(ctx, id)
}
