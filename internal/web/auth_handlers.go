package web

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"jobportal/internal/apiclient"
	"jobportal/internal/domain"
	"jobportal/internal/validation"
)

const msgTooManyLogins = "Too many login attempts. Please wait a minute and try again."

type AuthHandler struct{ base }

func (h AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	v := h.view(w, r, "Log in")
	v.Form = validation.LoginForm{Next: safeNext(r.URL.Query().Get("next"))}
	h.render(w, r, http.StatusOK, "login", v)
}

func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var f validation.LoginForm
	errs := validation.Bind(postForm(r), &f)
	f.Next = safeNext(f.Next)
	f.Email = strings.TrimSpace(f.Email)

	if !h.d.LoginLimiter.Allow(clientIP(r)) {
		log.Printf("level=warn msg=\"login throttled\" request_id=%s ip=%s", RequestIDFrom(r.Context()), clientIP(r))
		h.loginAgain(w, r, http.StatusTooManyRequests, f, validation.Errors{"_form": msgTooManyLogins})
		return
	}
	if errs != nil {
		h.loginAgain(w, r, http.StatusUnprocessableEntity, f, errs)
		return
	}

	res, err := h.d.API.Login(r.Context(), apiclient.Credentials{Email: f.Email, Password: f.Password})
	if err != nil {
		var ae *apiclient.APIError
		switch {
		case errors.Is(err, apiclient.ErrUnauthorized):
			h.loginAgain(w, r, http.StatusUnauthorized, f, validation.Errors{"_form": "Invalid email or password."})
		case formFailed(err, &errs):
			h.loginAgain(w, r, http.StatusUnprocessableEntity, f, errs)
		case errors.As(err, &ae) && ae.StatusCode >= 400 && ae.StatusCode < 500:
			h.loginAgain(w, r, ae.StatusCode, f, validation.Errors{"_form": apiclient.UserMessage(err)})
		default:
			log.Printf("level=warn msg=\"login failed\" request_id=%s err=%v", RequestIDFrom(r.Context()), err)
			h.loginAgain(w, r, http.StatusBadGateway, f, validation.Errors{"_form": apiclient.FallbackMessage})
		}
		return
	}
	h.signIn(w, r, res, f.Next, "Welcome back, "+res.User.Name+".")
}

func (h AuthHandler) loginAgain(w http.ResponseWriter, r *http.Request, status int, f validation.LoginForm, errs validation.Errors) {
	f.Password = ""
	v := h.view(w, r, "Log in")
	v.Form = f
	v.Errors = errs
	h.render(w, r, status, "login", v)
}

// signIn stores the session and lands the user on next when their role may open it.
func (h AuthHandler) signIn(w http.ResponseWriter, r *http.Request, res apiclient.LoginResult, next, greeting string) {
	role := res.User.Role
	if role != domain.RoleAdmin && role != domain.RoleJobseeker {
		log.Printf("level=warn msg=\"login with unsupported role\" request_id=%s role=%q", RequestIDFrom(r.Context()), role)
		h.flash(w, r, "error", "This account cannot use the portal.")
		redirect(w, r, "/login")
		return
	}
	sess, err := h.sess.Start(w, r, res)
	if err != nil {
		log.Printf("level=error msg=\"session create failed\" request_id=%s err=%v", RequestIDFrom(r.Context()), err)
		h.flash(w, r, "error", apiclient.FallbackMessage)
		redirect(w, r, "/login")
		return
	}
	r = r.WithContext(withSession(r.Context(), sess))
	h.flash(w, r, "success", greeting)

	target := role.Home()
	if next != "" && allowedFor(role, next) {
		target = next
	}
	redirect(w, r, target)
}

// allowedFor reports whether role may open path without being bounced by a guard.
func allowedFor(role domain.Role, path string) bool {
	switch {
	case strings.HasPrefix(path, "/admin"):
		return role == domain.RoleAdmin
	case strings.HasPrefix(path, "/jobseeker"):
		return role == domain.RoleJobseeker
	case path == "/login" || strings.HasPrefix(path, "/login?") || path == "/signup":
		return false
	}
	return true
}

func (h AuthHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	v := h.view(w, r, "Create an account")
	v.Form = validation.SignupForm{}
	h.render(w, r, http.StatusOK, "signup", v)
}

func (h AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var f validation.SignupForm
	errs := validation.Bind(postForm(r), &f)
	if !h.d.LoginLimiter.Allow(clientIP(r)) {
		h.signupAgain(w, r, http.StatusTooManyRequests, f, validation.Errors{"_form": msgTooManyLogins})
		return
	}
	if errs != nil {
		h.signupAgain(w, r, http.StatusUnprocessableEntity, f, errs)
		return
	}

	res, err := h.d.API.Signup(r.Context(), apiclient.SignupRequest{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Mobile:   strings.TrimSpace(f.Mobile),
		Password: f.Password,
	})
	if err != nil {
		if formFailed(err, &errs) {
			h.signupAgain(w, r, http.StatusUnprocessableEntity, f, errs)
			return
		}
		var ae *apiclient.APIError
		if errors.As(err, &ae) && ae.StatusCode >= 400 && ae.StatusCode < 500 {
			h.signupAgain(w, r, ae.StatusCode, f, validation.Errors{"_form": apiclient.UserMessage(err)})
			return
		}
		h.apiFailed(w, r, err, "/signup")
		return
	}
	if res.Token == "" {
		h.flash(w, r, "success", "Your account was created. Please log in.")
		redirect(w, r, "/login")
		return
	}
	if res.User.Role == "" {
		res.User.Role = domain.RoleJobseeker
	}
	h.signIn(w, r, res, "/jobseeker/profile", "Welcome, "+res.User.Name+". Start by completing your profile.")
}

func (h AuthHandler) signupAgain(w http.ResponseWriter, r *http.Request, status int, f validation.SignupForm, errs validation.Errors) {
	f.Password, f.ConfirmPassword = "", ""
	v := h.view(w, r, "Create an account")
	v.Form = f
	v.Errors = errs
	h.render(w, r, status, "signup", v)
}

// Logout always ends the local session; an API failure is only logged.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if SessionFrom(r.Context()) != nil {
		if err := h.d.API.Logout(r.Context()); err != nil && !errors.Is(err, apiclient.ErrUnauthorized) {
			log.Printf("level=warn msg=\"api logout failed\" request_id=%s err=%v", RequestIDFrom(r.Context()), err)
		}
	}
	h.sess.Destroy(w, r)
	r = r.WithContext(withoutSession(r.Context()))
	h.flash(w, r, "info", "You have been logged out.")
	redirect(w, r, "/")
}
