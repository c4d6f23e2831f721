package web

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"jobportal/internal/apiclient"
	"jobportal/internal/domain"
	"jobportal/internal/store"
)

const (
	flashCookie = "portal_flash"
	csrfField   = "_csrf"
	csrfHeader  = "X-CSRF-Token"

	msgExpired   = "Your session has expired. Please log in again."
	msgForbidden = "You do not have access to that page."
)

// SessionFrom returns the signed-in session, or nil for anonymous requests.
func SessionFrom(ctx context.Context) *store.Session {
	s, _ := ctx.Value(sessionKey).(*store.Session)
	return s
}

func roleOf(s *store.Session) domain.Role {
	if s == nil {
		return ""
	}
	return domain.Role(s.Role)
}

// sessions owns the session cookie, the sqlite session rows and the flash queue.
type sessions struct {
	d Deps
}

func (s sessions) setCookie(w http.ResponseWriter, id string, expires time.Time) {
	cfg := s.d.cfg()
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Session.CookieName,
		Value:    id,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   cfg.SecureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s sessions) clearCookie(w http.ResponseWriter) {
	cfg := s.d.cfg()
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.SecureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}

// Load attaches the live session and its API token to the request context and slides the expiry.
func (s sessions) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cfg := s.d.cfg()
		c, err := r.Cookie(cfg.Session.CookieName)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		now := s.d.now()
		sess, err := store.GetSession(r.Context(), s.d.DB, c.Value, now)
		switch {
		case err == nil:
			ttl := cfg.SessionTTL()
			// refresh at most once a minute
			if sess.ExpiresAt.Sub(now) < ttl-time.Minute {
				sess.ExpiresAt = now.Add(ttl)
				if err := store.TouchSession(r.Context(), s.d.DB, sess.ID, sess.ExpiresAt); err != nil {
					log.Printf("level=warn msg=\"session touch failed\" request_id=%s err=%v", RequestIDFrom(r.Context()), err)
				}
				s.setCookie(w, sess.ID, sess.ExpiresAt)
			}
			ctx := withSession(r.Context(), &sess)
			ctx = apiclient.WithToken(ctx, sess.APIToken)
			r = r.WithContext(ctx)
		case errors.Is(err, store.ErrSessionNotFound):
			s.clearCookie(w)
		default:
			log.Printf("level=error msg=\"session load failed\" request_id=%s err=%v", RequestIDFrom(r.Context()), err)
		}
		next.ServeHTTP(w, r)
	})
}

// Start persists a new session for a successful login and sets the cookie.
func (s sessions) Start(w http.ResponseWriter, r *http.Request, res apiclient.LoginResult) (*store.Session, error) {
	csrf, err := randomToken(32)
	if err != nil {
		return nil, err
	}
	now := s.d.now()
	sess := store.Session{
		ID:        uuid.NewString(),
		UserID:    res.User.ID,
		Name:      res.User.Name,
		Email:     res.User.Email,
		Role:      string(res.User.Role),
		APIToken:  res.Token,
		CSRF:      csrf,
		CreatedAt: now,
		ExpiresAt: now.Add(s.d.cfg().SessionTTL()),
	}
	if err := store.CreateSession(r.Context(), s.d.DB, sess); err != nil {
		return nil, err
	}
	s.setCookie(w, sess.ID, sess.ExpiresAt)
	return &sess, nil
}

// Destroy removes the current session row and cookie.
func (s sessions) Destroy(w http.ResponseWriter, r *http.Request) {
	if sess := SessionFrom(r.Context()); sess != nil {
		if err := store.DeleteSession(r.Context(), s.d.DB, sess.ID); err != nil {
			log.Printf("level=warn msg=\"session delete failed\" request_id=%s err=%v", RequestIDFrom(r.Context()), err)
		}
	}
	s.clearCookie(w)
}

// Flash queues a toast for the next render. Anonymous visitors get it through a short-lived cookie.
func (s sessions) Flash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	f := store.Flash{Kind: kind, Message: msg}
	if sess := SessionFrom(r.Context()); sess != nil {
		err := store.PushFlash(r.Context(), s.d.DB, sess.ID, f)
		if err == nil {
			return
		}
		if !errors.Is(err, store.ErrSessionNotFound) {
			log.Printf("level=warn msg=\"flash push failed\" request_id=%s err=%v", RequestIDFrom(r.Context()), err)
		}
	}
	list := append(readFlashCookie(r), f)
	b, _ := json.Marshal(list)
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(b),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Flashes drains queued toasts from the session and the anonymous cookie.
func (s sessions) Flashes(w http.ResponseWriter, r *http.Request) []store.Flash {
	var out []store.Flash
	if sess := SessionFrom(r.Context()); sess != nil {
		list, err := store.PopFlashes(r.Context(), s.d.DB, sess.ID)
		if err != nil {
			log.Printf("level=warn msg=\"flash pop failed\" request_id=%s err=%v", RequestIDFrom(r.Context()), err)
		}
		out = append(out, list...)
	}
	if list := readFlashCookie(r); len(list) > 0 {
		out = append(out, list...)
		http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	}
	return out
}

func readFlashCookie(r *http.Request) []store.Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	b, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var list []store.Flash
	if json.Unmarshal(b, &list) != nil {
		return nil
	}
	return list
}

func loginURL(next string) string {
	if next = safeNext(next); next == "" || next == "/" {
		return "/login"
	}
	return "/login?" + url.Values{"next": {next}}.Encode()
}

// RequireRole sends anonymous visitors to the login page and other roles to their own console.
func (s sessions) RequireRole(role domain.Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFrom(r.Context())
		if sess == nil {
			target := ""
			if r.Method == http.MethodGet {
				target = r.URL.RequestURI()
			}
			redirect(w, r, loginURL(target))
			return
		}
		if roleOf(sess) != role {
			s.Flash(w, r, "error", msgForbidden)
			redirect(w, r, roleOf(sess).Home())
			return
		}
		next(w, r)
	}
}

// GuestOnly keeps signed-in users off the login and signup pages.
func (s sessions) GuestOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sess := SessionFrom(r.Context()); sess != nil {
			redirect(w, r, roleOf(sess).Home())
			return
		}
		next(w, r)
	}
}

// CSRF rejects state-changing requests from a session that do not echo its token.
func (s sessions) CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFrom(r.Context())
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		if sess == nil {
			next.ServeHTTP(w, r)
			return
		}
		got := r.Header.Get(csrfHeader)
		if got == "" {
			got = r.PostFormValue(csrfField)
		}
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(sess.CSRF)) != 1 {
			log.Printf("level=warn msg=\"csrf rejected\" request_id=%s path=%s", RequestIDFrom(r.Context()), r.URL.Path)
			http.Error(w, "invalid or missing form token; reload the page and try again", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func withoutSession(ctx context.Context) context.Context {
	return context.WithValue(ctx, sessionKey, (*store.Session)(nil))
}

func withSession(ctx context.Context, s *store.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}
