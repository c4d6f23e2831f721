package web

import (
	"crypto/rand"
	"encoding/hex"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

func methodMux(m map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h, ok := m[r.Method]; ok {
			h(w, r)
			return
		}
		allow := make([]string, 0, len(m))
		for k := range m {
			allow = append(allow, k)
		}
		w.Header().Set("Allow", strings.Join(allow, ", "))
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// pathID parses a positive integer path wildcard.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryInt(q url.Values, key string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(q.Get(key)))
	return n
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

// safeNext returns p when it is a local absolute path, else "".
func safeNext(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return ""
	}
	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return u.RequestURI()
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return host
}

func isLoopback(r *http.Request) bool {
	host := clientIP(r)
	return host == "127.0.0.1" || host == "::1" || host == "localhost"
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// postForm parses and returns the submitted form body.
func postForm(r *http.Request) url.Values {
	_ = r.ParseForm()
	return r.PostForm
}

// backTo returns the submitted "back" path when it is local, else def.
func backTo(r *http.Request, def string) string {
	if p := safeNext(r.PostFormValue("back")); p != "" {
		return p
	}
	return def
}
