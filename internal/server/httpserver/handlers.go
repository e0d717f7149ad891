package httpserver

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"os"
	"path"

	"github.com/dmitrijs2005/fileshare/internal/common"
	"github.com/dmitrijs2005/fileshare/internal/server/auth"
	"github.com/dmitrijs2005/fileshare/internal/server/models"
	"github.com/dmitrijs2005/fileshare/internal/server/services"
)

const (
	msgLoginFailed     = "Login failed"
	msgUserExists      = "User already exists"
	msgUserRegistered  = "User registered successfully"
	msgFieldsRequired  = "Username and password are required"
	msgFileNotFound    = "File not found"
	msgShareNotFound   = "File not found or not shared"
	msgNotViewable     = "This file cannot be viewed in the browser."
	msgDirUnreadable   = "Unable to read directory"
	msgInternalFailure = "Internal Server Error"
)

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

func (s *HTTPServer) handleStyle(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, s.web, "style.css")
}

func (s *HTTPServer) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, s.web, "login.html")
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	ok, err := s.auth.VerifyCredentials(ctx, username, password)
	if err != nil {
		s.logger.Error(ctx, "verify credentials", "error", err)
		writeText(w, http.StatusInternalServerError, msgInternalFailure)
		return
	}
	if !ok {
		s.logger.Warn(ctx, "login failed", "username", username)
		writeText(w, http.StatusOK, msgLoginFailed)
		return
	}

	if old, found := sessionFromContext(ctx); found {
		s.sessions.Destroy(old.ID)
	}

	sess, err := s.sessions.Create(username, s.opts.SessionTTL)
	if err != nil {
		s.logger.Error(ctx, "create session", "error", err)
		writeText(w, http.StatusInternalServerError, msgInternalFailure)
		return
	}

	token, err := auth.GenerateToken(sess.ID, s.jwtSecret, s.opts.SessionTTL)
	if err != nil {
		s.sessions.Destroy(sess.ID)
		s.logger.Error(ctx, "sign session cookie", "error", err)
		writeText(w, http.StatusInternalServerError, msgInternalFailure)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   int(s.opts.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	s.logger.Info(ctx, "user logged in", "username", username)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := r.PostFormValue("username")

	err := s.auth.Register(ctx, username, r.PostFormValue("password"))
	switch {
	case err == nil:
		s.logger.Info(ctx, "user registered", "username", username)
		writeText(w, http.StatusOK, msgUserRegistered)
	case errors.Is(err, common.ErrorAlreadyExists):
		writeText(w, http.StatusBadRequest, msgUserExists)
	case errors.Is(err, common.ErrorValidation):
		writeText(w, http.StatusBadRequest, msgFieldsRequired)
	default:
		s.logger.Error(ctx, "register user", "username", username, "error", err)
		writeText(w, http.StatusInternalServerError, msgInternalFailure)
	}
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := sessionFromContext(r.Context()); ok {
		s.sessions.Destroy(sess.ID)
		s.logger.Info(r.Context(), "user logged out", "username", sess.Username)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/login", http.StatusFound)
}

type entryView struct {
	Name      string
	IsDir     bool
	Href      string
	ShareHref string
}

type listingView struct {
	Dir      string
	Query    string
	BackHref string
	Entries  []entryView
}

func dirHref(rel string) string {
	if rel == "" || rel == "." {
		return "/"
	}
	return "/?" + url.Values{"dir": {rel}}.Encode()
}

func (s *HTTPServer) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dir := r.URL.Query().Get("dir")
	query := r.URL.Query().Get("q")

	entries, err := s.lister.List(s.files.Abs(dir))
	if err != nil {
		s.logger.Error(ctx, "list directory", "dir", dir, "error", err)
		writeText(w, http.StatusInternalServerError, msgDirUnreadable)
		return
	}
	entries = services.Filter(entries, query)

	view := listingView{Dir: dir, Query: query, Entries: make([]entryView, 0, len(entries))}
	if dir != "" {
		view.BackHref = dirHref(path.Dir(dir))
	}
	for _, e := range entries {
		rel := path.Join(dir, e.Name)
		ev := entryView{Name: e.Name, IsDir: e.IsDir()}
		if ev.IsDir {
			ev.Href = dirHref(rel)
		} else {
			ev.Href = "/view/" + url.PathEscape(rel)
			ev.ShareHref = "/share/" + url.PathEscape(rel)
		}
		view.Entries = append(view.Entries, ev)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.listing.Execute(w, view); err != nil {
		s.logger.Error(ctx, "render listing", "dir", dir, "error", err)
	}
}

func (s *HTTPServer) handleView(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	if filename == "" {
		writeText(w, http.StatusNotFound, msgFileNotFound)
		return
	}
	s.serveResolution(w, r, s.files.ResolveForView(filename), msgFileNotFound)
}

func (s *HTTPServer) handleShare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filename := r.PathValue("filename")
	if filename == "" {
		writeText(w, http.StatusNotFound, msgFileNotFound)
		return
	}

	token, err := s.shares.Issue(s.files.Abs(filename))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeText(w, http.StatusNotFound, msgFileNotFound)
			return
		}
		s.logger.Error(ctx, "issue share", "filename", filename, "error", err)
		writeText(w, http.StatusInternalServerError, msgInternalFailure)
		return
	}

	s.logger.Info(ctx, "share issued", "filename", filename, "active", s.shares.Len())

	link := "/shared/" + url.PathEscape(token)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprintf(w, `File shared! Access it at: <a href="%s">%s</a>`, html.EscapeString(link), html.EscapeString(link))
}

func (s *HTTPServer) handleShared(w http.ResponseWriter, r *http.Request) {
	filePath, err := s.shares.Resolve(r.PathValue("id"))
	if err != nil {
		writeText(w, http.StatusNotFound, msgShareNotFound)
		return
	}
	s.serveResolution(w, r, s.files.Classify(filePath), msgShareNotFound)
}

// serveResolution streams viewable files and answers everything else with
// a short text body.
func (s *HTTPServer) serveResolution(w http.ResponseWriter, r *http.Request, res models.Resolution, notFound string) {
	switch res.Status {
	case models.ViewRefused:
		writeText(w, http.StatusOK, msgNotViewable)
		return
	case models.ViewNotFound:
		writeText(w, http.StatusNotFound, notFound)
		return
	}

	f, err := os.Open(res.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeText(w, http.StatusNotFound, notFound)
			return
		}
		s.logger.Error(r.Context(), "open file", "path", res.Path, "error", err)
		writeText(w, http.StatusInternalServerError, msgInternalFailure)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		s.logger.Error(r.Context(), "stat file", "path", res.Path, "error", err)
		writeText(w, http.StatusInternalServerError, msgInternalFailure)
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}
