package http

import (
	"net/http"
	"strings"

	"keepmoney/internal/core"
	applog "keepmoney/internal/log"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := s.ledger.RegisterUser(r.Context(), req.Username, req.Password, req.Name, req.Surname, req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "User registered", applog.FieldUsername, u.Username)
	NewJSONResponse().Status(http.StatusCreated).Body(newUserView(u)).Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := s.ledger.Login(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Login rejected",
			applog.NewFields().
				WithUser(req.Username).
				WithOperation(applog.OpLogin).
				WithClientIP(s.clientIP.ClientIP(r)).
				WithError(err).
				ToSlice()...)
		writeError(w, r, err)
		return
	}

	token, expires, err := s.tokens.Issue(u.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(loginResponse{Token: token, ExpiresAt: expires, User: newUserView(u)}).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.ledger.Categories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(categoryViews(cats)).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c := core.Category{
		ID:          strings.TrimSpace(req.ID),
		Description: strings.TrimSpace(req.Description),
		PicID:       req.PicID,
	}
	if err := s.ledger.AddCategory(r.Context(), c); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(categoryView{ID: c.ID, Description: c.Description, PicID: c.PicID}).Write(w)
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.ledger.User(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(newUserView(u)).Write(w)
}
