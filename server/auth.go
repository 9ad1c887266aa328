package server

import (
	"encoding/json"
	"net/http"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Code     string `json:"code,omitempty"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "decode request: " + err.Error()})
		return
	}

	tok, err := s.gate.Login(req.Username, req.Password, req.Code)
	if err != nil {
		if s.metrics != nil {
			s.metrics.LoginFailures.Inc()
		}
		s.log.Warn("login rejected", "username", req.Username, "remote", r.RemoteAddr)
		writeError(w, err)
		return
	}
	s.log.Info("login", "username", req.Username)
	writeJSON(w, http.StatusOK, loginResponse{Token: tok, Username: req.Username})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.gate.Logout(bearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}
