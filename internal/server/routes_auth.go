package server

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/mesa-rpg/mesa/internal/app/logger/logging"
	"github.com/mesa-rpg/mesa/internal/auth"
	"github.com/mesa-rpg/mesa/internal/database"
	"github.com/mesa-rpg/mesa/internal/wire"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

type loginResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token,omitempty"`
	User    userResponse `json:"user"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func apiError(w http.ResponseWriter, status int, message string) {
	renderJSON(w, status, errorResponse{Success: false, Error: message})
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := readJSON(r, &req); err != nil {
		apiError(w, http.StatusBadRequest, "Requisição inválida")
		return req, false
	}
	if req.Username == "" || req.Password == "" {
		apiError(w, http.StatusBadRequest, "Username e password são obrigatórios")
		return req, false
	}
	return req, true
}

// HandleLogin authenticates a player account and issues a bearer token.
func (s *Server) HandleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	user, err := s.DB.Read.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		slog.Error("Could not query the user", logging.Error(err))
		apiError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}
	if user == nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		apiError(w, http.StatusUnauthorized, "Credenciais inválidas")
		return
	}

	token, err := s.Verifier.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		slog.Error("Could not issue a token", logging.Error(err))
		apiError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	renderJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Token:   token,
		User: userResponse{
			ID:          user.ID,
			Username:    user.Username,
			DisplayName: user.Username,
			Role:        user.Role,
		},
	})
}

// HandleSignup creates a player account.
func (s *Server) HandleSignup(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	existing, err := s.DB.Read.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		slog.Error("Could not query the user", logging.Error(err))
		apiError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}
	if existing != nil {
		apiError(w, http.StatusConflict, "Usuário já existe")
		return
	}

	hash, err := auth.NewPassword(req.Password)
	if err != nil {
		apiError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	userID := uuid.NewString()
	if err := s.DB.Write.CreateUser(r.Context(), database.User{
		ID:           userID,
		Username:     req.Username,
		PasswordHash: hash.String(),
		Role:         wire.RolePlayer,
	}); err != nil {
		slog.Error("Could not create the user", logging.Error(err))
		apiError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	slog.Info("User created", "username", req.Username)
	renderJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Usuário criado com sucesso",
		"userId":  userID,
	})
}

// HandleGMLogin authenticates the environment-configured game master
// account and issues a bearer token carrying the gm role.
func (s *Server) HandleGMLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	if s.Config.GMPassword == "" || req.Username != s.Config.GMUser || req.Password != s.Config.GMPassword {
		apiError(w, http.StatusUnauthorized, "Credenciais de mestre inválidas")
		return
	}

	token, err := s.Verifier.Issue("mestre", s.Config.GMUser, wire.RoleGM)
	if err != nil {
		slog.Error("Could not issue a token", logging.Error(err))
		apiError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	renderJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Token:   token,
		User: userResponse{
			ID:          "mestre",
			Username:    s.Config.GMUser,
			DisplayName: "Mestre",
			Role:        wire.RoleGM,
		},
	})
}

// HandleMe introspects the bearer token presented by the caller.
func (s *Server) HandleMe(w http.ResponseWriter, r *http.Request) {
	claims, err := s.Verifier.Verify(bearerToken(r))
	if err != nil {
		apiError(w, http.StatusUnauthorized, "Token inválido")
		return
	}

	renderJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user": userResponse{
			ID:          claims.Subject,
			Username:    claims.Username,
			DisplayName: claims.Username,
			Role:        claims.Role,
		},
	})
}
