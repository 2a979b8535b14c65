package innometrics

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/innometrics/innometrics-backend/internal/domain/account"
	"github.com/innometrics/innometrics-backend/internal/logger"
	accountsvc "github.com/innometrics/innometrics-backend/internal/service/account"
)

func (s *Server) login(c *gin.Context) {
	ctx := c.Request.Context()

	data, err := requestData(c)
	if err != nil {
		respond(c, http.StatusBadRequest, "Not enough data provided")

		return
	}

	token, err := s.accounts.Login(ctx, text(data, "email"), text(data, "password"))

	switch {
	case errors.Is(err, accountsvc.ErrMissingData):
		respond(c, http.StatusBadRequest, "Not enough data provided")
	case errors.Is(err, accountsvc.ErrUserNotFound):
		respond(c, http.StatusNotFound, "User not found")
	case errors.Is(err, accountsvc.ErrBadCredentials):
		respond(c, http.StatusUnauthorized, "Failed to authenticate")
	case err != nil:
		logger.ErrorKV(ctx, "failed to login user", "error", err)
		respond(c, http.StatusInternalServerError, "Something bad happened")
	default:
		s.setSession(c, token)
		c.JSON(http.StatusOK, gin.H{messageKey: "Success", "token": token})
	}
}

func (s *Server) register(c *gin.Context) {
	ctx := c.Request.Context()

	data, err := requestData(c)
	if err != nil {
		respond(c, http.StatusBadRequest, "Not enough data provided")

		return
	}

	_, err = s.accounts.Register(ctx, &account.Registration{
		Email:    text(data, "email"),
		Password: text(data, "password"),
		Name:     text(data, "name"),
		Surname:  text(data, "surname"),
	})

	switch {
	case errors.Is(err, accountsvc.ErrMissingData):
		respond(c, http.StatusBadRequest, "Not enough data provided")
	case errors.Is(err, accountsvc.ErrUserExists):
		respond(c, http.StatusConflict, "User already exists")
	case err != nil:
		logger.ErrorKV(ctx, "failed to create user", "error", err)
		respond(c, http.StatusInternalServerError, "Failed to create user")
	default:
		respond(c, http.StatusOK, "Success")
	}
}

func (s *Server) deleteUser(c *gin.Context) {
	ctx := c.Request.Context()

	if err := s.accounts.Delete(ctx, currentUser(c).ID); err != nil {
		logger.ErrorKV(ctx, "failed to delete user", "error", err)
		respond(c, http.StatusInternalServerError, "Failed to delete user")

		return
	}

	s.clearSession(c)
	respond(c, http.StatusOK, "Success")
}

// logout clears the session cookie. Issued tokens stay valid until they expire.
func (s *Server) logout(c *gin.Context) {
	s.clearSession(c)
	respond(c, http.StatusOK, "Success")
}

func (s *Server) setSession(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(s.options.TokenTTL.Seconds()), "/", "", false, true)
}

func (s *Server) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}
