package auth

import (
	"net/http"

	"school-attendance/backend/foundation/web"
	authpkg "school-attendance/backend/internal/auth"
	"school-attendance/backend/internal/commands"
	"school-attendance/backend/internal/repository/postgres/user"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type Controller struct {
	user           User
	privateKeyPath string
}

func NewController(user User, privateKeyPath string) *Controller {
	return &Controller{user: user, privateKeyPath: privateKeyPath}
}

func (uc Controller) SignIn(c *web.Context) error {
	var data user.SignInRequest

	err := c.BindFunc(&data, "Identifier", "Password")
	if err != nil {
		return c.RespondError(err)
	}

	detail, err := uc.user.GetByIdentifier(c.Ctx, data.Identifier)
	if err != nil {
		return c.RespondError(err)
	}

	if detail.Password == nil || detail.Role == nil {
		return c.RespondError(&web.Error{
			Err:    errors.New("user not found"),
			Status: http.StatusUnauthorized,
		})
	}

	if err = bcrypt.CompareHashAndPassword([]byte(*detail.Password), []byte(data.Password)); err != nil {
		return c.RespondError(web.NewRequestError(errors.New("incorrect identifier or password"), http.StatusUnauthorized))
	}

	accessToken, refreshToken, err := commands.GenToken(user.AuthClaims{
		ID:   detail.ID,
		Role: *detail.Role,
	}, uc.privateKeyPath)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"status": true,
		"data": map[string]interface{}{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
			"user": map[string]interface{}{
				"id":        detail.ID,
				"role":      detail.Role,
				"full_name": detail.FullName,
			},
		},
		"error": nil,
	}, http.StatusOK)
}

func (uc Controller) RefreshToken(c *web.Context) error {
	var data user.RefreshTokenRequest

	err := c.BindFunc(&data, "AccessToken", "RefreshToken")
	if err != nil {
		return c.RespondError(err)
	}

	_, refreshTokenClaims, err := commands.VerifyTokens(data.AccessToken, data.RefreshToken, uc.privateKeyPath)
	if err != nil {
		return c.RespondError(web.NewRequestError(err, http.StatusUnauthorized))
	}

	userClaims := user.AuthClaims{
		ID:   refreshTokenClaims.UserId,
		Role: refreshTokenClaims.Role,
	}

	accessToken, refreshToken, err := commands.GenToken(userClaims, uc.privateKeyPath)
	if err != nil {
		return c.RespondError(web.NewRequestError(errors.Wrap(err, "generating new tokens"), http.StatusInternalServerError))
	}

	return c.Respond(map[string]interface{}{
		"status": true,
		"data": map[string]string{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
		},
		"error": nil,
	}, http.StatusOK)
}

// Me returns the authenticated user's profile.
func (uc Controller) Me(c *web.Context) error {
	claims, err := authpkg.GetClaims(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	response, err := uc.user.GetDetailById(c.Ctx, claims.UserId)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}
