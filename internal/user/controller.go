package user

import (
	"net/http"
	"strings"

	"weather_gateway/internal/apperr"
	"weather_gateway/internal/auth"

	"github.com/gin-gonic/gin"
)

var ErrInvalidRequest = apperr.Validation("INVALID_REQUEST", "Invalid request body")

type UserController struct {
	userService UserServiceInterface
}

func NewUserController(userService UserServiceInterface) *UserController {
	return &UserController{
		userService: userService,
	}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"max=64"`
	Password string `json:"password" binding:"max=72"`
}

func bindCredentials(c *gin.Context) (*credentialsRequest, error) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, ErrInvalidRequest.WithCause(err)
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return nil, ErrMissingFields
	}
	return &req, nil
}

// Register handles user registration
func (a *UserController) Register(c *gin.Context) {
	req, err := bindCredentials(c)
	if err != nil {
		apperr.Write(c, err)
		return
	}

	userID, err := a.userService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		apperr.Write(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user_id": userID,
	})
}

// Login handles user login and returns a session token
func (a *UserController) Login(c *gin.Context) {
	req, err := bindCredentials(c)
	if err != nil {
		apperr.Write(c, err)
		return
	}

	token, err := a.userService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		apperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Login successful",
		"token":      token.AccessToken,
		"expires_in": token.ExpiresIn,
	})
}

// Me returns the authenticated user
func (a *UserController) Me(c *gin.Context) {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		apperr.Write(c, auth.ErrInvalidToken.WithCause(err))
		return
	}

	user, err := a.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		apperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
