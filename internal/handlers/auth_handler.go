package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"authway/internal/models"
	"authway/internal/services"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// @Summary      Регистрация по email или телефону
// @Description  Создаёт New-аккаунт, отправляет код подтверждения и сразу выдаёт пару токенов
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        signup  body      models.SignUpRequest  true  "email или телефон в формате +998901234567"
// @Success      201     {object}  map[string]interface{}
// @Failure      400     {object}  map[string]string
// @Router       /signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, tokens, err := h.auth.SignUp(req.EmailOrPhone)
	if err != nil {
		log.Printf("[auth][signup] rejected identifier=%q err=%v", req.EmailOrPhone, err)
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created, verification code sent",
		"account": account,
		"tokens":  tokens,
	})
}

// @Summary      Вход в систему
// @Description  login_name матчится по username, email или телефону
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Данные для входа"
// @Success      200    {object}  map[string]interface{}
// @Failure      401    {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, tokens, err := h.auth.Login(req.LoginName, req.Password)
	if err != nil {
		log.Printf("[auth][login] failed login_name=%q err=%v", req.LoginName, err)
		respondServiceError(c, err)
		return
	}
	log.Printf("[auth][login] success account_id=%d", account.ID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"account": account,
		"tokens":  tokens,
	})
}

// @Summary      Обмен refresh-токена
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        refresh  body      models.RefreshRequest  true  "refresh токен"
// @Success      200      {object}  models.TokenPair
// @Failure      401      {object}  map[string]string
// @Router       /refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tokens, err := h.auth.Refresh(req.RefreshToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// @Summary      Выход (отзыв refresh-токена)
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Router       /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	accountID, ok := accountIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if err := h.auth.Logout(accountID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
