package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"authway/internal/models"
	"authway/internal/services"
)

type VerifyHandler struct {
	auth *services.AuthService
}

func NewVerifyHandler(auth *services.AuthService) *VerifyHandler {
	return &VerifyHandler{auth: auth}
}

// @Summary      Подтверждение кода
// @Description  Гасит код и переводит аккаунт New → CodeVerified
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        verify  body      models.VerifyRequest  true  "4-значный код"
// @Success      200     {object}  map[string]string
// @Failure      400     {object}  map[string]string
// @Router       /verify [post]
func (h *VerifyHandler) Verify(c *gin.Context) {
	accountID, ok := accountIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Code) != 4 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code must be 4 digits"})
		return
	}

	if err := h.auth.Verify(accountID, req.Code); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account verified"})
}

// @Summary      Повторная отправка кода
// @Description  Новый код для New-аккаунта, не чаще лимита в скользящую минуту
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      429  {object}  map[string]string
// @Router       /verify/resend [post]
func (h *VerifyHandler) Resend(c *gin.Context) {
	accountID, ok := accountIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	tokens, err := h.auth.Reissue(accountID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Verification code sent",
		"tokens":  tokens,
	})
}
