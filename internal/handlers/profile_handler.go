package handlers

import (
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"authway/internal/models"
	"authway/internal/services"
)

type ProfileHandler struct {
	auth      *services.AuthService
	filesRoot string
}

func NewProfileHandler(auth *services.AuthService, filesRoot string) *ProfileHandler {
	return &ProfileHandler{auth: auth, filesRoot: filesRoot}
}

// @Summary      Заполнение профиля
// @Description  username, пароль и анкета; CodeVerified → Done
// @Tags         Profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        profile  body      models.CompleteProfileRequest  true  "Данные профиля"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]string
// @Router       /profile [patch]
func (h *ProfileHandler) CompleteProfile(c *gin.Context) {
	accountID, ok := accountIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CompleteProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	birthDate, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "birth_date must be YYYY-MM-DD"})
		return
	}
	if req.Gender != models.GenderMale && req.Gender != models.GenderFemale {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gender must be Male or Female"})
		return
	}

	account, err := h.auth.CompleteProfile(accountID, services.ProfileFields{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		BirthDate: birthDate,
		Gender:    req.Gender,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated",
		"account": account,
	})
}

// @Summary      Загрузка фото профиля
// @Description  jpg/jpeg/png; Done → Finished, повторная загрузка разрешена
// @Tags         Profile
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        profile_picture  formData  file  true  "Файл изображения"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /profile/picture [put]
func (h *ProfileHandler) AttachPicture(c *gin.Context) {
	accountID, ok := accountIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	file, err := c.FormFile("profile_picture")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile_picture file is required"})
		return
	}

	account, err := h.auth.AttachProfilePicture(accountID, file.Filename)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	dst := filepath.Join(h.filesRoot, *account.ProfilePicture)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		log.Printf("[profile][picture] save failed account_id=%d dst=%s err=%v", accountID, dst, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Account finished",
		"account": account,
	})
}

// @Summary      Профиль текущего аккаунта
// @Tags         Profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /profile [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	accountID, ok := accountIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	account, err := h.auth.Profile(accountID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": account})
}
