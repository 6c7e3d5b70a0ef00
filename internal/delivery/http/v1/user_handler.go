package v1

import (
	"net/http"

	"github.com/ZinoM21/any-cv-api/internal/delivery/http/response"
	"github.com/ZinoM21/any-cv-api/internal/domain"
	"github.com/ZinoM21/any-cv-api/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userUC    domain.UserUsecase
	profileUC domain.ProfileUsecase
}

func NewUserHandler(r *gin.RouterGroup, userUC domain.UserUsecase, profileUC domain.ProfileUsecase) {
	handler := &UserHandler{userUC: userUC, profileUC: profileUC}

	me := r.Group("/users/me")
	{
		me.GET("", handler.Get)
		me.PATCH("", handler.Update)
		me.DELETE("", handler.Delete)
		me.GET("/profiles", handler.ListProfiles)
	}
}

// Get godoc
// @Summary      Get the current account
// @Tags         users
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Router       /users/me [get]
// @Security     BearerAuth
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userUC.Get(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Account", user)
}

// Update godoc
// @Summary      Update the current account
// @Description  Changing the email resets verification
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      domain.UserUpdate  true  "Fields to update"
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /users/me [patch]
// @Security     BearerAuth
func (h *UserHandler) Update(c *gin.Context) {
	var upd domain.UserUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	user, err := h.userUC.Update(c.Request.Context(), &upd)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Account updated", user)
}

// Delete godoc
// @Summary      Delete the current account
// @Description  Removes the account and every profile it owns
// @Tags         users
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /users/me [delete]
// @Security     BearerAuth
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userUC.Delete(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Account deleted", nil)
}

// ListProfiles godoc
// @Summary      List the current user's profiles
// @Tags         users
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Profile}
// @Failure      401  {object}  response.Response
// @Router       /users/me/profiles [get]
// @Security     BearerAuth
func (h *UserHandler) ListProfiles(c *gin.Context) {
	profiles, err := h.profileUC.ListMine(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profiles", profiles)
}
