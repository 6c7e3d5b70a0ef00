package v1

import (
	"errors"
	"io"
	"net/http"

	"github.com/ZinoM21/any-cv-api/internal/delivery/http/response"
	"github.com/ZinoM21/any-cv-api/internal/domain"
	"github.com/ZinoM21/any-cv-api/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileUC domain.ProfileUsecase
}

// NewProfileHandler wires the profile routes. Most routes take optional
// auth: guest profiles are reachable by identifier alone, claimed profiles
// only by their owner. Publishing and claiming require a login.
func NewProfileHandler(optional, protected *gin.RouterGroup, ingestLimiter gin.HandlerFunc, profileUC domain.ProfileUsecase) {
	handler := &ProfileHandler{profileUC: profileUC}

	profiles := optional.Group("/profiles")
	{
		profiles.POST("/:username", ingestLimiter, handler.Create)
		profiles.GET("/:username", handler.Get)
		profiles.PATCH("/:username", handler.Update)
		profiles.DELETE("/:username", handler.Delete)
	}

	owned := protected.Group("/profiles")
	{
		owned.POST("/:username/publish", handler.Publish)
		owned.POST("/:username/unpublish", handler.Unpublish)
		owned.POST("/:username/transfer", handler.Transfer)
	}
}

// Create godoc
// @Summary      Ingest a profile
// @Description  Returns the stored profile for the identifier, fetching it from the upstream source when absent or when forceRefresh is set
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        username  path      string                       true   "Public identifier or profile link"
// @Param        request   body      domain.CreateProfileRequest  false  "Ingestion options"
// @Success      200  {object}  response.Response{data=domain.Profile}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      429  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Failure      504  {object}  response.Response
// @Router       /profiles/{username} [post]
func (h *ProfileHandler) Create(c *gin.Context) {
	var req domain.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	profile, err := h.profileUC.Create(c.Request.Context(), c.Param("username"), c.ClientIP(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile ready", profile)
}

// Get godoc
// @Summary      Get a stored profile
// @Tags         profiles
// @Produce      json
// @Param        username  path      string  true  "Public identifier"
// @Success      200  {object}  response.Response{data=domain.Profile}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /profiles/{username} [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.profileUC.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile", profile)
}

// Update godoc
// @Summary      Update profile sections
// @Description  Applies a partial update; non-nil sections replace the stored ones wholesale
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        username  path      string                true  "Public identifier"
// @Param        request   body      domain.ProfileUpdate  true  "Fields to update"
// @Success      200  {object}  response.Response{data=domain.Profile}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /profiles/{username} [patch]
func (h *ProfileHandler) Update(c *gin.Context) {
	var upd domain.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	profile, err := h.profileUC.Update(c.Request.Context(), c.Param("username"), &upd)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile updated", profile)
}

// Delete godoc
// @Summary      Delete a profile
// @Tags         profiles
// @Produce      json
// @Param        username  path      string  true  "Public identifier"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /profiles/{username} [delete]
func (h *ProfileHandler) Delete(c *gin.Context) {
	if err := h.profileUC.Delete(c.Request.Context(), c.Param("username")); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile deleted", nil)
}

// Publish godoc
// @Summary      Publish a profile
// @Description  Makes the profile publicly visible under a slug (defaults to the identifier)
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        username  path      string                 true   "Public identifier"
// @Param        request   body      domain.PublishRequest  false  "Publishing options"
// @Success      200  {object}  response.Response{data=domain.Profile}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /profiles/{username}/publish [post]
// @Security     BearerAuth
func (h *ProfileHandler) Publish(c *gin.Context) {
	var req domain.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	profile, err := h.profileUC.Publish(c.Request.Context(), c.Param("username"), &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile published", profile)
}

// Unpublish godoc
// @Summary      Unpublish a profile
// @Tags         profiles
// @Produce      json
// @Param        username  path      string  true  "Public identifier"
// @Success      200  {object}  response.Response{data=domain.Profile}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /profiles/{username}/unpublish [post]
// @Security     BearerAuth
func (h *ProfileHandler) Unpublish(c *gin.Context) {
	profile, err := h.profileUC.Unpublish(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile unpublished", profile)
}

// Transfer godoc
// @Summary      Claim a guest profile
// @Description  Assigns the guest profile to the authenticated user and removes its eviction deadline
// @Tags         profiles
// @Produce      json
// @Param        username  path      string  true  "Public identifier"
// @Success      200  {object}  response.Response{data=domain.Profile}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /profiles/{username}/transfer [post]
// @Security     BearerAuth
func (h *ProfileHandler) Transfer(c *gin.Context) {
	profile, err := h.profileUC.Transfer(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile claimed", profile)
}
