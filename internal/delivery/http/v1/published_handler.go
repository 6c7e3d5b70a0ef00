package v1

import (
	"net/http"

	"github.com/ZinoM21/any-cv-api/internal/delivery/http/response"
	"github.com/ZinoM21/any-cv-api/internal/domain"
	"github.com/ZinoM21/any-cv-api/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type PublishedHandler struct {
	profileUC domain.ProfileUsecase
	fileUC    domain.FileUsecase
}

// NewPublishedHandler wires the public, unauthenticated read surface.
func NewPublishedHandler(r *gin.RouterGroup, profileUC domain.ProfileUsecase, fileUC domain.FileUsecase) {
	handler := &PublishedHandler{profileUC: profileUC, fileUC: fileUC}

	published := r.Group("/published")
	{
		published.GET("", handler.List)
		published.GET("/:slug", handler.Get)
		published.POST("/:slug/signed-url", handler.SignedURL)
	}
}

// List godoc
// @Summary      List published profiles
// @Tags         published
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Profile}
// @Router       /published [get]
func (h *PublishedHandler) List(c *gin.Context) {
	profiles, err := h.profileUC.ListPublished(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Published profiles", profiles)
}

// Get godoc
// @Summary      Get a published profile by slug
// @Tags         published
// @Produce      json
// @Param        slug  path      string  true  "Publishing slug"
// @Success      200  {object}  response.Response{data=domain.Profile}
// @Failure      404  {object}  response.Response
// @Router       /published/{slug} [get]
func (h *PublishedHandler) Get(c *gin.Context) {
	profile, err := h.profileUC.GetPublished(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Published profile", profile)
}

// SignedURL godoc
// @Summary      Sign a download for a published profile's file
// @Description  Signs a file belonging to the profile owner without authentication
// @Tags         published
// @Accept       json
// @Produce      json
// @Param        slug     path      string                  true  "Publishing slug"
// @Param        request  body      domain.SignedURLRequest  true  "File path"
// @Success      200  {object}  response.Response{data=domain.SignedURL}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /published/{slug}/signed-url [post]
func (h *PublishedHandler) SignedURL(c *gin.Context) {
	var req domain.SignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	signed, err := h.fileUC.PublicURL(c.Request.Context(), c.Param("slug"), req.FilePath)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Signed URL", signed)
}
