package v1

import (
	"io"
	"net/http"

	"github.com/ZinoM21/any-cv-api/internal/delivery/http/response"
	"github.com/ZinoM21/any-cv-api/internal/domain"
	"github.com/ZinoM21/any-cv-api/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type FileHandler struct {
	fileUC        domain.FileUsecase
	maxUploadSize int64
}

func NewFileHandler(r *gin.RouterGroup, fileUC domain.FileUsecase, maxUploadSize int64) {
	handler := &FileHandler{fileUC: fileUC, maxUploadSize: maxUploadSize}

	files := r.Group("/files")
	{
		files.POST("/signed-upload-url", handler.SignedUploadURL)
		files.POST("/signed-url", handler.SignedURL)
		files.POST("/signed-urls", handler.SignedURLs)
		files.POST("/avatar", handler.UploadAvatar)
	}
}

// SignedUploadURL godoc
// @Summary      Presign a file upload
// @Description  Returns a URL the client uploads directly to, bypassing the API
// @Tags         files
// @Accept       json
// @Produce      json
// @Param        request  body      domain.SignedUploadURLRequest  true  "File metadata"
// @Success      200  {object}  response.Response{data=domain.SignedURL}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /files/signed-upload-url [post]
// @Security     BearerAuth
func (h *FileHandler) SignedUploadURL(c *gin.Context) {
	var req domain.SignedUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	signed, err := h.fileUC.SignedUploadURL(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Signed upload URL", signed)
}

// SignedURL godoc
// @Summary      Presign a file download
// @Tags         files
// @Accept       json
// @Produce      json
// @Param        request  body      domain.SignedURLRequest  true  "File path"
// @Success      200  {object}  response.Response{data=domain.SignedURL}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /files/signed-url [post]
// @Security     BearerAuth
func (h *FileHandler) SignedURL(c *gin.Context) {
	var req domain.SignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	signed, err := h.fileUC.SignedURL(c.Request.Context(), req.FilePath)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Signed URL", signed)
}

// SignedURLs godoc
// @Summary      Presign several file downloads
// @Tags         files
// @Accept       json
// @Produce      json
// @Param        request  body      domain.SignedURLsRequest  true  "File paths"
// @Success      200  {object}  response.Response{data=[]domain.SignedURL}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /files/signed-urls [post]
// @Security     BearerAuth
func (h *FileHandler) SignedURLs(c *gin.Context) {
	var req domain.SignedURLsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	signed, err := h.fileUC.SignedURLs(c.Request.Context(), req.FilePaths)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Signed URLs", signed)
}

// UploadAvatar godoc
// @Summary      Upload an avatar image
// @Description  Validates the image, downscales large originals and stores it
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Avatar image"
// @Success      200  {object}  response.Response{data=domain.SignedURL}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /files/avatar [post]
// @Security     BearerAuth
func (h *FileHandler) UploadAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.BadRequest("Missing file upload"))
		return
	}
	if fileHeader.Size > h.maxUploadSize {
		c.Error(apperror.BadRequest("File too large"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.BadRequest("Could not read file upload"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		c.Error(apperror.BadRequest("Could not read file upload"))
		return
	}

	signed, err := h.fileUC.UploadAvatar(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Avatar uploaded", signed)
}
