package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/securedrive/internal/api"
	"github.com/dmitrijs2005/securedrive/internal/common"
	"github.com/dmitrijs2005/securedrive/internal/cryptox"
	"github.com/dmitrijs2005/securedrive/internal/server/models"
	"github.com/dmitrijs2005/securedrive/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// multipartOverhead is allowed on top of the blob limit for boundaries,
// headers and the meta field.
const multipartOverhead = 64 << 10

const banner = "SecureDrive server is running. The server only stores ciphertext.\n"

func (s *HTTPServer) handleBanner(c *gin.Context) {
	c.String(http.StatusOK, banner)
}

func (s *HTTPServer) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, api.PingResponse{Status: "OK"})
}

func (s *HTTPServer) handleRegister(c *gin.Context) {
	var req api.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, fmt.Errorf("%w: %v", common.ErrorInvalidInput, err))
		return
	}

	identity, err := s.identities.Register(c.Request.Context(), req.Email,
		&cryptox.WrappedKey{Ciphertext: req.WrappedMasterKey, Nonce: req.IV, Salt: req.Salt},
		req.Verifier)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, api.RegisterResponse{Email: identity.Email})
}

func (s *HTTPServer) handleGetWrappedKey(c *gin.Context) {
	var req api.WrappedKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, fmt.Errorf("%w: %v", common.ErrorInvalidInput, err))
		return
	}

	wk, err := s.identities.GetWrappedKey(c.Request.Context(), req.Email)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.WrappedKeyResponse{WrappedMasterKey: wk.Ciphertext, IV: wk.Nonce, Salt: wk.Salt})
}

func (s *HTTPServer) handleLogin(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, fmt.Errorf("%w: %v", common.ErrorInvalidInput, err))
		return
	}

	token, err := s.identities.Login(c.Request.Context(), req.Email, req.AuthKey)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.LoginResponse{Token: token})
}

func (s *HTTPServer) handleLogout(c *gin.Context) {
	if err := s.identities.Logout(c.Request.Context(), c.GetString(tokenKey)); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes+multipartOverhead)

	fh, err := c.FormFile(api.UploadFileField)
	if err != nil {
		s.abortWithError(c, uploadFormError(err))
		return
	}
	if fh.Size > s.maxUploadBytes {
		s.abortWithError(c, &http.MaxBytesError{Limit: s.maxUploadBytes})
		return
	}

	var meta api.UploadMeta
	if err := binding.JSON.BindBody([]byte(c.PostForm(api.UploadMetaField)), &meta); err != nil {
		s.abortWithError(c, fmt.Errorf("%w: meta: %v", common.ErrorInvalidInput, err))
		return
	}
	if err := meta.Validate(); err != nil {
		s.abortWithError(c, err)
		return
	}

	f, err := fh.Open()
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	defer f.Close()

	blob, err := io.ReadAll(f)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	artifact, err := s.artifacts.Upload(c.Request.Context(), identityFrom(c), &services.UploadInput{
		Blob:          blob,
		WrappedCEK:    meta.WrappedCEK,
		CEKWrapNonce:  meta.WrapIV,
		EncryptedName: meta.EncryptedFileName,
		NameNonce:     meta.NameIV,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, api.UploadResponse{StorageName: artifact.StorageName, UploadedAt: artifact.UploadedAt})
}

// uploadFormError keeps size violations distinct from malformed forms.
func uploadFormError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return fmt.Errorf("%w: %v", common.ErrorInvalidInput, err)
}

func (s *HTTPServer) handleList(c *gin.Context) {
	list, err := s.artifacts.List(c.Request.Context(), identityFrom(c))
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	out := make([]api.ArtifactMeta, 0, len(list))
	for _, a := range list {
		out = append(out, artifactMeta(a))
	}
	c.JSON(http.StatusOK, out)
}

func (s *HTTPServer) handleMeta(c *gin.Context) {
	a, err := s.artifacts.Get(c.Request.Context(), identityFrom(c), c.Param("name"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, artifactMeta(a))
}

func (s *HTTPServer) handleDownload(c *gin.Context) {
	a, blob, err := s.artifacts.Download(c.Request.Context(), identityFrom(c), c.Param("name"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.StorageName))
	c.Data(http.StatusOK, "application/octet-stream", blob)
}

func (s *HTTPServer) handleDelete(c *gin.Context) {
	if err := s.artifacts.Delete(c.Request.Context(), identityFrom(c), c.Param("name")); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.DeleteResponse{Success: true})
}

func artifactMeta(a *models.Artifact) api.ArtifactMeta {
	return api.ArtifactMeta{
		StorageName:       a.StorageName,
		WrappedCEK:        a.WrappedCEK,
		WrapIV:            a.CEKWrapNonce,
		EncryptedFileName: a.EncryptedName,
		NameIV:            a.NameNonce,
		Size:              a.Size,
		UploadedAt:        a.UploadedAt,
	}
}
