package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"

	"storefront/internal/apperr"
	"storefront/internal/checkout"
)

const maxDocumentSize = 10 << 20

func redirectOn(err error) gin.H {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound, apperr.KindBadRequest:
		return gin.H{"redirect": productsRedirect}
	}
	return nil
}

func respondCheckoutError(c *gin.Context, route string, err error) {
	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		fields := make(gin.H, len(verr.Fields))
		for name, fe := range verr.ByField() {
			fields[name] = fe
		}
		requestLogger(c, route).Info("customer info rejected")
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		return
	}
	if apperr.KindOf(err) == apperr.KindNotFound {
		respondWithError(c, route, err, gin.H{"redirect": productsRedirect})
		return
	}
	respondWithError(c, route, err)
}

// StartCheckout builds the checkout configuration from the configurator's
// selection and opens a session for it.
func StartCheckout(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout/sessions"

		var sel checkout.Selection
		if err := c.ShouldBindJSON(&sel); err != nil {
			invalidBody(c, route, err, gin.H{"redirect": productsRedirect})
			return
		}

		view, err := svc.Start(c.Request.Context(), sel)
		if err != nil {
			respondWithError(c, route, err, redirectOn(err))
			return
		}
		c.JSON(http.StatusCreated, view)
	}
}

func GetCheckout(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /checkout/sessions/:id"

		view, err := svc.Get(c.Param("id"))
		if err != nil {
			respondCheckoutError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func requestLocale(c *gin.Context) checkout.Locale {
	if q := c.Query("locale"); q != "" {
		return checkout.ParseLocale(q)
	}
	return checkout.ParseLocale(c.GetHeader("Accept-Language"))
}

func SubmitCustomerInfo(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout/sessions/:id/customer-info"

		var info checkout.CustomerInfo
		if err := c.ShouldBindJSON(&info); err != nil {
			invalidBody(c, route, err)
			return
		}
		info.FullName = strings.TrimSpace(info.FullName)
		info.Email = strings.TrimSpace(info.Email)
		info.Phone = strings.TrimSpace(info.Phone)
		info.BusinessName = strings.TrimSpace(info.BusinessName)

		view, err := svc.SubmitCustomerInfo(c.Param("id"), info, requestLocale(c))
		if err != nil {
			respondCheckoutError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

type protectionRequest struct {
	AddProtection *bool `json:"addProtection" binding:"required"`
}

func SelectProtection(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout/sessions/:id/protection"

		var req protectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidBody(c, route, err)
			return
		}

		view, err := svc.SelectProtection(c.Param("id"), *req.AddProtection)
		if err != nil {
			respondCheckoutError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// formUpload turns an optional multipart file into a checkout.Upload. A
// missing file yields a zero Upload, which the service rejects.
func formUpload(c *gin.Context, field string) (checkout.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return checkout.Upload{}, nil
		}
		return checkout.Upload{}, apperr.Wrap(err, apperr.KindBadRequest, "invalid "+field+" upload")
	}
	if fh.Size > maxDocumentSize {
		return checkout.Upload{}, apperr.BadRequest(field + " file too large (max 10MB)")
	}
	return checkout.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Open:        openFileHeader(fh),
	}, nil
}

func openFileHeader(fh *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) { return fh.Open() }
}

func UploadDocuments(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout/sessions/:id/documents"

		if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
			respondWithError(c, route, apperr.Wrap(err, apperr.KindBadRequest, "invalid multipart body"))
			return
		}

		nationalID, err := formUpload(c, "nationalId")
		if err != nil {
			respondWithError(c, route, err)
			return
		}
		salary, err := formUpload(c, "salaryCertificate")
		if err != nil {
			respondWithError(c, route, err)
			return
		}

		view, err := svc.UploadDocuments(c.Request.Context(), c.Param("id"), nationalID, salary)
		if err != nil {
			respondCheckoutError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// GoBack steps the wizard back; from the first step the session ends and the
// client is sent to the product listing.
func GoBack(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout/sessions/:id/back"

		view, err := svc.Back(c.Param("id"))
		if err != nil {
			respondCheckoutError(c, route, err)
			return
		}
		if view.Exited {
			c.JSON(http.StatusOK, gin.H{"exited": true, "redirect": productsRedirect})
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func SubmitCheckout(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout/sessions/:id/submit"

		app, err := svc.Submit(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondCheckoutError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"applicationId": app.ID.Hex(),
			"status":        app.Status,
			"totalPrice":    app.TotalPrice,
		})
	}
}
