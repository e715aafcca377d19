package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/checkout"
	"storefront/internal/middleware"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Logger       *zap.Logger
	Health       Pinger
	Accounts     AccountFinder
	Tokens       TokenIssuer
	Guard        middleware.AdminAuthorizer
	Documents    DocumentSigner
	Objects      ObjectReader
	URLVerifier  SignedURLVerifier
	Funnel       FunnelRecorder
	Metrics      FunnelMetricsSource
	Insights     InsightsAnalyzer
	Products     ProductCatalog
	Checkout     *checkout.Service
	Applications ApplicationLister
	Now          func() time.Time
}

func NewRouter(d Deps) *gin.Engine {
	if d.Now == nil {
		d.Now = time.Now
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(d.Logger),
		middleware.AccessLog(d.Logger),
		middleware.Recovery(d.Logger),
		middleware.CORS(),
	)
	r.MaxMultipartMemory = 32 << 20

	r.GET("/", Home())
	r.GET("/healthz", Healthz(d.Health))
	r.POST("/auth/login", Login(d.Accounts, d.Tokens))

	r.POST("/admin-access-document", AccessDocument(d.Documents))
	r.POST("/track-funnel-event", TrackFunnelEvent(d.Funnel))
	r.POST("/analyze-insights", AnalyzeInsights(d.Insights))
	r.GET("/documents/:bucket/*path", ServeDocument(d.Objects, d.URLVerifier))

	r.GET("/products", GetProducts(d.Products))
	r.GET("/products/:id", GetProduct(d.Products))

	sessions := r.Group("/checkout/sessions")
	{
		sessions.POST("", StartCheckout(d.Checkout))
		sessions.GET("/:id", GetCheckout(d.Checkout))
		sessions.POST("/:id/customer-info", SubmitCustomerInfo(d.Checkout))
		sessions.POST("/:id/protection", SelectProtection(d.Checkout))
		sessions.POST("/:id/documents", UploadDocuments(d.Checkout))
		sessions.POST("/:id/back", GoBack(d.Checkout))
		sessions.POST("/:id/submit", SubmitCheckout(d.Checkout))
	}

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(d.Guard))
	{
		admin.GET("/me", AdminMe())
		admin.GET("/applications", ListApplications(d.Applications))
		admin.GET("/funnel/metrics", GetFunnelMetrics(d.Metrics, d.Now))
	}

	return r
}
