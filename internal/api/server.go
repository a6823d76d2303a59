package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/dancehub/event-registration/docs"
	v1 "github.com/dancehub/event-registration/internal/api/handler/v1"
	"github.com/dancehub/event-registration/internal/api/middleware"
	"github.com/dancehub/event-registration/internal/config"
	"github.com/dancehub/event-registration/internal/repository"
	"github.com/dancehub/event-registration/internal/repository/dao"
	"github.com/dancehub/event-registration/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

// Dependencies are the outbound adapters the handlers need besides the database.
type Dependencies struct {
	DB        *gorm.DB
	Gateway   service.PaymentGateway
	Publisher service.EventPublisher
}

func NewServer(conf *config.AppConfig, deps Dependencies) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	tx := repository.NewTransactor(deps.DB)
	participantRepo := repository.NewParticipantRepository(dao.NewParticipantDAO(deps.DB))
	orderRepo := repository.NewOrderRepository(dao.NewOrderDAO(deps.DB))
	productRepo := repository.NewProductRepository(dao.NewProductDAO(deps.DB))

	registrationHandler := v1.NewRegistrationHandler(
		service.NewRegistrationService(tx, orderRepo, participantRepo),
		service.NewSummaryService(participantRepo, orderRepo),
	)
	paymentHandler := v1.NewPaymentHandler(service.NewPaymentService(deps.Gateway, tx, orderRepo, deps.Publisher))
	productHandler := v1.NewProductHandler(service.NewProductService(productRepo, participantRepo))

	s.MountHandlers(registrationHandler, paymentHandler, productHandler)

	return s
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.Logger())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
	s.Router.Use(middleware.Timeout(s.Config.API.RequestTimeout))
}

func (s *Server) MountHandlers(registrationHandler *v1.RegistrationHandler, paymentHandler *v1.PaymentHandler, productHandler *v1.ProductHandler) {
	const basePath = "/api/v1"

	authed := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		authed.POST("/events/:eventID/register", registrationHandler.HandleRegister)
		authed.GET("/registrations/:participantID", registrationHandler.HandleGetRegistration)
		authed.POST("/orders/:orderID/payment-intent", paymentHandler.HandleCreatePaymentIntent)

		authed.GET("/events/:eventID/products", productHandler.HandleListProducts)
		authed.POST("/events/:eventID/products", productHandler.HandleCreateProduct)
		authed.PUT("/events/:eventID/products/:productID", productHandler.HandleUpdateProduct)
		authed.DELETE("/events/:eventID/products/:productID", productHandler.HandleDeleteProduct)
	}

	// The processor authenticates with the signature header, not a bearer token.
	s.Router.POST("/webhooks/payment", paymentHandler.HandleWebhook)

	s.Router.GET("/health", v1.HandleHealthcheck)

	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Event registration API"
	docs.SwaggerInfo.Description = "Registration, inventory and payment reconciliation for dance events."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
