package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lingua/api-gateway/config"
	"github.com/lingua/api-gateway/gateway"
	"github.com/lingua/api-gateway/middleware"
	"go.uber.org/zap"
)

// GatewayName is sent in the X-Gateway header of every proxied response
const GatewayName = "lingua-gateway"

// ProxyHandler adapts gin requests to the gateway core
type ProxyHandler struct {
	gateway      *gateway.Gateway
	maxBodyBytes int64
	logger       *zap.Logger
}

// NewProxyHandler creates a proxy handler wired to the configured microservices
func NewProxyHandler(cfg *config.Config, logger *zap.Logger) *ProxyHandler {
	services := gateway.NewServiceTable(cfg.ServiceURLs())
	authURL, _ := services.BaseURL(config.ServiceAuth)

	gw := gateway.New(
		gateway.NewResolver(services),
		gateway.NewSubstringClassifier(cfg.Gateway.PublicRoutes),
		gateway.NewRemoteValidator(authURL, gateway.ValidatorOptions{
			Timeout:       cfg.Gateway.ValidateTimeout,
			RejectExpired: cfg.Gateway.RejectExpiredTokens,
		}, logger),
		gateway.NewHTTPForwarder(cfg.Gateway.ForwardTimeout, logger),
		logger,
	)

	for name, baseURL := range cfg.ServiceURLs() {
		logger.Info("Registered microservice",
			zap.String("service", name),
			zap.String("url", baseURL),
		)
	}

	return newProxyHandler(gw, cfg.Gateway.MaxBodyBytes, logger)
}

func newProxyHandler(gw *gateway.Gateway, maxBodyBytes int64, logger *zap.Logger) *ProxyHandler {
	return &ProxyHandler{
		gateway:      gw,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// Handle routes any request through the gateway. It is also the router's NoRoute handler,
// so unknown paths get the gateway's own 404.
func (p *ProxyHandler) Handle(c *gin.Context) {
	header := c.Request.Header.Clone()
	p.addForwardedHeaders(header, c)

	body, err := gateway.ReadBody(c.GetHeader("Content-Type"), c.Request.Body, c.Request.ContentLength, p.maxBodyBytes)
	if err != nil {
		status, message := http.StatusBadRequest, "Invalid request body"
		if errors.Is(err, gateway.ErrBodyTooLarge) {
			status, message = http.StatusRequestEntityTooLarge, "Request body too large"
		}
		p.logger.Warn("Rejected request body", zap.String("path", c.Request.URL.Path), zap.Error(err))
		writeResponse(c, gateway.ErrorResponse(status, message))
		return
	}

	result := p.gateway.Handle(c.Request.Context(), &gateway.IncomingRequest{
		Method:   c.Request.Method,
		Path:     c.Request.URL.EscapedPath(),
		RawQuery: c.Request.URL.RawQuery,
		Header:   header,
		Body:     body,
	})

	if result.Route != nil {
		c.Set(middleware.ServiceContextKey, result.Route.Service)
	}
	middleware.SetIdentity(c, result.Identity)

	writeResponse(c, result.Response)
}

// addForwardedHeaders tells the downstream who the original caller was
func (p *ProxyHandler) addForwardedHeaders(header http.Header, c *gin.Context) {
	clientIP := c.ClientIP()
	if prior := header.Get("X-Forwarded-For"); prior != "" {
		header.Set("X-Forwarded-For", prior+", "+clientIP)
	} else if clientIP != "" {
		header.Set("X-Forwarded-For", clientIP)
	}
	if header.Get("X-Real-IP") == "" && clientIP != "" {
		header.Set("X-Real-IP", clientIP)
	}
	header.Set("X-Forwarded-Host", c.Request.Host)
	header.Set("X-Gateway", GatewayName)
}

func writeResponse(c *gin.Context, resp *gateway.Response) {
	for name, values := range resp.Header {
		for _, value := range values {
			c.Writer.Header().Add(name, value)
		}
	}
	c.Header("X-Gateway", GatewayName)

	contentType := resp.Header.Get("Content-Type")
	if strings.TrimSpace(contentType) == "" {
		contentType = "application/json"
	}
	c.Data(resp.Status, contentType, resp.Data)
}
