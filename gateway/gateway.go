package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// IncomingRequest is the part of a caller's request the gateway needs
type IncomingRequest struct {
	Method   string
	// Path is the escaped path as sent by the caller. It is resolved and forwarded without decoding.
	Path     string
	RawQuery string
	Header   http.Header
	Body     Body
}

// Result is the outcome of handling one request. Response is always set; Route and Identity
// are nil when resolution failed or authentication was skipped.
type Result struct {
	Response *Response
	Route    *ResolvedRoute
	Identity *Identity
}

// Gateway resolves, authenticates and forwards requests to the platform microservices
type Gateway struct {
	resolver   *Resolver
	classifier Classifier
	validator  Validator
	forwarder  Forwarder
	logger     *zap.Logger
}

// New wires a gateway from its parts
func New(resolver *Resolver, classifier Classifier, validator Validator, forwarder Forwarder, logger *zap.Logger) *Gateway {
	return &Gateway{
		resolver:   resolver,
		classifier: classifier,
		validator:  validator,
		forwarder:  forwarder,
		logger:     logger,
	}
}

// Handle processes one request and always produces exactly one response
func (g *Gateway) Handle(ctx context.Context, in *IncomingRequest) (result *Result) {
	result = &Result{}
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("Gateway panic",
				zap.String("method", in.Method),
				zap.String("path", in.Path),
				zap.Any("panic", r),
			)
			result.Response = MapOutcome(result.service(), UnexpectedError{Err: fmt.Errorf("panic: %v", r)})
		}
	}()

	route, err := g.resolver.Resolve(in.Path)
	if err != nil {
		g.logger.Debug("Route resolution failed", zap.String("path", in.Path), zap.Error(err))
		result.Response = routeErrorResponse(err)
		return result
	}
	result.Route = route

	if g.classifier.RequiresAuth(route.TargetURL) {
		identity, err := g.validator.Validate(ctx, in.Header.Get("Authorization"))
		if err != nil {
			g.logger.Info("Authentication failed",
				zap.String("service", route.Service),
				zap.String("target", route.TargetURL),
				zap.Error(err),
			)
			result.Response = ErrorResponse(http.StatusUnauthorized, MessageInvalidToken)
			return result
		}
		result.Identity = identity
	}

	forwardURL := route.TargetURL
	if in.RawQuery != "" {
		forwardURL += "?" + in.RawQuery
	}

	g.logger.Debug("Proxying request",
		zap.String("service", route.Service),
		zap.String("method", in.Method),
		zap.String("target", forwardURL),
		zap.Bool("authenticated", result.Identity != nil),
	)

	outcome := g.forwarder.Forward(ctx, &ForwardRequest{
		Service:  route.Service,
		Method:   in.Method,
		URL:      forwardURL,
		Header:   in.Header,
		Body:     in.Body,
		Identity: result.Identity,
	})
	g.logOutcome(route, outcome)

	result.Response = MapOutcome(route.Service, outcome)
	return result
}

func (g *Gateway) logOutcome(route *ResolvedRoute, outcome Outcome) {
	switch o := outcome.(type) {
	case TransportErrorWithResponse:
		g.logger.Warn("Downstream call failed after response",
			zap.String("service", route.Service),
			zap.String("target", route.TargetURL),
			zap.Int("status", o.Status),
			zap.Error(o.Err),
		)
	case TransportErrorNoResponse:
		g.logger.Warn("Downstream service unavailable",
			zap.String("service", route.Service),
			zap.String("target", route.TargetURL),
			zap.Error(o.Err),
		)
	case UnexpectedError:
		g.logger.Error("Unexpected forwarding error",
			zap.String("service", route.Service),
			zap.String("target", route.TargetURL),
			zap.Error(o.Err),
		)
	}
}

func (r *Result) service() string {
	if r.Route == nil {
		return ""
	}
	return r.Route.Service
}

func routeErrorResponse(err error) *Response {
	var routeErr *RouteError
	if errors.As(err, &routeErr) {
		return ErrorResponse(http.StatusNotFound, routeErr.Message())
	}
	return ErrorResponse(http.StatusInternalServerError, MessageInternalError)
}
