package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"peoplenet/infrastructure/config"
	"peoplenet/infrastructure/di"
	"peoplenet/interfaces/http/rest"
)

var (
	chiLambda     *chiadapter.ChiLambdaV2
	container     *di.Container
	coldStart     = true
	coldStartTime time.Time
)

// gatewayHeaders are only trusted when this handler sets them
var gatewayHeaders = []string{"X-API-Gateway-Authorized", "X-User-ID", "X-User-Email", "X-User-Roles"}

func init() {
	coldStartTime = time.Now()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// the container lives as long as the execution environment, so its
	// cleanup is never run
	container, _, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	chiRouter, ok := rest.NewRouter(container).Setup().(*chi.Mux)
	if !ok {
		log.Fatal("Failed to cast handler to chi.Mux")
	}
	chiLambda = chiadapter.NewV2(chiRouter)

	container.Logger.Info("Lambda cold start completed", zap.Duration("duration", time.Since(coldStartTime)))
}

// Handler is the Lambda function handler
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	applyAuthorizerClaims(&req)

	resp, err := chiLambda.ProxyWithContextV2(ctx, req)
	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	resp.Headers["X-Cold-Start"] = "false"
	if coldStart {
		resp.Headers["X-Cold-Start"] = "true"
		coldStart = false
	}
	if req.RequestContext.RequestID != "" {
		resp.Headers["X-Lambda-Request-ID"] = req.RequestContext.RequestID
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		container.Logger.Error("Lambda error response",
			zap.String("method", req.RequestContext.HTTP.Method),
			zap.String("path", req.RequestContext.HTTP.Path),
			zap.String("request_id", req.RequestContext.RequestID),
			zap.Int("status_code", resp.StatusCode),
		)
	}
	return resp, err
}

// applyAuthorizerClaims forwards the claims of an API Gateway JWT
// authorizer as headers the auth middleware trusts. Client supplied
// copies of those headers are always dropped.
func applyAuthorizerClaims(req *events.APIGatewayV2HTTPRequest) {
	if req.Headers == nil {
		req.Headers = make(map[string]string)
	}
	for key := range req.Headers {
		for _, h := range gatewayHeaders {
			if strings.EqualFold(key, h) {
				delete(req.Headers, key)
			}
		}
	}

	authorizer := req.RequestContext.Authorizer
	if authorizer == nil || authorizer.JWT == nil {
		return
	}
	claims := authorizer.JWT.Claims
	if claims["sub"] == "" {
		return
	}
	req.Headers["X-API-Gateway-Authorized"] = "true"
	req.Headers["X-User-ID"] = claims["sub"]
	if email := claims["email"]; email != "" {
		req.Headers["X-User-Email"] = email
	}
	if len(authorizer.JWT.Scopes) > 0 {
		req.Headers["X-User-Roles"] = strings.Join(authorizer.JWT.Scopes, ",")
	}
}

func main() {
	lambda.Start(Handler)
}
