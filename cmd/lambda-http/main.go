package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"resume-importer/internal/bootstrap"
	"resume-importer/internal/shared/config"
	"resume-importer/internal/shared/telemetry"
)

// httpProxy builds the router once per cold start and forwards API Gateway v2 events to it.
type httpProxy struct {
	build func() (*gin.Engine, error)

	once    sync.Once
	adapter *ginadapter.GinLambdaV2
	err     error
}

func newHTTPProxy() *httpProxy {
	return &httpProxy{build: func() (*gin.Engine, error) {
		app, err := bootstrap.Build(config.Load())
		if err != nil {
			return nil, err
		}
		return app.Router, nil
	}}
}

func (p *httpProxy) init() {
	router, err := p.build()
	if err != nil {
		p.err = err
		return
	}
	p.adapter = ginadapter.NewV2(router)
}

func (p *httpProxy) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	p.once.Do(p.init)
	if p.err != nil {
		telemetry.Error("lambda.http.bootstrap_failed", map[string]any{
			"error":   p.err.Error(),
			"path":    req.RawPath,
			"request": req.RequestContext.RequestID,
		})
		return errorResponse("bootstrap_failed", "service is not available"), nil
	}
	return p.adapter.ProxyWithContext(ctx, req)
}

func errorResponse(code, message string) events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(map[string]any{
		"error": map[string]any{"code": code, "message": message},
	})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func main() {
	lambda.Start(newHTTPProxy().Handle)
}
