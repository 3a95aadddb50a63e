package uploads

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"

	"resume-importer/internal/extract"
	"resume-importer/internal/shared/server/middleware"
	"resume-importer/internal/shared/server/respond"
	"resume-importer/internal/shared/storage/object"
	"resume-importer/internal/shared/telemetry"
)

const (
	presignExpires       = 15 * time.Minute
	defaultRegion        = "us-east-1"
	defaultUploadsPrefix = "imports"
)

// Presigner issues presigned PUT URLs.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Handler serves presigned upload URLs for direct-to-bucket PDF uploads.
type Handler struct {
	presign Presigner
	bucket  string
	prefix  string
}

// NewHandler constructs a Handler. A nil presigner or empty bucket leaves uploads disabled.
func NewHandler(presign Presigner, bucket, prefix string) *Handler {
	return &Handler{presign: presign, bucket: strings.TrimSpace(bucket), prefix: normalizePrefix(prefix)}
}

// NewFromConfig builds a Handler backed by the default AWS credential chain.
func NewFromConfig(ctx context.Context, region, bucket, prefix string) (*Handler, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("uploads bucket is required")
	}
	region = strings.TrimSpace(region)
	if region == "" {
		region = defaultRegion
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return NewHandler(s3.NewPresignClient(s3.NewFromConfig(cfg)), bucket, prefix), nil
}

// Prefix returns the key prefix uploads are issued under.
func (h *Handler) Prefix() string {
	return h.prefix
}

type presignRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	MimeType    string `json:"mimeType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

type presignResponse struct {
	UploadURL        string `json:"uploadUrl"`
	S3Key            string `json:"s3Key"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
}

// RegisterRoutes attaches upload routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/uploads/presign", h.presignUpload)
}

func (h *Handler) presignUpload(c *gin.Context) {
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Validation(c, "invalid request body")
		return
	}

	req.FileName = strings.TrimSpace(req.FileName)
	contentType := strings.TrimSpace(req.ContentType)
	if contentType == "" {
		contentType = strings.TrimSpace(req.MimeType)
	}

	if req.FileName == "" {
		respond.Validation(c, "fileName is required")
		return
	}
	if req.SizeBytes <= 0 {
		respond.Validation(c, "sizeBytes must be positive")
		return
	}
	if err := extract.Validate(contentType, req.SizeBytes); err != nil {
		rejected, _ := extract.IsInputRejected(err)
		status := http.StatusUnsupportedMediaType
		if rejected != nil && rejected.Reason == extract.ReasonFileTooLarge {
			status = http.StatusRequestEntityTooLarge
		}
		code := extract.ReasonInvalidFileType
		if rejected != nil {
			code = rejected.Reason
		}
		respond.Error(c, status, code, err.Error(), nil)
		return
	}

	if h.presign == nil || h.bucket == "" {
		respond.Error(c, http.StatusServiceUnavailable, "uploads_not_configured", "uploads not configured", nil)
		return
	}

	key, err := object.NewKey(middleware.UserIDFromContext(c), req.FileName)
	if err != nil {
		respond.Validation(c, "invalid fileName")
		return
	}
	key = object.WithPrefix(h.prefix, key)

	out, err := h.presign.PresignPutObject(c.Request.Context(), presignInput(h.bucket, key), func(opts *s3.PresignOptions) {
		opts.Expires = presignExpires
	})
	if err != nil {
		telemetry.Error("uploads.presign.failed", map[string]any{
			"err":         err.Error(),
			"bucket":      h.bucket,
			"key":         key,
			"contentType": contentType,
			"sizeBytes":   req.SizeBytes,
			"request_id":  middleware.RequestIDFromContext(c),
		})
		respond.Internal(c, "failed to generate upload url")
		return
	}

	respond.OK(c, presignResponse{
		UploadURL:        out.URL,
		S3Key:            key,
		ExpiresInSeconds: int64(presignExpires.Seconds()),
	})
}

func presignInput(bucket, key string) *s3.PutObjectInput {
	return &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String(extract.MimePDF),
	}
}

func normalizePrefix(prefix string) string {
	if p := object.CleanPrefix(prefix); p != "" {
		return p
	}
	return defaultUploadsPrefix
}
