package upload

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/netx"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

var ErrS3Config = errors.New("incomplete s3 upload configuration")

// S3Config points the uploader at an S3 compatible bucket.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // empty for AWS, e.g. http://127.0.0.1:9000 for MinIO
	AccessKey string
	SecretKey string
	PublicURL string // base under which stored objects are readable
	Prefix    string
	Expires   time.Duration
}

// S3 uploads photos with a presigned PUT and returns their public URL.
type S3 struct {
	cfg     S3Config
	http    *http.Client
	presign *s3.PresignClient
	now     func() time.Time
}

func NewS3(ctx context.Context, cfg S3Config, httpClient *http.Client) (*S3, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, fmt.Errorf("%w: bucket and region are required", ErrS3Config)
	}
	if cfg.Expires <= 0 {
		cfg.Expires = 15 * time.Minute
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Minute}
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3{
		cfg:     cfg,
		http:    httpClient,
		presign: s3.NewPresignClient(client),
		now:     time.Now,
	}, nil
}

func (u *S3) Upload(ctx context.Context, p *PendingUpload) (models.ProfilePhoto, error) {
	key := u.objectKey(p.FileName)

	req, err := presignPutObject(u.presign, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(p.MimeType),
	}, s3.WithPresignExpires(u.cfg.Expires))
	if err != nil {
		return models.ProfilePhoto{}, fmt.Errorf("presign upload: %w", err)
	}

	body, err := p.Reader()
	if err != nil {
		return models.ProfilePhoto{}, err
	}
	if err := netx.UploadToPresignedURL(ctx, u.http, req.URL, body, p.ByteSize, p.MimeType); err != nil {
		return models.ProfilePhoto{}, err
	}

	return models.ProfilePhoto{Name: p.FileName, URL: u.publicBase() + "/" + key}, nil
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// objectKey is <prefix>/<yyyy>/<mm>/<dd>/<uuid>-<name>.
func (u *S3) objectKey(name string) string {
	clean := strings.Trim(unsafeKeyChars.ReplaceAllString(name, "_"), "_")
	if clean == "" {
		clean = "photo"
	}
	return path.Join(
		strings.Trim(u.cfg.Prefix, "/"),
		u.now().UTC().Format("2006/01/02"),
		uuid.NewString()+"-"+clean,
	)
}

func (u *S3) publicBase() string {
	switch {
	case u.cfg.PublicURL != "":
		return strings.TrimRight(u.cfg.PublicURL, "/")
	case u.cfg.Endpoint != "":
		return strings.TrimRight(u.cfg.Endpoint, "/") + "/" + u.cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", u.cfg.Bucket, u.cfg.Region)
	}
}
