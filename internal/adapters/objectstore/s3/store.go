// Package s3 guarda las imágenes de los reportes en un bucket S3 (o compatible, p.ej. MinIO).
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"pet-lost-found/internal/ports/objectstore"
)

const (
	DefaultRegion = "us-east-1"
	maxObjectSize = 32 << 20
)

type Config struct {
	Bucket          string
	Region          string
	Endpoint        string // opcional; endpoint custom (MinIO, localstack)
	AccessKeyID     string // opcional; si falta usa la default credentials chain
	SecretAccessKey string
	PathStyle       bool
	// PublicBaseURL reemplaza la URL virtual-hosted de AWS (CDN, MinIO público).
	PublicBaseURL string
}

type Store struct {
	client     *s3.Client
	bucket     string
	region     string
	publicBase string
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithClient(client, cfg), nil
}

// NewWithClient permite inyectar un cliente ya configurado (tests con transport fake).
func NewWithClient(client *s3.Client, cfg Config) *Store {
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}
	return &Store{
		client:     client,
		bucket:     cfg.Bucket,
		region:     region,
		publicBase: strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/"),
	}
}

func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &key,
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = &contentType
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", err
	}
	return s.URL(key), nil
}

// URL arma https://<bucket>.s3.<region>.amazonaws.com/<key> salvo que haya PublicBaseURL.
func (s *Store) URL(key string) string {
	escaped := escapeKey(key)
	if s.publicBase != "" {
		return s.publicBase + "/" + escaped
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, escaped)
}

// List recorre el prefijo paginando; omite "carpetas" y corta en limit (0 = sin límite).
func (s *Store) List(ctx context.Context, prefix string, limit int) ([]objectstore.Object, error) {
	var (
		out   []objectstore.Object
		token *string
	)
	for {
		page, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            &s.bucket,
			Prefix:            &prefix,
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			out = append(out, objectstore.Object{Key: key, Size: aws.ToInt64(obj.Size)})
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}
		if aws.ToBool(page.IsTruncated) && page.NextContinuationToken != nil {
			token = page.NextContinuationToken
			continue
		}
		return out, nil
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		return nil, "", err
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxObjectSize))
	if err != nil {
		return nil, "", err
	}
	return data, aws.ToString(out.ContentType), nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
