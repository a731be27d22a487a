package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/AdamBeresnev/club-bracket/internal/bracket"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const snapshotPrefix = "tournaments/"

// ObjectAPI is the part of the S3 client the object store needs.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type ObjectStoreConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// ObjectStore keeps each tournament as one JSON object, so a put replaces the whole
// snapshot atomically.
type ObjectStore struct {
	client ObjectAPI
	bucket string
}

func NewObjectStore(client ObjectAPI, bucket string) *ObjectStore {
	return &ObjectStore{client: client, bucket: bucket}
}

// NewObjectStoreFromConfig builds an S3 client. A custom endpoint switches to path
// style addressing for S3 compatible services like R2 or MinIO.
func NewObjectStoreFromConfig(ctx context.Context, cfg ObjectStoreConfig) (*ObjectStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("invalid object store configuration: bucket is required")
	}

	opts := []func(*config.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	sdkCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewObjectStore(client, cfg.Bucket), nil
}

func snapshotKey(id string) string {
	return path.Join(snapshotPrefix, id+".json")
}

func (s *ObjectStore) CreateTournament(ctx context.Context, tournament *bracket.Tournament) error {
	_, err := s.GetTournament(ctx, tournament.ID)
	if err == nil {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, tournament.ID)
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.put(ctx, tournament)
}

func (s *ObjectStore) SaveTournament(ctx context.Context, tournament *bracket.Tournament) error {
	if _, err := s.GetTournament(ctx, tournament.ID); err != nil {
		return err
	}
	return s.put(ctx, tournament)
}

func (s *ObjectStore) put(ctx context.Context, tournament *bracket.Tournament) error {
	body, err := json.Marshal(tournament)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", tournament.ID, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(snapshotKey(tournament.ID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put snapshot (key: %s): %w", snapshotKey(tournament.ID), err)
	}
	return nil
}

func (s *ObjectStore) GetTournament(ctx context.Context, id string) (*bracket.Tournament, error) {
	return s.get(ctx, snapshotKey(id))
}

func (s *ObjectStore) get(ctx context.Context, key string) (*bracket.Tournament, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, strings.TrimSuffix(path.Base(key), ".json"))
		}
		return nil, fmt.Errorf("failed to get snapshot (key: %s): %w", key, err)
	}
	defer out.Body.Close()

	var tournament bracket.Tournament
	if err := json.NewDecoder(out.Body).Decode(&tournament); err != nil {
		return nil, fmt.Errorf("decode snapshot (key: %s): %w", key, err)
	}
	if tournament.Participants == nil {
		tournament.Participants = []string{}
	}
	if tournament.Matches == nil {
		tournament.Matches = []bracket.Match{}
	}
	return &tournament, nil
}

func (s *ObjectStore) ListTournaments(ctx context.Context, clubID string) ([]bracket.Tournament, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(snapshotPrefix),
	})

	result := []bracket.Tournament{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, ".json") {
				continue
			}
			t, err := s.get(ctx, key)
			if err != nil {
				return nil, err
			}
			if clubID != "" && t.ClubID != clubID {
				continue
			}
			result = append(result, *t)
		}
	}

	sortNewestFirst(result)
	return result, nil
}
