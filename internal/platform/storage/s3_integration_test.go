//go:build integration

package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/localstack"
)

const testBucket = "portfolio-uploads"

// startLocalStack runs LocalStack with S3 and creates the test bucket.
func startLocalStack(t *testing.T) (endpoint string, client *s3.Client) {
	t.Helper()
	ctx := context.Background()

	container, err := localstack.Run(ctx,
		"localstack/localstack:3.0",
		testcontainers.WithEnv(map[string]string{"SERVICES": "s3"}),
	)
	if err != nil {
		t.Fatalf("Failed to start localstack: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Warning: failed to terminate localstack: %v", err)
		}
	})

	host, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get endpoint: %v", err)
	}
	endpoint = "http://" + host

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
	)
	if err != nil {
		t.Fatalf("Failed to load AWS config: %v", err)
	}
	client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	if _, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(testBucket)}); err != nil {
		t.Fatalf("Failed to create bucket: %v", err)
	}
	return endpoint, client
}

func TestS3Storage_Integration(t *testing.T) {
	endpoint, client := startLocalStack(t)
	ctx := context.Background()

	files, err := NewS3Storage(ctx, S3Config{
		Bucket:       testBucket,
		Region:       "us-east-1",
		Endpoint:     endpoint,
		UsePathStyle: true,
		AccessKey:    "test",
		SecretKey:    "test",
	})
	if err != nil {
		t.Fatalf("NewS3Storage: %v", err)
	}

	payload := "%PDF-1.4 resume"
	stored, err := files.Upload(ctx, strings.NewReader(payload), int64(len(payload)), "profile", KindDocument, "application/pdf")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(stored.StorageID, "profile/document/") || !strings.HasSuffix(stored.StorageID, ".pdf") {
		t.Errorf("Unexpected storage id %q", stored.StorageID)
	}
	if stored.URL != endpoint+"/"+testBucket+"/"+stored.StorageID {
		t.Errorf("Unexpected URL %q", stored.URL)
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(testBucket), Key: aws.String(stored.StorageID)})
	if err != nil {
		t.Fatalf("get object: %v", err)
	}
	body, _ := io.ReadAll(out.Body)
	out.Body.Close()
	if string(body) != payload || aws.ToString(out.ContentType) != "application/pdf" {
		t.Errorf("Unexpected object %q (%s)", body, aws.ToString(out.ContentType))
	}

	if err := files.Delete(ctx, stored.StorageID, KindDocument); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(testBucket), Key: aws.String(stored.StorageID)})
	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		t.Errorf("Expected the object to be gone, got %v", err)
	}

	if err := files.Delete(ctx, stored.StorageID, KindDocument); err != nil {
		t.Errorf("Deleting a missing object should succeed: %v", err)
	}
}
