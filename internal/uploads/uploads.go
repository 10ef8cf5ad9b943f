// internal/uploads/uploads.go
// File storage for story media and avatars. Uploads go to S3 when configured,
// otherwise to a local directory served under /uploads.

package uploads

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/kinfolk-app/kinfolk-backend/internal/common/apperrors"
)

const maxFileSize = int64(10 << 20) // 10MB

var allowedExts = map[string]string{
	".jpg":  "image",
	".jpeg": "image",
	".png":  "image",
	".gif":  "image",
	".webp": "image",
	".mp4":  "video",
	".mov":  "video",
	".webm": "video",
}

type Service struct {
	s3Client   *s3.S3
	bucketName string
	baseURL    string
	uploadDir  string
	useS3      bool
}

type Config struct {
	UseS3          bool
	S3Bucket       string
	AWSRegion      string
	LocalUploadDir string
	BaseURL        string
}

func NewService(config Config) (*Service, error) {
	svc := &Service{
		bucketName: config.S3Bucket,
		baseURL:    config.BaseURL,
		uploadDir:  config.LocalUploadDir,
		useS3:      config.UseS3,
	}

	if config.UseS3 {
		sess, err := session.NewSession(&aws.Config{
			Region: aws.String(config.AWSRegion),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %w", err)
		}
		svc.s3Client = s3.New(sess)
	} else {
		if err := os.MkdirAll(config.LocalUploadDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory: %w", err)
		}
	}

	return svc, nil
}

// UploadFile stores the file under the given prefix (e.g. "stories", "avatars")
// and returns its public URL plus the detected media kind.
func (svc *Service) UploadFile(prefix string, file multipart.File, header *multipart.FileHeader) (string, string, error) {
	kind, err := validateFile(header)
	if err != nil {
		return "", "", err
	}

	filename := generateFilename(header.Filename)

	var url string
	if svc.useS3 {
		url, err = svc.uploadToS3(prefix, file, filename, header)
	} else {
		url, err = svc.uploadToLocal(prefix, file, filename)
	}
	if err != nil {
		return "", "", err
	}
	return url, kind, nil
}

func (svc *Service) uploadToS3(prefix string, file multipart.File, filename string, header *multipart.FileHeader) (string, error) {
	buffer := bytes.NewBuffer(nil)
	if _, err := io.Copy(buffer, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	key := fmt.Sprintf("%s/%s/%s", prefix, time.Now().Format("2006/01/02"), filename)

	_, err := svc.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:             aws.String(svc.bucketName),
		Key:                aws.String(key),
		Body:               bytes.NewReader(buffer.Bytes()),
		ContentType:        aws.String(header.Header.Get("Content-Type")),
		ContentDisposition: aws.String("inline"),
		ACL:                aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", svc.bucketName, key), nil
}

func (svc *Service) uploadToLocal(prefix string, file multipart.File, filename string) (string, error) {
	dateDir := time.Now().Format("2006/01/02")
	fullDir := filepath.Join(svc.uploadDir, prefix, dateDir)

	if err := os.MkdirAll(fullDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	destPath := filepath.Join(fullDir, filename)
	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, file); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return fmt.Sprintf("%s/uploads/%s/%s/%s", svc.baseURL, prefix, dateDir, filename), nil
}

// DeleteFile removes a previously uploaded file by its public URL.
func (svc *Service) DeleteFile(fileURL string) error {
	if svc.useS3 {
		key := strings.TrimPrefix(fileURL, fmt.Sprintf("https://%s.s3.amazonaws.com/", svc.bucketName))
		_, err := svc.s3Client.DeleteObject(&s3.DeleteObjectInput{
			Bucket: aws.String(svc.bucketName),
			Key:    aws.String(key),
		})
		return err
	}

	urlPath := strings.TrimPrefix(fileURL, svc.baseURL)
	localPath := filepath.Join(svc.uploadDir, strings.TrimPrefix(urlPath, "/uploads/"))
	return os.Remove(localPath)
}

func validateFile(header *multipart.FileHeader) (string, error) {
	if header.Size > maxFileSize {
		return "", apperrors.Validation("File size exceeds maximum of 10MB")
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	kind, ok := allowedExts[ext]
	if !ok {
		return "", apperrors.Validation("File type not allowed")
	}
	return kind, nil
}

func generateFilename(originalName string) string {
	ext := filepath.Ext(originalName)
	return fmt.Sprintf("%s_%d%s", uuid.New().String(), time.Now().Unix(), ext)
}
