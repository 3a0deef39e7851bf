package storage

import (
	"bytes"
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dormitory-dev/duty-roster/backend/internal/config"
)

// Storage — шлюз к объектному хранилищу фотоотчётов. Создаётся один раз
// при старте процесса и передаётся в handler как явная зависимость.
type Storage struct {
	cfg    *config.Config
	client *minio.Client
}

func NewStorage(cfg *config.Config) (*Storage, error) {
	client, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	return &Storage{
		cfg:    cfg,
		client: client,
	}, nil
}

// EnsureBucket создаёт бакет, если его ещё нет.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Minio.Bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return s.client.MakeBucket(ctx, s.cfg.Minio.Bucket, minio.MakeBucketOptions{})
}

// UploadPhoto сохраняет фото и возвращает временную presigned-ссылку на скачивание.
// Ссылку нельзя получить заново по имени объекта, поэтому она сохраняется в базе
// сразу после загрузки. Загрузка необратима: компенсирующего удаления нет.
func (s *Storage) UploadPhoto(ctx context.Context, data []byte, contentType string) (string, error) {
	name := objectName()

	_, err := s.client.PutObject(ctx, s.cfg.Minio.Bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}

	expiry := time.Duration(s.cfg.Minio.URLExpiry) * time.Second
	presigned, err := s.client.PresignedGetObject(ctx, s.cfg.Minio.Bucket, name, expiry, url.Values{})
	if err != nil {
		return "", err
	}

	return presigned.String(), nil
}

// Имя объекта случайное, расширение фиксированное: содержимое не анализируется,
// тип передаётся отдельно через Content-Type.
func objectName() string {
	return uuid.NewString() + ".jpg"
}
