package media

import (
	"context"
	"path"
	"regexp"
	"strings"
	"time"

	"vitrina/internal/domain"
	"vitrina/pkg/utils"
)

// Upload 预签名上传句柄
type Upload struct {
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	PublicURL string    `json:"publicUrl"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Store 媒体适配器，对象都在 <ownerId>/ 下
type Store interface {
	PresignUpload(ctx context.Context, owner, fileName, mimeType, folder string) (*Upload, error)
	Put(ctx context.Context, owner, folder, fileName, mimeType string, data []byte) (string, error)
	ListOwner(ctx context.Context, owner string) ([]string, error)
	DeleteOwner(ctx context.Context, owner string) (int, error)
}

const (
	FolderProfile = "profile"
	FolderGallery = "gallery"
)

var allowedMime = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

var unsafeName = regexp.MustCompile(`[^a-z0-9._-]+`)

// ObjectKey 校验目录和类型，生成 <owner>/<folder>/<uuid>-<name><ext>
func ObjectKey(owner, folder, fileName, mimeType string) (string, error) {
	if owner == "" || strings.ContainsAny(owner, "/\\") {
		return "", domain.Invalid("owner", "propietario inválido")
	}
	if folder != FolderProfile && folder != FolderGallery {
		return "", domain.Invalid("folder", "carpeta no permitida")
	}
	ext, ok := allowedMime[mimeType]
	if !ok {
		return "", domain.Invalid("mimeType", "tipo de archivo no permitido")
	}
	base := strings.TrimSuffix(path.Base(strings.ReplaceAll(fileName, "\\", "/")), path.Ext(fileName))
	base = strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(base), "-"), "-.")
	if len(base) > 40 {
		base = base[:40]
	}
	if base == "" {
		base = "file"
	}
	return owner + "/" + folder + "/" + utils.NewID() + "-" + base + ext, nil
}

func ownerPrefix(owner string) string { return owner + "/" }

// Nop 未配置对象存储
type Nop struct{}

func (Nop) PresignUpload(context.Context, string, string, string, string) (*Upload, error) {
	return nil, domain.Unavailable("media storage not configured", nil)
}

func (Nop) Put(context.Context, string, string, string, string, []byte) (string, error) {
	return "", domain.Unavailable("media storage not configured", nil)
}

func (Nop) ListOwner(context.Context, string) ([]string, error) { return nil, nil }

func (Nop) DeleteOwner(context.Context, string) (int, error) { return 0, nil }
