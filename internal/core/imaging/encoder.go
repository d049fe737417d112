package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var (
	ErrDecode   = errors.New("imaging: unsupported or corrupt image")
	ErrTooLarge = errors.New("imaging: cannot fit size budget")
)

// MaxPixels 解码前允许的最大像素数（约 40MP，RGBA 约 160MB）
const MaxPixels = 40_000_000

// 依次尝试的 JPEG 质量
var qualities = []int{85, 75, 65, 55, 45, 35}

// Encoder 把上传图片缩放并压缩到 MaxBytes 以内
type Encoder struct {
	MaxDim   int // 最长边
	MaxBytes int
}

func New(maxDim, maxBytes int) *Encoder {
	if maxDim <= 0 {
		maxDim = 1280
	}
	if maxBytes <= 0 {
		maxBytes = 150 * 1024
	}
	return &Encoder{MaxDim: maxDim, MaxBytes: maxBytes}
}

// Encode 返回 JPEG 字节。先读头部，像素数超过 MaxPixels 的不解码
func (e *Encoder) Encode(data []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrDecode, cfg.Width, cfg.Height, MaxPixels)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	img := fit(src, e.MaxDim)
	for round := 0; round < 8; round++ {
		for _, q := range qualities {
			var buf bytes.Buffer
			if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
				return nil, err
			}
			if buf.Len() <= e.MaxBytes {
				return buf.Bytes(), nil
			}
		}
		// 最低质量仍超限：再缩小一圈
		b := img.Bounds()
		img = fit(img, max(b.Dx(), b.Dy())*3/4)
	}
	return nil, ErrTooLarge
}

// fit 等比缩放到最长边不超过 maxDim
func fit(src image.Image, maxDim int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return src
	}
	nw, nh := maxDim, h*maxDim/w
	if h > w {
		nw, nh = w*maxDim/h, maxDim
	}
	dst := image.NewRGBA(image.Rect(0, 0, max(1, nw), max(1, nh)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// DataURL 编码成 data:<mime>;base64,...
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURL 解析 DataURL 生成的字符串
func ParseDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrDecode
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrDecode
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, ErrDecode
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return mime, data, nil
}
