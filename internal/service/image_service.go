package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gogwan-api/internal/errors"
	"gogwan-api/internal/gemini"
	"gogwan-api/internal/logger"
	"gogwan-api/internal/metrics"
	"gogwan-api/internal/types"

	"go.uber.org/zap"
)

// ImageGenerator 图片生成能力
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req gemini.ImageRequest) (*gemini.Image, error)
}

// ImageService 图像服务接口
type ImageService interface {
	// CreateIDPhoto 证件照
	CreateIDPhoto(ctx context.Context, req *types.IDPhotoRequest) (*types.ImageResponse, error)
	// ConvertToGhibli 吉卜力风格
	ConvertToGhibli(ctx context.Context, req *types.GhibliRequest) (*types.ImageResponse, error)
	// StyleTransfer 风格转换
	StyleTransfer(ctx context.Context, req *types.StyleTransferRequest) (*types.ImageResponse, error)
	// GenerateBanner 文字生成横幅
	GenerateBanner(ctx context.Context, req *types.BannerRequest) (*types.ImageResponse, error)
}

// imageService 图像服务实现
type imageService struct {
	generator ImageGenerator
}

// NewImageService 创建图像服务实例
func NewImageService(generator ImageGenerator) ImageService {
	return &imageService{generator: generator}
}

const idPhotoPrompt = `Edit this photo to create a professional ID/passport photo:

1. Remove the background completely and replace it with a solid %s color
2. Center the person's face in the frame
3. Crop to standard ID photo ratio (3:4)
4. Adjust lighting to be natural and even
5. Enhance quality to professional ID photo standards

Create a high-quality ID photo suitable for passports or identification documents.`

const ghibliPrompt = `Transform this photo into a Studio Ghibli animation style:

Style characteristics:
1. Soft, warm watercolor-like colors
2. Clear, defined anime outlines
3. Dreamy, fantasy Ghibli atmosphere
4. Detailed background with natural lighting
5. Similar to Spirited Away or Howl's Moving Castle

Keep the original composition and pose, but make it look exactly like a scene from a Ghibli animation movie.`

var stylePrompts = map[string]string{
	types.StyleGhibli: ghibliPrompt,
	types.StyleWatercolor: `Repaint this photo as a traditional watercolor painting:

1. Soft, bleeding pigment edges and visible paper texture
2. Light, transparent washes with gentle color gradients
3. Loose brush strokes in the background, more detail on the subject

Keep the original composition and pose.`,
	types.StylePixel: `Convert this photo into 16-bit pixel art:

1. Limited color palette with clean, hard pixel edges
2. No anti-aliasing or blur
3. Retro video game look with simple shading

Keep the original composition and pose.`,
	types.StyleWebtoon: `Redraw this photo as a Korean webtoon illustration:

1. Clean digital line art with smooth cel shading
2. Bright, saturated colors and expressive eyes
3. Simplified but recognizable background

Keep the original composition and pose.`,
}

var styleMessages = map[string]string{
	types.StyleGhibli:     "지브리풍 이미지가 생성되었습니다",
	types.StyleWatercolor: "수채화풍 이미지가 생성되었습니다",
	types.StylePixel:      "픽셀아트 이미지가 생성되었습니다",
	types.StyleWebtoon:    "웹툰풍 이미지가 생성되었습니다",
}

// CreateIDPhoto 证件照
func (s *imageService) CreateIDPhoto(ctx context.Context, req *types.IDPhotoRequest) (*types.ImageResponse, error) {
	color := strings.TrimSpace(req.BackgroundColor)
	if color == "" {
		color = "white"
	}
	return s.edit(ctx, "id_photo", req.Image, fmt.Sprintf(idPhotoPrompt, color), "3:4", "증명사진이 생성되었습니다")
}

// ConvertToGhibli 吉卜力风格
func (s *imageService) ConvertToGhibli(ctx context.Context, req *types.GhibliRequest) (*types.ImageResponse, error) {
	return s.StyleTransfer(ctx, &types.StyleTransferRequest{Image: req.Image, Style: types.StyleGhibli})
}

// StyleTransfer 风格转换
func (s *imageService) StyleTransfer(ctx context.Context, req *types.StyleTransferRequest) (*types.ImageResponse, error) {
	prompt, ok := stylePrompts[req.Style]
	if !ok {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("지원하지 않는 스타일입니다: %s", req.Style), nil)
	}
	return s.edit(ctx, "style_"+req.Style, req.Image, prompt, "", styleMessages[req.Style])
}

// GenerateBanner 文字生成横幅
func (s *imageService) GenerateBanner(ctx context.Context, req *types.BannerRequest) (*types.ImageResponse, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, errors.NewInvalidInputError("제목은 비워둘 수 없습니다", nil)
	}

	ratio := req.AspectRatio
	if ratio == "" {
		ratio = "16:9"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Design a clean, modern promotional banner image.\n\nMain title text: \"%s\"\n", req.Title)
	if req.Subtitle != "" {
		fmt.Fprintf(&b, "Subtitle text: \"%s\"\n", req.Subtitle)
	}
	if req.Theme != "" {
		fmt.Fprintf(&b, "Visual theme: %s\n", req.Theme)
	}
	b.WriteString("\nRender all text exactly as given, legible and correctly spelled (Korean text must use proper Hangul). " +
		"Use a balanced layout with clear hierarchy between title and subtitle.")

	logger.Info("处理横幅生成请求",
		zap.String("title", req.Title),
		zap.String("aspect_ratio", ratio),
	)

	return s.generate(ctx, "banner", gemini.ImageRequest{Prompt: b.String(), AspectRatio: ratio}, "배너가 생성되었습니다")
}

func (s *imageService) edit(ctx context.Context, feature, encoded, prompt, ratio, message string) (*types.ImageResponse, error) {
	data, err := DecodeImage(encoded)
	if err != nil {
		metrics.FeatureUsage.WithLabelValues(feature, metrics.Result(err)).Inc()
		return nil, err
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}

	logger.Info("处理图片编辑请求",
		zap.String("feature", feature),
		zap.Int("bytes", len(data)),
		zap.String("mime", mime),
	)

	return s.generate(ctx, feature, gemini.ImageRequest{
		Prompt:      prompt,
		Image:       data,
		MIMEType:    mime,
		AspectRatio: ratio,
	}, message)
}

func (s *imageService) generate(ctx context.Context, feature string, req gemini.ImageRequest, message string) (*types.ImageResponse, error) {
	start := time.Now()
	img, err := s.generator.GenerateImage(ctx, req)
	metrics.GenerationLatency.WithLabelValues("image", "gemini").Observe(time.Since(start).Seconds())
	metrics.FeatureUsage.WithLabelValues(feature, metrics.Result(err)).Inc()
	if err != nil {
		logger.Error("生成图像失败", zap.String("feature", feature), zap.Error(err))
		return nil, errors.NewImageGenerationError(err)
	}

	return &types.ImageResponse{
		Success:        true,
		Message:        message,
		ProcessedImage: base64.StdEncoding.EncodeToString(img.Data),
		MIMEType:       img.MIMEType,
	}, nil
}

// DecodeImage 解码 base64 图片，支持 data URL 前缀
func DecodeImage(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if i := strings.Index(encoded, ","); i >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[i+1:]
	}
	if encoded == "" {
		return nil, errors.NewEmptyImageError()
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		// 兼容无填充写法
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(encoded, "="))
		if err != nil {
			return nil, errors.NewInvalidInputError("이미지 base64 디코딩에 실패했습니다", err)
		}
	}
	if len(data) == 0 {
		return nil, errors.NewEmptyImageError()
	}
	return data, nil
}
