package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// TextDetector is the part of the Rekognition client this package uses.
type TextDetector interface {
	DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
}

// Rekognition is the secondary OCR backend, a general-purpose scene text
// reader hosted by AWS. It ignores page segmentation modes and applies the
// whitelist on its output.
//
// The AWS client is safe for concurrent use, so no locking is needed.
type Rekognition struct {
	client TextDetector
	region string
}

// NewRekognition wraps an existing client.
func NewRekognition(client TextDetector) *Rekognition {
	return &Rekognition{client: client}
}

// NewRekognitionFromRegion loads the default AWS configuration (environment,
// shared config files, instance role) for region and builds a client.
func NewRekognitionFromRegion(ctx context.Context, region string) (*Rekognition, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	r := NewRekognition(rekognition.NewFromConfig(cfg))
	r.region = region
	return r, nil
}

func (r *Rekognition) Name() string    { return "rekognition" }
func (r *Rekognition) Available() bool { return r.client != nil }

// Recognize sends img to DetectText and joins the detected LINE texts in the
// order returned.
func (r *Rekognition) Recognize(ctx context.Context, img image.Image, opts Options) (string, error) {
	if r.client == nil {
		return "", fmt.Errorf("rekognition client not configured: %w", ErrUnavailable)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	out, err := r.client.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: buf.Bytes()},
	})
	if err != nil {
		return "", fmt.Errorf("rekognition DetectText: %w", err)
	}

	var sb strings.Builder
	for _, d := range out.TextDetections {
		if d.Type != types.TextTypesLine || d.DetectedText == nil {
			continue
		}
		sb.WriteString(*d.DetectedText)
	}
	return applyWhitelist(sb.String(), opts.Whitelist), nil
}

func (r *Rekognition) Info() Info {
	info := Info{Name: r.Name(), Available: r.Available(), Backend: "aws-sdk-go-v2"}
	if r.region != "" {
		info.Backend += " (" + r.region + ")"
	}
	if !info.Available {
		info.Error = "disabled (set PLATE_REKOGNITION_ENABLED=true)"
	}
	return info
}

// applyWhitelist drops characters outside whitelist after uppercasing.
// Whitespace is kept so callers see the line structure.
func applyWhitelist(text, whitelist string) string {
	if whitelist == "" {
		return text
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ' || r == '\n':
			return r
		case strings.ContainsRune(whitelist, r):
			return r
		}
		return -1
	}, strings.ToUpper(text))
}
