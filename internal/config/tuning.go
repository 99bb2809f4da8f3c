package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PreprocessTuning configures the representation set.
type PreprocessTuning struct {
	BilateralDiameter   int     `yaml:"bilateral_diameter"`
	BilateralSigmaColor float64 `yaml:"bilateral_sigma_color"`
	BilateralSigmaSpace float64 `yaml:"bilateral_sigma_space"`
	CLAHEClip           float64 `yaml:"clahe_clip"`
	CLAHETiles          int     `yaml:"clahe_tiles"`
	AdaptiveBlock       int     `yaml:"adaptive_block"`
	AdaptiveC           float64 `yaml:"adaptive_c"`
	CannyLow            float64 `yaml:"canny_low"`
	CannyHigh           float64 `yaml:"canny_high"`
	CloseKernelW        int     `yaml:"close_kernel_w"`
	CloseKernelH        int     `yaml:"close_kernel_h"`
	CloseIterations     int     `yaml:"close_iterations"`
	OpenKernel          int     `yaml:"open_kernel"`
}

// DetectionTuning is the geometric constraint table, the score weights and
// the consolidation rule.
type DetectionTuning struct {
	AreaMin   float64 `yaml:"area_min"`
	AreaMax   float64 `yaml:"area_max"`
	WidthMin  int     `yaml:"width_min"`
	WidthMax  int     `yaml:"width_max"`
	HeightMin int     `yaml:"height_min"`
	HeightMax int     `yaml:"height_max"`
	AspectMin float64 `yaml:"aspect_min"`
	AspectMax float64 `yaml:"aspect_max"`

	ScoreBase        float64 `yaml:"score_base"`
	ScoreAspectBonus float64 `yaml:"score_aspect_bonus"`
	ScoreAspectMin   float64 `yaml:"score_aspect_min"`
	ScoreAspectMax   float64 `yaml:"score_aspect_max"`
	ScoreAreaBonus   float64 `yaml:"score_area_bonus"`
	ScoreAreaMin     float64 `yaml:"score_area_min"`
	ScoreAreaMax     float64 `yaml:"score_area_max"`
	EdgeScore        float64 `yaml:"edge_score"`

	ContourDilate        int `yaml:"contour_dilate"`
	EdgeDilate           int `yaml:"edge_dilate"`
	EdgeDilateIterations int `yaml:"edge_dilate_iterations"`

	// DedupIoU is the overlap above which two candidates are duplicates.
	DedupIoU float64 `yaml:"dedup_iou"`
	// PreferSmaller keeps the smaller-area box of a duplicate pair. When
	// false the first seen box is kept.
	PreferSmaller bool    `yaml:"prefer_smaller"`
	FallbackScore float64 `yaml:"fallback_score"`
}

// PreliminaryTuning configures the frame filter and the quick OCR pass.
type PreliminaryTuning struct {
	MaxWidthPct              float64 `yaml:"max_width_pct"`
	MaxHeightPct             float64 `yaml:"max_height_pct"`
	MaxAreaPct               float64 `yaml:"max_area_pct"`
	MaxCandidates            int     `yaml:"max_candidates"`
	Margin                   int     `yaml:"margin"`
	QuickUpscale             int     `yaml:"quick_upscale"`
	MinTextScore             float64 `yaml:"min_text_score"`
	MinRawLength             int     `yaml:"min_raw_length"`
	MaxRecognitionCandidates int     `yaml:"max_recognition_candidates"`
}

// IsolationTuning configures the letter isolator. Ratios are relative to the
// upscaled mask height unless noted.
type IsolationTuning struct {
	Upscale           int     `yaml:"upscale"`
	CLAHEClip         float64 `yaml:"clahe_clip"`
	DenoiseRadius     float64 `yaml:"denoise_radius"`
	CenterBand        int     `yaml:"center_band"`
	CloseIterations   int     `yaml:"close_iterations"`
	BorderMargin      float64 `yaml:"border_margin"`
	HeightMin         float64 `yaml:"height_min"`
	HeightMax         float64 `yaml:"height_max"`
	WidthMin          float64 `yaml:"width_min"`
	WidthMax          float64 `yaml:"width_max"`
	AreaMin           int     `yaml:"area_min"`
	AreaMaxRatio      float64 `yaml:"area_max_ratio"` // of mask area
	AspectMin         float64 `yaml:"aspect_min"`
	AspectMax         float64 `yaml:"aspect_max"`
	CenterOffsetMax   float64 `yaml:"center_offset_max"`
	MedianFilterAbove int     `yaml:"median_filter_above"`
	MedianTolerance   float64 `yaml:"median_tolerance"`
	MinMaskSum        int     `yaml:"min_mask_sum"` // sum of 0/255 pixel values
	Padding           int     `yaml:"padding"`
}

// RecognitionTuning configures the full OCR pass.
type RecognitionTuning struct {
	Upscale    int     `yaml:"upscale"`
	CLAHEClipA float64 `yaml:"clahe_clip_a"`
	CLAHEClipB float64 `yaml:"clahe_clip_b"`
	MinLength  int     `yaml:"min_length"`
}

// ValidationTuning configures final plate validation.
type ValidationTuning struct {
	PatternWeight   float64 `yaml:"pattern_weight"`
	DetectionWeight float64 `yaml:"detection_weight"`
	AcceptThreshold float64 `yaml:"accept_threshold"`
}

// Tuning is the complete heuristic configuration of one pipeline.
type Tuning struct {
	Preprocess  PreprocessTuning  `yaml:"preprocess"`
	Detection   DetectionTuning   `yaml:"detection"`
	Preliminary PreliminaryTuning `yaml:"preliminary"`
	Isolation   IsolationTuning   `yaml:"isolation"`
	Recognition RecognitionTuning `yaml:"recognition"`
	Validation  ValidationTuning  `yaml:"validation"`
}

// DefaultTuning returns the constants the pipeline was tuned with.
func DefaultTuning() Tuning {
	return Tuning{
		Preprocess: PreprocessTuning{
			BilateralDiameter:   11,
			BilateralSigmaColor: 75,
			BilateralSigmaSpace: 75,
			CLAHEClip:           3.0,
			CLAHETiles:          8,
			AdaptiveBlock:       15,
			AdaptiveC:           3,
			CannyLow:            20,
			CannyHigh:           120,
			CloseKernelW:        5,
			CloseKernelH:        2,
			CloseIterations:     2,
			OpenKernel:          3,
		},
		Detection: DetectionTuning{
			AreaMin:   800,
			AreaMax:   80000,
			WidthMin:  40,
			WidthMax:  600,
			HeightMin: 10,
			HeightMax: 200,
			AspectMin: 1.8,
			AspectMax: 7.0,

			ScoreBase:        0.5,
			ScoreAspectBonus: 0.3,
			ScoreAspectMin:   2.0,
			ScoreAspectMax:   6.0,
			ScoreAreaBonus:   0.2,
			ScoreAreaMin:     1000,
			ScoreAreaMax:     60000,
			EdgeScore:        0.6,

			ContourDilate:        3,
			EdgeDilate:           5,
			EdgeDilateIterations: 3,

			DedupIoU:      0.3,
			PreferSmaller: true,
			FallbackScore: 0.1,
		},
		Preliminary: PreliminaryTuning{
			MaxWidthPct:              80,
			MaxHeightPct:             60,
			MaxAreaPct:               20,
			MaxCandidates:            10,
			Margin:                   5,
			QuickUpscale:             2,
			MinTextScore:             0.2,
			MinRawLength:             5,
			MaxRecognitionCandidates: 5,
		},
		Isolation: IsolationTuning{
			Upscale:           5,
			CLAHEClip:         4.0,
			DenoiseRadius:     1,
			CenterBand:        20,
			CloseIterations:   2,
			BorderMargin:      0.05,
			HeightMin:         0.35,
			HeightMax:         0.75,
			WidthMin:          0.15,
			WidthMax:          1.2,
			AreaMin:           50,
			AreaMaxRatio:      0.12,
			AspectMin:         0.15,
			AspectMax:         1.5,
			CenterOffsetMax:   0.3,
			MedianFilterAbove: 10,
			MedianTolerance:   0.3,
			MinMaskSum:        100,
			Padding:           20,
		},
		Recognition: RecognitionTuning{
			Upscale:    3,
			CLAHEClipA: 2.0,
			CLAHEClipB: 3.0,
			MinLength:  5,
		},
		Validation: ValidationTuning{
			PatternWeight:   0.6,
			DetectionWeight: 0.4,
			AcceptThreshold: 0.5,
		},
	}
}

// LoadTuning reads a YAML file on top of DefaultTuning. Keys missing from the
// file keep their default values.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("failed to read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("failed to parse tuning file %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("invalid tuning file %s: %w", path, err)
	}
	return t, nil
}

// Validate reports the first inconsistent range in the table.
func (t Tuning) Validate() error {
	d := t.Detection
	switch {
	case d.AreaMin > d.AreaMax:
		return fmt.Errorf("detection.area_min %.0f exceeds area_max %.0f", d.AreaMin, d.AreaMax)
	case d.WidthMin > d.WidthMax:
		return fmt.Errorf("detection.width_min %d exceeds width_max %d", d.WidthMin, d.WidthMax)
	case d.HeightMin > d.HeightMax:
		return fmt.Errorf("detection.height_min %d exceeds height_max %d", d.HeightMin, d.HeightMax)
	case d.AspectMin > d.AspectMax:
		return fmt.Errorf("detection.aspect_min %.2f exceeds aspect_max %.2f", d.AspectMin, d.AspectMax)
	case d.DedupIoU < 0 || d.DedupIoU > 1:
		return fmt.Errorf("detection.dedup_iou %.2f outside [0,1]", d.DedupIoU)
	case t.Preliminary.MaxCandidates < 1:
		return fmt.Errorf("preliminary.max_candidates must be positive")
	case t.Preliminary.MaxRecognitionCandidates < 1:
		return fmt.Errorf("preliminary.max_recognition_candidates must be positive")
	case t.Preliminary.Margin < 0:
		return fmt.Errorf("preliminary.margin %d is negative", t.Preliminary.Margin)
	case t.Isolation.Upscale < 1 || t.Recognition.Upscale < 1:
		return fmt.Errorf("upscale factors must be at least 1")
	}
	return nil
}
