package image

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type Mode string

const (
	TextToImage  Mode = "text-to-image"
	ImageToImage Mode = "image-to-image"
)

// StylePreset is one of the named visual styles the SDXL endpoint accepts.
type StylePreset string

const (
	Style3DModel          StylePreset = "3d-model"
	StyleAnalogFilm       StylePreset = "analog-film"
	StyleAnime            StylePreset = "anime"
	StyleCinematic        StylePreset = "cinematic"
	StyleComicBook        StylePreset = "comic-book"
	StyleDigitalArt       StylePreset = "digital-art"
	StyleEnhance          StylePreset = "enhance"
	StyleFantasyArt       StylePreset = "fantasy-art"
	StyleIsometric        StylePreset = "isometric"
	StyleLineArt          StylePreset = "line-art"
	StyleLowPoly          StylePreset = "low-poly"
	StyleModelingCompound StylePreset = "modeling-compound"
	StyleNeonPunk         StylePreset = "neon-punk"
	StyleOrigami          StylePreset = "origami"
	StylePhotographic     StylePreset = "photographic"
	StylePixelArt         StylePreset = "pixel-art"
	StyleTileTexture      StylePreset = "tile-texture"
)

var StylePresets = []StylePreset{
	Style3DModel, StyleAnalogFilm, StyleAnime, StyleCinematic, StyleComicBook,
	StyleDigitalArt, StyleEnhance, StyleFantasyArt, StyleIsometric, StyleLineArt,
	StyleLowPoly, StyleModelingCompound, StyleNeonPunk, StyleOrigami,
	StylePhotographic, StylePixelArt, StyleTileTexture,
}

func (s StylePreset) Valid() bool {
	return lo.Contains(StylePresets, s)
}

type Sampler string

const (
	SamplerDDIM             Sampler = "DDIM"
	SamplerDDPM             Sampler = "DDPM"
	SamplerDPMPP2M          Sampler = "K_DPMPP_2M"
	SamplerDPMPP2SAncestral Sampler = "K_DPMPP_2S_ANCESTRAL"
	SamplerDPM2             Sampler = "K_DPM_2"
	SamplerDPM2Ancestral    Sampler = "K_DPM_2_ANCESTRAL"
	SamplerEuler            Sampler = "K_EULER"
	SamplerEulerAncestral   Sampler = "K_EULER_ANCESTRAL"
	SamplerHeun             Sampler = "K_HEUN"
	SamplerLMS              Sampler = "K_LMS"
)

var Samplers = []Sampler{
	SamplerDDIM, SamplerDDPM, SamplerDPMPP2M, SamplerDPMPP2SAncestral, SamplerDPM2,
	SamplerDPM2Ancestral, SamplerEuler, SamplerEulerAncestral, SamplerHeun, SamplerLMS,
}

func (s Sampler) Valid() bool {
	return lo.Contains(Samplers, s)
}

const (
	DefaultSampler  = SamplerDPMPP2M
	DefaultSteps    = 30
	DefaultSamples  = 1
	DefaultSize     = 1024
	DefaultCfgScale = 7.0
)

// Request is a single generation request. The dispatcher never mutates the
// caller's value; defaults are applied to a copy.
type Request struct {
	Prompt         string
	NegativePrompt string
	Mode           Mode
	InitImage      []byte
	Width          int
	Height         int
	Strength       float64
	CfgScale       float64
	Sampler        Sampler
	Samples        int
	Seed           uint32
	Steps          int
	Style          StylePreset
	Extras         map[string]any
}

// WithDefaults fills the zero-valued optional fields.
func (r Request) WithDefaults() Request {
	r.Mode = lo.Ternary(r.Mode != "", r.Mode, TextToImage)
	r.Sampler = lo.Ternary(r.Sampler != "", r.Sampler, DefaultSampler)
	r.Steps = lo.Ternary(r.Steps != 0, r.Steps, DefaultSteps)
	r.Samples = lo.Ternary(r.Samples != 0, r.Samples, DefaultSamples)
	r.Width = lo.Ternary(r.Width != 0, r.Width, DefaultSize)
	r.Height = lo.Ternary(r.Height != 0, r.Height, DefaultSize)
	r.CfgScale = lo.Ternary(r.CfgScale != 0, r.CfgScale, DefaultCfgScale)
	return r
}

var ErrInvalidRequest = errors.New("invalid generation request")

// Validate checks a defaulted request against the endpoint's limits.
func (r Request) Validate() error {
	var problems []string
	if strings.TrimSpace(r.Prompt) == "" {
		problems = append(problems, "prompt is required")
	}
	if r.Style != "" && !r.Style.Valid() {
		problems = append(problems, fmt.Sprintf("unknown style preset %q", r.Style))
	}
	if !r.Sampler.Valid() {
		problems = append(problems, fmt.Sprintf("unknown sampler %q", r.Sampler))
	}
	if r.Mode != TextToImage && r.Mode != ImageToImage {
		problems = append(problems, fmt.Sprintf("unknown mode %q", r.Mode))
	}
	if r.Mode == ImageToImage && len(r.InitImage) == 0 {
		problems = append(problems, "image-to-image requires an init image")
	}
	if r.Width <= 0 || r.Width%64 != 0 || r.Height <= 0 || r.Height%64 != 0 {
		problems = append(problems, fmt.Sprintf("dimensions %dx%d must be positive multiples of 64", r.Width, r.Height))
	}
	if r.Strength < 0 || r.Strength > 1 {
		problems = append(problems, fmt.Sprintf("strength %v outside [0,1]", r.Strength))
	}
	if r.CfgScale < 0 || r.CfgScale > 35 {
		problems = append(problems, fmt.Sprintf("cfg scale %v outside [0,35]", r.CfgScale))
	}
	if r.Steps < 10 || r.Steps > 150 {
		problems = append(problems, fmt.Sprintf("steps %d outside [10,150]", r.Steps))
	}
	if r.Samples < 1 || r.Samples > 10 {
		problems = append(problems, fmt.Sprintf("samples %d outside [1,10]", r.Samples))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(problems, "; "))
	}
	return nil
}
