package image

import (
	"encoding/base64"
	"encoding/json"
)

type textPrompt struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

type wireRequest struct {
	TextPrompts   []textPrompt   `json:"text_prompts"`
	CfgScale      float64        `json:"cfg_scale"`
	Sampler       Sampler        `json:"sampler"`
	Samples       int            `json:"samples"`
	Seed          uint32         `json:"seed"`
	Steps         int            `json:"steps"`
	StylePreset   StylePreset    `json:"style_preset,omitempty"`
	Height        int            `json:"height"`
	Width         int            `json:"width"`
	InitImageMode string         `json:"init_image_mode,omitempty"`
	InitImage     string         `json:"init_image,omitempty"`
	ImageStrength *float64       `json:"image_strength,omitempty"`
	Extras        map[string]any `json:"extras,omitempty"`
}

// EncodeRequest renders the JSON body for a request. It applies defaults and
// validates first. Equal requests always encode to equal bytes.
func EncodeRequest(r Request) ([]byte, error) {
	r = r.WithDefaults()
	if err := r.Validate(); err != nil {
		return nil, err
	}

	body := wireRequest{
		TextPrompts: []textPrompt{{Text: r.Prompt, Weight: 1}},
		CfgScale:    r.CfgScale,
		Sampler:     r.Sampler,
		Samples:     r.Samples,
		Seed:        r.Seed,
		Steps:       r.Steps,
		StylePreset: r.Style,
		Height:      r.Height,
		Width:       r.Width,
		Extras:      r.Extras,
	}
	if r.NegativePrompt != "" {
		body.TextPrompts = append(body.TextPrompts, textPrompt{Text: r.NegativePrompt, Weight: -1})
	}
	if r.Mode == ImageToImage {
		strength := r.Strength
		body.InitImageMode = "IMAGE_STRENGTH"
		body.InitImage = base64.StdEncoding.EncodeToString(r.InitImage)
		body.ImageStrength = &strength
	}
	return json.Marshal(body)
}

type FinishReason string

const (
	FinishSuccess         FinishReason = "SUCCESS"
	FinishError           FinishReason = "ERROR"
	FinishContentFiltered FinishReason = "CONTENT_FILTERED"
)

type wireArtifact struct {
	Seed         uint32       `json:"seed"`
	Base64       string       `json:"base64"`
	FinishReason FinishReason `json:"finishReason"`
}

type wireResponse struct {
	Result    string         `json:"result"`
	Artifacts []wireArtifact `json:"artifacts"`
	Message   string         `json:"message"`
}
