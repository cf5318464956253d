package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dmorgan81/promobot/internal/feed"
	"github.com/dmorgan81/promobot/internal/image"
	"github.com/dmorgan81/promobot/internal/log"
	"github.com/dmorgan81/promobot/internal/page"
	"github.com/dmorgan81/promobot/internal/prompt"
	"github.com/dmorgan81/promobot/internal/store"
	"github.com/hashicorp/go-multierror"
	"github.com/samber/do"
	"github.com/samber/lo"
)

type Input struct {
	Date           string  `json:"date,omitempty"`
	Product        string  `json:"product,omitempty"`
	Audience       string  `json:"audience,omitempty"`
	Count          int     `json:"count,omitempty"`
	Style          string  `json:"style,omitempty"`
	Sampler        string  `json:"sampler,omitempty"`
	Seed           uint32  `json:"seed,omitempty"`
	Steps          int     `json:"steps,omitempty"`
	CfgScale       float64 `json:"cfg_scale,omitempty"`
	Strength       float64 `json:"strength,omitempty"`
	Width          int     `json:"width,omitempty"`
	Height         int     `json:"height,omitempty"`
	NegativePrompt string  `json:"negative_prompt,omitempty"`
	InitImage      string  `json:"init_image,omitempty"`
}

func (i Input) toBrief() prompt.Brief {
	return prompt.Brief{Product: i.Product, Audience: i.Audience, Count: i.Count}
}

func (i Input) toRequest(text string, seed uint32, initImage []byte) image.Request {
	return image.Request{
		Prompt:         text,
		NegativePrompt: i.NegativePrompt,
		Mode:           lo.Ternary(len(initImage) > 0, image.ImageToImage, image.TextToImage),
		InitImage:      initImage,
		Width:          i.Width,
		Height:         i.Height,
		Strength:       i.Strength,
		CfgScale:       i.CfgScale,
		Sampler:        image.Sampler(i.Sampler),
		Seed:           seed,
		Steps:          i.Steps,
		Style:          image.StylePreset(i.Style),
	}
}

type Image struct {
	Name    string `json:"name"`
	Concept string `json:"concept"`
	Prompt  string `json:"prompt"`
	Seed    uint32 `json:"seed"`
}

type Failure struct {
	Concept string `json:"concept"`
	Kind    string `json:"kind"`
	Error   string `json:"error"`
}

type Output struct {
	Date     string    `json:"date"`
	Product  string    `json:"product"`
	Audience string    `json:"audience,omitempty"`
	Page     string    `json:"page"`
	Images   []Image   `json:"images"`
	Failures []Failure `json:"failures,omitempty"`
}

// Defaults fill generation parameters the event leaves empty.
type Defaults struct {
	Style          string
	CfgScale       float64
	Steps          int
	NegativePrompt string
}

func (d Defaults) apply(i Input) Input {
	i.Style = lo.Ternary(i.Style != "", i.Style, d.Style)
	i.CfgScale = lo.Ternary(i.CfgScale != 0, i.CfgScale, d.CfgScale)
	i.Steps = lo.Ternary(i.Steps != 0, i.Steps, d.Steps)
	i.NegativePrompt = lo.Ternary(i.NegativePrompt != "", i.NegativePrompt, d.NegativePrompt)
	return i
}

var ErrNothingGenerated = errors.New("no images generated")

type Handler struct {
	randomizer     *prompt.Randomizer
	conceptualizer prompt.Conceptualizer
	builder        *prompt.Builder
	dispatcher     *image.Dispatcher
	uploader       store.Uploader
	invalidator    store.Invalidator
	templator      *page.Templator
	feed           *feed.Generator
	defaults       Defaults
	prefix         string
	workers        int
	now            func() time.Time
}

func NewHandler(i *do.Injector) (*Handler, error) {
	h := &Handler{
		randomizer:     do.MustInvoke[*prompt.Randomizer](i),
		conceptualizer: do.MustInvoke[prompt.Conceptualizer](i),
		builder:        do.MustInvoke[*prompt.Builder](i),
		dispatcher:     do.MustInvoke[*image.Dispatcher](i),
		uploader:       do.MustInvoke[store.Uploader](i),
		invalidator:    do.MustInvoke[store.Invalidator](i),
		templator:      do.MustInvoke[*page.Templator](i),
		defaults:       do.MustInvoke[Defaults](i),
		prefix:         do.MustInvokeNamed[string](i, "prefix"),
		workers:        do.MustInvokeNamed[int](i, "workers"),
		now:            time.Now,
	}
	if gen, err := do.Invoke[*feed.Generator](i); err == nil {
		h.feed = gen
	}
	return h, nil
}

func (h *Handler) Handle(ctx context.Context, input Input) (Output, error) {
	logger := log.FromContextOrDiscard(ctx).WithGroup("Handler").With("input", input)
	logger.Info("handling lambda invocation")

	if input.Product == "" {
		brief, err := h.randomizer.Randomize(ctx)
		if err != nil {
			return Output{}, err
		}
		input.Product = brief.Product
		input.Audience = lo.Ternary(input.Audience != "", input.Audience, brief.Audience)
	}
	input = h.defaults.apply(input)

	now := h.now()
	if input.Date == "" {
		input.Date = now.UTC().Format("20060102")
	}

	var initImage []byte
	if input.InitImage != "" {
		var err error
		if initImage, err = base64.StdEncoding.DecodeString(input.InitImage); err != nil {
			return Output{}, fmt.Errorf("decoding init image: %w", err)
		}
	}

	concepts, err := h.conceptualizer.Concepts(ctx, input.toBrief())
	if err != nil {
		return Output{}, err
	}

	reqs := make([]image.Request, len(concepts))
	for i, c := range concepts {
		text, err := h.builder.Build(c)
		if err != nil {
			return Output{}, fmt.Errorf("building prompt for %q: %w", c.Concept, err)
		}
		// A fixed seed is the base; each concept gets its own so file names stay distinct.
		seed := lo.TernaryF(input.Seed != 0, func() uint32 { return input.Seed + uint32(i) }, h.randomizer.Seed)
		reqs[i] = input.toRequest(text, seed, initImage)
	}

	output := Output{Date: input.Date, Product: input.Product, Audience: input.Audience}
	var (
		errs  error
		items []page.Item
		paths []string
	)
	for i, result := range h.dispatcher.SubmitAll(ctx, reqs, h.workers) {
		concept := concepts[i]
		if !result.OK() {
			logger.Error("generation failed", "concept", concept.Concept, "kind", result.Kind().String(), log.Err(result.Err))
			errs = multierror.Append(errs, fmt.Errorf("concept %q: %w", concept.Concept, result.Err))
			output.Failures = append(output.Failures, Failure{
				Concept: concept.Concept,
				Kind:    result.Kind().String(),
				Error:   result.Err.Error(),
			})
			continue
		}

		for _, artifact := range result.Artifacts {
			req := result.Request.WithDefaults()
			req.Seed = lo.Ternary(artifact.Seed != 0, artifact.Seed, req.Seed)
			name := filepath.ToSlash(image.FileName(input.Date, now, req))

			err := h.uploader.Upload(ctx, store.UploadParams{
				Name:        name,
				Data:        artifact.Data,
				ContentType: http.DetectContentType(artifact.Data),
				Metadata: map[string]string{
					"date":    input.Date,
					"product": input.Product,
					"concept": concept.Concept,
					"prompt":  req.Prompt,
					"seed":    strconv.FormatUint(uint64(req.Seed), 10),
					"style":   string(req.Style),
					"sampler": string(req.Sampler),
				},
			})
			if err != nil {
				logger.Error("storing image failed", "name", name, log.Err(err))
				errs = multierror.Append(errs, fmt.Errorf("storing %s: %w", name, err))
				output.Failures = append(output.Failures, Failure{Concept: concept.Concept, Kind: "storage_error", Error: err.Error()})
				continue
			}

			output.Images = append(output.Images, Image{Name: name, Concept: concept.Concept, Prompt: req.Prompt, Seed: req.Seed})
			items = append(items, page.Item{
				Image:   filepath.Base(name),
				Concept: concept.Concept,
				Prompt:  req.Prompt,
				Seed:    req.Seed,
				Style:   string(req.Style),
				Sampler: string(req.Sampler),
			})
			paths = append(paths, "/"+h.prefix+name)
		}
	}

	if len(output.Images) == 0 {
		if errs == nil {
			return output, ErrNothingGenerated
		}
		return output, fmt.Errorf("%w: %w", ErrNothingGenerated, errs)
	}
	if errs != nil {
		logger.Warn("campaign finished with failures", "failures", len(output.Failures))
	}

	html, err := h.templator.Template(ctx, page.Params{
		Date:     input.Date,
		Product:  input.Product,
		Audience: input.Audience,
		Items:    items,
	})
	if err != nil {
		return output, err
	}
	output.Page = input.Date + "/index.html"
	if err := h.uploader.Upload(ctx, store.UploadParams{
		Name:        output.Page,
		Data:        html,
		ContentType: "text/html",
		Metadata:    map[string]string{"date": input.Date, "product": input.Product},
	}); err != nil {
		return output, err
	}
	paths = append(paths, "/"+h.prefix+output.Page)

	if h.feed != nil {
		rss, err := h.feed.Generate(ctx)
		if err != nil {
			return output, err
		}
		if err := h.uploader.Upload(ctx, store.UploadParams{
			Name:        "feed.xml",
			Data:        rss,
			ContentType: "application/rss+xml",
		}); err != nil {
			return output, err
		}
		paths = append(paths, "/"+h.prefix+"feed.xml")
	}

	if err := h.invalidator.Invalidate(ctx, paths); err != nil {
		return output, err
	}

	logger.Info("campaign complete", "images", len(output.Images), "failures", len(output.Failures))
	return output, nil
}
