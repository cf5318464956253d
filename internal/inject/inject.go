package inject

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/dmorgan81/promobot/internal/config"
	"github.com/dmorgan81/promobot/internal/feed"
	"github.com/dmorgan81/promobot/internal/handler"
	"github.com/dmorgan81/promobot/internal/image"
	"github.com/dmorgan81/promobot/internal/invoke"
	"github.com/dmorgan81/promobot/internal/log"
	"github.com/dmorgan81/promobot/internal/page"
	"github.com/dmorgan81/promobot/internal/param"
	"github.com/dmorgan81/promobot/internal/prompt"
	"github.com/dmorgan81/promobot/internal/store"
	"github.com/google/generative-ai-go/genai"
	"github.com/samber/do"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"
)

func Setup(ctx context.Context, cfg config.Config) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return awsconfig.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*s3.Client](injector, func(i *do.Injector) (*s3.Client, error) {
		return s3.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*cloudfront.Client](injector, func(i *do.Injector) (*cloudfront.Client, error) {
		return cloudfront.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*bedrockruntime.Client](injector, func(i *do.Injector) (*bedrockruntime.Client, error) {
		return bedrockruntime.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.ProvideValue[*http.Client](injector, &http.Client{Timeout: 2 * time.Minute})

	do.ProvideValue[config.Config](injector, cfg)
	do.ProvideNamedValue[string](injector, "image_model", cfg.ImageModel)
	do.ProvideNamedValue[string](injector, "output_dir", cfg.OutputDir)
	do.ProvideNamedValue[string](injector, "bucket", cfg.Bucket)
	do.ProvideNamedValue[string](injector, "prefix", cfg.Prefix)
	do.ProvideNamedValue[string](injector, "distribution", cfg.Distribution)
	do.ProvideNamedValue[string](injector, "site_url", cfg.SiteURL)
	do.ProvideNamedValue[int](injector, "workers", cfg.Workers)
	do.ProvideValue[handler.Defaults](injector, handler.Defaults{
		Style:          cfg.DefaultStyle,
		CfgScale:       cfg.DefaultCfg,
		Steps:          cfg.DefaultSteps,
		NegativePrompt: cfg.NegativePrompt,
	})

	do.Provide[param.Fetcher](injector, param.NewParameterStoreFetcher)
	do.ProvideNamed[[]string](injector, "briefs", func(i *do.Injector) ([]string, error) {
		return param.ResolveAll(ctx, do.MustInvoke[param.Fetcher](i), cfg.Briefs, cfg.BriefsParam)
	})

	do.ProvideNamed[invoke.Invoker](injector, "bedrock", func(i *do.Injector) (invoke.Invoker, error) {
		return invoke.NewBedrock(i)
	})
	do.ProvideNamed[invoke.Invoker](injector, "image_invoker", func(i *do.Injector) (invoke.Invoker, error) {
		if cfg.ImageEndpoint == "" {
			return do.MustInvokeNamed[invoke.Invoker](i, "bedrock"), nil
		}
		key, err := param.Resolve(ctx, do.MustInvoke[param.Fetcher](i), cfg.ImageKey, cfg.ImageKeyParam)
		if err != nil {
			return nil, err
		}
		return &invoke.HTTP{
			Client:    do.MustInvoke[*http.Client](i),
			Endpoint:  cfg.ImageEndpoint,
			Key:       key,
			KeyHeader: cfg.ImageKeyHdr,
		}, nil
	})
	do.Provide[image.RetryPolicy](injector, func(i *do.Injector) (image.RetryPolicy, error) {
		return RetryPolicy(cfg), nil
	})
	do.Provide[*image.Dispatcher](injector, image.NewDispatcher)

	do.Provide[prompt.Conceptualizer](injector, newConceptualizer(ctx, cfg))
	do.Provide[*prompt.Builder](injector, func(i *do.Injector) (*prompt.Builder, error) {
		return prompt.NewBuilder(cfg.PromptTemplate)
	})
	do.Provide[*prompt.Randomizer](injector, func(i *do.Injector) (*prompt.Randomizer, error) {
		briefs := do.MustInvokeNamed[[]string](i, "briefs")
		return prompt.NewRandomizer(briefs, rand.NewSource(time.Now().UTC().UnixNano())), nil
	})

	if cfg.UseS3() {
		do.Provide[store.Uploader](injector, func(i *do.Injector) (store.Uploader, error) {
			return store.NewS3Uploader(i)
		})
		do.Provide[*feed.Generator](injector, feed.NewS3Generator)
	} else {
		do.Provide[store.Uploader](injector, func(i *do.Injector) (store.Uploader, error) {
			return store.NewFileUploader(i)
		})
	}
	if cfg.Distribution != "" {
		do.Provide[store.Invalidator](injector, func(i *do.Injector) (store.Invalidator, error) {
			return store.NewCloudFrontInvalidator(i)
		})
	} else {
		do.ProvideValue[store.Invalidator](injector, store.NopInvalidator{})
	}
	do.ProvideValue[*page.Templator](injector, &page.Templator{})

	do.Provide[*handler.Handler](injector, handler.NewHandler)

	return injector
}

// RetryPolicy builds the dispatcher retry policy from configuration.
func RetryPolicy(cfg config.Config) image.RetryPolicy {
	policy := image.RetryPolicy{
		MaxAttempts: cfg.RetryMaxAttempts,
		Backoff:     image.FixedBackoff{Interval: cfg.RetryInterval},
	}
	if cfg.RetryBackoff == "exponential" {
		policy.Backoff = image.ExponentialBackoff{
			Base:   cfg.RetryInterval,
			Max:    cfg.RetryMaxInterval,
			Jitter: cfg.RetryJitter,
		}
	}
	return policy
}

func newConceptualizer(ctx context.Context, cfg config.Config) do.Provider[prompt.Conceptualizer] {
	return func(i *do.Injector) (prompt.Conceptualizer, error) {
		switch cfg.TextProvider {
		case "openai":
			key, err := param.Resolve(ctx, do.MustInvoke[param.Fetcher](i), cfg.OpenAIKey, cfg.OpenAIKeyParam)
			if err != nil {
				return nil, err
			}
			clientCfg := openai.DefaultConfig(key)
			clientCfg.HTTPClient = do.MustInvoke[*http.Client](i)
			return &prompt.OpenAIConceptualizer{
				Client:      openai.NewClientWithConfig(clientCfg),
				Model:       cfg.TextModel,
				Temperature: float32(cfg.TextTemperature),
			}, nil
		case "gemini":
			key, err := param.Resolve(ctx, do.MustInvoke[param.Fetcher](i), cfg.GeminiKey, cfg.GeminiKeyParam)
			if err != nil {
				return nil, err
			}
			client, err := genai.NewClient(ctx, option.WithAPIKey(key))
			if err != nil {
				return nil, err
			}
			model := client.GenerativeModel(cfg.TextModel)
			model.SetTemperature(float32(cfg.TextTemperature))
			return &prompt.GeminiConceptualizer{Model: model, Name: cfg.TextModel}, nil
		default:
			return &prompt.BedrockConceptualizer{
				Invoker:     do.MustInvokeNamed[invoke.Invoker](i, "bedrock"),
				ModelID:     cfg.TextModel,
				Temperature: cfg.TextTemperature,
			}, nil
		}
	}
}
