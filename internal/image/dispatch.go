package image

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/dmorgan81/promobot/internal/invoke"
	"github.com/dmorgan81/promobot/internal/log"
	"github.com/dmorgan81/promobot/internal/store"
	"github.com/samber/do"
	"github.com/samber/lo"
)

// Dispatcher submits generation requests to a single image model.
type Dispatcher struct {
	Invoker invoke.Invoker
	ModelID string
	Retry   RetryPolicy
}

func NewDispatcher(i *do.Injector) (*Dispatcher, error) {
	return &Dispatcher{
		Invoker: do.MustInvokeNamed[invoke.Invoker](i, "image_invoker"),
		ModelID: do.MustInvokeNamed[string](i, "image_model"),
		Retry:   do.MustInvoke[RetryPolicy](i),
	}, nil
}

// Submit sends req and returns the decoded artifacts. The error, when
// non-nil, is a *ServiceError, *ContentFilteredError or *ThrottledError.
func (d *Dispatcher) Submit(ctx context.Context, req Request) ([]Artifact, error) {
	req = req.WithDefaults()
	logger := log.FromContextOrDiscard(ctx).WithGroup("dispatcher").With(
		"model", d.ModelID,
		"seed", req.Seed,
		"sampler", req.Sampler,
		"style", req.Style,
	)
	logger.Info("submitting generation request")

	body, err := EncodeRequest(req)
	if err != nil {
		return nil, &ServiceError{Code: "ValidationError", Message: err.Error(), Err: err}
	}

	var artifacts []Artifact
	err = d.Retry.Do(ctx, func(ctx context.Context) error {
		out, err := d.Invoker.Invoke(ctx, d.ModelID, body)
		if err != nil {
			return fromInvokeError(err)
		}
		artifacts, err = decodeResponse(out)
		return err
	})
	if err != nil {
		logger.Error("generation failed", "kind", Result{Err: err}.Kind().String(), log.Err(err))
		return nil, err
	}

	logger.Info("received artifacts", "count", len(artifacts))
	return artifacts, nil
}

// Persist writes the artifact bytes to path, creating parent directories and
// replacing any existing file.
func (d *Dispatcher) Persist(ctx context.Context, artifact Artifact, path string) error {
	return store.WriteFile(ctx, path, artifact.Data)
}

func fromInvokeError(err error) error {
	var ie *invoke.Error
	if errors.As(err, &ie) {
		if ie.Transient {
			return &ThrottledError{Code: ie.Code, Message: ie.Message, Err: err}
		}
		return &ServiceError{Code: ie.Code, Message: ie.Message, Err: err}
	}
	return &ServiceError{Code: "TransportError", Message: err.Error(), Err: err}
}

func decodeResponse(data []byte) ([]Artifact, error) {
	var resp wireResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &ServiceError{Code: "DecodeError", Message: err.Error(), Err: err}
	}
	if len(resp.Artifacts) == 0 {
		return nil, &ServiceError{
			Code:    "EmptyResponse",
			Message: lo.Ternary(resp.Message != "", resp.Message, "response contained no artifacts"),
		}
	}

	artifacts := make([]Artifact, 0, len(resp.Artifacts))
	for _, a := range resp.Artifacts {
		switch a.FinishReason {
		case FinishError, FinishContentFiltered:
			return nil, &ContentFilteredError{Reason: a.FinishReason, Seed: a.Seed}
		case FinishSuccess, "":
		default:
			return nil, &ServiceError{Code: "UnknownFinishReason", Message: string(a.FinishReason)}
		}

		img, err := base64.StdEncoding.DecodeString(a.Base64)
		if err != nil {
			return nil, &ServiceError{Code: "DecodeError", Message: err.Error(), Err: err}
		}
		if len(img) == 0 {
			return nil, &ServiceError{Code: "EmptyArtifact", Message: "artifact contained no image data"}
		}
		artifacts = append(artifacts, Artifact{Data: img, Seed: a.Seed, FinishReason: FinishSuccess})
	}
	return artifacts, nil
}
