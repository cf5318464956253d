package invoke

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
	"github.com/dmorgan81/promobot/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
)

var transientCodes = []string{
	"ThrottlingException",
	"ServiceUnavailableException",
	"ModelTimeoutException",
	"ModelNotReadyException",
}

type InvokeModelAPI interface {
	InvokeModel(context.Context, *bedrockruntime.InvokeModelInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type Bedrock struct {
	Client InvokeModelAPI
}

func NewBedrock(i *do.Injector) (*Bedrock, error) {
	return &Bedrock{Client: do.MustInvoke[*bedrockruntime.Client](i)}, nil
}

func (b *Bedrock) Invoke(ctx context.Context, modelID string, body []byte) ([]byte, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("bedrock").With("model", modelID)
	log.Debug("invoking model", "bytes", len(body))

	out, err := b.Client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, classify(err)
	}
	return out.Body, nil
}

func classify(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return &Error{
			Code:      apiErr.ErrorCode(),
			Message:   apiErr.ErrorMessage(),
			Transient: lo.Contains(transientCodes, apiErr.ErrorCode()),
			Err:       err,
		}
	}
	return &Error{Code: "TransportError", Message: err.Error(), Err: err}
}
