package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/skinlens/lesion-dashboard/internal/apispec"
	"github.com/skinlens/lesion-dashboard/internal/core/domain"
	"github.com/skinlens/lesion-dashboard/internal/infrastructure/resilience"
)

const (
	DefaultTimeout   = 60 * time.Second
	DefaultFileField = "file"

	classifyOperation = "inference.classify"
)

type Options struct {
	Timeout            time.Duration
	FileField          string
	HTTPClient         *http.Client
	ResilienceExecutor *resilience.Executor
}

// Client posts images to the remote classification endpoint.
type Client struct {
	endpoint   string
	fileField  string
	httpClient *http.Client
	executor   *resilience.Executor
	schema     *openapi3.Schema
}

func New(endpoint string) (*Client, error) {
	return NewWithOptions(endpoint, Options{})
}

func NewWithOptions(endpoint string, options Options) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse inference url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("inference url must be http or https, got %q", endpoint)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("inference url has no host: %q", endpoint)
	}

	timeout := options.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	fileField := strings.TrimSpace(options.FileField)
	if fileField == "" {
		fileField = DefaultFileField
	}
	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	doc, err := apispec.Load(context.Background())
	if err != nil {
		return nil, err
	}
	schema, err := apispec.Schema(doc, apispec.InferenceResponseSchema)
	if err != nil {
		return nil, err
	}

	return &Client{
		endpoint:   endpoint,
		fileField:  fileField,
		httpClient: httpClient,
		executor:   options.ResilienceExecutor,
		schema:     schema,
	}, nil
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// Classify submits one image and returns the parsed service response.
// Every failure carries one of the domain error kinds.
func (c *Client) Classify(ctx context.Context, filename string, image []byte) (domain.PredictionResult, error) {
	if len(image) == 0 {
		return domain.PredictionResult{}, domain.WrapError(domain.ErrInvalidInput, "classify", errors.New("image is empty"))
	}

	var result domain.PredictionResult
	call := func(callCtx context.Context) error {
		var err error
		result, err = c.postImage(callCtx, filename, image)
		return err
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, classifyOperation, call, classifyInferenceError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		// The caller went away; the upstream call did not fail on its own.
		if errors.Is(ctx.Err(), context.Canceled) {
			return domain.PredictionResult{}, domain.WrapError(domain.ErrCanceled, "classify", ctx.Err())
		}
		return domain.PredictionResult{}, ensureKind(err)
	}
	return result, nil
}

// CircuitState reports the breaker state of the classify operation.
func (c *Client) CircuitState() string {
	if c.executor == nil {
		return "disabled"
	}
	return c.executor.State(classifyOperation).String()
}
