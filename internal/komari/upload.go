package komari

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/metrics"
	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/model"
)

const (
	defaultUploadTimeout = 30 * time.Second
	maxErrorBody         = 512
)

var ErrUpload = errors.New("inventory upload error")

// Uploader posts inventory records to the basic info API.
//
// An upload is attempted once, a failed upload waits for the next inventory interval.
type Uploader struct {
	endpoint *Endpoint
	client   *retryablehttp.Client
	logger   *logrus.Entry
}

// NewUploader returns an Uploader, insecure disables TLS certificate verification.
func NewUploader(endpoint *Endpoint, timeout time.Duration, insecure bool, logger *logrus.Logger) *Uploader {
	if timeout <= 0 {
		timeout = defaultUploadTimeout
	}

	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 0
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.HTTPClient.Timeout = timeout

	if transport, ok := client.HTTPClient.Transport.(*http.Transport); ok {
		// nolint:gosec // verification is disabled only when configured to.
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: insecure}
		client.HTTPClient.Transport = otelhttp.NewTransport(transport)
	}

	return &Uploader{
		endpoint: endpoint,
		client:   client,
		logger:   logger.WithField("component", "uploader"),
	}
}

// Upload posts the record, any non 2xx response is returned as ErrUpload.
func (u *Uploader) Upload(ctx context.Context, rec *model.InventoryRecord) error {
	err := u.upload(ctx, rec)
	if err != nil {
		metrics.InventoryUploadCounter.WithLabelValues("failed").Inc()
		u.logger.WithError(err).WithField("endpoint", u.endpoint.String()).Warn("inventory upload failed")

		return err
	}

	metrics.InventoryUploadCounter.WithLabelValues("succeeded").Inc()
	u.logger.WithField("endpoint", u.endpoint.String()).Info("inventory uploaded")

	return nil
}

func (u *Uploader) upload(ctx context.Context, rec *model.InventoryRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(ErrUpload, err.Error())
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, u.endpoint.BasicInfoURL(), bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(ErrUpload, err.Error())
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return errors.Wrap(ErrUpload, err.Error())
	}

	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return errors.Wrapf(ErrUpload, "status: %d, body: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}
