package detection

import (
	"CircuitEye/internal/api/config"
	"CircuitEye/internal/model"
	"bytes"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrServiceUnavailable 检测服务不可达或返回非 200
	ErrServiceUnavailable = errors.New("detection service unavailable")
	// ErrMalformedResponse 响应缺少 batch_results
	ErrMalformedResponse = errors.New("detection service returned malformed response")
)

// ImageRef 一张已入库图片的引用
type ImageRef struct {
	Filename string
	URL      string
}

// BatchResult 检测服务对单张图片的返回，Error 非空表示该图失败
type BatchResult struct {
	Predictions       []model.Prediction `json:"predictions"`
	ImageURL          string             `json:"image_url"`
	HeatmapURL        string             `json:"heatmap_url"`
	AnnotatedImageURL string             `json:"annotated_image_url"`
	Error             string             `json:"error,omitempty"`
}

type batchResponse struct {
	BatchResults []BatchResult `json:"batch_results"`
}

// Client 外部缺陷检测服务客户端
type Client struct {
	http       *resty.Client
	url        string
	baseOrigin string
}

func NewClient(cfg config.DetectionConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if cfg.Timeout <= 0 {
		timeout = 60 * time.Second
	}

	client := resty.New().SetTimeout(timeout)

	return &Client{
		http:       client,
		url:        cfg.URL,
		baseOrigin: cfg.BaseOrigin,
	}
}

// Detect 把一批图片提交给检测服务。整体传输失败返回错误，
// 单张图片的失败通过 BatchResult.Error 返回，不中断整批
func (c *Client) Detect(ctx context.Context, images []ImageRef) ([]BatchResult, error) {
	if c.url == "" {
		return nil, fmt.Errorf("%w: detection url is not configured", ErrServiceUnavailable)
	}

	// 先把已入库的图片并发拉回内存，再以 multipart 一次性提交
	buffers := make([][]byte, len(images))
	g, gCtx := errgroup.WithContext(ctx)
	for i, img := range images {
		g.Go(func() error {
			resp, err := c.http.R().SetContext(gCtx).Get(img.URL)
			if err != nil {
				return fmt.Errorf("download image %s: %w", img.Filename, err)
			}
			if resp.IsError() {
				return fmt.Errorf("download image %s: status %d", img.Filename, resp.StatusCode())
			}
			buffers[i] = resp.Body()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	req := c.http.R().SetContext(ctx)
	for i, img := range images {
		req.SetFileReader("images", img.Filename, bytes.NewReader(buffers[i]))
	}

	resp, err := req.Post(c.url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode())
	}

	var batch batchResponse
	if err = json.Unmarshal(resp.Body(), &batch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if batch.BatchResults == nil {
		return nil, ErrMalformedResponse
	}

	// 热力图/标注图可能是检测服务自己主机上的相对路径
	for i := range batch.BatchResults {
		r := &batch.BatchResults[i]
		r.HeatmapURL = NormalizeAssetURL(c.baseOrigin, r.HeatmapURL)
		r.AnnotatedImageURL = NormalizeAssetURL(c.baseOrigin, r.AnnotatedImageURL)
	}

	log.InfoContext(ctx, "检测服务调用完成", "images", len(images), "results", len(batch.BatchResults))
	return batch.BatchResults, nil
}

// BaseOrigin 返回配置的检测服务源
func (c *Client) BaseOrigin() string {
	return c.baseOrigin
}
