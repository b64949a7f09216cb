package detection

import (
	"CircuitEye/internal/api/config"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDetectionServer(t *testing.T, detect http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/assets/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("fake-image-bytes"))
	})
	mux.HandleFunc("/detect", detect)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientDetect(t *testing.T) {
	t.Run("parses batch results and normalizes asset urls", func(t *testing.T) {
		srv := newDetectionServer(t, func(w http.ResponseWriter, r *http.Request) {
			err := r.ParseMultipartForm(32 << 20)
			require.NoError(t, err)
			assert.Len(t, r.MultipartForm.File["images"], 2)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"batch_results":[
				{"predictions":[{"class_id":1,"class_name":"spur","confidence":0.91,"x_min":1,"y_min":2,"x_max":3,"y_max":4}],
				 "image_url":"https://minio.example.com/a.jpg",
				 "heatmap_url":"/static/heatmaps/a.png",
				 "annotated_image_url":"/static/annotated/a.png"},
				{"predictions":[],"image_url":"https://minio.example.com/b.jpg"}
			]}`))
		})

		client := NewClient(config.DetectionConfig{
			URL:        srv.URL + "/detect",
			BaseOrigin: "http://detector.internal:8000",
			Timeout:    5,
		})

		results, err := client.Detect(context.Background(), []ImageRef{
			{Filename: "a.jpg", URL: srv.URL + "/assets/a.jpg"},
			{Filename: "b.jpg", URL: srv.URL + "/assets/b.jpg"},
		})
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Equal(t, "spur", results[0].Predictions[0].ClassName)
		assert.Equal(t, "https://minio.example.com/a.jpg", results[0].ImageURL)
		assert.Equal(t, "http://detector.internal:8000/static/heatmaps/a.png", results[0].HeatmapURL)
		assert.Equal(t, "http://detector.internal:8000/static/annotated/a.png", results[0].AnnotatedImageURL)
		assert.Empty(t, results[1].Predictions)
	})

	t.Run("per image error does not fail the batch", func(t *testing.T) {
		srv := newDetectionServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"batch_results":[
				{"predictions":[],"image_url":"https://minio.example.com/a.jpg"},
				{"error":"unreadable image"}
			]}`))
		})

		client := NewClient(config.DetectionConfig{URL: srv.URL + "/detect", Timeout: 5})
		results, err := client.Detect(context.Background(), []ImageRef{
			{Filename: "a.jpg", URL: srv.URL + "/assets/a.jpg"},
			{Filename: "b.jpg", URL: srv.URL + "/assets/b.jpg"},
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Empty(t, results[0].Error)
		assert.Equal(t, "unreadable image", results[1].Error)
	})

	t.Run("missing batch_results is malformed", func(t *testing.T) {
		srv := newDetectionServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"message":"ok"}`))
		})

		client := NewClient(config.DetectionConfig{URL: srv.URL + "/detect", Timeout: 5})
		_, err := client.Detect(context.Background(), []ImageRef{
			{Filename: "a.jpg", URL: srv.URL + "/assets/a.jpg"},
		})
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("non json body is malformed", func(t *testing.T) {
		srv := newDetectionServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>oops</html>"))
		})

		client := NewClient(config.DetectionConfig{URL: srv.URL + "/detect", Timeout: 5})
		_, err := client.Detect(context.Background(), []ImageRef{
			{Filename: "a.jpg", URL: srv.URL + "/assets/a.jpg"},
		})
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("http error status is unavailable", func(t *testing.T) {
		srv := newDetectionServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		client := NewClient(config.DetectionConfig{URL: srv.URL + "/detect", Timeout: 5})
		_, err := client.Detect(context.Background(), []ImageRef{
			{Filename: "a.jpg", URL: srv.URL + "/assets/a.jpg"},
		})
		assert.ErrorIs(t, err, ErrServiceUnavailable)
	})

	t.Run("unreachable service is unavailable", func(t *testing.T) {
		srv := newDetectionServer(t, func(w http.ResponseWriter, r *http.Request) {})
		assetURL := srv.URL + "/assets/a.jpg"

		dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		dead.Close()

		client := NewClient(config.DetectionConfig{URL: dead.URL + "/detect", Timeout: 1})
		_, err := client.Detect(context.Background(), []ImageRef{
			{Filename: "a.jpg", URL: assetURL},
		})
		assert.ErrorIs(t, err, ErrServiceUnavailable)
	})

	t.Run("missing url configuration is unavailable", func(t *testing.T) {
		client := NewClient(config.DetectionConfig{Timeout: 1})
		_, err := client.Detect(context.Background(), nil)
		assert.ErrorIs(t, err, ErrServiceUnavailable)
	})
}
