package service

import (
	"CircuitEye/internal/api/config"
	"CircuitEye/internal/model"
	"CircuitEye/internal/pkg/detection"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecordRepo struct {
	countToday int64
	created    []*model.DetectionRecord
}

func (s *fakeRecordRepo) CreateRecords(ctx context.Context, records []*model.DetectionRecord) error {
	s.created = append(s.created, records...)
	return nil
}

func (s *fakeRecordRepo) CountByUserBetween(ctx context.Context, userID uint64, from, to time.Time) (int64, error) {
	return s.countToday, nil
}

func (s *fakeRecordRepo) GetRecordsByUser(ctx context.Context, userID uint64) ([]*model.DetectionRecord, error) {
	return s.created, nil
}

func (s *fakeRecordRepo) GetUserIDsWithRecordsBetween(ctx context.Context, from, to time.Time) ([]uint64, error) {
	return nil, nil
}

// fakeAssetStore 内存对象存储，baseURL 指向测试内提供图片字节的 HTTP 服务
type fakeAssetStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	baseURL string
}

func newFakeAssetStore(baseURL string) *fakeAssetStore {
	return &fakeAssetStore{
		objects: make(map[string][]byte),
		baseURL: baseURL,
	}
}

func (s *fakeAssetStore) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectName] = data
	return objectName, nil
}

func (s *fakeAssetStore) PublicURL(objectName string) string {
	return s.baseURL + "/" + objectName
}

func (s *fakeAssetStore) Remove(ctx context.Context, objectNames []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range objectNames {
		delete(s.objects, name)
	}
}

func (s *fakeAssetStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type fakeQuotaLocker struct {
	acquired int
	released int
}

func (s *fakeQuotaLocker) Acquire(ctx context.Context, key, value string, expiration time.Duration, retryTimes int) (bool, error) {
	s.acquired++
	return true, nil
}

func (s *fakeQuotaLocker) Release(ctx context.Context, key, value string) {
	s.released++
}

// pngFileHeaders 构造 n 个真实可解码的 PNG multipart 文件头
func pngFileHeaders(t *testing.T, n int) []*multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for i := 0; i < n; i++ {
		fw, err := w.CreateFormFile("images", fmt.Sprintf("board-%d.png", i))
		require.NoError(t, err)
		require.NoError(t, png.Encode(fw, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["images"]
}

func TestUploadAndDetectQuotaRejection(t *testing.T) {
	userRepo := newFakeUserRepo(&model.User{ID: 1, PhotosPerDay: 2})
	recordRepo := &fakeRecordRepo{countToday: 0}
	store := newFakeAssetStore("http://assets.local")
	locker := &fakeQuotaLocker{}
	svc := NewDetectionService(userRepo, recordRepo, detection.NewClient(config.DetectionConfig{}), store, locker)

	// 额度 2、当日 0 张，提交 3 张：整批拒绝
	result, err := svc.UploadAndDetect(context.Background(), 1, pngFileHeaders(t, 3))
	assert.Nil(t, result)

	var quotaErr *QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, 2, quotaErr.Remaining)
	assert.Equal(t, 3, quotaErr.Attempted)

	// 不留记录、不留对象，锁已释放
	assert.Empty(t, recordRepo.created)
	assert.Equal(t, 0, store.count())
	assert.Equal(t, 1, locker.acquired)
	assert.Equal(t, 1, locker.released)
}

func TestUploadAndDetectAdmitted(t *testing.T) {
	var store *fakeAssetStore

	mux := http.NewServeMux()
	mux.HandleFunc("/detect", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"batch_results":[
			{"predictions":[{"class_name":"spur","confidence":0.88}],"image_url":"https://minio.example.com/a.png","heatmap_url":"/static/a.png"},
			{"predictions":[]}
		]}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		store.mu.Lock()
		defer store.mu.Unlock()
		for _, data := range store.objects {
			_, _ = w.Write(data)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store = newFakeAssetStore(srv.URL)
	userRepo := newFakeUserRepo(&model.User{ID: 1, PhotosPerDay: 10})
	recordRepo := &fakeRecordRepo{countToday: 0}
	client := detection.NewClient(config.DetectionConfig{
		URL:        srv.URL + "/detect",
		BaseOrigin: "http://detector.internal:8000",
		Timeout:    5,
	})
	svc := NewDetectionService(userRepo, recordRepo, client, store, &fakeQuotaLocker{})

	result, err := svc.UploadAndDetect(context.Background(), 1, pngFileHeaders(t, 2))
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 2, result.Accepted)
	assert.Equal(t, 0, result.Failed)
	require.Len(t, recordRepo.created, 2)
	assert.Equal(t, uint64(1), recordRepo.created[0].UserID)
	assert.Equal(t, "http://detector.internal:8000/static/a.png", recordRepo.created[0].HeatmapURL)
	// 入库对象保留
	assert.Equal(t, 2, store.count())
}

func TestUploadAndDetectRejectsNonImage(t *testing.T) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile("images", "notes.txt")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("definitely not an image"))
	require.NoError(t, w.Close())
	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	store := newFakeAssetStore("http://assets.local")
	svc := NewDetectionService(
		newFakeUserRepo(&model.User{ID: 1, PhotosPerDay: 10}),
		&fakeRecordRepo{},
		detection.NewClient(config.DetectionConfig{}),
		store,
		&fakeQuotaLocker{},
	)

	_, err = svc.UploadAndDetect(context.Background(), 1, form.File["images"])
	assert.ErrorIs(t, err, ErrFileNotImage)
	assert.Equal(t, 0, store.count())
}

func TestRemainingQuota(t *testing.T) {
	assert.Equal(t, 10, remainingQuota(10, 0))
	assert.Equal(t, 2, remainingQuota(10, 8))
	assert.Equal(t, 0, remainingQuota(10, 10))
	// 计数超出限额时（比如降级后）余量封底为 0
	assert.Equal(t, 0, remainingQuota(10, 15))
}

func TestQuotaExceededError(t *testing.T) {
	err := &QuotaExceededError{Remaining: 2, Attempted: 3}
	assert.Equal(t, 2, err.Remaining)
	assert.Equal(t, 3, err.Attempted)
	assert.NotEmpty(t, err.Error())
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	ts := time.Date(2026, 8, 28, 15, 4, 5, 123, loc)

	start := startOfDay(ts)

	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, loc), start)
	assert.Equal(t, loc, start.Location())
}
