package service

import (
	"CircuitEye/internal/api/dto"
	"CircuitEye/internal/model"
	"CircuitEye/internal/pkg/consts"
	"CircuitEye/internal/pkg/detection"
	"CircuitEye/internal/pkg/util"
	"CircuitEye/internal/repository"
	"bytes"
	"context"
	"errors"
	"io"
	log "log/slog"
	"mime/multipart"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"golang.org/x/sync/errgroup"
)

type DetectionService interface {
	UploadAndDetect(ctx context.Context, userID uint64, files []*multipart.FileHeader) (*dto.UploadResultDTO, error)
	GetResults(ctx context.Context, userID uint64) (*dto.ResultListDTO, error)
	GetRemainingUploads(ctx context.Context, userID uint64) (int, error)
}

// AssetStore 图片对象存储的窄接口，生产实现落在 MinIO
type AssetStore interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
	PublicURL(objectName string) string
	Remove(ctx context.Context, objectNames []string)
}

// QuotaLocker 用户级配额锁
type QuotaLocker interface {
	Acquire(ctx context.Context, key, value string, expiration time.Duration, retryTimes int) (bool, error)
	Release(ctx context.Context, key, value string)
}

type detectionServiceImpl struct {
	userRepo   repository.UserRepo
	recordRepo repository.DetectionRecordRepo
	client     *detection.Client
	store      AssetStore
	locker     QuotaLocker
}

func NewDetectionService(
	userRepo repository.UserRepo,
	recordRepo repository.DetectionRecordRepo,
	client *detection.Client,
	store AssetStore,
	locker QuotaLocker,
) DetectionService {
	return &detectionServiceImpl{
		userRepo:   userRepo,
		recordRepo: recordRepo,
		client:     client,
		store:      store,
		locker:     locker,
	}
}

// ingestedAsset 一张已写入 MinIO 的待检图片
type ingestedAsset struct {
	ObjectName string
	PublicURL  string
	Filename   string
}

// UploadAndDetect 上传→配额→检测→落库。整批先入库再做配额判定，
// 拒绝时对已入库对象做补偿删除
func (s *detectionServiceImpl) UploadAndDetect(ctx context.Context, userID uint64, files []*multipart.FileHeader) (*dto.UploadResultDTO, error) {
	if len(files) == 0 {
		return nil, ErrNoImagesProvided
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	assets, err := s.ingestAssets(ctx, files)
	if err != nil {
		return nil, err
	}

	// 配额判定到记录写入之间持有用户级锁，防止并发批次合计超额
	lockKey := consts.UploadQuotaLock + strconv.FormatUint(userID, 10)
	lockVal := uuid.NewString()
	locked, err := s.locker.Acquire(ctx, lockKey, lockVal, time.Minute, 5)
	if err != nil || !locked {
		s.compensate(ctx, assets)
		return nil, UnExpectedError
	}
	defer s.locker.Release(ctx, lockKey, lockVal)

	remaining, err := s.remainingToday(ctx, userID, user.PhotosPerDay)
	if err != nil {
		s.compensate(ctx, assets)
		return nil, err
	}
	if len(files) > remaining {
		s.compensate(ctx, assets)
		return nil, &QuotaExceededError{Remaining: remaining, Attempted: len(files)}
	}

	refs := make([]detection.ImageRef, len(assets))
	for i, a := range assets {
		refs[i] = detection.ImageRef{Filename: a.Filename, URL: a.PublicURL}
	}

	results, err := s.client.Detect(ctx, refs)
	if err != nil {
		log.ErrorContext(ctx, "检测服务调用失败", "err", err)
		switch {
		case errors.Is(err, detection.ErrMalformedResponse):
			return nil, ErrDetectionMalformed
		default:
			return nil, ErrDetectionUnavailable
		}
	}

	records := make([]*model.DetectionRecord, 0, len(results))
	failed := 0
	for i, r := range results {
		if r.Error != "" {
			// 单图失败不入库，只反映在计数里
			failed++
			continue
		}

		record := &model.DetectionRecord{
			UserID:            userID,
			Predictions:       r.Predictions,
			HeatmapURL:        r.HeatmapURL,
			AnnotatedImageURL: r.AnnotatedImageURL,
			ImageURL:          r.ImageURL,
		}
		if i < len(assets) {
			record.Filename = assets[i].Filename
			record.ObjectName = assets[i].ObjectName
			if record.ImageURL == "" {
				record.ImageURL = assets[i].PublicURL
			}
		}
		records = append(records, record)
	}

	if err = s.recordRepo.CreateRecords(ctx, records); err != nil {
		return nil, err
	}

	resultDTOs := make([]*dto.DetectionResultDTO, 0, len(records))
	for _, record := range records {
		item := &dto.DetectionResultDTO{}
		if err = copier.Copy(item, record); err != nil {
			return nil, err
		}
		resultDTOs = append(resultDTOs, item)
	}

	log.InfoContext(ctx, "检测批次处理完成",
		"user_id", userID, "accepted", len(records), "failed", failed)

	return &dto.UploadResultDTO{
		Message:  "Detection completed and results stored.",
		Accepted: len(records),
		Failed:   failed,
		Results:  resultDTOs,
	}, nil
}

func (s *detectionServiceImpl) GetResults(ctx context.Context, userID uint64) (*dto.ResultListDTO, error) {
	records, err := s.recordRepo.GetRecordsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resultDTOs := make([]*dto.DetectionResultDTO, 0, len(records))
	for _, record := range records {
		item := &dto.DetectionResultDTO{}
		if err = copier.Copy(item, record); err != nil {
			return nil, err
		}
		resultDTOs = append(resultDTOs, item)
	}

	return &dto.ResultListDTO{
		Message: "Detection results retrieved",
		Results: resultDTOs,
	}, nil
}

func (s *detectionServiceImpl) GetRemainingUploads(ctx context.Context, userID uint64) (int, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, ErrUserNotFound
	}
	return s.remainingToday(ctx, userID, user.PhotosPerDay)
}

// ingestAssets 并发写入 MinIO。任意一张失败即整批失败并回滚已写入对象
func (s *detectionServiceImpl) ingestAssets(ctx context.Context, files []*multipart.FileHeader) ([]ingestedAsset, error) {
	assets := make([]ingestedAsset, len(files))

	g, gCtx := errgroup.WithContext(ctx)
	for i, fh := range files {
		g.Go(func() error {
			data, contentType, err := util.ReadImageFile(fh)
			if err != nil {
				return ErrFileNotImage
			}

			objectName := time.Now().Format("2006/01/02/") + uuid.NewString() + path.Ext(fh.Filename)
			key, err := s.store.Upload(gCtx, objectName, bytes.NewReader(data), int64(len(data)), contentType)
			if err != nil {
				return err
			}

			assets[i] = ingestedAsset{
				ObjectName: key,
				PublicURL:  s.store.PublicURL(key),
				Filename:   fh.Filename,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.ErrorContext(ctx, "图片入库失败，回滚本批已写入对象", "err", err)
		s.compensate(ctx, assets)
		if errors.Is(err, ErrFileNotImage) {
			return nil, ErrFileNotImage
		}
		return nil, ErrAssetIngestionFailed
	}

	return assets, nil
}

// compensate 删除本批已写入的对象。补偿失败不得掩盖原始错误
func (s *detectionServiceImpl) compensate(ctx context.Context, assets []ingestedAsset) {
	names := make([]string, 0, len(assets))
	for _, a := range assets {
		names = append(names, a.ObjectName)
	}
	s.store.Remove(ctx, names)
}

func (s *detectionServiceImpl) remainingToday(ctx context.Context, userID uint64, photosPerDay int) (int, error) {
	from := startOfDay(time.Now())
	to := from.AddDate(0, 0, 1)

	count, err := s.recordRepo.CountByUserBetween(ctx, userID, from, to)
	if err != nil {
		return 0, err
	}

	return remainingQuota(photosPerDay, count), nil
}

// remainingQuota 当日剩余额度，下限为 0
func remainingQuota(photosPerDay int, countToday int64) int {
	remaining := photosPerDay - int(countToday)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
