package service

import (
	"errors"
	"fmt"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid            = errors.New("参数错误")
	ErrUserNotFound            = errors.New("用户不存在")
	ErrUserUsernameExist       = errors.New("用户名已存在")
	ErrPasswordIncorrect       = errors.New("密码错误")
	ErrMissingLoginCredentials = errors.New("缺少登录凭据")
	ErrNoImagesProvided        = errors.New("未上传任何图片")
	ErrFileNotImage            = errors.New("文件不是有效的图片")
	ErrAssetIngestionFailed    = errors.New("图片入库失败")
	ErrDetectionUnavailable    = errors.New("检测服务不可用")
	ErrDetectionMalformed      = errors.New("检测服务响应异常")
	ErrPlanInvalid             = errors.New("无效的订阅套餐")
	ErrWebhookSignature        = errors.New("回调签名校验失败")
	UnauthorizedError          = errors.New("权限不足")
	UnExpectedError            = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:            BadRequest,
	ErrUserNotFound:            NotFound,
	ErrUserUsernameExist:       BadRequest,
	ErrPasswordIncorrect:       Unauthorized,
	ErrMissingLoginCredentials: Unauthorized,
	ErrNoImagesProvided:        BadRequest,
	ErrFileNotImage:            BadRequest,
	ErrAssetIngestionFailed:    InternalServerError,
	ErrDetectionUnavailable:    InternalServerError,
	ErrDetectionMalformed:      InternalServerError,
	ErrPlanInvalid:             BadRequest,
	ErrWebhookSignature:        BadRequest,
	UnauthorizedError:          Unauthorized,
	UnExpectedError:            InternalServerError,
}

// QuotaExceededError 整批拒绝时返回剩余额度与本次尝试数
type QuotaExceededError struct {
	Remaining int
	Attempted int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("今日上传配额不足：剩余 %d 张，本次提交 %d 张", e.Remaining, e.Attempted)
}
