package util

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
)

// ReadImageFile 把上传文件整体读入内存并校验确实是可解码的图片。
// 返回文件字节与嗅探出的 Content-Type
func ReadImageFile(fh *multipart.FileHeader) ([]byte, string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("unexpected content type %s", contentType)
	}

	if _, err = imaging.Decode(bytes.NewReader(data)); err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	return data, contentType, nil
}
