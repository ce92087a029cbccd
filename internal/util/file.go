package util

import (
	"io"
	"net/http"
)

// DetectMimeType 根据文件头嗅探 MIME 类型，读取前 512 字节
func DetectMimeType(reader io.Reader) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}
	return http.DetectContentType(buffer[:n]), nil
}
