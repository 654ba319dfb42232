package service

import "errors"

// 领域错误哨兵，handler 层用 errors.Is 映射 HTTP 状态码
var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
	ErrForbidden  = errors.New("forbidden")
)
