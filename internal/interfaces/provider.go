package interfaces

import (
	"context"

	"CineStats/internal/model"
)

// MetadataProvider 元数据平台必须实现的核心接口。
// 三个方法均为"失败返回缺失"语义：任何传输错误或非2xx响应都不会向调用方抛错，
// 只表现为对应记录无法补全。
type MetadataProvider interface {
	// GetName 平台名称
	GetName() string
	// SearchMovie 按名称+年份搜索，返回首条结果的平台ID
	SearchMovie(ctx context.Context, name string, year int) (int64, bool)
	// FetchDetails 拉取详情，失败返回 nil
	FetchDetails(ctx context.Context, id int64) *model.MovieDetails
	// FetchCredits 拉取演职员（演员截断到 maxCast），失败返回 nil
	FetchCredits(ctx context.Context, id int64, maxCast int) *model.MovieCredits
}
