package collector

import (
	"context"
	"errors"
	"strings"
)

// RawItem 各数据源映射后的统一原始结构；空字符串表示上游未提供该字段
type RawItem struct {
	Title string
	Body  string
	URL   string
	Image string
}

// Status 描述一次采集的结果类型
type Status string

const (
	StatusOK       Status = "ok"
	StatusDisabled Status = "disabled" // 未配置凭据，未发起网络请求
	StatusFailed   Status = "failed"   // 网络错误、超时或响应无法解析
)

// ErrNoCredential 数据源缺少 API 凭据
var ErrNoCredential = errors.New("credential not configured")

// Result 是一次采集的显式结果：失败时 Items 为空，原因记录在 Status/Err 中，不向上抛出
type Result struct {
	Source string
	Items  []RawItem
	Status Status
	Err    error
}

// Source 抽象每一个新闻数据源；Fetch 永远不返回 error，失败降级为空结果
type Source interface {
	Name() string
	Fetch(ctx context.Context) Result
}

func okResult(name string, items []RawItem) Result {
	return Result{Source: name, Items: items, Status: StatusOK}
}

func disabledResult(name string) Result {
	return Result{Source: name, Status: StatusDisabled, Err: ErrNoCredential}
}

func failedResult(name string, err error) Result {
	return Result{Source: name, Status: StatusFailed, Err: err}
}

// firstNonEmpty 返回第一个去除空白后非空的值（保持原值）
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
