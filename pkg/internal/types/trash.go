package types

import "time"

// TrashListResponse 回收站列表响应.
type TrashListResponse struct {
	Total   int64        `json:"total"`
	Page    int          `json:"page"`
	Size    int          `json:"size"`
	Files   []FileInfo   `json:"files"`
	Folders []FolderInfo `json:"folders,omitempty"`
}

// TrashBatchRequest 批量恢复/清除请求.
type TrashBatchRequest struct {
	FileIDs   []string `json:"file_ids,omitempty"`
	FolderIDs []string `json:"folder_ids,omitempty"`
}

// TrashItemResult 单个条目的处理结果.
type TrashItemResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// TrashActionResponse 通用动作响应.
type TrashActionResponse struct {
	Affected int               `json:"affected"`
	Failed   int               `json:"failed,omitempty"`
	Results  []TrashItemResult `json:"results,omitempty"`
	Message  string            `json:"message,omitempty"`
}

// TrashAutoCleanRequest 自动清理请求.
// 可指定 before（RFC3339）或 days（整数，表示清理 N 天前删除的）.
type TrashAutoCleanRequest struct {
	Before string `json:"before,omitempty"`
	Days   int    `json:"days,omitempty"`
}

// ParseBefore 返回解析后的时间与是否提供.
func (r *TrashAutoCleanRequest) ParseBefore() (time.Time, bool) {
	if r.Before != "" {
		if t, err := time.Parse(time.RFC3339, r.Before); err == nil {
			return t, true
		}
	}

	if r.Days > 0 {
		return time.Now().UTC().Add(-time.Duration(r.Days) * 24 * time.Hour), true
	}

	return time.Time{}, false
}
