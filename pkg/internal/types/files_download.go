package types

// SignedURLRequest 获取文件访问 URL 请求（query 绑定）.
type SignedURLRequest struct {
	// 过期时间（秒），可选；缺省使用服务默认值
	ExpirySeconds int `form:"expiry_seconds" json:"expiry_seconds,omitempty"`

	// 以下为可选的响应头控制参数（对象存储预签名支持的常见字段）
	ResponseContentType        string `form:"response_content_type"        json:"response_content_type,omitempty"`
	ResponseContentDisposition string `form:"response_content_disposition" json:"response_content_disposition,omitempty"`
}

// SignedURLResponse 文件访问 URL 响应.
type SignedURLResponse struct {
	FileID    string `json:"file_id"`
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"` // 过期时间 (秒)；本地后端公共 URL 为 0
}
