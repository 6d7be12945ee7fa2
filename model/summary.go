package model

// RunSummary 一次播放的统计结果
type RunSummary struct {
	RunID         string  `json:"run_id"`
	VideoMD5      string  `json:"video_md5"`
	Path          string  `json:"path"`
	FPS           float64 `json:"fps"`
	Frames        int     `json:"frames"`
	CatFrames     int     `json:"cat_frames"`
	FirstCatFrame int     `json:"first_cat_frame"` // 从1开始，0表示未出现
	Outcome       string  `json:"outcome"`
	DurationMS    int64   `json:"duration_ms"`
	Timestamp     int64   `json:"timestamp"`
}

// StatusResponse 状态查询响应
type StatusResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    *RunSummary `json:"data,omitempty"`
}
