package dto

// ── 时段目录 DTO ──

// TimeSlotResponse 时段响应
type TimeSlotResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
}
