package dto

type DashboardDTO struct {
	Summary SummaryDTO `json:"summary"`
}

type SummaryDTO struct {
	DefectPercentages []DefectPercentageDTO `json:"defect_percentages"`
	DefectiveChart    []ChartItemDTO        `json:"defective_chart"`
	TotalDefects      int                   `json:"total_defects"`
	RecentDefects     []RecentDefectDTO     `json:"recent_defects"`
	WeeklySummary     []WeeklySummaryDTO    `json:"weekly_summary"`
}

type DefectPercentageDTO struct {
	Name       string `json:"name"`
	Percentage string `json:"percentage"`
}

type ChartItemDTO struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type RecentDefectDTO struct {
	PcbID             string   `json:"pcb_id"`
	Filename          string   `json:"filename"`
	Defects           []string `json:"defects"`
	ImageURL          string   `json:"image_url"`
	HeatmapURL        string   `json:"heatmap_url,omitempty"`
	AnnotatedImageURL string   `json:"annotated_image_url,omitempty"`
}

type WeeklySummaryDTO struct {
	Day       string  `json:"day"`
	FaultRate float64 `json:"faultRate"`
}
