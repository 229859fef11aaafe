package dtos

type JobExtractionRequest struct {
	RawHTML string `json:"raw_html" binding:"required"`
	URL     string `json:"url"`
}

// ExtractedJob is what the LLM pulls out of a job posting. Missing values
// come back as zero values.
type ExtractedJob struct {
	CompanyName string   `json:"company_name"`
	Title       string   `json:"role_title"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	TechStack   []string `json:"tech_stack"`
	SalaryRange string   `json:"salary_range"`
}

type JobCreationRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	Title       string `json:"role_title" binding:"required"`
	Description string `json:"description" binding:"required"`

	// Optional Fields
	JobLink     string   `json:"job_link" binding:"omitempty,url"`
	Location    string   `json:"location"`
	SalaryRange string   `json:"salary_range"`
	TechStack   []string `json:"tech_stack"`
	FormID      string   `json:"form_id" binding:"omitempty,uuid"`
	Status      string   `json:"status" binding:"omitempty,oneof=OPEN CLOSED"` // defaults to OPEN
}

type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}
