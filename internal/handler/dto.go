package handler

import "github.com/example/sptracker/pkg/models"

// TabRequest is the body of every tab-scoped read. An empty body selects the
// default tab.
type TabRequest struct {
	Tab string `json:"tab"`
}

// SubmissionsRequest selects submissions between two dates. An empty
// categories list selects every category.
type SubmissionsRequest struct {
	From       string   `json:"from" binding:"required"`
	To         string   `json:"to" binding:"required"`
	Categories []string `json:"categories"`
	Tab        string   `json:"tab"`
}

// InsertRequest records a newly solved problem
type InsertRequest struct {
	Link     string `json:"link" binding:"required"`
	Category string `json:"sp_category" binding:"required"`
	Type     string `json:"sp_type" binding:"required"`
	Level    string `json:"sp_level" binding:"required"`
	Tab      string `json:"tab"`
	Rts      int    `json:"rts" binding:"omitempty,min=1"`
}

// UpdateRequest completes a pending revision and schedules the next one
type UpdateRequest struct {
	ID       int64  `json:"id" binding:"required,min=1"`
	Link     string `json:"link"`
	Category string `json:"category"`
	Type     string `json:"type"`
	Level    string `json:"level"`
	Tab      string `json:"tab"`
	Rts      int    `json:"rts" binding:"omitempty,min=1"`
}

// MetadataResponse bundles everything the dashboard loads for a tab
type MetadataResponse struct {
	Categories      []models.Category      `json:"sp_categories"`
	Levels          []models.Level         `json:"sp_levels"`
	Types           []models.Type          `json:"sp_types"`
	OverallPending  []models.CategoryCount `json:"overall_pending"`
	OverallProgress []models.CategoryCount `json:"overall_progress"`
}

// StatusResponse is returned on failure when an endpoint has no natural
// empty shape
type StatusResponse struct {
	Status int `json:"status"`
}

func emptyMetadata() MetadataResponse {
	return MetadataResponse{
		Categories:      []models.Category{},
		Levels:          []models.Level{},
		Types:           []models.Type{},
		OverallPending:  []models.CategoryCount{},
		OverallProgress: []models.CategoryCount{},
	}
}
