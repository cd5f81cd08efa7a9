package dto

type LocationFilters struct {
	Type     string `json:"type" form:"type"`
	IsActive *bool  `json:"isActive" form:"isActive"`
	Keyword  string `json:"keyword" form:"keyword"` // matches name or code
	Page     int    `json:"page" form:"page"`
	PageSize int    `json:"pageSize" form:"pageSize"`
}
