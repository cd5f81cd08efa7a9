package dto

type CreateLocationInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Code     string `json:"code" validate:"required,max=40"`
	Type     string `json:"type" validate:"required,oneof=warehouse shelf store kiosk other"`
	Capacity *int64 `json:"capacity" validate:"omitempty,gte=0"`
}

type UpdateLocationInput struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required,max=120"`
	Code     string `json:"code" validate:"required,max=40"`
	Type     string `json:"type" validate:"required,oneof=warehouse shelf store kiosk other"`
	Capacity *int64 `json:"capacity" validate:"omitempty,gte=0"`
	IsActive bool   `json:"isActive"`
}
