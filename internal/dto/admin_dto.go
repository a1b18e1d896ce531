package dto

type UserListQuery struct {
	Page   int    `query:"page" json:"page" validate:"gte=0"`
	Limit  int    `query:"limit" json:"limit" validate:"gte=0,lte=100"`
	Search string `query:"search" json:"search" validate:"max=100"`
}

type AdminUpdateUserRequest struct {
	Role     *string `json:"role" validate:"omitempty,oneof=user admin"`
	IsActive *bool   `json:"isActive"`
}

type UserPagination struct {
	TotalUsers  int64 `json:"totalUsers"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
}

type UserListResponse struct {
	Users      []UserResponse `json:"users"`
	Pagination UserPagination `json:"pagination"`
}
