package handler

import "time"

// --- Requests ---

type signUpRequest struct {
	Email    string `json:"email"    validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=customer executor"`
}

type signInRequest struct {
	Email    string `json:"email"    validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=customer executor"`
}

type logoRequest struct {
	Logo string `json:"logo" validate:"required,url,max=2048"`
}

type balanceRequest struct {
	Sum int64 `json:"sum" validate:"required,gt=0"`
}

// executorUpdateRequest is a partial update; omitted fields are unchanged.
type executorUpdateRequest struct {
	Description     *string  `json:"description"     validate:"omitempty,max=2000"`
	Classification  *string  `json:"classification"  validate:"omitempty,max=200"`
	Tags            []string `json:"tags"            validate:"omitempty,max=20,dive,required,max=50"`
	Specializations []string `json:"specializations" validate:"omitempty,max=20,dive,required,max=100"`
	Experience      *string  `json:"experience"      validate:"omitempty,oneof=lessYear overYear overThreeYear overFiveYear overTenYear"`
	CostType        *string  `json:"cost_type"       validate:"omitempty,oneof=none contract inHour inOrder"`
	Cost            *int64   `json:"cost"            validate:"omitempty,min=0"`
}

type historyQuery struct {
	Page int `query:"page" validate:"omitempty,min=1"`
}

// --- Responses ---

type messageResponse struct {
	Message string `json:"message"`
}

type userView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token,omitempty"`
	User    *userView `json:"user,omitempty"`
}

type executorView struct {
	Description     string   `json:"description,omitempty"`
	Classification  string   `json:"classification,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Specializations []string `json:"specializations,omitempty"`
	Experience      string   `json:"experience,omitempty"`
	CostType        string   `json:"cost_type,omitempty"`
	Cost            int64    `json:"cost"`
	Rating          float64  `json:"rating"`
}

type executorResponse struct {
	Message  string       `json:"message"`
	Executor executorView `json:"executor"`
}

// profileView carries the executor profile only for executors.
type profileView struct {
	ID       string        `json:"id"`
	Email    string        `json:"email"`
	Role     string        `json:"role"`
	Balance  int64         `json:"balance"`
	Logo     string        `json:"logo,omitempty"`
	Executor *executorView `json:"executor,omitempty"`
}

type profileResponse struct {
	Message string      `json:"message"`
	User    profileView `json:"user"`
}

// publicProfileView carries email and balance only when the viewer is the
// profile owner.
type publicProfileView struct {
	ID       string        `json:"id"`
	Role     string        `json:"role"`
	Logo     string        `json:"logo,omitempty"`
	Email    string        `json:"email,omitempty"`
	Balance  *int64        `json:"balance,omitempty"`
	Executor *executorView `json:"executor,omitempty"`
}

type publicProfileResponse struct {
	Message string            `json:"message"`
	User    publicProfileView `json:"user"`
}

type balanceResponse struct {
	Message string `json:"message"`
	Balance int64  `json:"balance"`
}

type operationView struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Sum       int64     `json:"sum"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

type historyResponse struct {
	Message    string          `json:"message"`
	Balance    int64           `json:"balance"`
	Count      int             `json:"count"`
	Page       int             `json:"page"`
	Operations []operationView `json:"operations"`
}
