package handler

import (
	"github.com/opportunitycup/marketplace-api/internal/core/domain"
	"github.com/opportunitycup/marketplace-api/internal/core/ports"
)

func toUserView(u *domain.User) *userView {
	if u == nil {
		return nil
	}
	return &userView{ID: u.ID, Email: u.Email, Role: u.Role}
}

func toProfileView(u *domain.User) profileView {
	return profileView{
		ID:       u.ID,
		Email:    u.Email,
		Role:     u.Role,
		Balance:  u.Balance,
		Logo:     u.Logo,
		Executor: executorViewFor(u),
	}
}

func toExecutorView(p domain.ExecutorProfile) executorView {
	return executorView{
		Description:     p.Description,
		Classification:  p.Classification,
		Tags:            p.Tags,
		Specializations: p.Specializations,
		Experience:      string(p.Experience),
		CostType:        string(p.CostType),
		Cost:            p.Cost,
		Rating:          p.Rating,
	}
}

func executorViewFor(u *domain.User) *executorView {
	if u.Role != domain.RoleExecutor {
		return nil
	}
	v := toExecutorView(u.Executor)
	return &v
}

func toExecutorUpdate(r executorUpdateRequest) domain.ExecutorProfileUpdate {
	upd := domain.ExecutorProfileUpdate{
		Description:     r.Description,
		Classification:  r.Classification,
		Tags:            r.Tags,
		Specializations: r.Specializations,
		Cost:            r.Cost,
	}
	if r.Experience != nil {
		exp := domain.Experience(*r.Experience)
		upd.Experience = &exp
	}
	if r.CostType != nil {
		ct := domain.CostType(*r.CostType)
		upd.CostType = &ct
	}
	return upd
}

func toPublicProfileView(u *domain.User, self bool) publicProfileView {
	v := publicProfileView{ID: u.ID, Role: u.Role, Logo: u.Logo, Executor: executorViewFor(u)}
	if self {
		balance := u.Balance
		v.Email = u.Email
		v.Balance = &balance
	}
	return v
}

func toHistoryResponse(h *ports.BalanceHistory) historyResponse {
	ops := make([]operationView, 0, len(h.Operations))
	for _, op := range h.Operations {
		ops = append(ops, operationView{
			ID:        op.ID,
			Kind:      string(op.Kind),
			Sum:       op.Sum,
			Reason:    op.Reason,
			CreatedAt: op.CreatedAt,
		})
	}
	return historyResponse{
		Message:    msgBalanceHistory,
		Balance:    h.Balance,
		Count:      h.TotalPages,
		Page:       h.Page,
		Operations: ops,
	}
}
