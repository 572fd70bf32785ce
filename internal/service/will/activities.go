package will

import (
	"context"

	"digitalwill-backend/internal/types"
	"digitalwill-backend/internal/workflow"
)

const (
	defaultPageSize = 10
	dateLayout      = "Jan 2, 2006"
)

// ListActivities 当前钱包的操作记录, 按时间倒序
func (s *service) ListActivities(ctx context.Context, sessionID string, req *types.ActivityListRequest) (*types.ActivityListResponse, error) {
	ws, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	page, pageSize := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	activities, total, err := s.activityRepo.ListByOwner(ctx, ws.sess.Address, page, pageSize)
	if err != nil {
		return nil, err
	}

	items := make([]types.ActivityItem, 0, len(activities))
	for _, a := range activities {
		items = append(items, activityItem(a))
	}
	return &types.ActivityListResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

var activityNames = map[string]string{
	string(workflow.ActionInitialize):     "Initialize Will Account",
	string(workflow.ActionCreateWill):     "Create Will",
	string(workflow.ActionSetRecipient):   "Set Recipient",
	string(workflow.ActionDeposit):        "Deposit Funds",
	string(workflow.ActionInitializeWill): "Initialize Will",
	string(workflow.ActionPing):           "Ping",
	string(workflow.ActionClaim):          "Claim Will",
}

// activityItem 展示项: claim 为收入, 其余为支出
func activityItem(a types.WillActivity) types.ActivityItem {
	name, ok := activityNames[a.Action]
	if !ok {
		name = a.Action
	}
	kind := "sent"
	if a.Action == string(workflow.ActionClaim) {
		kind = "received"
	}
	status := "Completed"
	if a.Status == types.ActivityStatusFailed {
		status = "Failed"
	}
	amount := "-"
	if a.AmountOctas > 0 {
		amount = workflow.FormatAPT(a.AmountOctas, 4) + " APT"
	}
	return types.ActivityItem{
		ID:     a.ID,
		Name:   name,
		Date:   a.CreatedAt.Format(dateLayout),
		Amount: amount,
		Type:   kind,
		Status: status,
		TxHash: a.TxHash,
		Time:   a.CreatedAt,
	}
}
