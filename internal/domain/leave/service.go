package leave

import "context"

type LeaveService interface {
	GetLeaveBalance(ctx context.Context, employeeID string) (LeaveBalance, error)
	// DebitLeave consumes hours from a bank. Business rejections come back in DebitResult.
	DebitLeave(ctx context.Context, req DebitLeaveRequest) (DebitResult, error)
	Grant(ctx context.Context, req GrantLeaveRequest) (LeaveBalance, error)
	ListTransactions(ctx context.Context, employeeID string) ([]Transaction, error)
}
