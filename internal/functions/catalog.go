package functions

import (
	"laundry-workers/internal/common/auth"
	requestdeletion "laundry-workers/internal/workers/account/request-deletion"
	behavioraltriggers "laundry-workers/internal/workers/marketing/behavioral-triggers"
	dispatchcampaign "laundry-workers/internal/workers/marketing/dispatch-campaign"
	sendordernotification "laundry-workers/internal/workers/notification/send-order-notification"
	sendtestnotification "laundry-workers/internal/workers/notification/send-test-notification"
	notifyneworder "laundry-workers/internal/workers/operators/notify-new-order"
	washerapproval "laundry-workers/internal/workers/operators/washer-approval"
	updateorderstatus "laundry-workers/internal/workers/orders/update-order-status"
)

// Handlers are the operations served over HTTP. Nil handlers are not mounted.
type Handlers struct {
	OrderNotification *sendordernotification.Handler
	TestNotification  *sendtestnotification.Handler
	Campaigns         *dispatchcampaign.Handler
	Triggers          *behavioraltriggers.Handler
	NewOrder          *notifyneworder.Handler
	WasherApproval    *washerapproval.Handler
	AccountDeletion   *requestdeletion.Handler
	OrderStatus       *updateorderstatus.Handler
}

var (
	adminOnly  = []string{auth.RoleAdmin}
	operations = []string{auth.RoleOperator, auth.RoleAdmin}
)

// Catalog binds each handler to its function name, allowed roles and request schema. Fields
// identifying the caller are always taken from the token. Account deletion and the new-order
// broadcast stay open to any signed-in customer.
func Catalog(h Handlers) []Function {
	var fns []Function
	if h.OrderNotification != nil {
		fns = append(fns, Bind(sendordernotification.TaskType, operations, SendOrderNotificationSchema, h.OrderNotification.Execute, nil))
	}
	if h.TestNotification != nil {
		fns = append(fns, Bind(sendtestnotification.TaskType, adminOnly, SendTestNotificationSchema, h.TestNotification.Execute,
			func(in *sendtestnotification.Input, caller *auth.TokenInfo) { in.RequestedBy = caller.Sub }))
	}
	if h.Campaigns != nil {
		fns = append(fns, Bind(dispatchcampaign.TaskType, adminOnly, DispatchCampaignSchema, h.Campaigns.Execute, nil))
	}
	if h.Triggers != nil {
		fns = append(fns, Bind(behavioraltriggers.TaskType, adminOnly, BehavioralTriggersSchema, h.Triggers.Execute, nil))
	}
	if h.NewOrder != nil {
		fns = append(fns, Bind(notifyneworder.TaskType, nil, NotifyNewOrderSchema, h.NewOrder.Execute, nil))
	}
	if h.WasherApproval != nil {
		fns = append(fns, Bind(washerapproval.TaskType, adminOnly, WasherApprovalSchema, h.WasherApproval.Execute,
			func(in *washerapproval.Input, caller *auth.TokenInfo) { in.ReviewedBy = caller.Sub }))
	}
	if h.AccountDeletion != nil {
		fns = append(fns, Bind(requestdeletion.TaskType, nil, RequestDeletionSchema, h.AccountDeletion.Execute,
			func(in *requestdeletion.Input, caller *auth.TokenInfo) { in.UserID = caller.Sub }))
	}
	if h.OrderStatus != nil {
		fns = append(fns, Bind(updateorderstatus.TaskType, operations, UpdateOrderStatusSchema, h.OrderStatus.Execute, nil))
	}
	return fns
}
