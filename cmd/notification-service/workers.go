package main

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"laundry-workers/internal/common/auth"
	"laundry-workers/internal/common/camunda"
	"laundry-workers/internal/common/config"
	"laundry-workers/internal/common/logger"
	"laundry-workers/internal/common/observability"
	"laundry-workers/internal/functions"
	"laundry-workers/internal/notify"
	"laundry-workers/internal/store"

	rd "laundry-workers/internal/workers/account/request-deletion"
	bt "laundry-workers/internal/workers/marketing/behavioral-triggers"
	dc "laundry-workers/internal/workers/marketing/dispatch-campaign"
	son "laundry-workers/internal/workers/notification/send-order-notification"
	stn "laundry-workers/internal/workers/notification/send-test-notification"
	nno "laundry-workers/internal/workers/operators/notify-new-order"
	wa "laundry-workers/internal/workers/operators/washer-approval"
	uos "laundry-workers/internal/workers/orders/update-order-status"
)

// workerTimeout overrides def with the configured timeout when the worker has an entry.
func workerTimeout(cfg *config.Config, taskType string, def time.Duration) time.Duration {
	if w, ok := cfg.Workers[taskType]; ok && w.Timeout > 0 {
		return config.GetDuration(w.Timeout)
	}
	return def
}

func buildHandlers(
	cfg *config.Config,
	db *store.Store,
	templates notify.Templates,
	sender *notify.Sender,
	keycloak *auth.KeycloakClient,
	obs *observability.Observability,
	log logger.Logger,
) functions.Handlers {
	sonCfg := son.LoadConfig()
	sonCfg.Timeout = workerTimeout(cfg, son.TaskType, sonCfg.Timeout)
	orderNotification := son.NewHandler(sonCfg, db, templates, sender, log)

	stnCfg := stn.LoadConfig()
	stnCfg.Timeout = workerTimeout(cfg, stn.TaskType, stnCfg.Timeout)

	dcCfg := dc.LoadConfig(cfg.Notifications)
	dcCfg.Timeout = workerTimeout(cfg, dc.TaskType, dcCfg.Timeout)
	campaigns := dc.NewHandler(dcCfg, db, dc.NewService(dcCfg, sender, obs, log), log)

	btCfg := bt.LoadConfig()
	btCfg.Timeout = workerTimeout(cfg, bt.TaskType, btCfg.Timeout)

	nnoCfg := nno.LoadConfig(cfg.Notifications)
	nnoCfg.Timeout = workerTimeout(cfg, nno.TaskType, nnoCfg.Timeout)

	waCfg := wa.LoadConfig()
	waCfg.Timeout = workerTimeout(cfg, wa.TaskType, waCfg.Timeout)

	rdCfg := rd.LoadConfig()
	rdCfg.Timeout = workerTimeout(cfg, rd.TaskType, rdCfg.Timeout)

	uosCfg := uos.LoadConfig()
	uosCfg.Timeout = workerTimeout(cfg, uos.TaskType, uosCfg.Timeout)

	return functions.Handlers{
		OrderNotification: orderNotification,
		TestNotification:  stn.NewHandler(stnCfg, templates, sender, log),
		Campaigns:         campaigns,
		Triggers:          bt.NewHandler(btCfg, bt.NewScanner(db, log), campaigns, log),
		NewOrder:          nno.NewHandler(nnoCfg, db, templates, sender, log),
		WasherApproval:    wa.NewHandler(waCfg, db, templates, sender, log),
		AccountDeletion:   rd.NewHandler(rdCfg, db, keycloak, log),
		OrderStatus:       uos.NewHandler(uosCfg, db, orderNotification, log),
	}
}

func startWorkers(client zbc.Client, cfg *config.Config, h functions.Handlers, log *zap.Logger) int {
	workers := []struct {
		taskType string
		handle   func(worker.JobClient, entities.Job)
	}{
		{son.TaskType, h.OrderNotification.Handle},
		{stn.TaskType, h.TestNotification.Handle},
		{dc.TaskType, h.Campaigns.Handle},
		{bt.TaskType, h.Triggers.Handle},
		{nno.TaskType, h.NewOrder.Handle},
		{wa.TaskType, h.WasherApproval.Handle},
		{rd.TaskType, h.AccountDeletion.Handle},
		{uos.TaskType, h.OrderStatus.Handle},
	}

	started := 0
	for _, w := range workers {
		if camunda.StartWorker(client, w.taskType, config.GetWorkerConfig(cfg, w.taskType), w.handle, log) != nil {
			started++
		}
	}
	return started
}
