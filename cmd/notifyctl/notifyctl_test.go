package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"
	"time"

	"laundry-workers/internal/common/errors"
	"laundry-workers/internal/common/logger"
	"laundry-workers/internal/models"
	"laundry-workers/internal/store"
	bt "laundry-workers/internal/workers/marketing/behavioral-triggers"
	"laundry-workers/pkg/registry"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	rows []models.NotificationTemplate
	err  error
}

func (f *fakeWriter) UpsertTemplate(ctx context.Context, t models.NotificationTemplate) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, t)
	return nil
}

type fakeCache struct{ keys []string }

func (f *fakeCache) Invalidate(ctx context.Context, notificationType string, channel models.Channel) error {
	f.keys = append(f.keys, notificationType+":"+string(channel))
	return nil
}

func testRegistry() *registry.TemplateRegistry {
	return &registry.TemplateRegistry{Templates: []registry.TemplateEntry{
		{NotificationType: "claimed", Channel: models.ChannelEmail, Subject: "Order {orderNumber}", Message: "<p>Hi {customerName}</p>"},
		{NotificationType: "claimed", Channel: models.ChannelSMS, Message: "Hi {customerName}, a washer is on the way"},
	}}
}

func TestSeedTemplates(t *testing.T) {
	w := &fakeWriter{}
	cache := &fakeCache{}
	at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	n, err := seedTemplates(context.Background(), w, cache, testRegistry(), at)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, w.rows, 2)
	assert.True(t, w.rows[0].IsActive)
	assert.Equal(t, at, w.rows[1].UpdatedAt)
	assert.Equal(t, []string{"claimed:email", "claimed:sms"}, cache.keys)
}

func TestSeedTemplates_StopsOnError(t *testing.T) {
	w := &fakeWriter{err: stderrors.New("insert failed")}

	n, err := seedTemplates(context.Background(), w, nil, testRegistry(), time.Now())
	assert.Zero(t, n)
	assert.ErrorContains(t, err, "claimed/email")
}

func TestRenderRegistry(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderRegistry(&buf, testRegistry()))

	out := buf.String()
	assert.Contains(t, out, "claimed")
	assert.Contains(t, out, "{orderNumber}")
}

func TestRenderEvaluations(t *testing.T) {
	evs := []bt.Evaluation{
		{
			Trigger: models.CampaignTrigger{ID: "trig-1", CampaignID: "camp-1", TriggerType: models.TriggerInactivity},
			Matches: []bt.Match{
				{CustomerID: "cust-1", Name: "Ada"},
				{CustomerID: "cust-2", Name: "Grace", Suppressed: true},
			},
		},
		{
			Trigger: models.CampaignTrigger{ID: "trig-2", CampaignID: "camp-2", TriggerType: "birthday"},
			Err:     stderrors.New("unknown trigger type"),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, renderEvaluations(&buf, evs))

	out := buf.String()
	assert.Contains(t, out, "cust-1")
	assert.Contains(t, out, "cooldown")
	assert.Contains(t, out, "trig-2")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a b c", truncate("a\n  b\tc", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

// templateTable is one stored template that can be read and toggled.
type templateTable struct {
	tpl   models.NotificationTemplate
	reads int
}

func (f *templateTable) GetActiveTemplate(ctx context.Context, notificationType string, channel models.Channel) (*models.NotificationTemplate, error) {
	f.reads++
	if notificationType != f.tpl.NotificationType || channel != f.tpl.Channel || !f.tpl.IsActive {
		return nil, errors.NewTemplateNotFoundError(notificationType, string(channel))
	}
	t := f.tpl
	return &t, nil
}

func (f *templateTable) SetTemplateActive(ctx context.Context, notificationType string, channel models.Channel, active bool, at time.Time) error {
	if notificationType != f.tpl.NotificationType || channel != f.tpl.Channel {
		return errors.NewTemplateNotFoundError(notificationType, string(channel))
	}
	f.tpl.IsActive = active
	f.tpl.UpdatedAt = at
	return nil
}

func TestSetTemplateActive_DeactivationSkipsCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	table := &templateTable{tpl: models.NotificationTemplate{
		ID: "tpl-1", NotificationType: "picked_up", Channel: models.ChannelSMS, Message: "Hi {customerName}", IsActive: true,
	}}
	cache := store.NewCachedTemplates(table, rdb, time.Hour, logger.NewTestLogger(t))
	ctx := context.Background()

	_, err := cache.GetActiveTemplate(ctx, "picked_up", models.ChannelSMS)
	require.NoError(t, err)
	require.True(t, mr.Exists("notification_template:picked_up:sms"))

	require.NoError(t, setTemplateActive(ctx, table, cache, "picked_up", models.ChannelSMS, false, time.Now()))
	assert.False(t, mr.Exists("notification_template:picked_up:sms"))

	_, err = cache.GetActiveTemplate(ctx, "picked_up", models.ChannelSMS)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTemplateNotFound))
	assert.Equal(t, 2, table.reads)
}

func TestSetTemplateActive_UnknownTemplate(t *testing.T) {
	table := &templateTable{tpl: models.NotificationTemplate{NotificationType: "picked_up", Channel: models.ChannelSMS}}
	cache := &fakeCache{}

	err := setTemplateActive(context.Background(), table, cache, "broadcast", models.ChannelSMS, true, time.Now())
	assert.True(t, errors.IsCode(err, errors.ErrCodeTemplateNotFound))
	assert.Empty(t, cache.keys)
}
