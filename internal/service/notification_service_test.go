package service_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/newslens/alignment-notifier/internal/domain"
	"github.com/newslens/alignment-notifier/internal/push"
	"github.com/newslens/alignment-notifier/internal/repository"
	"github.com/newslens/alignment-notifier/internal/service"
)

func newService() (*service.NotificationService, *repository.MockNotificationRepository, *repository.MockSubscriberRepository, *push.MockProvider) {
	repo := repository.NewMockNotificationRepository()
	subs := repository.NewMockSubscriberRepository()
	prov := push.NewMockProvider()
	svc := service.NewNotificationService(repo, subs, prov, nil, zap.NewNop())
	return svc, repo, subs, prov
}

func strPtr(s string) *string { return &s }

var validEvent = domain.AlignmentChangeEvent{
	SourceID:   "source-1",
	SourceName: "The Daily Ledger",
	OldScore:   -2,
	NewScore:   1,
	OldLabel:   strPtr("left"),
	NewLabel:   "lean right",
	Reason:     "Admin update",
}

func pendingRecord(id, userID string) *domain.NotificationRecord {
	return &domain.NotificationRecord{
		ID:           id,
		UserID:       userID,
		SourceID:     validEvent.SourceID,
		SourceName:   validEvent.SourceName,
		OldScore:     validEvent.OldScore,
		NewScore:     validEvent.NewScore,
		OldLabel:     validEvent.OldLabel,
		NewLabel:     validEvent.NewLabel,
		ChangeReason: validEvent.Reason,
		Status:       domain.StatusPending,
	}
}

func TestQueueAlignmentChange_DefaultEnabledPolicy(t *testing.T) {
	svc, repo, subs, _ := newService()
	ctx := context.Background()

	// user-1 explicitly enabled, user-2 explicitly disabled,
	// user-3 has no preference row at all.
	subs.Followers["source-1"] = []domain.Follower{
		{UserID: "user-1"}, {UserID: "user-2"}, {UserID: "user-3"},
	}
	subs.Preferences = []domain.NotificationPreference{
		{UserID: "user-1", AlignmentChanges: true},
		{UserID: "user-2", AlignmentChanges: false},
	}

	queued, err := svc.QueueAlignmentChange(ctx, validEvent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queued != 2 {
		t.Fatalf("expected 2 queued, got %d", queued)
	}

	records := repo.Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	gotUsers := map[string]bool{}
	for _, n := range records {
		gotUsers[n.UserID] = true
		if n.Status != domain.StatusPending {
			t.Fatalf("expected status=pending, got %s", n.Status)
		}
		if n.ID == "" {
			t.Fatal("expected a generated record ID")
		}
		if n.SourceName != "The Daily Ledger" || n.NewLabel != "lean right" {
			t.Fatalf("event fields not copied through: %+v", n)
		}
		if n.OldLabel == nil || *n.OldLabel != "left" {
			t.Fatalf("expected old label snapshot, got %v", n.OldLabel)
		}
	}
	if !gotUsers["user-1"] || !gotUsers["user-3"] {
		t.Fatalf("expected records for user-1 and user-3, got %v", gotUsers)
	}
}

func TestQueueAlignmentChange_NoFollowers(t *testing.T) {
	svc, repo, _, _ := newService()

	queued, err := svc.QueueAlignmentChange(context.Background(), validEvent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queued != 0 {
		t.Fatalf("expected 0 queued, got %d", queued)
	}
	if repo.InsertManyCalls != 0 {
		t.Fatalf("expected no insert call, got %d", repo.InsertManyCalls)
	}
}

func TestQueueAlignmentChange_AllDisabled(t *testing.T) {
	svc, repo, subs, _ := newService()

	subs.Followers["source-1"] = []domain.Follower{{UserID: "user-1"}, {UserID: "user-2"}}
	subs.Preferences = []domain.NotificationPreference{
		{UserID: "user-1", AlignmentChanges: false},
		{UserID: "user-2", AlignmentChanges: false},
	}

	queued, err := svc.QueueAlignmentChange(context.Background(), validEvent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queued != 0 {
		t.Fatalf("expected 0 queued, got %d", queued)
	}
	if repo.InsertManyCalls != 0 {
		t.Fatalf("expected no insert call, got %d", repo.InsertManyCalls)
	}
}

func TestQueueAlignmentChange_NilOldLabel(t *testing.T) {
	svc, repo, subs, _ := newService()

	subs.Followers["source-1"] = []domain.Follower{{UserID: "user-1"}}

	event := validEvent
	event.OldLabel = nil // first-ever classification

	if _, err := svc.QueueAlignmentChange(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records := repo.Records(); records[0].OldLabel != nil {
		t.Fatalf("expected nil old label, got %v", *records[0].OldLabel)
	}
}

func TestQueueAlignmentChange_InvalidEvent(t *testing.T) {
	svc, _, _, _ := newService()

	bad := validEvent
	bad.Reason = ""
	_, err := svc.QueueAlignmentChange(context.Background(), bad)
	if err != domain.ErrInvalidReason {
		t.Fatalf("expected ErrInvalidReason, got %v", err)
	}
}

func TestQueueAlignmentChange_ErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("db down")

	t.Run("follower lookup", func(t *testing.T) {
		svc, _, subs, _ := newService()
		subs.GetFollowersErr = boom
		if _, err := svc.QueueAlignmentChange(ctx, validEvent); !errors.Is(err, boom) {
			t.Fatalf("expected wrapped lookup error, got %v", err)
		}
	})

	t.Run("preference lookup", func(t *testing.T) {
		svc, _, subs, _ := newService()
		subs.Followers["source-1"] = []domain.Follower{{UserID: "user-1"}}
		subs.GetPreferencesErr = boom
		if _, err := svc.QueueAlignmentChange(ctx, validEvent); !errors.Is(err, boom) {
			t.Fatalf("expected wrapped lookup error, got %v", err)
		}
	})

	t.Run("insert", func(t *testing.T) {
		svc, repo, subs, _ := newService()
		subs.Followers["source-1"] = []domain.Follower{{UserID: "user-1"}}
		repo.InsertManyErr = boom
		if _, err := svc.QueueAlignmentChange(ctx, validEvent); !errors.Is(err, boom) {
			t.Fatalf("expected wrapped insert error, got %v", err)
		}
	})
}

func TestProcessPending_HappyPath(t *testing.T) {
	svc, repo, subs, prov := newService()
	ctx := context.Background()

	repo.Seed(pendingRecord("n-1", "user-1"))
	subs.Devices["user-1"] = []domain.Device{{FCMToken: "tok-1", DeviceType: "ios"}}

	res, err := svc.ProcessPending(ctx, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Sent != 1 || res.Failed != 0 {
		t.Fatalf("expected sent=1 failed=0, got %+v", res)
	}

	if got := repo.Records()[0].Status; got != domain.StatusSent {
		t.Fatalf("expected status=sent, got %s", got)
	}

	deliveries := repo.Deliveries()
	if len(deliveries) != 1 {
		t.Fatalf("expected 1 delivery entry, got %d", len(deliveries))
	}
	if deliveries[0].NotificationID != "n-1" || deliveries[0].DeviceCount != 1 {
		t.Fatalf("unexpected delivery entry: %+v", deliveries[0])
	}

	sent := prov.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 push, got %d", len(sent))
	}
	if sent[0].Device.FCMToken != "tok-1" {
		t.Fatalf("expected push to tok-1, got %s", sent[0].Device.FCMToken)
	}
	if sent[0].Payload.Title != "The Daily Ledger alignment update" {
		t.Fatalf("unexpected payload title: %q", sent[0].Payload.Title)
	}
}

func TestProcessPending_NoPendingRecords(t *testing.T) {
	svc, repo, _, prov := newService()

	res, err := svc.ProcessPending(context.Background(), 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Sent != 0 || res.Failed != 0 {
		t.Fatalf("expected zero result, got %+v", res)
	}
	if len(prov.Sent()) != 0 || len(repo.Deliveries()) != 0 {
		t.Fatal("expected no side effects on an empty queue")
	}
}

func TestProcessPending_PerRecordFailureIsolation(t *testing.T) {
	svc, repo, subs, _ := newService()
	ctx := context.Background()

	repo.Seed(pendingRecord("n-1", "user-bad"))
	repo.Seed(pendingRecord("n-2", "user-good"))

	subs.DeviceErrFor["user-bad"] = errors.New("device table unreachable")
	subs.Devices["user-good"] = []domain.Device{{FCMToken: "tok-2", DeviceType: "android"}}

	res, err := svc.ProcessPending(ctx, 50)
	if err != nil {
		t.Fatalf("expected per-record failure to be contained, got error: %v", err)
	}
	if res.Sent != 1 || res.Failed != 1 {
		t.Fatalf("expected sent=1 failed=1, got %+v", res)
	}

	statuses := map[string]domain.Status{}
	for _, n := range repo.Records() {
		statuses[n.ID] = n.Status
	}
	if statuses["n-1"] != domain.StatusFailed {
		t.Fatalf("expected n-1 failed, got %s", statuses["n-1"])
	}
	if statuses["n-2"] != domain.StatusSent {
		t.Fatalf("expected n-2 sent, got %s", statuses["n-2"])
	}
}

func TestProcessPending_TransportFailure(t *testing.T) {
	svc, repo, subs, prov := newService()

	repo.Seed(pendingRecord("n-1", "user-1"))
	subs.Devices["user-1"] = []domain.Device{{FCMToken: "tok-1", DeviceType: "ios"}}
	prov.SendErr = errors.New("fcm unavailable")

	res, err := svc.ProcessPending(context.Background(), 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Sent != 0 || res.Failed != 1 {
		t.Fatalf("expected sent=0 failed=1, got %+v", res)
	}
	if got := repo.Records()[0].Status; got != domain.StatusFailed {
		t.Fatalf("expected status=failed, got %s", got)
	}
}

func TestProcessPending_AuditInsertFailure(t *testing.T) {
	svc, repo, subs, _ := newService()

	repo.Seed(pendingRecord("n-1", "user-1"))
	subs.Devices["user-1"] = []domain.Device{{FCMToken: "tok-1", DeviceType: "ios"}}
	repo.InsertDeliveryErr = errors.New("deliveries table full")

	res, err := svc.ProcessPending(context.Background(), 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Sent != 0 || res.Failed != 1 {
		t.Fatalf("expected audit failure to fail the record, got %+v", res)
	}
}

func TestProcessPending_DefaultBatchSize(t *testing.T) {
	svc, repo, subs, _ := newService()
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		id := "n-" + string(rune('a'+i/26)) + string(rune('a'+i%26))
		repo.Seed(pendingRecord(id, "user-1"))
	}
	subs.Devices["user-1"] = []domain.Device{{FCMToken: "tok-1", DeviceType: "ios"}}

	// batchSize 0 must behave exactly like the default of 50.
	res, err := svc.ProcessPending(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Sent != service.DefaultDispatchBatchSize {
		t.Fatalf("expected sent=%d, got %d", service.DefaultDispatchBatchSize, res.Sent)
	}

	remaining := 0
	for _, n := range repo.Records() {
		if n.Status == domain.StatusPending {
			remaining++
		}
	}
	if remaining != 10 {
		t.Fatalf("expected 10 records left pending, got %d", remaining)
	}
}

func TestProcessPending_FetchErrorPropagates(t *testing.T) {
	svc, repo, _, _ := newService()
	repo.FindByStatusErr = errors.New("db down")

	if _, err := svc.ProcessPending(context.Background(), 50); err == nil {
		t.Fatal("expected fetch error to propagate")
	}
}

func TestPendingCounts(t *testing.T) {
	svc, repo, _, _ := newService()
	ctx := context.Background()

	repo.Seed(pendingRecord("n-1", "user-1"))
	repo.Seed(pendingRecord("n-2", "user-2"))
	failed := pendingRecord("n-3", "user-3")
	failed.Status = domain.StatusFailed
	repo.Seed(failed)

	counts := svc.PendingCounts(ctx)
	if counts.Pending != 2 || counts.Failed != 1 {
		t.Fatalf("expected pending=2 failed=1, got %+v", counts)
	}
}

func TestPendingCounts_DegradesToZeroOnError(t *testing.T) {
	svc, repo, _, _ := newService()
	repo.Seed(pendingRecord("n-1", "user-1"))
	repo.CountByStatusErr = errors.New("db down")

	counts := svc.PendingCounts(context.Background())
	if counts.Pending != 0 || counts.Failed != 0 {
		t.Fatalf("expected zero-valued counts on error, got %+v", counts)
	}
}

func TestRetryFailed_ResetsBoundedBatch(t *testing.T) {
	svc, repo, _, _ := newService()
	ctx := context.Background()

	failed := pendingRecord("n-1", "user-1")
	failed.Status = domain.StatusFailed
	repo.Seed(failed)

	if n := svc.RetryFailed(ctx, 20); n != 1 {
		t.Fatalf("expected 1 requeued, got %d", n)
	}
	if got := repo.Records()[0].Status; got != domain.StatusPending {
		t.Fatalf("expected status=pending after retry, got %s", got)
	}
}

func TestRetryFailed_NothingToRetry(t *testing.T) {
	svc, repo, _, _ := newService()

	if n := svc.RetryFailed(context.Background(), 20); n != 0 {
		t.Fatalf("expected 0, got %d", n)
	}
	if repo.UpdateStatusManyCalls != 0 {
		t.Fatalf("expected no reset call on an empty sweep, got %d", repo.UpdateStatusManyCalls)
	}
}

func TestRetryFailed_HonoursLimit(t *testing.T) {
	svc, repo, _, _ := newService()
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		n := pendingRecord("n-"+string(rune('a'+i/26))+string(rune('a'+i%26)), "user-1")
		n.Status = domain.StatusFailed
		repo.Seed(n)
	}

	if n := svc.RetryFailed(ctx, 0); n != service.DefaultRetryLimit {
		t.Fatalf("expected default limit of %d, got %d", service.DefaultRetryLimit, n)
	}

	stillFailed := 0
	for _, n := range repo.Records() {
		if n.Status == domain.StatusFailed {
			stillFailed++
		}
	}
	if stillFailed != 10 {
		t.Fatalf("expected 10 records still failed, got %d", stillFailed)
	}
}

func TestRetryFailed_DegradesToZeroOnError(t *testing.T) {
	ctx := context.Background()

	t.Run("fetch error", func(t *testing.T) {
		svc, repo, _, _ := newService()
		repo.FindByStatusErr = errors.New("db down")
		if n := svc.RetryFailed(ctx, 20); n != 0 {
			t.Fatalf("expected 0 on fetch error, got %d", n)
		}
	})

	t.Run("reset error", func(t *testing.T) {
		svc, repo, _, _ := newService()
		failed := pendingRecord("n-1", "user-1")
		failed.Status = domain.StatusFailed
		repo.Seed(failed)
		repo.UpdateStatusManyErr = errors.New("db down")
		if n := svc.RetryFailed(ctx, 20); n != 0 {
			t.Fatalf("expected 0 on reset error, got %d", n)
		}
	})
}
