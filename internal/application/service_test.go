package application_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/kaju0475/samduk/internal/adapters/memory"
	"github.com/kaju0475/samduk/internal/adapters/security"
	"github.com/kaju0475/samduk/internal/application"
	"github.com/kaju0475/samduk/internal/domain"
	"github.com/kaju0475/samduk/internal/ports"
)

type fixture struct {
	svc   *application.Service
	repos *memory.Repositories
	actor application.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := memory.NewRepositories()
	signer, err := security.NewJWTSigner("test-secret")
	if err != nil {
		t.Fatalf("init signer: %v", err)
	}
	svc := application.NewService(application.Dependencies{
		Cylinders: repos.Cylinders,
		History:   repos.History,
		Commits:   memory.NewCommitter(repos.Cylinders, repos.History),
		Customers: repos.Customers,
		Users:     repos.Users,
		Sessions:  memory.NewSessionStore(),
		QRTokens:  memory.NewQRTokenStore(),
		Hasher:    security.NewBcryptHasher(4),
		Signer:    signer,
	})
	return &fixture{
		svc:   svc,
		repos: repos,
		actor: application.Actor{UserID: "user-1", Username: "worker", Role: domain.RoleWorker, SessionID: "sess-1"},
	}
}

func (f *fixture) createCylinder(t *testing.T, serial string) domain.Cylinder {
	t.Helper()
	c, err := f.svc.CreateCylinder(context.Background(), f.actor, application.CreateCylinderInput{
		SerialNumber: serial,
		GasType:      "O2",
	})
	if err != nil {
		t.Fatalf("create cylinder %s: %v", serial, err)
	}
	return c
}

func (f *fixture) createCustomer(t *testing.T, name string) domain.Customer {
	t.Helper()
	c, err := f.svc.CreateCustomer(context.Background(), application.CreateCustomerInput{Name: name})
	if err != nil {
		t.Fatalf("create customer %s: %v", name, err)
	}
	return c
}

func (f *fixture) work(t *testing.T, action string, customerID string, ids ...string) application.BatchResult {
	t.Helper()
	res, err := f.svc.ProcessWork(context.Background(), f.actor, application.WorkInput{
		Action:      action,
		CylinderIDs: ids,
		CustomerID:  customerID,
	})
	if err != nil {
		t.Fatalf("process %s: %v", action, err)
	}
	return res
}

func TestChargingFlowRecordsHistory(t *testing.T) {
	f := newFixture(t)
	cyl := f.createCylinder(t, "SN-1")
	if cyl.Status != domain.StatusEmpty {
		t.Fatalf("new cylinder should be EMPTY, got %s", cyl.Status)
	}

	res := f.work(t, "START", "", cyl.ID)
	if !res.Processed || res.Cylinders[0].Status != domain.StatusCharging {
		t.Fatalf("START outcome wrong: %+v", res)
	}

	res = f.work(t, "COMPLETE", "", cyl.ID)
	if !res.Processed || res.Cylinders[0].Status != domain.StatusFull {
		t.Fatalf("COMPLETE outcome wrong: %+v", res)
	}

	events, err := f.svc.QueryHistory(context.Background(), application.HistoryQueryInput{CylinderIDs: []string{cyl.ID}})
	if err != nil {
		t.Fatalf("query history: %v", err)
	}
	var actions []domain.Action
	for _, ev := range events {
		actions = append(actions, ev.Action)
	}
	want := []domain.Action{domain.ActionCreate, domain.ActionStart, domain.ActionComplete}
	if !reflect.DeepEqual(actions, want) {
		t.Fatalf("history actions = %v, want %v", actions, want)
	}

	if err := f.svc.VerifyLedger(context.Background(), cyl.ID); err != nil {
		t.Fatalf("ledger replay diverged: %v", err)
	}
}

func TestCompleteWithoutStartRejectedWithoutEvent(t *testing.T) {
	f := newFixture(t)
	cyl := f.createCylinder(t, "SN-1")

	res := f.work(t, "COMPLETE", "", cyl.ID)
	if res.Processed {
		t.Fatal("batch with a rejected item must report processed=false")
	}
	if res.Cylinders[0].ErrorCode != "INVALID_TRANSITION" {
		t.Fatalf("want INVALID_TRANSITION, got %+v", res.Cylinders[0])
	}

	got, err := f.svc.GetCylinder(context.Background(), cyl.ID)
	if err != nil {
		t.Fatalf("get cylinder: %v", err)
	}
	if got.Status != domain.StatusEmpty {
		t.Fatalf("status must be unchanged, got %s", got.Status)
	}
	events, _ := f.svc.QueryHistory(context.Background(), application.HistoryQueryInput{CylinderIDs: []string{cyl.ID}})
	if len(events) != 1 {
		t.Fatalf("rejection must append no event, ledger has %d entries", len(events))
	}
}

func TestDeliveryAndCollectionRoundTrip(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t, "한빛의료원")
	a := f.createCylinder(t, "SN-A")
	b := f.createCylinder(t, "SN-B")

	res := f.work(t, "DELIVERY", customer.ID, a.ID, b.ID)
	if !res.Processed {
		t.Fatalf("delivery should succeed: %+v", res)
	}
	if res.CustomerID != customer.ID {
		t.Fatalf("customer must be echoed, got %q", res.CustomerID)
	}
	if len(res.Cylinders) != 2 {
		t.Fatalf("want 2 items, got %d", len(res.Cylinders))
	}
	for _, item := range res.Cylinders {
		if item.Status != domain.StatusDelivered {
			t.Fatalf("item %s not delivered: %+v", item.CylinderID, item)
		}
	}

	delivered, _ := f.svc.GetCylinder(context.Background(), a.ID)
	if delivered.CustomerID != customer.ID || delivered.Location != customer.ID {
		t.Fatalf("delivered cylinder must record its holder: %+v", delivered)
	}

	res = f.work(t, "COLLECTION", customer.ID, a.ID, b.ID)
	if !res.Processed {
		t.Fatalf("collection should succeed: %+v", res)
	}
	for _, item := range res.Cylinders {
		if item.Status != domain.StatusEmpty {
			t.Fatalf("collected cylinder must be EMPTY: %+v", item)
		}
	}
	collected, _ := f.svc.GetCylinder(context.Background(), a.ID)
	if collected.CustomerID != "" || collected.Location != application.FactoryLocation {
		t.Fatalf("collected cylinder must return to factory: %+v", collected)
	}
}

func TestCollectionByWrongCustomerRejected(t *testing.T) {
	f := newFixture(t)
	owner := f.createCustomer(t, "cust-owner")
	other := f.createCustomer(t, "cust-other")
	cyl := f.createCylinder(t, "SN-1")

	f.work(t, "DELIVERY", owner.ID, cyl.ID)
	res := f.work(t, "COLLECTION", other.ID, cyl.ID)
	if res.Processed || res.Cylinders[0].ErrorCode != "INVALID_TRANSITION" {
		t.Fatalf("collection by wrong customer must be rejected: %+v", res)
	}
}

func TestDuplicateIDsRejectedWholesale(t *testing.T) {
	f := newFixture(t)
	cyl := f.createCylinder(t, "SN-1")

	_, err := f.svc.ProcessWork(context.Background(), f.actor, application.WorkInput{
		Action:      "START",
		CylinderIDs: []string{cyl.ID, cyl.ID},
	})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("want ErrInvalidRequest, got %v", err)
	}

	got, _ := f.svc.GetCylinder(context.Background(), cyl.ID)
	if got.Status != domain.StatusEmpty {
		t.Fatalf("no mutation may occur, status=%s", got.Status)
	}
	events, _ := f.svc.QueryHistory(context.Background(), application.HistoryQueryInput{CylinderIDs: []string{cyl.ID}})
	if len(events) != 1 {
		t.Fatalf("no event may be appended, ledger has %d entries", len(events))
	}
}

func TestAliasedIDAndSerialRejectedWholesale(t *testing.T) {
	f := newFixture(t)
	cyl := f.createCylinder(t, "SN-42")

	// The id and the serial number name the same cylinder; the batch must be
	// rejected before either entry mutates anything.
	_, err := f.svc.ProcessWork(context.Background(), f.actor, application.WorkInput{
		Action:      "START",
		CylinderIDs: []string{cyl.ID, "SN-42"},
	})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("want ErrInvalidRequest, got %v", err)
	}

	got, _ := f.svc.GetCylinder(context.Background(), cyl.ID)
	if got.Status != domain.StatusEmpty {
		t.Fatalf("no mutation may occur, status=%s", got.Status)
	}
	events, _ := f.svc.QueryHistory(context.Background(), application.HistoryQueryInput{CylinderIDs: []string{cyl.ID}})
	if len(events) != 1 {
		t.Fatalf("no event may be appended, ledger has %d entries", len(events))
	}
}

func TestCreateRejectsOutOfFactoryStatus(t *testing.T) {
	f := newFixture(t)
	for _, status := range []string{"DELIVERED", "UNDER_INSPECTION", "DISPOSED"} {
		_, err := f.svc.CreateCylinder(context.Background(), f.actor, application.CreateCylinderInput{
			SerialNumber: "SN-" + status,
			Status:       status,
		})
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Fatalf("status %s: want ErrInvalidRequest, got %v", status, err)
		}
	}
	if _, err := f.svc.CreateCylinder(context.Background(), f.actor, application.CreateCylinderInput{
		SerialNumber: "SN-FULL",
		Status:       "FULL",
	}); err != nil {
		t.Fatalf("in-factory status must be accepted: %v", err)
	}
}

func TestBatchContinuesPastFailures(t *testing.T) {
	f := newFixture(t)
	ready := f.createCylinder(t, "SN-READY")
	charging := f.createCylinder(t, "SN-CHARGING")
	f.work(t, "START", "", charging.ID)

	res := f.work(t, "START", "", charging.ID, ready.ID, "no-such-id")
	if res.Processed {
		t.Fatal("processed must be false when any item fails")
	}
	byID := map[string]application.WorkItemResult{}
	for _, item := range res.Cylinders {
		byID[item.CylinderID] = item
	}
	if byID[ready.ID].Status != domain.StatusCharging {
		t.Fatalf("healthy item must still be applied: %+v", byID[ready.ID])
	}
	if byID[charging.ID].ErrorCode != "INVALID_TRANSITION" {
		t.Fatalf("already-charging item: %+v", byID[charging.ID])
	}
	if byID["no-such-id"].ErrorCode != "NOT_FOUND" {
		t.Fatalf("unknown id: %+v", byID["no-such-id"])
	}
}

func TestDuplicateSerialNumberConflicts(t *testing.T) {
	f := newFixture(t)
	f.createCylinder(t, "SN-1")
	_, err := f.svc.CreateCylinder(context.Background(), f.actor, application.CreateCylinderInput{SerialNumber: "SN-1"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
}

func TestSoftDeleteFreesSerialAndBlocksWork(t *testing.T) {
	f := newFixture(t)
	cyl := f.createCylinder(t, "SN-1")

	deleted, err := f.svc.DeleteCylinder(context.Background(), f.actor, cyl.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted.Deleted || deleted.DeletedAt == nil {
		t.Fatalf("delete must set the flag: %+v", deleted)
	}

	res := f.work(t, "START", "", cyl.ID)
	if res.Processed || res.Cylinders[0].ErrorCode != "GONE" {
		t.Fatalf("work on deleted cylinder must be GONE: %+v", res)
	}

	// The serial is free for a new cylinder; the old row survives for history.
	if _, err := f.svc.CreateCylinder(context.Background(), f.actor, application.CreateCylinderInput{SerialNumber: "SN-1"}); err != nil {
		t.Fatalf("serial must be reusable after soft delete: %v", err)
	}
	events, _ := f.svc.QueryHistory(context.Background(), application.HistoryQueryInput{CylinderIDs: []string{cyl.ID}})
	if len(events) != 2 {
		t.Fatalf("deleted cylinder keeps its ledger, got %d events", len(events))
	}
}

func TestUpdatePatchesFieldsOnly(t *testing.T) {
	f := newFixture(t)
	cyl := f.createCylinder(t, "SN-1")

	gasType := "CO2"
	memo := "repainted"
	updated, err := f.svc.UpdateCylinder(context.Background(), f.actor, application.UpdateCylinderInput{
		ID:    cyl.ID,
		Patch: ports.CylinderPatch{GasType: &gasType, Memo: &memo},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.GasType != "CO2" || updated.Memo != "repainted" {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if updated.SerialNumber != "SN-1" || updated.Status != domain.StatusEmpty {
		t.Fatalf("untouched fields must survive: %+v", updated)
	}

	events, _ := f.svc.QueryHistory(context.Background(), application.HistoryQueryInput{
		CylinderIDs: []string{cyl.ID},
		Action:      "UPDATE",
	})
	if len(events) != 1 {
		t.Fatalf("update must leave one UPDATE marker, got %d", len(events))
	}
}

func TestWorkBySerialNumber(t *testing.T) {
	f := newFixture(t)
	cyl := f.createCylinder(t, "SN-42")
	res := f.work(t, "START", "", "SN-42")
	if !res.Processed {
		t.Fatalf("work by serial must resolve: %+v", res)
	}
	if res.Cylinders[0].CylinderID != cyl.ID {
		t.Fatalf("result must carry the canonical id, got %s", res.Cylinders[0].CylinderID)
	}
}

func TestLongTermReportIdempotent(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t, "cust")
	a := f.createCylinder(t, "SN-A")
	b := f.createCylinder(t, "SN-B")
	f.work(t, "START", "", a.ID)
	f.work(t, "COMPLETE", "", a.ID)
	f.work(t, "DELIVERY", customer.ID, a.ID)
	f.work(t, "START", "", b.ID)

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.WithNow(func() time.Time { return fixed })

	first, err := f.svc.LongTermReport(context.Background())
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	second, err := f.svc.LongTermReport(context.Background())
	if err != nil {
		t.Fatalf("report again: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("report not idempotent:\n%+v\n%+v", first, second)
	}

	if first.TotalCylinders != 2 {
		t.Fatalf("want 2 cylinders, got %d", first.TotalCylinders)
	}
	if first.TotalsByStatus[domain.StatusDelivered] != 1 || first.TotalsByStatus[domain.StatusCharging] != 1 {
		t.Fatalf("status totals wrong: %+v", first.TotalsByStatus)
	}
	if first.TotalsByAction[domain.ActionStart] != 2 || first.TotalsByAction[domain.ActionCreate] != 2 {
		t.Fatalf("action totals wrong: %+v", first.TotalsByAction)
	}
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	customer := f.createCustomer(t, "cust")
	a := f.createCylinder(t, "SN-A")
	b := f.createCylinder(t, "SN-B")
	f.createCylinder(t, "SN-C")
	f.work(t, "START", "", a.ID)
	f.work(t, "DELIVERY", customer.ID, b.ID)

	stats, err := f.svc.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := application.DashboardStats{Standby: 1, Charging: 1, Delivered: 1, Total: 3}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
}

func TestUnknownCustomerFailsBeforeMutation(t *testing.T) {
	f := newFixture(t)
	cyl := f.createCylinder(t, "SN-1")
	_, err := f.svc.ProcessWork(context.Background(), f.actor, application.WorkInput{
		Action:      "DELIVERY",
		CylinderIDs: []string{cyl.ID},
		CustomerID:  "cust_missing",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	got, _ := f.svc.GetCylinder(context.Background(), cyl.ID)
	if got.Status != domain.StatusEmpty {
		t.Fatalf("no mutation may occur, status=%s", got.Status)
	}
}

func TestConcurrentTransitionsKeepLedgerConsistent(t *testing.T) {
	f := newFixture(t)
	ids := make([]string, 8)
	for i := range ids {
		ids[i] = f.createCylinder(t, "SN-"+string(rune('A'+i))).ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			f.svc.ProcessWork(context.Background(), f.actor, application.WorkInput{Action: "START", CylinderIDs: []string{id}})
			f.svc.ProcessWork(context.Background(), f.actor, application.WorkInput{Action: "COMPLETE", CylinderIDs: []string{id}})
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		got, err := f.svc.GetCylinder(context.Background(), id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if got.Status != domain.StatusFull {
			t.Fatalf("cylinder %s should be FULL, got %s", id, got.Status)
		}
		if err := f.svc.VerifyLedger(context.Background(), id); err != nil {
			t.Fatalf("ledger diverged for %s: %v", id, err)
		}
	}
}
