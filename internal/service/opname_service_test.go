package service

import (
	"errors"
	"testing"

	"go-apotek-pos/internal/model"
	"go-apotek-pos/internal/repository"
	"go-apotek-pos/internal/webhook"
)

func newOpnameFixture() (*memProductRepo, *memOpnameRepo, OpnameService) {
	products := newMemProductRepo()
	opnames := newMemOpnameRepo(products)
	svc := NewOpnameService(opnames, products, &memSettingsRepo{}, newTestHub(), webhook.NewDispatcher())
	return products, opnames, svc
}

func TestParseCountedStock(t *testing.T) {
	cases := []struct {
		raw     string
		want    int
		wantNil bool
		wantErr bool
	}{
		{raw: "", wantNil: true},
		{raw: "0", want: 0},
		{raw: "7", want: 7},
		{raw: "045", want: 45},
		{raw: "-3", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "1.5", wantErr: true},
		{raw: " 5", wantErr: true},
		{raw: "+5", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseCountedStock(tc.raw)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidCount) {
				t.Errorf("ParseCountedStock(%q) error = %v, want ErrInvalidCount", tc.raw, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCountedStock(%q) unexpected error: %v", tc.raw, err)
			continue
		}
		if tc.wantNil {
			if got != nil {
				t.Errorf("ParseCountedStock(%q) = %d, want nil", tc.raw, *got)
			}
			continue
		}
		if got == nil || *got != tc.want {
			t.Errorf("ParseCountedStock(%q) = %v, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestStartSessionSnapshotsEveryProduct(t *testing.T) {
	products, _, svc := newOpnameFixture()
	p1 := products.add("Paracetamol", 5000, 50)
	p2 := products.add("Amoxicillin", 12000, 30)
	p3 := products.add("Vitamin C", 8000, 0)

	session, err := svc.StartSession("monthly count", "user-1", "Admin")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	if session.Status != model.OpnameInProgress {
		t.Errorf("status = %s, want %s", session.Status, model.OpnameInProgress)
	}
	if session.TotalItems != 3 {
		t.Errorf("total_items = %d, want 3", session.TotalItems)
	}
	if session.Code == "" {
		t.Error("session code is empty")
	}

	items, err := svc.GetSessionItems(session.ID)
	if err != nil {
		t.Fatalf("GetSessionItems: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}

	wantStock := map[string]int{
		p1.ID.String(): 50,
		p2.ID.String(): 30,
		p3.ID.String(): 0,
	}
	for _, item := range items {
		if item.CountedStock != nil {
			t.Errorf("item %s starts counted, want uncounted", item.ProductID)
		}
		if got := wantStock[item.ProductID.String()]; item.SystemStock != got {
			t.Errorf("system_stock for %s = %d, want %d", item.ProductID, item.SystemStock, got)
		}
	}
}

func TestStartSessionRejectsSecondActive(t *testing.T) {
	products, _, svc := newOpnameFixture()
	products.add("Paracetamol", 5000, 50)

	if _, err := svc.StartSession("", "user-1", "Admin"); err != nil {
		t.Fatalf("first StartSession: %v", err)
	}
	if _, err := svc.StartSession("", "user-1", "Admin"); !errors.Is(err, ErrSessionActive) {
		t.Errorf("second StartSession error = %v, want ErrSessionActive", err)
	}
}

func TestStartSessionWithoutProducts(t *testing.T) {
	_, _, svc := newOpnameFixture()
	if _, err := svc.StartSession("", "user-1", "Admin"); !errors.Is(err, ErrNoProducts) {
		t.Errorf("StartSession error = %v, want ErrNoProducts", err)
	}
}

func TestRecordCountValidatesInput(t *testing.T) {
	products, opnames, svc := newOpnameFixture()
	products.add("Paracetamol", 5000, 50)

	session, err := svc.StartSession("", "user-1", "Admin")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	items, _ := opnames.FindItems(session.ID)
	itemID := items[0].ID

	for _, raw := range []string{"-3", "abc", "1,5"} {
		if _, err := svc.RecordCount(itemID, raw, "user-1"); !errors.Is(err, ErrInvalidCount) {
			t.Errorf("RecordCount(%q) error = %v, want ErrInvalidCount", raw, err)
		}
	}

	item, err := svc.RecordCount(itemID, "45", "user-1")
	if err != nil {
		t.Fatalf("RecordCount(45): %v", err)
	}
	if item.CountedStock == nil || *item.CountedStock != 45 {
		t.Errorf("counted_stock = %v, want 45", item.CountedStock)
	}

	// Empty input clears the line back to uncounted.
	item, err = svc.RecordCount(itemID, "", "user-1")
	if err != nil {
		t.Fatalf("RecordCount(empty): %v", err)
	}
	if item.CountedStock != nil {
		t.Errorf("counted_stock = %v, want nil after clearing", item.CountedStock)
	}
}

func TestRecordCountRejectsFinishedSession(t *testing.T) {
	products, opnames, svc := newOpnameFixture()
	products.add("Paracetamol", 5000, 50)

	session, _ := svc.StartSession("", "user-1", "Admin")
	items, _ := opnames.FindItems(session.ID)

	if _, err := svc.CancelSession(session.ID, "user-1"); err != nil {
		t.Fatalf("CancelSession: %v", err)
	}
	if _, err := svc.RecordCount(items[0].ID, "10", "user-1"); !errors.Is(err, ErrSessionNotOpen) {
		t.Errorf("RecordCount on cancelled session error = %v, want ErrSessionNotOpen", err)
	}
}

func TestFinalizeRejectsUncountedItems(t *testing.T) {
	products, opnames, svc := newOpnameFixture()
	p1 := products.add("Paracetamol", 5000, 50)
	products.add("Amoxicillin", 12000, 30)

	session, _ := svc.StartSession("", "user-1", "Admin")
	items, _ := opnames.FindItems(session.ID)

	// Only one of two lines counted.
	if _, err := svc.RecordCount(items[0].ID, "45", "user-1"); err != nil {
		t.Fatalf("RecordCount: %v", err)
	}

	if _, err := svc.FinalizeSession(session.ID, "user-1", "Admin"); !errors.Is(err, ErrUncountedItems) {
		t.Fatalf("FinalizeSession error = %v, want ErrUncountedItems", err)
	}

	// Nothing may have been written.
	if got := products.stockOf(p1.ID); got != 50 {
		t.Errorf("stock after rejected finalize = %d, want 50", got)
	}
	if len(opnames.logs) != 0 {
		t.Errorf("inventory logs = %d, want 0", len(opnames.logs))
	}
	stored, _ := opnames.FindByID(session.ID)
	if stored.Status != model.OpnameInProgress {
		t.Errorf("status = %s, want still %s", stored.Status, model.OpnameInProgress)
	}
}

func TestFinalizeWithoutDifferences(t *testing.T) {
	products, opnames, svc := newOpnameFixture()
	p1 := products.add("Paracetamol", 5000, 50)
	p2 := products.add("Amoxicillin", 12000, 30)

	session, _ := svc.StartSession("", "user-1", "Admin")
	items, _ := opnames.FindItems(session.ID)
	for _, item := range items {
		raw := "50"
		if item.ProductID == p2.ID {
			raw = "30"
		}
		if _, err := svc.RecordCount(item.ID, raw, "user-1"); err != nil {
			t.Fatalf("RecordCount: %v", err)
		}
	}

	result, err := svc.FinalizeSession(session.ID, "user-1", "Admin")
	if err != nil {
		t.Fatalf("FinalizeSession: %v", err)
	}

	if result.Status != model.OpnameCompleted {
		t.Errorf("status = %s, want %s", result.Status, model.OpnameCompleted)
	}
	if result.TotalAdjusted != 0 || result.TotalDifference != 0 {
		t.Errorf("totals = (%d, %d), want (0, 0)", result.TotalAdjusted, result.TotalDifference)
	}
	if result.CompletedAt == nil {
		t.Error("completed_at not set")
	}
	if len(opnames.logs) != 0 {
		t.Errorf("inventory logs = %d, want 0 when nothing differs", len(opnames.logs))
	}
	if products.stockOf(p1.ID) != 50 || products.stockOf(p2.ID) != 30 {
		t.Error("product stock changed on a zero-difference finalize")
	}
}

func TestFinalizeAppliesAdjustments(t *testing.T) {
	products, opnames, svc := newOpnameFixture()
	p1 := products.add("Paracetamol", 5000, 50)  // counted 45, shrinkage of 5
	p2 := products.add("Amoxicillin", 12000, 30) // counted 30, no change
	p3 := products.add("Vitamin C", 8000, 10)    // counted 12, surplus of 2

	session, _ := svc.StartSession("", "user-1", "Admin")
	items, _ := opnames.FindItems(session.ID)
	counts := map[string]string{
		p1.ID.String(): "45",
		p2.ID.String(): "30",
		p3.ID.String(): "12",
	}
	for _, item := range items {
		if _, err := svc.RecordCount(item.ID, counts[item.ProductID.String()], "user-1"); err != nil {
			t.Fatalf("RecordCount: %v", err)
		}
	}

	result, err := svc.FinalizeSession(session.ID, "user-1", "Admin")
	if err != nil {
		t.Fatalf("FinalizeSession: %v", err)
	}

	if result.TotalAdjusted != 2 {
		t.Errorf("total_adjusted = %d, want 2", result.TotalAdjusted)
	}
	if result.TotalDifference != 7 {
		t.Errorf("total_difference = %d, want 7", result.TotalDifference)
	}

	if got := products.stockOf(p1.ID); got != 45 {
		t.Errorf("p1 stock = %d, want 45", got)
	}
	if got := products.stockOf(p2.ID); got != 30 {
		t.Errorf("p2 stock = %d, want 30", got)
	}
	if got := products.stockOf(p3.ID); got != 12 {
		t.Errorf("p3 stock = %d, want 12", got)
	}

	// One adjustment log per changed product, none for the matching line.
	if len(opnames.logs) != 2 {
		t.Fatalf("inventory logs = %d, want 2", len(opnames.logs))
	}
	for _, logRow := range opnames.logs {
		if logRow.Type != model.LogAdjustment {
			t.Errorf("log type = %s, want %s", logRow.Type, model.LogAdjustment)
		}
		if logRow.Reference != result.Code {
			t.Errorf("log reference = %s, want %s", logRow.Reference, result.Code)
		}
		switch logRow.ProductID {
		case p1.ID:
			if logRow.PreviousStock != 50 || logRow.CurrentStock != 45 || logRow.Quantity != 5 {
				t.Errorf("p1 log = prev %d cur %d qty %d, want 50/45/5",
					logRow.PreviousStock, logRow.CurrentStock, logRow.Quantity)
			}
		case p3.ID:
			if logRow.PreviousStock != 10 || logRow.CurrentStock != 12 || logRow.Quantity != 2 {
				t.Errorf("p3 log = prev %d cur %d qty %d, want 10/12/2",
					logRow.PreviousStock, logRow.CurrentStock, logRow.Quantity)
			}
		default:
			t.Errorf("unexpected log for product %s", logRow.ProductID)
		}
	}
}

func TestFinalizeTwiceFails(t *testing.T) {
	products, opnames, svc := newOpnameFixture()
	products.add("Paracetamol", 5000, 50)

	session, _ := svc.StartSession("", "user-1", "Admin")
	items, _ := opnames.FindItems(session.ID)
	if _, err := svc.RecordCount(items[0].ID, "50", "user-1"); err != nil {
		t.Fatalf("RecordCount: %v", err)
	}
	if _, err := svc.FinalizeSession(session.ID, "user-1", "Admin"); err != nil {
		t.Fatalf("first FinalizeSession: %v", err)
	}
	if _, err := svc.FinalizeSession(session.ID, "user-1", "Admin"); !errors.Is(err, ErrSessionFinished) {
		t.Errorf("second FinalizeSession error = %v, want ErrSessionFinished", err)
	}
}

func TestFinalizeStatusGuardBlocksRacingWriter(t *testing.T) {
	products, opnames, svc := newOpnameFixture()
	p := products.add("Paracetamol", 5000, 50)

	session, _ := svc.StartSession("", "user-1", "Admin")
	items, _ := opnames.FindItems(session.ID)
	if _, err := svc.RecordCount(items[0].ID, "45", "user-1"); err != nil {
		t.Fatalf("RecordCount: %v", err)
	}

	first, err := svc.FinalizeSession(session.ID, "user-1", "Admin")
	if err != nil {
		t.Fatalf("FinalizeSession: %v", err)
	}
	logsAfterFirst := len(opnames.logs)

	// A second writer that passed its status check before the first commit
	// hits the conditional closing update and must not append anything.
	err = opnames.Finalize(first, []repository.StockAdjustment{
		{ProductID: p.ID, PreviousStock: 50, NewStock: 40},
	})
	if !errors.Is(err, repository.ErrSessionClosed) {
		t.Fatalf("second Finalize error = %v, want ErrSessionClosed", err)
	}
	if len(opnames.logs) != logsAfterFirst {
		t.Errorf("logs = %d, want %d (no duplicate adjustments)", len(opnames.logs), logsAfterFirst)
	}
	if got := products.stockOf(p.ID); got != 45 {
		t.Errorf("stock = %d, want 45", got)
	}
}

func TestCancelUnblocksNextSession(t *testing.T) {
	products, _, svc := newOpnameFixture()
	products.add("Paracetamol", 5000, 50)

	session, _ := svc.StartSession("", "user-1", "Admin")
	cancelled, err := svc.CancelSession(session.ID, "user-1")
	if err != nil {
		t.Fatalf("CancelSession: %v", err)
	}
	if cancelled.Status != model.OpnameCancelled {
		t.Errorf("status = %s, want %s", cancelled.Status, model.OpnameCancelled)
	}

	if _, err := svc.StartSession("", "user-1", "Admin"); err != nil {
		t.Errorf("StartSession after cancel: %v", err)
	}

	if _, err := svc.CancelSession(session.ID, "user-1"); !errors.Is(err, ErrSessionFinished) {
		t.Errorf("cancelling twice error = %v, want ErrSessionFinished", err)
	}
}
