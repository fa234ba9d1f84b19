package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rentalhub/backend/models"
	"github.com/rentalhub/backend/store"
)

// fakeStore is an in-memory PreferencesStore that records every save.
type fakeStore struct {
	mu      sync.Mutex
	record  *models.Preferences
	saves   []map[string]interface{}
	getErr  error
	saveErr error
}

func (f *fakeStore) Get(ctx context.Context, tenantID string) (*models.Preferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.record == nil {
		return nil, store.ErrNotFound
	}
	rec := *f.record
	return &rec, nil
}

func (f *fakeStore) Save(ctx context.Context, tenantID string, fields map[string]interface{}) (*models.Preferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}

	copied := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	f.saves = append(f.saves, copied)

	var form FormData
	if f.record != nil {
		form = FormDataFromAPI(*f.record)
	}
	for k, v := range fields {
		acc, ok := fieldRegistry[k]
		if !ok {
			continue
		}
		if err := acc.set(&form, v); err != nil {
			return nil, err
		}
	}
	rec := form.ToPreferences()
	rec.UserID = tenantID
	f.record = &rec

	out := rec
	return &out, nil
}

func (f *fakeStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func (f *fakeStore) lastSave() map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saves) == 0 {
		return nil
	}
	return f.saves[len(f.saves)-1]
}

func newTestWizard(t *testing.T, fs *fakeStore, opts ...Option) *Wizard {
	t.Helper()
	opts = append([]Option{WithDebounceDelay(20 * time.Millisecond)}, opts...)
	w := New(fs, ReadySession{}, "tenant-1", opts...)
	if err := w.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return w
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestDebounceCoalescesEdits(t *testing.T) {
	fs := &fakeStore{}
	w := newTestWizard(t, fs)

	if err := w.UpdateField("preferred_address", "old street"); err != nil {
		t.Fatal(err)
	}
	if err := w.UpdateField("preferred_address", "new street"); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool { return fs.saveCount() == 1 })
	// Give a superseded timer a chance to fire wrongly.
	time.Sleep(60 * time.Millisecond)

	if got := fs.saveCount(); got != 1 {
		t.Fatalf("expected exactly 1 save, got %d", got)
	}
	if got := fs.lastSave()["preferred_address"]; got != "new street" {
		t.Fatalf("expected last write to win, got %v", got)
	}
}

func TestSaveSkippedWhenValueUnchanged(t *testing.T) {
	fs := &fakeStore{record: &models.Preferences{UserID: "tenant-1", PreferredAddress: "old street"}}
	w := newTestWizard(t, fs)

	if err := w.UpdateField("preferred_address", "old street"); err != nil {
		t.Fatal(err)
	}
	w.Flush()

	if got := fs.saveCount(); got != 0 {
		t.Fatalf("expected no save for unchanged value, got %d", got)
	}
}

func TestToggleFeatureIsIdempotentPair(t *testing.T) {
	fs := &fakeStore{record: &models.Preferences{UserID: "tenant-1", Amenities: []string{"gym"}}}
	w := newTestWizard(t, fs)

	if err := w.ToggleFeature("amenities", "pool"); err != nil {
		t.Fatal(err)
	}
	if err := w.ToggleFeature("amenities", "pool"); err != nil {
		t.Fatal(err)
	}
	w.Flush()

	if got := w.FormData().Amenities; !stringSetEqual(got, []string{"gym"}) {
		t.Fatalf("expected set restored to original, got %v", got)
	}
	if got := fs.saveCount(); got != 0 {
		t.Fatalf("expected toggle pair to produce no write, got %d saves", got)
	}
}

func TestFirstSaveCreatesRecord(t *testing.T) {
	fs := &fakeStore{}
	w := newTestWizard(t, fs)

	if err := w.UpdateField("min_price", 1200); err != nil {
		t.Fatal(err)
	}
	w.Flush()

	if got := fs.saveCount(); got != 1 {
		t.Fatalf("expected 1 save, got %d", got)
	}
	if fs.record == nil || fs.record.MinPrice != 1200 {
		t.Fatalf("expected record created with min_price, got %+v", fs.record)
	}
}

func TestNextStepFlushesPendingSave(t *testing.T) {
	fs := &fakeStore{}
	w := newTestWizard(t, fs, WithDebounceDelay(time.Hour))

	if err := w.UpdateField("preferred_address", "angel"); err != nil {
		t.Fatal(err)
	}
	w.NextStep()

	if got := fs.saveCount(); got != 1 {
		t.Fatalf("expected navigation to flush the pending save, got %d saves", got)
	}
	if w.Step() != 2 {
		t.Fatalf("expected step 2, got %d", w.Step())
	}
}

func TestStepBounds(t *testing.T) {
	fs := &fakeStore{}
	w := newTestWizard(t, fs)

	w.PrevStep()
	if !w.IsFirstStep() {
		t.Fatalf("expected to stay on first step, got %d", w.Step())
	}

	for i := 0; i < TotalSteps+3; i++ {
		w.NextStep()
	}
	if !w.IsLastStep() {
		t.Fatalf("expected to stop at last step, got %d", w.Step())
	}
}

func TestCompanionFieldsTravelTogether(t *testing.T) {
	fs := &fakeStore{}
	w := newTestWizard(t, fs)

	if err := w.UpdateField("pets", []string{"cat", models.PetTypeOther}); err != nil {
		t.Fatal(err)
	}
	if err := w.UpdateField("pet_custom_type", "ferret"); err != nil {
		t.Fatal(err)
	}
	w.Flush()

	last := fs.lastSave()
	if _, ok := last["pets"]; !ok {
		t.Error("expected pets to travel with pet_custom_type")
	}
	if _, ok := last["pet_custom_type"]; !ok {
		t.Error("expected pet_custom_type in save")
	}
}

func TestAutoSaveFailureIsSwallowed(t *testing.T) {
	fs := &fakeStore{saveErr: errors.New("backend down")}
	w := newTestWizard(t, fs)

	if err := w.UpdateField("preferred_address", "angel"); err != nil {
		t.Fatal(err)
	}
	w.Flush()

	if w.GeneralError() != "" {
		t.Fatalf("auto-save failure must not surface, got %q", w.GeneralError())
	}
	// The in-memory value stays authoritative.
	if got := w.FormData().PreferredAddress; got != "angel" {
		t.Fatalf("expected form value retained, got %q", got)
	}
}

func TestSubmitSendsOnlyDiff(t *testing.T) {
	fs := &fakeStore{record: &models.Preferences{
		UserID:           "tenant-1",
		PreferredAddress: "angel",
		MinPrice:         1000,
		MaxPrice:         2000,
	}}
	w := newTestWizard(t, fs)

	data := w.FormData()
	data.MaxPrice = 2500
	data.Amenities = []string{"gym"}

	if err := w.Submit(context.Background(), data); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if got := fs.saveCount(); got != 1 {
		t.Fatalf("expected 1 save, got %d", got)
	}
	last := fs.lastSave()
	if len(last) != 2 {
		t.Fatalf("expected exactly the 2 changed fields, got %v", last)
	}
	if _, ok := last["max_price"]; !ok {
		t.Error("expected max_price in diff")
	}
	if _, ok := last["amenities"]; !ok {
		t.Error("expected amenities in diff")
	}
}

func TestSubmitDateCoupling(t *testing.T) {
	in := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	out := time.Date(2027, 8, 31, 0, 0, 0, 0, time.UTC)
	fs := &fakeStore{record: &models.Preferences{
		UserID:      "tenant-1",
		MoveInDate:  &in,
		MoveOutDate: &out,
	}}
	w := newTestWizard(t, fs)

	data := w.FormData()
	newIn := in.AddDate(0, 1, 0)
	data.MoveInDate = &newIn

	if err := w.Submit(context.Background(), data); err != nil {
		t.Fatalf("submit: %v", err)
	}

	last := fs.lastSave()
	if _, ok := last["move_in_date"]; !ok {
		t.Error("expected move_in_date in diff")
	}
	if _, ok := last["move_out_date"]; !ok {
		t.Error("expected move_out_date to travel with move_in_date")
	}
}

func TestSubmitIsIdempotent(t *testing.T) {
	fs := &fakeStore{}
	w := newTestWizard(t, fs)

	data := w.FormData()
	data.MinPrice = 900
	data.MaxPrice = 1800

	if err := w.Submit(context.Background(), data); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if err := w.Submit(context.Background(), data); err != nil {
		t.Fatalf("second submit: %v", err)
	}

	if got := fs.saveCount(); got != 1 {
		t.Fatalf("expected second submit to be a network no-op, got %d saves", got)
	}
}

func TestSubmitLocalValidation(t *testing.T) {
	fs := &fakeStore{}
	w := newTestWizard(t, fs)

	data := w.FormData()
	data.MinPrice = 3000
	data.MaxPrice = 1000

	err := w.Submit(context.Background(), data)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if got := fs.saveCount(); got != 0 {
		t.Fatalf("expected no save on validation failure, got %d", got)
	}
	if msg, ok := w.BackendErrors()["max_price"]; !ok || msg == "" {
		t.Fatalf("expected field error for max_price, got %v", w.BackendErrors())
	}
}

func TestSubmitServerFieldErrors(t *testing.T) {
	fs := &fakeStore{saveErr: &store.ValidationError{
		Fields: map[string]string{"move_out_date": "must not be before move_in_date"},
	}}
	w := newTestWizard(t, fs)

	data := w.FormData()
	data.PreferredAddress = "angel"

	if err := w.Submit(context.Background(), data); err == nil {
		t.Fatal("expected submit error")
	}
	if _, ok := w.BackendErrors()["move_out_date"]; !ok {
		t.Fatalf("expected server field error surfaced, got %v", w.BackendErrors())
	}
	if w.GeneralError() != "" {
		t.Fatalf("field errors must not set a general error, got %q", w.GeneralError())
	}
}

func TestSubmitGeneralError(t *testing.T) {
	fs := &fakeStore{saveErr: errors.New("backend down")}
	w := newTestWizard(t, fs)

	data := w.FormData()
	data.PreferredAddress = "angel"

	if err := w.Submit(context.Background(), data); err == nil {
		t.Fatal("expected submit error")
	}
	if w.GeneralError() == "" {
		t.Fatal("expected general error surfaced")
	}
	if len(w.BackendErrors()) != 0 {
		t.Fatalf("expected no field errors, got %v", w.BackendErrors())
	}
}

func TestSubmitCooldownBlocksNavigation(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }

	fs := &fakeStore{}
	w := newTestWizard(t, fs, WithClock(func() time.Time { return clock() }), WithSubmitCooldown(2*time.Second))

	data := w.FormData()
	data.MinPrice = 900
	if err := w.Submit(context.Background(), data); err != nil {
		t.Fatalf("submit: %v", err)
	}

	w.NextStep()
	if w.Step() != 1 {
		t.Fatalf("expected navigation blocked during cool-down, got step %d", w.Step())
	}

	now = now.Add(3 * time.Second)
	w.NextStep()
	if w.Step() != 2 {
		t.Fatalf("expected navigation after cool-down, got step %d", w.Step())
	}
}

func TestSubmitClearsResumeState(t *testing.T) {
	fs := &fakeStore{}
	w := newTestWizard(t, fs)

	w.NextStep()
	w.NextStep()
	if got := w.ResumeStep(); got != 3 {
		t.Fatalf("expected resume step 3, got %d", got)
	}

	data := w.FormData()
	data.MinPrice = 900
	if err := w.Submit(context.Background(), data); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := w.ResumeStep(); got != 0 {
		t.Fatalf("expected resume state cleared, got %d", got)
	}
}

func TestLoadNotFoundIsNotAnError(t *testing.T) {
	fs := &fakeStore{}
	w := New(fs, ReadySession{}, "tenant-1")
	if err := w.Load(context.Background()); err != nil {
		t.Fatalf("not-found load must succeed, got %v", err)
	}
	if w.GeneralError() != "" {
		t.Fatalf("unexpected general error: %q", w.GeneralError())
	}
}

func TestLoadFailureIsDistinguished(t *testing.T) {
	fs := &fakeStore{getErr: errors.New("backend down")}
	w := New(fs, ReadySession{}, "tenant-1")
	if err := w.Load(context.Background()); err == nil {
		t.Fatal("expected load error for non-notfound failure")
	}
	if w.GeneralError() == "" {
		t.Fatal("expected general error kept for caller")
	}
}

func TestLoadWaitsForSession(t *testing.T) {
	blocked := make(chan struct{})
	session := sessionFunc(func(ctx context.Context) error {
		select {
		case <-blocked:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	fs := &fakeStore{}
	w := New(fs, session, "tenant-1")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := w.Load(ctx); err == nil {
		t.Fatal("expected load to fail while session is not ready")
	}

	close(blocked)
	if err := w.Load(context.Background()); err != nil {
		t.Fatalf("load after session ready: %v", err)
	}
}

type sessionFunc func(ctx context.Context) error

func (f sessionFunc) AwaitReady(ctx context.Context) error { return f(ctx) }

func TestServerRecordBecomesBaseline(t *testing.T) {
	fs := &fakeStore{}
	w := newTestWizard(t, fs)

	if err := w.UpdateField("preferred_address", "angel"); err != nil {
		t.Fatal(err)
	}
	w.Flush()

	// Saving the same value again must now be skipped: the baseline was
	// refreshed from the server's returned record.
	if err := w.UpdateField("preferred_address", "angel"); err != nil {
		t.Fatal(err)
	}
	w.Flush()

	if got := fs.saveCount(); got != 1 {
		t.Fatalf("expected baseline refresh to suppress second save, got %d", got)
	}
}

func TestWizardFullWalkthrough(t *testing.T) {
	fs := &fakeStore{}
	w := newTestWizard(t, fs, WithDebounceDelay(time.Hour))

	edits := []struct {
		field string
		value interface{}
	}{
		{"preferred_address", "angel"},
		{"min_price", 1000},
		{"max_price", 2000},
		{"property_types", []string{"flat"}},
		{"bedrooms", []int{1, 2}},
		{"furnishing", []string{"furnished"}},
		{"building_types", []string{"co-living"}},
		{"pet_policy", true},
		{"amenities", []string{"gym"}},
		{"hobbies", []string{"climbing"}},
		{"additional_info", "quiet please"},
	}

	for i, e := range edits {
		if err := w.UpdateField(e.field, e.value); err != nil {
			t.Fatalf("step %d: %v", i+1, err)
		}
		if !w.IsLastStep() {
			w.NextStep()
		}
	}
	if !w.IsLastStep() {
		t.Fatalf("expected to be on step %d, got %d", TotalSteps, w.Step())
	}
	w.Flush()

	// Every per-step edit was flushed on navigation; now change one more
	// field and submit. The PATCH body must contain only the remaining diff.
	data := w.FormData()
	data.Smoker = "no"
	if err := w.Submit(context.Background(), data); err != nil {
		t.Fatalf("submit: %v", err)
	}

	last := fs.lastSave()
	if len(last) != 1 {
		t.Fatalf("expected only the remaining diffed field, got %v", last)
	}
	if _, ok := last["smoker"]; !ok {
		t.Fatalf("expected smoker in final diff, got %v", last)
	}
}
