package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rentalhub/backend/store"
)

// TotalSteps is the fixed number of wizard steps.
const TotalSteps = 11

const (
	defaultDebounceDelay  = 500 * time.Millisecond
	defaultSubmitCooldown = 2 * time.Second
	defaultSaveTimeout    = 10 * time.Second
)

// Wizard drives the multi-step preferences form for one tenant: per-field
// debounced auto-save, step navigation with a forced flush, and a final
// diff-based validated submit. Auto-save failures are logged and swallowed;
// submit failures are surfaced through BackendErrors / GeneralError.
type Wizard struct {
	store     store.PreferencesStore
	session   SessionProvider
	tenantID  string
	sessionID string
	logger    *logrus.Entry

	delay          time.Duration
	submitCooldown time.Duration
	saveTimeout    time.Duration
	now            func() time.Time

	deb *debouncer

	mu             sync.Mutex
	step           int
	resumeStep     int
	form           FormData
	baseline       *FormData // last known persisted state, nil until first save
	backendErrors  map[string]string
	generalError   string
	loading        bool
	navLockedUntil time.Time
}

type Option func(*Wizard)

// WithDebounceDelay overrides the auto-save debounce window.
func WithDebounceDelay(d time.Duration) Option {
	return func(w *Wizard) { w.delay = d }
}

// WithSubmitCooldown overrides the post-submit navigation lock.
func WithSubmitCooldown(d time.Duration) Option {
	return func(w *Wizard) { w.submitCooldown = d }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(w *Wizard) { w.now = now }
}

func WithLogger(l *logrus.Logger) Option {
	return func(w *Wizard) { w.logger = l.WithField("component", "wizard") }
}

func New(prefStore store.PreferencesStore, session SessionProvider, tenantID string, opts ...Option) *Wizard {
	w := &Wizard{
		store:          prefStore,
		session:        session,
		tenantID:       tenantID,
		sessionID:      uuid.NewString(),
		logger:         logrus.NewEntry(logrus.StandardLogger()),
		delay:          defaultDebounceDelay,
		submitCooldown: defaultSubmitCooldown,
		saveTimeout:    defaultSaveTimeout,
		now:            time.Now,
		step:           1,
		backendErrors:  map[string]string{},
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"session_id": w.sessionID,
	})
	w.deb = newDebouncer(w.delay, w.saveFields)
	return w
}

// Load waits for the session and populates form state from the stored
// preferences. A missing record is not an error: the wizard starts from
// defaults. Any other failure is returned so callers can tell an outage
// apart from a new user, and is also kept in GeneralError.
func (w *Wizard) Load(ctx context.Context) error {
	if err := w.session.AwaitReady(ctx); err != nil {
		return fmt.Errorf("session not ready: %w", err)
	}

	w.mu.Lock()
	w.loading = true
	w.mu.Unlock()

	prefs, err := w.store.Get(ctx, w.tenantID)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.loading = false

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			w.form = FormData{}
			w.baseline = nil
			return nil
		}
		w.logger.WithError(err).Error("failed to load preferences")
		w.generalError = "could not load your preferences"
		return fmt.Errorf("load preferences: %w", err)
	}

	form := FormDataFromAPI(*prefs)
	w.form = form
	baseline := form
	w.baseline = &baseline
	return nil
}

// UpdateField sets the field immediately and schedules a debounced save of
// the field and its companions.
func (w *Wizard) UpdateField(field string, value interface{}) error {
	acc, ok := fieldRegistry[field]
	if !ok {
		return fmt.Errorf("unknown field %q", field)
	}

	w.mu.Lock()
	if err := acc.set(&w.form, value); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("set %s: %w", field, err)
	}
	w.mu.Unlock()

	w.deb.Edit(withCompanions(field))
	return nil
}

// ToggleFeature adds value to the multi-select category if absent, removes
// it otherwise, with the same debounced persistence as UpdateField. Two
// successive toggles restore the original set.
func (w *Wizard) ToggleFeature(category, value string) error {
	acc, ok := fieldRegistry[category]
	if !ok {
		return fmt.Errorf("unknown field %q", category)
	}

	w.mu.Lock()
	current, ok := acc.get(&w.form).([]string)
	if !ok {
		w.mu.Unlock()
		return fmt.Errorf("field %q is not a multi-select", category)
	}

	next := make([]string, 0, len(current)+1)
	removed := false
	for _, v := range current {
		if v == value {
			removed = true
			continue
		}
		next = append(next, v)
	}
	if !removed {
		next = append(next, value)
	}
	if err := acc.set(&w.form, next); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("set %s: %w", category, err)
	}
	w.mu.Unlock()

	w.deb.Edit(withCompanions(category))
	return nil
}

// saveFields is the debouncer's save callback: it persists the named fields,
// skipping the write entirely when nothing differs from the last persisted
// state. Failures are logged, never surfaced; auto-save is best-effort.
func (w *Wizard) saveFields(fields []string) {
	w.mu.Lock()
	form := w.form
	var base FormData
	if w.baseline != nil {
		base = *w.baseline
	}
	hasBaseline := w.baseline != nil
	w.mu.Unlock()

	changed := make([]string, 0, len(fields))
	for _, name := range fields {
		acc, ok := fieldRegistry[name]
		if !ok {
			continue
		}
		if hasBaseline && valueEqual(acc.get(&base), acc.get(&form)) {
			continue
		}
		changed = append(changed, name)
	}
	if len(changed) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.saveTimeout)
	defer cancel()

	saved, err := w.store.Save(ctx, w.tenantID, FormDataForAPI(form, changed))
	if err != nil {
		w.logger.WithError(err).WithField("fields", changed).Warn("auto-save failed")
		return
	}

	// The server's record is the new baseline, not the data we sent; this
	// tolerates out-of-order completion of overlapping saves.
	w.mu.Lock()
	baseline := FormDataFromAPI(*saved)
	w.baseline = &baseline
	w.mu.Unlock()
}

// Submit performs the final validated save. Only fields differing from the
// persisted baseline are transmitted; the move-in/move-out pair always
// travels together when either changed. On success navigation is locked for
// a short cool-down and the resume step is cleared.
func (w *Wizard) Submit(ctx context.Context, data FormData) error {
	w.deb.Stop()

	w.mu.Lock()
	w.form = data
	w.backendErrors = map[string]string{}
	w.generalError = ""
	var base FormData
	if w.baseline != nil {
		base = *w.baseline
	}
	w.mu.Unlock()

	if verr := validateForm(data); verr != nil {
		w.mu.Lock()
		w.backendErrors = verr.Fields
		w.mu.Unlock()
		return verr
	}

	changed := diffFields(&base, &data)
	changed = ensureDateCoupling(changed)
	if len(changed) == 0 {
		w.finishSubmit()
		return nil
	}

	saved, err := w.store.Save(ctx, w.tenantID, FormDataForAPI(data, changed))
	if err != nil {
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			w.mu.Lock()
			w.backendErrors = verr.Fields
			w.mu.Unlock()
			return err
		}
		w.mu.Lock()
		w.generalError = "could not save your preferences"
		w.mu.Unlock()
		w.logger.WithError(err).Error("submit failed")
		return fmt.Errorf("submit preferences: %w", err)
	}

	w.mu.Lock()
	baseline := FormDataFromAPI(*saved)
	w.baseline = &baseline
	w.mu.Unlock()

	w.finishSubmit()
	return nil
}

func (w *Wizard) finishSubmit() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.navLockedUntil = w.now().Add(w.submitCooldown)
	w.resumeStep = 0
}

// ensureDateCoupling makes the move-in/move-out pair travel together so the
// server can validate their ordering against both values.
func ensureDateCoupling(fields []string) []string {
	hasIn, hasOut := false, false
	for _, f := range fields {
		switch f {
		case "move_in_date":
			hasIn = true
		case "move_out_date":
			hasOut = true
		}
	}
	if hasIn && !hasOut {
		fields = append(fields, "move_out_date")
	}
	if hasOut && !hasIn {
		fields = append(fields, "move_in_date")
	}
	return fields
}

func validateForm(data FormData) *store.ValidationError {
	fields := map[string]string{}
	if data.MinPrice > 0 && data.MaxPrice > 0 && data.MinPrice > data.MaxPrice {
		fields["max_price"] = "must be greater than or equal to min_price"
	}
	if data.MinSquareMeters > 0 && data.MaxSquareMeters > 0 && data.MinSquareMeters > data.MaxSquareMeters {
		fields["max_square_meters"] = "must be greater than or equal to min_square_meters"
	}
	if data.MoveInDate != nil && data.MoveOutDate != nil && data.MoveOutDate.Before(*data.MoveInDate) {
		fields["move_out_date"] = "must not be before move_in_date"
	}
	if len(fields) == 0 {
		return nil
	}
	return &store.ValidationError{Fields: fields}
}

// NextStep flushes any pending save and advances the step pointer.
func (w *Wizard) NextStep() {
	w.deb.Flush()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.now().Before(w.navLockedUntil) {
		return
	}
	if w.step < TotalSteps {
		w.step++
		w.resumeStep = w.step
	}
}

// PrevStep flushes any pending save and moves the step pointer back.
func (w *Wizard) PrevStep() {
	w.deb.Flush()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.now().Before(w.navLockedUntil) {
		return
	}
	if w.step > 1 {
		w.step--
		w.resumeStep = w.step
	}
}

// Flush forces the pending debounced save, if any. Callers use it before
// tearing the wizard down.
func (w *Wizard) Flush() {
	w.deb.Flush()
}

// Close flushes pending work and drops the timer.
func (w *Wizard) Close() {
	w.deb.Flush()
	w.deb.Stop()
}

func (w *Wizard) Step() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Wizard) IsFirstStep() bool { return w.Step() == 1 }
func (w *Wizard) IsLastStep() bool  { return w.Step() == TotalSteps }

// ResumeStep is the step to reopen the wizard at, zero once submitted.
func (w *Wizard) ResumeStep() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.resumeStep
}

func (w *Wizard) Loading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loading
}

// FormData returns a copy of the current form state.
func (w *Wizard) FormData() FormData {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form
}

// BackendErrors returns a copy of the field-level errors from the last
// submit attempt.
func (w *Wizard) BackendErrors() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]string, len(w.backendErrors))
	for k, v := range w.backendErrors {
		out[k] = v
	}
	return out
}

func (w *Wizard) GeneralError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.generalError
}
