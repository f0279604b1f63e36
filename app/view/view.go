// Package view holds the per-session task page: its state and the actions a
// user can dispatch against it. Actions never hold the state lock while the
// backend call is in flight.
package view

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"

	"taskdeck/domain/task"
	"taskdeck/internal/metrics"
	"taskdeck/internal/taskapi"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

var (
	ErrValidation         = errors.New("task form is incomplete")
	ErrSubmitInFlight     = errors.New("a task creation is already in flight")
	ErrDeleteNotConfirmed = errors.New("delete was not confirmed")
)

const (
	ActionRefresh = "refresh"
	ActionCreate  = "create"
	ActionDelete  = "delete"
	ActionExecute = "execute"
)

var fieldMessages = map[string]string{
	"name":    "Please input the task name!",
	"owner":   "Please input the owner!",
	"command": "Please input the command!",
}

type View struct {
	gateway  task.Gateway
	validate *validator.Validate
	logger   *log.Entry

	// refreshes coalesces concurrent refreshes of the same query.
	refreshes singleflight.Group

	mu         sync.Mutex
	state      State
	inflight   int
	generation uint64
}

type Option func(*View)

func WithLogger(logger *log.Entry) Option {
	return func(v *View) {
		v.logger = logger
	}
}

func New(gateway task.Gateway, opts ...Option) *View {
	v := &View{
		gateway:  gateway,
		validate: newValidator(),
		logger:   log.WithField("component", "view"),
		state:    State{Tasks: []task.Task{}},
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Snapshot returns a deep copy of the current state.
func (v *View) Snapshot() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.clone()
}

// DrainNotifications returns the pending notifications and forgets them.
func (v *View) DrainNotifications() []Notification {
	v.mu.Lock()
	defer v.mu.Unlock()
	notes := v.state.Notifications
	v.state.Notifications = nil
	return notes
}

// Refresh re-fetches the task list, filtered by name when query is not
// empty, and replaces Tasks wholesale. A 404 is an empty result, not an
// error. Any other failure leaves Tasks untouched and sets Error.
// Concurrent refreshes of the same query share one backend call.
func (v *View) Refresh(ctx context.Context, query string) error {
	return v.refresh(ctx, query, false)
}

// refetch refreshes after a confirmed change. It never joins a call that
// started before the change.
func (v *View) refetch(ctx context.Context) {
	_ = v.refresh(ctx, "", true)
}

func (v *View) refresh(ctx context.Context, query string, fresh bool) error {
	v.mu.Lock()
	v.inflight++
	v.generation++
	gen := v.generation
	v.state.Loading = true
	v.state.Error = ""
	v.state.Query = query
	v.mu.Unlock()

	if fresh {
		v.refreshes.Forget(query)
	}
	res, err, _ := v.refreshes.Do(query, func() (any, error) {
		if query != "" {
			return v.gateway.FindByName(ctx, query)
		}
		return v.gateway.List(ctx)
	})

	tasks := []task.Task{}
	switch {
	case err == nil:
		tasks = res.([]task.Task)
	case taskapi.IsNotFound(err):
		err = nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.inflight--
	v.state.Loading = v.inflight > 0
	v.state.Loaded = true

	if gen != v.generation {
		// A newer refresh was dispatched; its result wins.
		return err
	}

	if err != nil {
		v.state.Error = MsgFetchFailed
		v.logger.WithError(err).WithField("query", query).Warn("refresh failed")
	} else {
		v.state.Tasks = tasks
		v.state.Error = ""
	}

	metrics.ObserveViewAction(ActionRefresh, err)
	return err
}

// Search applies the submitted search box text. Empty text removes the filter.
func (v *View) Search(ctx context.Context, text string) error {
	return v.Refresh(ctx, strings.TrimSpace(text))
}

func (v *View) OpenCreateDialog() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.CreateDialogOpen = true
}

func (v *View) CloseCreateDialog() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.CreateDialogOpen = false
	v.state.Form.Errors = nil
}

// SubmitCreate validates the form and asks the backend to create the task.
// On success the dialog closes, the form is cleared and the list refreshed
// once. On failure the dialog stays open and nothing is refreshed.
func (v *View) SubmitCreate(ctx context.Context, nt task.NewTask) error {
	nt = task.NewTask{
		Name:    strings.TrimSpace(nt.Name),
		Owner:   strings.TrimSpace(nt.Owner),
		Command: strings.TrimSpace(nt.Command),
	}

	v.mu.Lock()
	v.state.Form = CreateForm{Name: nt.Name, Owner: nt.Owner, Command: nt.Command}
	if fieldErrs := v.fieldErrors(nt); len(fieldErrs) > 0 {
		v.state.Form.Errors = fieldErrs
		v.mu.Unlock()
		return ErrValidation
	}
	if v.state.Submitting {
		v.mu.Unlock()
		return ErrSubmitInFlight
	}
	v.state.Submitting = true
	v.mu.Unlock()

	created, err := v.gateway.Create(ctx, nt)
	metrics.ObserveViewAction(ActionCreate, err)

	v.mu.Lock()
	v.state.Submitting = false
	if err != nil {
		v.notify(NotificationError, MsgCreateFailed)
		v.mu.Unlock()
		v.logger.WithError(err).WithField("name", nt.Name).Warn("create task failed")
		return err
	}
	v.state.CreateDialogOpen = false
	v.state.Form = CreateForm{}
	v.notify(NotificationSuccess, MsgCreated)
	v.mu.Unlock()

	entry := v.logger.WithField("name", nt.Name)
	if created != nil {
		entry = entry.WithField("task_id", created.ID)
	}
	entry.Info("task created")

	v.refetch(ctx)
	return nil
}

// RequestDelete opens the yes/no prompt for id. Nothing is sent yet.
func (v *View) RequestDelete(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.PendingDeleteID = id
}

func (v *View) CancelDelete() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.PendingDeleteID = ""
}

// ConfirmDelete sends the delete request for id. It only proceeds when id is
// the task currently awaiting confirmation.
func (v *View) ConfirmDelete(ctx context.Context, id string) error {
	v.mu.Lock()
	if id == "" || v.state.PendingDeleteID != id {
		v.mu.Unlock()
		return ErrDeleteNotConfirmed
	}
	v.state.PendingDeleteID = ""
	v.mu.Unlock()

	err := v.gateway.Delete(ctx, id)
	metrics.ObserveViewAction(ActionDelete, err)
	if err != nil {
		v.mu.Lock()
		v.notify(NotificationError, MsgDeleteFailed)
		v.mu.Unlock()
		v.logger.WithError(err).WithField("task_id", id).Warn("delete task failed")
		return err
	}

	v.mu.Lock()
	v.notify(NotificationSuccess, MsgDeleted)
	v.mu.Unlock()

	v.refetch(ctx)
	return nil
}

// RunExecution executes the task and opens the output modal with the raw
// text returned by the backend, then refreshes so the new execution shows.
func (v *View) RunExecution(ctx context.Context, id string) error {
	output, err := v.gateway.Execute(ctx, id)
	metrics.ObserveViewAction(ActionExecute, err)
	if err != nil {
		v.mu.Lock()
		v.notify(NotificationError, MsgExecuteFailed)
		v.mu.Unlock()
		v.logger.WithError(err).WithField("task_id", id).Warn("execute task failed")
		return err
	}

	v.mu.Lock()
	v.state.Output = &ExecutionOutput{
		TaskID:   id,
		TaskName: v.taskName(id),
		Text:     output,
	}
	v.mu.Unlock()

	v.refetch(ctx)
	return nil
}

func (v *View) CloseOutput() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Output = nil
}

// notify must be called with mu held.
func (v *View) notify(kind NotificationKind, msg string) {
	v.state.Notifications = append(v.state.Notifications, Notification{Kind: kind, Message: msg})
}

// taskName must be called with mu held.
func (v *View) taskName(id string) string {
	for _, t := range v.state.Tasks {
		if t.ID == id {
			return t.Name
		}
	}
	return ""
}

func (v *View) fieldErrors(nt task.NewTask) map[string]string {
	err := v.validate.Struct(nt)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"form": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()]
		if !ok {
			msg = fe.Error()
		}
		out[fe.Field()] = msg
	}
	return out
}

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return validate
}
