package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"taskdeck/app/view"
	"taskdeck/domain/task"
	"taskdeck/internal/taskapi"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockGateway struct {
	listFunc       func(ctx context.Context) ([]task.Task, error)
	createFunc     func(ctx context.Context, nt task.NewTask) (*task.Task, error)
	deleteFunc     func(ctx context.Context, id string) error
	executeFunc    func(ctx context.Context, id string) (string, error)
	findByNameFunc func(ctx context.Context, name string) ([]task.Task, error)

	listCalls   atomic.Int32
	createCalls atomic.Int32
	deleteCalls atomic.Int32
}

func (m *mockGateway) List(ctx context.Context) ([]task.Task, error) {
	m.listCalls.Add(1)
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return []task.Task{}, nil
}

func (m *mockGateway) Create(ctx context.Context, nt task.NewTask) (*task.Task, error) {
	m.createCalls.Add(1)
	if m.createFunc != nil {
		return m.createFunc(ctx, nt)
	}
	return &task.Task{ID: "new"}, nil
}

func (m *mockGateway) Delete(ctx context.Context, id string) error {
	m.deleteCalls.Add(1)
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockGateway) Execute(ctx context.Context, id string) (string, error) {
	if m.executeFunc != nil {
		return m.executeFunc(ctx, id)
	}
	return "", nil
}

func (m *mockGateway) FindByName(ctx context.Context, name string) ([]task.Task, error) {
	if m.findByNameFunc != nil {
		return m.findByNameFunc(ctx, name)
	}
	return []task.Task{}, nil
}

// browser replays the session cookie across requests.
type browser struct {
	t       *testing.T
	e       *echo.Echo
	cookies []*http.Cookie
}

func newBrowser(t *testing.T, gw task.Gateway) *browser {
	t.Helper()

	e := echo.New()
	registry := view.NewRegistry(gw, 16, time.Hour)
	store := NewCookieStore([]byte("test-secret-test-secret-test-sec"), 3600)
	NewHandler(registry, store).RegisterRoutes(e.Group(""))

	return &browser{t: t, e: e}
}

func (b *browser) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	b.e.ServeHTTP(rec, req)

	if set := rec.Result().Cookies(); len(set) > 0 {
		b.cookies = set
	}
	return rec
}

func (b *browser) page() string {
	b.t.Helper()

	rec := b.do(http.MethodGet, "/", nil)
	require.Equal(b.t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func (b *browser) post(target string, form url.Values) {
	b.t.Helper()

	if form == nil {
		form = url.Values{}
	}
	rec := b.do(http.MethodPost, target, form)
	require.Equal(b.t, http.StatusSeeOther, rec.Code)
	require.Equal(b.t, "/", rec.Header().Get(echo.HeaderLocation))
}

func staticList(tasks ...task.Task) func(context.Context) ([]task.Task, error) {
	return func(context.Context) ([]task.Task, error) {
		return tasks, nil
	}
}

var pingTask = task.Task{ID: "1", Name: "ping", Owner: "bob", Command: "ping -c1 x"}

func TestIndex_RendersTaskRows(t *testing.T) {
	gw := &mockGateway{listFunc: staticList(pingTask)}
	b := newBrowser(t, gw)

	body := b.page()

	assert.Contains(t, body, `<th>Name</th>`)
	assert.Contains(t, body, `<th>Owner</th>`)
	assert.Contains(t, body, `<th>Command</th>`)
	assert.Contains(t, body, `<th>Actions</th>`)
	assert.Contains(t, body, `<td>ping</td>`)
	assert.Contains(t, body, `<td>bob</td>`)
	assert.Contains(t, body, `<code>ping -c1 x</code>`)
	assert.Contains(t, body, `action="/tasks/1/run"`)
	assert.Contains(t, body, `>Run</button>`)
	assert.Contains(t, body, `action="/tasks/1/delete/request"`)
	assert.Contains(t, body, `>Delete</button>`)
	assert.Equal(t, 1, strings.Count(body, "data-task-id="))
	assert.NotContains(t, body, `data-testid="error-panel"`)
	assert.NotContains(t, body, `data-testid="spinner"`)
}

func TestIndex_RefreshesOnEveryLoad(t *testing.T) {
	gw := &mockGateway{listFunc: staticList(pingTask)}
	b := newBrowser(t, gw)

	b.page()
	b.page()

	assert.Equal(t, int32(2), gw.listCalls.Load())
}

func TestIndex_LoadAfterActionKeepsItsResult(t *testing.T) {
	gw := &mockGateway{
		listFunc: staticList(pingTask),
		findByNameFunc: func(context.Context, string) ([]task.Task, error) {
			return nil, &taskapi.APIError{StatusCode: http.StatusNotFound}
		},
	}
	b := newBrowser(t, gw)
	b.page()

	b.do(http.MethodGet, "/search?q=nothing", nil)
	body := b.page()
	assert.Equal(t, int32(1), gw.listCalls.Load())
	assert.Equal(t, 0, strings.Count(body, "data-task-id="))
	assert.Contains(t, body, `value="nothing"`)

	body = b.page()
	assert.Equal(t, int32(2), gw.listCalls.Load(), "a reload refreshes again")
	assert.Contains(t, body, `<td>ping</td>`)
}

func TestIndex_ReloadClearsErrorOnceBackendRecovers(t *testing.T) {
	var down atomic.Bool
	down.Store(true)
	gw := &mockGateway{listFunc: func(context.Context) ([]task.Task, error) {
		if down.Load() {
			return nil, errors.New("connection refused")
		}
		return []task.Task{pingTask}, nil
	}}
	b := newBrowser(t, gw)
	require.Contains(t, b.page(), `data-testid="error-panel"`)

	down.Store(false)

	body := b.page()
	assert.NotContains(t, body, `data-testid="error-panel"`)
	assert.Contains(t, body, `<td>ping</td>`)
}

func TestIndex_SessionsAreIndependent(t *testing.T) {
	gw := &mockGateway{listFunc: staticList(pingTask)}
	registry := view.NewRegistry(gw, 16, time.Hour)
	store := NewCookieStore([]byte("test-secret-test-secret-test-sec"), 3600)
	e := echo.New()
	NewHandler(registry, store).RegisterRoutes(e.Group(""))

	alice := &browser{t: t, e: e}
	bob := &browser{t: t, e: e}

	alice.page()
	alice.post("/dialog/create", nil)

	assert.Contains(t, alice.page(), `data-testid="create-dialog"`)
	assert.NotContains(t, bob.page(), `data-testid="create-dialog"`)
	assert.Equal(t, 2, registry.Len())
}

func TestIndex_EscapesTaskFields(t *testing.T) {
	gw := &mockGateway{listFunc: staticList(task.Task{ID: "x", Name: "<script>alert(1)</script>", Owner: "o", Command: "echo <b>"})}
	b := newBrowser(t, gw)

	body := b.page()

	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestIndex_ErrorPanelReplacesTable(t *testing.T) {
	gw := &mockGateway{listFunc: func(context.Context) ([]task.Task, error) {
		return nil, errors.New("connection refused")
	}}
	b := newBrowser(t, gw)

	body := b.page()

	assert.Contains(t, body, `data-testid="error-panel"`)
	assert.Contains(t, body, view.MsgFetchFailed)
	assert.NotContains(t, body, `data-testid="tasks-table"`)
}

func TestSearch_NotFoundShowsEmptyTable(t *testing.T) {
	var searched string
	gw := &mockGateway{
		listFunc: staticList(pingTask),
		findByNameFunc: func(_ context.Context, name string) ([]task.Task, error) {
			searched = name
			return nil, &taskapi.APIError{StatusCode: http.StatusNotFound}
		},
	}
	b := newBrowser(t, gw)
	b.page()

	rec := b.do(http.MethodGet, "/search?q=ping", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	body := b.page()
	assert.Equal(t, "ping", searched)
	assert.Contains(t, body, `data-testid="tasks-table"`)
	assert.Equal(t, 0, strings.Count(body, "data-task-id="))
	assert.Contains(t, body, "No data")
	assert.NotContains(t, body, `data-testid="error-panel"`)
	assert.Contains(t, body, `value="ping"`)
}

func TestSearch_EmptyQueryListsAll(t *testing.T) {
	gw := &mockGateway{listFunc: staticList(pingTask)}
	b := newBrowser(t, gw)
	b.page()

	b.do(http.MethodGet, "/search?q=", nil)

	assert.Equal(t, int32(2), gw.listCalls.Load())
	assert.Contains(t, b.page(), `<td>ping</td>`)
}

func TestCreate_Flow(t *testing.T) {
	var created []task.Task
	gw := &mockGateway{
		listFunc: func(context.Context) ([]task.Task, error) {
			return created, nil
		},
		createFunc: func(_ context.Context, nt task.NewTask) (*task.Task, error) {
			tsk := task.Task{ID: "1", Name: nt.Name, Owner: nt.Owner, Command: nt.Command}
			created = append(created, tsk)
			return &tsk, nil
		},
	}
	b := newBrowser(t, gw)
	b.page()

	b.post("/dialog/create", nil)
	assert.Contains(t, b.page(), `data-testid="create-dialog"`)

	b.post("/tasks", url.Values{"name": {"ping"}, "owner": {""}, "command": {"ping -c1 x"}})
	body := b.page()
	assert.Contains(t, body, `data-testid="create-dialog"`)
	assert.Contains(t, body, "Please input the owner!")
	assert.Contains(t, body, `value="ping"`)
	assert.Equal(t, int32(0), gw.createCalls.Load())

	b.post("/tasks", url.Values{"name": {"ping"}, "owner": {"bob"}, "command": {"ping -c1 x"}})
	body = b.page()
	assert.Equal(t, int32(1), gw.createCalls.Load())
	assert.NotContains(t, body, `data-testid="create-dialog"`)
	assert.Contains(t, body, "Task created successfully!")
	assert.Contains(t, body, `<td>ping</td>`)

	assert.NotContains(t, b.page(), "Task created successfully!", "notifications are shown once")
}

func TestCreate_FailureKeepsDialogOpen(t *testing.T) {
	gw := &mockGateway{createFunc: func(context.Context, task.NewTask) (*task.Task, error) {
		return nil, &taskapi.APIError{StatusCode: http.StatusInternalServerError}
	}}
	b := newBrowser(t, gw)
	b.page()
	b.post("/dialog/create", nil)

	b.post("/tasks", url.Values{"name": {"a"}, "owner": {"b"}, "command": {"c"}})

	body := b.page()
	assert.Contains(t, body, `data-testid="create-dialog"`)
	assert.Contains(t, body, "Failed to create task.")
	assert.Equal(t, int32(1), gw.listCalls.Load())
}

func TestCreate_CancelClosesDialog(t *testing.T) {
	b := newBrowser(t, &mockGateway{})
	b.page()
	b.post("/dialog/create", nil)

	b.post("/dialog/create/cancel", nil)

	assert.NotContains(t, b.page(), `data-testid="create-dialog"`)
}

func TestDelete_RequiresConfirmation(t *testing.T) {
	gw := &mockGateway{listFunc: staticList(pingTask)}
	b := newBrowser(t, gw)
	b.page()

	b.post("/tasks/1/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, int32(0), gw.deleteCalls.Load(), "no request without a prompt")

	b.post("/tasks/1/delete/request", nil)
	body := b.page()
	assert.Contains(t, body, "Are you sure? This cannot be undone.")
	assert.Equal(t, int32(0), gw.deleteCalls.Load())

	b.post("/tasks/1/delete", url.Values{"confirm": {"no"}})
	assert.NotContains(t, b.page(), "Are you sure?")
	assert.Equal(t, int32(0), gw.deleteCalls.Load())

	b.post("/tasks/1/delete/request", nil)
	b.post("/tasks/1/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, int32(1), gw.deleteCalls.Load())
	assert.Contains(t, b.page(), "Task deleted successfully!")
}

func TestDelete_Failure(t *testing.T) {
	gw := &mockGateway{
		listFunc:   staticList(pingTask),
		deleteFunc: func(context.Context, string) error { return errors.New("down") },
	}
	b := newBrowser(t, gw)
	b.page()

	b.post("/tasks/1/delete/request", nil)
	b.post("/tasks/1/delete", url.Values{"confirm": {"yes"}})

	body := b.page()
	assert.Contains(t, body, "Failed to delete task.")
	assert.Contains(t, body, `<td>ping</td>`)
}

func TestDelete_UnescapesTaskID(t *testing.T) {
	var deleted string
	odd := task.Task{ID: "a b", Name: "odd", Owner: "o", Command: "c"}
	gw := &mockGateway{
		listFunc: staticList(odd),
		deleteFunc: func(_ context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	b := newBrowser(t, gw)
	assert.Contains(t, b.page(), `action="/tasks/a%20b/delete/request"`)

	b.post("/tasks/a%20b/delete/request", nil)
	b.post("/tasks/a%20b/delete", url.Values{"confirm": {"yes"}})

	assert.Equal(t, "a b", deleted)
}

func TestRun_ShowsOutputVerbatim(t *testing.T) {
	var ran string
	gw := &mockGateway{
		listFunc: staticList(pingTask),
		executeFunc: func(_ context.Context, id string) (string, error) {
			ran = id
			return "hello\nworld", nil
		},
	}
	b := newBrowser(t, gw)
	b.page()

	b.post("/tasks/1/run", nil)

	body := b.page()
	assert.Equal(t, "1", ran)
	assert.Equal(t, 1, strings.Count(body, `data-testid="output-dialog"`))
	assert.Contains(t, body, "<pre class=\"output\">hello\nworld</pre>")
	assert.Contains(t, body, "Task Execution Output: ping")

	b.post("/output/close", nil)
	assert.NotContains(t, b.page(), `data-testid="output-dialog"`)
}

func TestRun_FailureShowsNotificationOnly(t *testing.T) {
	gw := &mockGateway{
		listFunc:    staticList(pingTask),
		executeFunc: func(context.Context, string) (string, error) { return "", errors.New("down") },
	}
	b := newBrowser(t, gw)
	b.page()

	b.post("/tasks/1/run", nil)

	body := b.page()
	assert.Contains(t, body, "Failed to execute task.")
	assert.NotContains(t, body, `data-testid="output-dialog"`)
}

func TestWithView_RejectsTamperedCookie(t *testing.T) {
	gw := &mockGateway{listFunc: staticList(pingTask)}
	b := newBrowser(t, gw)
	b.page()
	b.post("/dialog/create", nil)

	b.cookies = []*http.Cookie{{Name: sessionName, Value: "tampered"}}

	body := b.page()
	assert.NotContains(t, body, `data-testid="create-dialog"`, "a forged cookie gets a fresh session")
}
