package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nhle/taskly/internal/api"
	"github.com/nhle/taskly/internal/engine"
	"github.com/nhle/taskly/internal/model"
	"github.com/nhle/taskly/internal/store"
	"github.com/nhle/taskly/tests/testutil"
)

type testServer struct {
	router *gin.Engine
	store  *store.SQLStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := testutil.NewTestStore(t)
	eng := engine.New(zerolog.Nop(), s, nil)
	return &testServer{
		router: api.NewRouter(zerolog.Nop(), eng, s, s),
		store:  s,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response %q: %v", w.Body.String(), err)
	}
}

type taskResponse struct {
	Message string `json:"message"`
	model.TaskWithSubtasks
}

func (ts *testServer) createPersonal(t *testing.T, subtasks ...string) taskResponse {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/personal_tasks", map[string]interface{}{
		"nama_tugas": "Essay",
		"tanggal":    "2025-01-01",
		"deadline":   "2025-01-10",
		"user_id":    "u1",
		"sub_tugas":  subtasks,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp taskResponse
	decode(t, w, &resp)
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
}

func TestCreatePersonalTask(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.createPersonal(t, "Draft", "Review")

	if resp.Message != resp.ID || resp.ID == "" {
		t.Errorf("Expected message to carry the new id, got %+v", resp)
	}
	if resp.Kind != model.KindPersonal || resp.Completed {
		t.Errorf("Unexpected task: %+v", resp.Task)
	}
	if len(resp.Subtasks) != 2 || resp.Subtasks[0].Title != "Draft" {
		t.Errorf("Unexpected subtasks: %+v", resp.Subtasks)
	}
}

func TestCreateTaskErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"deadline before start", map[string]interface{}{
			"nama_tugas": "X", "tanggal": "2025-02-02", "deadline": "2025-02-01",
		}, http.StatusBadRequest},
		{"missing title", map[string]interface{}{
			"tanggal": "2025-02-01", "deadline": "2025-02-01",
		}, http.StatusBadRequest},
		{"malformed body", "not an object", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/personal_tasks", tt.body)
			if w.Code != tt.want {
				t.Fatalf("Expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
			var body map[string]string
			decode(t, w, &body)
			if body["message"] == "" || body["error"] == "" {
				t.Errorf("Expected message and error fields, got %v", body)
			}
		})
	}
}

func TestToggleSubtaskRoute(t *testing.T) {
	ts := newTestServer(t)
	task := ts.createPersonal(t, "Only")

	w := ts.do(t, http.MethodPut, "/personal_subtasks/"+task.Subtasks[0].ID, map[string]bool{"is_completed": true})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var state struct {
		Message      string `json:"message"`
		TaskID       string `json:"tugas_id"`
		Completed    bool   `json:"is_completed"`
		Transitioned bool   `json:"transitioned"`
	}
	decode(t, w, &state)
	if !state.Transitioned || !state.Completed || state.TaskID != task.ID {
		t.Errorf("Unexpected state: %+v", state)
	}
	if state.Message != "Subtask and parent task updated successfully." {
		t.Errorf("Message = %q", state.Message)
	}

	// Both the personal list and the completed bucket reflect the change.
	w = ts.do(t, http.MethodGet, "/personal_tasks/completed/u1", nil)
	var completed []model.TaskWithSubtasks
	decode(t, w, &completed)
	if len(completed) != 1 || completed[0].ID != task.ID {
		t.Errorf("Expected task in completed bucket, got %+v", completed)
	}
}

func TestToggleSubtaskErrors(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPut, "/personal_subtasks/missing", map[string]bool{"is_completed": true})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}

	w = ts.do(t, http.MethodPut, "/personal_subtasks/missing", map[string]string{"is_completed": "yes"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for non-boolean, got %d", w.Code)
	}

	w = ts.do(t, http.MethodPut, "/personal_subtasks/missing", map[string]interface{}{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing flag, got %d", w.Code)
	}
}

func TestUpdateTaskStatusRoute(t *testing.T) {
	ts := newTestServer(t)
	task := ts.createPersonal(t)

	w := ts.do(t, http.MethodPut, "/personal_tasks/"+task.ID, map[string]bool{"is_completed": true})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	got, err := ts.store.GetTaskByID(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if !got.Completed {
		t.Error("Expected task to be completed")
	}

	w = ts.do(t, http.MethodPut, "/personal_tasks/missing", map[string]bool{"is_completed": true})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestSubtaskRoutes(t *testing.T) {
	ts := newTestServer(t)
	task := ts.createPersonal(t, "A")

	w := ts.do(t, http.MethodPost, "/personal_subtasks", map[string]string{
		"nama_sub_tugas": "B",
		"tugas_id":       task.ID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = ts.do(t, http.MethodGet, "/personal_subtasks/"+task.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var subs []model.Subtask
	decode(t, w, &subs)
	if len(subs) != 2 || subs[1].Title != "B" {
		t.Errorf("Unexpected subtasks: %+v", subs)
	}

	w = ts.do(t, http.MethodGet, "/personal_subtasks/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestGroupTaskRoutes(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/group_tasks", map[string]interface{}{
		"nama_tugas": "Proyek",
		"tanggal":    "2025-03-01",
		"deadline":   "2025-03-15",
		"anggota":    []string{"u1", "u2"},
		"sub_tugas":  []string{"Riset", "Slide"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created taskResponse
	decode(t, w, &created)

	w = ts.do(t, http.MethodGet, "/group_tasks/u2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var buckets engine.Buckets
	decode(t, w, &buckets)
	if len(buckets.InProgress) != 1 || len(buckets.Completed) != 0 {
		t.Fatalf("Unexpected buckets: %+v", buckets)
	}
	if len(buckets.InProgress[0].Subtasks) != 2 {
		t.Errorf("Expected subtasks in bucket entry, got %+v", buckets.InProgress[0])
	}

	w = ts.do(t, http.MethodGet, "/group_tasks/u9", nil)
	decode(t, w, &buckets)
	if buckets.InProgress == nil || buckets.Completed == nil {
		t.Error("Expected empty arrays, not null, for a user without tasks")
	}

	w = ts.do(t, http.MethodPut, "/group_task_members/"+created.ID, map[string][]string{"members": {"u3"}})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = ts.do(t, http.MethodGet, "/group_task_members/"+created.ID, nil)
	var members []map[string]string
	decode(t, w, &members)
	if len(members) != 1 || members[0]["user_id"] != "u3" {
		t.Errorf("Unexpected members: %v", members)
	}

	w = ts.do(t, http.MethodPut, "/group_task_members/"+created.ID, map[string]string{"members": "u3"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for non-array members, got %d", w.Code)
	}
}

func TestNotificationRoutes(t *testing.T) {
	ts := newTestServer(t)
	task := ts.createPersonal(t)
	ctx := context.Background()

	err := ts.store.CreateNotification(ctx, model.Notification{
		TaskID:    task.ID,
		UserID:    "u1",
		Channel:   model.ChannelPersonalTaskAdded,
		Title:     "Tugas Baru Ditambahkan",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateNotification failed: %v", err)
	}

	w := ts.do(t, http.MethodGet, "/notifications/u1?unread=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var list []model.Notification
	decode(t, w, &list)
	if len(list) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(list))
	}

	w = ts.do(t, http.MethodPut, "/notifications/"+list[0].ID+"/read", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = ts.do(t, http.MethodGet, "/notifications/u1?unread=true", nil)
	decode(t, w, &list)
	if len(list) != 0 {
		t.Errorf("Expected no unread notifications, got %d", len(list))
	}

	w = ts.do(t, http.MethodPut, "/notifications/missing/read", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

type downDB struct{}

func (downDB) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthReportsDatabaseDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := testutil.NewTestStore(t)
	router := api.NewRouter(zerolog.Nop(), engine.New(zerolog.Nop(), s, nil), s, downDB{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", w.Code)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- api.Serve(ctx, zerolog.Nop(), "127.0.0.1:0", http.NotFoundHandler(), time.Second)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
