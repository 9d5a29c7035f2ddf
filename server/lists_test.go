package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyflo/dailyflo/task"
)

func createList(t *testing.T, h http.Handler, user, name string) task.List {
	t.Helper()
	rec := doRequest(t, h, http.MethodPost, "/lists", user, map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[task.List](t, rec)
}

func TestListLifecycle(t *testing.T) {
	h, _ := newTestHandler()

	created := createList(t, h, "alice", "Work")
	require.NotEmpty(t, created.ID)
	assert.False(t, created.IsDefault)

	rec := doRequest(t, h, http.MethodGet, "/lists/"+created.ID, "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Work", decodeBody[task.List](t, rec).Name)

	rec = doRequest(t, h, http.MethodPatch, "/lists/"+created.ID, "alice", map[string]any{
		"name": "Work stuff",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Work stuff", decodeBody[task.List](t, rec).Name)

	rec = doRequest(t, h, http.MethodDelete, "/lists/"+created.ID, "alice", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/lists/"+created.ID, "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInboxEndpoint(t *testing.T) {
	h, _ := newTestHandler()

	rec := doRequest(t, h, http.MethodGet, "/lists/inbox", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	inbox := decodeBody[task.List](t, rec)
	assert.True(t, inbox.IsDefault)
	assert.Equal(t, "Inbox", inbox.Name)

	// The inbox cannot be deleted.
	rec = doRequest(t, h, http.MethodDelete, "/lists/"+inbox.ID, "alice", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Creating a list flagged as default does not replace the inbox.
	rec = doRequest(t, h, http.MethodPost, "/lists", "alice", map[string]any{
		"name": "Fake inbox", "is_default": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.False(t, decodeBody[task.List](t, rec).IsDefault)
}

func TestListTasksOfList(t *testing.T) {
	h, _ := newTestHandler()

	work := createList(t, h, "alice", "Work")
	createTask(t, h, "alice", map[string]any{
		"title": "Standup", "routine_type": "daily",
		"due_date": anchorDate(t, "2024-02-01"), "list": work.ID,
	})
	createTask(t, h, "alice", map[string]any{
		"title": "Inbox task", "routine_type": "once", "due_date": anchorDate(t, "2024-02-05"),
	})

	rec := doRequest(t, h, http.MethodGet, "/lists/"+work.ID+"/tasks", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := decodeBody[[]task.Task](t, rec)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Standup", tasks[0].Title)

	rec = doRequest(t, h, http.MethodGet, "/lists/no-such-list/tasks", "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListsAreScopedPerUser(t *testing.T) {
	h, _ := newTestHandler()

	created := createList(t, h, "alice", "Private")

	rec := doRequest(t, h, http.MethodGet, "/lists/"+created.ID, "bob", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/lists", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	lists := decodeBody[[]task.List](t, rec)
	assert.NotNil(t, lists)
	assert.Empty(t, lists)
}
