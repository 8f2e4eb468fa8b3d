package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/taskflow/internal/models"
)

const testRedisAddr = "localhost:6379"

// backends returns every store implementation reachable from the test environment.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	stores := map[string]Store{
		BackendMemory: NewMemoryStore(),
	}

	sqliteStore, err := OpenSQLite(filepath.Join(t.TempDir(), "taskflow.db"))
	require.NoError(t, err)
	stores[BackendSQLite] = sqliteStore

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	if err := client.Ping(context.Background()).Err(); err == nil {
		prefix := "taskflow-test:" + t.Name() + ":"
		stores[BackendRedis] = NewRedisStore(client, prefix)
		t.Cleanup(func() { cleanupKeys(client, prefix+"*") })
	} else {
		client.Close()
	}

	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func cleanupKeys(client *redis.Client, pattern string) {
	ctx := context.Background()
	var cursor uint64
	for {
		keys, next, err := client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return
		}
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

func TestStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, found, err := s.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, s.Set(ctx, UserKey, []byte(`{"id":"1"}`)))
			got, found, err := s.Get(ctx, UserKey)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, `{"id":"1"}`, string(got))

			require.NoError(t, s.Set(ctx, UserKey, []byte(`{"id":"2"}`)))
			got, _, err = s.Get(ctx, UserKey)
			require.NoError(t, err)
			assert.Equal(t, `{"id":"2"}`, string(got))

			require.NoError(t, s.Delete(ctx, UserKey))
			_, found, err = s.Get(ctx, UserKey)
			require.NoError(t, err)
			assert.False(t, found)

			// Deleting an absent key is not an error
			require.NoError(t, s.Delete(ctx, UserKey))
		})
	}
}

func TestStore_SetMany(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set(ctx, UsersKey, []byte("old")))
			err := s.SetMany(ctx, map[string][]byte{
				UsersKey: []byte("[]"),
				UserKey:  []byte("{}"),
			})
			require.NoError(t, err)

			users, _, err := s.Get(ctx, UsersKey)
			require.NoError(t, err)
			assert.Equal(t, "[]", string(users))

			user, found, err := s.Get(ctx, UserKey)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "{}", string(user))
		})
	}
}

func TestMemoryStore_SetManyFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.SetErr = errors.New("quota exceeded")

	err := s.SetMany(ctx, map[string][]byte{UsersKey: []byte("[]"), UserKey: []byte("{}")})
	require.Error(t, err)
	assert.Equal(t, 0, s.Keys())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	value := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", value))
	value[0] = 'x'

	got, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'y'
	again, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestMemoryStore_Closed(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Close())
	_, _, err := s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrStoreClosed)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	path := filepath.Join(t.TempDir(), "nested", "dir", "taskflow.db")
	s, err = Open(ctx, Options{Backend: "SQLite", SQLitePath: path})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Options{Backend: "sqlite"})
	assert.Error(t, err)

	_, err = Open(ctx, Options{Backend: "etcd"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "taskflow.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, TasksKey("u1"), []byte("[]")))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	got, found, err := s.Get(ctx, TasksKey("u1"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", string(got))
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		stored    string
		absent    bool
		wantFound bool
		wantErr   error
		wantLen   int
	}{
		{name: "absent key", absent: true},
		{name: "empty list", stored: "[]", wantFound: true},
		{
			name:      "valid task",
			stored:    `[{"id":"t1","title":"A","description":"","category":"work","priority":"low","status":"todo","userId":"u1","createdAt":"2024-05-01T10:00:00Z","updatedAt":"2024-05-01T10:00:00Z"}]`,
			wantFound: true,
			wantLen:   1,
		},
		{name: "not json", stored: "{oops", wantFound: true, wantErr: ErrMalformedStoredData},
		{name: "wrong shape", stored: `{"id":"t1"}`, wantFound: true, wantErr: ErrMalformedStoredData},
		{
			name:      "unknown priority",
			stored:    `[{"id":"t1","title":"A","category":"work","priority":"critical","status":"todo","userId":"u1","createdAt":"2024-05-01T10:00:00Z","updatedAt":"2024-05-01T10:00:00Z"}]`,
			wantFound: true,
			wantErr:   ErrMalformedStoredData,
		},
		{
			name:      "missing title",
			stored:    `[{"id":"t1","category":"work","priority":"low","status":"todo","userId":"u1","createdAt":"2024-05-01T10:00:00Z","updatedAt":"2024-05-01T10:00:00Z"}]`,
			wantFound: true,
			wantErr:   ErrMalformedStoredData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewMemoryStore()
			if !tt.absent {
				require.NoError(t, s.Set(ctx, TasksKey("u1"), []byte(tt.stored)))
			}

			tasks, found, err := Load[[]models.Task](ctx, s, TasksKey("u1"))
			assert.Equal(t, tt.wantFound, found)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, tasks, tt.wantLen)
			if tt.wantLen > 0 {
				assert.True(t, tasks[0].CreatedAt.Equal(now))
			}
		})
	}
}

func TestLoad_User(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, UserKey, []byte(`{"id":"u1","name":"Ann","email":"not-an-email","joinedAt":"2024-05-01T10:00:00Z"}`)))
	_, _, err := Load[models.User](ctx, s, UserKey)
	assert.ErrorIs(t, err, ErrMalformedStoredData)

	user := models.User{ID: "u1", Name: "Ann", Email: "a@x.com", JoinedAt: time.Now().UTC()}
	require.NoError(t, Save(ctx, s, UserKey, user))
	got, found, err := Load[models.User](ctx, s, UserKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, user.Email, got.Email)
}

func TestTasksKey(t *testing.T) {
	assert.Equal(t, "taskflow_tasks_42", TasksKey("42"))
}
