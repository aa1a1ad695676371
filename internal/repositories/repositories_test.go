package repositories_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"todoapi/internal/database"
	"todoapi/internal/logging"
	"todoapi/internal/models"
	"todoapi/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stores struct {
	users repositories.UserRepository
	todos repositories.TodoRepository
}

func backends(t *testing.T) map[string]func(t *testing.T) stores {
	t.Helper()
	return map[string]func(t *testing.T) stores{
		"gorm-sqlite": func(t *testing.T) stores {
			db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), logging.Discard())
			require.NoError(t, err)
			t.Cleanup(func() { _ = database.Close(db) })
			return stores{
				users: repositories.NewGORMUserRepository(db),
				todos: repositories.NewGORMTodoRepository(db),
			}
		},
		"memory": func(t *testing.T) stores {
			todos := repositories.NewMemoryTodoRepository()
			return stores{
				users: repositories.NewMemoryUserRepository(todos),
				todos: todos,
			}
		},
	}
}

func strPtr(s string) *string { return &s }

func mustUser(t *testing.T, s stores, name string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Password: "hash"}
	require.NoError(t, s.users.Create(context.Background(), u))
	require.NotZero(t, u.ID)
	return u
}

func TestUserRepository(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			alice := mustUser(t, s, "alice")

			err := s.users.Create(ctx, &models.User{Name: "alice", Password: "other"})
			assert.ErrorIs(t, err, repositories.ErrDuplicate)

			got, err := s.users.GetByName(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, alice.ID, got.ID)
			assert.Equal(t, "hash", got.Password)

			_, err = s.users.GetByName(ctx, "nobody")
			assert.ErrorIs(t, err, repositories.ErrNotFound)

			_, err = s.users.GetByID(ctx, alice.ID+100)
			assert.ErrorIs(t, err, repositories.ErrNotFound)

			bob := mustUser(t, s, "bob")
			bob.Name = "alice"
			assert.ErrorIs(t, s.users.Update(ctx, bob), repositories.ErrDuplicate)

			alice.Name = "alicia"
			alice.Password = "newhash"
			require.NoError(t, s.users.Update(ctx, alice))
			got, err = s.users.GetByID(ctx, alice.ID)
			require.NoError(t, err)
			assert.Equal(t, "alicia", got.Name)
			assert.Equal(t, "newhash", got.Password)

			missing := &models.User{ID: 999, Name: "ghost", Password: "x"}
			assert.ErrorIs(t, s.users.Update(ctx, missing), repositories.ErrNotFound)
			assert.ErrorIs(t, s.users.Delete(ctx, 999), repositories.ErrNotFound)
		})
	}
}

func TestTodoRepository_OwnerScoping(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)
			alice := mustUser(t, s, "alice")
			bob := mustUser(t, s, "bob")

			first := &models.Todo{Title: "buy milk", OwnerID: alice.ID}
			second := &models.Todo{Title: "walk dog", Description: strPtr("twice"), OwnerID: alice.ID}
			require.NoError(t, s.todos.Create(ctx, first))
			require.NoError(t, s.todos.Create(ctx, second))
			require.Less(t, first.ID, second.ID)

			got, err := s.todos.GetByOwner(ctx, first.ID, alice.ID)
			require.NoError(t, err)
			assert.Equal(t, "buy milk", got.Title)
			assert.False(t, got.Completed)

			_, err = s.todos.GetByOwner(ctx, first.ID, bob.ID)
			assert.ErrorIs(t, err, repositories.ErrNotFound)

			list, err := s.todos.ListByOwner(ctx, alice.ID)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, first.ID, list[0].ID)
			assert.Equal(t, second.ID, list[1].ID)

			empty, err := s.todos.ListByOwner(ctx, bob.ID)
			require.NoError(t, err)
			assert.NotNil(t, empty)
			assert.Empty(t, empty)

			stolen := *first
			stolen.OwnerID = bob.ID
			stolen.Title = "hijacked"
			assert.ErrorIs(t, s.todos.Update(ctx, &stolen), repositories.ErrNotFound)
			assert.ErrorIs(t, s.todos.Delete(ctx, first.ID, bob.ID), repositories.ErrNotFound)

			first.Completed = true
			require.NoError(t, s.todos.Update(ctx, first))
			got, err = s.todos.GetByOwner(ctx, first.ID, alice.ID)
			require.NoError(t, err)
			assert.True(t, got.Completed)
			assert.Equal(t, "buy milk", got.Title)

			second.Description = nil
			require.NoError(t, s.todos.Update(ctx, second))
			got, err = s.todos.GetByOwner(ctx, second.ID, alice.ID)
			require.NoError(t, err)
			assert.Nil(t, got.Description)

			require.NoError(t, s.todos.Delete(ctx, first.ID, alice.ID))
			_, err = s.todos.GetByOwner(ctx, first.ID, alice.ID)
			assert.ErrorIs(t, err, repositories.ErrNotFound)
		})
	}
}

func TestUserDelete_CascadesToTodos(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)
			alice := mustUser(t, s, "alice")
			bob := mustUser(t, s, "bob")

			var aliceTodos []uint
			for _, title := range []string{"a", "b", "c"} {
				todo := &models.Todo{Title: title, OwnerID: alice.ID}
				require.NoError(t, s.todos.Create(ctx, todo))
				aliceTodos = append(aliceTodos, todo.ID)
			}
			bobTodo := &models.Todo{Title: "keep", OwnerID: bob.ID}
			require.NoError(t, s.todos.Create(ctx, bobTodo))

			require.NoError(t, s.users.Delete(ctx, alice.ID))

			_, err := s.users.GetByID(ctx, alice.ID)
			assert.ErrorIs(t, err, repositories.ErrNotFound)
			for _, id := range aliceTodos {
				for _, owner := range []uint{alice.ID, bob.ID} {
					_, err := s.todos.GetByOwner(ctx, id, owner)
					assert.ErrorIs(t, err, repositories.ErrNotFound)
				}
			}

			_, err = s.todos.GetByOwner(ctx, bobTodo.ID, bob.ID)
			assert.NoError(t, err)

			err = s.todos.Create(ctx, &models.Todo{Title: "late", OwnerID: alice.ID})
			assert.ErrorIs(t, err, repositories.ErrNotFound)

			// the name is free again
			mustUser(t, s, "alice")
		})
	}
}

func TestGORMTodoCreate_MissingOwner(t *testing.T) {
	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	repo := repositories.NewGORMTodoRepository(db)
	err = repo.Create(context.Background(), &models.Todo{Title: "orphan", OwnerID: 42})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestMemoryCascade_ConcurrentCreateLeavesNoOrphans(t *testing.T) {
	ctx := context.Background()
	todos := repositories.NewMemoryTodoRepository()
	users := repositories.NewMemoryUserRepository(todos)

	owner := &models.User{Name: "alice", Password: "hash"}
	require.NoError(t, users.Create(ctx, owner))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = todos.Create(ctx, &models.Todo{Title: "t", OwnerID: owner.ID})
		}()
	}
	require.NoError(t, users.Delete(ctx, owner.ID))
	wg.Wait()

	list, err := todos.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
