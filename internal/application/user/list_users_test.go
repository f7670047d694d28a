package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/imghost/internal/application/appcore"
	"github.com/lllypuk/imghost/internal/application/user"
)

func TestListUsersUseCase_Execute_Pages(t *testing.T) {
	repo := newMockUserRepository()
	seeded := repo.seed("alice", "bob", "carol", "dave", "erin")
	useCase := user.NewListUsersUseCase(repo)

	result, err := useCase.Execute(context.Background(), user.ListUsersQuery{Count: 2, Page: 1})

	require.NoError(t, err)
	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, 1, result.Page)
	require.Len(t, result.Users, 2)
	assert.Equal(t, seeded[2].ID(), result.Users[0].ID())
	assert.Equal(t, seeded[3].ID(), result.Users[1].ID())
}

func TestListUsersUseCase_Execute_PastTheEnd(t *testing.T) {
	repo := newMockUserRepository()
	repo.seed("alice", "bob")
	useCase := user.NewListUsersUseCase(repo)

	result, err := useCase.Execute(context.Background(), user.ListUsersQuery{Count: 25, Page: 4})

	require.NoError(t, err)
	assert.Empty(t, result.Users)
	assert.NotNil(t, result.Users)
	assert.Equal(t, 2, result.Total)
}

func TestListUsersUseCase_Execute_Validation(t *testing.T) {
	useCase := user.NewListUsersUseCase(newMockUserRepository())

	tests := []struct {
		name  string
		query user.ListUsersQuery
	}{
		{"zero count", user.ListUsersQuery{Count: 0}},
		{"count too large", user.ListUsersQuery{Count: 101}},
		{"negative page", user.ListUsersQuery{Count: 10, Page: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := useCase.Execute(context.Background(), tt.query)
			require.ErrorIs(t, err, appcore.ErrValidationFailed)
		})
	}
}

func TestListUsersUseCase_Execute_CanceledContext(t *testing.T) {
	useCase := user.NewListUsersUseCase(newMockUserRepository())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := useCase.Execute(ctx, user.ListUsersQuery{Count: 5})
	require.ErrorIs(t, err, context.Canceled)
}
