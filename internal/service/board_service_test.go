package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkanban/board-api/internal/domain"
	"github.com/openkanban/board-api/internal/service"
	"github.com/openkanban/board-api/internal/store"
)

func TestBoardCreateAndList(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(t)
	ctx := context.Background()

	owner := env.seedUser(t, "Owner", "owner@example.com")
	other := env.seedUser(t, "Other", "other@example.com")

	private := env.seedBoard(t, owner.ID, "Roadmap", false)
	public := env.seedBoard(t, owner.ID, "Announcements", true)

	ownBoards, err := env.boardSvc.List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, ownBoards, 2)

	otherBoards, err := env.boardSvc.List(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, otherBoards, 1)
	assert.Equal(t, public.ID, otherBoards[0].ID)
	_ = private
}

func TestBoardCreateDuplicateTitleConflicts(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(t)
	ctx := context.Background()

	owner := env.seedUser(t, "Owner", "owner@example.com")
	env.seedBoard(t, owner.ID, "Roadmap", false)

	_, err := env.boardSvc.Create(ctx, owner.ID, "Roadmap", false)
	assert.ErrorIs(t, err, store.ErrBoardTitleExists)

	// A different owner may reuse the title.
	other := env.seedUser(t, "Other", "other@example.com")
	_, err = env.boardSvc.Create(ctx, other.ID, "Roadmap", false)
	assert.NoError(t, err)
}

func TestBoardCreateRejectsEmptyTitle(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(t)

	owner := env.seedUser(t, "Owner", "owner@example.com")

	_, err := env.boardSvc.Create(context.Background(), owner.ID, "   ", false)
	assert.ErrorIs(t, err, domain.ErrEmptyTitle)
}

func TestBoardGetEnforcesVisibility(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(t)
	ctx := context.Background()

	owner := env.seedUser(t, "Owner", "owner@example.com")
	other := env.seedUser(t, "Other", "other@example.com")
	board := env.seedBoard(t, owner.ID, "Roadmap", false)
	env.seedList(t, owner.ID, board.ID, "Backlog")
	env.seedList(t, owner.ID, board.ID, "Doing")

	detail, err := env.boardSvc.Get(ctx, owner.ID, board.ID)
	require.NoError(t, err)
	assert.Equal(t, board.ID, detail.Board.ID)
	require.Len(t, detail.Lists, 2)
	assert.Equal(t, "Backlog", detail.Lists[0].Title)
	assert.Equal(t, "Doing", detail.Lists[1].Title)

	_, err = env.boardSvc.Get(ctx, other.ID, board.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestBoardUpdateOwnerOnly(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(t)
	ctx := context.Background()

	owner := env.seedUser(t, "Owner", "owner@example.com")
	other := env.seedUser(t, "Other", "other@example.com")
	board := env.seedBoard(t, owner.ID, "Roadmap", true)

	title := "Roadmap 2026"
	_, err := env.boardSvc.Update(ctx, other.ID, board.ID, service.BoardUpdate{Title: &title})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	updated, err := env.boardSvc.Update(ctx, owner.ID, board.ID, service.BoardUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Roadmap 2026", updated.Title)

	event := env.events.last(t)
	assert.Equal(t, domain.EventBoardUpdated, event.Type)
	assert.Equal(t, board.ID, event.BoardID)
	assert.Equal(t, owner.ID, event.ActorID)
}

func TestBoardUpdateMissingBoard(t *testing.T) {
	t.Parallel()
	env := newServiceEnv(t)

	owner := env.seedUser(t, "Owner", "owner@example.com")
	title := "Anything"

	_, err := env.boardSvc.Update(context.Background(), owner.ID, owner.ID, service.BoardUpdate{Title: &title})
	assert.True(t, errors.Is(err, store.ErrBoardNotFound))
}
