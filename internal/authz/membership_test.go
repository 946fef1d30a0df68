package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softdesk-lab/softdesk/dao"
	"github.com/softdesk-lab/softdesk/dao/model"
)

func TestResolverIsProjectAuthor(t *testing.T) {
	dir := newFakeDirectory()
	dir.addProject(1, 42)
	resolver := NewResolver(dir)
	ctx := context.Background()

	ok, err := resolver.IsProjectAuthor(ctx, 42, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = resolver.IsProjectAuthor(ctx, 7, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = resolver.IsProjectAuthor(ctx, 42, 999)
	require.ErrorIs(t, err, dao.ErrNotFound)
}

func TestResolverProjectOfIssue(t *testing.T) {
	dir := newFakeDirectory()
	dir.addProject(1, 42)
	issue := dir.addIssue(5, 1, 42)
	resolver := NewResolver(dir)
	ctx := context.Background()

	projectID, err := resolver.ProjectOfIssue(ctx, issue)
	require.NoError(t, err)
	assert.Equal(t, uint(1), projectID)

	orphan := &model.Issue{ProjectID: 999, AuthorID: 42}
	_, err = resolver.ProjectOfIssue(ctx, orphan)
	require.ErrorIs(t, err, dao.ErrNotFound)
}

// The comment's denormalized project id is ignored; resolution always
// goes through the issue.
func TestResolverProjectOfCommentFollowsIssue(t *testing.T) {
	dir := newFakeDirectory()
	dir.addProject(1, 42)
	dir.addIssue(5, 1, 42)
	resolver := NewResolver(dir)
	ctx := context.Background()

	comment := &model.Comment{IssueID: 5, ProjectID: 999, AuthorID: 42}
	projectID, err := resolver.ProjectOfComment(ctx, comment)
	require.NoError(t, err)
	assert.Equal(t, uint(1), projectID)

	dangling := &model.Comment{IssueID: 888, ProjectID: 1, AuthorID: 42}
	_, err = resolver.ProjectOfComment(ctx, dangling)
	require.ErrorIs(t, err, dao.ErrNotFound)
}

func TestResolverMemberOrAuthor(t *testing.T) {
	dir := newFakeDirectory()
	dir.addProject(1, 42)
	dir.addMember(1, 7)
	resolver := NewResolver(dir)
	ctx := context.Background()

	for user, want := range map[uint]bool{42: true, 7: true, 8: false} {
		ok, err := resolver.isMemberOrAuthor(ctx, user, 1)
		require.NoError(t, err)
		assert.Equal(t, want, ok, "user %d", user)
	}
}
