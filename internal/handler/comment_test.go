package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softdesk-lab/softdesk/internal/authz"
)

func TestCreateCommentStampsProjectAndAuthor(t *testing.T) {
	store := newFakeStore()
	alice := store.seedUser("alice")
	bob := store.seedUser("bob")
	project := store.seedProject(alice.ID, bob.ID)
	issue := store.seedIssue(project.ID, alice.ID)
	path := fmt.Sprintf("/api/issues/%d/comments", issue.ID)

	code, env := doJSON(t, testBackend(store, asUser(bob)), http.MethodPost, path,
		CommentCreateReq{Description: "same here"})
	require.Equal(t, http.StatusOK, code, env.Msg)

	var resp CommentResp
	decodeData(t, env, &resp)
	assert.Equal(t, issue.ID, resp.IssueID)
	// The project link always mirrors the issue's, whatever the client
	// might have sent.
	assert.Equal(t, project.ID, resp.ProjectID)
	assert.Equal(t, bob.ID, resp.AuthorID)
}

func TestCreateCommentRequiresMembership(t *testing.T) {
	store := newFakeStore()
	alice := store.seedUser("alice")
	carol := store.seedUser("carol")
	project := store.seedProject(alice.ID)
	issue := store.seedIssue(project.ID, alice.ID)
	path := fmt.Sprintf("/api/issues/%d/comments", issue.ID)

	code, env := doJSON(t, testBackend(store, asUser(carol)), http.MethodPost, path,
		CommentCreateReq{Description: "drive-by"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, authz.ReasonMustBeMember, env.Msg)
	assert.Empty(t, store.comments)
}

func TestListCommentsVisibility(t *testing.T) {
	store := newFakeStore()
	alice := store.seedUser("alice")
	bob := store.seedUser("bob")
	carol := store.seedUser("carol")
	project := store.seedProject(alice.ID, bob.ID)
	issue := store.seedIssue(project.ID, alice.ID)
	store.seedComment(issue, alice.ID)
	store.seedComment(issue, bob.ID)
	path := fmt.Sprintf("/api/issues/%d/comments", issue.ID)

	code, env := doJSON(t, testBackend(store, asUser(bob)), http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, code, env.Msg)
	var comments []CommentResp
	decodeData(t, env, &comments)
	assert.Len(t, comments, 2)

	code, env = doJSON(t, testBackend(store, asUser(carol)), http.MethodGet, path, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, authz.ReasonNotProjectMember, env.Msg)
}

func TestUpdateCommentAuthorOnly(t *testing.T) {
	store := newFakeStore()
	alice := store.seedUser("alice")
	bob := store.seedUser("bob")
	project := store.seedProject(alice.ID, bob.ID)
	issue := store.seedIssue(project.ID, alice.ID)
	comment := store.seedComment(issue, bob.ID)
	path := fmt.Sprintf("/api/issues/%d/comments/%d", issue.ID, comment.ID)

	code, env := doJSON(t, testBackend(store, asUser(alice)), http.MethodPatch, path,
		CommentPatchReq{Description: "edited"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, authz.ReasonCommentAuthorOnly, env.Msg)

	code, env = doJSON(t, testBackend(store, asUser(bob)), http.MethodPatch, path,
		CommentPatchReq{Description: "edited"})
	require.Equal(t, http.StatusOK, code, env.Msg)
	var resp CommentResp
	decodeData(t, env, &resp)
	assert.Equal(t, "edited", resp.Description)
}

func TestGetCommentChecksIssueNesting(t *testing.T) {
	store := newFakeStore()
	alice := store.seedUser("alice")
	project := store.seedProject(alice.ID)
	issueA := store.seedIssue(project.ID, alice.ID)
	issueB := store.seedIssue(project.ID, alice.ID)
	comment := store.seedComment(issueA, alice.ID)
	r := testBackend(store, asUser(alice))

	code, env := doJSON(t, r, http.MethodGet,
		fmt.Sprintf("/api/issues/%d/comments/%d", issueA.ID, comment.ID), nil)
	require.Equal(t, http.StatusOK, code, env.Msg)

	code, _ = doJSON(t, r, http.MethodGet,
		fmt.Sprintf("/api/issues/%d/comments/%d", issueB.ID, comment.ID), nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDeleteComment(t *testing.T) {
	store := newFakeStore()
	alice := store.seedUser("alice")
	bob := store.seedUser("bob")
	project := store.seedProject(alice.ID, bob.ID)
	issue := store.seedIssue(project.ID, alice.ID)
	comment := store.seedComment(issue, bob.ID)
	path := fmt.Sprintf("/api/issues/%d/comments/%d", issue.ID, comment.ID)

	code, env := doJSON(t, testBackend(store, asUser(alice)), http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, authz.ReasonCommentAuthorOnly, env.Msg)

	code, env = doJSON(t, testBackend(store, asUser(bob)), http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, code, env.Msg)
	assert.NotContains(t, store.comments, comment.ID)
}
