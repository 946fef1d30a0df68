package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softdesk-lab/softdesk/internal/util"
)

func TestGetUserSelfOnly(t *testing.T) {
	store := newFakeStore()
	alice := store.seedUser("alice")
	bob := store.seedUser("bob")

	r := testBackend(store, asUser(alice))

	code, env := doJSON(t, r, http.MethodGet, "/api/users/1", nil)
	require.Equal(t, http.StatusOK, code, env.Msg)
	var resp UserResp
	decodeData(t, env, &resp)
	assert.Equal(t, "alice", resp.Username)

	code, env = doJSON(t, r, http.MethodGet, "/api/users/2", nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "may only manage own profile", env.Msg)

	// Admins manage anyone.
	admin := util.JWTMessage{UserID: 99, Username: "root", IsAdmin: true}
	code, env = doJSON(t, testBackend(store, admin), http.MethodGet, "/api/users/2", nil)
	require.Equal(t, http.StatusOK, code, env.Msg)
	decodeData(t, env, &resp)
	assert.Equal(t, bob.Username, resp.Username)
}

func TestUpdateUser(t *testing.T) {
	store := newFakeStore()
	alice := store.seedUser("alice")
	r := testBackend(store, asUser(alice))

	age := 42
	contactable := true
	code, env := doJSON(t, r, http.MethodPatch, "/api/users/1", UserPatchReq{
		Age:            &age,
		CanBeContacted: &contactable,
	})
	require.Equal(t, http.StatusOK, code, env.Msg)

	var resp UserResp
	decodeData(t, env, &resp)
	assert.Equal(t, 42, resp.Age)
	assert.True(t, resp.CanBeContacted)
}

func TestUpdateUserRejectsBadAge(t *testing.T) {
	store := newFakeStore()
	alice := store.seedUser("alice")
	r := testBackend(store, asUser(alice))

	age := 12
	code, env := doJSON(t, r, http.MethodPatch, "/api/users/1", UserPatchReq{Age: &age})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "age must be between 15 and 100", env.Msg)
}

func TestUpdateUserEmptyPatch(t *testing.T) {
	store := newFakeStore()
	alice := store.seedUser("alice")
	r := testBackend(store, asUser(alice))

	code, _ := doJSON(t, r, http.MethodPatch, "/api/users/1", UserPatchReq{})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDeleteUser(t *testing.T) {
	store := newFakeStore()
	alice := store.seedUser("alice")
	bob := store.seedUser("bob")
	r := testBackend(store, asUser(alice))

	code, env := doJSON(t, r, http.MethodDelete, "/api/users/2", nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "may only manage own profile", env.Msg)
	assert.Contains(t, store.users, bob.ID)

	code, env = doJSON(t, r, http.MethodDelete, "/api/users/1", nil)
	require.Equal(t, http.StatusOK, code, env.Msg)
	assert.NotContains(t, store.users, alice.ID)
}

func TestAdminListUsers(t *testing.T) {
	store := newFakeStore()
	store.seedUser("alice")
	store.seedUser("bob")

	admin := util.JWTMessage{UserID: 99, Username: "root", IsAdmin: true}
	r := testBackend(store, admin)

	code, env := doJSON(t, r, http.MethodGet, "/api/admin/users", nil)
	require.Equal(t, http.StatusOK, code, env.Msg)

	var users []UserResp
	decodeData(t, env, &users)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
}
