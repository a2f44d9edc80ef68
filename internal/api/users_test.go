package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAndGetUsers(t *testing.T) {
	s := newTestServer(t)
	alice := testhelpers.CreateUser(t, s.db, "alice")
	bob := testhelpers.CreateUser(t, s.db, "bob")
	testhelpers.CreateUser(t, s.db, "carol")

	w := s.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe", bob.ID), s.token(t, alice), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/users?limit=2", s.token(t, alice), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page types.Page[types.UserView]
	decode(t, w, &page)
	assert.Equal(t, int64(3), page.Count)
	require.Len(t, page.Results, 2)
	assert.False(t, page.Results[0].IsSubscribed)
	assert.True(t, page.Results[1].IsSubscribed)
	require.NotNil(t, page.Next)
	assert.Equal(t, publicURL+"/api/users?limit=2&page=2", *page.Next)
	assert.Nil(t, page.Previous)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", bob.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var anon types.UserView
	decode(t, w, &anon)
	assert.Equal(t, "bob", anon.Username)
	assert.False(t, anon.IsSubscribed)

	w = s.do(t, http.MethodGet, "/api/users/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetPasswordEndpoint(t *testing.T) {
	s := newTestServer(t)
	user := testhelpers.CreateUser(t, s.db, "vasya")
	token := s.token(t, user)

	w := s.do(t, http.MethodPost, "/api/users/set_password", token, map[string]string{
		"current_password": "wrong",
		"new_password":     "another-pass",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/users/set_password", token, map[string]string{
		"current_password": testhelpers.TestPassword,
		"new_password":     "another-pass",
	})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email":    user.Email,
		"password": "another-pass",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAvatarEndpoints(t *testing.T) {
	s := newTestServer(t)
	user := testhelpers.CreateUser(t, s.db, "vasya")
	token := s.token(t, user)

	w := s.do(t, http.MethodPut, "/api/users/me/avatar", token, map[string]string{"avatar": "http://example.com/a.png"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/users/me/avatar", token, map[string]string{"avatar": testhelpers.TinyPNG})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var avatar types.AvatarView
	decode(t, w, &avatar)
	assert.Equal(t, publicURL+"/media/users/avatars/image-1.png", avatar.Avatar)

	w = s.do(t, http.MethodGet, "/api/users/me", token, nil)
	var me types.UserView
	decode(t, w, &me)
	assert.Equal(t, avatar.Avatar, me.Avatar)

	w = s.do(t, http.MethodDelete, "/api/users/me/avatar", token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/users/me", token, nil)
	me = types.UserView{}
	decode(t, w, &me)
	assert.Empty(t, me.Avatar)
}

func TestSubscriptionEndpoints(t *testing.T) {
	s := newTestServer(t)
	reader := testhelpers.CreateUser(t, s.db, "reader")
	author := testhelpers.CreateUser(t, s.db, "author")
	for i := 0; i < 3; i++ {
		testhelpers.CreateRecipe(t, s.db, author, fmt.Sprintf("Recipe %d", i))
	}
	token := s.token(t, reader)
	target := fmt.Sprintf("/api/users/%d/subscribe", author.ID)

	w := s.do(t, http.MethodPost, target+"?recipes_limit=2", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sub types.SubscriptionView
	decode(t, w, &sub)
	assert.Equal(t, author.ID, sub.ID)
	assert.True(t, sub.IsSubscribed)
	assert.Len(t, sub.Recipes, 2)
	assert.Equal(t, int64(3), sub.RecipesCount)

	w = s.do(t, http.MethodPost, target, token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "you are already subscribed to this user", detail(t, w))

	w = s.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe", reader.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/users/9999/subscribe", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/users/subscriptions?recipes_limit=1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page types.Page[types.SubscriptionView]
	decode(t, w, &page)
	assert.Equal(t, int64(1), page.Count)
	require.Len(t, page.Results, 1)
	assert.Len(t, page.Results[0].Recipes, 1)

	w = s.do(t, http.MethodGet, "/api/users/subscriptions?recipes_limit=0", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var raw struct {
		Results []map[string]json.RawMessage `json:"results"`
	}
	decode(t, w, &raw)
	require.Len(t, raw.Results, 1)
	assert.JSONEq(t, `[]`, string(raw.Results[0]["recipes"]))
	assert.JSONEq(t, `3`, string(raw.Results[0]["recipes_count"]))

	w = s.do(t, http.MethodGet, "/api/users/subscriptions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = types.Page[types.SubscriptionView]{}
	decode(t, w, &page)
	require.Len(t, page.Results, 1)
	assert.Len(t, page.Results[0].Recipes, 3)

	w = s.do(t, http.MethodGet, "/api/users/subscriptions?recipes_limit=lots", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, target, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodDelete, target, token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, target+"?recipes_limit=0", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sub = types.SubscriptionView{}
	decode(t, w, &sub)
	assert.NotNil(t, sub.Recipes)
	assert.Empty(t, sub.Recipes)
	assert.Equal(t, int64(3), sub.RecipesCount)
}

func TestIngredientEndpoints(t *testing.T) {
	s := newTestServer(t)
	flour := testhelpers.CreateIngredient(t, s.db, "flour", "g")
	testhelpers.CreateIngredient(t, s.db, "sugar", "g")

	w := s.do(t, http.MethodGet, "/api/ingredients?name=FL", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []types.IngredientView
	decode(t, w, &list)
	assert.Equal(t, []types.IngredientView{{ID: flour.ID, Name: "flour", MeasurementUnit: "g"}}, list)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/ingredients/%d", flour.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/ingredients/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
