package user_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitdash/internal/adapters/backend"
	"fitdash/internal/adapters/backend/user"
	"fitdash/internal/domain/account"
	"fitdash/internal/domain/apperror"
)

func newStore(t *testing.T, mux *http.ServeMux) *user.APIStore {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return user.NewAPIStore(backend.New(srv.URL))
}

func TestLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/Users/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if body["password"] != "right" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid email or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"jwt":"token-for-` + body["email"] + `"}`))
	})
	store := newStore(t, mux)

	token, err := store.Login(context.Background(), "a@b.c", "right")
	require.NoError(t, err)
	assert.Equal(t, "token-for-a@b.c", token)

	_, err = store.Login(context.Background(), "a@b.c", "wrong")
	require.True(t, apperror.IsUnauthorized(err))
	appErr, _ := apperror.As(err)
	assert.Equal(t, "Invalid email or password", appErr.Message)
}

func TestListAndTrainer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/Users", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"userId":1,"email":"m@x","accountType":"Manager"},{"userId":3,"email":"c@x","accountType":"Client","personalTrainerId":2}]`))
	})
	mux.HandleFunc("GET /api/Users/Trainer", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer client-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"userId":2,"firstName":"Tia","lastName":"Trainer","accountType":"PersonalTrainer"}`))
	})
	store := newStore(t, mux)

	users, err := store.List(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, account.RoleManager, users[0].Role())
	trainerID, ok := users[1].TrainerAssignment()
	assert.True(t, ok)
	assert.Equal(t, int64(2), trainerID)

	trainer, err := store.GetTrainer(context.Background(), "client-token")
	require.NoError(t, err)
	assert.Equal(t, "Tia Trainer", trainer.FullName())
}

func TestCreate(t *testing.T) {
	var got account.NewUser
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/Users", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"userId":10,"email":"new@x","accountType":"Client"}`))
	})
	store := newStore(t, mux)

	trainerID := int64(2)
	created, err := store.Create(context.Background(), "tok", account.NewUser{
		FirstName: "N", LastName: "U", Email: "new@x", Password: "pw",
		AccountType: account.AccountTypeClient, PersonalTrainerID: &trainerID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), created.UserID)
	assert.Equal(t, "Client", got.AccountType)
	require.NotNil(t, got.PersonalTrainerID)
	assert.Equal(t, int64(2), *got.PersonalTrainerID)
}
