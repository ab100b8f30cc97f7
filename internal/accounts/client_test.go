package accounts

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/annboard/auth-service/internal/errs"
)

func TestClient_EmailBusy(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/account/a@x.com/is_busy", r.URL.Path)
		require.Equal(t, "k", r.Header.Get("X-Api-Key"))
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "payload": map[string]any{"is_busy": true}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	busy, err := c.EmailBusy(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.True(t, busy)
}

func TestClient_ByEmail(t *testing.T) {
	t.Parallel()
	accID := uuid.Must(uuid.NewV4())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "payload": map[string]any{
			"id":       accID.String(),
			"email":    "a@x.com",
			"pwd_hash": hex.EncodeToString([]byte("hash")),
			"salt":     hex.EncodeToString([]byte("salt")),
			"role":     "user",
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	acc, err := c.ByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.Equal(t, accID, acc.ID)
	require.Equal(t, []byte("hash"), acc.PwdHash)
	require.Equal(t, []byte("salt"), acc.Salt)
	require.Equal(t, "user", acc.Role)
	require.False(t, acc.IsBanned)
}

func TestClient_ByEmail_NotFound(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "err": map[string]string{
			"code": "ACC_ACCOUNT_NOT_FOUND", "msg": "account not found",
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.ByEmail(context.Background(), "a@x.com")
	require.ErrorIs(t, err, errs.ErrAccountNotFound)
}

func TestClient_Materialize(t *testing.T) {
	t.Parallel()
	accID := uuid.Must(uuid.NewV4())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/account/copy/signup", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "a@x.com", body["email"])
		require.Equal(t, hex.EncodeToString([]byte("hash")), body["pwd_hash"])
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "payload": map[string]string{"id": accID.String()}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	id, err := c.Materialize(context.Background(), "a@x.com", []byte("hash"), []byte("salt"))
	require.NoError(t, err)
	require.Equal(t, accID, id)
}

func TestClient_ForeignErrorPropagates(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "err": map[string]string{
			"code": "ACC_INCORRECT_ROLE", "msg": "no access",
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Materialize(context.Background(), "a@x.com", nil, nil)
	var domain *errs.Error
	require.ErrorAs(t, err, &domain)
	require.Equal(t, "ACC_INCORRECT_ROLE", domain.Code)
}
