package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/client/config"
	"github.com/dmitrijs2005/authkeeper/internal/client/session"
	pb "github.com/dmitrijs2005/authkeeper/internal/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	token     string
	closed    bool
	signupReq map[string]string
	updateReq map[string]string
	loginErr  error
	meErr     error
	logoutErr error
	password  string
}

func (f *fakeClient) Close() error                 { f.closed = true; return nil }
func (f *fakeClient) Ping(context.Context) error   { return nil }
func (f *fakeClient) SetAccessToken(token string)  { f.token = token }
func (f *fakeClient) AccessToken() string          { return f.token }
func (f *fakeClient) Logout(context.Context) error { f.token = ""; return f.logoutErr }

func (f *fakeClient) Signup(_ context.Context, handle, password string, profile map[string]string) (*pb.User, error) {
	f.signupReq = profile
	f.password = password
	return &pb.User{ID: "u1", LoginHandle: handle, Profile: profile}, nil
}

func (f *fakeClient) Login(_ context.Context, handle, password string) (*pb.LoginResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.password = password
	f.token = "tok-" + handle
	return &pb.LoginResponse{AccessToken: f.token, TokenType: "bearer", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeClient) Me(context.Context) (*pb.User, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	return &pb.User{ID: "u1", LoginHandle: "alice"}, nil
}

func (f *fakeClient) UpdateProfile(_ context.Context, fields map[string]string) (*pb.User, error) {
	f.updateReq = fields
	return &pb.User{ID: "u1", Profile: fields}, nil
}

func (f *fakeClient) AvatarUploadURL(context.Context) (string, string, error) {
	return "avatars/u1/k", "https://s3.example/put", nil
}

type memStore struct {
	saved   *session.Session
	cleared int
}

func (m *memStore) Load() (*session.Session, error) { return m.saved, nil }
func (m *memStore) Save(s *session.Session) error   { m.saved = s; return nil }
func (m *memStore) Clear() error {
	m.saved = nil
	m.cleared++
	return nil
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { readPassword = old })
}

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	return c
}

func newTestApp(input string, fc *fakeClient, st *memStore) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	return newApp(testConfig(), fc, st, strings.NewReader(input), &out), &out
}

func TestApp_LoginSavesSession(t *testing.T) {
	stubPassword(t, "pw123")
	fc, st := &fakeClient{}, &memStore{}
	a, out := newTestApp("alice\n", fc, st)

	require.NoError(t, a.Login(context.Background()))

	assert.True(t, a.isLoggedIn())
	assert.Equal(t, " (alice)", a.status())
	assert.Equal(t, "pw123", fc.password)
	require.NotNil(t, st.saved)
	assert.Equal(t, "tok-alice", st.saved.AccessToken)
	assert.Equal(t, "127.0.0.1:50051", st.saved.Endpoint)
	assert.Contains(t, out.String(), "Login successful")
}

func TestApp_LoginFailure(t *testing.T) {
	stubPassword(t, "bad")
	fc, st := &fakeClient{loginErr: client.ErrInvalidCredentials}, &memStore{}
	a, out := newTestApp("alice\n", fc, st)

	err := a.Login(context.Background())
	assert.ErrorIs(t, err, client.ErrInvalidCredentials)
	assert.False(t, a.isLoggedIn())
	assert.Nil(t, st.saved)
	assert.Contains(t, out.String(), "invalid credentials")
}

func TestApp_Signup(t *testing.T) {
	stubPassword(t, "pw")
	fc := &fakeClient{}
	a, out := newTestApp("alice@example.com\ndisplay_name=Alice\n\n", fc, &memStore{})

	require.NoError(t, a.Signup(context.Background()))
	assert.Equal(t, map[string]string{"display_name": "Alice"}, fc.signupReq)
	assert.Contains(t, out.String(), "Registered alice@example.com")
}

func TestApp_UpdateAndMe(t *testing.T) {
	fc := &fakeClient{}
	a, out := newTestApp("email=\nlocale=lv\n\n", fc, &memStore{})

	require.NoError(t, a.Update(context.Background()))
	assert.Equal(t, map[string]string{"email": "", "locale": "lv"}, fc.updateReq)

	require.NoError(t, a.Me(context.Background()))
	assert.Contains(t, out.String(), `"login_handle": "alice"`)
}

func TestApp_UnauthorizedDropsSession(t *testing.T) {
	fc := &fakeClient{meErr: client.ErrUnauthorized}
	st := &memStore{saved: &session.Session{Endpoint: "127.0.0.1:50051", LoginHandle: "alice", AccessToken: "t", ExpiresAt: time.Now().Add(time.Hour)}}
	a, _ := newTestApp("", fc, st)
	a.restoreSession()
	require.True(t, a.isLoggedIn())
	assert.Equal(t, "t", fc.token)

	err := a.Me(context.Background())
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.False(t, a.isLoggedIn())
	assert.Empty(t, fc.token)
	assert.Equal(t, 1, st.cleared)
}

func TestApp_RestoreSession(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		saved     *session.Session
		wantLogin bool
		cleared   int
	}{
		{"none", nil, false, 0},
		{"valid", &session.Session{Endpoint: "127.0.0.1:50051", AccessToken: "t", ExpiresAt: now.Add(time.Minute)}, true, 0},
		{"expired", &session.Session{Endpoint: "127.0.0.1:50051", AccessToken: "t", ExpiresAt: now.Add(-time.Minute)}, false, 1},
		{"other server", &session.Session{Endpoint: "10.0.0.1:50051", AccessToken: "t", ExpiresAt: now.Add(time.Minute)}, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc, st := &fakeClient{}, &memStore{saved: tt.saved}
			a, _ := newTestApp("", fc, st)
			a.now = func() time.Time { return now }

			a.restoreSession()
			assert.Equal(t, tt.wantLogin, a.isLoggedIn())
			assert.Equal(t, tt.cleared, st.cleared)
		})
	}
}

func TestApp_Avatar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0o600))

	a, out := newTestApp(path+"\n", &fakeClient{}, &memStore{})

	var gotURL, gotCT string
	var gotBody []byte
	a.upload = func(_ context.Context, url, contentType string, body io.Reader, size int64) error {
		gotURL, gotCT = url, contentType
		gotBody, _ = io.ReadAll(body)
		assert.Equal(t, int64(len("png-bytes")), size)
		return nil
	}

	require.NoError(t, a.Avatar(context.Background()))
	assert.Equal(t, "https://s3.example/put", gotURL)
	assert.Equal(t, "image/png", gotCT)
	assert.Equal(t, "png-bytes", string(gotBody))
	assert.Contains(t, out.String(), "avatars/u1/k")
}

func TestApp_AvatarMissingFile(t *testing.T) {
	a, _ := newTestApp(filepath.Join(t.TempDir(), "nope.png")+"\n", &fakeClient{}, &memStore{})
	a.upload = func(context.Context, string, string, io.Reader, int64) error {
		t.Fatal("upload must not run")
		return nil
	}
	assert.Error(t, a.Avatar(context.Background()))
}

func TestApp_LogoutClearsEvenOnError(t *testing.T) {
	fc := &fakeClient{token: "t", logoutErr: errors.New("boom")}
	st := &memStore{saved: &session.Session{AccessToken: "t"}}
	a, _ := newTestApp("", fc, st)
	a.session = st.saved

	assert.Error(t, a.Logout(context.Background()))
	assert.False(t, a.isLoggedIn())
	assert.Nil(t, st.saved)

	fc.logoutErr = client.ErrUnauthorized
	a.session = &session.Session{}
	assert.NoError(t, a.Logout(context.Background()), "an already dead token still logs out")
}

func TestApp_RunClosesClient(t *testing.T) {
	silence(t)
	fc := &fakeClient{}
	a, out := newTestApp("exit\n", fc, &memStore{})

	a.Run(context.Background())
	assert.True(t, fc.closed)
	assert.Contains(t, out.String(), "Welcome")
}
