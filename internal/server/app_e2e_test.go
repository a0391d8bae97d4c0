package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/psycare/psycare/auth"
	"github.com/psycare/psycare/internal/db/dbtest"
	"github.com/psycare/psycare/internal/models"
	"github.com/psycare/psycare/internal/ratelimit"
	"github.com/psycare/psycare/internal/services"
	"github.com/psycare/psycare/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "password123"

type testApp struct {
	app *App
	srv *httptest.Server
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	s := store.New(dbtest.New(t))
	app := NewApp(Deps{
		Store:    s,
		Sessions: auth.NewSessions("test-secret", time.Hour),
		Limiter:  ratelimit.NewMemoryLimiter(3, time.Minute),
		Options:  services.Options{Hasher: auth.Hasher{Cost: bcrypt.MinCost}},
	})
	srv := httptest.NewServer(app)
	t.Cleanup(srv.Close)
	return &testApp{app: app, srv: srv}
}

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func (ta *testApp) client(t *testing.T) *client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, base: ta.srv.URL, http: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

func (c *client) do(req *http.Request) (*http.Response, map[string]any) {
	c.t.Helper()
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	var body map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(raw, &body)
	}
	return resp, body
}

func (c *client) getJSON(path string) (*http.Response, map[string]any) {
	req, err := http.NewRequest(http.MethodGet, c.base+path, nil)
	require.NoError(c.t, err)
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

func (c *client) postJSON(path string, payload any) (*http.Response, map[string]any) {
	var buf bytes.Buffer
	require.NoError(c.t, json.NewEncoder(&buf).Encode(payload))
	req, err := http.NewRequest(http.MethodPost, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

func (c *client) postForm(path string, form url.Values) (*http.Response, map[string]any) {
	req, err := http.NewRequest(http.MethodPost, c.base+path, strings.NewReader(form.Encode()))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (ta *testApp) patient(t *testing.T, email string) *client {
	c := ta.client(t)
	resp, _ := c.postJSON("/auth/register", map[string]any{
		"email": email, "display_name": "Patient " + email, "password": testPassword, "confirm_password": testPassword,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return c
}

func (ta *testApp) therapist(t *testing.T, email string) *client {
	_, err := ta.app.Services.Accounts.CreateTherapist(context.Background(), email, "Dr "+email, testPassword)
	require.NoError(t, err)
	c := ta.client(t)
	resp, _ := c.postJSON("/auth/login", map[string]any{"email": email, "password": testPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return c
}

func idOf(t *testing.T, body map[string]any) uint {
	t.Helper()
	id, ok := body["id"].(float64)
	require.True(t, ok, "no id in %v", body)
	return uint(id)
}

func titles(body map[string]any, key string) []string {
	var out []string
	items, _ := body[key].([]any)
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, fmt.Sprint(m["title"]))
		}
	}
	return out
}

func TestHealth(t *testing.T) {
	ta := newTestApp(t)
	resp, body := ta.client(t).getJSON("/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestSharedJournalReachesLinkedTherapist(t *testing.T) {
	ta := newTestApp(t)
	p := ta.patient(t, "p@example.com")
	th := ta.therapist(t, "t@example.com")

	resp, link := th.postJSON("/therapist/patients", map[string]any{"patient_email": "P@Example.com"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "created", link["outcome"])
	patientID := uint(link["patient"].(map[string]any)["id"].(float64))

	resp, _ = p.postJSON("/patient/journal/new", map[string]any{"title": "Today", "body": "Felt calmer", "shared_with_therapist": true})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := th.getJSON(fmt.Sprintf("/therapist/patients/%d/journal", patientID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := body["entries"].([]any)
	require.Len(t, entries, 1)
	e := entries[0].(map[string]any)
	assert.Equal(t, "Today", e["title"])
	assert.Equal(t, "Felt calmer", e["body"])
}

func TestUnsharedJournalIsExcluded(t *testing.T) {
	ta := newTestApp(t)
	p := ta.patient(t, "p@example.com")
	th := ta.therapist(t, "t@example.com")
	_, link := th.postJSON("/therapist/patients", map[string]any{"patient_email": "p@example.com"})
	patientID := uint(link["patient"].(map[string]any)["id"].(float64))

	resp, _ := p.postJSON("/patient/journal/new", map[string]any{"title": "Private", "body": "Secret", "shared_with_therapist": false})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := th.getJSON(fmt.Sprintf("/therapist/patients/%d/journal", patientID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, titles(body, "entries"), "Private")

	_, dash := th.getJSON("/therapist/dashboard")
	assert.NotContains(t, titles(dash, "journals"), "Private")
}

func TestCrisisWithoutTherapistIsUnrouted(t *testing.T) {
	ta := newTestApp(t)
	p := ta.patient(t, "p@example.com")
	th := ta.therapist(t, "t@example.com")

	resp, alert := p.postJSON("/patient/crisis", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Nil(t, alert["therapist_id"])
	assert.Equal(t, models.AlertKindPanic, alert["kind"])

	_, dash := th.getJSON("/therapist/dashboard")
	assert.Empty(t, dash["alerts"])

	resp, page := p.getJSON("/patient/crisis")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, page["linked"])
	assert.Len(t, page["alerts"], 1)

	resp, _ = th.postJSON(fmt.Sprintf("/therapist/alerts/%d/resolve", idOf(t, alert)), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCrisisFormPostRedirectsToDashboard(t *testing.T) {
	ta := newTestApp(t)
	p := ta.patient(t, "p@example.com")
	resp, _ := p.postForm("/patient/crisis", url.Values{})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/patient/dashboard", resp.Header.Get("Location"))

	resp, _ = p.getJSON("/patient/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Flash"))
	resp, _ = p.getJSON("/patient/dashboard")
	assert.Empty(t, resp.Header.Get("X-Flash"), "flash is shown once")
}

func TestAlertResolution(t *testing.T) {
	ta := newTestApp(t)
	p := ta.patient(t, "p@example.com")
	owner := ta.therapist(t, "t@example.com")
	other := ta.therapist(t, "t2@example.com")
	owner.postJSON("/therapist/patients", map[string]any{"patient_email": "p@example.com"})
	other.postJSON("/therapist/patients", map[string]any{"patient_email": "p@example.com"})

	_, alert := p.postJSON("/patient/crisis", nil)
	path := fmt.Sprintf("/therapist/alerts/%d/resolve", idOf(t, alert))

	resp, _ := other.postJSON(path, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "linked but not the routed therapist")

	_, dash := owner.getJSON("/therapist/dashboard")
	assert.Len(t, dash["alerts"], 1)

	resp, body := owner.postJSON(path, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["resolved"])

	resp, body = owner.postJSON(path, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "resolving twice is a no-op")
	assert.Equal(t, true, body["resolved"])

	_, dash = owner.getJSON("/therapist/dashboard")
	assert.Empty(t, dash["alerts"])
}

func TestRoleGate(t *testing.T) {
	ta := newTestApp(t)
	p := ta.patient(t, "p@example.com")
	th := ta.therapist(t, "t@example.com")

	resp, body := p.getJSON("/therapist/dashboard")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.NotContains(t, body, "patients")

	resp, _ = th.getJSON("/patient/dashboard")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = th.postJSON("/patient/crisis", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestUnauthenticated(t *testing.T) {
	ta := newTestApp(t)
	c := ta.client(t)

	resp, _ := c.getJSON("/patient/dashboard")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, c.base+"/therapist/dashboard", nil)
	resp, _ = c.do(req)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, auth.LoginPath, resp.Header.Get("Location"))

	req, _ = http.NewRequest(http.MethodGet, c.base+"/", nil)
	resp, _ = c.do(req)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, auth.LoginPath, resp.Header.Get("Location"))
}

func TestJournalOwnership(t *testing.T) {
	ta := newTestApp(t)
	owner := ta.patient(t, "p@example.com")
	intruder := ta.patient(t, "p2@example.com")

	_, entry := owner.postJSON("/patient/journal/new", map[string]any{"title": "Mine", "body": "Only mine"})
	id := idOf(t, entry)
	assert.Equal(t, true, entry["shared_with_therapist"], "shared by default")

	resp, _ := intruder.getJSON(fmt.Sprintf("/patient/journal/%d/edit", id))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = intruder.postJSON(fmt.Sprintf("/patient/journal/%d/edit", id), map[string]any{"title": "Hacked", "body": "Hacked"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = intruder.postJSON(fmt.Sprintf("/patient/journal/%d/delete", id), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := owner.getJSON(fmt.Sprintf("/patient/journal/%d/edit", id))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Mine", body["entry"].(map[string]any)["title"])

	resp, _ = owner.postForm(fmt.Sprintf("/patient/journal/%d/edit", id), url.Values{"title": {"Mine, edited"}, "body": {"Still mine"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	_, body = owner.getJSON(fmt.Sprintf("/patient/journal/%d/edit", id))
	edited := body["entry"].(map[string]any)
	assert.Equal(t, "Mine, edited", edited["title"])
	assert.Equal(t, false, edited["shared_with_therapist"], "unchecked box unshares")

	resp, _ = owner.postForm(fmt.Sprintf("/patient/journal/%d/delete", id), url.Values{})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	resp, _ = owner.getJSON(fmt.Sprintf("/patient/journal/%d/edit", id))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTherapistProbeOfUnassignedPatient(t *testing.T) {
	ta := newTestApp(t)
	ta.patient(t, "p@example.com")
	th := ta.therapist(t, "t@example.com")
	u, err := ta.app.Services.Accounts.Authenticate(context.Background(), services.LoginInput{Email: "p@example.com", Password: testPassword})
	require.NoError(t, err)

	resp, _ := th.getJSON(fmt.Sprintf("/therapist/patients/%d/journal", u.ID))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = th.getJSON(fmt.Sprintf("/therapist/patients/%d/mood", u.ID))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLinkTwiceIsSoft(t *testing.T) {
	ta := newTestApp(t)
	ta.patient(t, "p@example.com")
	th := ta.therapist(t, "t@example.com")

	resp, _ := th.postForm("/therapist/patients", url.Values{"patient_email": {"p@example.com"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	resp, body := th.postJSON("/therapist/patients", map[string]any{"patient_email": "p@example.com"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "already_linked", body["outcome"])

	_, list := th.getJSON("/therapist/patients")
	assert.Len(t, list["patients"], 1)

	resp, body = th.postJSON("/therapist/patients", map[string]any{"patient_email": "nobody@example.com"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "patient_not_found", body["error"])
}

func TestRegistration(t *testing.T) {
	ta := newTestApp(t)
	ta.patient(t, "pat@example.com")

	c := ta.client(t)
	resp, body := c.postJSON("/auth/register", map[string]any{
		"email": "PAT@example.com", "display_name": "Dup", "password": testPassword, "confirm_password": testPassword,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "duplicate_email", body["error"])

	resp, body = c.postJSON("/auth/register", map[string]any{
		"email": "x", "display_name": "X", "password": "short", "confirm_password": "other",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	details := body["details"].(map[string]any)
	assert.Equal(t, "invalid_email", details["email"])
	messages := body["messages"].(map[string]any)
	assert.Equal(t, "Adresse e-mail invalide", messages["email"])

	resp, body = c.postJSON("/auth/register", map[string]any{
		"email": "sneaky@example.com", "display_name": "Sneaky", "password": testPassword, "confirm_password": testPassword, "role": "therapist",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	form := ta.client(t)
	resp, _ = form.postForm("/auth/register", url.Values{
		"email": {"new@example.com"}, "display_name": {"New"}, "password": {testPassword}, "confirm_password": {testPassword},
	})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/patient/dashboard", resp.Header.Get("Location"))

	resp, _ = form.postForm("/auth/login", url.Values{"email": {"new@example.com"}, "password": {testPassword}})
	assert.Equal(t, http.StatusFound, resp.StatusCode, "signed-in users are redirected")
	assert.Equal(t, "/patient/dashboard", resp.Header.Get("Location"))
}

func TestLoginFailuresAndThrottle(t *testing.T) {
	ta := newTestApp(t)
	ta.patient(t, "p@example.com")
	c := ta.client(t)

	resp, wrong := c.postJSON("/auth/login", map[string]any{"email": "p@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, unknown := c.postJSON("/auth/login", map[string]any{"email": "ghost@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, wrong, unknown)

	resp, _ = c.postJSON("/auth/login", map[string]any{"email": "", "password": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	for i := 0; i < 2; i++ {
		c.postJSON("/auth/login", map[string]any{"email": "p@example.com", "password": "wrong-password"})
	}
	resp, body := c.postJSON("/auth/login", map[string]any{"email": "p@example.com", "password": testPassword})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "too_many_attempts", body["error"])
}

func TestMoodIsAppendOnly(t *testing.T) {
	ta := newTestApp(t)
	p := ta.patient(t, "p@example.com")

	resp, mood := p.postJSON("/patient/mood", map[string]any{"rating": 7, "note": "ok"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := idOf(t, mood)

	for _, path := range []string{"/patient/mood/%d/edit", "/patient/mood/%d/delete"} {
		resp, _ = p.postJSON(fmt.Sprintf(path, id), map[string]any{"rating": 1})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}
	resp, _ = p.postJSON("/patient/mood", map[string]any{"rating": 11})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, list := p.getJSON("/patient/mood")
	moods := list["moods"].([]any)
	require.Len(t, moods, 1)
	assert.EqualValues(t, 7, moods[0].(map[string]any)["rating"])

	resp, _ = p.postForm("/patient/mood", url.Values{"rating": {"5"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/patient/dashboard", resp.Header.Get("Location"))
}

func TestResourcesFlow(t *testing.T) {
	ta := newTestApp(t)
	p := ta.patient(t, "p@example.com")
	th := ta.therapist(t, "t@example.com")
	other := ta.therapist(t, "t2@example.com")

	resp, res := th.postJSON("/therapist/resources/new", map[string]any{"title": "Grounding", "url": "https://example.com/grounding"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := idOf(t, res)

	_, visible := p.getJSON("/patient/resources")
	assert.Empty(t, visible["resources"], "unlinked patient sees nothing")

	th.postJSON("/therapist/patients", map[string]any{"patient_email": "p@example.com"})
	_, visible = p.getJSON("/patient/resources")
	assert.Equal(t, []string{"Grounding"}, titles(visible, "resources"))

	resp, _ = other.postJSON(fmt.Sprintf("/therapist/resources/%d/edit", id), map[string]any{"title": "Mine now", "url": "https://evil.example"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = other.postJSON(fmt.Sprintf("/therapist/resources/%d/delete", id), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = th.postJSON(fmt.Sprintf("/therapist/resources/%d/edit", id), map[string]any{"title": "Grounding 5-4-3-2-1", "url": "https://example.com/54321"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_, edit := th.getJSON(fmt.Sprintf("/therapist/resources/%d/edit", id))
	assert.Equal(t, "Grounding 5-4-3-2-1", edit["resource"].(map[string]any)["title"])

	resp, _ = th.postForm(fmt.Sprintf("/therapist/resources/%d/delete", id), url.Values{})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	_, list := th.getJSON("/therapist/resources")
	assert.Empty(t, list["resources"])
}

func TestLogout(t *testing.T) {
	ta := newTestApp(t)
	p := ta.patient(t, "p@example.com")

	resp, _ := p.postJSON("/auth/logout", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = p.getJSON("/patient/dashboard")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIndexRedirectsByRole(t *testing.T) {
	ta := newTestApp(t)
	th := ta.therapist(t, "t@example.com")
	req, _ := http.NewRequest(http.MethodGet, th.base+"/", nil)
	resp, _ := th.do(req)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/therapist/dashboard", resp.Header.Get("Location"))
}
